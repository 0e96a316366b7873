package services

import (
	"context"
	"errors"
	"time"

	"colegio_backend/internal/auth"
	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/services/dto"
	"colegio_backend/internal/unread"
	"colegio_backend/pkg/apperrors"

	"github.com/google/uuid"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req *dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(refreshToken string) (*dto.AuthResponse, error)
	// Logout tears the session down: refresh tokens and read markers are
	// dropped and the user's unread engine is stopped.
	Logout(ctx context.Context, userID string) error
}

type AuthServiceImpl struct {
	userRepo   repositories.UserRepository
	readStatus ReadStatusService
	hub        *unread.Hub
}

func NewAuthService(userRepo repositories.UserRepository, readStatus ReadStatusService, hub *unread.Hub) AuthService {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		readStatus: readStatus,
		hub:        hub,
	}
}

func (s *AuthServiceImpl) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	role := models.UserRoleParent
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	return s.issueTokens(user)
}

func (s *AuthServiceImpl) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !user.IsActive || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *AuthServiceImpl) Refresh(refreshToken string) (*dto.AuthResponse, error) {
	token, err := s.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if time.Now().After(token.ExpiresAt) {
		_ = s.userRepo.DeleteRefreshToken(refreshToken)
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(token.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	// Rotate
	if err := s.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.issueTokens(user)
}

func (s *AuthServiceImpl) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.DeleteUserRefreshTokens(userID); err != nil {
		return apperrors.InternalError(err)
	}

	// Session teardown clears the user's marker set; the engine's
	// shutdown publishes zero badges without any further fetch.
	if err := s.readStatus.ClearAll(ctx, userID); err != nil {
		return apperrors.InternalError(err)
	}
	s.hub.Drop(userID)
	return nil
}

func (s *AuthServiceImpl) issueTokens(user *models.User) (*dto.AuthResponse, error) {
	access, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh := &models.RefreshToken{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.userRepo.CreateRefreshToken(refresh); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		User:         dto.NewUserResponse(user),
	}, nil
}
