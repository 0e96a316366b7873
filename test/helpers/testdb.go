package helpers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"colegio_backend/internal/auth"
	"colegio_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateUser inserts a user, hashing the raw password in PasswordHash.
func CreateUser(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()

	hash, err := auth.HashPassword(user.PasswordHash)
	require.NoError(t, err, "failed to hash test password")
	user.PasswordHash = hash
	user.IsActive = true

	require.NoError(t, db.Create(user).Error, "failed to create test user %s", user.Email)
}

// CreateAndLoginUser creates a user and logs in through the API,
// returning the access token.
func CreateAndLoginUser(t *testing.T, ts *TestServer, name, email, password string, role models.UserRole) (string, *models.User) {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: password,
		Role:         role,
	}
	CreateUser(t, ts.DB, user)

	loginBody := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", loginBody)
	assert.Equal(t, http.StatusOK, res.StatusCode, "login should succeed, got: "+bodyStr)

	var loginResponse struct {
		Token string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &loginResponse))
	require.NotEmpty(t, loginResponse.Token)

	return loginResponse.Token, user
}

// CreateStudent attaches a student to a parent.
func CreateStudent(t *testing.T, db *gorm.DB, parentID, name, grade string) *models.Student {
	t.Helper()

	student := &models.Student{
		Name:     name,
		Grade:    grade,
		ParentID: parentID,
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

// CreateAnnouncement inserts an announcement visible to everyone.
func CreateAnnouncement(t *testing.T, db *gorm.DB, title, createdBy string) *models.Announcement {
	t.Helper()

	a := &models.Announcement{
		Title:       title,
		Body:        "cuerpo de " + title,
		Audience:    models.AudienceAll,
		PublishedAt: time.Now(),
		CreatedBy:   createdBy,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}
