package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"colegio_backend/internal/models"
	"colegio_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	ts := GetTestServer(t)

	registerBody := map[string]interface{}{
		"name":     "Maria Lopez",
		"email":    "maria.authflow@test.com",
		"password": "super_password123",
		"role":     "parent",
	}

	regRes, regBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusCreated, regRes.StatusCode, regBodyStr)

	var regResponse struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(regBodyStr), &regResponse))
	assert.NotEmpty(t, regResponse.AccessToken)
	assert.NotEmpty(t, regResponse.RefreshToken)

	loginBody := map[string]interface{}{
		"email":    "maria.authflow@test.com",
		"password": "super_password123",
	}
	logRes, logBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/login", "", loginBody)
	assert.Equal(t, http.StatusOK, logRes.StatusCode, logBodyStr)

	refreshBody := map[string]interface{}{
		"refresh_token": regResponse.RefreshToken,
	}
	refRes, refBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/refresh", "", refreshBody)
	assert.Equal(t, http.StatusOK, refRes.StatusCode, refBodyStr)

	// Refresh tokens rotate: the old one is dead after use.
	reuseRes, _ := ts.SendRequest(t, "POST", "/api/v1/auth/refresh", "", refreshBody)
	assert.Equal(t, http.StatusUnauthorized, reuseRes.StatusCode)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ts := GetTestServer(t)

	helpers.CreateAndLoginUser(t, ts, "Pedro Gomez", "pedro.wrongpass@test.com", "correct_password1", models.UserRoleParent)

	loginBody := map[string]interface{}{
		"email":    "pedro.wrongpass@test.com",
		"password": "wrong_password",
	}
	res, _ := ts.SendRequest(t, "POST", "/api/v1/auth/login", "", loginBody)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLogoutClearsReadMarkers(t *testing.T) {
	ts := GetTestServer(t)

	token, user := helpers.CreateAndLoginUser(t, ts, "Ana Diaz", "ana.logout@test.com", "password12345", models.UserRoleParent)
	a := helpers.CreateAnnouncement(t, ts.DB, "Acto de fin de curso", user.ID)

	markRes, _ := ts.SendRequest(t, "PUT", "/api/v1/readstatus/novedades/"+a.ID+"/read", token, nil)
	assert.Equal(t, http.StatusOK, markRes.StatusCode)

	logoutRes, _ := ts.SendRequest(t, "POST", "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, logoutRes.StatusCode)

	// The marker table no longer has rows for this user.
	var count int64
	ts.DB.Model(&models.ReadMarker{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
}
