package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"colegio_backend/internal/models"
	"colegio_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherPublishesAnnouncementParentSeesIt(t *testing.T) {
	ts := GetTestServer(t)

	teacherToken, _ := helpers.CreateAndLoginUser(t, ts, "Prof. Castro", "castro.publish@test.com", "password12345", models.UserRoleTeacher)
	parentToken, _ := helpers.CreateAndLoginUser(t, ts, "Laura Mena", "laura.publish@test.com", "password12345", models.UserRoleParent)

	createBody := map[string]interface{}{
		"title":    "Suspension de clases",
		"body":     "El viernes no hay clases por jornada docente.",
		"audience": "all",
	}
	createRes, createBodyStr := ts.SendRequest(t, "POST", "/api/v1/novedades", teacherToken, createBody)
	assert.Equal(t, http.StatusCreated, createRes.StatusCode, createBodyStr)

	listRes, listBody := ts.SendRequest(t, "GET", "/api/v1/novedades", parentToken, nil)
	assert.Equal(t, http.StatusOK, listRes.StatusCode)
	assert.Contains(t, listBody, "Suspension de clases")
}

func TestParentCannotPublishAnnouncement(t *testing.T) {
	ts := GetTestServer(t)

	parentToken, _ := helpers.CreateAndLoginUser(t, ts, "Raul Paz", "raul.forbidden@test.com", "password12345", models.UserRoleParent)

	createBody := map[string]interface{}{
		"title": "Intento de padre",
		"body":  "no deberia poder",
	}
	res, _ := ts.SendRequest(t, "POST", "/api/v1/novedades", parentToken, createBody)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestPickupRequestLifecycle(t *testing.T) {
	ts := GetTestServer(t)

	parentToken, parent := helpers.CreateAndLoginUser(t, ts, "Carmen Rios", "carmen.pickup@test.com", "password12345", models.UserRoleParent)
	adminToken, _ := helpers.CreateAndLoginUser(t, ts, "Direccion", "admin.pickup@test.com", "password12345", models.UserRoleAdmin)
	student := helpers.CreateStudent(t, ts.DB, parent.ID, "Valentina Rios", "5B")

	createBody := map[string]interface{}{
		"student_id":    student.ID,
		"pickup_person": "Abuela Rosa",
		"pickup_date":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"reason":        "turno medico",
	}
	createRes, createBodyStr := ts.SendRequest(t, "POST", "/api/v1/cambios", parentToken, createBody)
	require.Equal(t, http.StatusCreated, createRes.StatusCode, createBodyStr)

	var created models.PickupRequest
	require.NoError(t, json.Unmarshal([]byte(createBodyStr), &created))
	assert.Equal(t, models.PickupStatusPending, created.Status)

	resolveBody := map[string]interface{}{"status": "approved"}
	resolveRes, resolveBodyStr := ts.SendRequest(t, "PUT", "/api/v1/cambios/"+created.ID+"/resolve", adminToken, resolveBody)
	assert.Equal(t, http.StatusOK, resolveRes.StatusCode, resolveBodyStr)

	// Resolving twice fails: the request is no longer pending.
	again, _ := ts.SendRequest(t, "PUT", "/api/v1/cambios/"+created.ID+"/resolve", adminToken, resolveBody)
	assert.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestPickupRequestRejectsForeignStudent(t *testing.T) {
	ts := GetTestServer(t)

	_, owner := helpers.CreateAndLoginUser(t, ts, "Dueno Real", "owner.student@test.com", "password12345", models.UserRoleParent)
	otherToken, _ := helpers.CreateAndLoginUser(t, ts, "Otro Padre", "other.student@test.com", "password12345", models.UserRoleParent)
	student := helpers.CreateStudent(t, ts.DB, owner.ID, "Nico", "1A")

	createBody := map[string]interface{}{
		"student_id":    student.ID,
		"pickup_person": "Desconocido",
		"pickup_date":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}
	res, _ := ts.SendRequest(t, "POST", "/api/v1/cambios", otherToken, createBody)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestConversationUnreadCountsAreServerAuthoritative(t *testing.T) {
	ts := GetTestServer(t)

	parentToken, _ := helpers.CreateAndLoginUser(t, ts, "Padre Chat", "padre.chat@test.com", "password12345", models.UserRoleParent)
	teacherToken, teacher := helpers.CreateAndLoginUser(t, ts, "Docente Chat", "docente.chat@test.com", "password12345", models.UserRoleTeacher)

	startBody := map[string]interface{}{
		"subject":         "Consulta por tarea",
		"participant_ids": []string{teacher.ID},
		"body":            "Hola, tengo una duda sobre la tarea de hoy.",
	}
	startRes, startBodyStr := ts.SendRequest(t, "POST", "/api/v1/conversations", parentToken, startBody)
	require.Equal(t, http.StatusCreated, startRes.StatusCode, startBodyStr)

	var conv models.Conversation
	require.NoError(t, json.Unmarshal([]byte(startBodyStr), &conv))

	// The teacher has one unread message; the sender has none.
	listRes, listBody := ts.SendRequest(t, "GET", "/api/v1/conversations", teacherToken, nil)
	assert.Equal(t, http.StatusOK, listRes.StatusCode)

	var listResponse struct {
		Items []struct {
			ID          string `json:"id"`
			UnreadCount int64  `json:"unread_count"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(listBody), &listResponse))
	require.NotEmpty(t, listResponse.Items)

	var teacherUnread int64 = -1
	for _, item := range listResponse.Items {
		if item.ID == conv.ID {
			teacherUnread = item.UnreadCount
		}
	}
	assert.Equal(t, int64(1), teacherUnread)

	readRes, _ := ts.SendRequest(t, "POST", "/api/v1/conversations/"+conv.ID+"/read", teacherToken, nil)
	assert.Equal(t, http.StatusOK, readRes.StatusCode)

	listRes2, listBody2 := ts.SendRequest(t, "GET", "/api/v1/conversations", teacherToken, nil)
	assert.Equal(t, http.StatusOK, listRes2.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(listBody2), &listResponse))
	for _, item := range listResponse.Items {
		if item.ID == conv.ID {
			assert.Zero(t, item.UnreadCount)
		}
	}
}

func TestOutsiderCannotReadConversation(t *testing.T) {
	ts := GetTestServer(t)

	parentToken, _ := helpers.CreateAndLoginUser(t, ts, "Padre Priv", "padre.priv@test.com", "password12345", models.UserRoleParent)
	_, teacher := helpers.CreateAndLoginUser(t, ts, "Docente Priv", "docente.priv@test.com", "password12345", models.UserRoleTeacher)
	outsiderToken, _ := helpers.CreateAndLoginUser(t, ts, "Intruso", "intruso.priv@test.com", "password12345", models.UserRoleParent)

	startBody := map[string]interface{}{
		"subject":         "Privado",
		"participant_ids": []string{teacher.ID},
		"body":            "mensaje privado",
	}
	startRes, startBodyStr := ts.SendRequest(t, "POST", "/api/v1/conversations", parentToken, startBody)
	require.Equal(t, http.StatusCreated, startRes.StatusCode)

	var conv models.Conversation
	require.NoError(t, json.Unmarshal([]byte(startBodyStr), &conv))

	res, _ := ts.SendRequest(t, "GET", "/api/v1/conversations/"+conv.ID+"/messages", outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}
