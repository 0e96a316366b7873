package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"colegio_backend/internal/models"
	"colegio_backend/internal/unread"
	"colegio_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAsReadUpdatesUnreadCounts(t *testing.T) {
	ts := GetTestServer(t)

	token, parent := helpers.CreateAndLoginUser(t, ts, "Lucia Perez", "lucia.counts@test.com", "password12345", models.UserRoleParent)
	helpers.CreateStudent(t, ts.DB, parent.ID, "Tomas Perez", "3A")

	a1 := helpers.CreateAnnouncement(t, ts.DB, "Reunion de padres", parent.ID)
	helpers.CreateAnnouncement(t, ts.DB, "Cierre por feriado", parent.ID)

	// Cold load: both announcements unread.
	waitForBadge(t, ts.Hub, parent.ID, func(c unread.Counts) bool {
		return c.Novedades == 2
	})

	res, _ := ts.SendRequest(t, "PUT", "/api/v1/readstatus/novedades/"+a1.ID+"/read", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	waitForBadge(t, ts.Hub, parent.ID, func(c unread.Counts) bool {
		return c.Novedades == 1
	})

	countsRes, countsBody := ts.SendRequest(t, "GET", "/api/v1/readstatus/unread-counts", token, nil)
	assert.Equal(t, http.StatusOK, countsRes.StatusCode)

	var counts unread.Counts
	require.NoError(t, json.Unmarshal([]byte(countsBody), &counts))
	assert.Equal(t, 1, counts.Novedades)
}

func TestMarkAsReadIsIdempotentOverHTTP(t *testing.T) {
	ts := GetTestServer(t)

	token, parent := helpers.CreateAndLoginUser(t, ts, "Jorge Ruiz", "jorge.idem@test.com", "password12345", models.UserRoleParent)
	a := helpers.CreateAnnouncement(t, ts.DB, "Vacunacion", parent.ID)

	for i := 0; i < 3; i++ {
		res, _ := ts.SendRequest(t, "PUT", "/api/v1/readstatus/novedades/"+a.ID+"/read", token, nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	}

	var count int64
	ts.DB.Model(&models.ReadMarker{}).
		Where("user_id = ? AND collection = ? AND item_id = ?", parent.ID, models.CollectionNovedades, a.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMarkAsReadRejectsUnknownCollectionName(t *testing.T) {
	ts := GetTestServer(t)

	token, _ := helpers.CreateAndLoginUser(t, ts, "Sara Gil", "sara.unknown@test.com", "password12345", models.UserRoleParent)

	res, body := ts.SendRequest(t, "PUT", "/api/v1/readstatus/mensajes/some-id/read", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
}

func TestClearAllReturnsEverythingToUnread(t *testing.T) {
	ts := GetTestServer(t)

	token, parent := helpers.CreateAndLoginUser(t, ts, "Nora Vidal", "nora.clear@test.com", "password12345", models.UserRoleParent)
	a := helpers.CreateAnnouncement(t, ts.DB, "Nuevo menu del comedor", parent.ID)

	markRes, _ := ts.SendRequest(t, "PUT", "/api/v1/readstatus/novedades/"+a.ID+"/read", token, nil)
	assert.Equal(t, http.StatusOK, markRes.StatusCode)

	waitForBadge(t, ts.Hub, parent.ID, func(c unread.Counts) bool {
		return c.Novedades == 0
	})

	clearRes, _ := ts.SendRequest(t, "DELETE", "/api/v1/readstatus", token, nil)
	assert.Equal(t, http.StatusOK, clearRes.StatusCode)

	waitForBadge(t, ts.Hub, parent.ID, func(c unread.Counts) bool {
		return c.Novedades == 1
	})
}

func TestAnnouncementListCarriesReadFlags(t *testing.T) {
	ts := GetTestServer(t)

	token, parent := helpers.CreateAndLoginUser(t, ts, "Ines Soto", "ines.flags@test.com", "password12345", models.UserRoleParent)
	a1 := helpers.CreateAnnouncement(t, ts.DB, "Kermesse anual", parent.ID)
	helpers.CreateAnnouncement(t, ts.DB, "Salida al museo", parent.ID)

	markRes, _ := ts.SendRequest(t, "PUT", "/api/v1/readstatus/novedades/"+a1.ID+"/read", token, nil)
	assert.Equal(t, http.StatusOK, markRes.StatusCode)

	res, body := ts.SendRequest(t, "GET", "/api/v1/novedades", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var listResponse struct {
		Items []struct {
			ID   string `json:"id"`
			Read bool   `json:"read"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &listResponse))

	flags := make(map[string]bool, len(listResponse.Items))
	for _, item := range listResponse.Items {
		flags[item.ID] = item.Read
	}
	assert.True(t, flags[a1.ID])
}

// waitForBadge polls the user's badge record until cond holds.
func waitForBadge(t *testing.T, hub *unread.Hub, userID string, cond func(unread.Counts) bool) {
	t.Helper()
	state := hub.State(userID)
	require.Eventually(t, func() bool {
		return cond(state.Get())
	}, 5*time.Second, 20*time.Millisecond, "badge record never reached expected value, last: %+v", state.Get())
}
