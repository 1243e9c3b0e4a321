package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PatientPulse/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forecastAt(id string, v int) models.Forecast {
	target := time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC)
	return models.Forecast{
		ID:          id,
		TargetTime:  target,
		Value:       v,
		Tier:        models.AlertTier{Level: models.AlertMedium, Color: "yellow", Message: "WARNING: Elevated patient volume"},
		GeneratedAt: target.Add(-time.Hour),
	}
}

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	e := echo.New()
	e.GET("/ws/forecasts", hub.ServeWS)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/forecasts"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev map[string]any
	require.NoError(t, json.Unmarshal(b, &ev))
	return ev
}

func TestHub_ReplaysLatestAndBroadcasts(t *testing.T) {
	hub := NewHub(time.Second, 4, nil)
	require.NoError(t, hub.Publish(context.Background(), forecastAt("f-1", 31)))

	conn := dial(t, hub)
	ev := readEvent(t, conn)
	assert.Equal(t, "f-1", ev["id"])
	assert.Equal(t, float64(31), ev["patients"])
	assert.Equal(t, "medium", ev["alert"])

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Publish(context.Background(), forecastAt("f-2", 33)))
	ev = readEvent(t, conn)
	assert.Equal(t, "f-2", ev["id"])
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(time.Second, 4, nil)
	conn := dial(t, hub)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Close())
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	// publishing after close is a no-op
	assert.NoError(t, hub.Publish(context.Background(), forecastAt("f-3", 1)))
}
