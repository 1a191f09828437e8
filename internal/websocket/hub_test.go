package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, ch chan []byte) Envelope {
	t.Helper()
	select {
	case raw := <-ch:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return Envelope{}
	}
}

func TestHub_PublishRespectsSubscriptions(t *testing.T) {
	hub := startHub(t)

	all := NewClient(hub, nil, 1)
	alertsOnly := NewClient(hub, nil, 2)
	hub.HandleClientMessage(alertsOnly, []byte(`{"type":"unsubscribe","channel":"metrics"}`))
	assert.False(t, alertsOnly.Subscribed(ChannelMetrics))

	hub.Register(all)
	hub.Register(alertsOnly)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.BroadcastSnapshot(model.MetricSnapshot{RequestCount: 7})
	env := receive(t, all.Send)
	assert.Equal(t, "metrics", env.Type)

	hub.NotifyAlert(model.Alert{ID: "a-1", MetricName: "error_rate", Severity: model.SeverityHigh})
	assert.Equal(t, "alert", receive(t, all.Send).Type)
	assert.Equal(t, "alert", receive(t, alertsOnly.Send).Type)

	// metrics 는 구독 해제한 클라이언트에게 가지 않음
	assert.Empty(t, alertsOnly.Send)
}

func TestHub_IgnoresUnknownChannelAndGarbage(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient(hub, nil, 1)

	hub.HandleClientMessage(client, []byte(`not json`))
	hub.HandleClientMessage(client, []byte(`{"type":"unsubscribe","channel":"chat"}`))
	assert.True(t, client.Subscribed(ChannelMetrics))
	assert.True(t, client.Subscribed(ChannelAlerts))
}

func TestHub_RateLimit(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient(hub, nil, 1)

	for i := 0; i < maxMessagesPerSecond; i++ {
		hub.HandleClientMessage(client, []byte(`{"type":"subscribe","channel":"alerts"}`))
	}
	// 한도를 넘은 메시지는 무시됨
	hub.HandleClientMessage(client, []byte(`{"type":"unsubscribe","channel":"alerts"}`))
	assert.True(t, client.Subscribed(ChannelAlerts))
}

func TestHub_RunStopsAndClosesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := NewClient(hub, nil, 1)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	_, ok := <-client.Send
	assert.False(t, ok)
}

func TestHub_ServeWS(t *testing.T) {
	hub := startHub(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, 42)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.NotifyAlert(model.Alert{ID: "a-9", MetricName: "response_time_ms", Severity: model.SeverityCritical})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env struct {
		Type string      `json:"type"`
		Data model.Alert `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, "alert", env.Type)
	assert.Equal(t, "a-9", env.Data.ID)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
