package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := SessionEvent{SessionID: "s-1", Reason: ReasonLayout}
	if err := hook.SessionUpdated(context.Background(), event); err != nil {
		t.Fatalf("SessionUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.Reason != event.Reason || e.SessionID != "s-1" {
			t.Fatalf("unexpected event %+v", e)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookFiltersBySession(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.SubscribeSession("s-2")
	defer cancel()
	_ = hook.SessionUpdated(context.Background(), SessionEvent{SessionID: "s-1", Reason: ReasonWidget})
	_ = hook.SessionUpdated(context.Background(), SessionEvent{SessionID: "s-2", Reason: ReasonTheme})
	select {
	case e := <-ch:
		if e.SessionID != "s-2" {
			t.Fatalf("expected only s-2 events, got %+v", e)
		}
	default:
		t.Fatalf("expected s-2 event")
	}
	select {
	case e := <-ch:
		t.Fatalf("unexpected extra event %+v", e)
	default:
	}
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=s-9"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		hook.mu.RLock()
		defer hook.mu.RUnlock()
		return len(hook.subs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_ = hook.SessionUpdated(context.Background(), SessionEvent{SessionID: "s-9", Reason: ReasonRemeasure, InstanceID: "chart-1"})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got SessionEvent
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, ReasonRemeasure, got.Reason)
	require.Equal(t, "chart-1", got.InstanceID)
}
