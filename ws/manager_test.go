package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_PublishReachesSubscriber(t *testing.T) {
	mgr := NewManager()
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		mgr.Register("u1", conn)
		close(registered)
		// keep the handler alive until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				mgr.Unregister("u1", conn)
				return
			}
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	<-registered
	assert.True(t, mgr.IsConnected("u1"))
	assert.Equal(t, []string{"u1"}, mgr.List())

	require.NoError(t, mgr.Publish("u1", map[string]string{"type": "prediction.completed"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"prediction.completed"}`, string(msg))
}

func TestManager_PublishWithoutSubscriber(t *testing.T) {
	mgr := NewManager()
	assert.ErrorIs(t, mgr.Publish("nobody", map[string]string{}), ErrNotConnected)
	assert.False(t, mgr.IsConnected("nobody"))
	assert.Empty(t, mgr.List())
}
