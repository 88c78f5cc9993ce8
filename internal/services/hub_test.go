package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
)

func TestHub_Broadcast(t *testing.T) {
	// arrange
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	initial := []models.SectionView{{ID: "usd", Status: models.StatusView{Text: "Refreshing…", State: models.StateOK}}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, initial)
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	readView := func() models.SectionView {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, message, err := conn.ReadMessage()
		require.NoError(t, err)
		var view models.SectionView
		require.NoError(t, json.Unmarshal(message, &view))
		return view
	}

	// assert: primero llega el estado inicial
	require.Equal(t, "usd", readView().ID)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	// act
	hub.Broadcast(models.SectionView{ID: "usd", Status: models.StatusView{Text: "Live · USD", State: models.StateOK}})

	// assert
	require.Equal(t, "Live · USD", readView().Status.Text)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
