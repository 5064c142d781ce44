package orders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"matjarna/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send: make(chan []byte, 10),
	}
	hub.register <- client

	order := models.Order{
		OrderID:      "o1",
		OrderNumber:  "MTJ-TEST1",
		CustomerName: "Amine",
		Total:        2520,
		WilayaName:   "Alger",
		CreatedAt:    time.Now(),
	}
	hub.BroadcastOrder(order)

	select {
	case got := <-client.Send:
		var evt feedEvent
		if err := json.Unmarshal(got, &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Action != "order_placed" || evt.OrderNumber != "MTJ-TEST1" {
			t.Fatalf("unexpected event: %+v", evt)
		}
		if evt.Total != 2520 {
			t.Fatalf("expected total 2520, got %d", evt.Total)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for feed event")
	}

	hub.unregister <- client
}

func feedServerURL(t *testing.T) string {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	router := httprouter.New()
	router.GET("/ws/admin/orders", FeedHandler(hub))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/admin/orders"
}

func TestFeedRejectsMissingToken(t *testing.T) {
	url := feedServerURL(t)

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatal("expected dial without a token to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %v", resp)
	}
}

func TestFeedRejectsInvalidToken(t *testing.T) {
	url := feedServerURL(t)

	header := http.Header{"Authorization": []string{"Bearer not-a-real-token"}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		conn.Close()
		t.Fatal("expected dial with a bad token to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %v", resp)
	}
}

func TestNilHubBroadcastIsNoop(t *testing.T) {
	var hub *Hub
	// must not panic
	hub.BroadcastOrder(models.Order{OrderNumber: "MTJ-X"})
}
