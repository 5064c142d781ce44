package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"matjarna/db"
	"matjarna/middleware"
	"matjarna/models"
	"matjarna/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Client is one connected admin dashboard.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans newly placed orders out to every connected admin dashboard.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.Send)
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.Send <- data:
				default:
					close(c.Send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				close(c.Send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop closes all client connections and ends the run loop.
func (h *Hub) Stop() {
	close(h.done)
}

// feedEvent is what the dashboard receives for each new order.
type feedEvent struct {
	Action      string    `json:"action"` // "order_placed"
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Customer    string    `json:"customer"`
	Total       int64     `json:"total"`
	Wilaya      string    `json:"wilaya"`
	PlacedAt    time.Time `json:"placed_at"`
}

// BroadcastOrder publishes a newly placed order to the feed. Safe on a nil
// hub so checkout works in tests without a running feed.
func (h *Hub) BroadcastOrder(o models.Order) {
	if h == nil {
		return
	}
	data, err := json.Marshal(feedEvent{
		Action:      "order_placed",
		OrderID:     o.OrderID,
		OrderNumber: o.OrderNumber,
		Customer:    o.CustomerName,
		Total:       o.Total,
		Wilaya:      o.WilayaName,
		PlacedAt:    o.CreatedAt,
	})
	if err != nil {
		log.Println("order feed marshal error:", err)
		return
	}
	h.broadcast <- data
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// FeedHandler upgrades an authenticated admin connection onto the hub.
// Websocket upgrades bypass the auth middleware, so the token and admin
// checks happen here before the upgrade.
func FeedHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil || claims.AdminID == "" {
			utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		count, err := db.AdminsCollection.CountDocuments(ctx, bson.M{"userid": claims.AdminID})
		if err != nil {
			utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not verify account")
			return
		}
		if count == 0 {
			utils.RespondWithErrorCode(w, http.StatusForbidden, "FORBIDDEN", "Not an admin account")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("feed upgrade:", err)
			return
		}
		client := &Client{Conn: conn, Send: make(chan []byte, 256)}
		hub.register <- client

		go client.writePump()
		go client.readPump(hub)
	}
}

func (c *Client) writePump() {
	defer c.Conn.Close()
	for data := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// readPump drains the connection so close frames are processed.
func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
