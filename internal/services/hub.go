package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 32
)

// Hub reparte los cambios de cada sección a los clientes websocket conectados
type Hub struct {
	mutex   sync.Mutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewHub crea un hub sin clientes
func NewHub() *Hub {
	return &Hub{clients: make(map[*hubClient]struct{})}
}

// Broadcast envía la vista a todos los clientes; un cliente con la cola llena se desconecta
func (h *Hub) Broadcast(view models.SectionView) {
	message, err := json.Marshal(view)
	if err != nil {
		log.WithError(err).Error("Error al serializar la sección")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			delete(h.clients, c)
			c.close()
		}
	}
}

// Clients devuelve la cantidad de clientes conectados
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return len(h.clients)
}

// Serve registra la conexión, envía el estado inicial y bloquea hasta que el cliente se va
func (h *Hub) Serve(conn *websocket.Conn, initial []models.SectionView) {
	c := &hubClient{conn: conn, send: make(chan []byte, clientSendSize+len(initial))}

	for _, view := range initial {
		message, err := json.Marshal(view)
		if err != nil {
			continue
		}
		c.send <- message
	}

	h.mutex.Lock()
	h.clients[c] = struct{}{}
	h.mutex.Unlock()

	go c.writePump()
	c.readPump()

	h.mutex.Lock()
	delete(h.clients, c)
	h.mutex.Unlock()
	c.close()
}

func (c *hubClient) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// readPump solo descarta mensajes; sirve para detectar el cierre y responder pings
func (c *hubClient) readPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
