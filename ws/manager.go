package ws

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var ErrNotConnected = errors.New("user not connected")

type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex // gorilla allows one concurrent writer
}

// Manager keeps track of the active event subscription of each user.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*client // userID -> subscriber
}

func NewManager() *Manager {
	return &Manager{clients: make(map[string]*client)}
}

// Register registers a user connection, replacing any existing one.
func (m *Manager) Register(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.clients[userID]; ok && old.conn != conn {
		// close old connection to avoid leaks
		_ = old.conn.Close()
	}
	m.clients[userID] = &client{conn: conn}
}

// Unregister removes conn if it is still the user's current connection.
func (m *Manager) Unregister(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[userID]; ok && c.conn == conn {
		_ = c.conn.Close()
		delete(m.clients, userID)
	}
}

// Publish sends event as a JSON text message to the user if connected.
func (m *Manager) Publish(userID string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	m.mu.RLock()
	c, ok := m.clients[userID]
	m.mu.RUnlock()
	if !ok || c == nil {
		return ErrNotConnected
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// IsConnected returns whether a user currently has a subscription.
func (m *Manager) IsConnected(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// List returns a copy of current connected user IDs.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	return ids
}
