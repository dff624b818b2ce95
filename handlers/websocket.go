package handlers

import (
	"log"
	"net/http"

	httpHandler "lung-server/handlers/http"
	"lung-server/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler streams prediction events to the owning user.
type WSHandler struct {
	mgr *ws.Manager
}

func NewWSHandler(mgr *ws.Manager) *WSHandler {
	return &WSHandler{mgr: mgr}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// HandleEventsWS upgrades to websocket and keeps the subscription open
// GET /ws?user_id=<user_id>
func (h *WSHandler) HandleEventsWS(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}
	if !httpHandler.Authorize(c, userID) {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	h.mgr.Register(userID, conn)
	log.Printf("events subscriber connected: %s", userID)

	defer func() {
		h.mgr.Unregister(userID, conn)
		log.Printf("events subscriber disconnected: %s", userID)
	}()

	// The server only pushes; reads drain control frames and detect close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read error from %s: %v", userID, err)
			}
			return
		}
	}
}

// GetConnectedUsers GET /ws/connected
func (h *WSHandler) GetConnectedUsers(c *gin.Context) {
	users := h.mgr.List()
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
