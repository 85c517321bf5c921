package ws

import (
	"adminboard/common"
	"adminboard/notify"
	"encoding/json"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const initUnreadLimit = 50

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// token auth happens in the handshake gate; the origin is not part of it
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func RegisterNotificationWsHandler(r *gin.Engine, registry *Registry, dispatcher *notify.Dispatcher) {
	r.GET("/v1/notifications/ws", func(c *gin.Context) {
		HandleConnection(c, registry, dispatcher)
	})
}

// HandleConnection runs one channel lifecycle: gate, upgrade, register, init
// backlog push, then block on reads until the peer goes away.
func HandleConnection(c *gin.Context, registry *Registry, dispatcher *notify.Dispatcher) {
	userId, err := CheckHandshake(c)
	if err != nil {
		// handshake refused: no upgrade, no channel registered
		c.JSON(http.StatusUnauthorized, &common.ErrorBody{Code: "common.unauthenticated", Message: "unauthenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		common.Log.Warnf("websocket upgrade for user %d failed: %v", userId, err)
		return
	}

	channel := NewWebSocketChannel(conn)
	registry.Add(userId, channel)
	defer func() {
		registry.Remove(userId, channel)
		channel.Close()
	}()

	sendInitBacklog(c, userId, channel, dispatcher)

	// server-to-client only: the read loop just detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// sendInitBacklog pushes the unread backlog so a reconnecting client sees
// what it missed while offline. Best effort: the records stay unread in the
// store either way.
func sendInitBacklog(c *gin.Context, userId types.ID, channel Channel, dispatcher *notify.Dispatcher) {
	unread, err := dispatcher.ListUnread(c.Request.Context(), userId, initUnreadLimit)
	if err != nil {
		common.Log.Warnf("failed to load unread backlog of user %d: %v", userId, err)
		return
	}
	payload, err := json.Marshal(&notify.WsMessage{Type: "init", Data: unread})
	if err != nil {
		common.Log.Warnf("failed to marshal unread backlog of user %d: %v", userId, err)
		return
	}
	if err := channel.Send(payload); err != nil {
		common.Log.Debugf("init push to user %d failed: %v", userId, err)
	}
}
