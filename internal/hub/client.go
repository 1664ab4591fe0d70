package hub

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server-to-client event name for reminder pushes.
const EventReceiveReminder = "ReceiveReminder"

// Client-to-server method names.
const (
	methodJoinReminderGroup   = "JoinReminderGroup"
	methodLeaveReminderGroup  = "LeaveReminderGroup"
	methodSendTestReminder    = "SendTestReminder"
	methodSendReminderToGroup = "SendReminderToGroup"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is what clients send over the wire.
type clientMessage struct {
	Method    string `json:"method"`
	GroupName string `json:"group_name,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Client is one websocket connection registered with the hub. Outbound
// events go through a buffered channel; a full buffer drops the event
// rather than blocking the sender.
type Client struct {
	id            string
	hub           *Hub
	conn          *websocket.Conn
	send          chan Event
	reminderGroup string
}

// Send implements Sender. It never blocks: a connection that stopped
// draining its buffer loses events instead of stalling a broadcast.
func (c *Client) Send(event string, payload interface{}) error {
	select {
	case c.send <- Event{Event: event, Payload: payload}:
		return nil
	default:
		return websocket.ErrCloseSent
	}
}

// ServeWS upgrades the request and runs the connection until it closes.
func ServeWS(h *Hub, reminderGroup string) gin.HandlerFunc {
	if reminderGroup == "" {
		reminderGroup = DefaultReminderGroup
	}
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.Errorf("Failed to upgrade websocket: %v", err)
			return
		}

		client := &Client{
			id:            uuid.New().String(),
			hub:           h,
			conn:          conn,
			send:          make(chan Event, sendBufferSize),
			reminderGroup: reminderGroup,
		}

		h.OnConnect(client.id, client)

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.OnDisconnect(c.id)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Debugf("Websocket read error: %v", err)
			}
			return
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg clientMessage) {
	switch msg.Method {
	case methodJoinReminderGroup:
		c.hub.JoinGroup(c.id, c.reminderGroup)
	case methodLeaveReminderGroup:
		c.hub.LeaveGroup(c.id, c.reminderGroup)
	case methodSendTestReminder:
		c.hub.Broadcast(EventReceiveReminder, msg.Message)
	case methodSendReminderToGroup:
		c.hub.SendToGroup(msg.GroupName, EventReceiveReminder, msg.Message)
	default:
		logrus.WithField("method", msg.Method).Debug("Unknown hub method ignored")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
