package hub

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultReminderGroup is the group reminder events are pushed to.
const DefaultReminderGroup = "Reminders"

// Sender delivers one event to a single live connection. Implemented by the
// websocket client; tests substitute their own.
type Sender interface {
	Send(event string, payload interface{}) error
}

// Event is the envelope every client receives.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// ConnectionInfo is a dashboard snapshot of one live connection.
type ConnectionInfo struct {
	ID     string   `json:"id"`
	Groups []string `json:"groups"`
}

// Hub tracks live connections and named groups, and delivers events to all
// connections or to one group. It is the single shared mutable structure of
// the notification path: membership mutations are serialized by the lock and
// every send works off a snapshot taken under the read lock, so a send that
// races a join sees either the old or the new membership, never a torn one.
//
// Groups are rebuilt purely from connect/join/leave events; nothing is
// persisted, so after a restart every client must rejoin.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]Sender
	groups map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]Sender),
		groups: make(map[string]map[string]struct{}),
	}
}

// OnConnect registers a live connection under its identifier.
func (h *Hub) OnConnect(connectionID string, sender Sender) {
	h.mu.Lock()
	h.conns[connectionID] = sender
	h.mu.Unlock()

	logrus.WithField("connection_id", connectionID).Info("Client connected")
}

// OnDisconnect drops the connection and its group memberships. Disconnecting
// is terminal: no in-flight event is retried against the connection.
func (h *Hub) OnDisconnect(connectionID string) {
	h.mu.Lock()
	delete(h.conns, connectionID)
	for _, members := range h.groups {
		delete(members, connectionID)
	}
	h.mu.Unlock()

	logrus.WithField("connection_id", connectionID).Info("Client disconnected")
}

// JoinGroup adds the connection to the group. Joining twice has the same
// effect as joining once.
func (h *Hub) JoinGroup(connectionID, groupName string) {
	h.mu.Lock()
	members, ok := h.groups[groupName]
	if !ok {
		members = make(map[string]struct{})
		h.groups[groupName] = members
	}
	members[connectionID] = struct{}{}
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"connection_id": connectionID,
		"group":         groupName,
	}).Debug("Connection joined group")
}

// LeaveGroup removes the membership. Removing a non-member is a no-op.
func (h *Hub) LeaveGroup(connectionID, groupName string) {
	h.mu.Lock()
	if members, ok := h.groups[groupName]; ok {
		delete(members, connectionID)
	}
	h.mu.Unlock()
}

// Broadcast delivers the event to every currently connected client.
// Delivery is fire-and-forget against the membership snapshot at call time.
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.mu.RLock()
	targets := make([]Sender, 0, len(h.conns))
	for _, sender := range h.conns {
		targets = append(targets, sender)
	}
	h.mu.RUnlock()

	h.deliver(targets, event, payload)
}

// SendToGroup delivers the event to every member of the group. An empty or
// unknown group delivers to nobody.
func (h *Hub) SendToGroup(groupName, event string, payload interface{}) {
	h.mu.RLock()
	var targets []Sender
	for connectionID := range h.groups[groupName] {
		if sender, ok := h.conns[connectionID]; ok {
			targets = append(targets, sender)
		}
	}
	h.mu.RUnlock()

	h.deliver(targets, event, payload)
}

// IsMember reports whether the connection currently belongs to the group.
func (h *Hub) IsMember(connectionID, groupName string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.groups[groupName][connectionID]
	return ok
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Connections returns a dashboard snapshot of all live connections and
// their group memberships.
func (h *Hub) Connections() []ConnectionInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]ConnectionInfo, 0, len(h.conns))
	for connectionID := range h.conns {
		info := ConnectionInfo{ID: connectionID, Groups: []string{}}
		for groupName, members := range h.groups {
			if _, ok := members[connectionID]; ok {
				info.Groups = append(info.Groups, groupName)
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// deliver runs outside the lock. A send to a connection that died between
// snapshot and delivery is absorbed, not an error.
func (h *Hub) deliver(targets []Sender, event string, payload interface{}) {
	for _, sender := range targets {
		if err := sender.Send(event, payload); err != nil {
			logrus.WithError(err).Debug("Dropped event for dead connection")
		}
	}
}
