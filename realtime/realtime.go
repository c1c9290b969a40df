package realtime

import (
	"contests/metrics"
	"contests/services"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	UpdateSignup = "signup"
	UpdateScore  = "score"
)

const (
	broadcastBuffer = 64 // Pending updates before BroadcastScoreboard starts dropping
	clientBuffer    = 16 // Pending updates per client before it is disconnected
)

// writeWait bounds a single write to a client
var writeWait = 10 * time.Second

// client owns the write side of one websocket connection
type client struct {
	conn *websocket.Conn
	send chan ScoreboardUpdate
}

var (
	competitionClients = make(map[uint]map[*websocket.Conn]*client)   // Map of competition ID to connected clients
	broadcast          = make(chan ScoreboardUpdate, broadcastBuffer) // Broadcast channel for updates
	mutex              sync.Mutex                                     // Mutex to protect competitionClients map
)

// ScoreboardUpdate carries a fresh scoreboard snapshot after a signup or a score change
type ScoreboardUpdate struct {
	CompetitionID uint                `json:"competition_id"`
	UpdateType    string              `json:"update_type"` // "signup" or "score"
	Scoreboard    []services.ScoreRow `json:"scoreboard"`
}

// RegisterClient adds a WebSocket client to a specific competition and starts its writer
func RegisterClient(competitionID uint, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan ScoreboardUpdate, clientBuffer)}

	mutex.Lock()
	if competitionClients[competitionID] == nil {
		competitionClients[competitionID] = make(map[*websocket.Conn]*client)
	}
	competitionClients[competitionID][conn] = c
	mutex.Unlock()
	metrics.RealtimeClients.Inc()

	go c.writePump(competitionID)
}

// UnregisterClient removes a WebSocket client from a specific competition
func UnregisterClient(competitionID uint, conn *websocket.Conn) {
	mutex.Lock()
	defer mutex.Unlock()
	removeLocked(competitionID, conn)
}

// removeLocked drops conn from the registry and stops its writer. mutex must be held.
func removeLocked(competitionID uint, conn *websocket.Conn) bool {
	clients, exists := competitionClients[competitionID]
	if !exists {
		return false
	}
	c, ok := clients[conn]
	if !ok {
		return false
	}
	delete(clients, conn)
	if len(clients) == 0 {
		delete(competitionClients, competitionID)
	}
	close(c.send)
	metrics.RealtimeClients.Dec()
	return true
}

// ClientCount returns the number of clients watching a competition
func ClientCount(competitionID uint) int {
	mutex.Lock()
	defer mutex.Unlock()
	return len(competitionClients[competitionID])
}

// BroadcastScoreboard queues the update for all clients watching its competition.
// It never blocks; when the queue is full the update is dropped.
func BroadcastScoreboard(update ScoreboardUpdate) {
	select {
	case broadcast <- update:
	default:
		metrics.RealtimeDroppedUpdates.WithLabelValues("queue_full").Inc()
		log.WithField("competition_id", update.CompetitionID).Warn("Scoreboard broadcast queue full, update dropped")
	}
}

func handleBroadcast() {
	for update := range broadcast {
		var evicted []*websocket.Conn

		mutex.Lock()
		for conn, c := range competitionClients[update.CompetitionID] {
			select {
			case c.send <- update:
			default:
				evicted = append(evicted, conn)
			}
		}
		for _, conn := range evicted {
			removeLocked(update.CompetitionID, conn)
		}
		mutex.Unlock()

		for _, conn := range evicted {
			metrics.RealtimeDroppedUpdates.WithLabelValues("slow_client").Inc()
			log.WithField("competition_id", update.CompetitionID).Warn("Disconnecting slow websocket client")
			// Closing makes the handler's read loop return
			go conn.Close()
		}
	}
}

// writePump delivers queued updates to the connection until the client is removed
func (c *client) writePump(competitionID uint) {
	for update := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(update); err != nil {
			log.Printf("WebSocket write error: %v", err)
			UnregisterClient(competitionID, c.conn)
			c.conn.Close()
			return
		}
	}
}

func init() {
	go handleBroadcast()
}
