package websocket

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	"github.com/jivitsolutions/jivit-site/infrastructure/valkey"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
)

const (
	CodeActivity         = "ACTIVITY"
	CodeCacheInvalidated = "CACHE_INVALIDATED"

	wsChannel   = "ws_broadcast"
	queueLength = 256
)

type BroadcastMessage struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Result   any    `json:"result"`
	SenderID string `json:"sender_id,omitempty"`
}

type outbound struct {
	msg        BroadcastMessage
	distribute bool
}

// Hub fans admin feed events out to every connected websocket. Events that
// only exist on this node are also published over Valkey so admins connected
// to another node see them.
type Hub struct {
	clients    map[*websocket.Conn]struct{}
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan outbound
	done       chan struct{}
	connected  atomic.Int64

	vk      *valkey.Client
	localID string
}

// NewHub creates a hub; vk may be nil for a single node.
func NewHub(vk *valkey.Client, serverID string) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]struct{}),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan outbound, queueLength),
		done:       make(chan struct{}),
		vk:         vk,
		localID:    serverID,
	}
}

func (h *Hub) Clients() int {
	return int(h.connected.Load())
}

// Publish sends msg to local clients and to the other nodes.
func (h *Hub) Publish(msg BroadcastMessage) {
	h.enqueue(outbound{msg: msg, distribute: true})
}

// Local sends msg to the clients of this node only.
func (h *Hub) Local(msg BroadcastMessage) {
	h.enqueue(outbound{msg: msg})
}

func (h *Hub) enqueue(o outbound) {
	select {
	case h.broadcast <- o:
	default:
		logrus.Warnf("[WS] broadcast queue full, dropping %s", o.msg.Code)
	}
}

// ActivityListener forwards recorded audit entries to the feed.
func (h *Hub) ActivityListener() func(auditDomain.ActivityLog) {
	return func(log auditDomain.ActivityLog) {
		h.Publish(BroadcastMessage{
			Code:    CodeActivity,
			Message: string(log.Action) + " " + log.EntityType,
			Result:  log,
		})
	}
}

// CacheListener forwards cache invalidations. The cache bus already delivers
// remote invalidations on every node, so these stay local.
func (h *Hub) CacheListener() func(cache.Event) {
	return func(ev cache.Event) {
		h.Local(BroadcastMessage{
			Code:    CodeCacheInvalidated,
			Message: "cache " + ev.Cache + " invalidated",
			Result:  ev,
		})
	}
}

func (h *Hub) handleRegister(conn *websocket.Conn) {
	h.clients[conn] = struct{}{}
	h.connected.Store(int64(len(h.clients)))
	logrus.Debug("[WS] Connection registered")
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	delete(h.clients, conn)
	h.connected.Store(int64(len(h.clients)))
	logrus.Debug("[WS] Connection unregistered")
}

func (h *Hub) broadcastToLocal(message BroadcastMessage) {
	marshalMessage, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, marshalMessage); err != nil {
			logrus.Errorf("[WS] Write error: %v", err)
			h.closeConnection(conn)
		}
	}
}

func (h *Hub) publishToValkey(ctx context.Context, message BroadcastMessage) {
	message.SenderID = h.localID

	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	if err := h.vk.Publish(ctx, wsChannel, data); err != nil {
		logrus.Errorf("[WS] Failed to publish to Valkey: %v", err)
	}
}

func (h *Hub) startValkeySubscriber(ctx context.Context) {
	logrus.Info("[WS] Starting Valkey Pub/Sub subscriber for distributed events")
	go valkey.KeepSubscribed(ctx, time.Second, func(ctx context.Context) error {
		return h.vk.Subscribe(ctx, wsChannel, h.handleRemote)
	}, func(err error) {
		logrus.WithError(err).Warn("[WS] Valkey subscriber dropped, retrying")
	})
}

func (h *Hub) handleRemote(payload []byte) {
	var msg BroadcastMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}
	if msg.SenderID == h.localID {
		return
	}
	msg.SenderID = ""
	h.enqueue(outbound{msg: msg})
}

func (h *Hub) closeConnection(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = conn.Close()
	h.handleUnregister(conn)
}

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	if h.vk != nil {
		h.startValkeySubscriber(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			for conn := range h.clients {
				h.closeConnection(conn)
			}
			return

		case conn := <-h.register:
			h.handleRegister(conn)

		case conn := <-h.unregister:
			h.handleUnregister(conn)

		case out := <-h.broadcast:
			h.broadcastToLocal(out.msg)
			if out.distribute && h.vk != nil {
				h.publishToValkey(ctx, out.msg)
			}
		}
	}
}

func RegisterRoutes(app fiber.Router, hub *Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		defer func() {
			select {
			case hub.unregister <- conn:
			case <-hub.done:
			}
			_ = conn.Close()
		}()

		select {
		case hub.register <- conn:
		case <-hub.done:
			return
		}

		// The feed is one-way; reads only detect the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Debugf("[WS] read error: %v", err)
				}
				return
			}
		}
	}))
}
