// Package feed streams actor transforms to websocket clients, e.g. a
// browser renderer or a recording tool.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/LawyerK/3D-Demo/internal/sim"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
)

const (
	defaultBuffer = 16
	writeTimeout  = time.Second
)

// Message is the JSON document sent for every frame.
type Message struct {
	Type        string     `json:"type"`
	Seq         uint64     `json:"seq"`
	Elapsed     float64    `json:"elapsed"`
	Position    mgl64.Vec3 `json:"position"`
	Eye         mgl64.Vec3 `json:"eye"`
	Camera      mgl64.Vec3 `json:"camera"`
	HalfExtents mgl64.Vec3 `json:"half_extents"`
	Velocity    mgl64.Vec3 `json:"velocity"`
	OnGround    bool       `json:"on_ground"`
	Flying      bool       `json:"flying"`
	Perspective string     `json:"perspective"`
}

func NewMessage(f sim.Frame) Message {
	return Message{
		Type:        "frame",
		Seq:         f.Seq,
		Elapsed:     f.Elapsed,
		Position:    f.Transform.Position,
		Eye:         f.Transform.Eye,
		Camera:      f.Camera,
		HalfExtents: f.Transform.HalfExtents,
		Velocity:    f.Transform.Velocity,
		OnGround:    f.Transform.OnGround,
		Flying:      f.Transform.Flying,
		Perspective: f.Perspective.String(),
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub broadcasts frames to every connected client. Emit never blocks: a
// client whose queue is full is disconnected.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	buffer   int
	log      *slog.Logger
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		buffer: buffer,
		log:    slog.Default(),
	}
}

func (h *Hub) Emit(f sim.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(NewMessage(f))
	if err != nil {
		h.log.Error("Failed to encode frame", "seq", f.Seq, "error", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("Dropping slow feed client", "seq", f.Seq)
			delete(h.clients, c)
			c.close()
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Feed upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("Feed client connected", "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
	h.log.Info("Feed client disconnected", "remote", r.RemoteAddr)
}

// readPump only watches for the peer going away.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

// Serve exposes hub at /feed on addr until ctx is done.
func Serve(ctx context.Context, addr string, hub *Hub) error {
	mux := http.NewServeMux()
	mux.Handle("/feed", hub)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Feed listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
