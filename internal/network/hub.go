// Package network streams the match to spectators over websockets and
// feeds their control commands back into the engine.
package network

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/renlu07/wolf-arena/internal/engine"
	"github.com/renlu07/wolf-arena/internal/game"
	"github.com/renlu07/wolf-arena/internal/platform/logger"
	"github.com/renlu07/wolf-arena/internal/platform/metrics"
)

// Controller is the engine surface the spectator controls drive.
type Controller interface {
	Play()
	Pause()
	Step()
	SetDelay(d time.Duration)
	Reset()
}

// Frame is one outbound websocket message.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type phasePayload struct {
	Day   int    `json:"day"`
	Phase string `json:"phase"`
	Title string `json:"title"`
}

type effectPayload struct {
	Effect string `json:"effect"`
	Seat   int    `json:"seat"`
}

// seatView is the spectator rendering of one seat. Role is blank until
// it is public knowledge or the role toggle is on.
type seatView struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Alive    bool   `json:"alive"`
	Sheriff  bool   `json:"sheriff"`
	Role     string `json:"role,omitempty"`
	Deceased string `json:"deathReason,omitempty"`
}

type statePayload struct {
	Day    int        `json:"day"`
	Phase  string     `json:"phase"`
	Winner string     `json:"winner,omitempty"`
	Seats  []seatView `json:"seats"`
}

// Hub fans committed engine events out to every connected spectator and
// applies their toggles. It implements engine.Sink; sink calls enqueue
// onto the run loop and never block the engine.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	control    chan controlMsg

	ctrl    Controller
	log     *logger.Logger
	metrics *metrics.Collector

	// Spectator toggles. Atomics because sink calls arrive on the
	// engine goroutine while the run loop flips them.
	showThoughts atomic.Bool
	showRoles    atomic.Bool

	stateMu   sync.Mutex
	lastState *game.State
}

// NewHub builds a hub over the given controller.
func NewHub(ctrl Controller, log *logger.Logger, m *metrics.Collector) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		control:    make(chan controlMsg, 16),
		ctrl:       ctrl,
		log:        log,
		metrics:    m,
	}
}

// Run owns the client set. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.metrics.WSClients.Add(1)
			h.log.Info("spectator connected", "clients", len(h.clients))
			if buf := h.encodeLastState(); buf != nil {
				c.trySend(buf)
			}

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
				h.metrics.WSClients.Add(-1)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				c.trySend(msg)
			}
			h.metrics.WSMessagesOut.Add(int64(len(h.clients)))

		case cmd := <-h.control:
			h.apply(cmd)
		}
	}
}

type controlMsg struct {
	Command string `json:"command"`
	Value   int    `json:"value,omitempty"`
}

func (h *Hub) apply(cmd controlMsg) {
	switch cmd.Command {
	case "PLAY":
		h.ctrl.Play()
	case "PAUSE":
		h.ctrl.Pause()
	case "STEP":
		h.ctrl.Step()
	case "SPEED":
		h.ctrl.SetDelay(time.Duration(cmd.Value) * time.Millisecond)
	case "RESET":
		h.ctrl.Reset()
	case "TOGGLE_THOUGHTS":
		h.showThoughts.Store(!h.showThoughts.Load())
		h.resendState()
	case "TOGGLE_ROLES":
		h.showRoles.Store(!h.showRoles.Load())
		h.resendState()
	default:
		h.log.Warn("unknown control command", "command", cmd.Command)
	}
}

func (h *Hub) resendState() {
	if buf := h.encodeLastState(); buf != nil {
		for c := range h.clients {
			c.trySend(buf)
		}
	}
}

func (h *Hub) encodeLastState() []byte {
	h.stateMu.Lock()
	s := h.lastState
	h.stateMu.Unlock()
	if s == nil {
		return nil
	}
	return h.encodeState(s)
}

func (h *Hub) push(frameType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("encode frame", "type", frameType, "error", err)
		return
	}
	buf, err := json.Marshal(Frame{Type: frameType, Payload: raw})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- buf:
	default:
		// A jammed broadcast queue drops frames rather than the match.
	}
}

// PhaseChanged implements engine.Sink.
func (h *Hub) PhaseChanged(day int, phase game.Phase) {
	h.push("phase", phasePayload{Day: day, Phase: string(phase), Title: phase.Title()})
}

// LogAppended implements engine.Sink. Private thoughts pass through only
// when the spectator toggle is on; the per-agent visibility filter never
// runs here because spectators are not players.
func (h *Hub) LogAppended(m game.LogMessage) {
	if m.Type == game.MsgThought && !h.showThoughts.Load() {
		return
	}
	h.push("log", m)
}

// EffectTriggered implements engine.Sink.
func (h *Hub) EffectTriggered(effect string, seat int) {
	h.push("effect", effectPayload{Effect: effect, Seat: seat})
}

// EffectsCleared implements engine.Sink.
func (h *Hub) EffectsCleared() {
	h.push("clear_effects", struct{}{})
}

// StateSnapshot implements engine.Sink.
func (h *Hub) StateSnapshot(s *game.State) {
	h.stateMu.Lock()
	h.lastState = s
	h.stateMu.Unlock()
	if buf := h.encodeState(s); buf != nil {
		select {
		case h.broadcast <- buf:
		default:
		}
	}
}

func (h *Hub) encodeState(s *game.State) []byte {
	p := statePayload{
		Day:    s.Day,
		Phase:  string(s.Phase),
		Winner: string(s.Winner),
	}
	for _, pl := range s.Players {
		v := seatView{
			ID:      pl.ID,
			Name:    pl.Name,
			Alive:   pl.Alive,
			Sheriff: pl.Sheriff,
		}
		if h.showRoles.Load() || pl.RoleRevealed {
			v.Role = pl.Role.Label()
		}
		if !pl.Alive {
			v.Deceased = string(pl.DeathReason)
		}
		p.Seats = append(p.Seats, v)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	buf, err := json.Marshal(Frame{Type: "state", Payload: raw})
	if err != nil {
		return nil
	}
	return buf
}

var _ engine.Sink = (*Hub)(nil)
