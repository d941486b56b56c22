package network

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/game"
	"github.com/renlu07/wolf-arena/internal/platform/logger"
	"github.com/renlu07/wolf-arena/internal/platform/metrics"
)

type fakeController struct {
	played, paused, stepped, resets int
	delay                           time.Duration
}

func (f *fakeController) Play()                   { f.played++ }
func (f *fakeController) Pause()                  { f.paused++ }
func (f *fakeController) Step()                   { f.stepped++ }
func (f *fakeController) SetDelay(d time.Duration) { f.delay = d }
func (f *fakeController) Reset()                  { f.resets++ }

func newTestHub() (*Hub, *fakeController) {
	ctrl := &fakeController{}
	return NewHub(ctrl, logger.NewNop(), metrics.New()), ctrl
}

func drain(t *testing.T, h *Hub) Frame {
	t.Helper()
	select {
	case raw := <-h.broadcast:
		var f Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame broadcast")
		return Frame{}
	}
}

func TestThoughtsHiddenByDefault(t *testing.T) {
	h, _ := newTestHub()

	h.LogAppended(game.LogMessage{Type: game.MsgThought, Content: "secret"})
	select {
	case <-h.broadcast:
		t.Fatal("thought leaked to spectators")
	case <-time.After(20 * time.Millisecond):
	}

	h.showThoughts.Store(true)
	h.LogAppended(game.LogMessage{Type: game.MsgThought, Content: "secret"})
	f := drain(t, h)
	assert.Equal(t, "log", f.Type)
}

func TestStateSnapshotMasksRoles(t *testing.T) {
	h, _ := newTestHub()
	s := game.New([]*player.Player{
		{ID: 1, Name: "Victor", Role: "WEREWOLF", Alive: true},
		{ID: 2, Name: "Lily", Role: "SEER", Alive: false, RoleRevealed: true, DeathReason: player.DeathExile},
	})

	h.StateSnapshot(s)
	f := drain(t, h)
	require.Equal(t, "state", f.Type)

	var p statePayload
	require.NoError(t, json.Unmarshal(f.Payload, &p))
	require.Len(t, p.Seats, 2)
	assert.Empty(t, p.Seats[0].Role, "hidden roles stay hidden")
	assert.Equal(t, "Seer", p.Seats[1].Role, "revealed roles are shown")
	assert.Equal(t, string(player.DeathExile), p.Seats[1].Deceased)
}

func TestControlCommandsReachTheEngine(t *testing.T) {
	h, ctrl := newTestHub()
	go h.Run()

	for _, cmd := range []controlMsg{
		{Command: "PLAY"},
		{Command: "PAUSE"},
		{Command: "STEP"},
		{Command: "SPEED", Value: 500},
		{Command: "RESET"},
	} {
		h.control <- cmd
	}

	require.Eventually(t, func() bool { return ctrl.resets == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, ctrl.played)
	assert.Equal(t, 1, ctrl.paused)
	assert.Equal(t, 1, ctrl.stepped)
	assert.Equal(t, 500*time.Millisecond, ctrl.delay)
}
