package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/domain/role"
	"github.com/renlu07/wolf-arena/internal/game"
	"github.com/renlu07/wolf-arena/internal/infra/ai"
	"github.com/renlu07/wolf-arena/internal/platform/logger"
	"github.com/renlu07/wolf-arena/internal/platform/metrics"
)

// scriptedProvider returns a fixed completion, or an error, and keeps
// the last request for prompt assertions.
type scriptedProvider struct {
	name string
	text string
	err  error
	last ai.Request
}

func (p *scriptedProvider) Complete(_ context.Context, req ai.Request) (*ai.Response, error) {
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &ai.Response{Text: p.text, TokensUsed: 42}, nil
}
func (p *scriptedProvider) Name() string    { return p.name }
func (p *scriptedProvider) Available() bool { return true }

func testState() *game.State {
	roles := []role.Role{
		role.Werewolf, role.Werewolf, role.Werewolf, role.Werewolf,
		role.Villager, role.Villager, role.Villager, role.Villager,
		role.Seer, role.Witch, role.Guard, role.Hunter,
	}
	roster := make([]*player.Player, 0, game.Seats)
	for i, r := range roles {
		roster = append(roster, &player.Player{
			ID: i + 1, Name: "P", Role: r, Alive: true,
			Provider: "test", Model: "test-model",
			Style: player.Playstyle{SpeakTemp: 0.7},
		})
	}
	s := game.New(roster)
	s.Day = 1
	return s
}

func newExecutor(p ai.Provider) *Executor {
	reg := ai.NewRegistry("test", logger.NewNop())
	reg.Register(p)
	return NewExecutor(reg, logger.NewNop(), metrics.New(), 5*time.Second)
}

func TestDecideParsesFencedCompletion(t *testing.T) {
	e := newExecutor(&scriptedProvider{name: "test", text: "```json\n{\"speech\":\"I vote 3\",\"thought\":\"wolf read\",\"voteTarget\":3}\n```"})
	s := testState()
	s.Phase = game.PhaseDayVote

	out := e.Decide(context.Background(), s, s.PlayerByID(5))
	require.NotNil(t, out)
	assert.Equal(t, 3, out.VoteTarget)
	assert.Equal(t, "I vote 3", out.Speech)
}

func TestDecideProviderErrorYieldsSafeDefault(t *testing.T) {
	e := newExecutor(&scriptedProvider{name: "test", err: errors.New("backend down")})
	s := testState()
	s.Phase = game.PhaseDayVote

	out := e.Decide(context.Background(), s, s.PlayerByID(5))
	require.NotNil(t, out)
	assert.Equal(t, 0, out.VoteTarget)
	assert.Equal(t, "parse error", out.Thought)
}

func TestDecideGarbageCompletionYieldsSafeDefault(t *testing.T) {
	e := newExecutor(&scriptedProvider{name: "test", text: "I'm sorry, I cannot play this game."})
	s := testState()
	s.Phase = game.PhaseDayDiscuss

	out := e.Decide(context.Background(), s, s.PlayerByID(5))
	require.NotNil(t, out)
	assert.NotEmpty(t, out.Speech)
	assert.Equal(t, 0, out.VoteTarget)
}

func TestDecideRepairsIllegalVote(t *testing.T) {
	e := newExecutor(&scriptedProvider{name: "test", text: `{"speech":"vote the dead guy","voteTarget":7}`})
	s := testState()
	s.Phase = game.PhaseDayVote
	s.PlayerByID(7).Alive = false

	out := e.Decide(context.Background(), s, s.PlayerByID(5))
	assert.Equal(t, 0, out.VoteTarget)
}

func TestWitchPromptNamesPendingVictim(t *testing.T) {
	prov := &scriptedProvider{name: "test", text: `{"thought":"save them","actionParams":{"useAntidote":true}}`}
	e := newExecutor(prov)
	s := testState()
	s.Phase = game.PhaseNightWitch
	s.NightVictimID = 5
	s.Append(game.MsgActionKill, "The pack attacks Player 5.", 1, nil, nil)

	e.Decide(context.Background(), s, s.PlayerByID(10))
	assert.Contains(t, prov.last.Prompt, "Player 5", "the witch must be told who is dying")
	assert.Contains(t, prov.last.Prompt, "antidote can save")
}

func TestTemperatureFollowsTurnKind(t *testing.T) {
	prov := &scriptedProvider{name: "test", text: `{"voteTarget":0}`}
	e := newExecutor(prov)
	s := testState()
	seat := s.PlayerByID(5)
	seat.Style = player.Playstyle{ThinkTemp: 0.2, SpeakTemp: 0.9}

	s.Phase = game.PhaseDayVote
	e.Decide(context.Background(), s, seat)
	assert.InDelta(t, 0.2, prov.last.Temperature, 1e-9, "ballots run at the reasoning temperature")

	s.Phase = game.PhaseDayDiscuss
	e.Decide(context.Background(), s, seat)
	assert.InDelta(t, 0.9, prov.last.Temperature, 1e-9, "open speech runs hotter")
}

func TestDecideGuardRepeatProtectRepaired(t *testing.T) {
	e := newExecutor(&scriptedProvider{name: "test", text: `{"speech":"","thought":"protect 5 again","voteTarget":5}`})
	s := testState()
	s.Phase = game.PhaseNightGuard
	s.LastGuardProtectID = 5

	out := e.Decide(context.Background(), s, s.PlayerByID(11))
	assert.Equal(t, 0, out.VoteTarget)
}
