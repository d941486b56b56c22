package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renlu07/wolf-arena/internal/agents/cognition"
	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/domain/role"
	"github.com/renlu07/wolf-arena/internal/game"
	"github.com/renlu07/wolf-arena/internal/platform/config"
	"github.com/renlu07/wolf-arena/internal/platform/logger"
	"github.com/renlu07/wolf-arena/internal/platform/metrics"
)

// scriptAgent decides via a function. Decisions must already be legal;
// the real executor repairs before the engine ever sees them.
type scriptAgent struct {
	fn    func(s *game.State, p *player.Player) *cognition.Response
	calls atomic.Int64
}

func (a *scriptAgent) Decide(_ context.Context, s *game.State, p *player.Player) *cognition.Response {
	a.calls.Add(1)
	if a.fn == nil {
		return cognition.SafeDefault()
	}
	r := a.fn(s, p)
	if r == nil {
		return cognition.SafeDefault()
	}
	return r
}

func newTestEngine(t *testing.T, fn func(s *game.State, p *player.Player) *cognition.Response) (*Engine, *scriptAgent) {
	t.Helper()
	cfg := config.Default()
	cfg.Tuning.Seed = 1
	cfg.Tuning.PhaseDelay = 0
	agent := &scriptAgent{fn: fn}
	e := New(Params{
		Agent:   agent,
		Logger:  logger.NewNop(),
		Metrics: metrics.New(),
		Config:  cfg,
	})
	return e, agent
}

// fixedState builds a board with a known role layout: seats 1-4 wolves,
// 5-8 villagers, 9 seer, 10 witch, 11 guard, 12 hunter.
func fixedState() *game.State {
	roles := []role.Role{
		role.Werewolf, role.Werewolf, role.Werewolf, role.Werewolf,
		role.Villager, role.Villager, role.Villager, role.Villager,
		role.Seer, role.Witch, role.Guard, role.Hunter,
	}
	roster := make([]*player.Player, 0, game.Seats)
	for i, r := range roles {
		roster = append(roster, &player.Player{ID: i + 1, Name: "P", Role: r, Alive: true})
	}
	s := game.New(roster)
	s.Day = 2
	return s
}

func votes(m map[int]int) func(s *game.State, p *player.Player) *cognition.Response {
	return func(_ *game.State, p *player.Player) *cognition.Response {
		return &cognition.Response{VoteTarget: m[p.ID]}
	}
}

func TestTallyOrderIndependentAndDeterministic(t *testing.T) {
	a := tally(map[int]int{1: 3, 2: 3, 4: 5, 6: 5, 7: 0})
	b := tally(map[int]int{7: 0, 6: 5, 4: 5, 2: 3, 1: 3})
	assert.Equal(t, a, b)
	assert.Equal(t, []int{3, 5}, a)

	assert.Nil(t, tally(map[int]int{1: 0, 2: 0}), "all abstain means no winner")
	assert.Equal(t, []int{9}, tally(map[int]int{1: 9, 2: 9, 3: 4}))
}

func TestVictoryConditions(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	st := fixedState()
	for _, p := range st.Players {
		if p.Role == role.Werewolf {
			p.Alive = false
		}
	}
	require.True(t, e.checkVictory(st))
	assert.Equal(t, role.Good, st.Winner)

	st = fixedState()
	for _, p := range st.Players {
		if p.Role == role.Villager {
			p.Alive = false
		}
	}
	require.True(t, e.checkVictory(st))
	assert.Equal(t, role.Bad, st.Winner, "wolves win when the plain villagers are gone")

	st = fixedState()
	for _, p := range st.Players {
		if p.Role.IsGod() {
			p.Alive = false
		}
	}
	require.True(t, e.checkVictory(st))
	assert.Equal(t, role.Bad, st.Winner, "wolves win when the god roles are gone")

	st = fixedState()
	assert.False(t, e.checkVictory(st), "a mixed living board has no winner")
}

func TestRoundCapForcesWolfWin(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	st := fixedState()
	st.Day = 16

	require.True(t, e.checkVictory(st))
	assert.Equal(t, role.Bad, st.Winner)
	assert.Equal(t, game.PhaseGameOver, st.Phase)
}

func TestRoundCapEndsDeathFreeMatch(t *testing.T) {
	// Everyone abstains forever: peaceful nights, tied votes, no deaths.
	e, agent := newTestEngine(t, nil)

	st := fixedState()
	st.Day = 40
	st.Phase = game.PhaseNightStart
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.Equal(t, game.PhaseGameOver, got.Phase, "the cap fires without any death event")
	assert.Equal(t, role.Bad, got.Winner)
	assert.True(t, got.Over())
	assert.Zero(t, agent.calls.Load(), "the match ends before any seat is prompted")
}

func TestHighlightsCommitWithTheState(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	st := fixedState()
	e.highlight(st, "reel line")
	assert.Equal(t, []string{"reel line"}, st.Highlights)
	assert.Empty(t, e.State().Highlights, "an uncommitted working copy keeps its reel to itself")

	clone := st.Clone()
	clone.Highlights = append(clone.Highlights, "second")
	assert.Len(t, st.Highlights, 1, "clones do not share the reel backing array")
}

func TestCommittedTickRecordsHighlights(t *testing.T) {
	e, _ := newTestEngine(t, func(_ *game.State, p *player.Player) *cognition.Response {
		return &cognition.Response{Action: cognition.ActionParams{UseAntidote: true}}
	})

	st := fixedState()
	st.Phase = game.PhaseNightWitch
	st.NightVictimID = 5
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	require.Len(t, got.Highlights, 1)
	assert.Contains(t, got.Highlights[0], "witch saved")
}

func TestSheriffVoteTieGoesToRunoff(t *testing.T) {
	ballots := map[int]int{3: 1, 4: 1, 5: 1, 6: 2, 7: 2, 8: 2}
	e, _ := newTestEngine(t, votes(ballots))

	st := fixedState()
	st.Phase = game.PhaseSheriffVote
	st.SheriffCandidates = []int{1, 2}
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.Equal(t, game.PhaseSheriffPKSpeech, got.Phase, "a tie goes to runoff speeches, not to announce")
	assert.Equal(t, []int{1, 2}, got.SheriffCandidates)
	assert.Equal(t, []int{1, 2}, got.DiscussionQueue)
	assert.Equal(t, 0, got.SheriffID)
}

func TestSheriffRunoffTieLeavesNoSheriff(t *testing.T) {
	ballots := map[int]int{3: 1, 4: 2}
	e, _ := newTestEngine(t, votes(ballots))

	st := fixedState()
	st.Phase = game.PhaseSheriffPKVote
	st.SheriffCandidates = []int{1, 2}
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.Equal(t, game.PhaseDayAnnounce, got.Phase)
	assert.Equal(t, 0, got.SheriffID)
	assert.Empty(t, got.SheriffCandidates)
}

func TestSheriffUniqueWinnerTakesBadge(t *testing.T) {
	ballots := map[int]int{3: 1, 4: 1, 5: 2}
	e, _ := newTestEngine(t, votes(ballots))

	st := fixedState()
	st.Phase = game.PhaseSheriffVote
	st.SheriffCandidates = []int{1, 2}
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.Equal(t, 1, got.SheriffID)
	assert.True(t, got.PlayerByID(1).Sheriff)
	assert.Equal(t, game.PhaseDayAnnounce, got.Phase)
}

func TestWitchAntidoteSpentInvariant(t *testing.T) {
	e, _ := newTestEngine(t, func(_ *game.State, _ *player.Player) *cognition.Response {
		return &cognition.Response{Action: cognition.ActionParams{UseAntidote: true}}
	})

	st := fixedState()
	st.Phase = game.PhaseNightWitch
	st.NightVictimID = 5
	st.WitchPotionUsed = true
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.False(t, got.PlayerByID(5).SavedByWitch, "a spent antidote can never save again")
	assert.Equal(t, game.PhaseNightSeer, got.Phase)
}

func TestWitchSaveApplied(t *testing.T) {
	e, _ := newTestEngine(t, func(_ *game.State, _ *player.Player) *cognition.Response {
		return &cognition.Response{Action: cognition.ActionParams{UseAntidote: true}}
	})

	st := fixedState()
	st.Phase = game.PhaseNightWitch
	st.NightVictimID = 5
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.True(t, got.PlayerByID(5).SavedByWitch)
	assert.True(t, got.WitchPotionUsed)
}

func TestProtectedVictimSurvivesDawn(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	st := fixedState()
	st.Phase = game.PhaseDayAnnounce
	st.NightVictimID = 5
	st.PlayerByID(5).Protected = true
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.True(t, got.PlayerByID(5).Alive)
	assert.Equal(t, game.PhaseDayDiscuss, got.Phase)
	assert.Contains(t, got.Logs[len(got.Logs)-1].Content, "peaceful")
}

func TestUnprotectedVictimDiesAtDawn(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	st := fixedState()
	st.Phase = game.PhaseDayAnnounce
	st.NightVictimID = 5
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.False(t, got.PlayerByID(5).Alive)
	assert.Equal(t, player.DeathNight, got.PlayerByID(5).DeathReason)
	assert.Equal(t, game.PhaseDayDiscuss, got.Phase, "night deaths past day one get no last words")
}

func TestDayOneVictimGetsLastWords(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	st := fixedState()
	st.Day = 1
	st.Phase = game.PhaseDayAnnounce
	st.NightVictimID = 5
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.Equal(t, game.PhaseDayLastWords, got.Phase)
	assert.Equal(t, []int{5}, got.DiscussionQueue)
	assert.Equal(t, game.PhaseDayDiscuss, got.NextPhaseAfterLastWords)
}

func TestExileGetsLastWordsThenNight(t *testing.T) {
	all5 := make(map[int]int)
	for id := 1; id <= 12; id++ {
		all5[id] = 5
	}
	e, _ := newTestEngine(t, votes(all5))

	st := fixedState()
	st.Phase = game.PhaseDayVote
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	exiled := got.PlayerByID(5)
	assert.False(t, exiled.Alive)
	assert.Equal(t, player.DeathExile, exiled.DeathReason)
	assert.True(t, exiled.RoleRevealed)
	assert.Equal(t, game.PhaseDayLastWords, got.Phase)
	assert.Equal(t, []int{5}, got.DiscussionQueue)
	assert.Equal(t, game.PhaseNightStart, got.NextPhaseAfterLastWords)

	for _, p := range got.Players {
		assert.Zero(t, p.VoteTarget, "vote scratch is cleared after the tally")
	}
}

func TestExileRunoffTieExilesNobody(t *testing.T) {
	ballots := map[int]int{3: 1, 4: 2}
	e, _ := newTestEngine(t, votes(ballots))

	st := fixedState()
	st.Phase = game.PhaseDayPKVote
	st.PKCandidates = []int{1, 2}
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.True(t, got.PlayerByID(1).Alive)
	assert.True(t, got.PlayerByID(2).Alive)
	assert.Equal(t, game.PhaseNightStart, got.Phase)
	assert.Empty(t, got.PKCandidates)
}

func TestHunterShootsOnExile(t *testing.T) {
	e, _ := newTestEngine(t, func(s *game.State, p *player.Player) *cognition.Response {
		if s.Phase == game.PhaseHunterShoot {
			return &cognition.Response{VoteTarget: 1}
		}
		return &cognition.Response{VoteTarget: 12}
	})

	st := fixedState()
	st.Phase = game.PhaseDayVote
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.False(t, got.PlayerByID(12).Alive)
	assert.False(t, got.PlayerByID(1).Alive, "the hunter's shot lands")
	assert.Equal(t, player.DeathHunter, got.PlayerByID(1).DeathReason)
}

func TestPoisonedHunterCannotShoot(t *testing.T) {
	e, agent := newTestEngine(t, func(s *game.State, _ *player.Player) *cognition.Response {
		if s.Phase == game.PhaseHunterShoot {
			return &cognition.Response{VoteTarget: 1}
		}
		return cognition.SafeDefault()
	})

	st := fixedState()
	st.Phase = game.PhaseDayAnnounce
	st.PlayerByID(12).Poisoned = true
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.False(t, got.PlayerByID(12).Alive)
	assert.True(t, got.PlayerByID(1).Alive, "poison silences the gun")
	assert.Equal(t, int64(0), agent.calls.Load(), "no shot prompt is ever issued")
}

func TestSheriffBadgeHandover(t *testing.T) {
	e, _ := newTestEngine(t, func(s *game.State, _ *player.Player) *cognition.Response {
		if s.Phase == game.PhaseSheriffTransfer {
			return &cognition.Response{VoteTarget: 6}
		}
		return cognition.SafeDefault()
	})

	st := fixedState()
	st.Phase = game.PhaseDayAnnounce
	st.NightVictimID = 5
	st.PlayerByID(5).Sheriff = true
	st.SheriffID = 5
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.Equal(t, 6, got.SheriffID)
	assert.True(t, got.PlayerByID(6).Sheriff)
	assert.False(t, got.PlayerByID(5).Sheriff)
}

func TestSheriffBadgeTornOnInvalidSuccessor(t *testing.T) {
	e, _ := newTestEngine(t, func(s *game.State, _ *player.Player) *cognition.Response {
		if s.Phase == game.PhaseSheriffTransfer {
			return &cognition.Response{VoteTarget: 0}
		}
		return cognition.SafeDefault()
	})

	st := fixedState()
	st.Phase = game.PhaseDayAnnounce
	st.NightVictimID = 5
	st.PlayerByID(5).Sheriff = true
	st.SheriffID = 5
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.Equal(t, 0, got.SheriffID)
	for _, p := range got.Players {
		assert.False(t, p.Sheriff)
	}
}

func TestSpeakingOrderWithSheriff(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	st := fixedState()
	st.SheriffID = 5
	st.PlayerByID(5).Sheriff = true

	order := e.speakingOrder(st)
	require.Len(t, order, 12)
	assert.Equal(t, 6, order[0], "speeches start clockwise after the sheriff")
	assert.Equal(t, 5, order[len(order)-1], "the sheriff speaks last")
}

func TestSpeakingOrderAfterLowestVictim(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	st := fixedState()
	st.PlayerByID(7).Alive = false
	st.PlayerByID(3).Alive = false
	st.Append(game.MsgDeath, "dead", 7, nil, nil)
	st.Append(game.MsgDeath, "dead", 3, nil, nil)

	order := e.speakingOrder(st)
	require.Len(t, order, 10)
	assert.Equal(t, 4, order[0], "first speaker sits clockwise after the lowest victim")
	assert.NotContains(t, order, 3)
	assert.NotContains(t, order, 7)
}

func TestNextAliveSeatWraps(t *testing.T) {
	st := fixedState()
	st.PlayerByID(1).Alive = false
	assert.Equal(t, 2, nextAliveSeat(st, 12))
	assert.Equal(t, 12, nextAliveSeat(st, 11))
}

func TestWolfTallyLowestIDOnTie(t *testing.T) {
	ballots := map[int]int{1: 9, 2: 9, 3: 10, 4: 10}
	e, _ := newTestEngine(t, func(_ *game.State, p *player.Player) *cognition.Response {
		return &cognition.Response{VoteTarget: ballots[p.ID]}
	})

	st := fixedState()
	st.Phase = game.PhaseNightWerewolf
	e.state = st

	e.Advance(context.Background())

	assert.Equal(t, 9, e.State().NightVictimID)
}

func TestEpochInvalidatesInFlightStep(t *testing.T) {
	var e *Engine
	e, _ = newTestEngine(t, func(_ *game.State, _ *player.Player) *cognition.Response {
		// A reset lands while the seer's decision is still in flight.
		e.Reset()
		return &cognition.Response{VoteTarget: 1}
	})

	st := fixedState()
	st.Phase = game.PhaseNightSeer
	e.state = st

	e.Advance(context.Background())

	got := e.State()
	assert.Equal(t, game.PhaseSetup, got.Phase, "only the fresh match is visible")
	for _, m := range got.Logs {
		assert.NotEqual(t, game.MsgActionCheck, m.Type, "the stale check result was discarded")
	}
	assert.False(t, got.PlayerByID(1).KnownBySeer)
}

func TestAdvanceReentrancyGuard(t *testing.T) {
	release := make(chan struct{})
	e, agent := newTestEngine(t, func(_ *game.State, _ *player.Player) *cognition.Response {
		<-release
		return cognition.SafeDefault()
	})

	st := fixedState()
	st.Phase = game.PhaseNightSeer
	e.state = st

	done := make(chan struct{})
	go func() {
		e.Advance(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return agent.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	e.Advance(context.Background()) // no-op while the first step is in flight
	assert.Equal(t, int64(1), agent.calls.Load())

	close(release)
	<-done
}

func TestDiscussionDrainsIntoVote(t *testing.T) {
	e, _ := newTestEngine(t, func(_ *game.State, p *player.Player) *cognition.Response {
		return &cognition.Response{Speech: "nothing to report", Thought: "quiet"}
	})

	st := fixedState()
	st.Phase = game.PhaseDayDiscuss
	st.DiscussionQueue = []int{5, 6}
	e.state = st

	ctx := context.Background()
	e.Advance(ctx)
	assert.Len(t, e.State().DiscussionQueue, 1)

	e.Advance(ctx)
	assert.Empty(t, e.State().DiscussionQueue)

	e.Advance(ctx)
	assert.Equal(t, game.PhaseDayVote, e.State().Phase)
}

func TestRosterDealIsValidPermutation(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	st := e.State()

	counts := make(map[role.Role]int)
	for _, p := range st.Players {
		counts[p.Role]++
		assert.True(t, p.Alive)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Model)
	}
	assert.Equal(t, 4, counts[role.Werewolf])
	assert.Equal(t, 4, counts[role.Villager])
	for _, r := range []role.Role{role.Seer, role.Witch, role.Guard, role.Hunter} {
		assert.Equal(t, 1, counts[r])
	}
}
