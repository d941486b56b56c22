// Package engine drives the match: a single orchestration loop that owns
// the state, advances the phase machine one step at a time, and pushes
// every committed change to the spectator sink.
//
// Concurrency contract: the committed state is only ever replaced
// wholesale. Each advance clones it, lets the phase handler mutate the
// clone, and commits the clone back only if the handler succeeded and no
// reset happened meanwhile. Resets bump an epoch counter; any in-flight
// work tagged with an older epoch is silently discarded when it lands.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/renlu07/wolf-arena/internal/agents/cognition"
	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/game"
	"github.com/renlu07/wolf-arena/internal/platform/config"
	"github.com/renlu07/wolf-arena/internal/platform/logger"
	"github.com/renlu07/wolf-arena/internal/platform/metrics"
)

// Agent produces a repaired decision for one seat. Implementations never
// fail; degraded backends return a safe default.
type Agent interface {
	Decide(ctx context.Context, s *game.State, p *player.Player) *cognition.Response
}

// errStale aborts a handler whose epoch was invalidated by a reset.
var errStale = fmt.Errorf("stale epoch")

// Engine owns one match at a time.
type Engine struct {
	mu    sync.Mutex
	state *game.State

	epoch    atomic.Int64
	inFlight atomic.Bool
	paused   atomic.Bool
	stepOnce atomic.Bool
	delayNS  atomic.Int64

	agent   Agent
	speaker Speaker
	sink    Sink
	store   MatchStore
	log     *logger.Logger
	metrics *metrics.Collector
	cfg     *config.Config
	rng     *rand.Rand

	pf prefetchSlot
}

// Params wires an engine.
type Params struct {
	Agent   Agent
	Speaker Speaker
	Sink    Sink
	Store   MatchStore
	Logger  *logger.Logger
	Metrics *metrics.Collector
	Config  *config.Config
}

// New builds an engine and deals the first match.
func New(p Params) *Engine {
	if p.Speaker == nil {
		p.Speaker = NullSpeaker{}
	}
	if p.Sink == nil {
		p.Sink = NullSink{}
	}
	seed := p.Config.Tuning.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e := &Engine{
		agent:   p.Agent,
		speaker: p.Speaker,
		sink:    p.Sink,
		store:   p.Store,
		log:     p.Logger,
		metrics: p.Metrics,
		cfg:     p.Config,
		rng:     rand.New(rand.NewSource(seed)),
	}
	e.delayNS.Store(int64(p.Config.Tuning.PhaseDelay))
	e.paused.Store(true)
	e.state = e.newMatch()
	return e
}

// SetSink replaces the event sink. Call before Run; the hub and the
// engine reference each other, so one of them has to be wired second.
func (e *Engine) SetSink(s Sink) {
	if s != nil {
		e.sink = s
	}
}

// State returns the committed state. Callers must treat it as read-only.
func (e *Engine) State() *game.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Run advances the match until ctx is done. The loop respects pause,
// single-step and the configured phase delay.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if e.paused.Load() && !e.stepOnce.CompareAndSwap(true, false) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		e.Advance(ctx)

		if e.State().Over() {
			if e.cfg.Tuning.AutoLoop {
				e.Reset()
				e.paused.Store(false)
			} else {
				e.paused.Store(true)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(e.delayNS.Load())):
		}
	}
}

// Advance executes exactly one phase step. A concurrent call while a
// step is in flight is a no-op, so a spammed step button cannot double
// apply a phase.
func (e *Engine) Advance(ctx context.Context) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer e.inFlight.Store(false)

	startEpoch := e.epoch.Load()
	st := e.State().Clone()
	before := len(st.Logs)

	err := e.dispatch(ctx, st, startEpoch)
	if err != nil {
		e.metrics.Advance(true)
		e.sink.EffectsCleared()
		if err != errStale && ctx.Err() == nil {
			e.log.Error("phase step failed", "phase", string(st.Phase), "error", err)
		}
		return
	}
	if e.epoch.Load() != startEpoch {
		e.metrics.Advance(true)
		return
	}

	e.mu.Lock()
	e.state = st
	e.mu.Unlock()
	e.metrics.Advance(false)

	for _, m := range st.Logs[before:] {
		e.sink.LogAppended(m)
	}
	e.sink.PhaseChanged(st.Day, st.Phase)
	e.sink.StateSnapshot(st)
}

func (e *Engine) dispatch(ctx context.Context, st *game.State, epoch int64) error {
	// The day cap is checked on every step, not only after deaths. A run
	// of peaceful nights and tied votes must still terminate.
	if st.Phase != game.PhaseGameOver && st.Day > e.cfg.Tuning.MaxDays {
		if e.checkVictory(st) {
			return nil
		}
	}

	switch st.Phase {
	case game.PhaseSetup:
		return e.stepSetup(st)
	case game.PhaseNightStart:
		return e.stepNightStart(st)
	case game.PhaseNightGuard:
		return e.stepNightGuard(ctx, st, epoch)
	case game.PhaseNightWerewolf:
		return e.stepNightWerewolf(ctx, st, epoch)
	case game.PhaseNightWitch:
		return e.stepNightWitch(ctx, st, epoch)
	case game.PhaseNightSeer:
		return e.stepNightSeer(ctx, st, epoch)
	case game.PhaseDayStart:
		return e.stepDayStart(st)
	case game.PhaseSheriffNom:
		return e.stepSheriffNom(ctx, st, epoch)
	case game.PhaseSheriffSpeech, game.PhaseSheriffPKSpeech,
		game.PhaseDayDiscuss, game.PhaseDayPKSpeech, game.PhaseDayLastWords:
		return e.stepSpeech(ctx, st, epoch)
	case game.PhaseSheriffVote, game.PhaseSheriffPKVote:
		return e.stepSheriffVote(ctx, st, epoch)
	case game.PhaseDayAnnounce:
		return e.stepDayAnnounce(ctx, st, epoch)
	case game.PhaseDayVote, game.PhaseDayPKVote:
		return e.stepExileVote(ctx, st, epoch)
	case game.PhaseGameOver:
		return nil
	}
	return fmt.Errorf("no handler for phase %s", st.Phase)
}

// Play resumes the auto-advance loop.
func (e *Engine) Play() { e.paused.Store(false) }

// Pause stops after the current step completes.
func (e *Engine) Pause() { e.paused.Store(true) }

// Step advances one phase while paused.
func (e *Engine) Step() { e.stepOnce.Store(true) }

// SetDelay adjusts the pause between phase steps.
func (e *Engine) SetDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.delayNS.Store(int64(d))
}

// Reset abandons the current match and deals a new one. Any in-flight
// decision work is orphaned by the epoch bump and discards itself.
func (e *Engine) Reset() {
	e.epoch.Add(1)
	e.speaker.Cancel()
	e.pf.drop()

	fresh := e.newMatch()
	e.mu.Lock()
	e.state = fresh
	e.mu.Unlock()

	e.sink.EffectsCleared()
	e.sink.PhaseChanged(fresh.Day, fresh.Phase)
	e.sink.StateSnapshot(fresh)
	e.log.Info("match reset")
}

// stale reports whether a reset happened since the step began. Checked
// after every await point inside phase handlers.
func (e *Engine) stale(epoch int64) bool {
	return e.epoch.Load() != epoch
}

// highlight records a reel line on the working state. It only survives
// if the tick that produced it commits.
func (e *Engine) highlight(st *game.State, line string) {
	st.Highlights = append(st.Highlights, line)
}
