package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/renlu07/wolf-arena/internal/agents/cognition"
	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/domain/role"
	"github.com/renlu07/wolf-arena/internal/game"
)

// prefetchSlot holds at most one speculative decision: the next speaker's
// turn, started while the current speech is still being presented. The
// slot is tagged with seat and epoch; anything that does not match
// exactly at claim time is wasted work, never applied state.
type prefetchSlot struct {
	mu       sync.Mutex
	playerID int
	epoch    int64
	ch       chan *cognition.Response
}

func (s *prefetchSlot) set(playerID int, epoch int64, ch chan *cognition.Response) {
	s.mu.Lock()
	s.playerID, s.epoch, s.ch = playerID, epoch, ch
	s.mu.Unlock()
}

// take claims the slot if it matches the requested seat and epoch. A
// mismatched pending entry is discarded; the second return reports that.
func (s *prefetchSlot) take(playerID int, epoch int64) (chan *cognition.Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return nil, false
	}
	ch := s.ch
	s.ch = nil
	if s.playerID != playerID || s.epoch != epoch {
		return nil, true
	}
	return ch, false
}

func (s *prefetchSlot) drop() {
	s.mu.Lock()
	s.ch = nil
	s.mu.Unlock()
}

// prefetchDecision starts the next speaker's turn against a snapshot of
// the state as it stands now. Speculation trades a little staleness for
// latency: the decision will not have seen the speech currently playing.
func (e *Engine) prefetchDecision(ctx context.Context, st *game.State, p *player.Player, epoch int64) {
	ch := make(chan *cognition.Response, 1)
	e.pf.set(p.ID, epoch, ch)
	snapshot := st.Clone()
	go func() {
		r := e.agent.Decide(ctx, snapshot, p)
		if r.Speech != "" && !e.stale(epoch) {
			e.speaker.Prefetch(p.ID, r.Speech)
		}
		ch <- r
	}()
}

// awaitDecision returns the prefetched decision for a seat if one is
// pending, blocking until it lands, and falls back to a fresh call on a
// miss.
func (e *Engine) awaitDecision(ctx context.Context, st *game.State, p *player.Player, epoch int64) *cognition.Response {
	ch, discarded := e.pf.take(p.ID, epoch)
	if discarded {
		e.metrics.PrefetchWasted.Add(1)
	}
	if ch != nil {
		e.metrics.PrefetchHits.Add(1)
		return <-ch
	}
	return e.agent.Decide(ctx, st, p)
}

// stepSpeech drains one speaker from the discussion queue. While the
// current speech is presented, the next speaker's turn is already being
// computed and its audio synthesized; results are applied strictly in
// queue order regardless of which finishes first.
func (e *Engine) stepSpeech(ctx context.Context, st *game.State, epoch int64) error {
	if len(st.DiscussionQueue) == 0 {
		fromLastWords := st.Phase == game.PhaseDayLastWords
		st.Phase = afterSpeechRound(st)
		if fromLastWords && st.Phase == game.PhaseDayDiscuss {
			// The board changed while last words were spoken; the
			// speaking order is computed fresh.
			st.DiscussionQueue = e.speakingOrder(st)
		}
		return nil
	}

	speakerID := st.DiscussionQueue[0]
	st.DiscussionQueue = st.DiscussionQueue[1:]
	speaker := st.PlayerByID(speakerID)
	if speaker == nil || (!speaker.Alive && st.Phase != game.PhaseDayLastWords) {
		return nil
	}

	r := e.awaitDecision(ctx, st, speaker, epoch)
	if e.stale(epoch) {
		return errStale
	}

	if r.Thought != "" {
		st.Append(game.MsgThought, r.Thought, speaker.ID, nil, nil)
	}
	speech := r.Speech
	if speech == "" {
		speech = "..."
	}
	st.Append(game.MsgSpeech, speech, speaker.ID, toClaim(r.Claim), nil)

	// Overlap the next seat's reasoning and audio with this playback.
	if len(st.DiscussionQueue) > 0 {
		if next := st.PlayerByID(st.DiscussionQueue[0]); next != nil {
			e.prefetchDecision(ctx, st, next, epoch)
		}
	}

	// A degraded "..." turn is logged but not presented.
	if speech != "..." {
		if err := e.speaker.Speak(ctx, speaker.ID, speech); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if e.stale(epoch) {
		return errStale
	}
	return nil
}

func toClaim(c *cognition.ClaimParams) *game.Claim {
	if c == nil || c.Role == "" {
		return nil
	}
	return &game.Claim{
		Role:     role.Role(c.Role),
		TargetID: c.TargetID,
		Result:   c.Result,
	}
}

// afterSpeechRound maps a drained queue to the phase that follows it.
func afterSpeechRound(st *game.State) game.Phase {
	switch st.Phase {
	case game.PhaseSheriffSpeech:
		return game.PhaseSheriffVote
	case game.PhaseSheriffPKSpeech:
		return game.PhaseSheriffPKVote
	case game.PhaseDayDiscuss:
		return game.PhaseDayVote
	case game.PhaseDayPKSpeech:
		return game.PhaseDayPKVote
	case game.PhaseDayLastWords:
		return st.NextPhaseAfterLastWords
	default:
		panic(fmt.Sprintf("not a speech round: %s", st.Phase))
	}
}
