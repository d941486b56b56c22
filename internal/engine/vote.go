package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/renlu07/wolf-arena/internal/agents/cognition"
	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/game"
)

// decideBatch collects decisions for a group of seats, at most batch
// calls in flight at once. The stagger keeps a dozen simultaneous
// requests from tripping provider rate limits while still overlapping
// the slow calls.
func (e *Engine) decideBatch(ctx context.Context, st *game.State, seats []*player.Player, batch int) map[int]*cognition.Response {
	out := make(map[int]*cognition.Response, len(seats))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batch)
	for _, p := range seats {
		p := p
		g.Go(func() error {
			r := e.agent.Decide(gctx, st, p)
			mu.Lock()
			out[p.ID] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// tally counts a ballot and returns every target holding the maximum,
// sorted ascending. Abstentions (target 0) do not count. An empty winner
// set means nobody received a vote.
func tally(votes map[int]int) []int {
	counts := make(map[int]int)
	max := 0
	for _, target := range votes {
		if target == 0 {
			continue
		}
		counts[target]++
		if counts[target] > max {
			max = counts[target]
		}
	}
	if max == 0 {
		return nil
	}
	var winners []int
	for target, n := range counts {
		if n == max {
			winners = append(winners, target)
		}
	}
	sort.Ints(winners)
	return winners
}

func voteLine(st *game.State, voterID, targetID int) string {
	voter := st.PlayerByID(voterID)
	if targetID == 0 {
		return fmt.Sprintf("Player %d (%s) abstains.", voter.ID, voter.Name)
	}
	target := st.PlayerByID(targetID)
	return fmt.Sprintf("Player %d (%s) votes for Player %d (%s).", voter.ID, voter.Name, target.ID, target.Name)
}

// collectVotes runs a ballot over the given voters: each decision's
// thought is logged privately, the vote publicly, and the per-seat
// voteTarget scratch is set for the duration of the tally.
func (e *Engine) collectVotes(ctx context.Context, st *game.State, epoch int64, voters []*player.Player) (map[int]int, error) {
	decisions := e.decideBatch(ctx, st, voters, 4)
	if e.stale(epoch) {
		return nil, errStale
	}

	votes := make(map[int]int, len(voters))
	for _, p := range voters {
		r := decisions[p.ID]
		if r == nil {
			r = cognition.SafeDefault()
		}
		p.VoteTarget = r.VoteTarget
		votes[p.ID] = r.VoteTarget
		if r.Thought != "" {
			st.Append(game.MsgThought, r.Thought, p.ID, nil, nil)
		}
		st.Append(game.MsgActionVote, voteLine(st, p.ID, r.VoteTarget), p.ID, nil, nil)
	}
	e.sink.EffectTriggered(EffectVote, 0)
	return votes, nil
}

// clearVotes resets the per-seat scratch after a tally.
func clearVotes(st *game.State) {
	for _, p := range st.Players {
		p.VoteTarget = 0
	}
}

// stepSheriffVote tallies a sheriff ballot. Candidates do not vote. A
// unique winner takes the badge; a tie sends only the tied candidates to
// a runoff; a runoff tie, or a ballot with no votes at all, leaves the
// village without a sheriff.
func (e *Engine) stepSheriffVote(ctx context.Context, st *game.State, epoch int64) error {
	candidates := make(map[int]bool, len(st.SheriffCandidates))
	for _, id := range st.SheriffCandidates {
		candidates[id] = true
	}
	var voters []*player.Player
	for _, p := range st.Alive() {
		if !candidates[p.ID] {
			voters = append(voters, p)
		}
	}

	votes, err := e.collectVotes(ctx, st, epoch, voters)
	if err != nil {
		return err
	}
	winners := tally(votes)
	clearVotes(st)

	switch {
	case len(winners) == 1:
		e.electSheriff(st, winners[0])
		st.Phase = game.PhaseDayAnnounce

	case len(winners) > 1 && st.Phase == game.PhaseSheriffVote:
		st.SheriffCandidates = winners
		st.DiscussionQueue = append([]int(nil), winners...)
		st.AppendSystem(fmt.Sprintf("The sheriff vote is tied between %s. A runoff begins.", seatList(st, winners)))
		st.Phase = game.PhaseSheriffPKSpeech

	default:
		// Runoff tie or an empty ballot.
		st.AppendSystem("The election ends without a sheriff.")
		st.Phase = game.PhaseDayAnnounce
	}

	if st.Phase == game.PhaseDayAnnounce {
		for _, p := range st.Players {
			p.Campaigning = false
		}
		st.SheriffCandidates = nil
	}
	return nil
}

func (e *Engine) electSheriff(st *game.State, id int) {
	sheriff := st.PlayerByID(id)
	sheriff.Sheriff = true
	st.SheriffID = id
	line := fmt.Sprintf("Player %d (%s) is elected sheriff.", sheriff.ID, sheriff.Name)
	st.Append(game.MsgSheriff, line, 0, nil, nil)
	e.highlight(st, line)
	e.sink.EffectTriggered(EffectSheriff, id)
	e.log.Event("sheriff_elected", id, "")
}

// stepExileVote tallies a day or runoff exile ballot. In the runoff the
// tied candidates do not vote. A unique winner is exiled with last words;
// a first-round tie spawns a runoff; a runoff tie, or no votes, exiles
// nobody and the night falls.
func (e *Engine) stepExileVote(ctx context.Context, st *game.State, epoch int64) error {
	excluded := make(map[int]bool)
	if st.Phase == game.PhaseDayPKVote {
		for _, id := range st.PKCandidates {
			excluded[id] = true
		}
	}
	var voters []*player.Player
	for _, p := range st.Alive() {
		if !excluded[p.ID] {
			voters = append(voters, p)
		}
	}

	votes, err := e.collectVotes(ctx, st, epoch, voters)
	if err != nil {
		return err
	}
	winners := tally(votes)
	clearVotes(st)

	switch {
	case len(winners) == 1:
		exiled := st.PlayerByID(winners[0])
		st.Append(game.MsgVote, fmt.Sprintf("The village has voted. Player %d (%s) is exiled.", exiled.ID, exiled.Name), 0, nil, nil)
		e.highlight(st, fmt.Sprintf("Day %d: Player %d (%s) exiled by vote.", st.Day, exiled.ID, exiled.Name))
		st.PKCandidates = nil
		cascade, err := e.applyDeath(ctx, st, epoch, exiled, player.DeathExile)
		if err != nil {
			return err
		}
		if e.checkVictory(st) {
			return nil
		}
		// The exiled player, and anyone the hunter took along, gets
		// last words.
		st.DiscussionQueue = cascade
		st.NextPhaseAfterLastWords = game.PhaseNightStart
		st.Phase = game.PhaseDayLastWords

	case len(winners) > 1 && st.Phase == game.PhaseDayVote:
		st.PKCandidates = winners
		st.DiscussionQueue = append([]int(nil), winners...)
		st.AppendSystem(fmt.Sprintf("The vote is tied between %s. A runoff begins.", seatList(st, winners)))
		st.Phase = game.PhaseDayPKSpeech

	default:
		st.AppendSystem("No consensus was reached. Nobody is exiled today.")
		st.PKCandidates = nil
		st.Phase = game.PhaseNightStart
	}
	return nil
}

func seatList(st *game.State, ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		p := st.PlayerByID(id)
		parts[i] = fmt.Sprintf("Player %d (%s)", p.ID, p.Name)
	}
	return strings.Join(parts, " and ")
}
