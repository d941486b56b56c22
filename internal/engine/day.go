package engine

import (
	"context"
	"fmt"

	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/domain/role"
	"github.com/renlu07/wolf-arena/internal/game"
)

// stepDayStart opens the day. On day one the sheriff election runs
// before the night results are announced, so the campaign cannot be
// steered by who died.
func (e *Engine) stepDayStart(st *game.State) error {
	st.AppendSystem(fmt.Sprintf("Day %d breaks. Everyone opens their eyes.", st.Day))
	e.sink.EffectTriggered(EffectDayNight, 0)

	if st.Day == 1 {
		st.Phase = game.PhaseSheriffNom
	} else {
		st.Phase = game.PhaseDayAnnounce
	}
	return nil
}

// stepSheriffNom asks every living seat whether it runs for the badge.
// Candidates then speak in seat order; with no candidates the election is
// skipped entirely.
func (e *Engine) stepSheriffNom(ctx context.Context, st *game.State, epoch int64) error {
	st.AppendSystem("The sheriff election opens. Who stands for the badge?")

	alive := st.Alive()
	decisions := e.decideBatch(ctx, st, alive, 4)
	if e.stale(epoch) {
		return errStale
	}

	var candidates []int
	for _, p := range alive {
		r := decisions[p.ID]
		if r == nil {
			continue
		}
		if r.Thought != "" {
			st.Append(game.MsgThought, r.Thought, p.ID, nil, nil)
		}
		if r.VoteTarget == p.ID {
			p.Campaigning = true
			candidates = append(candidates, p.ID)
			st.Append(game.MsgSheriff, fmt.Sprintf("Player %d (%s) runs for sheriff.", p.ID, p.Name), p.ID, nil, nil)
		}
	}

	if len(candidates) == 0 {
		st.AppendSystem("Nobody runs. There will be no sheriff.")
		st.Phase = game.PhaseDayAnnounce
		return nil
	}

	st.SheriffCandidates = candidates
	st.DiscussionQueue = append([]int(nil), candidates...)
	st.Phase = game.PhaseSheriffSpeech
	return nil
}

// stepDayAnnounce reads out the night's results and applies the deaths.
// An attacked seat survives if the guard stood in front of it or the
// witch answered with the antidote; the poison kills regardless of the
// shield. Night victims get last words only on the first day.
func (e *Engine) stepDayAnnounce(ctx context.Context, st *game.State, epoch int64) error {
	var victims []*player.Player
	if st.NightVictimID != 0 {
		v := st.PlayerByID(st.NightVictimID)
		if v.Alive && !v.Protected && !v.SavedByWitch {
			victims = append(victims, v)
		}
	}
	for _, p := range st.Players {
		if p.Alive && p.Poisoned {
			victims = append(victims, p)
		}
	}

	if len(victims) == 0 {
		st.AppendSystem("It was a peaceful night. Nobody died.")
		st.Phase = game.PhaseDayDiscuss
		st.DiscussionQueue = e.speakingOrder(st)
		return nil
	}

	var lastWords []int
	for _, v := range victims {
		st.AppendSystem(fmt.Sprintf("Last night, Player %d (%s) died.", v.ID, v.Name))
		e.highlight(st, fmt.Sprintf("Night %d: Player %d (%s) died.", st.Day, v.ID, v.Name))
		cascade, err := e.applyDeath(ctx, st, epoch, v, player.DeathNight)
		if err != nil {
			return err
		}
		if st.Day == 1 {
			lastWords = append(lastWords, cascade...)
		} else if len(cascade) > 1 {
			// Hunter-shot victims get last words on any day.
			lastWords = append(lastWords, cascade[1:]...)
		}
	}

	if e.checkVictory(st) {
		return nil
	}

	if len(lastWords) > 0 {
		st.DiscussionQueue = lastWords
		st.NextPhaseAfterLastWords = game.PhaseDayDiscuss
		st.Phase = game.PhaseDayLastWords
		return nil
	}
	st.DiscussionQueue = e.speakingOrder(st)
	st.Phase = game.PhaseDayDiscuss
	return nil
}

// applyDeath marks a seat dead and runs the on-death triggers: the
// hunter's gun, unless the witch's poison silenced it, and the sheriff's
// badge handover. Triggers can cascade; a shot sheriff hands over the
// badge, a shot hunter does not fire back. The returned list is the full
// cascade in death order, starting with the victim.
func (e *Engine) applyDeath(ctx context.Context, st *game.State, epoch int64, victim *player.Player, reason player.DeathReason) ([]int, error) {
	if !victim.Alive {
		return nil, nil
	}
	victim.Alive = false
	victim.DeathReason = reason
	if reason == player.DeathExile {
		victim.RoleRevealed = true
	}
	st.Append(game.MsgDeath, fmt.Sprintf("Player %d (%s) is dead.", victim.ID, victim.Name), victim.ID, nil, nil)
	e.log.Event("death", victim.ID, string(reason))

	cascade := []int{victim.ID}
	if victim.Role == role.Hunter && !victim.Poisoned {
		shot, err := e.hunterShoot(ctx, st, epoch, victim)
		if err != nil {
			return nil, err
		}
		cascade = append(cascade, shot...)
	}
	if victim.Sheriff {
		if err := e.transferBadge(ctx, st, epoch, victim); err != nil {
			return nil, err
		}
	}
	return cascade, nil
}

// hunterShoot fires the hunter's one shot. Only a single hunter exists
// so the gun fires at most once per match.
func (e *Engine) hunterShoot(ctx context.Context, st *game.State, epoch int64, hunter *player.Player) ([]int, error) {
	prev := st.Phase
	st.Phase = game.PhaseHunterShoot
	r := e.agent.Decide(ctx, st, hunter)
	st.Phase = prev
	if e.stale(epoch) {
		return nil, errStale
	}
	if r.Thought != "" {
		st.Append(game.MsgThought, r.Thought, hunter.ID, nil, nil)
	}

	hunter.RoleRevealed = true
	if r.VoteTarget == 0 {
		st.AppendSystem(fmt.Sprintf("Player %d (%s) was the hunter, and holds fire.", hunter.ID, hunter.Name))
		return nil, nil
	}
	target := st.PlayerByID(r.VoteTarget)
	if target == nil || !target.Alive {
		return nil, nil
	}
	st.AppendSystem(fmt.Sprintf("Player %d (%s) was the hunter, and shoots Player %d (%s)!", hunter.ID, hunter.Name, target.ID, target.Name))
	e.highlight(st, fmt.Sprintf("Day %d: the hunter shot Player %d (%s).", st.Day, target.ID, target.Name))
	e.sink.EffectTriggered(EffectGun, target.ID)
	return e.applyDeath(ctx, st, epoch, target, player.DeathHunter)
}

// transferBadge lets a dying sheriff name a successor or tear the badge.
// The dying seat's own flags are cleared first so at most one living
// sheriff ever exists. An invalid or dead successor counts as tearing.
func (e *Engine) transferBadge(ctx context.Context, st *game.State, epoch int64, sheriff *player.Player) error {
	sheriff.Sheriff = false
	st.SheriffID = 0

	prev := st.Phase
	st.Phase = game.PhaseSheriffTransfer
	r := e.agent.Decide(ctx, st, sheriff)
	st.Phase = prev
	if e.stale(epoch) {
		return errStale
	}
	if r.Thought != "" {
		st.Append(game.MsgThought, r.Thought, sheriff.ID, nil, nil)
	}

	successor := st.PlayerByID(r.VoteTarget)
	if r.VoteTarget == 0 || successor == nil || !successor.Alive {
		st.Append(game.MsgSheriff, fmt.Sprintf("Player %d (%s) tears the sheriff badge. Nobody inherits it.", sheriff.ID, sheriff.Name), 0, nil, nil)
		return nil
	}
	successor.Sheriff = true
	st.SheriffID = successor.ID
	st.Append(game.MsgSheriff, fmt.Sprintf("Player %d (%s) passes the sheriff badge to Player %d (%s).", sheriff.ID, sheriff.Name, successor.ID, successor.Name), 0, nil, nil)
	e.sink.EffectTriggered(EffectSheriff, successor.ID)
	return nil
}
