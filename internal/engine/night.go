package engine

import (
	"context"
	"fmt"

	"github.com/renlu07/wolf-arena/internal/agents/cognition"
	"github.com/renlu07/wolf-arena/internal/domain/role"
	"github.com/renlu07/wolf-arena/internal/game"
)

// stepNightStart opens a new night: the day counter advances, every
// per-round flag and the night scratch reset.
func (e *Engine) stepNightStart(st *game.State) error {
	st.Day++
	for _, p := range st.Players {
		p.ResetNightFlags()
	}
	st.NightVictimID = 0
	st.SeerCheckID = 0
	st.GuardProtectID = 0

	st.AppendSystem(fmt.Sprintf("Night %d falls. Everyone closes their eyes.", st.Day))
	e.sink.EffectTriggered(EffectDayNight, 0)
	st.Phase = game.PhaseNightGuard
	return nil
}

// stepNightGuard resolves the guard's protection. The repair pass has
// already zeroed a repeat protect, so whatever lands here is legal.
func (e *Engine) stepNightGuard(ctx context.Context, st *game.State, epoch int64) error {
	guard := st.FirstAlive(role.Guard)
	if guard == nil {
		st.LastGuardProtectID = 0
		st.Phase = game.PhaseNightWerewolf
		return nil
	}

	r := e.agent.Decide(ctx, st, guard)
	if e.stale(epoch) {
		return errStale
	}
	if r.Thought != "" {
		st.Append(game.MsgThought, r.Thought, guard.ID, nil, nil)
	}

	if r.VoteTarget != 0 {
		target := st.PlayerByID(r.VoteTarget)
		target.Protected = true
		st.GuardProtectID = target.ID
		st.Append(game.MsgActionSave, fmt.Sprintf("You protect Player %d (%s) tonight.", target.ID, target.Name), guard.ID, nil, nil)
		e.sink.EffectTriggered(EffectShield, target.ID)
	}
	st.LastGuardProtectID = st.GuardProtectID

	st.Phase = game.PhaseNightWerewolf
	return nil
}

// stepNightWerewolf runs the pack hunt. Every living wolf casts a kill
// vote after seeing the packmates listed; the plurality picks the victim,
// lowest seat on a tie, and a pack that cannot agree on anyone at all
// kills nobody.
func (e *Engine) stepNightWerewolf(ctx context.Context, st *game.State, epoch int64) error {
	wolves := st.AliveWolves()
	if len(wolves) == 0 {
		st.Phase = game.PhaseNightWitch
		return nil
	}

	decisions := e.decideBatch(ctx, st, wolves, 2)
	if e.stale(epoch) {
		return errStale
	}

	votes := make(map[int]int, len(wolves))
	for _, w := range wolves {
		r := decisions[w.ID]
		if r == nil {
			r = cognition.SafeDefault()
		}
		votes[w.ID] = r.VoteTarget
		if r.Thought != "" {
			st.Append(game.MsgThought, r.Thought, w.ID, nil, nil)
		}
		if r.Speech != "" {
			st.Append(game.MsgWolfChannel, r.Speech, w.ID, nil, nil)
		}
	}

	winners := tally(votes)
	if len(winners) == 0 {
		st.Append(game.MsgWolfChannel, "The pack cannot agree. Nobody is attacked tonight.", 0, nil, nil)
		st.Phase = game.PhaseNightWitch
		return nil
	}
	victim := st.PlayerByID(winners[0])
	st.NightVictimID = victim.ID
	st.Append(game.MsgActionKill, fmt.Sprintf("The pack attacks Player %d (%s).", victim.ID, victim.Name), wolves[0].ID, nil, nil)
	e.sink.EffectTriggered(EffectClaw, victim.ID)
	st.Phase = game.PhaseNightWitch
	return nil
}

// stepNightWitch resolves both potions. The antidote can only answer
// tonight's attack; the poison marks its target for dawn. The repair pass
// guarantees spent potions stay spent and that both are never used in the
// same night.
func (e *Engine) stepNightWitch(ctx context.Context, st *game.State, epoch int64) error {
	witch := st.FirstAlive(role.Witch)
	if witch == nil {
		st.Phase = game.PhaseNightSeer
		return nil
	}

	r := e.agent.Decide(ctx, st, witch)
	if e.stale(epoch) {
		return errStale
	}
	if r.Thought != "" {
		st.Append(game.MsgThought, r.Thought, witch.ID, nil, nil)
	}

	if r.Action.UseAntidote && st.NightVictimID != 0 && !st.WitchPotionUsed {
		victim := st.PlayerByID(st.NightVictimID)
		victim.SavedByWitch = true
		st.WitchPotionUsed = true
		st.Append(game.MsgActionSave, fmt.Sprintf("You use the antidote on Player %d (%s).", victim.ID, victim.Name), witch.ID, nil, nil)
		e.sink.EffectTriggered(EffectPotion, victim.ID)
		e.highlight(st, fmt.Sprintf("Night %d: the witch saved Player %d (%s).", st.Day, victim.ID, victim.Name))
	}
	if r.Action.PoisonTarget != 0 && !st.WitchPoisonUsed {
		target := st.PlayerByID(r.Action.PoisonTarget)
		target.Poisoned = true
		st.WitchPoisonUsed = true
		st.Append(game.MsgActionSave, fmt.Sprintf("You poison Player %d (%s).", target.ID, target.Name), witch.ID, nil, nil)
		e.sink.EffectTriggered(EffectPotion, target.ID)
		e.highlight(st, fmt.Sprintf("Night %d: the witch poisoned Player %d (%s).", st.Day, target.ID, target.Name))
	} else if !r.Action.UseAntidote {
		st.Append(game.MsgActionSave, "You keep both potions tonight.", witch.ID, nil, nil)
	}

	st.Phase = game.PhaseNightSeer
	return nil
}

// stepNightSeer resolves the check. The result goes only into the seer's
// private log; the filter keeps it there.
func (e *Engine) stepNightSeer(ctx context.Context, st *game.State, epoch int64) error {
	seer := st.FirstAlive(role.Seer)
	if seer == nil {
		st.Phase = game.PhaseDayStart
		return nil
	}

	r := e.agent.Decide(ctx, st, seer)
	if e.stale(epoch) {
		return errStale
	}
	if r.Thought != "" {
		st.Append(game.MsgThought, r.Thought, seer.ID, nil, nil)
	}

	if r.VoteTarget != 0 {
		target := st.PlayerByID(r.VoteTarget)
		st.SeerCheckID = target.ID
		target.KnownBySeer = true
		verdict := "GOOD"
		if target.Role == role.Werewolf {
			verdict = "BAD"
		}
		st.Append(game.MsgActionCheck,
			fmt.Sprintf("Night %d: Player %d (%s) is %s.", st.Day, target.ID, target.Name, verdict),
			seer.ID, nil, nil)
		e.sink.EffectTriggered(EffectSeer, target.ID)
		if verdict == "BAD" {
			e.highlight(st, fmt.Sprintf("Night %d: the seer found Player %d (%s) to be a werewolf.", st.Day, target.ID, target.Name))
		}
	} else {
		st.Append(game.MsgActionCheck, fmt.Sprintf("Night %d: you checked nobody.", st.Day), seer.ID, nil, nil)
	}

	st.Phase = game.PhaseDayStart
	return nil
}
