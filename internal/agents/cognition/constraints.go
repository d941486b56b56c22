package cognition

import (
	"fmt"
	"strings"

	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/game"
)

// Constraints is the legal-move envelope for one seat in one phase. The
// prompt spells Targets out and the repair pass enforces them, so an
// out-of-envelope pick can never reach the state.
type Constraints struct {
	// Targets are the seat ids the agent may select; empty means the
	// phase takes no target.
	Targets []int
	// Task is the one-line instruction for the phase.
	Task string
	// NoTarget explains what picking 0 means, when abstaining is legal.
	NoTarget string
}

// packDirective is the standing strategy line every wolf receives with
// its night instruction.
const packDirective = "The pack wins by converging: prioritize confirmed or likely god roles, and prefer the target your packmates are leaning toward over a personal read."

// ForAgent computes the envelope for the given seat under the current
// phase. Self-targeting is legal only for the guard (self-protect) and a
// werewolf (self-kill as a play); everyone else is excluded from their
// own target list.
func ForAgent(s *game.State, p *player.Player) Constraints {
	switch s.Phase {
	case game.PhaseNightGuard:
		return Constraints{
			Targets:  targetIDs(s, p, true, s.LastGuardProtectID),
			Task:     "Choose one player to protect tonight.",
			NoTarget: "Pick 0 to protect nobody.",
		}

	case game.PhaseNightWerewolf:
		return Constraints{
			Targets:  targetIDs(s, p, true, 0),
			Task:     "Choose tonight's kill target for the pack. " + packDirective,
			NoTarget: "Pick 0 for a quiet night.",
		}

	case game.PhaseNightWitch:
		c := Constraints{
			Task:     "Decide whether to use your potions tonight.",
			NoTarget: "Set useAntidote to false and poisonTarget to 0 to do nothing.",
		}
		if !s.WitchPoisonUsed {
			c.Targets = targetIDs(s, p, false, 0)
		}
		return c

	case game.PhaseNightSeer:
		return Constraints{
			Targets: targetIDs(s, p, false, 0),
			Task:    "Choose one player to check tonight. You will learn whether they are a werewolf.",
		}

	case game.PhaseSheriffNom:
		return Constraints{
			Task:     "Decide whether to run for sheriff. Pick your own seat number to run, 0 to stay out.",
			Targets:  []int{p.ID},
			NoTarget: "Pick 0 to not run.",
		}

	case game.PhaseSheriffVote, game.PhaseSheriffPKVote:
		var targets []int
		for _, id := range s.SheriffCandidates {
			if id == p.ID {
				continue
			}
			if cand := s.PlayerByID(id); cand != nil && cand.Alive {
				targets = append(targets, id)
			}
		}
		return Constraints{
			Targets:  targets,
			Task:     "Vote for a sheriff candidate.",
			NoTarget: "Pick 0 to abstain.",
		}

	case game.PhaseDayVote:
		return Constraints{
			Targets:  targetIDs(s, p, false, 0),
			Task:     "Vote to exile one player.",
			NoTarget: "Pick 0 to abstain.",
		}

	case game.PhaseHunterShoot:
		return Constraints{
			Targets:  targetIDs(s, p, false, 0),
			Task:     "You have just died. Your hunter's gun fires now: choose one player to take with you.",
			NoTarget: "Pick 0 to hold your fire.",
		}

	case game.PhaseSheriffTransfer:
		return Constraints{
			Targets:  targetIDs(s, p, false, 0),
			Task:     "You are dying as sheriff. Choose a successor for the badge.",
			NoTarget: "Pick 0 to tear the badge apart so nobody inherits it.",
		}

	case game.PhaseDayPKVote:
		var targets []int
		for _, id := range s.PKCandidates {
			if id == p.ID {
				continue
			}
			if cand := s.PlayerByID(id); cand != nil && cand.Alive {
				targets = append(targets, id)
			}
		}
		return Constraints{
			Targets:  targets,
			Task:     "Vote between the runoff candidates.",
			NoTarget: "Pick 0 to abstain.",
		}
	}

	return Constraints{Task: "Speak to the table. Set voteTarget to 0."}
}

// Allows reports whether id is inside the envelope. 0 is always legal
// when the envelope names a NoTarget meaning.
func (c Constraints) Allows(id int) bool {
	if id == 0 {
		return c.NoTarget != "" || len(c.Targets) == 0
	}
	for _, t := range c.Targets {
		if t == id {
			return true
		}
	}
	return false
}

// Describe renders the envelope as a prompt section.
func (c Constraints) Describe() string {
	var b strings.Builder
	b.WriteString(c.Task)
	if len(c.Targets) > 0 {
		nums := make([]string, len(c.Targets))
		for i, t := range c.Targets {
			nums[i] = fmt.Sprintf("%d", t)
		}
		fmt.Fprintf(&b, " Legal targets: %s.", strings.Join(nums, ", "))
	}
	if c.NoTarget != "" {
		b.WriteString(" " + c.NoTarget)
	}
	return b.String()
}

// targetIDs lists living seats, optionally including the chooser, and
// always excluding one forbidden id (the guard's previous protect).
func targetIDs(s *game.State, p *player.Player, includeSelf bool, exclude int) []int {
	var out []int
	for _, q := range s.Players {
		if !q.Alive {
			continue
		}
		if q.ID == p.ID && !includeSelf {
			continue
		}
		if q.ID == exclude {
			continue
		}
		out = append(out, q.ID)
	}
	return out
}
