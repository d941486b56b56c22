package cognition

import (
	"regexp"
	"strings"

	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/domain/role"
	"github.com/renlu07/wolf-arena/internal/game"
)

// Language models drift: they vote for the dead, protect the same player
// twice, or write "I will save him" while setting useAntidote to false.
// ValidateAndFix repairs a decision in place so that only legal, internally
// consistent moves reach the engine. It never rejects; an unfixable pick
// collapses to 0 (abstain / no action).
func ValidateAndFix(s *game.State, p *player.Player, c Constraints, r *Response) {
	fixTarget(s, c, r)

	switch {
	case p.Role == role.Witch && s.Phase == game.PhaseNightWitch:
		fixWitch(s, r)
	case p.Role == role.Guard:
		fixGuardSpeech(r)
		if s.Phase == game.PhaseNightGuard && r.VoteTarget == s.LastGuardProtectID {
			r.VoteTarget = 0
		}
	}

	if r.Claim != nil && r.Claim.Role == "" {
		r.Claim = nil
	}
}

// fixTarget zeroes a vote for a dead seat, a nonexistent seat, or a seat
// outside the phase envelope.
func fixTarget(s *game.State, c Constraints, r *Response) {
	if r.Action.PoisonTarget != 0 {
		pt := s.PlayerByID(r.Action.PoisonTarget)
		if pt == nil || !pt.Alive {
			r.Action.PoisonTarget = 0
		}
	}
	if r.VoteTarget == 0 {
		return
	}
	target := s.PlayerByID(r.VoteTarget)
	if target == nil || !target.Alive || !c.Allows(r.VoteTarget) {
		r.VoteTarget = 0
	}
}

var (
	saveIntent   = regexp.MustCompile(`(?i)\b(save|rescue|antidote|heal)\b`)
	noSaveIntent = regexp.MustCompile(`(?i)\b(not save|no save|won't save|will not save|don't save|do not save|give up|let .{0,20}die|save the antidote|save my antidote|save it for)\b`)
)

// fixWitch reconciles the witch's stated intent with her flags. Models
// frequently narrate "I save Player 7" while leaving useAntidote false;
// the stated intent wins. A spent or unavailable potion always overrides,
// and save plus poison in the same night is illegal, with the save kept.
func fixWitch(s *game.State, r *Response) {
	text := r.Thought + " " + r.Speech
	if !r.Action.UseAntidote && saveIntent.MatchString(text) && !noSaveIntent.MatchString(text) {
		r.Action.UseAntidote = true
	}
	if s.WitchPotionUsed || s.NightVictimID == 0 {
		r.Action.UseAntidote = false
	}
	if s.WitchPoisonUsed {
		r.Action.PoisonTarget = 0
	}
	if r.Action.UseAntidote && r.Action.PoisonTarget != 0 {
		r.Action.PoisonTarget = 0
	}
}

var guardVerb = regexp.MustCompile(`(?i)\b(investigate[ds]?|investigating|inspect(?:ed|ing|s)?|check(?:ed|ing|s)?)\b`)

// fixGuardSpeech rewrites seer verbs in a guard's speech. Models confuse
// the two roles and a guard saying "I checked Player 5" reads as a seer
// claim to the whole table.
func fixGuardSpeech(r *Response) {
	r.Speech = guardVerb.ReplaceAllStringFunc(r.Speech, func(m string) string {
		if strings.ToUpper(m[:1]) == m[:1] {
			return "Protected"
		}
		return "protected"
	})
}
