// Package perception computes per-viewer views of the match state.
//
// The log is append-only and shared; what a given seat may actually see
// is decided here, at read time, from the entry's type, the current
// phase and the viewer's role. The filter fails closed: a message type
// it does not recognize is visible to nobody.
package perception

import (
	"fmt"
	"strings"

	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/domain/role"
	"github.com/renlu07/wolf-arena/internal/game"
)

// HistoryWindow is how many visible entries FormatLogs renders.
const HistoryWindow = 15

// VisibleLogs returns the subset of the log the viewer is entitled to see
// under the current phase.
func VisibleLogs(s *game.State, viewer *player.Player) []game.LogMessage {
	var out []game.LogMessage
	for _, m := range s.Logs {
		if Visible(s, viewer, m) {
			out = append(out, m)
		}
	}
	return out
}

// Visible decides one entry for one viewer.
func Visible(s *game.State, viewer *player.Player, m game.LogMessage) bool {
	blackout := s.Phase.IsSheriffElection()

	switch m.Type {
	case game.MsgThought:
		return m.SenderID == viewer.ID

	case game.MsgWolfChannel:
		return viewer.Role == role.Werewolf && viewer.Alive && s.Phase.IsNight()

	case game.MsgActionCheck, game.MsgActionSave:
		// The election runs before dawn results exist; even the actor's
		// own night actions are suppressed until it is decided.
		return m.SenderID == viewer.ID && !blackout

	case game.MsgActionKill:
		if blackout {
			return false
		}
		if m.SenderID == viewer.ID {
			return true
		}
		return viewer.Role == role.Werewolf && viewer.Alive && s.Phase.IsNight()

	case game.MsgDeath:
		// The sheriff election finishes before dawn results are read out.
		return !blackout

	case game.MsgSystem:
		if blackout && mentionsNightOutcome(m.Content) {
			return false
		}
		return true

	case game.MsgSpeech, game.MsgVote, game.MsgActionVote:
		// Table talk and ballots belong to the day; night actors do not
		// replay them while deciding.
		return !s.Phase.IsNight()

	case game.MsgSheriff:
		return true
	}

	// Unrecognized type: nobody sees it.
	return false
}

// mentionsNightOutcome reports whether an announcer line reveals what
// happened overnight. Kept coarse on purpose: suppressing one extra
// neutral line is harmless, leaking a death into the election is not.
func mentionsNightOutcome(content string) bool {
	c := strings.ToLower(content)
	for _, marker := range []string{"night", "died", "dead", "killed", "peaceful", "victim"} {
		if strings.Contains(c, marker) {
			return true
		}
	}
	return false
}

// FormatLogs renders the viewer's last HistoryWindow visible entries as a
// prompt section. The viewer's own lines are written in second person so
// the agent does not argue with itself.
func FormatLogs(s *game.State, viewer *player.Player) string {
	logs := VisibleLogs(s, viewer)
	if len(logs) > HistoryWindow {
		logs = logs[len(logs)-HistoryWindow:]
	}
	if len(logs) == 0 {
		return "No events yet."
	}

	var b strings.Builder
	for _, m := range logs {
		who := "Moderator"
		if m.SenderID == viewer.ID {
			who = "You"
		} else if p := s.PlayerByID(m.SenderID); p != nil {
			who = fmt.Sprintf("Player %d (%s)", p.ID, p.Name)
		}
		label := ""
		switch m.Type {
		case game.MsgThought:
			label = " [your private thought]"
		case game.MsgWolfChannel:
			label = " [wolf channel]"
		case game.MsgActionKill, game.MsgActionSave, game.MsgActionCheck:
			label = " [night action]"
		}
		fmt.Fprintf(&b, "Day %d, %s: %s%s: %s\n", m.Day, m.Phase.Title(), who, label, m.Content)
	}
	return b.String()
}

// RoleInformation renders the viewer's private role knowledge: wolves know
// the pack, the seer knows past checks, the witch her potions, the guard
// his last protect.
func RoleInformation(s *game.State, viewer *player.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are Player %d (%s). Your role is %s.\n", viewer.ID, viewer.Name, viewer.Role.Label())

	switch viewer.Role {
	case role.Werewolf:
		var pack []string
		for _, p := range s.Players {
			if p.Role == role.Werewolf && p.ID != viewer.ID {
				status := "alive"
				if !p.Alive {
					status = "dead"
				}
				pack = append(pack, fmt.Sprintf("Player %d (%s, %s)", p.ID, p.Name, status))
			}
		}
		fmt.Fprintf(&b, "Your fellow werewolves: %s.\n", strings.Join(pack, ", "))

	case role.Seer:
		wrote := false
		// Check history honors the election blackout like the raw log.
		if !s.Phase.IsSheriffElection() {
			for _, m := range s.Logs {
				if m.Type == game.MsgActionCheck && m.SenderID == viewer.ID {
					fmt.Fprintf(&b, "Check result: %s\n", m.Content)
					wrote = true
				}
			}
		}
		if !wrote {
			b.WriteString("You have not checked anyone yet.\n")
		}

	case role.Witch:
		fmt.Fprintf(&b, "Antidote used: %v. Poison used: %v.\n", s.WitchPotionUsed, s.WitchPoisonUsed)
		// The antidote decision needs the victim's name; the kill order
		// itself stays on the wolf channel.
		if !s.WitchPotionUsed && s.NightVictimID != 0 {
			if v := s.PlayerByID(s.NightVictimID); v != nil {
				fmt.Fprintf(&b, "The werewolves' victim tonight is Player %d (%s). Your antidote can save them.\n", v.ID, v.Name)
			}
		}

	case role.Guard:
		if s.LastGuardProtectID > 0 {
			fmt.Fprintf(&b, "Last night you protected Player %d. You cannot protect the same player twice in a row.\n", s.LastGuardProtectID)
		} else {
			b.WriteString("You have not protected anyone yet.\n")
		}
	}
	return b.String()
}

// PhaseInformation renders the phase cursor for the prompt.
func PhaseInformation(s *game.State) string {
	return fmt.Sprintf("It is day %d, phase: %s.", s.Day, s.Phase.Title())
}

// Situation renders the public board: who is alive, who holds the badge,
// who died and how, as far as public knowledge goes.
func Situation(s *game.State, viewer *player.Player) string {
	var b strings.Builder
	var alive, dead []string
	for _, p := range s.Players {
		tag := fmt.Sprintf("Player %d (%s)", p.ID, p.Name)
		if p.Sheriff && p.Alive {
			tag += " [Sheriff]"
		}
		if p.Alive {
			alive = append(alive, tag)
			continue
		}
		if p.RoleRevealed {
			tag += fmt.Sprintf(" [was %s]", p.Role.Label())
		}
		dead = append(dead, tag)
	}
	fmt.Fprintf(&b, "Alive (%d): %s.\n", len(alive), strings.Join(alive, ", "))
	if len(dead) > 0 {
		fmt.Fprintf(&b, "Dead (%d): %s.\n", len(dead), strings.Join(dead, ", "))
	}
	return b.String()
}

// VoteHistory renders the ballots cast so far, day by day. Ballots are
// public once cast, so every viewer gets the same rendering.
func VoteHistory(s *game.State) string {
	var b strings.Builder
	for _, m := range s.Logs {
		if m.Type != game.MsgActionVote {
			continue
		}
		fmt.Fprintf(&b, "Day %d: %s\n", m.Day, m.Content)
	}
	if b.Len() == 0 {
		return "No votes have been cast yet."
	}
	return b.String()
}

// RoleClaims renders the public role claims made in speeches so far.
func RoleClaims(s *game.State) string {
	var b strings.Builder
	for _, m := range s.Logs {
		if m.Claim == nil {
			continue
		}
		who := fmt.Sprintf("Player %d", m.SenderID)
		if p := s.PlayerByID(m.SenderID); p != nil {
			who = fmt.Sprintf("Player %d (%s)", p.ID, p.Name)
		}
		line := fmt.Sprintf("%s claims %s", who, m.Claim.Role.Label())
		if m.Claim.TargetID > 0 {
			line += fmt.Sprintf(", reports Player %d as %s", m.Claim.TargetID, m.Claim.Result)
		}
		fmt.Fprintf(&b, "%s.\n", line)
	}
	if b.Len() == 0 {
		return "No role claims so far."
	}
	return b.String()
}
