// Package game holds the authoritative match state: the twelve seats, the
// phase cursor, the per-night scratch fields and the append-only log.
//
// ARCHITECTURAL RULE: State is owned and mutated by exactly one
// orchestration loop. Every other component receives a read-only snapshot
// and returns computed values; the engine commits a mutated working copy
// back wholesale only after a phase handler finishes without error.
package game

import (
	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/domain/role"
)

// Seats is the fixed seat count of a standard board.
const Seats = 12

// State is the single source of truth for one match.
type State struct {
	Tick    int
	Day     int
	Phase   Phase
	Players []*player.Player
	Logs    []LogMessage
	Winner  role.Faction // "" until terminal

	// Night scratch, reset every NIGHT_START.
	NightVictimID      int
	SeerCheckID        int
	GuardProtectID     int
	LastGuardProtectID int
	WitchPotionUsed    bool
	WitchPoisonUsed    bool

	DiscussionQueue   []int
	SheriffID         int
	SheriffCandidates []int
	PKCandidates      []int

	// Highlights is the match reel archived at game over. It lives on
	// the state so a discarded working copy takes its highlights with it.
	Highlights []string

	// Where DAY_LAST_WORDS routes once the queue drains.
	NextPhaseAfterLastWords Phase
}

// New builds a fresh pre-game state over an assembled roster.
func New(roster []*player.Player) *State {
	return &State{
		Phase:                   PhaseSetup,
		Players:                 roster,
		NextPhaseAfterLastWords: PhaseNightStart,
	}
}

// Append records a new log entry with the next monotonic tick. The entry
// is immutable from this point on.
func (s *State) Append(t MessageType, content string, senderID int, claim *Claim, md *SpeechMetadata) LogMessage {
	s.Tick++
	msg := LogMessage{
		ID:       newLogID(),
		Tick:     s.Tick,
		Day:      s.Day,
		Phase:    s.Phase,
		SenderID: senderID,
		Type:     t,
		Content:  content,
		Claim:    claim,
		Metadata: md,
	}
	s.Logs = append(s.Logs, msg)
	return msg
}

// AppendSystem records an announcer message with no sender.
func (s *State) AppendSystem(content string) LogMessage {
	return s.Append(MsgSystem, content, 0, nil, nil)
}

// PlayerByID returns the seat with the given id, or nil.
func (s *State) PlayerByID(id int) *player.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FirstAlive returns the first living seat holding the given role, or nil.
// Seer, witch, guard and hunter are singletons so this is the lookup used
// for every night action.
func (s *State) FirstAlive(r role.Role) *player.Player {
	for _, p := range s.Players {
		if p.Role == r && p.Alive {
			return p
		}
	}
	return nil
}

// Alive returns all living seats in seat order.
func (s *State) Alive() []*player.Player {
	var out []*player.Player
	for _, p := range s.Players {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// AliveIDs returns the ids of all living seats in seat order.
func (s *State) AliveIDs() []int {
	var out []int
	for _, p := range s.Players {
		if p.Alive {
			out = append(out, p.ID)
		}
	}
	return out
}

// AliveWolves returns the living werewolves in seat order.
func (s *State) AliveWolves() []*player.Player {
	var out []*player.Player
	for _, p := range s.Players {
		if p.Role == role.Werewolf && p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// Over reports whether the match reached a terminal phase.
func (s *State) Over() bool {
	return s.Winner != "" || s.Phase == PhaseGameOver
}

// Clone produces a deep copy. The engine mutates the copy inside a phase
// handler and commits it back atomically; concurrent readers only ever see
// a fully committed state.
func (s *State) Clone() *State {
	c := *s
	c.Players = make([]*player.Player, len(s.Players))
	for i, p := range s.Players {
		pc := *p
		c.Players[i] = &pc
	}
	c.Logs = append([]LogMessage(nil), s.Logs...)
	c.DiscussionQueue = append([]int(nil), s.DiscussionQueue...)
	c.SheriffCandidates = append([]int(nil), s.SheriffCandidates...)
	c.PKCandidates = append([]int(nil), s.PKCandidates...)
	c.Highlights = append([]string(nil), s.Highlights...)
	return &c
}
