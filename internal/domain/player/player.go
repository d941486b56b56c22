// Package player holds the seat model: identity, hidden role, per-round
// flags and the behavioral profile that shapes an agent's speech.
package player

import "github.com/renlu07/wolf-arena/internal/domain/role"

// DeathReason records how a seat left the game.
type DeathReason string

const (
	DeathNone   DeathReason = ""
	DeathNight  DeathReason = "NIGHT_DEATH"
	DeathExile  DeathReason = "VOTE_EXILE"
	DeathHunter DeathReason = "HUNTER_SHOOT"
)

// Playstyle tunes the sampling temperatures of an agent's reasoning
// provider. Think is used for private reasoning, Speak for table talk.
type Playstyle struct {
	Label       string  `yaml:"label"`
	Description string  `yaml:"description"`
	ThinkTemp   float64 `yaml:"think_temp"`
	SpeakTemp   float64 `yaml:"speak_temp"`
}

// Player is one of the twelve seats. ID and Role are immutable for the
// lifetime of a match; everything else is mutated exclusively by the
// engine's apply step.
type Player struct {
	ID          int
	Name        string
	Gender      string
	Role        role.Role
	Provider    string
	Model       string
	Personality string
	Style       Playstyle

	Alive bool

	// Transient per-round flags, reset at the start of every night.
	Protected    bool
	Poisoned     bool
	SavedByWitch bool
	Campaigning  bool

	KnownBySeer  bool
	VoteTarget   int // 0 = no vote cast
	Sheriff      bool
	RoleRevealed bool
	DeathReason  DeathReason
}

// ResetNightFlags clears the per-round scratch state. Called once per
// night by the engine; nothing else touches these flags in bulk.
func (p *Player) ResetNightFlags() {
	p.Protected = false
	p.Poisoned = false
	p.SavedByWitch = false
	p.Campaigning = false
	p.VoteTarget = 0
}
