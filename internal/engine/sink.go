package engine

import (
	"context"

	"github.com/renlu07/wolf-arena/internal/game"
)

// Visual effect tags pushed to spectators alongside the log.
const (
	EffectClaw     = "CLAW"
	EffectPotion   = "POTION"
	EffectSeer     = "SEER"
	EffectGun      = "GUN"
	EffectShield   = "SHIELD"
	EffectVote     = "VOTE"
	EffectDayNight = "DAY_NIGHT"
	EffectSheriff  = "SHERIFF"
)

// Sink receives the engine's outbound event stream. The websocket hub is
// the real implementation; tests use NullSink. Calls happen on the
// engine's advance goroutine and must not block.
type Sink interface {
	PhaseChanged(day int, phase game.Phase)
	LogAppended(m game.LogMessage)
	EffectTriggered(effect string, seat int)
	EffectsCleared()
	StateSnapshot(s *game.State)
}

// Speaker presents a speech to the audience, pacing the match to the
// audio. Implementations block in Speak for the duration of playback.
type Speaker interface {
	Speak(ctx context.Context, seat int, text string) error
	// Prefetch starts synthesis early so playback can begin immediately
	// when Speak is called with the same text.
	Prefetch(seat int, text string)
	// Cancel drops queued and playing audio. Called on reset.
	Cancel()
}

// MatchRecord is the archived outcome of one finished match.
type MatchRecord struct {
	Winner     string
	Days       int
	Seats      []MatchSeat
	Highlights []string
}

// MatchSeat is one seat's final line in the archive.
type MatchSeat struct {
	ID       int
	Name     string
	Role     string
	Model    string
	Survived bool
}

// MatchStore archives finished matches.
type MatchStore interface {
	SaveMatch(ctx context.Context, rec MatchRecord) error
}

// NullSink discards everything.
type NullSink struct{}

func (NullSink) PhaseChanged(int, game.Phase)  {}
func (NullSink) LogAppended(game.LogMessage)   {}
func (NullSink) EffectTriggered(string, int)   {}
func (NullSink) EffectsCleared()               {}
func (NullSink) StateSnapshot(*game.State)     {}

// NullSpeaker skips audio entirely.
type NullSpeaker struct{}

func (NullSpeaker) Speak(context.Context, int, string) error { return nil }
func (NullSpeaker) Prefetch(int, string)                     {}
func (NullSpeaker) Cancel()                                  {}
