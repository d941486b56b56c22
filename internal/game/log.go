package game

import (
	"github.com/google/uuid"

	"github.com/renlu07/wolf-arena/internal/domain/role"
)

// MessageType tags a log entry. The visibility filter keys off this tag;
// unknown tags are treated as not visible to anyone.
type MessageType string

const (
	MsgSystem      MessageType = "SYSTEM"
	MsgSpeech      MessageType = "SPEECH"
	MsgThought     MessageType = "THOUGHT"
	MsgActionKill  MessageType = "ACTION_KILL"
	MsgActionSave  MessageType = "ACTION_SAVE"
	MsgActionCheck MessageType = "ACTION_CHECK"
	MsgActionVote  MessageType = "ACTION_VOTE"
	MsgDeath       MessageType = "DEATH"
	MsgWolfChannel MessageType = "WOLF_CHANNEL"
	MsgVote        MessageType = "VOTE"
	MsgSheriff     MessageType = "SHERIFF"
)

// Claim is a role a speaker publicly asserted, optionally with a reported
// check target and result.
type Claim struct {
	Role     role.Role `json:"role"`
	TargetID int       `json:"targetId,omitempty"`
	Result   string    `json:"result,omitempty"` // "GOOD" or "BAD"
}

// Assessment is one row of a speaker's suspicion matrix.
type Assessment struct {
	PlayerID   int     `json:"playerId"`
	Camp       string  `json:"camp"` // WOLF, GOOD, GOD or UNKNOWN
	Confidence float64 `json:"confidence"`
	Aggression float64 `json:"aggression"`
	Reason     string  `json:"reason"`
}

// SpeechMetadata is structured data an agent attaches to a speech.
type SpeechMetadata struct {
	Matrix    []Assessment `json:"matrix,omitempty"`
	Intention string       `json:"intention,omitempty"` // LEADING, FOLLOWING, DEFENDING, FISHING
}

// LogMessage is one immutable entry of the match audit trail. Entries are
// created only by the engine, appended with a monotonic tick, and filtered
// per viewer at read time - never edited or deleted.
type LogMessage struct {
	ID       string          `json:"id"`
	Tick     int             `json:"tick"`
	Day      int             `json:"day"`
	Phase    Phase           `json:"phase"`
	SenderID int             `json:"senderId,omitempty"` // 0 = no sender (announcer)
	Type     MessageType     `json:"type"`
	Content  string          `json:"content"`
	Claim    *Claim          `json:"claim,omitempty"`
	Metadata *SpeechMetadata `json:"metadata,omitempty"`
}

func newLogID() string {
	return uuid.NewString()
}
