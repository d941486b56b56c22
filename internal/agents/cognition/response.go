// Package cognition turns a seat's filtered view into a decision: the
// legal moves it may pick from, the role frame it reasons inside, and
// the repair pass run on whatever the language model returns.
package cognition

// ActionParams carries the night-action specifics of a decision.
type ActionParams struct {
	UseAntidote  bool `json:"useAntidote"`
	PoisonTarget int  `json:"poisonTarget"`
}

// ClaimParams is an optional public role claim attached to a speech.
type ClaimParams struct {
	Role     string `json:"role"`
	TargetID int    `json:"targetId,omitempty"`
	Result   string `json:"result,omitempty"`
}

// Response is the structured decision an agent returns for one turn.
// VoteTarget doubles as the action target in night phases; 0 means
// abstain or no action.
type Response struct {
	Speech     string       `json:"speech"`
	Thought    string       `json:"thought"`
	VoteTarget int          `json:"voteTarget"`
	Action     ActionParams `json:"actionParams"`
	Claim      *ClaimParams `json:"claim,omitempty"`
}

// SafeDefault is the decision used when the provider call or the parse
// fails. It keeps the match moving: a bland speech, no vote, no action.
func SafeDefault() *Response {
	return &Response{
		Speech:     "I need a moment to gather my thoughts. I'll listen for now.",
		Thought:    "parse error",
		VoteTarget: 0,
	}
}
