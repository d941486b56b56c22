// Package agents runs one decision turn for one seat: build the prompt
// from the seat's filtered view, call the reasoning backend, extract and
// repair the JSON decision.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/renlu07/wolf-arena/internal/agents/cognition"
	"github.com/renlu07/wolf-arena/internal/agents/perception"
	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/game"
	"github.com/renlu07/wolf-arena/internal/infra/ai"
	"github.com/renlu07/wolf-arena/internal/platform/logger"
	"github.com/renlu07/wolf-arena/internal/platform/metrics"
)

// Executor produces decisions for seats. It is stateless across turns;
// everything it needs is recomputed from the state snapshot each call.
type Executor struct {
	registry *ai.Registry
	log      *logger.Logger
	metrics  *metrics.Collector
	timeout  time.Duration
}

// NewExecutor wires an executor. timeout bounds one provider round trip
// including the fallback attempt.
func NewExecutor(registry *ai.Registry, log *logger.Logger, m *metrics.Collector, timeout time.Duration) *Executor {
	return &Executor{registry: registry, log: log, metrics: m, timeout: timeout}
}

// Decide runs one full turn for a seat. It never fails: any provider or
// parse error degrades to the safe default so one broken backend cannot
// stall the match. The returned decision is already repaired against the
// phase envelope.
func (e *Executor) Decide(ctx context.Context, s *game.State, p *player.Player) *cognition.Response {
	c := cognition.ForAgent(s, p)
	frame := cognition.ForRole(s, p)

	// Night actions and ballots run at the cooler reasoning temperature;
	// the hotter one is reserved for open speech.
	temp := p.Style.ThinkTemp
	if s.Phase.IsSpeechRound() {
		temp = p.Style.SpeakTemp
	}

	req := ai.Request{
		Model:       p.Model,
		System:      systemPrompt(p, frame),
		Prompt:      turnPrompt(s, p, c),
		Temperature: temp,
		MaxTokens:   1200,
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := time.Now()
	resp, err := e.registry.Complete(ctx, p.Provider, req)
	if err != nil {
		e.metrics.ObserveLLM(0, time.Since(started), true)
		e.log.Warn("decision failed, using safe default", "seat", p.ID, "phase", string(s.Phase), "error", err)
		out := cognition.SafeDefault()
		cognition.ValidateAndFix(s, p, c, out)
		return out
	}
	e.metrics.ObserveLLM(resp.TokensUsed, time.Since(started), false)

	out := parseDecision(resp.Text)
	if out == nil {
		e.log.Warn("unparseable decision, using safe default", "seat", p.ID, "phase", string(s.Phase))
		out = cognition.SafeDefault()
	}
	cognition.ValidateAndFix(s, p, c, out)
	return out
}

func parseDecision(text string) *cognition.Response {
	raw, err := ai.ExtractJSON(text)
	if err != nil {
		return nil
	}
	var out cognition.Response
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return &out
}

func systemPrompt(p *player.Player, frame cognition.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are playing a 12-player social deduction game of Werewolf. You are Player %d, %s.\n\n", p.ID, p.Name)
	b.WriteString(frame.Mindset + "\n\n")
	b.WriteString(frame.SpeechStyle + "\n\n")

	b.WriteString("Your goals:\n")
	for _, g := range frame.Goals {
		fmt.Fprintf(&b, "- %s\n", g)
	}

	b.WriteString("\nWhat you know:\n")
	for _, k := range frame.Knows {
		fmt.Fprintf(&b, "[YES] %s\n", k)
	}
	b.WriteString("\nWhat you do NOT know and must never state as fact:\n")
	for _, k := range frame.DoesntKnow {
		fmt.Fprintf(&b, "[NO] %s\n", k)
	}

	b.WriteString(`
Respond with a single JSON object and nothing else:
{
  "speech": "what you say out loud, in character",
  "thought": "your private reasoning, never shown to other players",
  "voteTarget": 0,
  "actionParams": {"useAntidote": false, "poisonTarget": 0},
  "claim": {"role": "", "targetId": 0, "result": ""}
}
Omit "claim" unless you are publicly claiming a role. voteTarget is a seat
number from the legal targets, or 0.`)
	return b.String()
}

func turnPrompt(s *game.State, p *player.Player, c cognition.Constraints) string {
	sections := []string{
		perception.PhaseInformation(s),
		"== Board ==\n" + perception.Situation(s, p),
		"== Your role ==\n" + perception.RoleInformation(s, p),
		"== Recent events ==\n" + perception.FormatLogs(s, p),
		"== Public claims ==\n" + perception.RoleClaims(s),
		"== Vote history ==\n" + perception.VoteHistory(s),
		"== Your task ==\n" + c.Describe(),
	}
	return strings.Join(sections, "\n\n")
}
