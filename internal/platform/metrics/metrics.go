// Package metrics provides observability counters for the arena server
// and a JSON endpoint to read them.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Collector gathers performance counters. All fields are updated with
// atomics; a nil *Collector is safe to call and does nothing.
type Collector struct {
	startedAt time.Time

	PhaseAdvances  atomic.Int64
	TickFailures   atomic.Int64
	MatchesFinished atomic.Int64

	LLMRequests   atomic.Int64
	LLMFailures   atomic.Int64
	LLMTokensUsed atomic.Int64
	LLMLatencyNS  atomic.Int64

	PrefetchHits   atomic.Int64
	PrefetchWasted atomic.Int64

	WSClients     atomic.Int64
	WSMessagesOut atomic.Int64
}

// New creates a collector.
func New() *Collector {
	return &Collector{startedAt: time.Now()}
}

// ObserveLLM records one provider round trip.
func (c *Collector) ObserveLLM(tokens int, latency time.Duration, failed bool) {
	if c == nil {
		return
	}
	c.LLMRequests.Add(1)
	c.LLMTokensUsed.Add(int64(tokens))
	c.LLMLatencyNS.Add(int64(latency))
	if failed {
		c.LLMFailures.Add(1)
	}
}

// Advance records one phase advance, failed or not.
func (c *Collector) Advance(failed bool) {
	if c == nil {
		return
	}
	c.PhaseAdvances.Add(1)
	if failed {
		c.TickFailures.Add(1)
	}
}

type snapshot struct {
	UptimeSeconds   int64 `json:"uptime_seconds"`
	PhaseAdvances   int64 `json:"phase_advances"`
	TickFailures    int64 `json:"tick_failures"`
	MatchesFinished int64 `json:"matches_finished"`
	LLMRequests     int64 `json:"llm_requests"`
	LLMFailures     int64 `json:"llm_failures"`
	LLMTokensUsed   int64 `json:"llm_tokens_used"`
	LLMAvgLatencyMS int64 `json:"llm_avg_latency_ms"`
	PrefetchHits    int64 `json:"prefetch_hits"`
	PrefetchWasted  int64 `json:"prefetch_wasted"`
	WSClients       int64 `json:"ws_clients"`
	WSMessagesOut   int64 `json:"ws_messages_out"`
}

// Handler serves the counters as JSON.
func (c *Collector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := snapshot{
			UptimeSeconds:   int64(time.Since(c.startedAt).Seconds()),
			PhaseAdvances:   c.PhaseAdvances.Load(),
			TickFailures:    c.TickFailures.Load(),
			MatchesFinished: c.MatchesFinished.Load(),
			LLMRequests:     c.LLMRequests.Load(),
			LLMFailures:     c.LLMFailures.Load(),
			LLMTokensUsed:   c.LLMTokensUsed.Load(),
			PrefetchHits:    c.PrefetchHits.Load(),
			PrefetchWasted:  c.PrefetchWasted.Load(),
			WSClients:       c.WSClients.Load(),
			WSMessagesOut:   c.WSMessagesOut.Load(),
		}
		if n := s.LLMRequests; n > 0 {
			s.LLMAvgLatencyMS = c.LLMLatencyNS.Load() / n / int64(time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	})
}
