// Package tts paces the match presentation. The real deployment fronts a
// speech-synthesis service; this implementation models the part the
// engine depends on, which is playback taking wall-clock time that a
// reset must be able to cut short.
package tts

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/renlu07/wolf-arena/internal/platform/logger"
)

// wordsPerMinute approximates a measured reading pace.
const wordsPerMinute = 170

// PacedSpeaker blocks for roughly as long as reading the speech aloud
// would take, clamped so degenerate speeches cannot freeze the match.
type PacedSpeaker struct {
	log *logger.Logger

	mu       sync.Mutex
	cancelCh chan struct{}

	minDur time.Duration
	maxDur time.Duration
}

// NewPacedSpeaker builds a speaker with sane pacing bounds.
func NewPacedSpeaker(log *logger.Logger) *PacedSpeaker {
	return &PacedSpeaker{
		log:      log,
		cancelCh: make(chan struct{}),
		minDur:   1 * time.Second,
		maxDur:   30 * time.Second,
	}
}

// Speak blocks for the estimated playback duration. It returns early
// when ctx is done or Cancel is called.
func (p *PacedSpeaker) Speak(ctx context.Context, seat int, text string) error {
	d := p.estimate(text)
	p.log.Event("speech_playback", seat, d.String())

	p.mu.Lock()
	cancel := p.cancelCh
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-cancel:
		return nil
	case <-time.After(d):
		return nil
	}
}

// Prefetch would hand the text to the synthesis backend ahead of
// playback. Pacing needs no warmup, so this only logs the overlap.
func (p *PacedSpeaker) Prefetch(seat int, text string) {
	p.log.Event("speech_prefetch", seat, p.estimate(text).String())
}

// Cancel releases every in-flight Speak immediately.
func (p *PacedSpeaker) Cancel() {
	p.mu.Lock()
	close(p.cancelCh)
	p.cancelCh = make(chan struct{})
	p.mu.Unlock()
}

func (p *PacedSpeaker) estimate(text string) time.Duration {
	words := len(strings.Fields(text))
	d := time.Duration(words) * time.Minute / wordsPerMinute
	if d < p.minDur {
		return p.minDur
	}
	if d > p.maxDur {
		return p.maxDur
	}
	return d
}
