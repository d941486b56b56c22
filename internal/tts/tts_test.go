package tts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/renlu07/wolf-arena/internal/platform/logger"
)

func TestEstimateClamps(t *testing.T) {
	p := NewPacedSpeaker(logger.NewNop())

	assert.Equal(t, p.minDur, p.estimate("hi"))
	assert.Equal(t, p.minDur, p.estimate(""))

	long := ""
	for i := 0; i < 500; i++ {
		long += "word "
	}
	assert.Equal(t, p.maxDur, p.estimate(long))
}

func TestCancelReleasesSpeak(t *testing.T) {
	p := NewPacedSpeaker(logger.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- p.Speak(context.Background(), 1, "a few words here")
	}()

	time.Sleep(20 * time.Millisecond)
	p.Cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Speak did not return after Cancel")
	}
}

func TestContextCancelsSpeak(t *testing.T) {
	p := NewPacedSpeaker(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- p.Speak(ctx, 1, "some speech")
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Speak did not return after context cancel")
	}
}
