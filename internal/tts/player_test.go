package tts

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPlayback_SequentialInOrder(t *testing.T) {
	player := &recordingPlayer{delay: 10 * time.Millisecond}
	playback := NewPlayback(player, zerolog.Nop(), nil)
	defer playback.Close()

	for i := 0; i < 4; i++ {
		if !playback.Enqueue(fmt.Sprintf("clip_%d.mp3", i)) {
			t.Fatalf("Expected clip %d to be queued", i)
		}
	}
	playback.Wait()

	player.mu.Lock()
	defer player.mu.Unlock()
	if player.overlap {
		t.Error("Expected clips never to overlap")
	}
	for i, path := range player.played {
		if path != fmt.Sprintf("clip_%d.mp3", i) {
			t.Errorf("Expected clip_%d.mp3 at position %d, got %s", i, i, path)
		}
	}
	if len(player.played) != 4 {
		t.Errorf("Expected 4 clips played, got %d", len(player.played))
	}
}

func TestPlayback_EnqueueAfterClose(t *testing.T) {
	playback := NewPlayback(&recordingPlayer{}, zerolog.Nop(), nil)
	playback.Close()
	playback.Close()

	if playback.Enqueue("late.mp3") {
		t.Error("Expected Enqueue to fail after Close")
	}
}

func TestPlayback_CloseInterruptsClip(t *testing.T) {
	player := &recordingPlayer{delay: time.Hour}
	playback := NewPlayback(player, zerolog.Nop(), nil)
	playback.Enqueue("long.mp3")

	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		playback.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Close to interrupt playback")
	}
}

func TestCommandPlayer_Play(t *testing.T) {
	truePath, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true not available")
	}

	p := NewCommandPlayer(truePath)
	p.pollInterval = 5 * time.Millisecond

	if err := p.Play(context.Background(), "feedback.mp3"); err != nil {
		t.Errorf("Expected successful playback, got %v", err)
	}
}

func TestCommandPlayer_Failure(t *testing.T) {
	falsePath, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}

	p := NewCommandPlayer(falsePath)
	p.pollInterval = 5 * time.Millisecond

	if err := p.Play(context.Background(), "feedback.mp3"); err == nil {
		t.Error("Expected error from failing player")
	}
}

func TestCommandPlayer_MissingBinary(t *testing.T) {
	p := NewCommandPlayer("/nonexistent/player")
	if err := p.Play(context.Background(), "feedback.mp3"); err == nil {
		t.Error("Expected start error")
	}
}

func TestNewCommandPlayer_FFplayFlags(t *testing.T) {
	p := NewCommandPlayer("")
	if p.playerPath != "ffplay" || len(p.args) != 4 || p.args[0] != "-nodisp" {
		t.Errorf("Unexpected ffplay setup: %s %v", p.playerPath, p.args)
	}
	if p.pollInterval != 100*time.Millisecond {
		t.Errorf("Expected 100ms poll interval, got %v", p.pollInterval)
	}
}
