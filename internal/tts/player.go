package tts

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-coach/internal/observability"
)

// DefaultPollInterval is how often a running player is checked for completion
const DefaultPollInterval = 100 * time.Millisecond

// CommandPlayer plays files with an external player such as ffplay
type CommandPlayer struct {
	playerPath   string
	args         []string
	pollInterval time.Duration
}

// NewCommandPlayer creates a player for playerPath. ffplay gets
// headless auto-exit flags; other players receive only the file path.
func NewCommandPlayer(playerPath string) *CommandPlayer {
	if playerPath == "" {
		playerPath = "ffplay"
	}
	var args []string
	if playerPath == "ffplay" {
		args = []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}
	}
	return &CommandPlayer{playerPath: playerPath, args: args, pollInterval: DefaultPollInterval}
}

// Play starts the player and polls until it exits or ctx is done
func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, p.playerPath, append(append([]string(nil), p.args...), path)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.playerPath, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// CommandContext kills the process; reap it
			<-done
			return ctx.Err()
		case <-ticker.C:
			select {
			case err := <-done:
				if err != nil {
					return fmt.Errorf("%s %s: %w", p.playerPath, path, err)
				}
				return nil
			default:
			}
		}
	}
}

const playbackQueueSize = 8

// Playback plays queued files one at a time on a single goroutine,
// so clips never overlap and callers never block on audio output.
type Playback struct {
	player  Player
	queue   chan string
	pending sync.WaitGroup
	logger  zerolog.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPlayback starts the playback worker
func NewPlayback(player Player, logger zerolog.Logger, metrics *observability.Metrics) *Playback {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Playback{
		player:  player,
		queue:   make(chan string, playbackQueueSize),
		logger:  logger.With().Str("component", "playback").Logger(),
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Enqueue schedules path for playback. It reports false when the queue is
// full or the worker has stopped.
func (p *Playback) Enqueue(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}

	p.pending.Add(1)
	select {
	case p.queue <- path:
		return true
	default:
		p.pending.Done()
		p.logger.Warn().Str("path", path).Msg("Playback queue full, dropping clip")
		return false
	}
}

// Wait blocks until every queued clip has finished playing
func (p *Playback) Wait() {
	p.pending.Wait()
}

// Close stops the worker, interrupting the current clip and discarding the queue
func (p *Playback) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.cancel()
	<-p.done
}

func (p *Playback) run() {
	defer close(p.done)

	for path := range p.queue {
		if p.ctx.Err() != nil {
			p.pending.Done()
			continue
		}

		start := time.Now()
		err := p.player.Play(p.ctx, path)
		p.metrics.ObserveStage(observability.StagePlayback, start, err == nil)
		if err != nil {
			p.logger.Warn().Err(err).Str("path", path).Msg("Playback failed")
		} else {
			p.logger.Debug().Str("path", path).Dur("duration", time.Since(start)).Msg("Playback finished")
		}
		p.pending.Done()
	}
}
