// Package game runs a world on a fixed timestep.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/tr1-engine/internal/game/save"
	"github.com/Faultbox/tr1-engine/internal/game/world"
	"github.com/Faultbox/tr1-engine/internal/logger"
	"github.com/Faultbox/tr1-engine/pkg/core"
)

// Config holds runner configuration.
type Config struct {
	LevelName string
	// TickRate is the number of ticks per wall clock second in realtime mode.
	TickRate int
	// MaxTicks stops the run after this many ticks; zero runs until the
	// level ends or the player dies.
	MaxTicks uint64
	// Realtime paces ticks by the wall clock instead of running flat out.
	Realtime bool
}

// StopReason says why a run ended.
type StopReason int

const (
	StopNone StopReason = iota
	StopMaxTicks
	StopLevelEnded
	StopPlayerDead
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case StopMaxTicks:
		return "max ticks"
	case StopLevelEnded:
		return "level ended"
	case StopPlayerDead:
		return "player dead"
	case StopCanceled:
		return "canceled"
	default:
		return "running"
	}
}

// Game is the main game instance.
type Game struct {
	config Config
	world  *world.World
	store  *save.Store

	// mu is held for every tick so readers see whole ticks only.
	mu   sync.Mutex
	stop StopReason
	log  *zap.Logger
}

// New creates a runner for w. store may be nil to disable saving.
func New(cfg Config, w *world.World, store *save.Store) (*Game, error) {
	if cfg.TickRate <= 0 {
		return nil, fmt.Errorf("invalid tick rate %d", cfg.TickRate)
	}
	g := &Game{config: cfg, world: w, store: store, log: logger.Named("game")}

	if store != nil && cfg.LevelName != "" {
		p, ok, err := store.Load(cfg.LevelName)
		if err != nil {
			return nil, fmt.Errorf("restoring progress: %w", err)
		}
		if ok {
			if err := p.Apply(w); err != nil {
				return nil, fmt.Errorf("restoring progress: %w", err)
			}
			g.log.Info("progress restored", zap.String("level", cfg.LevelName), zap.Uint16("secrets", p.SecretsFound))
		}
	}
	return g, nil
}

// Locker returns the lock held while the world ticks.
func (g *Game) Locker() sync.Locker {
	return &g.mu
}

// World returns the world being run.
func (g *Game) World() *world.World {
	return g.world
}

// StopReason returns why the last run ended.
func (g *Game) StopReason() StopReason {
	return g.stop
}

// Step runs one tick and reports whether the run may continue.
func (g *Game) Step() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stop != StopNone {
		return false
	}
	g.world.Tick()
	g.stop = g.checkStop()
	return g.stop == StopNone
}

func (g *Game) checkStop() StopReason {
	switch {
	case g.world.LevelEnded():
		return StopLevelEnded
	case g.world.Player() != nil && g.world.Player().Dead():
		return StopPlayerDead
	case g.config.MaxTicks > 0 && g.world.Ticks() >= g.config.MaxTicks:
		return StopMaxTicks
	}
	return StopNone
}

// Run ticks the world until it stops or ctx is canceled.
func (g *Game) Run(ctx context.Context) error {
	g.log.Info("starting game loop",
		zap.String("level", g.config.LevelName),
		zap.Bool("realtime", g.config.Realtime),
		zap.Uint64("max_ticks", g.config.MaxTicks))

	var err error
	if g.config.Realtime {
		err = g.runRealtime(ctx)
	} else {
		err = g.runFlat(ctx)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		g.stop = StopCanceled
		err = nil
	}

	g.log.Info("game loop stopped",
		zap.Stringer("reason", g.stop),
		zap.Uint64("ticks", g.world.Ticks()),
		zap.Duration("simulated", core.Frame(g.world.Ticks()).Duration()))
	return err
}

func (g *Game) runFlat(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !g.Step() {
			return nil
		}
	}
}

// runRealtime accumulates wall clock time and spends it in whole ticks.
func (g *Game) runRealtime(ctx context.Context) error {
	tick := time.Second / time.Duration(g.config.TickRate)
	timer := time.NewTicker(tick)
	defer timer.Stop()

	lastTime := time.Now()
	var acc time.Duration
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-timer.C:
			acc += now.Sub(lastTime)
			lastTime = now
		}
		for acc >= tick {
			acc -= tick
			if !g.Step() {
				return nil
			}
		}
	}
}

// Close saves the level progress.
func (g *Game) Close() error {
	if g.store == nil || g.config.LevelName == "" {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Save(save.Capture(g.config.LevelName, g.world))
}
