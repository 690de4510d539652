package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arcweld/worldstream/internal/class"
	"github.com/arcweld/worldstream/internal/config"
	"github.com/arcweld/worldstream/internal/demand"
	"github.com/arcweld/worldstream/internal/loop"
	"github.com/arcweld/worldstream/internal/object"
	"github.com/arcweld/worldstream/internal/script"
	"github.com/arcweld/worldstream/internal/stream"
)

const ConfigPath = "config/worldsim.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("WORLDSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("worldsim starting",
		"log_level", cfg.LogLevel,
		"fade_out", cfg.FadeOutFactor,
		"fade_overlap", cfg.FadeOverlapFactor,
		"activation_range", cfg.ActivationRange)

	pool := demand.NewPool()
	streamer := stream.New(cfg.FadeOutFactor, cfg.FadeOverlapFactor, cfg.ActivationRange)
	reg := object.NewRegistry(streamer, pool, script.SlogReporter{})
	streamer.Bind(reg)
	defer reg.DeleteAll()

	classes := class.NewRegistry()
	classes.Add(demoClass())

	if err := populate(reg, classes); err != nil {
		return fmt.Errorf("populating world: %w", err)
	}

	// Wandering viewer so objects stream in and out.
	start := time.Now()
	viewer := func() object.Vec3 {
		t := float32(time.Since(start).Seconds())
		return object.Vec3{X: t * 50}
	}

	runner := loop.NewRunner(reg, streamer, viewer,
		time.Duration(cfg.FrameIntervalMs)*time.Millisecond,
		time.Duration(cfg.StepIntervalMs)*time.Millisecond)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(ctx)
	})

	slog.Info("worldsim started", "objects", reg.Count())
	return g.Wait()
}

// demoClass is a marker-post prototype: logs its lifecycle and counts
// simulation steps in its instance table.
func demoClass() *class.Class {
	return class.New("MarkerPost", map[string]any{
		"activate": object.ActivateFunc(func(o *object.Object, inst *script.Table) error {
			inst.Set("steps", 0)
			slog.Debug("marker activated", "object", o.Name())
			return o.SetNeedsStepCallbacks(true)
		}),
		"deactivate": object.DeactivateFunc(func(o *object.Object) (bool, error) {
			slog.Debug("marker deactivated", "object", o.Name())
			return false, o.SetNeedsStepCallbacks(false)
		}),
		"init": object.InitFunc(func(o *object.Object) error {
			return nil
		}),
		"setFade": object.FadeFunc(func(o *object.Object, fade float32) error {
			slog.Debug("marker fade", "object", o.Name(), "fade", fade)
			return nil
		}),
		"stepCallback": object.TickFunc(func(o *object.Object, elapsed float32) error {
			steps, _ := o.Instance().Get("steps").(int)
			o.Instance().Set("steps", steps+1)
			return nil
		}),
	}, "meshes/marker_post.mesh")
}

func populate(reg *object.Registry, classes *class.Registry) error {
	cls, err := classes.Get("MarkerPost")
	if err != nil {
		return err
	}
	for i := 0; i < 64; i++ {
		o := reg.Add("", cls)
		o.UpdateSphere(object.Vec3{
			X: float32(i) * 120,
			Y: rand.Float32() * 200,
		}, 5)
		if err := o.Init(); err != nil {
			return fmt.Errorf("initializing %q: %w", o.Name(), err)
		}
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
