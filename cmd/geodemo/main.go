// Command geodemo drives the geometry cache with a synthetic scene and
// reports cache behaviour.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/gogpu/geocache"
	"github.com/gogpu/geocache/config"
	"github.com/gogpu/geocache/gpu"
	"github.com/gogpu/geocache/model"
	"github.com/gogpu/geocache/session"
)

type options struct {
	configPath string
	frames     int
	instances  int
	shapes     int
	budgetMiB  int
	workers    int
	noBatching bool
	noCaching  bool
	fps        float64
	seed       uint64
	useGPU     bool
	verbose    bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML settings file")
	flag.IntVar(&o.frames, "frames", 120, "number of frames to render")
	flag.IntVar(&o.instances, "instances", 2000, "visible instances per frame")
	flag.IntVar(&o.shapes, "shapes", 64, "distinct shapes in the scene")
	flag.IntVar(&o.budgetMiB, "budget", 0, "cache budget in MiB (overrides config)")
	flag.IntVar(&o.workers, "workers", 0, "tessellation workers (overrides config)")
	flag.BoolVar(&o.noBatching, "no-batching", false, "disable intra-frame batching")
	flag.BoolVar(&o.noCaching, "no-caching", false, "disable the cross-frame cache")
	flag.Float64Var(&o.fps, "fps", 0, "frame rate limit, 0 for unlimited")
	flag.Uint64Var(&o.seed, "seed", 1, "scene seed")
	flag.BoolVar(&o.useGPU, "gpu", false, "upload through a headless noop device")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	geocache.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "geodemo: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	settings := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		settings = loaded
	}
	if o.budgetMiB != 0 {
		settings.CacheSizeMiB = o.budgetMiB
	}
	if o.workers > 0 {
		settings.Workers = o.workers
	}
	if o.noBatching {
		settings.ModelBatching = false
	}
	if o.noCaching {
		settings.ModelCaching = false
	}

	diag := &failureCounter{}
	s := session.New(settings, session.WithDiagnostics(diag))
	defer s.Close()

	var sub session.Submitter
	if o.useGPU {
		u, release, err := openUploader()
		if err != nil {
			return err
		}
		defer release()
		sub = u
	}

	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
	shapes := makeShapes(rng, o.shapes)
	instances := makeScene(rng, shapes, o.instances)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if o.fps > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.fps), 1)
	}

	pb := progressbar.Default(int64(o.frames), "rendering")
	defer pb.Close()

	log := geocache.Logger()
	start := time.Now()
	var drawn, skipped int
	for frame := range o.frames {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		animate(instances, frame)

		report, err := s.RenderFrame(ctx, instances, sub)
		if err != nil {
			return err
		}
		drawn += report.Drawn
		skipped += report.Skipped
		_ = pb.Add(1)
	}
	elapsed := time.Since(start)

	st := s.Stats()
	log.Info("run finished",
		slog.Int("frames", o.frames),
		slog.Duration("elapsed", elapsed),
		slog.Int("drawn", drawn),
		slog.Int("skipped", skipped),
		slog.Int("failures_reported", diag.n),
		slog.Int("entries", st.Entries),
		slog.Int64("used", st.Used),
		slog.Int64("budget", st.Budget),
		slog.Float64("hit_rate", st.HitRate),
		slog.Uint64("evictions", st.Evictions),
		slog.Uint64("refusals", st.Refusals))
	if u, ok := sub.(*gpu.Uploader); ok {
		us := u.Stats()
		log.Info("gpu upload",
			slog.Uint64("buffers", us.BuffersCreated),
			slog.Uint64("bytes", us.BytesUploaded),
			slog.Uint64("draws", us.Draws))
	}
	return nil
}

func openUploader() (*gpu.Uploader, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, errors.New("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("open adapter: %w", err)
	}
	u := gpu.NewUploader(openDev.Device, openDev.Queue)
	return u, func() {
		u.Release()
		openDev.Device.Destroy()
		instance.Destroy()
	}, nil
}

type failureCounter struct {
	n int
}

func (f *failureCounter) TessellationFailed(int, *model.Instance, error) {
	f.n++
}
