package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
	"golang.org/x/term"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/catalog"
	"github.com/wippyai/content-engine/engine"
	"github.com/wippyai/content-engine/loader"
	"github.com/wippyai/content-engine/registry"
)

type config struct {
	Root        string `env:"CONTENT_ROOT" env-default:"."`
	TickMS      int    `env:"CONTENT_TICK_MS" env-default:"16"`
	Concurrency int64  `env:"CONTENT_CONCURRENCY" env-default:"4"`
	Verbose     bool   `env:"CONTENT_VERBOSE"`
}

func main() {
	var cfg config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: read environment: %v\n", err)
		os.Exit(1)
	}

	var (
		manifest    = flag.String("manifest", "", "Path to catalog manifest JSON")
		root        = flag.String("root", cfg.Root, "Content root directory")
		objects     = flag.String("objects", "", "Object ids to load (comma-separated)")
		sceneID     = flag.Uint64("scene", 0, "Scene id to load")
		wait        = flag.Duration("wait", 30*time.Second, "Max time to wait for loads")
		tick        = flag.Duration("tick", time.Duration(cfg.TickMS)*time.Millisecond, "Drain cycle interval")
		wasm        = flag.Bool("wasm", false, "Extract .wasm files with an embedded wasm runtime")
		verbose     = flag.Bool("v", cfg.Verbose, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *manifest == "" {
		fmt.Fprintln(os.Stderr, "Usage: contentrun -manifest <manifest.json> -objects 100,101 [-scene id] [-root dir]")
		fmt.Fprintln(os.Stderr, "       contentrun -manifest <manifest.json> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*manifest, *root, *tick, cfg.Concurrency, *wasm); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*manifest, *root, *objects, contentengine.SceneID(*sceneID), *wait, *tick, cfg.Concurrency, *wasm, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newEngine(manifest, root string, concurrency int64, wasm bool, log *zap.Logger) (*engine.Engine, func(), error) {
	engine.SetLogger(log)
	registry.SetLogger(log)
	loader.SetLogger(log)

	cat, err := catalog.LoadManifest(manifest)
	if err != nil {
		return nil, nil, err
	}

	opts := []loader.LocalOption{loader.WithConcurrency(concurrency)}
	shutdown := func() {}
	if wasm {
		wx := loader.NewWASMExtractor(context.Background())
		opts = append(opts, loader.WithExtractor(wx.Extract))
		shutdown = func() { wx.Close(context.Background()) }
	}
	local := loader.NewLocal(root, opts...)

	e, err := engine.New(engine.Options{
		Catalog: cat,
		Mounter: local,
		Files:   local,
		Scenes:  local,
		Logger:  log,
	})
	if err != nil {
		shutdown()
		return nil, nil, err
	}
	return e, shutdown, nil
}

func run(manifest, root, objectsStr string, sceneID contentengine.SceneID, wait, tick time.Duration, concurrency int64, wasm, verbose bool) error {
	log := zap.NewNop()
	if verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}

	ids, err := parseIDs(objectsStr)
	if err != nil {
		return err
	}

	e, shutdown, err := newEngine(manifest, root, concurrency, wasm, log)
	if err != nil {
		return err
	}
	defer shutdown()

	e.Initialize()

	for _, id := range ids {
		e.LoadObjectAsync(id)
	}

	var scene contentengine.SceneHandle
	if sceneID.IsValid() {
		if scene, err = e.LoadScene(sceneID, contentengine.SceneParams{ActivateOnLoad: true}); err != nil {
			e.Cleanup()
			return err
		}
	}

	// Drive the drain cycle until everything settles or the wait expires.
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for range ticker.C {
		e.ProcessQueuedCommands()
		if allSettled(e, ids, scene) || time.Now().After(deadline) {
			break
		}
	}

	fmt.Printf("Objects:\n")
	for _, id := range ids {
		st := e.GetObjectStatus(id)
		line := fmt.Sprintf("  %-8d %s", id, st)
		if v, ok := engine.ObjectValue[any](e, id); ok {
			line += fmt.Sprintf("  (%s)", describeValue(v))
		}
		fmt.Println(line)
	}
	if scene != nil {
		fmt.Printf("Scene:\n  %-8d %s\n", sceneID, scene.Status())
		if err := scene.Err(); err != nil {
			fmt.Printf("           %v\n", err)
		}
	}

	// Release everything so the teardown reports genuine leaks only.
	for _, id := range ids {
		e.ReleaseObjectAsync(id)
	}
	if scene != nil {
		if err := e.ReleaseScene(sceneID); err != nil {
			log.Warn("scene release failed", zap.Error(err))
		}
	}
	e.ProcessQueuedCommands()

	if leaked := e.Cleanup(); leaked > 0 {
		fmt.Printf("Leaked entries at teardown: %d\n", leaked)
	}
	return nil
}

func allSettled(e *engine.Engine, ids []contentengine.ObjectID, scene contentengine.SceneHandle) bool {
	for _, id := range ids {
		if e.GetObjectStatus(id) == contentengine.StatusLoading {
			return false
		}
	}
	if scene != nil && scene.Status() == contentengine.StatusLoading {
		return false
	}
	return true
}

func parseIDs(s string) ([]contentengine.ObjectID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]contentengine.ObjectID, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || v == 0 {
			return nil, fmt.Errorf("bad object id %q", p)
		}
		ids = append(ids, contentengine.ObjectID(v))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func describeValue(v any) string {
	switch t := v.(type) {
	case []byte:
		return fmt.Sprintf("%d bytes", len(t))
	case string:
		return fmt.Sprintf("%d chars", len(t))
	default:
		return fmt.Sprintf("%T", v)
	}
}
