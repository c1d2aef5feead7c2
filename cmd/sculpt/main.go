package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gekko3d/sculpt"
	"github.com/gekko3d/sculpt/core"
	"github.com/gekko3d/sculpt/shapes"
	"github.com/gekko3d/sculpt/vox"
)

const frame = 16 * time.Millisecond

func main() {
	configPath := flag.String("config", "", "JSON config file overlaid on the defaults")
	debug := flag.Bool("debug", false, "Enable debug logging")
	shape := flag.String("shape", "sphere", "Rebuild target: cube, sphere, tower or arch")
	input := flag.String("in", "", "JSON voxel array or .vox model to start from instead of the stock cube")
	maxTicks := flag.Int("max-ticks", 5000, "Give up after this many ticks per transition")
	shatterTicks := flag.Int("shatter-ticks", 120, "Ticks to let debris fall before rebuilding")
	flag.Parse()

	log := sculpt.NewWriterLogger("sculpt", *debug, os.Stderr, os.Stderr)

	cfg := sculpt.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = sculpt.LoadConfig(*configPath); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
	}

	events := sculpt.NewEventQueue(0)
	engine, err := sculpt.NewEngine(cfg, sculpt.WithLogger(log), sculpt.WithSink(events))
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	if err := load(engine, *input, cfg.FloorY); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	target, err := shapes.Named(*shape, float64(cfg.FloorY), cfg.MaxVoxels)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	clock := sculpt.NewTime(time.Now())
	step := func() {
		clock.Advance(clock.Time.Add(frame))
		engine.Tick(clock.Dt)
		drain(log, events)
	}

	if err := engine.Dismantle(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	for i := 0; i < *shatterTicks && i < *maxTicks; i++ {
		step()
	}

	// Hand the target over the way an async generator would.
	engine.Enqueue(func(e *sculpt.Engine) {
		if err := e.Rebuild(target); err != nil {
			log.Errorf("rebuild: %v", err)
		}
	})
	ticks := 0
	for ; ticks < *maxTicks; ticks++ {
		step()
		if engine.State() == sculpt.StateStable {
			break
		}
	}
	if engine.State() != sculpt.StateStable {
		log.Errorf("still %s after %d ticks", engine.State(), ticks)
		os.Exit(1)
	}

	out, err := engine.JSON()
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func load(engine *sculpt.Engine, path string, floorY float32) error {
	switch {
	case path == "":
		engine.LoadInitialModel(shapes.Cube(core.Cell{-2, 0, -2}, core.Cell{2, 4, 2}, 0x4a90d9, core.Matte))
		return nil
	case strings.EqualFold(filepath.Ext(path), ".vox"):
		vf, err := vox.LoadFile(path)
		if err != nil {
			return err
		}
		ps, err := vf.Persisted(0, floorY)
		if err != nil {
			return err
		}
		engine.LoadInitialModel(ps)
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = engine.LoadJSON(data)
	return err
}

func drain(log sculpt.Logger, q *sculpt.EventQueue) {
	for _, ev := range q.Drain() {
		switch ev.Kind {
		case sculpt.EventState:
			log.Infof("state %s", ev.State)
		case sculpt.EventCount:
			log.Debugf("count %d", ev.Count)
		case sculpt.EventHistory:
			log.Debugf("history undo=%t redo=%t", ev.CanUndo, ev.CanRedo)
		default:
			log.Debugf("%s event", ev.Kind)
		}
	}
}
