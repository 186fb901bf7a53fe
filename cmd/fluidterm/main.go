// Command fluidterm runs a scene in the terminal, drawing the fluid as
// block glyphs with tcell.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/config"
	"github.com/pthm-cable/sphfluid/sim"
	"github.com/pthm-cable/sphfluid/termview"
)

// tiltStep is the gravity rotation per arrow key press, in radians.
const tiltStep = math.Pi / 12

type app struct {
	screen tcell.Screen
	view   *termview.View
	sim    *sim.Simulation
	paused bool
	tilt   float64
	gmag   float64
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	scene := flag.String("scene", "", "Scene to run (empty = use config)")
	logPath := flag.String("log", "", "Write JSON logs to this file (empty = discard)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	if err := run(*configPath, *scene, *logPath, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "fluidterm:", err)
		os.Exit(1)
	}
}

func run(configPath, scene, logPath string, seed int64) error {
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.Cfg()

	// The terminal belongs to tcell, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewJSONHandler(out, nil))
	slog.SetDefault(logger)

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s, err := sim.New(cfg, sim.Options{Seed: seed, Scene: scene, Logger: logger})
	if err != nil {
		return err
	}
	defer s.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	g := s.Fluids().Gravity()
	a := &app{
		screen: screen,
		view:   termview.New(screen),
		sim:    s,
		tilt:   math.Atan2(g.X, g.Y),
		gmag:   math.Hypot(g.X, g.Y),
	}
	a.loop(time.Duration(cfg.Physics.DT * float64(time.Second)))
	return nil
}

func (a *app) loop(frame time.Duration) {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !a.handle(ev) {
				return
			}
		case <-ticker.C:
			if !a.paused {
				a.sim.Step()
			}
			a.view.Draw(a.sim.Fluids(), a.sim.Space(), a.status())
		}
	}
}

// handle processes one event and reports whether to keep running.
func (a *app) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			a.setTilt(a.tilt + tiltStep)
		case tcell.KeyRight:
			a.setTilt(a.tilt - tiltStep)
		case tcell.KeyUp:
			a.setTilt(0)
		case tcell.KeyDown:
			a.setTilt(math.Pi)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'p':
				a.paused = !a.paused
			case ' ':
				b := a.sim.Fluids().Bounds()
				a.sim.Explode(r2.Scale(0.5, r2.Add(b.Min, b.Max)))
			case 'r':
				if err := a.sim.Reset(); err != nil {
					slog.Error("reset failed", "error", err)
				}
				a.setTilt(a.tilt)
			case 'n':
				a.nextScene()
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		p := a.view.CellToWorld(x, y, a.sim.Fluids().Bounds())
		switch {
		case ev.Buttons()&tcell.Button1 != 0:
			a.sim.Attract(p)
		case ev.Buttons()&tcell.Button2 != 0:
			a.sim.Explode(p)
		}
	case *tcell.EventResize:
		a.view.Resize()
		a.screen.Sync()
	}
	return true
}

// setTilt rotates gravity to angle, measured from straight down.
func (a *app) setTilt(angle float64) {
	a.tilt = angle
	a.sim.SetGravity(r2.Vec{X: a.gmag * math.Sin(angle), Y: a.gmag * math.Cos(angle)})
}

func (a *app) nextScene() {
	names := sim.SceneNames()
	next := names[0]
	for i, n := range names {
		if n == a.sim.SceneName() {
			next = names[(i+1)%len(names)]
		}
	}
	if err := a.sim.LoadScene(next); err != nil {
		slog.Error("scene load failed", "scene", next, "error", err)
		return
	}
	a.setTilt(a.tilt)
}

func (a *app) status() string {
	w := a.sim.Fluids()
	state := ""
	if a.paused {
		state = " PAUSED"
	}
	return fmt.Sprintf("%s  particles %d  t=%.1fs  tilt %+.0f°%s  [arrows] tilt [space] explode [mouse] attract [n] scene [r] reset [q] quit",
		a.sim.SceneName(), w.ParticleCount(), w.SimTime(), a.tilt*180/math.Pi, state)
}
