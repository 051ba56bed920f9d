package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"golang.org/x/text/language"

	"github.com/ushitora-anqou/aqpong/config"
	"github.com/ushitora-anqou/aqpong/engine"
	"github.com/ushitora-anqou/aqpong/util"
	"github.com/ushitora-anqou/aqpong/window"
)

func init() {
	// SDL and ebiten need the main goroutine on the main thread.
	runtime.LockOSThread()
}

func openerFor(cfg *config.Config) (window.Opener, error) {
	switch cfg.Backend {
	case "sdl":
		return window.SDLOpener(cfg.Scale), nil
	case "ebiten":
		return window.EbitenOpener(cfg.Scale), nil
	case "terminal":
		return window.TerminalOpener(time.Duration(cfg.KeyHoldMs) * time.Millisecond), nil
	case "headless":
		if cfg.Frames == 0 {
			return nil, fmt.Errorf("headless backend needs -frames")
		}
		return window.OpenHeadless, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func loadConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a JSON config file")
	backend := fs.String("backend", "", "sdl, terminal, ebiten or headless")
	width := fs.Int("width", 0, "window width in pixels")
	height := fs.Int("height", 0, "window height in pixels")
	scale := fs.Int("scale", 0, "window scale factor")
	frames := fs.Int("frames", -1, "stop after N frames (0 = until quit)")
	winScore := fs.Int("win-score", -1, "end the match at this score (0 = endless)")
	walls := fs.Bool("walls", false, "bounce off the left and right borders instead of scoring")
	record := fs.String("record", "", "record the session to this video file")
	ffmpegPath := fs.String("ffmpeg", "", "path to the ffmpeg binary")
	shotDir := fs.String("screenshot-dir", "", "directory for F12 screenshots")
	trace := fs.Bool("trace", false, "enable trace logging")
	debug := fs.Bool("debug", false, "panic on frame ordering violations")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	path, required := *configPath, *configPath != ""
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			path = ""
		}
		required = os.Getenv(config.EnvConfig) != ""
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}

	// Flags override the file and the environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "scale":
			cfg.Scale = *scale
		case "frames":
			cfg.Frames = *frames
		case "win-score":
			cfg.WinScore = *winScore
		case "walls":
			cfg.Scoring = !*walls
		case "record":
			cfg.Record = *record
		case "ffmpeg":
			cfg.FfmpegPath = *ffmpegPath
		case "screenshot-dir":
			cfg.ScreenshotDir = *shotDir
		case "trace":
			cfg.Trace = *trace
		case "debug":
			cfg.Debug = *debug
		}
	})
	return cfg, cfg.Validate()
}

func run() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	if cfg.Trace {
		util.EnableTrace()
	}
	engine.Debug = cfg.Debug

	if filename := os.Getenv("AQPONG_CPUPROFILE"); filename != "" {
		file, err := os.Create(filename)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := pprof.StartCPUProfile(file); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	open, err := openerFor(&cfg)
	if err != nil {
		return err
	}
	aqpong, err := NewAQPong(cfg, open)
	if err != nil {
		return err
	}
	runErr := aqpong.Run()
	closeErr := aqpong.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}
	aqpong.Summary(os.Stdout, language.English)
	return nil
}

func main() {
	err := run()
	if err != nil {
		log.Fatal(err)
	}
}
