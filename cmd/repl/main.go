package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	reactruntime "github.com/wippyai/react-runtime"
	"github.com/wippyai/react-runtime/engine"
	"github.com/wippyai/react-runtime/pool"
	"github.com/wippyai/react-runtime/runtime"
)

// fileConfig is the on-disk YAML shape merged under the CLI flags.
type fileConfig struct {
	Engine  string   `yaml:"engine"`
	Guest   string   `yaml:"guest"`
	Reuse   bool     `yaml:"reuse"`
	Scripts []string `yaml:"scripts"`
	Pool    struct {
		Initial int `yaml:"initial"`
		Max     int `yaml:"max"`
	} `yaml:"pool"`
}

func main() {
	var (
		configFile  = flag.String("config", "", "Path to YAML config file")
		engineName  = flag.String("engine", "", "Engine backend: goja or wasm")
		guestFile   = flag.String("guest", "", "Path to wasm guest (engine=wasm)")
		scripts     = flag.String("scripts", "", "Precompiled script paths (comma-separated)")
		scriptFile  = flag.String("script", "", "Script file to execute")
		evalExpr    = flag.String("eval", "", "Expression to evaluate and print")
		reuse       = flag.Bool("reuse", false, "Reuse pooled engines across units of work")
		initial     = flag.Int("initial", pool.DefaultInitial, "Engines created at startup")
		maxEngines  = flag.Int("max", pool.DefaultMax, "Maximum engines alive at once")
		interactive = flag.Bool("i", false, "Interactive REPL with TUI")
	)
	flag.Parse()
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	mergeFlags(cfg, set, *engineName, *guestFile, *scripts, *reuse, *initial, *maxEngines)

	if *interactive && !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
		os.Exit(1)
	}
	if !*interactive && *scriptFile == "" && *evalExpr == "" {
		fmt.Fprintln(os.Stderr, "Usage: repl [-config file.yaml] [-engine goja|wasm] -eval <expr>")
		fmt.Fprintln(os.Stderr, "       repl -script <file.js> [-scripts react.js,app.js]")
		fmt.Fprintln(os.Stderr, "       repl -i  (interactive mode)")
		os.Exit(1)
	}

	p, err := newPool(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	envCfg := runtime.Config{
		ReuseEngines:           cfg.Reuse,
		PrecompiledScriptPaths: cfg.Scripts,
		Cache:                  runtime.NewMemoryCache(),
	}

	if *interactive {
		if err := runInteractive(p, envCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(p, envCfg, *scriptFile, *evalExpr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{Engine: "goja"}
	cfg.Pool.Initial = pool.DefaultInitial
	cfg.Pool.Max = pool.DefaultMax
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// mergeFlags lets explicitly-set CLI flags override the config file.
// set holds the names of flags the user actually passed, so a flag set
// to its default value still wins over the file.
func mergeFlags(cfg *fileConfig, set map[string]bool, engineName, guest, scripts string, reuse bool, initial, max int) {
	if set["engine"] {
		cfg.Engine = engineName
	}
	if set["guest"] {
		cfg.Guest = guest
	}
	if set["scripts"] {
		cfg.Scripts = strings.Split(scripts, ",")
	}
	if set["reuse"] {
		cfg.Reuse = reuse
	}
	if set["initial"] {
		cfg.Pool.Initial = initial
	}
	if set["max"] {
		cfg.Pool.Max = max
	}
}

func newPool(cfg *fileConfig) (*pool.Pool, error) {
	factory, err := newFactory(cfg)
	if err != nil {
		return nil, err
	}
	return pool.New(factory, pool.Options{
		Initial: cfg.Pool.Initial,
		Max:     cfg.Pool.Max,
	})
}

func newFactory(cfg *fileConfig) (reactruntime.EngineFactory, error) {
	switch cfg.Engine {
	case "goja":
		return func() (reactruntime.Engine, error) {
			return engine.NewGoja()
		}, nil

	case "wasm":
		if cfg.Guest == "" {
			return nil, fmt.Errorf("engine=wasm requires -guest or guest: in the config")
		}
		guest, err := os.ReadFile(cfg.Guest)
		if err != nil {
			return nil, fmt.Errorf("read guest: %w", err)
		}
		return func() (reactruntime.Engine, error) {
			return engine.NewWasm(context.Background(), guest)
		}, nil

	default:
		return nil, fmt.Errorf("unknown engine %q (want goja or wasm)", cfg.Engine)
	}
}

func run(p *pool.Pool, envCfg runtime.Config, scriptFile, evalExpr string) error {
	env := runtime.NewEnvironment(p, envCfg)
	defer env.Dispose()

	label, err := env.EngineVersionLabel()
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", runtime.Version(), label)

	if scriptFile != "" {
		code, err := os.ReadFile(scriptFile)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		if err := env.Execute(string(code)); err != nil {
			return err
		}
		fmt.Printf("Executed %s\n", scriptFile)
	}

	if evalExpr != "" {
		v, err := env.Evaluate(evalExpr)
		if err != nil {
			return err
		}
		fmt.Printf("Result: %v\n", v)
	}

	// Replay anything the scripts logged.
	init, err := env.InitScript()
	if err != nil {
		return err
	}
	if init != "" {
		fmt.Printf("\n--- init script ---\n%s", init)
	}

	idle, created := p.Stats()
	fmt.Printf("\nPool: %d idle / %d created\n", idle, created)
	return nil
}
