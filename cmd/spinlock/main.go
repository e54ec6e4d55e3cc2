package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/yudhasubki/spinlock/pkg/postgre"
	"gopkg.in/yaml.v3"
)

var (
	errorEmptyPath   = errors.New("configuration path is empty")
	errorEmptyDriver = errors.New("configuration driver is empty")
	shutdown         = make(chan os.Signal, 1)
)

func main() {
	m := &Main{}

	err := m.Run(context.Background(), os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}

type Main struct{}

func (m *Main) Run(ctx context.Context, args []string) error {
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "http":
		return (&Http{}).Run(ctx, args)
	case "migrate":
		return (&Migrate{}).Run(ctx, args)
	case "stress":
		return (&Stress{}).Run(ctx, args)
	default:
		if cmd == "" || cmd == "help" {
			m.Usage()
			return flag.ErrHelp
		}

		return fmt.Errorf("unknown command : %v", cmd)
	}
}

func (m *Main) Usage() {
	fmt.Println(`
spinlock is a tool for measuring a CAS spin lock under contention

Usage:

	spinlock <command> [arguments]

The commands are:

	stress  	running one contention run and report the result
	http    	running the contention harness with http-based api
	migrate 	running migration of the run store
`[1:])
}

type Config struct {
	Driver   string         `yaml:"driver"`
	Http     HttpConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres postgre.Config `yaml:"postgres"`
	Turso    TursoConfig    `yaml:"turso"`
	Stress   StressConfig   `yaml:"stress"`
}

func defaultConfig() Config {
	return Config{
		Http: HttpConfig{
			Port: "8080",
		},
		Stress: StressConfig{
			Strategy:   "spin",
			Workers:    runtime.NumCPU(),
			Increments: 10000,
		},
	}
}

// ReadConfigFile loads filename over the defaults and installs the
// configured slog handler. An empty filename yields the defaults.
func ReadConfigFile(filename string) (_ Config, err error) {
	config := defaultConfig()
	if filename != "" {
		b, err := os.ReadFile(filename)
		if err != nil {
			return config, err
		}

		err = yaml.Unmarshal(b, &config)
		if err != nil {
			return config, err
		}
	}

	if config.Http.Port == "" {
		config.Http.Port = "8080"
	}

	if config.Stress.Workers <= 0 {
		config.Stress.Workers = runtime.NumCPU()
	}

	if config.Stress.Increments <= 0 {
		config.Stress.Increments = 10000
	}

	setLogger(config.Logging)

	return config, nil
}

func setLogger(config LoggingConfig) {
	logOutput := os.Stdout
	if config.Stderr {
		logOutput = os.Stderr
	}

	logOpts := slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch strings.ToUpper(config.Level) {
	case "DEBUG":
		logOpts.Level = slog.LevelDebug
	case "WARN", "WARNING":
		logOpts.Level = slog.LevelWarn
	case "ERROR":
		logOpts.Level = slog.LevelError
	}

	var logHandler slog.Handler
	switch config.Type {
	case "json":
		logHandler = slog.NewJSONHandler(logOutput, &logOpts)
	default:
		logHandler = slog.NewTextHandler(logOutput, &logOpts)
	}

	slog.SetDefault(slog.New(logHandler))
}

type HttpConfig struct {
	Port string `yaml:"port"`
}

func register(fs *flag.FlagSet) *string {
	return fs.String("config", "", "config path")
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Type   string `yaml:"type"`
	Stderr bool   `yaml:"stderr"`
}

type SQLiteConfig struct {
	DatabaseName string `yaml:"db_name"`
	BusyTimeout  int    `yaml:"busy_timeout"`
}

type TursoConfig struct {
	URL string `yaml:"url"`
}

type StressConfig struct {
	Strategy   string `yaml:"strategy"`
	Workers    int    `yaml:"workers"`
	Increments int    `yaml:"increments"`
}
