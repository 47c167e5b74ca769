package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/gridcombat/engine/internal/agent"
	"github.com/gridcombat/engine/internal/api"
	"github.com/gridcombat/engine/internal/config"
	"github.com/gridcombat/engine/internal/dispatcher"
	"github.com/gridcombat/engine/internal/influx"
	"github.com/gridcombat/engine/internal/logging"
	"github.com/gridcombat/engine/internal/monitor"
	"github.com/gridcombat/engine/internal/replay"
	"github.com/gridcombat/engine/internal/runner"
	"github.com/gridcombat/engine/internal/scenario"
	"github.com/gridcombat/engine/internal/sim"
	"github.com/gridcombat/engine/pkg/core"
)

// Version can be set at build time via ldflags.
var Version string = "0.0.1"

func main() {
	var (
		configDir    = flag.String("config", ".", "directory containing gridcombat.cfg.json")
		scenarioName = flag.String("scenario", "duel", "preset name or path to a scenario file")
		episodes     = flag.Int("episodes", 1, "number of episodes to run")
		seed         = flag.Int64("seed", 0, "override the scenario seed (0 keeps the scenario's own)")
		blueAgent    = flag.String("blue", "greedy", "policy for BLUE (random or greedy)")
		redAgent     = flag.String("red", "greedy", "policy for RED (random or greedy)")
		replayOut    = flag.String("out", "", "override the replay output directory")
		logLevel     = flag.String("log-level", "", "override the configured log level")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("gridcombat %s\n", Version)
		return
	}

	if *replayOut != "" {
		config.Set("replay.memory.outputDir", *replayOut)
	}

	if err := run(*configDir, *scenarioName, *episodes, *seed, *blueAgent, *redAgent, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configDir, scenarioName string, episodes int, seed int64, blueAgent, redAgent, logLevel string) error {
	sessionStart := time.Now().UTC()

	// Defaults are registered before the file is read, so a missing
	// config file is not fatal.
	configErr := config.Load(configDir)

	level := logLevel
	if level == "" {
		level = config.GetString("logLevel")
	}
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	logFile, err := os.Create(logging.LogFilePath(logsDir, "gridcombat", sessionStart))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	logManager := logging.NewSlogManager()
	logManager.Setup(logFile, level)

	// Give every log line the in-flight episode and turn.
	var episodeRunner *runner.Runner
	logger := slog.New(logging.NewContextHandler(logManager.Logger().Handler(), func() []slog.Attr {
		if episodeRunner == nil {
			return nil
		}
		return episodeRunner.LogAttrs()
	}))

	if configErr != nil {
		logger.Warn("No config file found, using defaults", "dir", configDir, "error", configErr)
	}

	sc, name, err := loadScenario(scenarioName)
	if err != nil {
		return err
	}
	if seed != 0 {
		sc.Seed = seed
	}

	eventDispatcher, err := dispatcher.New(logging.NewSlogDispatcherLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	eventDispatcher.Subscribe(dispatcher.EventKill, func(e dispatcher.Event) error {
		if shot, ok := e.Payload.(*core.ShotRecord); ok {
			logger.Info("Entity destroyed", "target", shot.TargetID, "shooter", shot.ShooterID)
		}
		return nil
	})

	replayBackend, err := createReplayBackend(config.GetReplayConfig(), logManager)
	if err != nil {
		return err
	}
	if err := replayBackend.Init(); err != nil {
		return fmt.Errorf("failed to initialize replay backend: %w", err)
	}
	defer func() {
		if err := replayBackend.Close(); err != nil {
			logger.Error("Failed to close replay backend", "error", err)
		}
	}()

	var influxManager *influx.Manager
	if config.GetInfluxConfig().Enabled {
		zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
		m := influx.NewManager(zl, influxBackupPath(logsDir, sessionStart))
		if err := m.Connect(); err != nil {
			logger.Warn("InfluxDB unavailable, metrics disabled", "error", err)
		} else {
			influxManager = m
			defer influxManager.Close()

			statusMonitor := monitor.NewService(monitor.Dependencies{
				Influx: influxManager,
				Log:    logger,
			}, time.Second)
			statusMonitor.Start()
			defer statusMonitor.Stop()
		}
	}

	agents, err := buildAgents(blueAgent, redAgent, sc.Seed)
	if err != nil {
		return err
	}

	episodeRunner = runner.New(runner.Dependencies{
		Log:        logger,
		Replay:     replayBackend,
		Dispatcher: eventDispatcher,
		Influx:     influxManager,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting run",
		"scenario", name, "episodes", episodes, "seed", sc.Seed,
		"blue", blueAgent, "red", redAgent, "version", Version)

	summaries, err := episodeRunner.RunBatch(ctx, name, sc, agents, episodes)
	if err != nil {
		return err
	}

	printSummaries(os.Stdout, summaries)
	if exported, ok := replayBackend.(replay.Exported); ok {
		if path := exported.ExportedFilePath(); path != "" {
			fmt.Printf("replay written to %s\n", path)
			uploadReplay(logger, path, summaries[len(summaries)-1])
		}
	}
	return nil
}

// uploadReplay pushes the last exported replay file to the viewer
// server when uploads are configured. Failures are logged, not fatal.
func uploadReplay(logger *slog.Logger, path string, last *runner.EpisodeSummary) {
	cfg := config.GetUploadConfig()
	if !cfg.Enabled {
		return
	}

	client := api.New(cfg.URL, cfg.Secret)
	if err := client.Healthcheck(); err != nil {
		logger.Warn("Replay viewer unreachable, skipping upload", "url", cfg.URL, "error", err)
		return
	}

	meta := core.UploadMetadata{
		EpisodeID: last.EpisodeID,
		Scenario:  last.Scenario,
		Turns:     last.Turns,
		Winner:    string(last.Winner),
		Tag:       cfg.Tag,
	}
	if err := client.Upload(path, meta); err != nil {
		logger.Error("Replay upload failed", "error", err)
		return
	}
	logger.Info("Replay uploaded", "url", cfg.URL, "file", path)
}

// loadScenario resolves the -scenario flag: an existing file path is
// parsed, anything else is looked up as a preset name.
func loadScenario(arg string) (*sim.Scenario, string, error) {
	if _, err := os.Stat(arg); err == nil {
		sc, err := scenario.Load(arg)
		if err != nil {
			return nil, "", err
		}
		return sc, scenarioFileName(arg), nil
	}
	sc, err := scenario.Preset(arg)
	if err != nil {
		return nil, "", err
	}
	return sc, arg, nil
}

func buildAgents(blueName, redName string, seed int64) (map[sim.Team]agent.Agent, error) {
	blue, err := agent.New(blueName, sim.TeamBlue, seed)
	if err != nil {
		return nil, err
	}
	red, err := agent.New(redName, sim.TeamRed, seed+1)
	if err != nil {
		return nil, err
	}
	return map[sim.Team]agent.Agent{
		sim.TeamBlue: blue,
		sim.TeamRed:  red,
	}, nil
}

func printSummaries(out *os.File, summaries []*runner.EpisodeSummary) {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EPISODE\tTURNS\tOUTCOME\tREASON\tDURATION")
	wins := map[sim.Team]int{}
	draws := 0
	for _, s := range summaries {
		outcome := "draw"
		if !s.Draw && s.Winner != "" {
			outcome = string(s.Winner)
			wins[s.Winner]++
		} else {
			draws++
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			s.EpisodeID, s.Turns, outcome, s.Reason, s.Duration.Round(time.Millisecond))
	}
	w.Flush()
	fmt.Printf("episodes=%d blue=%d red=%d draws=%d\n",
		len(summaries), wins[sim.TeamBlue], wins[sim.TeamRed], draws)
}

func scenarioFileName(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	return base
}
