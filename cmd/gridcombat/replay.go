package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gridcombat/engine/internal/config"
	"github.com/gridcombat/engine/internal/logging"
	"github.com/gridcombat/engine/internal/replay"
	"github.com/gridcombat/engine/internal/replay/memory"
	pgstorage "github.com/gridcombat/engine/internal/replay/postgres"
	sqlitestorage "github.com/gridcombat/engine/internal/replay/sqlite"
	wsstorage "github.com/gridcombat/engine/internal/replay/websocket"
)

// createReplayBackend builds the backend named by replay.type. Unknown
// types fall back to the in-memory JSON exporter.
func createReplayBackend(cfg config.ReplayConfig, logManager *logging.SlogManager) (replay.Backend, error) {
	log := logManager.Logger()

	switch cfg.Type {
	case "postgres":
		backend, err := pgstorage.New(cfg.Postgres, logManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres backend: %w", err)
		}
		log.Info("Postgres replay backend initialized", "host", cfg.Postgres.Host)
		return backend, nil

	case "sqlite":
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpPath:     cfg.SQLite.Path,
			DumpInterval: 60 * time.Second,
		}, logManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		log.Info("SQLite replay backend initialized", "path", cfg.SQLite.Path)
		return backend, nil

	case "websocket":
		wsURL := httpToWS(cfg.Websocket.URL)
		log.Info("WebSocket replay backend initialized", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:    wsURL,
			Secret: cfg.Websocket.Secret,
		}, log), nil

	default:
		log.Info("Memory replay backend initialized", "outputDir", cfg.Memory.OutputDir)
		return memory.New(cfg.Memory), nil
	}
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}

// influxBackupPath is where line-protocol points land when the InfluxDB
// server is unreachable.
func influxBackupPath(logsDir string, sessionStart time.Time) string {
	name := fmt.Sprintf("influx_backup_%s.lp.gz", sessionStart.Format("20060102_150405"))
	return filepath.Join(logsDir, name)
}
