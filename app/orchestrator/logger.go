package orchestrator

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
	"github.com/wolfsbane9513/influencer-ai/config"
)

// newOrchestratorLogger configures a logger that writes to both stdout and a
// rotated file. Falls back to stdout only when the log directory cannot be
// created.
func newOrchestratorLogger(cfg *config.LoggingConfig) *log.Logger {
	logPath := cfg.OrchestratorLogPath
	if logPath == "" {
		logPath = filepath.Join("data", "orchestrator.log")
	}

	var w io.Writer = os.Stdout
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
		rotated := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		w = io.MultiWriter(os.Stdout, rotated)
	}

	// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
	return log.New(w, "orchestrator ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}
