package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

const logFileName = "ssostat.log"

// InitLogger builds the arbor logger described by cfg.Logging. File output
// goes to <state dir>/ssostat.log.
func InitLogger(cfg Config) arbor.ILogger {
	logger := arbor.NewLogger()

	hasFileOutput := false
	hasConsoleOutput := false
	for _, output := range cfg.Logging.Output {
		switch output {
		case "file":
			hasFileOutput = true
		case "stdout", "console":
			hasConsoleOutput = true
		}
	}

	if hasFileOutput {
		if err := os.MkdirAll(cfg.StateDir, 0700); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create state directory: %v\n", err)
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:             models.LogWriterTypeFile,
				FileName:         LogFilePath(cfg),
				TimeFormat:       "15:04:05",
				MaxSize:          10 * 1024 * 1024,
				MaxBackups:       3,
				DisableTimestamp: false,
			})
		}
	}

	if hasConsoleOutput {
		logger = logger.WithConsoleWriter(models.WriterConfiguration{
			Type:             models.LogWriterTypeConsole,
			TimeFormat:       "15:04:05",
			DisableTimestamp: false,
		})
	}

	return logger.WithLevelFromString(cfg.Logging.Level)
}

func LogFilePath(cfg Config) string {
	return filepath.Join(cfg.StateDir, logFileName)
}
