package output

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If BRO_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.config/bro/logs/bro.log
func GetLogFilePath() string {
	if customPath := os.Getenv("BRO_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "bro.log"
	}
	return filepath.Join(homeDir, ".config", "bro", "logs", "bro.log")
}
