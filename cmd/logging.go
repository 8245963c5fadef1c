package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// setupLogging sends diagnostics to stderr; stdout carries only the dump.
func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: lvl < logrus.DebugLevel,
		FullTimestamp:    true,
	})
	logrus.SetLevel(lvl)
	return nil
}
