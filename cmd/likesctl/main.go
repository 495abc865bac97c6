package main

import (
	"fmt"
	"os"

	"github.com/vytor/likescenter/internal/config"
	"github.com/vytor/likescenter/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.SetDefault(logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(os.Stderr),
		logger.WithFile(cfg.LogFile, 10, 3),
	))

	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
