package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"github.com/kostore/kostore/logger"
)

func main() {
	rl, err := initLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logging:", err)
		os.Exit(1)
	}

	// Set up signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	printWelcomeMessage()

	config, err := getConfig(rl.Base())
	if err != nil {
		rl.Error("Error getting config", "error", err)
		return
	}

	app := newApp(rl, config)

	// Main menu loop
	for {
		select {
		case <-signalChan:
			fmt.Println("\nReceived interrupt signal. Exiting KOReader Store...")
			return
		default:
			if app.handleMainMenu() {
				return // Exit the program if user chose to quit
			}
		}
	}
}

func initLogger() (*logger.RateLimitedLogger, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	rl, err := logger.NewRateLimitedLogger(filepath.Join(homeDir, configDirName, "logs"))
	if err != nil {
		return nil, err
	}
	rl.Base().SetLevel(log.DebugLevel)
	rl.Base().SetReportTimestamp(true)
	return rl, nil
}
