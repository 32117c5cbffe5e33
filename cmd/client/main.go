package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/palemoky/waterdeep-conspiracy/internal/client"
	"github.com/palemoky/waterdeep-conspiracy/internal/logger"
	"github.com/palemoky/waterdeep-conspiracy/internal/ui/model"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var serverURL string

	flagSet := pflag.NewFlagSet("conspiracy", pflag.ContinueOnError)
	flagSet.StringVarP(&serverURL, "server", "s", "ws://localhost:3001/ws", "websocket URL of the game server")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	if err := logger.InitFile(".waterdeep-conspiracy"); err != nil {
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
		log.Logger = zerolog.Nop()
	}
	defer logger.Close()

	c := client.NewClient(serverURL)
	defer c.Close()

	log.Info().Str("server", serverURL).Msg("client starting")
	p := tea.NewProgram(model.NewOnlineModel(c), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
