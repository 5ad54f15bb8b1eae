// pokertable-client is a terminal client for the pokertable server. It
// attaches to one table as a seated player or a spectator and renders
// the table's view stream.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

var CLI struct {
	Addr    string `short:"a" default:"localhost:8080" help:"Server address (host:port)"`
	Table   string `short:"t" help:"Table ID to join (defaults to the first table listed)"`
	Player  string `short:"p" help:"Player ID to act as"`
	Watch   bool   `short:"w" help:"Spectate instead of taking a seat"`
	LogFile string `help:"Debug log file"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pokertable-client"),
		kong.Description("Terminal client for the pokertable server"),
		kong.UsageOnError(),
	)

	// The TUI owns stdout; logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if CLI.LogFile != "" {
		f, err := os.OpenFile(CLI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Printf("Failed to open log file: %v\n", err)
			ctx.Exit(1)
		}
		defer func() { _ = f.Close() }()
		logOut = f
	}
	logger := log.New(logOut)
	logger.SetLevel(log.DebugLevel)

	lipgloss.SetColorProfile(termenv.ColorProfile())

	playerID := CLI.Player
	if CLI.Watch {
		playerID = ""
	}

	client, err := Dial(CLI.Addr, logger)
	if err != nil {
		fmt.Printf("Failed to connect to %s: %v\n", CLI.Addr, err)
		ctx.Exit(1)
	}
	defer client.Close()

	model := newModel(client, CLI.Table, playerID)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go client.ReadLoop(program.Send)

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running client: %v\n", err)
		ctx.Exit(1)
	}
}
