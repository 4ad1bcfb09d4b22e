package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"tasknotes/internal/client"
	"tasknotes/internal/tui"
)

func main() {
	_ = godotenv.Load()

	serverURL := os.Getenv("TM_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8180"
	}

	api, err := client.New(serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client setup failed: %v\n", err)
		os.Exit(1)
	}

	program := tea.NewProgram(tui.NewApp(api), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tasknotes: %v\n", err)
		os.Exit(1)
	}
}
