// ABOUTME: Entry point for the msgboard server
// ABOUTME: Anonymous message board with capability-token edit/delete

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/msgboard/internal/api"
	"github.com/2389/msgboard/internal/board"
	"github.com/2389/msgboard/internal/config"
	"github.com/2389/msgboard/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                      _                         _
 _ __ ___  ___  __ _| |__   ___   __ _ _ __ __| |
| '_ ' _ \/ __|/ _' | '_ \ / _ \ / _' | '__/ _' |
| | | | | \__ \ (_| | |_) | (_) | (_| | | | (_| |
|_| |_| |_|___/\__, |_.__/ \___/ \__,_|_|  \__,_|
               |___/
`

// getConfigPath returns the path to the msgboard config file.
// Priority: MSGBOARD_CONFIG env var > XDG_CONFIG_HOME/msgboard/config.yaml > ~/.config/msgboard/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("MSGBOARD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "msgboard.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "msgboard", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: msgboard <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the message board server")
		fmt.Println("  init     Create a starter config file")
		fmt.Println("  health   Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration; fall back to defaults when no config file exists
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Println()

	logger.Info("starting msgboard",
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
	)

	// Open the store; it is the only shared mutable resource and is released
	// on shutdown
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	svc := board.New(st)
	server := api.New(svc, cfg.Server.HTTPAddr)

	return server.Run(ctx)
}

// loadConfig loads the config file, or returns defaults if it doesn't exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

const starterConfig = `server:
  http_addr: ":3000"

database:
  path: data/messages.db

logging:
  level: info
  format: text
`

func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := loadConfig(getConfigPath())
	if err != nil {
		return err
	}

	addr := cfg.Server.HTTPAddr
	if addr[0] == ':' {
		addr = "localhost" + addr
	}

	url := fmt.Sprintf("http://%s/health", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
