package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/lorascan/internal/adapter"
	"github.com/mmcdole/lorascan/internal/adapter/source"
	"github.com/mmcdole/lorascan/internal/domain"
	"github.com/mmcdole/lorascan/internal/results"
	"github.com/mmcdole/lorascan/internal/scan"
	"github.com/mmcdole/lorascan/internal/store"
	"github.com/mmcdole/lorascan/internal/tui"
	"github.com/mmcdole/lorascan/internal/tui/styles"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

type options struct {
	scanRef     string
	showResults bool
	serverURL   string
	clearCache  bool
}

func main() {
	var showVersion bool
	var opts options
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.scanRef, "scan", "", "scan a model ID or URL and watch it without the TUI")
	flag.BoolVar(&opts.showResults, "results", false, "print scan results and exit")
	flag.StringVar(&opts.serverURL, "url", "", "backend URL for this run")
	flag.BoolVar(&opts.clearCache, "clear-cache", false, "delete local scan history and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("lorascan %s\n", Version)
		return
	}

	if opts.clearCache {
		if err := adapter.ClearCache(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Local history cleared.")
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.serverURL != "" {
		cfg.Server.URL = opts.serverURL
	}

	// Setup logger
	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting lorascan", "version", Version)

	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	// Check if configured
	if !cfg.IsConfigured() {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no backend configured; set server.url or LORASCAN_SERVER_URL")
		}
		if err := runSetupFlow(cfg, logger); err != nil {
			return err
		}
	}

	// Create backend client
	client, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	// Local history is best effort
	var history domain.HistoryStore = domain.NoOpHistory{}
	if cfg.History.Enabled {
		hs, err := store.NewHistoryStore(adapter.GetCachePath(), cfg.Server.URL)
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			history = hs
		}
	}
	defer history.Close()

	// Create services
	scanSvc := scan.NewService(client, client, logger)
	resultsSvc := results.NewService(client, history, cfg.UI.ResultsMode, cfg.History.Limit, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case opts.scanRef != "":
		return runWatch(ctx, os.Stdout, scanSvc, resultsSvc, cfg, opts.scanRef)
	case opts.showResults || !interactive:
		return printResults(ctx, os.Stdout, resultsSvc)
	}

	// Create TUI model
	model := tui.NewModel(scanSvc, resultsSvc, tui.Options{
		SubmitMode:   cfg.UI.SubmitMode,
		PollInterval: cfg.Polling.Interval,
		DismissAfter: cfg.UI.DismissAfter,
	})

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	logger.Info("starting TUI", "server", cfg.Server.URL, "resultsMode", cfg.UI.ResultsMode, "submitMode", cfg.UI.SubmitMode)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow asks for the backend URL until one answers, then saves it
func runSetupFlow(cfg *adapter.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to LoRA Scan!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	var serverURL string

	for {
		fmt.Print("Enter the scraper backend URL (e.g., http://localhost:5000): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		input = strings.TrimSpace(input)

		if input == "" {
			fmt.Println("Backend URL cannot be empty. Please try again.")
			continue
		}

		fmt.Println()
		normalized, err := probeWithSpinner(input, logger)
		if err != nil {
			fmt.Printf("\n✗ %v\n", err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			continue
		}

		serverURL = normalized
		break
	}

	cfg.Server.URL = serverURL
	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}

// probeWithSpinner checks the backend health endpoint with a visual spinner
func probeWithSpinner(serverURL string, logger *slog.Logger) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	type result struct {
		url string
		err error
	}
	resultCh := make(chan result, 1)

	go func() {
		normalized, err := source.Probe(ctx, serverURL, logger)
		resultCh <- result{normalized, err}
	}()

	frame := 0
	fmt.Printf("\r%s Contacting backend...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if res.err != nil {
				return "", res.err
			}
			fmt.Printf("✓ Connected: %s\n", res.url)
			return res.url, nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Contacting backend...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return "", fmt.Errorf("backend did not answer in time")
		}
	}
}
