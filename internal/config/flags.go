package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/lipgloss"
	"github.com/stigoleg/emote-idler/internal/settings"
	"github.com/stigoleg/emote-idler/internal/ui"
)

// Config holds startup options. Environment variables provide defaults
// that command-line flags override.
type Config struct {
	DataDir     string        `env:"IDLER_DATA_DIR"`
	Sheet       string        `env:"IDLER_SHEET"`
	Frame       time.Duration `env:"IDLER_FRAME" envDefault:"100ms"`
	Theme       string        `env:"IDLER_THEME" envDefault:"default"`
	LogFile     string        `env:"IDLER_LOG" envDefault:"idler.log"`
	ShowVersion bool
}

// SettingsPath returns the settings file location.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, settings.FileName)
}

// LogPath returns the log file location. Relative names live in DataDir.
func (c *Config) LogPath() string {
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, c.LogFile)
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "emote-idler")
}

func formatError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "\n\n") {
		parts := strings.SplitN(msg, "\n\n", 2)
		errorBox := ui.Current.Help.
			BorderForeground(lipgloss.Color("#FF4040"))

		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF4040")).
			Render(parts[0])

		details := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Render(parts[1])

		return errorBox.Render(fmt.Sprintf("%s\n\n%s", header, details))
	}
	return ui.Current.Error.Render(msg)
}

// Parse reads the environment and then args. It returns flag.ErrHelp when
// help was requested.
func Parse(args []string, output io.Writer) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}

	flags := flag.NewFlagSet("idler", flag.ContinueOnError)
	flags.SetOutput(output)
	flags.Usage = func() {
		fmt.Fprint(output, ui.HelpText())
	}

	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for settings and logs")
	flags.StringVar(&cfg.Sheet, "sheet", cfg.Sheet, "Emote sheet (.json or .db); empty uses the built-in sheet")
	flags.DurationVar(&cfg.Frame, "frame", cfg.Frame, "Frame interval for idle checks")
	flags.StringVar(&cfg.Theme, "theme", cfg.Theme, "Colour theme (default, contrast)")
	flags.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Log file name or path")
	flags.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flags.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Frame <= 0 {
		return nil, fmt.Errorf("Invalid frame interval: %s\n\nThe frame interval must be positive, e.g. 50ms or 100ms", cfg.Frame)
	}
	if _, ok := ui.Themes[cfg.Theme]; !ok {
		return nil, fmt.Errorf("Unknown theme: %q\n\nAvailable themes: %s", cfg.Theme, strings.Join(ui.ThemeNames(), ", "))
	}
	return cfg, nil
}

// ParseFlags parses os.Args. Help, version and invalid input print and exit.
func ParseFlags(version string) *Config {
	cfg, err := Parse(os.Args[1:], os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Println(formatError(err))
		os.Exit(1)
	}
	if cfg.ShowVersion {
		fmt.Printf("Emote Idler Version: %s\n", version)
		os.Exit(0)
	}
	return cfg
}
