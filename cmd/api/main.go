// Package main is the entrypoint for the socialvote API server.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newApp builds the CLI. Running it without a command serves the API.
func newApp() *cli.App {
	return &cli.App{
		Name:    "socialvote",
		Usage:   "posts, votes and token auth over HTTP",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before configuration; missing files are ignored",
				Value: ".env",
			},
		},
		Before: loadEnvFile,
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			genSecretCommand(),
		},
		DefaultCommand: "serve",
	}
}

// loadEnvFile reads the dotenv file without overriding variables that are
// already set in the process environment.
func loadEnvFile(c *cli.Context) error {
	path := c.String("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func newLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL drops the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	q := parsed.Query()
	if q.Has("password") {
		q.Set("password", "redacted")
		parsed.RawQuery = q.Encode()
	}

	return parsed.String()
}

// sanitizeError renders err with every secret replaced by its redacted form.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
