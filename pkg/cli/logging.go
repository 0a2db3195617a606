package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logLevelEnvKey  = "TRACKERSYNC_LOG_LEVEL"
	defaultLogLevel = "info"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// configureLogger installs the default slog logger. The level comes from
// the flag, then the environment, then the config file. An invalid level
// from the flag is an error; from elsewhere it falls back to the default
// and the returned warning says so. With logFile set, logs go to a
// rotating file instead of stderr; the returned Closer releases it.
func configureLogger(flagLevel, configLevel, logFile string, stderr io.Writer) (io.Closer, string, error) {
	var out io.Writer = stderr
	var closer io.Closer = nopCloser{}
	if strings.TrimSpace(logFile) != "" {
		rotating := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		out, closer = rotating, rotating
	}

	envLevel := os.Getenv(logLevelEnvKey)
	rawLevel, source := selectedLogLevel(flagLevel, envLevel, configLevel)
	level, err := parseLogLevel(rawLevel)
	if err == nil {
		slog.SetDefault(newLogger(out, level))
		return closer, "", nil
	}

	if source == "flag" {
		closer.Close()
		return nil, "", fmt.Errorf("invalid --log-level %q", flagLevel)
	}
	fallback, _ := parseLogLevel("")
	slog.SetDefault(newLogger(out, fallback))
	switch source {
	case "env":
		return closer, fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", logLevelEnvKey, envLevel, defaultLogLevel), nil
	case "config":
		return closer, fmt.Sprintf("warning: invalid log_level=%q; defaulting to %s", configLevel, defaultLogLevel), nil
	default:
		return closer, "", nil
	}
}

func selectedLogLevel(flagLevel, envLevel, configLevel string) (string, string) {
	if strings.TrimSpace(flagLevel) != "" {
		return flagLevel, "flag"
	}
	if strings.TrimSpace(envLevel) != "" {
		return envLevel, "env"
	}
	if strings.TrimSpace(configLevel) != "" {
		return configLevel, "config"
	}
	return "", "default"
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = defaultLogLevel
	}
	if strings.EqualFold(value, "warning") {
		value = "warn"
	}

	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
