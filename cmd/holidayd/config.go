package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"slices"
	"strings"
)

type config struct {
	addr     string
	origins  []string
	logLevel slog.Level
}

func defaultConfig() config {
	return config{addr: ":8080", logLevel: slog.LevelInfo}
}

// peekOption returns the value following any of flags in args, so that the
// env file can be loaded before the flags are parsed.
func peekOption(args []string, flags []string, defaultOpt string) string {
	n := len(args)
	for i := range n {
		if slices.Contains(flags, args[i]) {
			if i+1 < n {
				return args[i+1]
			}
			break
		}
		for _, f := range flags {
			if v, ok := strings.CutPrefix(args[i], f+"="); ok {
				return v
			}
		}
	}
	return defaultOpt
}

// parseEnvs applies HOLIDAYD_* variables to cfg.
func parseEnvs(cfg *config) error {
	if addr := os.Getenv("HOLIDAYD_ADDR"); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("invalid HOLIDAYD_ADDR environment variable value: %q", addr)
		}
		cfg.addr = addr
	}
	if origins := os.Getenv("HOLIDAYD_ORIGINS"); origins != "" {
		cfg.origins = splitList(origins)
	}
	if level := os.Getenv("HOLIDAYD_LOG_LEVEL"); level != "" {
		if err := cfg.logLevel.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid HOLIDAYD_LOG_LEVEL environment variable value: %q", level)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
