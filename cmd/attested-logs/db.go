package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Krakalus/ledger/internal/config"
	"github.com/Krakalus/ledger/pkg/store"
	"github.com/Krakalus/ledger/pkg/store/memory"
	"github.com/Krakalus/ledger/pkg/store/sqlite"
)

// loadConfig scans args for --config before any flag.FlagSet exists,
// since a flag's default must be known at registration time, before
// Parse runs. When present, the named YAML file's settings overlay the
// environment-derived defaults (internal/config.LoadFile); otherwise
// the subcommand falls back to internal/config.Load.
func loadConfig(args []string) *config.Config {
	if path := configFlagValue(args); path != "" {
		if cfg, err := config.LoadFile(path); err == nil {
			return cfg
		}
	}
	return config.Load()
}

func configFlagValue(args []string) string {
	for i, a := range args {
		switch {
		case a == "--config" || a == "-config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		case strings.HasPrefix(a, "-config="):
			return strings.TrimPrefix(a, "-config=")
		}
	}
	return ""
}

// dbFlag registers the shared --db and --config flags on cmd. --db
// defaults to cfg.DBPath (already resolved by loadConfig from any
// --config file, falling back to the environment); --config is
// registered here too so cmd.Parse doesn't reject it as unknown, even
// though its value was already consumed by loadConfig before cmd was
// built.
func dbFlag(cmd *flag.FlagSet, cfg *config.Config) *string {
	cmd.String("config", "", "Path to an optional YAML config file overlaying ATTESTED_LOGS_* env vars")
	return cmd.String("db", cfg.DBPath, "Path to the sqlite database (or :memory: for a throwaway store)")
}

// openStore opens the store.Store backing path. ":memory:" and ""
// both open an in-process memory.Store, useful for demos and tests
// that don't want a file left behind; anything else opens (creating
// if necessary) a sqlite file.
func openStore(path string) (store.Store, func() error, error) {
	if path == "" || path == ":memory:" {
		return memory.New(), func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	s, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
