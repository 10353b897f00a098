package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Krakalus/ledger/internal/obslog"
	"github.com/Krakalus/ledger/pkg/verify"
)

// runVerifyCmd implements `attested-logs verify`: loads a session's
// chain, runs the offline total-verification pass, and prints a
// summary (or the full JSON report with --json). Exit code follows
// §6.4: 0 on valid, 1 on any reported finding, 2/3 on usage/IO error.
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	cfg := loadConfig(args)
	dbPath := dbFlag(cmd, cfg)
	keysPath := cmd.String("keys", "", "Path to a JSON trust map: agent_id -> base64url Ed25519 public key (REQUIRED)")
	jsonOutput := cmd.Bool("json", false, "Print the full verification report as JSON")

	if err := cmd.Parse(args); err != nil {
		return exitUsageError
	}
	if cmd.NArg() < 1 {
		fmt.Fprintln(stderr, "attested-logs: verify requires a session_id argument")
		return exitUsageError
	}
	sessionID := cmd.Arg(0)
	if err := cmd.Parse(cmd.Args()[1:]); err != nil {
		return exitUsageError
	}
	if *keysPath == "" {
		fmt.Fprintln(stderr, "attested-logs: verify requires --keys <trustmap.json>")
		return exitUsageError
	}

	trusted, err := loadTrustMap(*keysPath)
	if err != nil {
		fmt.Fprintf(stderr, "attested-logs: load trust map: %v\n", err)
		return exitIOError
	}

	st, closeStore, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "attested-logs: open store: %v\n", err)
		return exitIOError
	}
	defer closeStore()

	chain, err := st.GetChain(context.Background(), sessionID)
	if err != nil {
		fmt.Fprintf(stderr, "attested-logs: get chain: %v\n", err)
		return exitIOError
	}

	start := time.Now()
	report := verify.Chain(chain, trusted)
	obslog.VerifyDuration.Observe(time.Since(start).Seconds())
	outcome := "pass"
	if !report.Valid {
		outcome = "fail"
	}
	obslog.ChainsVerified.WithLabelValues(outcome).Inc()

	if *jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(stderr, "attested-logs: encode report: %v\n", err)
			return exitIOError
		}
	} else {
		fmt.Fprintln(stdout, report.Summary)
		for _, f := range report.Findings {
			fmt.Fprintln(stdout, "  "+f.String())
		}
	}

	if !report.Valid {
		return exitVerifyFail
	}
	return exitOK
}

// loadTrustMap reads a JSON object of agent_id -> base64url Ed25519
// public key into a verify.TrustedKeyMap.
func loadTrustMap(path string) (verify.TrustedKeyMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse trust map: %w", err)
	}

	trusted := make(verify.TrustedKeyMap, len(raw))
	for agentID, encoded := range raw {
		keyBytes, err := base64.RawURLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("agent %q: decode public key: %w", agentID, err)
		}
		trusted[agentID] = keyBytes
	}
	return trusted, nil
}
