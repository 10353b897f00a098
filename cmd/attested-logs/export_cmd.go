package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
)

// runExportCmd implements `attested-logs export`: dumps a session's
// chain as JSONL (§6.3), one message object per line, to --output.
func runExportCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("export", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	cfg := loadConfig(args)
	dbPath := dbFlag(cmd, cfg)
	output := cmd.String("output", "", "Output file for the JSONL export (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return exitUsageError
	}
	if cmd.NArg() < 1 {
		fmt.Fprintln(stderr, "attested-logs: export requires a session_id argument")
		return exitUsageError
	}
	sessionID := cmd.Arg(0)
	if err := cmd.Parse(cmd.Args()[1:]); err != nil {
		return exitUsageError
	}
	if *output == "" {
		fmt.Fprintln(stderr, "attested-logs: export requires --output <file>")
		return exitUsageError
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

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(stderr, "attested-logs: create %s: %v\n", *output, err)
		return exitIOError
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, m := range chain {
		if err := enc.Encode(m); err != nil {
			fmt.Fprintf(stderr, "attested-logs: write message: %v\n", err)
			return exitIOError
		}
	}

	fmt.Fprintf(stdout, "exported %d messages to %s\n", len(chain), *output)
	return exitOK
}
