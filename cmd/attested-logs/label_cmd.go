package main

import (
	"context"
	"flag"
	"fmt"
	"io"
)

// runLabelCmd implements `attested-logs label <session_id> <text>`: an
// optional free-text display name stored alongside, never inside, the
// chain — it plays no part in verification.
func runLabelCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("label", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	cfg := loadConfig(args)
	dbPath := dbFlag(cmd, cfg)

	if err := cmd.Parse(args); err != nil {
		return exitUsageError
	}
	if cmd.NArg() < 2 {
		fmt.Fprintln(stderr, "attested-logs: label requires a session_id and a text argument")
		return exitUsageError
	}
	sessionID, text := cmd.Arg(0), cmd.Arg(1)
	if err := cmd.Parse(cmd.Args()[2:]); err != nil {
		return exitUsageError
	}

	st, closeStore, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "attested-logs: open store: %v\n", err)
		return exitIOError
	}
	defer closeStore()

	if err := st.SetLabel(context.Background(), sessionID, text); err != nil {
		fmt.Fprintf(stderr, "attested-logs: set label: %v\n", err)
		return exitIOError
	}

	fmt.Fprintf(stdout, "session %s labeled %q\n", sessionID, text)
	return exitOK
}
