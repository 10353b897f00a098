package main

import (
	"context"
	"flag"
	"fmt"
	"io"
)

func runSessionsCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("sessions", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	cfg := loadConfig(args)
	dbPath := dbFlag(cmd, cfg)

	if err := cmd.Parse(args); err != nil {
		return exitUsageError
	}

	st, closeStore, err := openStore(*dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "attested-logs: open store: %v\n", err)
		return exitIOError
	}
	defer closeStore()

	ids, err := st.ListSessions(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "attested-logs: list sessions: %v\n", err)
		return exitIOError
	}

	for _, id := range ids {
		label, err := st.GetLabel(context.Background(), id)
		if err != nil {
			fmt.Fprintf(stderr, "attested-logs: get label: %v\n", err)
			return exitIOError
		}
		if label == "" {
			fmt.Fprintln(stdout, id)
		} else {
			fmt.Fprintf(stdout, "%s\t%s\n", id, label)
		}
	}
	return exitOK
}
