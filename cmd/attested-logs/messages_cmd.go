package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
)

func runMessagesCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("messages", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	cfg := loadConfig(args)
	dbPath := dbFlag(cmd, cfg)
	limit := cmd.Int("limit", 0, "Maximum number of messages to print (0 = all)")
	newestFirst := cmd.Bool("newest-first", false, "Print messages newest-seq first")

	if err := cmd.Parse(args); err != nil {
		return exitUsageError
	}
	if cmd.NArg() < 1 {
		fmt.Fprintln(stderr, "attested-logs: messages requires a session_id argument")
		return exitUsageError
	}
	sessionID := cmd.Arg(0)
	if err := cmd.Parse(cmd.Args()[1:]); err != nil {
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

	if *newestFirst {
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
	}
	if *limit > 0 && *limit < len(chain) {
		chain = chain[:*limit]
	}

	enc := json.NewEncoder(stdout)
	for _, m := range chain {
		if err := enc.Encode(m); err != nil {
			fmt.Fprintf(stderr, "attested-logs: encode message: %v\n", err)
			return exitIOError
		}
	}
	return exitOK
}
