// Command attested-logs is the reference CLI over a sqlite-backed
// attested log: list sessions, inspect messages, verify a chain, and
// export it as JSONL.
package main

import (
	"fmt"
	"io"
	"os"
)

const (
	exitOK         = 0
	exitVerifyFail = 1
	exitUsageError = 2
	exitIOError    = 3
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the CLI entrypoint, factored out from main so tests can drive
// it with captured output instead of the real os.Stdout/os.Stderr.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return exitUsageError
	}

	switch args[1] {
	case "sessions":
		return runSessionsCmd(args[2:], stdout, stderr)
	case "messages":
		return runMessagesCmd(args[2:], stdout, stderr)
	case "verify":
		return runVerifyCmd(args[2:], stdout, stderr)
	case "export":
		return runExportCmd(args[2:], stdout, stderr)
	case "keygen":
		return runKeygenCmd(args[2:], stdout, stderr)
	case "label":
		return runLabelCmd(args[2:], stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return exitOK
	default:
		_, _ = fmt.Fprintf(stderr, "attested-logs: unknown command %q\n", args[1])
		printUsage(stderr)
		return exitUsageError
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "attested-logs - tamper-evident multi-agent conversation log")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  attested-logs sessions [--db path] [--config file]")
	fmt.Fprintln(w, "  attested-logs label <session_id> <text> [--db path] [--config file]")
	fmt.Fprintln(w, "  attested-logs messages <session_id> [--db path] [--limit N] [--newest-first]")
	fmt.Fprintln(w, "  attested-logs verify <session_id> --keys trustmap.json [--db path] [--json]")
	fmt.Fprintln(w, "  attested-logs export <session_id> --output <file> [--db path]")
	fmt.Fprintln(w, "  attested-logs keygen --agent-id <id> --out <file>")
}
