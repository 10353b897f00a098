package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Krakalus/ledger/pkg/keys"
)

// keyFile is the on-disk shape written by `attested-logs keygen`: the
// raw seed (so the key can be reloaded with keys.FromSeed) alongside
// the derived public key, for humans wiring up a trust map.
type keyFile struct {
	AgentID   string `json:"agent_id"`
	Seed      string `json:"seed"`
	PublicKey string `json:"public_key"`
}

// runKeygenCmd implements `attested-logs keygen`: a thin wrapper
// around keys.Generate that writes a reusable key file.
func runKeygenCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("keygen", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	agentID := cmd.String("agent-id", "", "Agent ID this key belongs to (REQUIRED)")
	out := cmd.String("out", "", "Output file for the generated key (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return exitUsageError
	}
	if *agentID == "" || *out == "" {
		fmt.Fprintln(stderr, "attested-logs: keygen requires --agent-id and --out")
		return exitUsageError
	}

	kp, err := keys.Generate()
	if err != nil {
		fmt.Fprintf(stderr, "attested-logs: generate key: %v\n", err)
		return exitIOError
	}

	kf := keyFile{
		AgentID:   *agentID,
		Seed:      base64.RawURLEncoding.EncodeToString(kp.Seed()),
		PublicKey: kp.PublicKeyB64URL(),
	}
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "attested-logs: marshal key: %v\n", err)
		return exitIOError
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		fmt.Fprintf(stderr, "attested-logs: write %s: %v\n", *out, err)
		return exitIOError
	}

	fmt.Fprintf(stdout, "agent %s: public key %s written to %s\n", *agentID, kf.PublicKey, *out)
	return exitOK
}
