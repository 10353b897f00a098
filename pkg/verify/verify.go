// Package verify implements the offline, whole-chain integrity and
// authenticity check (§4.5). It is intentionally dependency-light: it
// touches only pkg/logentry and pkg/keys, never the Store, so a report
// it produces can be trusted by a third party re-running this package
// alone against an exported JSONL bundle.
package verify

import (
	"fmt"

	"github.com/Krakalus/ledger/pkg/keys"
	"github.com/Krakalus/ledger/pkg/logentry"
)

// Kind enumerates the failure taxonomy of §4.5/§7.
type Kind string

const (
	KindSchemaError      Kind = "SchemaError"
	KindChainBreak       Kind = "ChainBreak"
	KindUnknownAgent     Kind = "UnknownAgent"
	KindKeyMismatch      Kind = "KeyMismatch"
	KindSignatureInvalid Kind = "SignatureInvalid"
)

// Finding is one reported failure, always carrying the offending index.
type Finding struct {
	Index  int    `json:"index"`
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s@%d: %s", f.Kind, f.Index, f.Detail)
}

// Report is the structured output of verifying a chain. Verification is
// total: every message is inspected and every failure is collected —
// it never stops at the first bad message.
type Report struct {
	Valid    bool      `json:"valid"`
	Summary  string    `json:"summary"`
	Findings []Finding `json:"findings"`
}

// TrustedKeyMap binds each agent_id to the public key considered
// authoritative for that agent. An agent_id with no entry fails
// verification for any message that claims it — there is no default.
type TrustedKeyMap map[string][]byte

// Chain verifies an ordered sequence of messages against a trusted key
// map. An empty chain is valid vacuously (P8).
func Chain(messages []logentry.Message, trusted TrustedKeyMap) Report {
	var findings []Finding

	if len(messages) == 0 {
		return Report{Valid: true, Summary: "PASS: empty chain"}
	}

	sessionID := messages[0].SessionID

	for i, m := range messages {
		// 1. Schema checks.
		if ok, detail := schemaOK(m, i, sessionID); !ok {
			findings = append(findings, Finding{Index: i, Kind: KindSchemaError, Detail: detail})
			continue
		}

		// 2. Chain linkage.
		var prev *logentry.Message
		if i > 0 {
			prev = &messages[i-1]
		}
		expected, err := logentry.ExpectedPrevHash(i, prev)
		if err != nil {
			findings = append(findings, Finding{Index: i, Kind: KindSchemaError, Detail: "failed to compute expected prev_hash: " + err.Error()})
			continue
		}
		if m.PrevHash != expected {
			findings = append(findings, Finding{
				Index:  i,
				Kind:   KindChainBreak,
				Detail: fmt.Sprintf("expected prev_hash %s, got %s", expected, m.PrevHash),
			})
		}

		// 3. Trust-map binding.
		trustedKey, known := trusted[m.AgentID]
		if !known {
			findings = append(findings, Finding{Index: i, Kind: KindUnknownAgent, Detail: fmt.Sprintf("agent %q not in trusted key map", m.AgentID)})
			continue
		}
		embedded, err := keys.DecodePublicKey(m.PublicKey)
		if err != nil {
			findings = append(findings, Finding{Index: i, Kind: KindSchemaError, Detail: "malformed public_key: " + err.Error()})
			continue
		}
		if !bytesEqual(trustedKey, embedded) {
			findings = append(findings, Finding{Index: i, Kind: KindKeyMismatch, Detail: fmt.Sprintf("agent %q: embedded public_key does not match trusted key", m.AgentID)})
			continue
		}

		// 4. Signature.
		signedBytes, err := logentry.SignedBytes(m)
		if err != nil {
			findings = append(findings, Finding{Index: i, Kind: KindSchemaError, Detail: "canonicalization failed: " + err.Error()})
			continue
		}
		ok, err := keys.Verify(m.PublicKey, m.Signature, signedBytes)
		if err != nil || !ok {
			findings = append(findings, Finding{Index: i, Kind: KindSignatureInvalid, Detail: "signature does not verify under embedded public_key"})
		}
	}

	if len(findings) == 0 {
		return Report{Valid: true, Summary: fmt.Sprintf("PASS: %d messages verified", len(messages))}
	}
	badMessages := make(map[int]bool, len(findings))
	for _, f := range findings {
		badMessages[f.Index] = true
	}
	return Report{
		Valid:    false,
		Summary:  fmt.Sprintf("FAIL: %d/%d messages have findings", len(badMessages), len(messages)),
		Findings: findings,
	}
}

func schemaOK(m logentry.Message, index int, sessionID string) (bool, string) {
	if m.SessionID == "" {
		return false, "empty session_id"
	}
	if m.SessionID != sessionID {
		return false, fmt.Sprintf("session_id %q does not match chain's session_id %q", m.SessionID, sessionID)
	}
	if m.Seq != int64(index) {
		return false, fmt.Sprintf("seq %d does not match index %d", m.Seq, index)
	}
	if len(m.PrevHash) != 64 {
		return false, fmt.Sprintf("prev_hash must be 64 hex characters, got %d", len(m.PrevHash))
	}
	if m.Scheme != logentry.SchemeEd25519V1 {
		return false, fmt.Sprintf("unsupported scheme %q", m.Scheme)
	}
	if m.AgentID == "" {
		return false, "empty agent_id"
	}
	if m.PublicKey == "" {
		return false, "empty public_key"
	}
	if m.Signature == "" {
		return false, "empty signature"
	}
	return true, ""
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
