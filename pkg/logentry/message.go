// Package logentry defines the immutable Message record and the
// hash-chain primitives that bind each message to its signing identity,
// its content, and every message before it.
package logentry

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/Krakalus/ledger/pkg/canonicalize"
)

// DomainPrefix is prepended to the canonical signable view before
// hashing and signing, so a signature produced here can never be
// replayed against any other protocol that signs raw canonical JSON.
const DomainPrefix = "attested-logs/v1\n"

// ZeroHash is the prev_hash of the first message (seq 0) in any
// session: 64 hex characters of zero, standing in for "no predecessor."
var ZeroHash = strings.Repeat("0", 64)

// SchemeEd25519V1 is the only key scheme this version understands. It
// rides alongside PublicKey so the wire format can add schemes later
// without breaking logs signed under this one.
const SchemeEd25519V1 = "ed25519-v1"

// Message is an immutable, signed record in an attested log. Every
// field is part of the public wire format (§6.3); only Signature is
// excluded from the signable view that gets hashed and signed.
type Message struct {
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Timestamp string `json:"timestamp"`
	Role      string `json:"role"`
	AgentID   string `json:"agent_id"`
	Content   string `json:"content"`
	PrevHash  string `json:"prev_hash"`
	Scheme    string `json:"scheme"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// signable returns m's signed fields as the flat sum-type record
// canonicalize.EncodeRecord needs — every field here is a string
// except seq, so the signing path never touches JCS's general
// interface{} tree-walk (reserved for arbitrary structs/maps
// elsewhere). Signature is deliberately absent: it is what gets
// produced over these bytes, not part of them.
func (m Message) signable() []canonicalize.Field {
	return []canonicalize.Field{
		{Key: "session_id", Value: canonicalize.StringValue(m.SessionID)},
		{Key: "seq", Value: canonicalize.IntValue(m.Seq)},
		{Key: "timestamp", Value: canonicalize.StringValue(m.Timestamp)},
		{Key: "role", Value: canonicalize.StringValue(m.Role)},
		{Key: "agent_id", Value: canonicalize.StringValue(m.AgentID)},
		{Key: "content", Value: canonicalize.StringValue(m.Content)},
		{Key: "prev_hash", Value: canonicalize.StringValue(m.PrevHash)},
		{Key: "scheme", Value: canonicalize.StringValue(m.Scheme)},
		{Key: "public_key", Value: canonicalize.StringValue(m.PublicKey)},
	}
}

// SignedBytes returns the domain-separated canonical bytes that are
// both signed by the originating agent and hashed to form the chain
// digest — signed-bytes and chain-linking bytes are the same string,
// so they can never disagree.
func SignedBytes(m Message) ([]byte, error) {
	canon, err := canonicalize.EncodeRecord(m.signable())
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(DomainPrefix)+len(canon))
	out = append(out, DomainPrefix...)
	out = append(out, canon...)
	return out, nil
}

// Digest returns the lowercase hex SHA-256 digest of m's signed bytes —
// the value the next message in the chain embeds as prev_hash.
func Digest(m Message) (string, error) {
	signed, err := SignedBytes(m)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(signed)
	return hex.EncodeToString(sum[:]), nil
}

// ExpectedPrevHash returns the prev_hash a message at the given index
// must carry: the zero hash at index 0, otherwise the digest of prev.
func ExpectedPrevHash(index int, prev *Message) (string, error) {
	if index == 0 {
		return ZeroHash, nil
	}
	if prev == nil {
		return "", nil
	}
	return Digest(*prev)
}
