//go:build property
// +build property

package session

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Krakalus/ledger/internal/clock"
	"github.com/Krakalus/ledger/pkg/keys"
	"github.com/Krakalus/ledger/pkg/logentry"
	"github.com/Krakalus/ledger/pkg/verify"
)

func genKeyPair() keys.KeyPair {
	kp, err := keys.Generate()
	if err != nil {
		panic(err)
	}
	return kp
}

func fixedInstant() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-01-01T00:00:00Z")
	return t
}

// TestValidAppendsAlwaysVerify is P1: any sequence of valid appends to
// a fresh Session verifies under a TrustedKeyMap built from exactly
// the agent keys used.
func TestValidAppendsAlwaysVerify(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("valid append sequences always verify", prop.ForAll(
		func(contents []string) bool {
			if len(contents) == 0 {
				return true
			}

			kpA := genKeyPair()
			kpB := genKeyPair()
			sess := NewWithClock("prop-sess", nil, clock.NewFixed(fixedInstant()))

			var chain []logentry.Message
			for i, content := range contents {
				kp, agentID := kpA, "agent:a"
				if i%2 == 1 {
					kp, agentID = kpB, "agent:b"
				}
				role := "user"
				if i%2 == 1 {
					role = "assistant"
				}
				m, err := sess.Append(context.Background(), content, role, kp, agentID)
				if err != nil {
					return false
				}
				chain = append(chain, m)
			}

			trusted := verify.TrustedKeyMap{
				"agent:a": kpA.PublicKeyBytes(),
				"agent:b": kpB.PublicKeyBytes(),
			}
			report := verify.Chain(chain, trusted)
			return report.Valid
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestTamperAlwaysInvalidatesSignatureAndNextPrevHash is P2.
func TestTamperAlwaysInvalidatesSignatureAndNextPrevHash(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("tampering a message invalidates its signature and successor's prev_hash", prop.ForAll(
		func(a, b, tamperedContent string) bool {
			kp := genKeyPair()
			sess := NewWithClock("prop-tamper", nil, clock.NewFixed(fixedInstant()))

			m0, err := sess.Append(context.Background(), a, "user", kp, "agent:a")
			if err != nil {
				return false
			}
			m1, err := sess.Append(context.Background(), b, "user", kp, "agent:a")
			if err != nil {
				return false
			}

			tampered := m0
			tampered.Content = tamperedContent + "!"
			if tampered.Content == m0.Content {
				return true
			}

			signedBytes, err := logentry.SignedBytes(tampered)
			if err != nil {
				return false
			}
			stillValid, err := keys.Verify(tampered.PublicKey, tampered.Signature, signedBytes)
			if err != nil {
				return false
			}
			if stillValid {
				return false
			}

			expected, err := logentry.ExpectedPrevHash(1, &tampered)
			if err != nil {
				return false
			}
			return expected != m1.PrevHash
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestSwappingAdjacentMessagesInvalidatesChain is P3.
func TestSwappingAdjacentMessagesInvalidatesChain(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("swapping adjacent messages invalidates the chain", prop.ForAll(
		func(a, b string) bool {
			kp := genKeyPair()
			sess := NewWithClock("prop-swap", nil, clock.NewFixed(fixedInstant()))

			m0, err := sess.Append(context.Background(), a, "user", kp, "agent:a")
			if err != nil {
				return false
			}
			m1, err := sess.Append(context.Background(), b, "user", kp, "agent:a")
			if err != nil {
				return false
			}

			trusted := verify.TrustedKeyMap{"agent:a": kp.PublicKeyBytes()}
			report := verify.Chain([]logentry.Message{m1, m0}, trusted)
			return !report.Valid
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
