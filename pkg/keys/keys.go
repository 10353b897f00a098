// Package keys provides Ed25519 key generation, signing, and base64url
// encoding for attested-log identities.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// PublicKeySize is the byte length of an Ed25519 public key.
const PublicKeySize = ed25519.PublicKeySize

// SignatureSize is the byte length of an Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// KeyPair holds an Ed25519 identity. Private key material never leaves
// the package's exported API except through Seed, used only for
// persisting demo/test identities.
type KeyPair struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// Generate produces a new Ed25519 keypair from crypto/rand.
func Generate() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("keys: generate failed: %w", err)
	}
	return KeyPair{public: pub, private: priv}, nil
}

// FromSeed reconstructs a KeyPair from a 32-byte Ed25519 seed — the
// inverse of Seed, whose output the CLI's keygen command writes. Also
// used by tests that need fixed identities.
func FromSeed(seed []byte) (KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return KeyPair{}, fmt.Errorf("keys: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return KeyPair{public: priv.Public().(ed25519.PublicKey), private: priv}, nil
}

// Seed returns the 32-byte seed backing this keypair.
func (k KeyPair) Seed() []byte {
	return append([]byte(nil), k.private.Seed()...)
}

// PublicKeyBytes returns the raw 32-byte Ed25519 public key.
func (k KeyPair) PublicKeyBytes() []byte {
	return append([]byte(nil), k.public...)
}

// PublicKeyB64URL returns the public key as unpadded base64url (43 chars).
func (k KeyPair) PublicKeyB64URL() string {
	return EncodePublicKey(k.public)
}

// Sign signs msg with the keypair's private key and returns an unpadded
// base64url-encoded Ed25519 signature.
func (k KeyPair) Sign(msg []byte) (string, error) {
	if k.private == nil {
		return "", fmt.Errorf("keys: keypair has no private key material")
	}
	sig := ed25519.Sign(k.private, msg)
	return base64.RawURLEncoding.EncodeToString(sig), nil
}

// EncodePublicKey encodes a raw Ed25519 public key as unpadded base64url.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return base64.RawURLEncoding.EncodeToString(pub)
}

// DecodePublicKey decodes an unpadded base64url public key, validating
// its length is exactly PublicKeySize.
func DecodePublicKey(s string) (ed25519.PublicKey, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("keys: invalid base64url public key: %w", err)
	}
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("keys: public key must be %d bytes, got %d", PublicKeySize, len(b))
	}
	return ed25519.PublicKey(b), nil
}

// DecodeSignature decodes an unpadded base64url signature, validating
// its length is exactly SignatureSize.
func DecodeSignature(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("keys: invalid base64url signature: %w", err)
	}
	if len(b) != SignatureSize {
		return nil, fmt.Errorf("keys: signature must be %d bytes, got %d", SignatureSize, len(b))
	}
	return b, nil
}

// Verify reports whether sigB64 is a valid Ed25519 signature over msg
// under the public key pubB64. Malformed keys or signatures are
// rejected (returns false, non-nil error) rather than panicking.
func Verify(pubB64, sigB64 string, msg []byte) (bool, error) {
	pub, err := DecodePublicKey(pubB64)
	if err != nil {
		return false, err
	}
	sig, err := DecodeSignature(sigB64)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, msg, sig), nil
}
