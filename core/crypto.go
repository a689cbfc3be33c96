package core

// crypto.go – low level cryptographic primitives shared by every component
// in this package: id generation, hashing, and ed25519 signature
// verification. Nothing here touches chain state.

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID returns a fresh random UUID-v4 string, used as a Transaction's
// identity.
func NewID() string {
	return uuid.NewString()
}

// HashHex returns the lowercase hex-encoded SHA-256 digest of s.
func HashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether signatureHex is a valid ed25519 signature over
// message by the holder of pubKeyHex. It never panics: any decode or length
// failure is treated as "not verified".
func Verify(pubKeyHex, message, signatureHex string) bool {
	pub, err := hex.DecodeString(pubKeyHex)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig)
}
