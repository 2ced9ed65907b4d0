// package auth implements the PKCE login flow against the streaming
// provider's authorization server and the phonos backend.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// verifierBytes is the entropy of the code verifier and the state token.
// 96 bytes of randomness encode to 128 base64url characters, the maximum
// verifier length RFC 7636 allows.
const verifierBytes = 96

// Artifact is the ephemeral PKCE verifier and anti-forgery state pair.
//
// It is single use: persisted only for the redirect round trip and erased
// once consumed, whether the login succeeds or fails.
type Artifact struct {
	Verifier string
	State    string
}

func randomToken() string {
	b := make([]byte, verifierBytes)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// GenerateArtifact produces a fresh verifier and an independent state token.
func GenerateArtifact() Artifact {
	return Artifact{Verifier: randomToken(), State: randomToken()}
}

// Challenge computes the S256 code challenge for a verifier:
// base64url(SHA-256(verifier)) without padding.
func Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
