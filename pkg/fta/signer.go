// Package fta: ports for digital signing of invoice digests.

package fta

// Signer produces a signature value over a hex-encoded invoice digest.
// Implementations are resolved once at process start and injected; nothing in
// the pipeline looks signers up through ambient state.
type Signer interface {
	// Sign takes the lowercase hex digest of the canonical invoice XML and
	// returns an opaque, base64-encoded signature value.
	Sign(digest string) (string, error)
	// KeyID identifies the signing key; recorded alongside the signature.
	KeyID() string
}

// Verifier is the inverse port: it checks a signature produced by the matching
// Signer over the same digest.
type Verifier interface {
	// Verify returns nil when signature is a valid signature of digest.
	Verify(digest, signature string) error
}
