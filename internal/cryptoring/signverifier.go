// Package cryptoring defines the sign/verify/keygen interface the core
// protocol consumes without depending on any one crypto provider (spec §1:
// "the core consumes a sign/verify/keygen interface and a key ring"). TSIG's
// actual MAC algorithm, however, is part of the core protocol rather than a
// pluggable provider concern (spec §4.9), so this package also supplies the
// one reference HMAC implementation of SignVerifier that internal/tsigkeyring
// uses by default.
package cryptoring

// SignVerifier computes and checks message authentication codes for a named
// algorithm (e.g. "hmac-sha256", "hmac-sha1").
type SignVerifier interface {
	// Sign returns the MAC of message under secret using algorithm.
	Sign(algorithm string, secret, message []byte) ([]byte, error)
	// Verify reports whether mac is the correct MAC of message under secret
	// using algorithm.
	Verify(algorithm string, secret, message, mac []byte) error
}
