package cryptoring

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"hash"
	"strings"
)

// HMAC is the reference SignVerifier: HMAC over the rendered message, keyed
// by algorithm name the way TSIG key records name them (spec §4.9).
type HMAC struct{}

func newHash(algorithm string) (func() hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "hmac-sha1":
		return sha1.New, nil
	case "hmac-sha256":
		return sha256.New, nil
	case "hmac-sha512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("cryptoring: unsupported algorithm %q", algorithm)
	}
}

// Sign returns the HMAC of message under secret.
func (HMAC) Sign(algorithm string, secret, message []byte) ([]byte, error) {
	newH, err := newHash(algorithm)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(newH, secret)
	mac.Write(message)
	return mac.Sum(nil), nil
}

// Verify recomputes the HMAC of message under secret and compares it to mac
// in constant time.
func (h HMAC) Verify(algorithm string, secret, message, mac []byte) error {
	want, err := h.Sign(algorithm, secret, message)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(want, mac) != 1 {
		return fmt.Errorf("cryptoring: mac mismatch for algorithm %q", algorithm)
	}
	return nil
}
