package hash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/time/rate"
)

// FingerprintLen is the number of hex characters of the SHA-256 digest embedded in asset filenames.
const FingerprintLen = 8

// HashFile reads the file at path and returns its SHA-256 hash as a hex-encoded string.
// The file is streamed (io.Copy) so large files are handled without loading into memory.
func HashFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the document being rewritten
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Fingerprint returns the first FingerprintLen hex characters of the file's SHA-256 digest.
// Identical content always yields the same fingerprint.
func Fingerprint(path string) (string, error) {
	sum, err := HashFile(path)
	if err != nil {
		return "", err
	}
	return sum[:FingerprintLen], nil
}

// Hasher fingerprints files, optionally throttled. The zero value is unthrottled.
type Hasher struct {
	limiter *rate.Limiter
}

// NewHasher returns a Hasher limited to maxPerSecond fingerprints per second (0 = no throttle).
func NewHasher(maxPerSecond int) *Hasher {
	h := &Hasher{}
	if maxPerSecond > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(maxPerSecond), 1)
	}
	return h
}

// Fingerprint waits for the limiter (if any) and then fingerprints path.
// Returns ctx.Err() if the context is cancelled while waiting.
func (h *Hasher) Fingerprint(ctx context.Context, path string) (string, error) {
	if h != nil && h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	return Fingerprint(path)
}
