package checklist

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	tokenLength   = 10

	maxTokenAttempts = 5
)

// randomToken returns a fixed-length alphanumeric public token. Bytes outside
// the largest multiple of the alphabet size are discarded so every character
// is equally likely.
func randomToken() (string, error) {
	limit := byte(256 - 256%len(tokenAlphabet))
	out := make([]byte, 0, tokenLength)
	buf := make([]byte, tokenLength)
	for len(out) < tokenLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == tokenLength {
				break
			}
		}
	}
	return string(out), nil
}

// uniqueToken generates tokens until one is not already assigned to a checklist.
func uniqueToken(ctx context.Context, store Store, gen func() (string, error)) (string, error) {
	for i := 0; i < maxTokenAttempts; i++ {
		token, err := gen()
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		_, err = store.Get(ctx, Key{PublicToken: token})
		if errors.Is(err, ErrNotFound) {
			return token, nil
		}
		if err != nil {
			return "", fmt.Errorf("check token uniqueness: %w", err)
		}
	}
	return "", fmt.Errorf("could not generate a unique public token after %d attempts", maxTokenAttempts)
}
