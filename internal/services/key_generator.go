// Package services contains the business logic layer for the URL alias
// service: key generation, the create/deactivate lifecycle, redirect
// resolution and click statistics.
package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	errs "github.com/lmercier/urlalias/internal/errors"
)

// keyAlphabet is the character set for short keys: 62 alphanumeric
// characters, no ambiguous-character exclusion.
const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Custom keys share the generated-key alphabet but may be 4 to 20
// characters long.
const (
	customKeyMinLength = 4
	customKeyMaxLength = 20
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// KeyChecker is the slice of the store the generator needs: a way to test
// whether a candidate key is already taken, active or not.
type KeyChecker interface {
	ExistsByKey(ctx context.Context, shortKey string) (bool, error)
}

// KeyGenerator produces unique short keys. Candidates are drawn uniformly
// from keyAlphabet with crypto/rand (keys are public identifiers, so
// guessability matters) and checked against the store, retrying on
// collision up to a bounded attempt budget.
type KeyGenerator struct {
	checker     KeyChecker
	length      int
	maxAttempts int
}

// NewKeyGenerator creates a generator producing keys of the given fixed
// length with the given collision-retry budget.
func NewKeyGenerator(checker KeyChecker, length, maxAttempts int) *KeyGenerator {
	return &KeyGenerator{
		checker:     checker,
		length:      length,
		maxAttempts: maxAttempts,
	}
}

// Generate returns a short key that was unused at check time. The final
// uniqueness guarantee still lives in the store's unique index; this
// pre-check only makes insert-time collisions vanishingly rare. Exhausting
// the attempt budget returns ErrKeyGenerationExhausted.
func (g *KeyGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		key, err := randomKey(g.length)
		if err != nil {
			return "", fmt.Errorf("failed to generate random key: %w", err)
		}

		exists, err := g.checker.ExistsByKey(ctx, key)
		if err != nil {
			return "", err
		}
		if !exists {
			return key, nil
		}
	}
	return "", errs.ErrKeyGenerationExhausted
}

// randomKey draws length characters uniformly from keyAlphabet.
func randomKey(length int) (string, error) {
	key := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(keyAlphabet)))
	for i := range key {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		key[i] = keyAlphabet[n.Int64()]
	}
	return string(key), nil
}

// ValidCustomKey reports whether a caller-supplied key satisfies the
// alphabet and length constraints.
func ValidCustomKey(key string) bool {
	if len(key) < customKeyMinLength || len(key) > customKeyMaxLength {
		return false
	}
	return keyPattern.MatchString(key)
}
