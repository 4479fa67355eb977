// Package nickname maps wallet addresses to human-friendly names.
// The store is injected by the caller; the balance computation never reads it.
package nickname

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxLength is the longest nickname accepted, in runes.
const MaxLength = 32

var (
	ErrEmptyNickname   = errors.New("nickname must not be empty")
	ErrNicknameTooLong = errors.New("nickname must be at most 32 characters")
	ErrEmptyAddress    = errors.New("address must not be empty")
)

// Store is a key-value store of address -> nickname.
type Store interface {
	// Get returns the nickname for an address. ok is false when none is set.
	Get(ctx context.Context, address string) (nickname string, ok bool, err error)

	// All returns every stored nickname keyed by address.
	All(ctx context.Context) (map[string]string, error)

	// Set stores a nickname, replacing any previous one.
	Set(ctx context.Context, address, nickname string) error

	// Remove deletes the nickname for an address. Removing a missing key is not an error.
	Remove(ctx context.Context, address string) error
}

// Normalize trims a nickname and checks it is usable.
func Normalize(address, nickname string) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", ErrEmptyAddress
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", ErrEmptyNickname
	}
	if utf8.RuneCountInString(nickname) > MaxLength {
		return "", ErrNicknameTooLong
	}
	return nickname, nil
}

// Resolver returns a lookup function over a snapshot of names, for sorting by name.
func Resolver(names map[string]string) func(address string) string {
	return func(address string) string {
		return names[address]
	}
}
