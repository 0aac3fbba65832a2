package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/core/textfold"
)

// PasswordScheme stores and compares passwords. Both schemes compare the
// folded form, so whitespace and case differences are ignored.
type PasswordScheme interface {
	Hash(plain string) (string, error)
	Match(stored, input string) bool
}

// PlainPasswords keeps passwords as entered and compares folded text.
type PlainPasswords struct{}

func (PlainPasswords) Hash(plain string) (string, error) {
	return textfold.Clean(plain), nil
}

func (PlainPasswords) Match(stored, input string) bool {
	in := textfold.Fold(input)
	return in != "" && textfold.Fold(stored) == in
}

// BcryptPasswords stores a bcrypt hash of the folded password.
type BcryptPasswords struct {
	Cost int
}

func (b BcryptPasswords) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(textfold.Fold(plain)), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptPasswords) Match(stored, input string) bool {
	in := textfold.Fold(input)
	if in == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(in)) == nil
}

// NewPasswordScheme picks the scheme named in security.password_scheme.
func NewPasswordScheme(name string, cost int) (PasswordScheme, error) {
	switch name {
	case "", internal.PasswordSchemePlain:
		return PlainPasswords{}, nil
	case internal.PasswordSchemeBcrypt:
		return BcryptPasswords{Cost: cost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", name)
	}
}
