// Package validate provides field validators shared by the task engine and
// the directory service. Each returns a bare message meant to be wrapped by
// criterio.Run with the field name.
package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrRequired is returned for empty or whitespace-only values.
var ErrRequired = errors.New("is required")

// Required rejects values that are empty after trimming whitespace.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrRequired
	}
	return nil
}

// Email accepts a bare address such as ada@example.com. Display names and
// angle brackets are rejected.
func Email(s string) error {
	if s == "" {
		return ErrRequired
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return fmt.Errorf("%q is not a valid email address", s)
	}
	return nil
}
