package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned when neither --file nor piped input is available.
var ErrNoInput = errors.New("no input: pass --file or pipe JSON on stdin")

// FileReader decodes a JSON document of type T from the --file flag, falling
// back to the command's stdin.
type FileReader[T any] struct {
	path string
}

// Flag returns the --file/-f flag bound to the reader.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "read JSON from `PATH` instead of stdin",
		TakesFile:   true,
		Destination: &fr.path,
	}
}

// Read decodes from the flag's file, or from stdin when no file was given.
// A nil stdin means os.Stdin. An interactive terminal is rejected with
// ErrNoInput instead of blocking on it.
func (fr *FileReader[T]) Read(stdin io.Reader) (T, error) {
	var zero T

	src := stdin
	if fr.path != "" {
		f, err := os.Open(fr.path)
		if err != nil {
			return zero, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		src = f
	} else {
		if src == nil {
			src = os.Stdin
		}
		if f, ok := src.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return zero, ErrNoInput
		}
	}

	return Decode[T](src)
}

// Decode reads a single JSON value of type T from r, rejecting unknown
// fields.
func Decode[T any](r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("decode JSON: %w", err)
	}
	return v, nil
}
