// Package iojson reads command input and writes command output as JSON.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// marshalFailure is printed to the error stream when a value cannot be
// encoded, so scripts reading stderr still get JSON.
type marshalFailure struct {
	Message string `json:"message"`
	Data    struct {
		JSONError string `json:"json_error"`
	} `json:"data"`
}

// WriteWith pretty-prints obj to w. When obj cannot be encoded a JSON error
// object goes to ew instead and nil is returned.
func WriteWith(w, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		f := marshalFailure{Message: "cannot encode output as JSON"}
		f.Data.JSONError = err.Error()
		return WriteLine(ew, f)
	}
	_, err = fmt.Fprintf(w, "%s\n", bits)
	return err
}

// WriteLine writes obj as one compact line, for JSON-lines output.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encode json line: %w", err)
	}
	bits = append(bits, '\n')
	_, err = w.Write(bits)
	return err
}
