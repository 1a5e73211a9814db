// utils/json.go
package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// ErrTrailingJSON is returned when input holds more than one JSON value.
var ErrTrailingJSON = errors.New("unexpected data after JSON value")

// DecodeJSON decodes exactly one JSON value from data into v. Numbers that
// land in interface values are kept as json.Number, so large integer ids
// pass through unchanged.
func DecodeJSON(data []byte, v any) error {
	return DecodeJSONReader(bytes.NewReader(data), v)
}

// DecodeJSONReader is DecodeJSON for a stream.
func DecodeJSONReader(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = ErrTrailingJSON
		}
		return err
	}
	return nil
}
