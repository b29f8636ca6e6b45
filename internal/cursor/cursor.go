// Package cursor implements opaque pagination cursors for list endpoints.
//
// Results are computed fresh on every read, so cursors cannot lean on any
// database-native mechanism: a cursor is the last-returned sort key plus the
// row id as a tie-break, encoded so callers treat it as opaque. Requesting
// the same cursor twice yields the same page; advancing never repeats or
// skips an item of the total order.
package cursor

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformed is returned when a cursor token cannot be decoded. Handlers
// map it to a 400 validation error.
var ErrMalformed = errors.New("malformed cursor")

// Cursor is a decoded pagination position: the sort-key value of the last
// item on the previous page and that item's id.
type Cursor struct {
	SortValue string
	ID        uuid.UUID
}

// Encode serializes a cursor into an opaque token.
func Encode(sortValue string, id uuid.UUID) string {
	return base64.URLEncoding.EncodeToString([]byte(sortValue + "|" + id.String()))
}

// Decode parses a token produced by Encode. Unknown or tampered tokens
// return ErrMalformed.
func Decode(token string) (Cursor, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	idx := strings.LastIndexByte(string(raw), '|')
	if idx < 0 {
		return Cursor{}, ErrMalformed
	}
	sortValue := string(raw[:idx])
	id, err := uuid.Parse(string(raw[idx+1:]))
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad id", ErrMalformed)
	}
	if sortValue == "" {
		return Cursor{}, ErrMalformed
	}
	return Cursor{SortValue: sortValue, ID: id}, nil
}
