// Package gameid generates room identifiers: UUIDv7 values written as 26
// lowercase characters of Crockford's base32, so ids sort by creation time.
package gameid

import (
	"encoding/base32"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an id
const Length = 26

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generate creates a new id. It panics only if the system random source
// fails.
func Generate() string {
	return Encode(uuid.Must(uuid.NewV7()))
}

// Encode writes a UUID in id form
func Encode(u uuid.UUID) string {
	return encoding.EncodeToString(u[:])
}

// Decode parses an id back into its UUID
func Decode(id string) (uuid.UUID, error) {
	if len(id) != Length {
		return uuid.Nil, fmt.Errorf("id must be exactly %d characters, got %d", Length, len(id))
	}
	b, err := encoding.DecodeString(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return uuid.FromBytes(b)
}

// Validate checks that id is a well-formed version 7 id
func Validate(id string) error {
	u, err := Decode(id)
	if err != nil {
		return err
	}
	if u.Version() != 7 {
		return fmt.Errorf("id %q has version %d, want 7", id, u.Version())
	}
	return nil
}

// Time returns the creation time embedded in id
func Time(id string) (time.Time, error) {
	u, err := Decode(id)
	if err != nil {
		return time.Time{}, err
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}
