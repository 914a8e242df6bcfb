// Package id generates URL-safe identifiers for engine records.
//
// Identifiers are UUIDv4 bytes encoded as base32 (RFC 4648) with no padding:
// 26 characters, lowercase, safe for URLs and file paths.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// New generates a fresh identifier.
func New() (string, error) {
	raw, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(raw[:])), nil
}
