package store

import (
	"strings"

	"github.com/agentstation/routeconf/pkg/errors"
)

// Format identifies the on-disk layout of a store file.
type Format string

// Format constants.
const (
	// FormatCSV is the canonical layout: a `#ip,username,password` header
	// followed by comma-separated rows with standard quoting.
	FormatCSV Format = "csv"

	// FormatLegacy is the older line layout: `address, username, password`
	// with no header and no quoting.
	FormatLegacy Format = "legacy"
)

// IsValid checks if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatCSV, FormatLegacy:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// ParseFormat parses a format name. An empty name selects FormatCSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case "line", "lines":
		return FormatLegacy, nil
	default:
		if !f.IsValid() {
			return "", errors.NewValidationError("store_format", s, "must be one of: csv, legacy")
		}
		return f, nil
	}
}
