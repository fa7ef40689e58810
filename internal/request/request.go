// Package request loads the requested router list from files and command
// line flags.
//
// Router files may be YAML, JSON or HCL. YAML and JSON files hold either a
// top-level list or a document with a `routers` key:
//
//	routers:
//	  - address: 10.0.0.1
//	    username: admin
//	    password: secret
//
// The older `ip` and `login` keys are accepted as aliases. HCL files use one
// block per router:
//
//	router "10.0.0.1" {
//	  username = "admin"
//	  password = "secret"
//	}
package request

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/routers"
)

// Format is a router file format.
type Format string

// Supported router file formats.
const (
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatFor picks the file format from the path extension. JSON is read by
// the YAML decoder.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return FormatHCL
	}
	return FormatYAML
}

// LoadFile reads a router file. A file that declares no router list returns
// nil, which callers treat as an absent request.
func LoadFile(path string) ([]routers.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("routers file", "cannot read "+path, err)
	}
	return Parse(data, path, FormatFor(path))
}

// Parse decodes router file contents. filename is used in error messages.
func Parse(data []byte, filename string, format Format) ([]routers.Record, error) {
	switch format {
	case FormatHCL:
		return parseHCL(data, filename)
	case FormatYAML, "":
		return parseYAML(data, filename)
	default:
		return nil, errors.NewValidationError("format", format, "unsupported routers file format")
	}
}

// FromFlags parses repeated `address[,username[,password]]` values. No
// values yields nil.
func FromFlags(values []string) ([]routers.Record, error) {
	if len(values) == 0 {
		return nil, nil
	}
	records := make([]routers.Record, 0, len(values))
	for _, v := range values {
		rec, err := routers.ParseRecord(v)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Merge concatenates request lists in order. The result is nil only when
// every input is nil, so an explicitly empty list stays a present request.
func Merge(lists ...[]routers.Record) []routers.Record {
	var out []routers.Record
	for _, list := range lists {
		if list == nil {
			continue
		}
		if out == nil {
			out = make([]routers.Record, 0, len(list))
		}
		out = append(out, list...)
	}
	return out
}
