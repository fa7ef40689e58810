package store

import (
	"io"

	"github.com/agentstation/routeconf/pkg/routers"
)

// codec reads and writes records in one store format.
type codec interface {
	// header returns the bytes written to a new, empty store.
	header() []byte
	// decode parses a complete store file. path is used for error messages only.
	decode(data []byte, path string) ([]routers.Record, error)
	// encode writes records as rows.
	encode(w io.Writer, records []routers.Record) error
}

func codecFor(f Format) codec {
	if f == FormatLegacy {
		return legacyCodec{}
	}
	return csvCodec{}
}
