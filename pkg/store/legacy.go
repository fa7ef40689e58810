package store

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/routeconf/pkg/constants"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/routers"
)

type legacyCodec struct{}

func (legacyCodec) header() []byte { return nil }

func (legacyCodec) decode(data []byte, path string) ([]routers.Record, error) {
	var records []routers.Record

	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts := strings.Split(text, constants.LegacyDelimiter)
		if len(parts) != constants.StoreFieldCount {
			return nil, &errors.ParseError{
				Format:  FormatLegacy.String(),
				File:    path,
				Line:    line,
				Column:  1,
				Message: fmt.Sprintf("expected %d fields separated by %q, found %d", constants.StoreFieldCount, constants.LegacyDelimiter, len(parts)),
			}
		}
		rec := routers.Record{Address: parts[0], Username: parts[1], Password: parts[2]}.Normalize()
		if rec.Address == "" {
			return nil, &errors.ParseError{
				Format:  FormatLegacy.String(),
				File:    path,
				Line:    line,
				Column:  1,
				Message: "row has an empty address",
			}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse(FormatLegacy.String(), path, err)
	}
	return records, nil
}

func (legacyCodec) encode(w io.Writer, records []routers.Record) error {
	for _, rec := range records {
		for _, field := range rec.Fields() {
			if strings.Contains(field, constants.LegacyDelimiter) {
				return errors.NewValidationError("record", rec.Address,
					fmt.Sprintf("legacy format cannot store fields containing %q", constants.LegacyDelimiter))
			}
		}
		if _, err := io.WriteString(w, strings.Join(rec.Fields(), constants.LegacyDelimiter)+"\n"); err != nil {
			return err
		}
	}
	return nil
}
