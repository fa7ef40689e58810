package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/routeconf/pkg/constants"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/routers"
)

// Header is the first row of every canonical store.
var Header = []string{constants.StoreHeaderAddress, constants.StoreHeaderUsername, constants.StoreHeaderPassword}

type csvCodec struct{}

func (csvCodec) header() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(Header)
	w.Flush()
	return buf.Bytes()
}

func (csvCodec) decode(data []byte, path string) ([]routers.Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = constants.StoreFieldCount
	r.TrimLeadingSpace = true

	head, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, csvParseError(path, err)
	}
	if !isHeader(head) {
		line, col := r.FieldPos(0)
		return nil, &errors.ParseError{
			Format:  FormatCSV.String(),
			File:    path,
			Line:    line,
			Column:  col,
			Message: fmt.Sprintf("expected header %q", strings.Join(Header, ",")),
		}
	}

	var records []routers.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvParseError(path, err)
		}
		rec := routers.Record{Address: row[0], Username: row[1], Password: row[2]}.Normalize()
		if rec.Address == "" {
			line, col := r.FieldPos(0)
			return nil, &errors.ParseError{
				Format:  FormatCSV.String(),
				File:    path,
				Line:    line,
				Column:  col,
				Message: "row has an empty address",
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (csvCodec) encode(w io.Writer, records []routers.Record) error {
	cw := csv.NewWriter(w)
	for _, rec := range records {
		if err := cw.Write(rec.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func isHeader(row []string) bool {
	if len(row) != len(Header) {
		return false
	}
	for i := range row {
		if strings.TrimSpace(row[i]) != Header[i] {
			return false
		}
	}
	return true
}

func csvParseError(path string, err error) error {
	pe := &errors.ParseError{
		Format:  FormatCSV.String(),
		File:    path,
		Message: err.Error(),
		Err:     err,
	}
	var ce *csv.ParseError
	if errors.As(err, &ce) {
		pe.Line = ce.Line
		pe.Column = ce.Column
		pe.Message = ce.Err.Error()
	}
	return pe
}
