// Package store reads and appends to the router store file consumed by the
// external configuration program.
//
// A store is only ever appended to. Open takes an exclusive advisory lock that
// is held until Close, so one read-modify-write cycle cannot interleave with
// another process doing the same.
package store

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"os"

	"github.com/agentstation/routeconf/pkg/constants"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/routers"
)

// Store is an open, locked store file.
type Store struct {
	path     string
	format   Format
	codec    codec
	file     *os.File
	records  []routers.Record
	created  bool
	parseErr error

	// needsNewline is set when existing content does not end in a line break.
	needsNewline bool
	appended     int
	closed       bool
}

// Open opens the store at path for appending, creating it with only the
// header row when it does not exist. Existing rows are read and parsed
// before Open returns.
func Open(path string, opts ...Option) (*Store, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, constants.SecureFilePermissions)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	if err := lockFile(file); err != nil {
		_ = file.Close()
		return nil, errors.WrapIO("lock", path, err)
	}

	s := &Store{
		path:   path,
		format: o.format,
		codec:  codecFor(o.format),
		file:   file,
	}
	if err := s.load(o.lenient); err != nil {
		s.release()
		return nil, err
	}
	return s, nil
}

// Load reads the store at path without creating, locking or modifying it.
// A missing file yields no records and exists=false. WithLenient has no
// effect here; parse errors are always returned.
func Load(path string, opts ...Option) (records []routers.Record, exists bool, err error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.WrapIO("read", path, err)
	}

	records, err = codecFor(o.format).decode(data, path)
	if err != nil {
		return nil, true, err
	}
	return records, true, nil
}

func (s *Store) load(lenient bool) error {
	data, err := io.ReadAll(s.file)
	if err != nil {
		return errors.WrapIO("read", s.path, err)
	}

	// Blank lines are skipped by both codecs; any other whitespace is content
	// and must parse.
	if len(bytes.Trim(data, "\r\n")) == 0 {
		s.created = true
		s.needsNewline = len(data) > 0 && data[len(data)-1] != '\n'
		if header := s.codec.header(); len(header) > 0 {
			if err := s.write(header); err != nil {
				return err
			}
		}
		return nil
	}

	s.needsNewline = data[len(data)-1] != '\n'
	s.records, err = s.codec.decode(data, s.path)
	if err != nil {
		if !lenient {
			return err
		}
		s.records = nil
		s.parseErr = err
	}
	return nil
}

// Path returns the store file path.
func (s *Store) Path() string { return s.path }

// Format returns the store format.
func (s *Store) Format() Format { return s.format }

// Records returns the records read when the store was opened, in file order.
func (s *Store) Records() []routers.Record {
	out := make([]routers.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Created reports whether the file was missing or empty when opened, in
// which case Open wrote the header.
func (s *Store) Created() bool { return s.created }

// ParseFailure returns the parse error that a lenient Open ignored, if any.
func (s *Store) ParseFailure() error { return s.parseErr }

// Appended returns the number of records appended since Open.
func (s *Store) Appended() int { return s.appended }

// Append writes records to the end of the store in order.
func (s *Store) Append(records ...routers.Record) error {
	if s.closed {
		return errors.NewIOError("write", s.path, os.ErrClosed)
	}
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	if err := s.codec.encode(bw, records); err != nil {
		if errors.IsValidationError(err) {
			return err
		}
		return errors.WrapIO("write", s.path, err)
	}
	if err := bw.Flush(); err != nil {
		return errors.WrapIO("write", s.path, err)
	}

	if err := s.write(buf.Bytes()); err != nil {
		return err
	}
	s.records = append(s.records, records...)
	s.appended += len(records)
	return nil
}

func (s *Store) write(p []byte) error {
	if s.needsNewline {
		if _, err := s.file.Write([]byte{'\n'}); err != nil {
			return errors.WrapIO("write", s.path, err)
		}
		s.needsNewline = false
	}
	if _, err := s.file.Write(p); err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	return nil
}

// Close syncs the file to disk, releases the lock and closes the file.
// Calling Close more than once is a no-op.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	syncErr := s.file.Sync()
	closeErr := s.release()
	if syncErr != nil {
		return errors.WrapIO("sync", s.path, syncErr)
	}
	if closeErr != nil {
		return errors.WrapIO("close", s.path, closeErr)
	}
	return nil
}

func (s *Store) release() error {
	s.closed = true
	_ = unlockFile(s.file)
	return s.file.Close()
}
