// Package routers defines the router credential record that routeconf
// reconciles into its store.
package routers

import (
	"strings"

	"github.com/agentstation/routeconf/pkg/constants"
	"github.com/agentstation/routeconf/pkg/errors"
)

// Record is one router entry: an address plus the credentials used to reach it.
// Address is the uniqueness key within a store.
type Record struct {
	Address  string `json:"address" yaml:"address"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// New returns a normalized record.
func New(address, username, password string) Record {
	return Record{Address: address, Username: username, Password: password}.Normalize()
}

// Normalize trims surrounding whitespace from every field.
func (r Record) Normalize() Record {
	return Record{
		Address:  strings.TrimSpace(r.Address),
		Username: strings.TrimSpace(r.Username),
		Password: strings.TrimSpace(r.Password),
	}
}

// Validate reports whether the record can be written to a store.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Address) == "" {
		return errors.NewValidationError("address", r.Address, "router address is required")
	}
	fields := []struct {
		name, value string
	}{
		{"address", r.Address},
		{"username", r.Username},
		{"password", r.Password},
	}
	for _, f := range fields {
		if strings.ContainsAny(f.value, "\r\n") {
			return errors.NewValidationError(f.name, nil, "must not contain line breaks")
		}
	}
	return nil
}

// Masked returns a copy with the password replaced, for display.
func (r Record) Masked() Record {
	if r.Password != "" {
		r.Password = constants.MaskedSecret
	}
	return r
}

// String returns the address only so records are safe to print or log.
func (r Record) String() string {
	return r.Address
}

// Fields returns the record as an ordered row.
func (r Record) Fields() []string {
	return []string{r.Address, r.Username, r.Password}
}

// ParseRecord parses "address[,username[,password]]" as given on the command line.
func ParseRecord(s string) (Record, error) {
	parts := strings.SplitN(s, ",", constants.StoreFieldCount)
	rec := Record{Address: parts[0]}
	if len(parts) > 1 {
		rec.Username = parts[1]
	}
	if len(parts) > 2 {
		rec.Password = parts[2]
	}
	rec = rec.Normalize()
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}
