package request

import (
	"bytes"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/routers"
)

// entry is one router as written in a YAML or JSON file.
type entry struct {
	Address  string `yaml:"address"`
	IP       string `yaml:"ip"`
	Username string `yaml:"username"`
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
}

func (e entry) record() routers.Record {
	rec := routers.Record{Address: e.Address, Username: e.Username, Password: e.Password}
	if rec.Address == "" {
		rec.Address = e.IP
	}
	if rec.Username == "" {
		rec.Username = e.Login
	}
	return rec
}

type document struct {
	Routers *[]entry `yaml:"routers"`
}

func parseYAML(data []byte, filename string) ([]routers.Record, error) {
	first := firstContent(data)
	if first == 0 {
		return nil, nil
	}

	var entries []entry
	if first == '-' || first == '[' {
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, decodeError(filename, err)
		}
		if entries == nil {
			entries = []entry{}
		}
	} else {
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, decodeError(filename, err)
		}
		if doc.Routers == nil {
			return nil, nil
		}
		entries = *doc.Routers
		if entries == nil {
			entries = []entry{}
		}
	}

	records := make([]routers.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.record())
	}
	return records, nil
}

func decodeError(filename string, err error) error {
	return errors.NewConfigError("routers file", "cannot decode "+filename+": "+yaml.FormatError(err, false, true), err)
}

// firstContent returns the first byte of the document body, skipping blank
// lines, comments and a leading document marker. It returns 0 when there is none.
func firstContent(data []byte) byte {
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' || bytes.Equal(line, []byte("---")) {
			continue
		}
		if bytes.HasPrefix(line, []byte("--- ")) {
			line = bytes.TrimSpace(line[4:])
		}
		return line[0]
	}
	return 0
}
