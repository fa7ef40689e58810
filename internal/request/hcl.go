package request

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/routers"
)

// hclFile is the top-level structure of an HCL routers file. Anything other
// than router blocks fails to decode.
type hclFile struct {
	Routers []*hclRouter `hcl:"router,block"`
}

type hclRouter struct {
	Address  string `hcl:"address,label"`
	Username string `hcl:"username,optional"`
	Password string `hcl:"password,optional"`
}

func parseHCL(data []byte, filename string) ([]routers.Record, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.NewConfigError("routers file", "cannot parse "+filename, diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, errors.NewConfigError("routers file", "cannot decode "+filename, diags)
	}

	records := make([]routers.Record, 0, len(parsed.Routers))
	for _, r := range parsed.Routers {
		records = append(records, routers.Record{
			Address:  r.Address,
			Username: r.Username,
			Password: r.Password,
		})
	}
	return records, nil
}
