package output

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter/tw"

	"github.com/agentstation/routeconf"
	"github.com/agentstation/routeconf/pkg/routers"
)

// Routers is a store listing.
type Routers struct {
	Records []routers.Record `json:"routers" yaml:"routers"`
}

// NewRouters builds a listing, masking passwords unless showPasswords is set.
func NewRouters(records []routers.Record, showPasswords bool) Routers {
	out := make([]routers.Record, 0, len(records))
	for _, r := range records {
		if !showPasswords {
			r = r.Masked()
		}
		out = append(out, r)
	}
	return Routers{Records: out}
}

// TableData implements Tabular.
func (r Routers) TableData(wide bool) Data {
	data := Data{Headers: []string{"#", "Address", "Username"}}
	if wide {
		data.Headers = append(data.Headers, "Password")
	}
	for i, rec := range r.Records {
		row := []string{strconv.Itoa(i + 1), rec.Address, rec.Username}
		if wide {
			row = append(row, rec.Password)
		}
		data.Rows = append(data.Rows, row)
	}
	data.ColumnAlignment = []tw.Align{tw.AlignRight}
	return data
}

// Result wraps a run result for display.
type Result struct {
	*routeconf.Result
}

// TableData implements Tabular.
func (r Result) TableData(wide bool) Data {
	data := Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Changed", strconv.FormatBool(r.Changed)},
			{"Message", r.Message},
		},
	}
	if rec := r.Reconcile; rec != nil {
		if len(rec.Added) > 0 {
			data.Rows = append(data.Rows, []string{"Added", strings.Join(rec.Added, ", ")})
		}
		if wide && len(rec.Skipped) > 0 {
			data.Rows = append(data.Rows, []string{"Skipped", strings.Join(rec.Skipped, ", ")})
		}
		if rec.DryRun {
			data.Rows = append(data.Rows, []string{"Dry Run", "true"})
		}
		for _, w := range rec.Warnings {
			data.Rows = append(data.Rows, []string{"Warning", w})
		}
	}
	if r.ProgramRan() {
		data.Rows = append(data.Rows, []string{"Program Output", strings.TrimRight(r.ProgramOutput, "\n")})
		if wide {
			data.Rows = append(data.Rows, []string{"Program Duration", r.Apply.Duration.String()})
		}
	}
	if wide {
		data.Rows = append(data.Rows, []string{"Run ID", r.RunID})
	}
	return data
}

// Failure is the structured form of a failed run, written for json and yaml output.
type Failure struct {
	Failed   bool   `json:"failed" yaml:"failed"`
	Changed  bool   `json:"changed" yaml:"changed"`
	Message  string `json:"msg" yaml:"msg"`
	ExitCode *int   `json:"exit_code,omitempty" yaml:"exit_code,omitempty"`
}

// NewFailure builds a Failure from err.
func NewFailure(err error, exitCode *int) Failure {
	return Failure{Failed: true, Message: err.Error(), ExitCode: exitCode}
}
