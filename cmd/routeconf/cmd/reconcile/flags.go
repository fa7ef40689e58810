package reconcile

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/routeconf"
	"github.com/agentstation/routeconf/internal/request"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/routers"
	"github.com/agentstation/routeconf/pkg/store"
)

// Flags holds the run flags shared by reconcile and watch.
type Flags struct {
	Program      string
	Store        string
	Username     string
	Password     string
	Routers      []string
	RoutersFiles []string
	RunProgram   bool
	NoRunProgram bool
	DryRun       bool
	Dedupe       bool
	Lenient      bool
	Interpreter  string
	StoreFormat  string
	Timeout      time.Duration
	Env          []string
	MetricsFile  string
}

// AddFlags registers the run flags on cmd.
func AddFlags(cmd *cobra.Command) *Flags {
	f := &Flags{}
	flags := cmd.Flags()

	flags.StringVar(&f.Program, "program", "", "program run with <username> <password> <store> after a change")
	flags.StringVar(&f.Store, "store", "", "router store file")
	flags.StringVar(&f.Username, "username", "", "global username passed to the program")
	flags.StringVar(&f.Password, "password", "", "global password passed to the program")
	flags.StringArrayVarP(&f.Routers, "router", "r", nil, "router as address[,username[,password]] (repeatable)")
	flags.StringArrayVarP(&f.RoutersFiles, "routers-file", "f", nil, "YAML, JSON or HCL file listing routers (repeatable)")
	flags.BoolVar(&f.RunProgram, "run-program", true, "run the program when the store changed")
	flags.BoolVar(&f.NoRunProgram, "no-run-program", false, "never run the program")
	flags.BoolVar(&f.DryRun, "dry-run", false, "report what would be added without writing")
	flags.BoolVar(&f.Dedupe, "dedupe", false, "append a repeated new address only once")
	flags.BoolVar(&f.Lenient, "lenient", false, "treat an unparseable store as empty")
	flags.StringVar(&f.Interpreter, "interpreter", "", "run the program through this interpreter (e.g. python3)")
	flags.StringVar(&f.StoreFormat, "store-format", "", "store format: csv or legacy")
	flags.DurationVar(&f.Timeout, "timeout", 0, "kill the program after this long (0 = no limit)")
	flags.StringArrayVar(&f.Env, "env", nil, "KEY=value added to the program's environment (repeatable)")
	flags.StringVar(&f.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")

	cmd.MarkFlagsMutuallyExclusive("run-program", "no-run-program")
	_ = cmd.MarkFlagFilename("routers-file", "yaml", "yml", "json", "hcl")

	return f
}

// Config layers the flags the user set over base.
func (f *Flags) Config(cmd *cobra.Command, base routeconf.Config) (routeconf.Config, error) {
	cfg := base
	flags := cmd.Flags()

	if flags.Changed("program") {
		cfg.ProgramPath = f.Program
	}
	if flags.Changed("store") {
		cfg.StorePath = f.Store
	}
	if flags.Changed("username") {
		cfg.GlobalUsername = f.Username
	}
	if flags.Changed("password") {
		cfg.GlobalPassword = f.Password
	}
	if flags.Changed("run-program") {
		cfg.RunProgram = f.RunProgram
	}
	if f.NoRunProgram {
		cfg.RunProgram = false
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = f.DryRun
	}
	if flags.Changed("dedupe") {
		cfg.Deduplicate = f.Dedupe
	}
	if flags.Changed("lenient") {
		cfg.Lenient = f.Lenient
	}
	if flags.Changed("interpreter") {
		cfg.Interpreter = f.Interpreter
	}
	if flags.Changed("store-format") {
		format, err := store.ParseFormat(f.StoreFormat)
		if err != nil {
			return cfg, err
		}
		cfg.Format = format
	}
	if flags.Changed("timeout") {
		if f.Timeout < 0 {
			return cfg, errors.NewValidationError("timeout", f.Timeout, "cannot be negative")
		}
		cfg.ProgramTimeout = f.Timeout
	}
	if flags.Changed("env") {
		cfg.ProgramEnv = append(append([]string(nil), cfg.ProgramEnv...), f.Env...)
	}

	requested, err := f.Requested()
	if err != nil {
		return cfg, err
	}
	cfg.Routers = requested

	return cfg, nil
}

// Requested loads the router request from the routers files and --router
// values, in that order. It is nil when neither declares any routers.
func (f *Flags) Requested() ([]routers.Record, error) {
	lists := make([][]routers.Record, 0, len(f.RoutersFiles)+1)
	for _, path := range f.RoutersFiles {
		records, err := request.LoadFile(path)
		if err != nil {
			return nil, err
		}
		lists = append(lists, records)
	}
	records, err := request.FromFlags(f.Routers)
	if err != nil {
		return nil, err
	}
	lists = append(lists, records)
	return request.Merge(lists...), nil
}

// MetricsPath returns --metrics-file when set, otherwise fallback.
func (f *Flags) MetricsPath(fallback string) string {
	if f.MetricsFile != "" {
		return f.MetricsFile
	}
	return fallback
}
