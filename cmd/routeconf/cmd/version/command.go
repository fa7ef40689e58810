// Package version provides the version command.
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/routeconf/cmd/application"
	"github.com/agentstation/routeconf/internal/cmd/output"
)

// Info is the build information of the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Built     string `json:"built" yaml:"built"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// NewCommand creates the version command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show version information for the routeconf CLI.

Plain text by default; --format selects a table, JSON or YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Info{
				Version:   app.Version(),
				Commit:    app.Commit(),
				Built:     app.Date(),
				BuiltBy:   app.BuiltBy(),
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			w := cmd.OutOrStdout()
			if format := app.OutputFormat(); format != "" {
				return output.NewFormatter(output.Format(format)).Format(w, info)
			}

			_, _ = fmt.Fprintf(w, "routeconf version %s\n", info.Version)
			_, _ = fmt.Fprintf(w, "commit: %s\n", info.Commit)
			_, _ = fmt.Fprintf(w, "built: %s\n", info.Built)
			_, _ = fmt.Fprintf(w, "built by: %s\n", info.BuiltBy)
			_, _ = fmt.Fprintf(w, "go version: %s\n", info.GoVersion)
			_, _ = fmt.Fprintf(w, "platform: %s\n", info.Platform)
			return nil
		},
	}
}
