package commands

import (
	"fmt"
	"runtime"

	"github.com/leapstack-labs/leapmap/pkg/session"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leapmap version, Go runtime and the registered database drivers.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapmap v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Mapping metadata engine built with %s\n", runtime.Version())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Drivers: %v\n", session.Drivers())
		},
	}
}
