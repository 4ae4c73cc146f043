package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kerbaras/mangapdf/pkg/integrations"
)

func newDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List reading device profiles for --device",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, d := range integrations.ListDevices() {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
		},
	}
}
