package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"postmark/internal/ipc"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var session string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the session's annotations to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Export(session, output)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", resp.Rows, resp.Path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "Session id (defaults to the current session)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination path (defaults to the export directory)")
	return cmd
}
