package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"postmark/internal/ipc"
)

func newSessionCommands(ctx *commandContext) []*cobra.Command {
	loadCmd := &cobra.Command{
		Use:   "load <archive>",
		Short: "Unpack a dataset archive and open a review session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Load(args[0])
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				s := resp.Session
				fmt.Fprintf(stdout, "Session %s opened\n", shortID(s.ID))
				fmt.Fprintf(stdout, "Dataset root: %s\n", s.Root)
				fmt.Fprintf(stdout, "Records: %d\n", s.Records)
				if s.Collisions > 0 {
					fmt.Fprintf(stdout, "Key collisions: %d (see `postmark collisions`)\n", s.Collisions)
				}
				if s.Records == 0 {
					fmt.Fprintln(stdout, "No reference images found; navigation and annotation are unavailable")
				}
				return nil
			})
		},
	}

	var closeSession string
	closeCmd := &cobra.Command{
		Use:   "close",
		Short: "Close a review session and discard its staging data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.CloseSession(closeSession); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session closed")
				return nil
			})
		},
	}
	closeCmd.Flags().StringVar(&closeSession, "session", "", "Session id (defaults to the current session)")

	var keysSession string
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "List record keys in review order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Keys(keysSession)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp.Keys)
				}
				stdout := cmd.OutOrStdout()
				for _, key := range resp.Keys {
					fmt.Fprintln(stdout, key)
				}
				return nil
			})
		},
	}
	keysCmd.Flags().StringVar(&keysSession, "session", "", "Session id (defaults to the current session)")

	var collisionsSession string
	collisionsCmd := &cobra.Command{
		Use:   "collisions",
		Short: "List case-insensitive key collisions found while indexing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Collisions(collisionsSession)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp.Collisions)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Collisions) == 0 {
					fmt.Fprintln(stdout, "No key collisions")
					return nil
				}
				fmt.Fprintln(stdout, collisionTable(resp.Collisions))
				return nil
			})
		},
	}
	collisionsCmd.Flags().StringVar(&collisionsSession, "session", "", "Session id (defaults to the current session)")

	return []*cobra.Command{loadCmd, closeCmd, keysCmd, collisionsCmd}
}
