package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"postmark/internal/api"
	"postmark/internal/ipc"
)

func newReviewCommands(ctx *commandContext) []*cobra.Command {
	var showSession string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display the record under the review cursor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Current(showSession)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp.View)
				}
				printRecordView(cmd, resp.View)
				return nil
			})
		},
	}
	showCmd.Flags().StringVar(&showSession, "session", "", "Session id (defaults to the current session)")

	var nextSession string
	nextCmd := &cobra.Command{
		Use:   "next",
		Short: "Advance to the next record (wraps at the end)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Next(nextSession)
				if err != nil {
					return err
				}
				printRecordView(cmd, resp.View)
				return nil
			})
		},
	}
	nextCmd.Flags().StringVar(&nextSession, "session", "", "Session id (defaults to the current session)")

	var prevSession string
	prevCmd := &cobra.Command{
		Use:   "prev",
		Short: "Go back to the previous record (wraps at the start)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Prev(prevSession)
				if err != nil {
					return err
				}
				printRecordView(cmd, resp.View)
				return nil
			})
		},
	}
	prevCmd.Flags().StringVar(&prevSession, "session", "", "Session id (defaults to the current session)")

	var gotoSession string
	gotoCmd := &cobra.Command{
		Use:   "goto <key>",
		Short: "Jump to the record with an exact key match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Goto(gotoSession, args[0])
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp)
				}
				if !resp.Matched {
					fmt.Fprintf(cmd.OutOrStdout(), "No record with key %q; staying on %s\n", args[0], resp.View.Key)
				}
				printRecordView(cmd, resp.View)
				return nil
			})
		},
	}
	gotoCmd.Flags().StringVar(&gotoSession, "session", "", "Session id (defaults to the current session)")

	var markSession string
	var explanation string
	markCmd := &cobra.Command{
		Use:       "mark <correct|wrong>",
		Aliases:   []string{"annotate"},
		Short:     "Save a judgment for the record under the cursor",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"correct", "wrong"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Annotate(markSession, args[0], explanation)
				if err != nil {
					return err
				}
				printRecordView(cmd, resp.View)
				return nil
			})
		},
	}
	markCmd.Flags().StringVar(&markSession, "session", "", "Session id (defaults to the current session)")
	markCmd.Flags().StringVarP(&explanation, "explanation", "m", "", "Why the OCR result is wrong (kept only for wrong)")

	return []*cobra.Command{showCmd, nextCmd, prevCmd, gotoCmd, markCmd}
}

func printRecordView(cmd *cobra.Command, view api.RecordView) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader(view.Header, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderFieldLine("Postcode", view.Postcode))
	fmt.Fprintln(stdout, renderFieldLine("Words", view.Words))
	fmt.Fprintln(stdout, renderFieldLine("Region", view.Region))
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, renderFieldLine("Image", view.Image))
	fmt.Fprintln(stdout, renderFieldLine("Postcode crop", view.PostcodeCrop))
	fmt.Fprintln(stdout, renderFieldLine("Receiver crop", view.ReceiverCrop))
	fmt.Fprintln(stdout)

	if !view.Annotated {
		fmt.Fprintln(stdout, renderStatusLine("Annotation", statusInfo, "Not annotated", colorize))
		return
	}
	kind := statusOK
	detail := view.Label
	if view.Label == "wrong" {
		kind = statusWarn
		if view.Explanation != "" {
			detail = fmt.Sprintf("%s (%s)", view.Label, view.Explanation)
		}
	}
	fmt.Fprintln(stdout, renderStatusLine("Annotation", kind, detail, colorize))
}
