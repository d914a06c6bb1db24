package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willhenshall/hls-transcoder/internal/ipc"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <job-id>",
		Short: "Delete a job, cancelling it if still running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Remove(ipc.RemoveRequest{JobID: args[0]})
				if err != nil {
					return err
				}
				if resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "job %s not found\n", args[0])
				}
				return nil
			})
		},
	}
}
