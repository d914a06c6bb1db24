package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/willhenshall/hls-transcoder/internal/ipc"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List all jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.List()
				if err != nil {
					return err
				}
				if len(resp.Jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no jobs")
					return nil
				}

				rows := make([][]string, 0, len(resp.Jobs))
				for _, job := range resp.Jobs {
					rows = append(rows, []string{
						job.ID,
						job.Status,
						strconv.Itoa(len(job.Files)),
						strconv.Itoa(job.CompletedFiles),
						strconv.Itoa(job.FailedFiles),
						archiveLabel(job),
						job.CreatedAt,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"JOB", "STATUS", "FILES", "DONE", "FAILED", "ARCHIVE", "CREATED"},
					rows,
				))
				return nil
			})
		},
	}
}
