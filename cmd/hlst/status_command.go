package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/willhenshall/hls-transcoder/internal/api"
	"github.com/willhenshall/hls-transcoder/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show one job's status and per-file progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status(ipc.StatusRequest{JobID: args[0]})
				if err != nil {
					return err
				}
				printJob(cmd, resp.Job)
				return nil
			})
		},
	}
}

func printJob(cmd *cobra.Command, job api.JobStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "job:       %s\n", job.ID)
	fmt.Fprintf(out, "status:    %s\n", job.Status)
	fmt.Fprintf(out, "created:   %s\n", job.CreatedAt)
	if job.CompletedAt != "" {
		fmt.Fprintf(out, "completed: %s\n", job.CompletedAt)
	}
	fmt.Fprintf(out, "files:     %d completed, %d failed, %d total\n",
		job.CompletedFiles, job.FailedFiles, len(job.Files))
	fmt.Fprintf(out, "archive:   %s\n", archiveLabel(job))
	if job.Error != "" {
		fmt.Fprintf(out, "error:     %s\n", job.Error)
	}

	rows := make([][]string, 0, len(job.Files))
	for _, file := range job.Files {
		rows = append(rows, []string{
			file.Name,
			file.Status,
			file.PackageDir,
			strconv.Itoa(file.SegmentCount),
			file.Error,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"FILE", "STATUS", "PACKAGE", "SEGMENTS", "ERROR"}, rows))
}

func archiveLabel(job api.JobStatus) string {
	if job.ArchiveReady {
		return "ready"
	}
	return "not ready"
}
