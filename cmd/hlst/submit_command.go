package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/willhenshall/hls-transcoder/internal/ipc"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "submit <file> [file...]",
		Short: "Submit source files as a new transcode job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]ipc.SubmitFile, 0, len(args))
			for _, arg := range args {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return err
				}
				files = append(files, ipc.SubmitFile{
					Name: filepath.Base(abs),
					Path: abs,
				})
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Submit(ipc.SubmitRequest{Files: files})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.JobID)
				if !wait {
					return nil
				}
				return waitForJob(cmd, client, resp.JobID)
			})
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the job settles")
	return cmd
}

func waitForJob(cmd *cobra.Command, client *ipc.Client, jobID string) error {
	for {
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(2 * time.Second):
		}

		resp, err := client.Status(ipc.StatusRequest{JobID: jobID})
		if err != nil {
			return err
		}
		switch resp.Job.Status {
		case "completed", "completed_with_errors":
			fmt.Fprintf(cmd.OutOrStdout(), "job %s finished: %s\n", jobID, resp.Job.Status)
			return nil
		case "failed":
			return errors.New(jobFailureMessage(resp.Job.Error))
		}
	}
}

func jobFailureMessage(detail string) string {
	if detail == "" {
		return "job failed"
	}
	return "job failed: " + detail
}
