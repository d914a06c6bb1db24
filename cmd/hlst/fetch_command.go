package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/willhenshall/hls-transcoder/internal/fileutil"
	"github.com/willhenshall/hls-transcoder/internal/ipc"
	"github.com/willhenshall/hls-transcoder/internal/jobs"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <job-id>",
		Short: "Copy a finished job's archive to a local path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Archive(ipc.ArchiveRequest{JobID: args[0]})
				if err != nil {
					return err
				}

				dest := output
				if dest == "" {
					dest = args[0] + "-" + jobs.BundleName
				}
				abs, err := filepath.Abs(dest)
				if err != nil {
					return err
				}
				if err := fileutil.CopyFile(resp.Path, abs); err != nil {
					return fmt.Errorf("copy archive: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), abs)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination path for the archive")
	return cmd
}
