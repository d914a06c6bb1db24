package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/willhenshall/hls-transcoder/internal/ipc"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Inspect the daemon",
	}
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))
	return daemonCmd
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon runtime information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DaemonStatus()
				if err != nil {
					return err
				}
				status := resp.Status
				out := cmd.OutOrStdout()

				fmt.Fprintf(out, "running:  %v (pid %d)\n", status.Running, status.PID)
				fmt.Fprintf(out, "socket:   %s\n", status.SocketPath)
				fmt.Fprintf(out, "lock:     %s\n", status.LockFilePath)
				fmt.Fprintf(out, "work dir: %s\n", status.WorkDir)
				if status.FFmpegAvailable {
					fmt.Fprintf(out, "ffmpeg:   %s\n", status.FFmpegDetail)
				} else {
					fmt.Fprintf(out, "ffmpeg:   unavailable (%s)\n", status.FFmpegDetail)
				}

				if len(status.JobStats) > 0 {
					keys := make([]string, 0, len(status.JobStats))
					for key := range status.JobStats {
						keys = append(keys, key)
					}
					sort.Strings(keys)
					fmt.Fprintln(out, "jobs:")
					for _, key := range keys {
						fmt.Fprintf(out, "  %s: %d\n", key, status.JobStats[key])
					}
				}
				return nil
			})
		},
	}
}
