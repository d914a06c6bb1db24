package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/willhenshall/hls-transcoder/internal/ipc"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Transcode one file synchronously and write its package locally",
		Long: `Convert runs the pipeline for a single file and returns the complete
package in-band: master playlist, variant playlists, and all segments.
No archive is created on the daemon side; the work dir is cleaned up
shortly after the response.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Convert(ipc.ConvertRequest{
					Name: filepath.Base(abs),
					Path: abs,
				})
				if err != nil {
					return err
				}

				destRoot := output
				if destRoot == "" {
					destRoot = "."
				}
				for _, file := range resp.Files {
					dest := filepath.Join(destRoot, filepath.FromSlash(file.Path))
					if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
						return err
					}
					if err := os.WriteFile(dest, file.Data, 0o644); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote package %s (%d segments, %d files)\n",
					resp.PackageName, resp.SegmentCount, len(resp.Files))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Directory to write the package into")
	return cmd
}
