package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Faust217/OJL-MTAT/internal/output"
)

func NewFramesCmd(deps *Dependencies) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Download the analyzed frames archive",
		Long:  "Fetch the zip archive of frames the backend extracted during its most recent video analysis.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			data, err := deps.App.Backend.FramesArchive(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}

			formatter.FramesSaved(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "frames.zip", "Output path for the archive")

	return cmd
}
