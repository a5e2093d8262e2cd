package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Faust217/OJL-MTAT/internal/output"
)

func NewUploadCmd(deps *Dependencies) *cobra.Command {
	var name string
	var pdf bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Analyze an existing audio or video file",
		Long:  "Upload a complete media file to the analysis backend.\nAudio files get transcript, summary, and sentiment; video files additionally get a per-frame deepfake verdict.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			path := args[0]

			formatter.Uploading(path)
			res, err := deps.App.Upload.Execute(cmd.Context(), path)
			if err != nil {
				return err
			}

			renderer := output.NewRenderer(os.Stdout)
			renderer.Transcript(res.Transcript, res.Sentiment)
			renderer.Summary(res.Summary)
			renderer.SentimentBreakdown(res.Sentiment)
			if res.Type == "video" {
				renderer.DeepfakeOverview(res.FakeFrames, res.FramesChecked, res.FrameDetails)
			}

			if pdf {
				if name == "" {
					name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				}
				dir, err := prepareMeetingDir(deps, time.Now(), name)
				if err != nil {
					return err
				}
				pdfPath := filepath.Join(dir, "meeting_report.pdf")
				if err := deps.App.Export.ExportAnalysis(cmd.Context(), res, pdfPath); err != nil {
					return err
				}
				formatter.ExportDone(pdfPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Meeting name (used in folder name)")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "Export a PDF report after analysis")

	return cmd
}
