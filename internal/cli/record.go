package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Faust217/OJL-MTAT/internal/domain/session/usecases"
	"github.com/Faust217/OJL-MTAT/internal/output"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var name string
	var pdf bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a meeting and analyze it",
		Long:  "Record microphone and display audio into one track, sampling display frames for deepfake checks along the way.\nPress Ctrl+C to stop; the recording is then transcribed and analyzed by the backend.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			deps.App.Record.Notify = formatter

			return runRecording(cmd.Context(), deps, name, pdf, jsonOut, formatter)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Meeting name (used in folder name)")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "Export a PDF report after analysis")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Export a raw JSON report after analysis")

	return cmd
}

func runRecording(ctx context.Context, deps *Dependencies, name string, pdf, jsonOut bool, formatter *output.Formatter) error {
	deps.App.Analysis.Reset()

	sess, err := deps.App.Record.Start(ctx)
	if err != nil {
		return err
	}
	formatter.RecordingStarted()

	waitCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	<-waitCtx.Done()
	stop()

	audio, err := deps.App.Record.Stop(context.Background())
	if err != nil {
		return err
	}
	formatter.RecordingStopped(time.Since(sess.StartedAt()))

	meetingDir, err := prepareMeetingDir(deps, sess.StartedAt(), name)
	if err != nil {
		return err
	}
	audioPath := filepath.Join(meetingDir, "recording.webm")
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		return err
	}

	formatter.Analyzing()
	results, err := deps.App.Analysis.Finalize(context.Background(), audio)
	frames := deps.App.Sampler.Results()
	if err != nil {
		sess.Fail()
		formatter.Error(err.Error())
	} else if err := sess.Complete(); err != nil {
		deps.App.Log.Warn("completing session", "error", err)
	}

	renderer := output.NewRenderer(os.Stdout)
	renderer.Transcript(results.Transcript, results.Sentiment)
	renderer.Summary(results.Summary)
	renderer.SentimentBreakdown(results.Sentiment)
	renderer.FrameResults(frames)

	if jsonOut {
		jsonPath := filepath.Join(meetingDir, "report.json")
		if err := deps.App.Export.ExportJSON(results, frames, jsonPath); err != nil {
			formatter.Error(err.Error())
		} else {
			formatter.ExportDone(jsonPath)
		}
	}
	if pdf {
		pdfPath := filepath.Join(meetingDir, "meeting_report.pdf")
		if err := deps.App.Export.Export(context.Background(), results, frames, pdfPath); err != nil {
			formatter.Error(err.Error())
		} else {
			formatter.ExportDone(pdfPath)
		}
	}

	formatter.MeetingComplete(meetingDir)
	return nil
}

func prepareMeetingDir(deps *Dependencies, startedAt time.Time, name string) (string, error) {
	folder, err := usecases.RenderFolderName(deps.Config.FolderTemplate, startedAt, name)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(deps.Config.MeetingsDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
