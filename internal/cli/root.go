package cli

import (
	"github.com/spf13/cobra"

	"github.com/Faust217/OJL-MTAT/config"
	"github.com/Faust217/OJL-MTAT/internal/app"
	"github.com/Faust217/OJL-MTAT/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mtat",
		Short: "Record meetings, analyze speech, and check for deepfakes",
		Long:  "A CLI tool that records meetings from microphone and display, sends them to an analysis backend for transcription, summarization, sentiment, and deepfake detection, and exports PDF reports.",
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewUploadCmd(deps))
	rootCmd.AddCommand(NewFramesCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
