package cli

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/Faust217/OJL-MTAT/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)
			ok := true

			if _, err := exec.LookPath("ffmpeg"); err != nil {
				f.SetupCheck("ffmpeg", false, "not found. Install with: apt install ffmpeg (or brew install ffmpeg)")
				ok = false
			} else {
				f.SetupCheck("ffmpeg", true, "installed")
			}

			if err := deps.App.Backend.Ping(cmd.Context()); err != nil {
				f.SetupCheck("Analysis backend", false, deps.Config.BackendURL+" unreachable. Set MTAT_BACKEND_URL or add to config")
				ok = false
			} else {
				f.SetupCheck("Analysis backend", true, deps.Config.BackendURL)
			}

			f.SetupCheck("Microphone", true, deps.Config.MicDevice)
			if deps.Config.MonitorDevice != "" {
				f.SetupCheck("System audio", true, deps.Config.MonitorDevice)
			} else {
				f.SetupCheck("System audio", false, "no monitor source configured; only the microphone will be recorded")
			}
			f.SetupCheck("Display", true, deps.Config.DisplayDevice)

			f.SetupCheck("Meetings directory", true, deps.Config.MeetingsDir)

			if ok {
				f.Success("\nAll prerequisites met. Ready to record!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
