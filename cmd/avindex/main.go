package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kivialho/avindex/internal/activity"
	"github.com/kivialho/avindex/internal/config"
	"github.com/kivialho/avindex/internal/logging"
	"github.com/kivialho/avindex/internal/pipeline"
	"github.com/kivialho/avindex/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "avindex",
	Short: "avindex - per-frame audio/video activity detection",
	Long:  "Scans a video's frames and audio track to find the regions containing motion or sound above the noise baseline.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./avindex.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [video file]",
	Short: "Scan a video for motion and sound activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if !util.FileExists(input) {
			return fmt.Errorf("input file does not exist: %s", input)
		}

		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(logging.NewLogger(), cfg)
		if err != nil {
			return err
		}

		notifier := activity.NotifierFunc(func(message string) {
			logger := logging.WithComponent("notify")
			logger.Warn().Msg(message)
		})

		report, err := pipe.Analyze(cmd.Context(), input, notifier)
		if err != nil {
			return err
		}

		printReport(report)
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [video file]",
	Short: "Print a video's metadata without scanning it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(logging.NewLogger(), cfg)
		if err != nil {
			return err
		}

		info, err := pipe.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("file:     %s\n", info.FilePath)
		fmt.Printf("size:     %dx%d\n", info.Width, info.Height)
		fmt.Printf("frames:   %d @ %.3f fps\n", info.FrameCount, info.FPS)
		fmt.Printf("duration: %s\n", util.FormatDuration(info.Duration))
		fmt.Printf("video:    %s\n", info.VideoCodec)
		if info.HasAudio {
			fmt.Printf("audio:    %s\n", info.AudioCodec)
		} else {
			fmt.Printf("audio:    none\n")
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		fmt.Print(string(data))
		return nil
	},
}

func printReport(report *pipeline.Report) {
	fps := report.Info.FPS

	printTrack := func(name string, segs []activity.Segment) {
		fmt.Printf("%s activity: %d segment(s)\n", name, len(segs))
		for _, seg := range segs {
			fmt.Printf("  frames %6d - %-6d  %s - %s\n",
				seg.Start, seg.End,
				util.FormatDuration(util.FrameTime(seg.Start, fps)),
				util.FormatDuration(util.FrameTime(seg.End, fps)))
		}
	}

	printTrack("video", report.VideoSegments)
	if report.HasUsableAudio {
		printTrack("audio", report.AudioSegments)
	} else {
		fmt.Println("audio activity: no data")
	}
	fmt.Printf("scanned %d frames in %s\n", report.Info.FrameCount, report.Elapsed.Round(time.Millisecond))
}
