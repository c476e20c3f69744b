// Package main is a command line front end to the conversion dispatcher,
// for converting local files without running the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/fileconverter/internal/config"
	"github.com/yokitheyo/fileconverter/internal/domain"
	"github.com/yokitheyo/fileconverter/internal/infrastructure/converter"
	"github.com/yokitheyo/fileconverter/internal/infrastructure/scratch"
	"github.com/yokitheyo/fileconverter/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "fileconv",
	Short: "Convert files between PDF, DOCX, JPG, PNG, MP4 and MP3",
	Long: `fileconv runs the same conversion routes as the HTTP service on local
files: pdf->docx, docx->pdf, jpg->png, png->jpg and mp4->mp3 (when ffmpeg
is installed).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log conversion steps")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newService wires the dispatcher the same way the API server does.
func newService(cfg *config.Config) (*usecase.ConversionUsecase, error) {
	ffmpegPath, videoOK := converter.LookupFFmpeg(&cfg.Video)

	workspace, err := scratch.NewWorkspace(&cfg.Scratch)
	if err != nil {
		return nil, err
	}

	return usecase.NewConversionUsecase(
		converter.NewImageConverter(&cfg.Conversion),
		converter.NewDocumentConverter(),
		converter.NewAudioConverter(ffmpegPath),
		workspace,
		domain.Capabilities{Video: videoOK},
		&cfg.Conversion,
	), nil
}

func main() {
	zlog.Init()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
