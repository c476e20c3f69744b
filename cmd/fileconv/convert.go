package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yokitheyo/fileconverter/internal/domain"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert a local file",
	Long: `Convert reads <input>, converts it to the format given by --to and
writes the result next to the input (or to --output). The source format
defaults to the input's extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		output, _ := cmd.Flags().GetString("output")

		if from == "" {
			from = filepath.Ext(input)
		}
		route, err := domain.ResolveRoute(from, to)
		if err != nil {
			return fmt.Errorf("%s -> %s: %w", from, to, err)
		}
		if output == "" {
			base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			output = filepath.Join(filepath.Dir(input), base+"."+string(route.Target))
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		service, err := newService(cfg)
		if err != nil {
			return err
		}

		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer f.Close()
		stat, err := f.Stat()
		if err != nil {
			return err
		}

		result, err := service.Convert(cmd.Context(), domain.ConvertInput{
			ConversionType: from,
			ToExtension:    to,
			Filename:       filepath.Base(input),
			Size:           stat.Size(),
			Reader:         f,
		})
		if err != nil {
			return err
		}

		if err := os.WriteFile(output, result.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes)\n", input, output, result.Size())
		return nil
	},
}

func init() {
	convertCmd.Flags().String("from", "", "source format (default: input extension)")
	convertCmd.Flags().String("to", "", "target format: pdf, docx, jpg, png or mp3")
	convertCmd.Flags().StringP("output", "o", "", "output file (default: input name with the target extension)")
	_ = convertCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(convertCmd)
}
