package main

import (
	"context"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the live preview of a set of fields",
	Long:  `Prints the live preview markup for a fields JSON file, or for a saved profile when --fields is omitted.`,
	RunE:  runPreview,
}

var (
	previewFieldsFile string
	previewProfile    string
	previewOutputFile string
)

func init() {
	previewCmd.Flags().StringVarP(&previewFieldsFile, "fields", "f", "", "Path to resume fields JSON file, or - for stdin")
	previewCmd.Flags().StringVarP(&previewProfile, "profile", "p", "", "Saved profile to preview when --fields is omitted")
	previewCmd.Flags().StringVarP(&previewOutputFile, "out", "o", "", "Path to output HTML file (default stdout)")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	if previewFieldsFile != "" {
		fields, err := readFields(previewFieldsFile, cmd.InOrStdin())
		if err != nil {
			return err
		}
		return writeOutput(previewOutputFile, cmd.OutOrStdout(), rendering.LivePreview(fields))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctrl, closeKV, err := openController(context.Background(), cfg, previewProfile)
	if err != nil {
		return err
	}
	defer closeKV()

	out, err := ctrl.Preview(context.Background())
	if err != nil {
		return err
	}
	return writeOutput(previewOutputFile, cmd.OutOrStdout(), out)
}
