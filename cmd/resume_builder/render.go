package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/sanitize"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume from fields and a saved AI response",
	Long: `Sanitizes a raw AI response, extracts its sections and renders it with the
chosen template, exactly as the AI-assisted preview does. Useful to replay a
response offline. Use --trace to print the output of every sanitizer step.`,
	RunE: runRender,
}

var (
	renderFieldsFile   string
	renderResponseFile string
	renderTemplate     int
	renderOutputFile   string
	renderTrace        bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderFieldsFile, "fields", "f", "", "Path to resume fields JSON file")
	renderCmd.Flags().StringVarP(&renderResponseFile, "response", "r", "", "Path to raw AI response file, or - for stdin (required)")
	renderCmd.Flags().IntVarP(&renderTemplate, "template", "t", 0, "Template: 0 exhaustive, 1 AI-driven, 2 modern")
	renderCmd.Flags().StringVarP(&renderOutputFile, "out", "o", "", "Path to output HTML file (default stdout)")
	renderCmd.Flags().BoolVar(&renderTrace, "trace", false, "Print each sanitizer step to stderr")

	_ = renderCmd.MarkFlagRequired("response")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	choice, err := parseTemplate(renderTemplate)
	if err != nil {
		return err
	}

	var fields types.ResumeFields
	if renderFieldsFile != "" {
		if fields, err = readFields(renderFieldsFile, cmd.InOrStdin()); err != nil {
			return err
		}
	}

	raw, err := readInput(renderResponseFile, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read response file: %w", err)
	}

	sanitized, trace := sanitize.DefaultPipeline().RunTrace(string(raw))
	out, kind := rendering.RenderKind(fields, sanitized, choice)

	if renderTrace {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintTrace(trace)
		printer.PrintSections(sanitized, kind.String())
	}

	if err := writeOutput(renderOutputFile, cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if renderOutputFile != "" {
		fmt.Fprintf(os.Stderr, "Rendered %s layout to %s\n", kind, renderOutputFile)
	}
	return nil
}
