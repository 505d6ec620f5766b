package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an AI-written resume",
	Long: `Sends the resume fields to the configured AI provider and renders the sanitized
response with the chosen template.

With --fields the API key comes from GEMINI_API_KEY (or the config file).
Without it the saved profile and its stored API key are used.`,
	RunE: runGenerate,
}

var (
	generateFieldsFile string
	generateProfile    string
	generateTemplate   int
	generateOutputFile string
)

func init() {
	generateCmd.Flags().StringVarP(&generateFieldsFile, "fields", "f", "", "Path to resume fields JSON file, or - for stdin")
	generateCmd.Flags().StringVarP(&generateProfile, "profile", "p", "", "Saved profile to generate when --fields is omitted")
	generateCmd.Flags().IntVarP(&generateTemplate, "template", "t", 0, "Template: 0 exhaustive, 1 AI-driven, 2 modern (defaults to the saved choice for profiles)")
	generateCmd.Flags().StringVarP(&generateOutputFile, "out", "o", "", "Path to output HTML file (default stdout)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	choice, err := parseTemplate(generateTemplate)
	if err != nil {
		return err
	}

	var ctrl *preview.Controller
	if generateFieldsFile != "" {
		fields, err := readFields(generateFieldsFile, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if cfg.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}

		// A throwaway profile carries the file's fields through the same
		// pipeline the web form uses.
		service := preview.NewService(store.NewMemoryKV(), nil, llm.NewFactory(llmConfig(cfg)),
			preview.WithTier(llm.ModelTier(cfg.Tier)))
		ctrl = service.Controller("")
		if _, err := ctrl.UpdateFields(ctx, fields); err != nil {
			return err
		}
		if _, err := ctrl.SelectTemplate(ctx, choice); err != nil {
			return err
		}
		if err := ctrl.SetAPIKey(ctx, cfg.APIKey); err != nil {
			return err
		}
	} else {
		var closeKV func()
		ctrl, closeKV, err = openController(ctx, cfg, generateProfile)
		if err != nil {
			return err
		}
		defer closeKV()

		if cmd.Flags().Changed("template") {
			if _, err := ctrl.SelectTemplate(ctx, choice); err != nil {
				return err
			}
		}
	}

	result, err := ctrl.Generate(ctx)
	if errors.Is(err, preview.ErrAPIKeyRequired) {
		return fmt.Errorf("no API key saved for this profile, set one with 'resume_builder fields api-key': %w", err)
	}
	if err != nil {
		return err
	}
	if result.Failed {
		return fmt.Errorf("AI generation failed: %s", result.HTML)
	}

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Rendered %s layout with template %d\n", result.Layout, result.Template)
	}
	return writeOutput(generateOutputFile, cmd.OutOrStdout(), result.HTML)
}
