package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/spf13/cobra"
)

var fieldsProfile string

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Inspect and edit a saved profile",
	Long: `Reads and writes the form state of a saved profile in the configured store.
The default profile is the one the file store shares with a local browser session.`,
}

var fieldsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a summary of the saved fields",
	Args:  cobra.NoArgs,
	RunE: withController(func(cmd *cobra.Command, ctrl *preview.Controller, _ []string) error {
		state, err := ctrl.Restore(context.Background())
		if err != nil {
			return err
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintFields(state.Fields, state.Template)
		if state.HasAPIKey {
			fmt.Fprintln(cmd.OutOrStdout(), "API key: saved")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "API key: not set")
		}
		return nil
	}),
}

var fieldsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one saved field",
	Args:  cobra.ExactArgs(1),
	RunE: withController(func(cmd *cobra.Command, ctrl *preview.Controller, args []string) error {
		state, err := ctrl.Restore(context.Background())
		if err != nil {
			return err
		}
		value, err := state.Fields.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}),
}

var fieldsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Save one field (value - reads stdin)",
	Args:  cobra.ExactArgs(2),
	RunE: withController(func(cmd *cobra.Command, ctrl *preview.Controller, args []string) error {
		value := args[1]
		if value == "-" {
			content, err := readInput("-", cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read value: %w", err)
			}
			value = strings.TrimRight(string(content), "\n")
		}
		_, err := ctrl.UpdateField(context.Background(), args[0], value)
		return err
	}),
}

var fieldsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace every field with a fields JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: withController(func(cmd *cobra.Command, ctrl *preview.Controller, args []string) error {
		fields, err := readFields(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		_, err = ctrl.UpdateFields(context.Background(), fields)
		return err
	}),
}

var fieldsTemplateCmd = &cobra.Command{
	Use:   "template [0|1|2]",
	Short: "Print or save the template choice",
	Args:  cobra.MaximumNArgs(1),
	RunE: withController(func(cmd *cobra.Command, ctrl *preview.Controller, args []string) error {
		ctx := context.Background()
		if len(args) == 0 {
			state, err := ctrl.Restore(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), state.Template)
			return nil
		}

		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid template %q: must be 0, 1 or 2", args[0])
		}
		choice, err := parseTemplate(n)
		if err != nil {
			return err
		}
		_, err = ctrl.SelectTemplate(ctx, choice)
		return err
	}),
}

var fieldsAPIKeyClear bool

var fieldsAPIKeyCmd = &cobra.Command{
	Use:   "api-key [key]",
	Short: "Save or clear the profile's AI API key",
	Args:  cobra.MaximumNArgs(1),
	RunE: withController(func(cmd *cobra.Command, ctrl *preview.Controller, args []string) error {
		ctx := context.Background()
		if fieldsAPIKeyClear || len(args) == 0 {
			if err := ctrl.ClearAPIKey(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key cleared.")
			return nil
		}
		if err := ctrl.SetAPIKey(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key saved!")
		return nil
	}),
}

// withController opens the profile's controller around a subcommand.
func withController(fn func(cmd *cobra.Command, ctrl *preview.Controller, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctrl, closeKV, err := openController(context.Background(), cfg, fieldsProfile)
		if err != nil {
			return err
		}
		defer closeKV()
		return fn(cmd, ctrl, args)
	}
}

func init() {
	fieldsCmd.PersistentFlags().StringVarP(&fieldsProfile, "profile", "p", "", "Profile ID (default: the shared local profile)")
	fieldsAPIKeyCmd.Flags().BoolVar(&fieldsAPIKeyClear, "clear", false, "Clear the saved key")

	fieldsCmd.AddCommand(fieldsShowCmd, fieldsGetCmd, fieldsSetCmd, fieldsImportCmd, fieldsTemplateCmd, fieldsAPIKeyCmd)
	rootCmd.AddCommand(fieldsCmd)

	fieldsSetCmd.Long = "Saves one field. Known fields: " + strings.Join(types.FieldNames(), ", ")
}
