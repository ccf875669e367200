package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/usestring/avrex/pkg/avrex"
)

// Output formats for listing commands.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func (a *App) reportsCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List available reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			client, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			reports, err := client.ListReports(cmd.Context())
			if err != nil {
				return err
			}
			return writeOptions(cmd.OutOrStdout(), reports, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json, yaml")
	return cmd
}

func (a *App) formatsCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List export formats",
		Long: `List export formats offered on the reports page.

A format can be chosen by id, by label, or with the aliases csv, psv and tsv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			client, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			formats, err := client.ListFormats(cmd.Context())
			if err != nil {
				return err
			}
			return writeOptions(cmd.OutOrStdout(), formats, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json, yaml")
	return cmd
}

func checkOutput(output string) error {
	switch output {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("invalid value %q for --output: must be one of text, json, yaml", output)
}

// writeOptions prints options as "<id>\t<label>" lines, or as a JSON or YAML list.
func writeOptions(w io.Writer, options avrex.OptionMap, output string) error {
	if options == nil {
		options = avrex.OptionMap{}
	}
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(options)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(options); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, o := range options {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", o.Value, o.Label); err != nil {
				return err
			}
		}
		return nil
	}
}
