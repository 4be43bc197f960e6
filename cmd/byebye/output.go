package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

const formatNames = "table, json, yaml"

func (c *commandContext) outputFormat() (outputFormat, error) {
	if c.formatFlag == nil {
		return formatTable, nil
	}
	switch value := outputFormat(strings.ToLower(strings.TrimSpace(*c.formatFlag))); value {
	case "", formatTable:
		return formatTable, nil
	case formatJSON, formatYAML:
		return value, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want %s)", *c.formatFlag, formatNames)
	}
}

// emit writes v as JSON or YAML when requested and reports whether it did.
// Table output is left to the caller.
func (c *commandContext) emit(cmd *cobra.Command, v any) (bool, error) {
	format, err := c.outputFormat()
	if err != nil {
		return false, err
	}
	switch format {
	case formatJSON:
		return true, writeJSON(cmd, v)
	case formatYAML:
		return true, writeYAML(cmd, v)
	default:
		return false, nil
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
