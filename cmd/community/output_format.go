package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

func validateOutputFormat(outputFormat string) error {
	switch strings.ToLower(outputFormat) {
	case outputTable:
	case outputYAML:
	case outputJSON:
	default:
		return errors.Errorf("unknown output format %q", outputFormat)
	}
	return nil
}

// printOutput renders obj as yaml or json, or hands a fresh table to
// fillTable for the table format.
func printOutput(outputFormat, operation string, obj interface{}, fillTable func(*uitable.Table)) error {
	switch strings.ToLower(outputFormat) {
	case outputTable:
		table := uitable.New()
		table.MaxColWidth = 60
		table.Wrap = true
		fillTable(table)
		fmt.Println(table)

	case outputYAML:
		yamlBytes, err := yaml.Marshal(obj)
		if err != nil {
			return errors.Wrapf(err, "error formatting output from %s operation", operation)
		}
		fmt.Println(string(yamlBytes))

	case outputJSON:
		prettyJSON, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "error formatting output from %s operation", operation)
		}
		fmt.Println(string(prettyJSON))
	}
	return nil
}
