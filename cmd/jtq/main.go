// Command jtq fills `{{...}}` placeholders in a template against one
// or more named JSON datasets (spec §6).
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mibar/jtq/internal/node"
	"github.com/mibar/jtq/pkg/merge"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jtq:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "jtq [template-file]",
		Short: "Fill {{...}} placeholders in a template against named JSON datasets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v, args)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceP("dataset", "d", nil, "name=file.json, repeatable")
	flags.String("dictionary", "", "YAML file mapping dataset name -> JSON file path")
	flags.Bool("xml", false, "enable XML tag-carving mode")
	flags.StringP("output", "o", "", "output file (default stdout)")
	flags.String("log-level", "silent", "resolution progress log level: silent, summary, verbose")
	flags.String("log-format", "text", "ambient log format: text or json")

	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("JTQ")
	v.AutomaticEnv()

	return cmd
}

func run(v *viper.Viper, args []string) error {
	log := logrus.New()
	if v.GetString("log-format") == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	engine := merge.New()

	if dictPath := v.GetString("dictionary"); dictPath != "" {
		dict, err := merge.LoadYAMLDictionary(dictPath)
		if err != nil {
			return err
		}
		engine.SetDictionaryFinder(dict.DictionaryFinder())
		engine.SetDataFinder(dict.DataFinder())
	}

	for _, spec := range v.GetStringSlice("dataset") {
		name, path, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("jtq: --dataset expects name=file.json, got %q", spec)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("jtq: reading dataset %q: %w", name, err)
		}
		n, err := node.Decode(data)
		if err != nil {
			return fmt.Errorf("jtq: decoding dataset %q: %w", name, err)
		}
		engine.PutDataset(name, n)
	}

	engine.SetLogLevel(parseLevel(v.GetString("log-level")))

	template, err := readTemplate(args)
	if err != nil {
		return err
	}

	var output string
	if v.GetBool("xml") {
		output, err = engine.FillInXmlPlaceholder(template)
	} else {
		output, err = engine.FillInPlaceholder(template)
	}
	if err != nil {
		log.WithError(err).Error("merge did not fully resolve")
		if output != "" {
			_ = writeOutput(v.GetString("output"), output)
		}
		return err
	}

	return writeOutput(v.GetString("output"), output)
}

func readTemplate(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("jtq: reading template: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("jtq: reading template from stdin: %w", err)
	}
	return string(data), nil
}

func writeOutput(path, output string) error {
	if path == "" {
		_, err := fmt.Println(output)
		return err
	}
	return os.WriteFile(path, []byte(output), 0o644)
}

func parseLevel(s string) merge.DebugLevel {
	switch strings.ToLower(s) {
	case "verbose":
		return merge.LevelVerbose
	case "summary":
		return merge.LevelSummary
	default:
		return merge.LevelSilent
	}
}
