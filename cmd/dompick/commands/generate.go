package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AmeRaino/dompick/internal/logger"
	"github.com/AmeRaino/dompick/pkg/dompick"
	"github.com/AmeRaino/dompick/pkg/genai"
	"github.com/AmeRaino/dompick/pkg/target"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an extraction script without the UI",
	Long: `Generate fetches the page, prompts the AI provider with a saved target
set, and writes the resulting extractData(document) script.

The target set comes from a file authored with 'dompick inspect' or by
hand. Saved sets from the store work via 'dompick targets show'.

Examples:
  dompick generate -u "https://example.com/listing" -t targets.yaml -o extract.js

  # Pin the provider and model
  dompick generate -u "https://example.com" -t targets.json -p anthropic -m claude-sonnet-4-20250514`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.StringP("url", "u", "", "page to generate against (required)")
	flags.StringP("targets", "t", "", "target set file (required)")
	flags.StringP("output", "o", "", "script file (default: stdout)")
	flags.String("snapshot-limit", "300KB", "max document size handed to the AI provider (0 = unlimited)")

	addProviderFlags(generateCmd)
	addFetchFlags(generateCmd)

	_ = generateCmd.MarkFlagRequired("url")
	_ = generateCmd.MarkFlagRequired("targets")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	targetsPath, _ := cmd.Flags().GetString("targets")
	set, err := target.FromFile(targetsPath)
	if err != nil {
		return fmt.Errorf("load targets: %w", err)
	}
	if set.Len() == 0 {
		return fmt.Errorf("target set %s is empty", targetsPath)
	}

	fetcher, err := buildFetcher(cmd)
	if err != nil {
		return err
	}

	gen := buildGenerator(cmd)
	if !gen.Available() {
		return fmt.Errorf("no AI provider available: set ANTHROPIC_API_KEY, OPENAI_API_KEY, or OPENROUTER_API_KEY, or run Ollama locally")
	}

	opts := []dompick.Option{
		dompick.WithFetcher(fetcher),
		dompick.WithGenerator(gen),
		dompick.WithTargets(set),
		dompick.WithFetchOptions(fetchOptions(cmd)),
	}
	limit, err := snapshotLimit(cmd)
	if err != nil {
		return err
	}
	if limit > 0 {
		opts = append(opts, dompick.WithSnapshotLimit(limit))
	}

	session := dompick.New(opts...)
	defer func() { _ = session.Close() }()

	url, _ := cmd.Flags().GetString("url")
	if err := session.LoadURL(ctx, url); err != nil {
		return err
	}

	logger.Info("generating script",
		"provider", gen.Name(),
		"model", gen.Model(),
		"targets", set.Len())

	stream, err := session.GenerateScript(ctx)
	if err != nil {
		return err
	}
	script, err := genai.Collect(stream)
	if err != nil {
		return fmt.Errorf("generate script: %w", err)
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if _, err := io.WriteString(out, script); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	if !strings.HasSuffix(script, "\n") {
		_, _ = io.WriteString(out, "\n")
	}

	logger.Info("script written", "bytes", len(script))
	return nil
}
