package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AmeRaino/dompick/internal/logger"
	"github.com/AmeRaino/dompick/internal/output"
	"github.com/AmeRaino/dompick/pkg/dompick"
	"github.com/AmeRaino/dompick/pkg/surface"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an extraction script against a page",
	Long: `Run loads the page in a browser, executes an extractData(document)
script in it, and writes the extracted data.

Examples:
  dompick run -u "https://example.com/listing" -s extract.js

  # Watch the browser while the script runs
  dompick run -u "https://example.com" -s extract.js --headful

  dompick run -u "https://example.com" -s extract.js -o data.yaml -f yaml`,
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.StringP("url", "u", "", "page to run against (required)")
	flags.StringP("script", "s", "", "script file (required)")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.StringP("format", "f", "json", "output format: json, jsonl, yaml")
	flags.Bool("headful", false, "show the browser window")

	addFetchFlags(runCmd)

	_ = runCmd.MarkFlagRequired("url")
	_ = runCmd.MarkFlagRequired("script")
}

func runScript(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scriptPath, _ := cmd.Flags().GetString("script")
	source, err := os.ReadFile(scriptPath) //#nosec G304 -- CLI tool reads user-specified script file
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	fetcher, err := buildFetcher(cmd)
	if err != nil {
		return err
	}

	headful, _ := cmd.Flags().GetBool("headful")
	surfCfg := surface.DefaultConfig()
	surfCfg.Headless = !headful
	if ua, _ := cmd.Flags().GetString("user-agent"); ua != "" {
		surfCfg.UserAgent = ua
	}
	surf, err := surface.NewChrome(surfCfg)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}

	session := dompick.New(
		dompick.WithFetcher(fetcher),
		dompick.WithSurface(surf),
		dompick.WithFetchOptions(fetchOptions(cmd)),
	)
	defer func() { _ = session.Close() }()

	url, _ := cmd.Flags().GetString("url")
	if err := session.LoadURL(ctx, url); err != nil {
		return err
	}

	logger.Info("running script", "url", session.URL(), "bytes", len(source))

	res := session.RunScript(ctx, string(source))
	if res.Failed() {
		logger.Error("script failed", "error", res.Error, "details", res.Details)
		return fmt.Errorf("script failed: %s", res.Error)
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

	formatStr, _ := cmd.Flags().GetString("format")
	writer, err := output.NewWriter(out, output.Format(formatStr))
	if err != nil {
		return err
	}
	defer func() { _ = writer.Close() }()

	if err := writer.Write(res.Data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Info("extraction complete", "url", session.URL())
	return nil
}
