package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AmeRaino/dompick/internal/logger"
	"github.com/AmeRaino/dompick/internal/tui"
	"github.com/AmeRaino/dompick/pkg/dompick"
	"github.com/AmeRaino/dompick/pkg/surface"
	"github.com/AmeRaino/dompick/pkg/target"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [url]",
	Short: "Open a page in the interactive inspector",
	Long: `Inspect opens the terminal UI: the page's DOM as a navigable tree, the
scrape targets picked so far, and the generated script side by side. By
default a browser window mirrors the tree, so hovering and clicking in
either place drives the same selection.

Examples:
  # Full setup with a visible browser
  dompick inspect https://example.com/listing

  # Continue an earlier session's target set
  dompick inspect -t targets.yaml https://example.com/listing

  # Snapshot-only authoring on a headless box
  dompick inspect --no-browser https://example.com/listing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	flags := inspectCmd.Flags()
	flags.Bool("no-browser", false, "work from the fetched snapshot only, without a browser")
	flags.Bool("headless", false, "hide the browser window (script execution still works)")
	flags.StringP("targets", "t", "", "target set file to start from (JSON or YAML)")
	flags.String("save", "", "write the target set to this file on exit")
	flags.String("save-as", "", "store the target set under this name on exit (see 'dompick targets')")
	flags.String("snapshot-limit", "300KB", "max document size handed to the AI provider (0 = unlimited)")
	flags.String("log-file", "", "append logs to this file")

	addProviderFlags(inspectCmd)
	addFetchFlags(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	// The UI owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //#nosec G304 -- CLI tool writes to user-specified log file
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		logOut = f
	}
	logger.Init(logger.Options{Debug: viper.GetBool("debug"), Output: logOut})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetcher, err := buildFetcher(cmd)
	if err != nil {
		return err
	}

	opts := []dompick.Option{
		dompick.WithFetcher(fetcher),
		dompick.WithGenerator(buildGenerator(cmd)),
		dompick.WithFetchOptions(fetchOptions(cmd)),
	}

	limit, err := snapshotLimit(cmd)
	if err != nil {
		return err
	}
	if limit > 0 {
		opts = append(opts, dompick.WithSnapshotLimit(limit))
	}

	if path, _ := cmd.Flags().GetString("targets"); path != "" {
		set, err := target.FromFile(path)
		if err != nil {
			return fmt.Errorf("load targets: %w", err)
		}
		opts = append(opts, dompick.WithTargets(set))
	}

	if noBrowser, _ := cmd.Flags().GetBool("no-browser"); !noBrowser {
		cfg := surface.DefaultConfig()
		cfg.Headless, _ = cmd.Flags().GetBool("headless")
		if ua, _ := cmd.Flags().GetString("user-agent"); ua != "" {
			cfg.UserAgent = ua
		}
		surf, err := surface.NewChrome(cfg)
		if err != nil {
			return fmt.Errorf("start browser: %w", err)
		}
		opts = append(opts, dompick.WithSurface(surf))
	}

	session := dompick.New(opts...)
	defer func() { _ = session.Close() }()

	if len(args) == 1 {
		// A failed initial load is not fatal; the UI starts empty and the
		// url can be retried from there.
		if err := session.LoadURL(ctx, args[0]); err != nil {
			logger.Warn("initial load failed", "url", args[0], "error", err)
		}
	}

	if err := tui.Run(ctx, session); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}

	return saveTargets(cmd, session.TargetSet())
}

// saveTargets persists the final target set per the --save and --save-as
// flags. An empty set is not written.
func saveTargets(cmd *cobra.Command, set *target.Set) error {
	if set.Len() == 0 {
		return nil
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := set.Save(path); err != nil {
			return fmt.Errorf("save targets: %w", err)
		}
		logger.Info("targets saved", "path", path, "count", set.Len())
	}

	if name, _ := cmd.Flags().GetString("save-as"); name != "" {
		store := targetStore(cmd)
		if err := store.Save(name, set); err != nil {
			return fmt.Errorf("store targets: %w", err)
		}
		logger.Info("targets stored", "name", name, "count", set.Len())
	}

	return nil
}
