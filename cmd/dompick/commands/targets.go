package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AmeRaino/dompick/pkg/target"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Manage saved target sets",
	Long: `Targets lists, shows, and deletes target sets saved to the store.

Sets land in the store via 'dompick inspect --save-as <name>'. The store
lives under ~/.dompick/targets unless --dir or targets_dir in the config
file says otherwise.`,
}

var targetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved target sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := targetStore(cmd).List()
		if err != nil {
			return fmt.Errorf("list target sets: %w", err)
		}
		if len(names) == 0 {
			cmd.Println("no saved target sets")
			return nil
		}
		for _, name := range names {
			cmd.Println(name)
		}
		return nil
	},
}

var targetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved target set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := targetStore(cmd).Load(args[0])
		if err != nil {
			return fmt.Errorf("load target set %q: %w", args[0], err)
		}
		for _, t := range set.List() {
			cmd.Printf("%-20s %s\n", t.Name, t.Selector)
			if t.Description != "" {
				cmd.Printf("%-20s %s\n", "", t.Description)
			}
		}
		return nil
	},
}

var targetsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved target set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := targetStore(cmd).Delete(args[0]); err != nil {
			return fmt.Errorf("delete target set %q: %w", args[0], err)
		}
		cmd.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.AddCommand(targetsListCmd, targetsShowCmd, targetsDeleteCmd)

	targetsCmd.PersistentFlags().String("dir", "", "target store directory (default: ~/.dompick/targets)")
}

// targetStore resolves the store directory from the --dir flag, the
// targets_dir config key, or the default location, in that order. Commands
// without a --dir flag fall straight through to the config.
func targetStore(cmd *cobra.Command) *target.Store {
	dir := ""
	if f := cmd.Flags().Lookup("dir"); f != nil {
		dir = f.Value.String()
	}
	if dir == "" {
		dir = viper.GetString("targets_dir")
	}
	if dir == "" {
		dir = target.DefaultStoreDir()
	}
	return target.NewStore(dir)
}
