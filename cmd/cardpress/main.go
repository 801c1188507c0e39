// Package main provides the cardpress CLI: a local character library with
// PNG card export.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/swelldreams/cardpress/internal/paths"
	"github.com/swelldreams/cardpress/internal/sqlite"
	"github.com/swelldreams/cardpress/pkg/types"
)

// Global flag values shared by all subcommands.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

// library is the attached character library, initialized before every
// command that needs storage.
var library types.Library

// cliConfig holds values resolved from config.yaml and flags during startup.
var cliConfig struct {
	exportDir      string
	defaultProfile string
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cardpress",
	Short: "Manage characters and export them as PNG character cards",
	Long: `Cardpress manages a local library of dialogue characters (persona text,
story branches, lore) and exports any character as a PNG file that doubles
as a data container: the card metadata travels in tEXt chunks, so the image
displays normally in any viewer while carrying the full record.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initLibrary,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return closeLibrary() },
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: .cardpress-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
}

// initLibrary loads config and attaches the character library.
func initLibrary(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(flagConfigDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dataDir, err := paths.ResolveDataDir(flagDataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	cliConfig.exportDir, err = paths.ResolveExportDir("", v.GetString(cfgKeyExportDir))
	if err != nil {
		return fmt.Errorf("resolve export dir: %w", err)
	}
	cliConfig.defaultProfile = v.GetString(cfgKeyDefaultProfile)

	backend := sqlite.NewBackend()
	if err := backend.Attach(types.Config{Backend: v.GetString(cfgKeyBackend), DataDir: dataDir}); err != nil {
		return fmt.Errorf("attach library: %w", err)
	}
	library = backend
	return nil
}

// closeLibrary detaches the library and releases resources.
func closeLibrary() error {
	if library != nil {
		return library.Detach()
	}
	return nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the character library",
	Long:  "Init creates the config and data directories and an empty library.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The library is already attached by PersistentPreRunE.
		fmt.Println("Library initialized")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cardpress version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cardpress", version)
	},
}

// version is overridden at build time via -ldflags.
var version = "v0.1.0"
