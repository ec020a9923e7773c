package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenantix/llmdiver/internal/config"
	"github.com/greenantix/llmdiver/internal/service"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "llmdiver",
	Short: "Live semantic index over aggregated code dumps",
	Long: `llmdiver keeps a similarity-searchable index of code fragments.
It watches project roots, re-extracts fragments from aggregated source
dumps after each burst of changes, and answers cosine-similarity queries
over the corpus.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// stdout is reserved for command output and the MCP protocol.
	log.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.llmdiver/config.yaml)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("llmdiver %s (built %s)\n", Version, BuildTime)
	},
}

// loadConfig resolves the --config flag, falling back to the default
// location. A missing file yields defaults; a malformed one is an error.
func loadConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

// newService builds the index service from the resolved config.
func newService(ctx context.Context) (*service.IndexService, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return service.New(ctx, cfg, &service.FileDumpSource{})
}
