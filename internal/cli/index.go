package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index <dump-file>",
	Short: "Fold an aggregated source dump into the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dumpPath, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(dumpPath)
		if err != nil {
			return fmt.Errorf("read dump: %w", err)
		}

		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Stop()

		start := time.Now()
		files, fragments, err := svc.IndexDump(cmd.Context(), string(data))
		if err != nil {
			return err
		}

		stats := svc.Stats()
		fmt.Printf("Indexed %d files, %d fragments in %s\n",
			files, fragments, time.Since(start).Round(time.Millisecond))
		fmt.Printf("  Corpus:  %d fragments\n", stats.CorpusSize)
		fmt.Printf("  Backend: %s\n", stats.BackendFingerprint)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
