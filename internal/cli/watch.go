package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch configured projects and keep the index fresh",
	Long: `Runs the watcher/scheduler pipeline without the MCP surface: every
burst of changes in a configured project re-extracts its dump and folds
it into the index. Stops on SIGINT or SIGTERM.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	if err := svc.Start(); err != nil {
		svc.Stop()
		return err
	}
	defer svc.Stop()

	log.Printf("llmdiver %s watching, Ctrl-C to stop", Version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	log.Printf("received %v, shutting down", sig)
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
