package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greenantix/llmdiver/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the index over MCP on stdio",
	Long: `Starts the file watchers and the analysis pipeline, then serves MCP
tools (update_index, semantic_search, index_status) on stdio until
interrupted. All logging goes to stderr; stdout carries the protocol.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
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

	server := mcp.NewServer(svc)
	log.Printf("llmdiver %s serving MCP on stdio", Version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("received %v, shutting down", sig)
		cancel()
		return nil
	case err := <-errChan:
		return err
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
