package promptsan

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prompt-sanitizer/host/internal/ipc"
)

// serveTransport is the transport the serve command listens on.
var serveTransport = func() mcp.Transport { return &mcp.StdioTransport{} }

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve host commands as MCP tools on stdin/stdout",
		Long: "Serve speaks the Model Context Protocol over stdio. It exposes three tools:\n" +
			"  sanitize          {\"request\": <engine request document>}\n" +
			"  read_file         {\"path\": \"...\"}\n" +
			"  open_file_dialog  {}\n" +
			"Failed calls return an error result whose structured content is {\"kind\", \"message\"}.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	rootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := current.service()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = ipc.NewServer(svc, current.log, version).Run(ctx, serveTransport())
	switch {
	case errors.Is(err, context.Canceled):
		current.log.Info("mcp session stopped by signal")
		return nil
	case errors.Is(err, io.EOF):
		current.log.Info("mcp client disconnected")
		return nil
	case err != nil:
		current.log.Error("mcp session failed", zap.Error(err))
	}
	return err
}
