package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/jivitsolutions/jivit-site/core/config"
	"github.com/jivitsolutions/jivit-site/ui/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the catalog MCP server using SSE",
	Long:  `Start a read-only MCP (Model Context Protocol) server using Server-Sent Events (SSE) transport. AI agents can list published services, job openings, student programs and blog posts.`,
	Run:   mcpServer,
}

var (
	mcpPort string
	mcpHost string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpPort, "mcp-port", "", "Port for the SSE MCP server (default MCP_PORT or 8080)")
	mcpCmd.Flags().StringVar(&mcpHost, "host", "", "Host for the SSE MCP server (default MCP_HOST or localhost)")
}

func mcpServer(_ *cobra.Command, _ []string) {
	cfg := coreconfig.Global
	if mcpPort != "" {
		cfg.MCP.Port = mcpPort
	}
	if mcpHost != "" {
		cfg.MCP.Host = mcpHost
	}

	if err := initSchema(appCtx); err != nil {
		logrus.Fatalf("[DATABASE] failed to prepare schema: %v", err)
	}

	// Create MCP server with capabilities
	mcpServer := server.NewMCPServer(
		"JivIT Site Catalog MCP Server",
		cfg.App.Version,
		server.WithToolCapabilities(true),
	)

	catalogHandler := mcp.InitMcpCatalog(catalogSvc)
	catalogHandler.AddCatalogTools(mcpServer)

	// Create SSE server
	sseServer := server.NewSSEServer(
		mcpServer,
		server.WithBaseURL(fmt.Sprintf("http://%s:%s", cfg.MCP.Host, cfg.MCP.Port)),
		server.WithKeepAlive(true),
	)

	// Start the SSE server
	addr := fmt.Sprintf("%s:%s", cfg.MCP.Host, cfg.MCP.Port)
	logrus.Printf("Starting catalog MCP SSE server on %s", addr)
	logrus.Printf("SSE endpoint: http://%s/sse", addr)
	logrus.Printf("Message endpoint: http://%s/message", addr)

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[MCP] Reception of termination signal, shutting down gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sseServer.Shutdown(ctx); err != nil {
			logrus.Errorf("[MCP] Error during SSE shutdown: %v", err)
		}
	}()

	if err := sseServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("Failed to start SSE server: %v", err)
	}
	StopApp()
}
