// Command formfill-mcp is an MCP (Model Context Protocol) server that lets
// AI assistants fill and inspect the subscription form.
//
// # Configuration for Claude Desktop
//
//	{
//	  "mcpServers": {
//	    "formfill": {
//	      "command": "formfill-mcp",
//	      "args": ["-root", "/srv/form"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - fill_form: Fill the template with applicant data
//   - diagnose: Report resolved paths, scale factors and draw operations
//   - normalize_mapping: Convert a mapping document to canonical form
//
// # Available Resources
//
//   - formfill://mapping : The loaded mapping in canonical form
//   - formfill://template : The blank template PDF
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/formfill"
	"github.com/lvillar/formfill/mcp"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	root := flag.String("root", "", "form root directory (overrides config)")
	flag.Parse()

	cfg := formfill.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = formfill.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "formfill-mcp: %v\n", err)
			os.Exit(2)
		}
	}
	if *root != "" {
		cfg.Root = *root
	}

	// stdout carries the protocol.
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	eng := formfill.New(cfg.Options(logger)...)
	server := mcp.NewServer(logger)
	mcp.RegisterTools(server, eng)
	mcp.RegisterResources(server, eng)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := server.Run(ctx)
	if cerr := eng.Close(); cerr != nil {
		logger.Error("closing asset cache", "err", cerr)
	}
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "formfill-mcp: %v\n", err)
		os.Exit(1)
	}
}
