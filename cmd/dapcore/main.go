// Package main is the entry point for the dapcore debug adapter.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/dshills/dapcore/internal/adapter"
	"github.com/dshills/dapcore/internal/adapter/variables"
	"github.com/dshills/dapcore/internal/dap"
	"github.com/dshills/dapcore/internal/eval/luaeval"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		listen      string
		script      string
		showVersion bool
	)
	flag.StringVar(&listen, "listen", "", "Serve DAP on a TCP address instead of stdio")
	flag.StringVar(&script, "script", "", "Lua script whose globals form the debuggee's top frame")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("dapcore %s (%s)\n", version, commit)
		return 0
	}

	// stdout carries the protocol in stdio mode; diagnostics go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	engine := luaeval.NewEngine()
	defer engine.Close()

	chunk := ""
	source := "main.lua"
	if script != "" {
		data, err := os.ReadFile(script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: read script: %v\n", err)
			return 1
		}
		chunk = string(data)
		source = script
	}

	threadID := engine.AddThread("main")
	if err := engine.PushFrame(threadID, "main", source, 1, chunk); err != nil {
		fmt.Fprintf(os.Stderr, "Error: load debuggee: %v\n", err)
		return 1
	}

	session := adapter.NewSession(adapter.SessionConfig{
		Engine:   engine,
		Debuggee: engine,
		Logical:  variables.NewLogicalStructureManager(luaeval.NewTableStructure(engine)),
		Details:  engine,
		Logger:   logger,
	})
	defer session.Close()

	if listen == "" {
		server := adapter.NewServer(dap.NewStdioTransport(), session, logger)
		if err := server.Serve(); err != nil {
			logger.Error("serve", "error", err)
			return 1
		}
		return 0
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: listen %s: %v\n", listen, err)
		return 1
	}
	defer ln.Close()
	logger.Info("listening", "address", ln.Addr().String())

	conn, err := ln.Accept()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: accept: %v\n", err)
		return 1
	}

	server := adapter.NewServer(dap.NewSocketTransport(conn), session, logger)
	if err := server.Serve(); err != nil {
		logger.Error("serve", "error", err)
		return 1
	}
	return 0
}
