package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rulegrid/rulegrid/internal/config"
	"github.com/rulegrid/rulegrid/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the rulegrid SSH server",
	Long: `Start an SSH server that lets users connect and play the catalog.

Each connection gets its own picker and play session. Results are
recorded per-server; remote sessions do not write progress saves.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at <data_dir>/host_key

Examples:
  rulegrid serve                           # Listen on the configured address
  rulegrid serve --ssh :2222               # Listen on port 2222
  rulegrid serve --host-key ./my_host_key  # Use specific host key
  rulegrid serve --db ./results.db         # Use specific database

Users can connect with:
  ssh localhost -p 23235`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port; overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	srvCfg := tui.DefaultServerConfig()
	srvCfg.Address = cfg.Serve.Address
	srvCfg.DataDir = config.ExpandPath(cfg.DataDir)
	srvCfg.DBPath = cfg.DBPath
	srvCfg.GamesDir = config.ExpandPath(cfg.GamesDir)
	srvCfg.Seed = cfg.Seed
	srvCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	if flagSSHAddr != "" {
		srvCfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		srvCfg.HostKeyPath = config.ExpandPath(flagHostKey)
	} else if cfg.Serve.HostKey != "" {
		srvCfg.HostKeyPath = cfg.HostKeyPath()
	}

	server, err := tui.NewServer(srvCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(exitLoad)
	}

	fmt.Printf("Starting rulegrid SSH server on %s\n", srvCfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(exitLoad)
	}
}
