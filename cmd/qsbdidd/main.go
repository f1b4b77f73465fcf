package main

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/Quantum-Blockchains/qsb-node/chain"
	"github.com/Quantum-Blockchains/qsb-node/engine"
	"github.com/Quantum-Blockchains/qsb-node/logger"
	"github.com/Quantum-Blockchains/qsb-node/rpc"
	"github.com/Quantum-Blockchains/qsb-node/store"
	"github.com/Quantum-Blockchains/qsb-node/version"
)

var (
	jsonLogs   bool
	storePath  string
	listenAddr string
	genesisHex string
)

var rootCmd = &cobra.Command{
	Use:   "qsbdidd",
	Short: "qsbdidd - DID state-engine demo host",
	Long: `qsbdidd hosts the DID/status-list/schema state engine behind a
read-only HTTP API, backed by either an in-memory store or a bbolt file.

This binary is a demo host, not part of the engine itself: the engine is a
pure function of (state, command), and a real deployment would drive it
from a consensus layer rather than this CLI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read API over HTTP",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(version.Get().String())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit structured JSON logs instead of console output")

	serveCmd.Flags().StringVar(&storePath, "store", "", "path to a bbolt store file (empty uses an in-memory store)")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:8765", "HTTP listen address")
	serveCmd.Flags().StringVar(&genesisHex, "genesis", "", "hex-encoded genesis hash to bind identifier derivation to")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	defer logger.Cleanup()

	genesis, err := hex.DecodeString(genesisHex)
	if err != nil {
		return fmt.Errorf("invalid --genesis hex: %w", err)
	}

	var s store.Store
	if storePath == "" {
		logger.Info("using in-memory store")
		s = store.NewMemory()
	} else {
		logger.Infow("opening bbolt store", "path", storePath)
		bolt, err := store.OpenBolt(storePath)
		if err != nil {
			return fmt.Errorf("open bbolt store: %w", err)
		}
		defer bolt.Close()
		s = bolt
	}

	e := engine.New(s, chain.New(genesis))
	handler := rpc.New(e)

	mux := http.NewServeMux()
	handler.Routes(mux)

	logger.Infow("listening", "addr", listenAddr)
	return http.ListenAndServe(listenAddr, mux)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
