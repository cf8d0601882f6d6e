// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/kelpie"
	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/internal/config"
	"github.com/blinklabs-io/kelpie/internal/node"
	"github.com/blinklabs-io/kelpie/internal/version"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const (
	programName = "kelpie"
)

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func commonRun(cfg *config.Config) *slog.Logger {
	// Configure logger
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug || cfg.Debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	logger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	// Configure max processes with our logger wrapper, toss undo func
	_, err := maxprocs.Set(maxprocs.Logger(slogPrintf))
	if err != nil {
		// If we hit this, something really wrong happened
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Debug(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger
}

// withNode opens the governance node for the duration of fn
func withNode(
	cmd *cobra.Command,
	fn func(ctx context.Context, n *kelpie.Node) error,
) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	logger := commonRun(cfg)
	n, err := node.Open(cfg, logger, nil, false)
	if err != nil {
		return err
	}
	err = fn(cmd.Context(), n)
	if stopErr := n.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

// addressFlag reads a required base58 address flag
func addressFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
	}
	addr, err := address.ParseAddress(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--%s: %w", name, err)
	}
	return addr, nil
}

// optionalAddressFlag reads a base58 address flag, returning the zero key
// when unset
func optionalAddressFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil || value == "" {
		return solana.PublicKey{}, err
	}
	addr, err := address.ParseAddress(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--%s: %w", name, err)
	}
	return addr, nil
}

func metadataFlag(cmd *cobra.Command) ([address.MetadataLength]byte, error) {
	value, err := cmd.Flags().GetString("metadata")
	if err != nil || value == "" {
		return [address.MetadataLength]byte{}, err
	}
	return address.ParseMetadata(value)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "DAO governance over a program-derived account store",
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().
		String("data-dir", "", "override the database path")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// Override config with command line flags
		if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
			cfg.DatabasePath = dataDir
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	// Subcommands
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(daoCommand())
	rootCmd.AddCommand(proposalCommand())
	rootCmd.AddCommand(voteCommand())
	rootCmd.AddCommand(executeCommand())
	rootCmd.AddCommand(closeCommand())
	rootCmd.AddCommand(eventsCommand())
	rootCmd.AddCommand(deriveCommand())
	rootCmd.AddCommand(faucetCommand())
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

func main() {
	// Execute cobra command
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		// NOTE: we purposely don't display the error, since cobra will have already displayed it
		os.Exit(1)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s %s\n",
				programName,
				version.GetVersionString(),
			)
		},
	}
}
