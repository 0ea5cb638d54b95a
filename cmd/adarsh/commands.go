// Copyright 2025 Gramsetu Contributors
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
	"fmt"
	"log/slog"
	"os"

	"github.com/gramsetu/adarsh/internal/config"
	"github.com/gramsetu/adarsh/internal/node"
	"github.com/gramsetu/adarsh/internal/version"
	"github.com/spf13/cobra"
)

func serveRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun()
	if err := node.Run(cfg, logger); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		Run: func(cmd *cobra.Command, args []string) {
			serveRun(cmd, args, mustConfig(cmd))
		},
	}
}

func verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every project's cached fund totals against its transaction log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := commonRun()
			return node.Verify(cmd.Context(), mustConfig(cmd), logger, cmd.OutOrStdout())
		},
	}
}

func recomputeCommand() *cobra.Command {
	var villageID uint
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute Adarsh scores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := commonRun()
			return node.Recompute(
				cmd.Context(),
				mustConfig(cmd),
				logger,
				cmd.OutOrStdout(),
				villageID,
			)
		},
	}
	cmd.Flags().UintVar(&villageID, "village", 0, "recompute only this village (default all)")
	return cmd
}

func listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all available plugins",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), listAllPlugins())
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "villages",
		Short: "List villages with their scores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := commonRun()
			return node.Villages(cmd.Context(), mustConfig(cmd), logger, cmd.OutOrStdout())
		},
	})
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", programName, version.GetVersionString())
		},
	}
}
