// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// build compiles release binaries into dist/<os>-<arch>/.
//
// Usage:
//
//	go run ./tools/build                      # host platform
//	go run ./tools/build --target linux/amd64 --target windows/arm64
//	go run ./tools/build --clean --version v1.2.0 --commit $(git rev-parse --short HEAD)
package main

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/douban-comment/internal/logging"
)

func main() {
	if err := newRootCmd(execRunner).Execute(); err != nil {
		logging.Errorf("build failed: %v", err)
		os.Exit(1)
	}
}

// execRunner runs the go toolchain with env appended to the process
// environment.
func execRunner(ctx context.Context, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func newRootCmd(run runner) *cobra.Command {
	opts := options{Now: time.Now}
	cmd := &cobra.Command{
		Use:          "build",
		Short:        "Build douban-comment release binaries",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := build(cmd.Context(), opts, run, cmd.OutOrStdout())
			return err
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&opts.Targets, "target", nil, "goos/goarch to build, repeatable (default: host)")
	f.StringVar(&opts.Dist, "dist", "dist", "output directory")
	f.BoolVar(&opts.Clean, "clean", false, "remove the output directory first")
	f.StringVar(&opts.Version, "version", os.Getenv("VERSION"), "version stamped into the binary")
	f.StringVar(&opts.Commit, "commit", os.Getenv("COMMIT"), "commit stamped into the binary")
	return cmd
}
