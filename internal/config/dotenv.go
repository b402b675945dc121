// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/subosito/gotenv"
)

// EnvFileName is the file looked up by LoadEnvFile.
const EnvFileName = ".env"

// executablePath is replaced in tests.
var executablePath = os.Executable

// EnvFileCandidates lists where a .env file is looked for: an explicit path
// first, then the working directory, then the directory of the executable.
func EnvFileCandidates(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	candidates := []string{EnvFileName}
	if exe, err := executablePath(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), EnvFileName))
	}
	return candidates
}

// LoadEnvFile loads the first existing .env candidate into the process
// environment without overriding variables that are already set. It
// returns the path loaded, or "" when none exists. An explicit path that
// does not exist is an error.
func LoadEnvFile(explicit string) (string, error) {
	for _, p := range EnvFileCandidates(explicit) {
		if _, err := os.Stat(p); err != nil {
			if explicit != "" {
				return "", fmt.Errorf("env file %s: %w", p, err)
			}
			continue
		}
		if err := gotenv.Load(p); err != nil {
			return "", fmt.Errorf("could not load env file %s: %w", p, err)
		}
		return p, nil
	}
	return "", nil
}
