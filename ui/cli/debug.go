// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/toeirei/douban-comment/internal/config"
	"github.com/toeirei/douban-comment/internal/i18n"
	"github.com/toeirei/douban-comment/internal/logging"
)

// secretEnv lists variables whose values are never printed.
var secretEnv = []string{"COOKIE", "DSN", "PASSWORD"}

func redact(key, value string) string {
	upper := strings.ToUpper(key)
	for _, s := range secretEnv {
		if strings.Contains(upper, s) && value != "" {
			return "<redacted>"
		}
	}
	return value
}

func newDebugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: i18n.T("cli.debug.short"),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "--- DOUBAN-COMMENT DEBUG ---")
			if path, err := config.GetConfigPath(false); err == nil {
				fmt.Fprintf(out, "User config path: %s\n", path)
			}
			fmt.Fprintf(out, "Env file used: %s\n", envFileUsed)
			fmt.Fprintf(out, "Language: %s\n", i18n.GetLang())

			c := appConfig
			c.Douban.Cookies = redact("cookies", c.Douban.Cookies)
			c.Database.Dsn = redact("dsn", c.Database.Dsn)
			b, err := json.MarshalIndent(c, "", "  ")
			if err != nil {
				logging.Errorf("could not marshal config: %v", err)
			} else {
				fmt.Fprintln(out, "-- effective config --")
				fmt.Fprintln(out, string(b))
			}

			fmt.Fprintln(out, "-- flags --")
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				fmt.Fprintf(out, "%s = %s\n", f.Name, redact(f.Name, f.Value.String()))
			})

			fmt.Fprintln(out, "-- environment (DOUBAN_*, OUTPUT_DIR) --")
			var env []string
			for _, e := range os.Environ() {
				key, value, _ := strings.Cut(e, "=")
				if strings.HasPrefix(key, "DOUBAN_") || key == "OUTPUT_DIR" {
					env = append(env, key+"="+redact(key, value))
				}
			}
			sort.Strings(env)
			for _, e := range env {
				fmt.Fprintln(out, e)
			}

			locales := i18n.GetAvailableLocales()
			tags := make([]string, 0, len(locales))
			for tag := range locales {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			fmt.Fprintln(out, "-- locales --")
			for _, tag := range tags {
				fmt.Fprintf(out, "%s (%s)\n", tag, locales[tag])
			}
			fmt.Fprintln(out, "--- END DEBUG ---")
		},
	}
}
