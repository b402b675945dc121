// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"
	"github.com/toeirei/douban-comment/internal/i18n"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("cli.version.short"),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			p := newPrinter(cmd.OutOrStdout(), "", false)
			p.line(i18n.T("version.line", v))
			p.line(i18n.T("version.commit", c))
			if d != "" {
				p.line(i18n.T("version.built", d))
			}
		},
	}
}
