// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"
	"github.com/toeirei/douban-comment/internal/config"
	"github.com/toeirei/douban-comment/internal/i18n"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: i18n.T("cli.config.short"),
	}

	var system bool
	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: i18n.T("cli.config.init.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Cookies stay out of the file; they belong in .env.
			c := appConfig
			c.Douban.Cookies = ""
			written := path
			var err error
			if path != "" {
				err = config.WriteConfigFileTo(&c, path)
			} else {
				written, err = config.WriteConfigFile(&c, system)
			}
			if err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), "", false).line(i18n.T("config.written", written))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&system, "system", false, i18n.T("flag.system"))
	initCmd.Flags().StringVar(&path, "path", "", i18n.T("flag.path"))

	cmd.AddCommand(initCmd)
	return cmd
}
