// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"
	"github.com/toeirei/douban-comment/internal/douban"
	"github.com/toeirei/douban-comment/internal/i18n"
	"github.com/toeirei/douban-comment/internal/model"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <subject-id>...",
		Short: i18n.T("cli.info.short"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := normalizeSubjectIDs(args)
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			crawler := &douban.Crawler{Client: client, AnonymousLimit: appConfig.Crawl.AnonymousLimit}
			session := i18n.T("common.no")
			if client.LoggedIn() {
				session = i18n.T("common.yes")
			}

			for _, id := range ids {
				p := newPrinter(cmd.OutOrStdout(), id, len(ids) > 1)
				book, err := client.FetchBookInfo(cmd.Context(), id)
				if err != nil {
					return err
				}
				counts, err := client.FetchCommentCounts(cmd.Context(), id)
				if err != nil {
					return err
				}
				p.line(i18n.T("crawl.target", id))
				p.line(i18n.T("crawl.book_title", book.Title))
				p.line(i18n.T("crawl.book_author", book.Author))
				p.line(i18n.T("info.logged_in", session))
				for _, s := range model.AllStatuses {
					if n, ok := counts[s]; ok {
						p.line(i18n.T("info.limit_line", s.Label(), n, crawler.Limit(n)))
					}
				}
			}
			return nil
		},
	}
}
