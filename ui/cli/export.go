// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/toeirei/douban-comment/internal/db"
	"github.com/toeirei/douban-comment/internal/export"
	"github.com/toeirei/douban-comment/internal/i18n"
	"github.com/toeirei/douban-comment/internal/model"
)

func newExportCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "export <subject-id>...",
		Short: i18n.T("cli.export.short"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := normalizeSubjectIDs(args)
			if err != nil {
				return err
			}
			settings, err := loadCrawlSettings()
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			saver := &export.Saver{Dir: appConfig.Output.Dir, Format: settings.format, Compression: settings.compression}
			ctx := cmd.Context()
			for _, id := range ids {
				p := newPrinter(cmd.OutOrStdout(), id, len(ids) > 1)
				book, err := store.GetBook(ctx, id)
				if errors.Is(err, db.ErrNotFound) {
					book = &model.Book{SubjectID: id}
				} else if err != nil {
					return err
				}

				written := 0
				for _, status := range settings.statuses {
					comments, err := store.ListComments(ctx, db.CommentFilter{SubjectID: id, Status: status, Query: query})
					if err != nil {
						return err
					}
					if len(comments) == 0 {
						continue
					}
					path, err := saver.Write(*book, status, comments)
					if err != nil {
						return err
					}
					written++
					p.line(i18n.T("export.written", len(comments), status.Label(), path))
				}
				if written == 0 {
					p.line(i18n.T("export.nothing", id))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", i18n.T("flag.query"))
	return cmd
}
