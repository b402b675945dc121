// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"
	"github.com/toeirei/douban-comment/internal/db"
	"github.com/toeirei/douban-comment/internal/i18n"
)

const listTimeLayout = "2006-01-02 15:04"

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: i18n.T("cli.db.short"),
	}

	maintain := &cobra.Command{
		Use:   "maintain",
		Short: i18n.T("cli.db.maintain.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.RunMaintenance(cmd.Context(), appConfig.Database.Type, appConfig.Database.Dsn); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), "", false).line(i18n.T("db.maintain.done"))
			return nil
		},
	}

	books := &cobra.Command{
		Use:   "books",
		Short: i18n.T("cli.db.books.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			list, err := store.ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), "", false)
			if len(list) == 0 {
				p.line(i18n.T("db.books.empty"))
				return nil
			}
			for _, b := range list {
				p.line(i18n.T("db.books.line", b.SubjectID, b.Title, b.Author, b.Comments, b.UpdatedAt.Local().Format(listTimeLayout)))
			}
			return nil
		},
	}

	var runsLimit int
	runs := &cobra.Command{
		Use:   "runs [subject-id]",
		Short: i18n.T("cli.db.runs.short"),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subjectID := ""
			if len(args) == 1 {
				ids, err := normalizeSubjectIDs(args)
				if err != nil {
					return err
				}
				subjectID = ids[0]
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			list, err := store.ListRuns(cmd.Context(), subjectID, runsLimit)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), "", false)
			if len(list) == 0 {
				p.line(i18n.T("db.runs.empty"))
				return nil
			}
			for _, r := range list {
				p.line(i18n.T("db.runs.line", r.ID, r.SubjectID, r.Status.Label(), r.Fetched, r.Requested, r.Pages,
					reasonText(r.StopReason), r.StartedAt.Local().Format(listTimeLayout)))
			}
			return nil
		},
	}
	runs.Flags().IntVarP(&runsLimit, "limit", "n", 20, i18n.T("flag.limit"))

	cmd.AddCommand(maintain, books, runs)
	return cmd
}
