// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/toeirei/douban-comment/internal/db"
	"github.com/toeirei/douban-comment/internal/i18n"
	"github.com/toeirei/douban-comment/internal/model"
	"github.com/toeirei/douban-comment/internal/tui"
	"golang.org/x/term"
)

// isTerminal is replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runBrowser is replaced in tests.
var runBrowser = tui.Run

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <subject-id>",
		Short: i18n.T("cli.browse.short"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := normalizeSubjectIDs(args)
			if err != nil {
				return err
			}
			if !isTerminal() {
				return errors.New(i18n.T("browse.requires_tty"))
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			book, err := store.GetBook(ctx, ids[0])
			if errors.Is(err, db.ErrNotFound) {
				book = &model.Book{SubjectID: ids[0]}
			} else if err != nil {
				return err
			}
			comments, err := store.ListComments(ctx, db.CommentFilter{SubjectID: ids[0]})
			if err != nil {
				return err
			}
			return runBrowser(*book, comments)
		},
	}
}
