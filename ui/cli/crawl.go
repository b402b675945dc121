// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/toeirei/douban-comment/internal/db"
	"github.com/toeirei/douban-comment/internal/douban"
	"github.com/toeirei/douban-comment/internal/export"
	"github.com/toeirei/douban-comment/internal/i18n"
	"github.com/toeirei/douban-comment/internal/logging"
	"github.com/toeirei/douban-comment/internal/model"
)

var subjectIDPattern = regexp.MustCompile(`^\d+$`)

// subjectURLPattern extracts the id from a pasted book URL.
var subjectURLPattern = regexp.MustCompile(`/subject/(\d+)`)

// normalizeSubjectIDs accepts bare ids and book URLs and drops duplicates.
func normalizeSubjectIDs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, a := range args {
		id := strings.TrimSpace(a)
		if m := subjectURLPattern.FindStringSubmatch(id); m != nil {
			id = m[1]
		}
		if !subjectIDPattern.MatchString(id) {
			return nil, errors.New(i18n.T("crawl.invalid_id", a))
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl <subject-id>...",
		Short: i18n.T("cli.crawl.short"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, args)
		},
	}
}

// newClient builds a Douban session from the loaded config.
func newClient() (*douban.Client, error) {
	return douban.NewClient(douban.Options{
		BaseURL:   appConfig.Douban.BaseURL,
		Cookies:   appConfig.Douban.Cookies,
		UserAgent: appConfig.Douban.UserAgent,
		Timeout:   appConfig.Crawl.Timeout,
		DelayMin:  appConfig.Crawl.DelayMin,
		DelayMax:  appConfig.Crawl.DelayMax,
		NoDelay:   appConfig.Crawl.NoDelay,
		Retries:   uint(appConfig.Crawl.Retries),
	})
}

// openStore opens the configured database.
func openStore() (*db.BunStore, error) {
	s, err := db.Open(appConfig.Database.Type, appConfig.Database.Dsn)
	if err != nil {
		return nil, errors.New(i18n.T("db.error_open", err))
	}
	return s, nil
}

// crawlSettings is the validated subset of the config a crawl needs.
type crawlSettings struct {
	statuses    []model.Status
	sort        string
	format      export.Format
	compression export.Compression
}

func loadCrawlSettings() (crawlSettings, error) {
	var s crawlSettings
	var err error
	if s.statuses, err = model.ParseStatuses(appConfig.Crawl.Statuses); err != nil {
		return s, err
	}
	s.sort = appConfig.Crawl.Sort
	if s.sort == "" {
		s.sort = douban.SortScore
	}
	if !douban.ValidSort(s.sort) {
		return s, fmt.Errorf("unsupported sort %q (want score, time or new_score)", s.sort)
	}
	if s.format, err = export.ParseFormat(appConfig.Output.Format); err != nil {
		return s, err
	}
	if s.compression, err = export.ParseCompression(appConfig.Output.Compress); err != nil {
		return s, err
	}
	return s, nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ids, err := normalizeSubjectIDs(args)
	if err != nil {
		return err
	}
	settings, err := loadCrawlSettings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store db.Store
	if appConfig.Database.Enabled {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	out := &lockedWriter{w: cmd.OutOrStdout()}
	multi := len(ids) > 1

	worker := func(ctx context.Context, id string) (douban.Summary, error) {
		client, err := newClient()
		if err != nil {
			return douban.Summary{}, err
		}
		p := newPrinter(out, id, multi)
		p.line(i18n.T("crawl.initialized"))
		p.line(i18n.T("crawl.target", id))
		p.line(i18n.T("crawl.sort", settings.sort))
		p.line(i18n.T("crawl.fetching_book"))

		saver := &export.Saver{
			Dir:         appConfig.Output.Dir,
			Format:      settings.format,
			Compression: settings.compression,
			OnSaved: func(path string, res model.CrawlResult) {
				p.line(i18n.T("crawl.saved", len(res.Comments), path))
			},
		}
		sinks := douban.MultiSink{saver}
		if store != nil {
			sinks = append(sinks, &db.Sink{
				Store: store,
				OnSaved: func(res model.CrawlResult, added int) {
					p.line(i18n.T("crawl.db_saved", len(res.Comments), added))
				},
			})
		}

		crawler := &douban.Crawler{
			Client:         client,
			Statuses:       settings.statuses,
			Sort:           settings.sort,
			AnonymousLimit: appConfig.Crawl.AnonymousLimit,
			Sink:           sinks,
			Observer:       &crawlObserver{p: p, loggedIn: client.LoggedIn()},
		}
		return crawler.Run(ctx, id)
	}

	failed := 0
	for r := range douban.RunBatch(ctx, ids, appConfig.Crawl.Concurrency, worker) {
		p := newPrinter(out, r.SubjectID, multi)
		for _, tabErr := range r.Summary.Errors {
			logging.Warnf("%v", tabErr)
		}
		if r.Err != nil {
			failed++
			logging.Errorf("%s", i18n.T("crawl.subject_failed", r.SubjectID, r.Err))
			continue
		}
		p.line(i18n.T("crawl.subject_done", r.SubjectID, r.Summary.Book.Title, r.Summary.Total()))
	}
	if failed > 0 {
		return errors.New(i18n.T("crawl.failed_count", failed, len(ids)))
	}
	return nil
}

// lockedWriter serializes writes from concurrent workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// printer writes one line per call, prefixed with the subject id when
// several subjects are crawled at once.
type printer struct {
	w      io.Writer
	prefix string
}

func newPrinter(w io.Writer, subjectID string, multi bool) *printer {
	p := &printer{w: w}
	if multi {
		p.prefix = "[" + subjectID + "] "
	}
	return p
}

func (p *printer) line(s string) {
	_, _ = fmt.Fprintln(p.w, p.prefix+s)
}

// crawlObserver reports crawl progress in the user's language.
type crawlObserver struct {
	p        *printer
	loggedIn bool
}

func (o *crawlObserver) BookLoaded(book model.Book) {
	o.p.line(i18n.T("crawl.book_title", book.Title))
	o.p.line(i18n.T("crawl.book_author", book.Author))
	o.p.line(i18n.T("crawl.fetching_counts"))
}

func (o *crawlObserver) CountsLoaded(_ model.Book, counts model.CommentCounts) {
	for _, s := range model.AllStatuses {
		if n, ok := counts[s]; ok {
			o.p.line(i18n.T("crawl.count_line", s.Label(), n))
		}
	}
}

func (o *crawlObserver) StatusStarted(_ model.Book, status model.Status, count, limit int) {
	o.p.line(i18n.T("crawl.status_start", status.Label()))
	if o.loggedIn {
		o.p.line(i18n.T("crawl.logged_in_limit", count))
	} else {
		o.p.line(i18n.T("crawl.anonymous_limit", limit))
	}
}

func (o *crawlObserver) PageFetched(ev douban.PageEvent) {
	o.p.line(i18n.T("crawl.page", ev.Page, ev.Start, ev.Parsed, ev.Added, ev.Total))
}

func (o *crawlObserver) StatusFinished(res model.CrawlResult, err error) {
	label := res.Status.Label()
	if err != nil {
		o.p.line(i18n.T("crawl.status_failed", label, err))
	}
	if len(res.Comments) == 0 {
		o.p.line(i18n.T("crawl.none", label))
		return
	}
	o.p.line(i18n.T("crawl.status_done", label, reasonText(res.StopReason), len(res.Comments)))
}

func reasonText(r model.StopReason) string {
	if r == "" {
		return ""
	}
	return i18n.T("reason." + string(r))
}
