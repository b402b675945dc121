// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/douban-comment/internal/model"
)

// CSVHeader is the column order of exported CSV files.
var CSVHeader = []string{"comment_id", "user", "content", "rating", "time", "location", "vote_count"}

// NoRating is written in the rating column when the user gave no stars.
const NoRating = "无"

// CSVRecord renders c in CSVHeader order.
func CSVRecord(c model.Comment) []string {
	rating := NoRating
	if c.Rating != nil {
		rating = strconv.FormatFloat(*c.Rating, 'f', 1, 64)
	}
	votes := ""
	if c.VoteCount != nil {
		votes = strconv.Itoa(*c.VoteCount)
	}
	return []string{c.ID, c.User, c.Content, rating, c.Time, c.Location, votes}
}

// WriteCSV writes a header row followed by one row per comment.
func WriteCSV(w io.Writer, comments []model.Comment) error {
	cw := csv.NewWriter(w)
	// RFC 4180 line endings.
	cw.UseCRLF = true
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, c := range comments {
		if err := cw.Write(CSVRecord(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is the JSON export layout.
type Document struct {
	Book     model.Book      `json:"book"`
	Status   model.Status    `json:"status"`
	Label    string          `json:"label"`
	Count    int             `json:"count"`
	Comments []model.Comment `json:"comments"`
}

// WriteJSON writes an indented Document.
func WriteJSON(w io.Writer, book model.Book, status model.Status, comments []model.Comment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if comments == nil {
		comments = []model.Comment{}
	}
	return enc.Encode(Document{
		Book:     book,
		Status:   status,
		Label:    status.Label(),
		Count:    len(comments),
		Comments: comments,
	})
}

// Encode writes comments to w in the given format and compression.
func Encode(w io.Writer, format Format, compression Compression, book model.Book, status model.Status, comments []model.Comment) error {
	out := w
	var zw *zstd.Encoder
	if compression == CompressZstd {
		var err error
		zw, err = zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("could not create zstd writer: %w", err)
		}
		out = zw
	}

	var err error
	switch format {
	case FormatJSON:
		err = WriteJSON(out, book, status, comments)
	default:
		err = WriteCSV(out, comments)
	}
	if zw != nil {
		if cerr := zw.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("could not finish zstd stream: %w", cerr)
		}
	}
	return err
}

// WriteFile creates path and encodes comments into it.
func WriteFile(path string, format Format, compression Compression, book model.Book, status model.Status, comments []model.Comment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	if err := Encode(f, format, compression, book, status, comments); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// OpenReader returns a reader over an exported file, undoing zstd when the
// name ends in .zst.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, CompressZstd.Ext()) {
		return f, nil
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	return &zstdFile{Decoder: zr, f: f}, nil
}

type zstdFile struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}
