// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/toeirei/douban-comment/internal/model"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

func sampleComments() []model.Comment {
	return []model.Comment{
		{ID: "101", User: "alice", Content: "好书, \"推荐\"", Rating: ptrFloat(5), Time: "2024-01-02 03:04:05", Location: "北京", VoteCount: ptrInt(12)},
		{ID: "102", User: "bob", Content: "line1\nline2", Time: "2024-02-03"},
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		`a<b>c:d"e/f\g|h?i*j`: "a_b_c_d_e_f_g_h_i_j",
		"  .title. ":          "title",
		"三体":                  "三体",
		"":                    "",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)
	book := model.Book{SubjectID: "1", Title: "三体: 地球往事", Author: "刘慈欣"}
	got := FileName(book, model.StatusRead, now, FormatCSV, CompressNone)
	want := "三体_ 地球往事_刘慈欣_读过评论_20240305_070809.csv"
	if got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}
	got = FileName(model.Book{SubjectID: "42"}, model.StatusWish, now, FormatJSON, CompressZstd)
	if got != "42__想读评论_20240305_070809.json.zst" {
		t.Fatalf("FileName without title = %q", got)
	}
}

func TestParseFormatAndCompression(t *testing.T) {
	if f, err := ParseFormat(" JSON "); err != nil || f != FormatJSON {
		t.Fatalf("ParseFormat(JSON) = %q, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatCSV {
		t.Fatalf("ParseFormat(\"\") = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
	if c, err := ParseCompression("zst"); err != nil || c != CompressZstd {
		t.Fatalf("ParseCompression(zst) = %q, %v", c, err)
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Fatalf("expected error for gzip")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleComments()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "comment_id,user,content,rating,time,location,vote_count" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][2] != "好书, \"推荐\"" || rows[1][3] != "5.0" || rows[1][6] != "12" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][2] != "line1\nline2" || rows[2][3] != NoRating || rows[2][6] != "" {
		t.Fatalf("unexpected second row: %v", rows[2])
	}
}

func TestWriteCSV_CRLFLineEndings(t *testing.T) {
	var buf bytes.Buffer
	one := 3
	if err := WriteCSV(&buf, []model.Comment{{ID: "1", User: "u", Content: "ok", VoteCount: &one}}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "comment_id,user,content,rating,time,location,vote_count\r\n1,u,ok,无,,,3\r\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	book := model.Book{SubjectID: "1", Title: "T", Author: "A"}
	if err := WriteJSON(&buf, book, model.StatusReading, nil); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Label != "在读" || doc.Count != 0 || doc.Comments == nil {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if !strings.Contains(buf.String(), `"comments": []`) {
		t.Fatalf("empty comments should encode as []: %s", buf.String())
	}
}

func TestSaverWritesCompressedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	var saved string
	s := &Saver{
		Dir:         dir,
		Format:      FormatCSV,
		Compression: CompressZstd,
		Now:         func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
		OnSaved:     func(path string, _ model.CrawlResult) { saved = path },
	}
	res := model.CrawlResult{
		Book:     model.Book{SubjectID: "1", Title: "T", Author: "A"},
		Status:   model.StatusRead,
		Comments: sampleComments(),
	}
	if err := s.Save(context.Background(), res); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(saved) != "T_A_读过评论_20240101_000000.csv.zst" {
		t.Fatalf("unexpected saved path %q", saved)
	}
	r, err := OpenReader(saved)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "comment_id,user,content") {
		t.Fatalf("decompressed content unexpected: %q", data)
	}
}

func TestSaverSkipsEmptyResult(t *testing.T) {
	dir := t.TempDir()
	called := false
	s := &Saver{Dir: dir, OnSaved: func(string, model.CrawlResult) { called = true }}
	if err := s.Save(context.Background(), model.CrawlResult{Status: model.StatusRead}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if called || len(entries) != 0 {
		t.Fatalf("expected no output for empty result, got %d files", len(entries))
	}
}
