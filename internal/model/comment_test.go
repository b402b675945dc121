// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"reflect"
	"testing"
)

func TestStatusLabels(t *testing.T) {
	if StatusRead.Label() != "读过" || StatusReading.Label() != "在读" || StatusWish.Label() != "想读" {
		t.Fatalf("unexpected labels: %s %s %s", StatusRead.Label(), StatusReading.Label(), StatusWish.Label())
	}
	if s, ok := StatusFromLabel("想读"); !ok || s != StatusWish {
		t.Fatalf("StatusFromLabel(想读) = %q, %v", s, ok)
	}
	if _, ok := StatusFromLabel("看过"); ok {
		t.Fatalf("unexpected match for movie label")
	}
}

func TestParseStatuses(t *testing.T) {
	got, err := ParseStatuses([]string{"f", "读过,F"})
	if err != nil {
		t.Fatalf("ParseStatuses: %v", err)
	}
	want := []Status{StatusRead, StatusWish}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	all, err := ParseStatuses(nil)
	if err != nil || !reflect.DeepEqual(all, AllStatuses) {
		t.Fatalf("empty input should yield all statuses, got %v %v", all, err)
	}

	if _, err := ParseStatuses([]string{"X"}); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestCrawlResultRun(t *testing.T) {
	r := CrawlResult{
		Book:       Book{SubjectID: "10583099"},
		Status:     StatusReading,
		Requested:  40,
		Comments:   []Comment{{ID: "1"}, {ID: "2"}},
		Pages:      1,
		StopReason: StopNoResults,
	}
	run := r.Run()
	if run.SubjectID != "10583099" || run.Fetched != 2 || run.Status != StatusReading || run.StopReason != StopNoResults {
		t.Fatalf("unexpected run %+v", run)
	}
}
