// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"context"
	"sync"
)

// BatchResult is the outcome of one subject in RunBatch.
type BatchResult struct {
	SubjectID string
	Summary   Summary
	Err       error
}

// RunBatch crawls subjectIDs with at most concurrency workers and reports
// every outcome on the returned channel, which is closed when all workers
// are done. Subjects not yet started when ctx is canceled are reported with
// ctx.Err().
func RunBatch(ctx context.Context, subjectIDs []string, concurrency int, worker func(ctx context.Context, subjectID string) (Summary, error)) <-chan BatchResult {
	concurrency = max(1, min(concurrency, len(subjectIDs)))
	jobs := make(chan string)
	results := make(chan BatchResult, len(subjectIDs))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := ctx.Err(); err != nil {
					results <- BatchResult{SubjectID: id, Err: err}
					continue
				}
				summary, err := worker(ctx, id)
				results <- BatchResult{SubjectID: id, Summary: summary, Err: err}
			}
		}()
	}

	go func() {
		for _, id := range subjectIDs {
			jobs <- id
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()
	return results
}
