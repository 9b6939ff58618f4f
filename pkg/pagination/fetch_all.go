package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds fetch-all configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel page fetches.
	MaxConcurrency int

	// Timeout bounds each individual page fetch.
	Timeout time.Duration

	// PageSize is the page size requested from the backend.
	PageSize int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 8,
		Timeout:        15 * time.Second,
		PageSize:       100,
	}
}

// pageResult is the outcome of fetching a single page.
type pageResult[T any] struct {
	pageNumber int
	items      []T
	err        error
}

// FetchAll fetches every page of a paginated endpoint through a worker pool.
// It returns a map of page number to items for the pages that succeeded; a
// worker error is reported alongside the partial results.
func FetchAll[T any](ctx context.Context, fetch FetchPage[T], cfg Config) (map[int][]T, error) {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}

	start := time.Now()

	// The first page reveals the total page count.
	firstItems, totalPages, err := fetchOne(ctx, fetch, 1, cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}
	if totalPages <= 1 {
		return map[int][]T{1: firstItems}, nil
	}

	log.Info().
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	results := map[int][]T{1: firstItems}
	var resultsMu sync.Mutex

	pageQueue := make(chan int, totalPages)
	pageResults := make(chan pageResult[T], totalPages)

	for page := 2; page <= totalPages; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	var wg sync.WaitGroup
	for i := 0; i < cfg.MaxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pageNum := range pageQueue {
				select {
				case <-ctx.Done():
					return
				default:
				}

				pageCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
				items, _, err := fetchOne(pageCtx, fetch, pageNum, cfg.PageSize)
				cancel()

				select {
				case pageResults <- pageResult[T]{pageNumber: pageNum, items: items, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(pageResults)
	}()

	var firstErr error
	fetched := 1
	for result := range pageResults {
		if result.err != nil {
			log.Warn().
				Err(result.err).
				Int("page", result.pageNumber).
				Msg("Page fetch failed")
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		resultsMu.Lock()
		results[result.pageNumber] = result.items
		fetched++
		resultsMu.Unlock()
	}

	if firstErr != nil {
		return results, fmt.Errorf("partial fetch (%d/%d pages): %w", fetched, totalPages, firstErr)
	}

	log.Info().
		Int("pages", fetched).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return results, nil
}

// fetchOne fetches a single page and unwraps the envelope.
func fetchOne[T any](ctx context.Context, fetch FetchPage[T], page, pageSize int) ([]T, int, error) {
	resp, err := fetch(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	items, err := resp.Unwrap()
	if err != nil {
		return nil, 0, err
	}
	totalPages := 1
	if info := resp.PaginationInfo(); info != nil {
		totalPages = info.TotalPages
	}
	return items, totalPages, nil
}
