package pagination

import (
	"context"
	"sync"
	"time"

	"github.com/promptstudio/api-client/pkg/envelope"
	"github.com/promptstudio/api-client/pkg/request"
)

// FetchPage fetches one page of a paginated endpoint.
type FetchPage[T any] func(ctx context.Context, page, pageSize int) (*envelope.Response[[]T], error)

// Options configures a Paginator.
type Options[T any] struct {
	// Immediate fetches page 1 during New with a background context.
	Immediate bool

	// Retries and RetryDelay are forwarded to the underlying executor.
	Retries    int
	RetryDelay time.Duration

	OnSuccess func([]T)
	OnError   func(string)
}

// Paginator adds a page cursor on top of a single executor. Page starts at 1;
// TotalPages, HasNext, and HasPrevious derive from the pagination block of
// the most recent successful envelope.
type Paginator[T any] struct {
	mu         sync.Mutex
	exec       *request.Executor[[]T]
	fetch      FetchPage[T]
	page       int
	pageSize   int
	totalPages int
}

// New creates a paginator over the given page fetcher.
func New[T any](fetch FetchPage[T], pageSize int, opts Options[T]) *Paginator[T] {
	p := &Paginator[T]{
		fetch:    fetch,
		page:     1,
		pageSize: pageSize,
	}
	p.exec = request.New(p.call, request.Options[[]T]{
		Retries:    opts.Retries,
		RetryDelay: opts.RetryDelay,
		OnSuccess:  opts.OnSuccess,
		OnError:    opts.OnError,
		OnResponse: p.recordPagination,
	})
	if opts.Immediate {
		p.exec.Execute(context.Background())
	}
	return p
}

// call reads the cursor at execution time so a superseding page change is
// always fetched with its own page number.
func (p *Paginator[T]) call(ctx context.Context) (*envelope.Response[[]T], error) {
	p.mu.Lock()
	page, size := p.page, p.pageSize
	p.mu.Unlock()
	return p.fetch(ctx, page, size)
}

// recordPagination tracks the page window of each committed envelope.
func (p *Paginator[T]) recordPagination(resp *envelope.Response[[]T]) {
	info := resp.PaginationInfo()
	if info == nil {
		return
	}
	p.mu.Lock()
	p.totalPages = info.TotalPages
	p.mu.Unlock()
}

// Execute fetches the current page.
func (p *Paginator[T]) Execute(ctx context.Context) {
	p.exec.Execute(ctx)
}

// NextPage advances the cursor and refetches. A no-op on the last page or
// before the first successful fetch.
func (p *Paginator[T]) NextPage(ctx context.Context) {
	p.mu.Lock()
	if p.page >= p.totalPages {
		p.mu.Unlock()
		return
	}
	p.page++
	p.mu.Unlock()
	p.exec.Execute(ctx)
}

// PreviousPage moves the cursor back and refetches. A no-op on page 1.
func (p *Paginator[T]) PreviousPage(ctx context.Context) {
	p.mu.Lock()
	if p.page <= 1 {
		p.mu.Unlock()
		return
	}
	p.page--
	p.mu.Unlock()
	p.exec.Execute(ctx)
}

// GoToPage jumps to page n and refetches. A no-op unless 1 <= n <= TotalPages
// and n differs from the current page.
func (p *Paginator[T]) GoToPage(ctx context.Context, n int) {
	p.mu.Lock()
	if n < 1 || n > p.totalPages || n == p.page {
		p.mu.Unlock()
		return
	}
	p.page = n
	p.mu.Unlock()
	p.exec.Execute(ctx)
}

// Page returns the current 1-based page cursor.
func (p *Paginator[T]) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// TotalPages returns the page count from the most recent successful envelope,
// or 0 before the first success.
func (p *Paginator[T]) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalPages
}

// HasNext reports whether a page beyond the cursor is known to exist.
func (p *Paginator[T]) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page < p.totalPages
}

// HasPrevious reports whether the cursor is past page 1.
func (p *Paginator[T]) HasPrevious() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page > 1
}

// State returns a snapshot of the underlying executor state.
func (p *Paginator[T]) State() request.State[[]T] {
	return p.exec.State()
}

// Reset returns the cursor to page 1 and the executor to idle.
func (p *Paginator[T]) Reset() {
	p.mu.Lock()
	p.page = 1
	p.totalPages = 0
	p.mu.Unlock()
	p.exec.Reset()
}

// Dispose tears down the underlying executor.
func (p *Paginator[T]) Dispose() {
	p.exec.Dispose()
}
