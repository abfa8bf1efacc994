package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// maxPageSize is the largest page Portal serves per search request.
const maxPageSize = 100

// SearchOptions tunes a paginated search. The zero value searches with
// Portal's default ordering, full pages and no result cap.
type SearchOptions struct {
	SortField string
	SortOrder string

	// Max caps the total number of results. Zero means no cap.
	Max int

	// PageSize is the page size requested from Portal, capped at 100.
	PageSize int
}

// Search is a lazy cursor over a paginated Portal search. Pages are fetched
// on demand with Next; the sequence is finite and may be abandoned at any
// point or rewound with Reset.
type Search[T any] struct {
	ses  *Session
	path string
	q    string
	opts SearchOptions

	start int
	count int
	total int
	done  bool
}

func newSearch[T any](ses *Session, path, q string, opts *SearchOptions) *Search[T] {
	s := &Search[T]{ses: ses, path: path, q: q, start: 1}
	if opts != nil {
		s.opts = *opts
	}
	if s.opts.PageSize <= 0 || s.opts.PageSize > maxPageSize {
		s.opts.PageSize = maxPageSize
	}
	return s
}

// Next fetches and returns the next page of results, or nil when the
// sequence is exhausted.
func (s *Search[T]) Next(ctx context.Context) ([]T, error) {
	if s.done {
		return nil, nil
	}

	num := s.opts.PageSize
	if s.opts.Max > 0 && s.opts.Max-s.count < num {
		num = s.opts.Max - s.count
	}
	if num <= 0 {
		s.done = true
		return nil, nil
	}

	form := url.Values{}
	form.Set("q", s.q)
	form.Set("start", strconv.Itoa(s.start))
	form.Set("num", strconv.Itoa(num))
	if s.opts.SortField != "" {
		form.Set("sortField", s.opts.SortField)
	}
	if s.opts.SortOrder != "" {
		form.Set("sortOrder", s.opts.SortOrder)
	}

	raw, err := s.ses.post(ctx, s.path, form)
	if err != nil {
		return nil, err
	}

	// portals/self/users reports its page under "users" rather than
	// "results"; everything else is identical.
	var page struct {
		Total     int `json:"total"`
		Num       int `json:"num"`
		NextStart int `json:"nextStart"`
		Results   []T `json:"results"`
		Users     []T `json:"users"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding %s page: %v", s.path, err)}
	}

	results := page.Results
	if results == nil {
		results = page.Users
	}

	s.total = page.Total
	s.count += len(results)
	s.start = page.NextStart
	if page.NextStart <= 0 || len(results) == 0 || (s.opts.Max > 0 && s.count >= s.opts.Max) {
		s.done = true
	}
	return results, nil
}

// All drains the remaining pages into a single slice.
func (s *Search[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	for {
		page, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return all, nil
		}
		all = append(all, page...)
	}
}

// Reset rewinds the cursor so the search can be replayed from the start.
func (s *Search[T]) Reset() {
	s.start = 1
	s.count = 0
	s.total = 0
	s.done = false
}

// Total is the full result count the server reported on the last page
// fetched, regardless of any Max cap.
func (s *Search[T]) Total() int { return s.total }
