// Package records keeps the paginated client-side cache over the /records
// resource. The server owns the data; the cache holds exactly one page and
// may lag behind the server until the next List. Errors propagate to callers
// verbatim — the HTTP layer already surfaced them to the user.
package records

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/dnovikovs/recordkeeper/internal/client/api"
	"github.com/dnovikovs/recordkeeper/internal/client/models"
	"github.com/dnovikovs/recordkeeper/internal/validate"
)

const defaultPageSize = 10

// Store is the single access point for the record cache.
type Store struct {
	mu       sync.Mutex
	items    []models.Record
	total    int
	page     int
	pageSize int

	api api.Client
}

func NewStore(client api.Client) *Store {
	return &Store{api: client, page: 1, pageSize: defaultPageSize}
}

type listResponse struct {
	Records []models.Record `json:"records"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
}

// List fetches the current page merged with the given filters and replaces
// the cached page wholesale. When Lists race, whichever response settles
// last wins.
func (s *Store) List(ctx context.Context, filters map[string]string) error {
	s.mu.Lock()
	params := url.Values{}
	params.Set("page", strconv.Itoa(s.page))
	params.Set("limit", strconv.Itoa(s.pageSize))
	s.mu.Unlock()

	for k, v := range filters {
		params.Set(k, v)
	}

	var res listResponse
	if err := s.api.Get(ctx, "/records", params, &res); err != nil {
		return err
	}

	s.mu.Lock()
	s.items = res.Records
	s.total = res.Total
	if res.Page > 0 {
		s.page = res.Page
	}
	s.mu.Unlock()
	return nil
}

// Create validates the form, posts it, and prepends the server's canonical
// record to the cached page without re-fetching.
func (s *Store) Create(ctx context.Context, form models.RecordForm) (*models.Record, error) {
	if err := validate.Struct(form); err != nil {
		return nil, err
	}

	var rec models.Record
	if err := s.api.Post(ctx, "/records", form, &rec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.items = append([]models.Record{rec}, s.items...)
	s.total++
	s.mu.Unlock()
	return &rec, nil
}

// Update sends the full form for id and swaps the cached copy in place. A
// record not on the current page leaves the cache untouched; it will catch
// up on the next List.
func (s *Store) Update(ctx context.Context, id string, form models.RecordForm) (*models.Record, error) {
	if err := validate.Struct(form); err != nil {
		return nil, err
	}

	var rec models.Record
	if err := s.api.Put(ctx, "/records/"+id, form, &rec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = rec
			break
		}
	}
	s.mu.Unlock()
	return &rec, nil
}

// Delete removes the record remotely, then from the cached page if present.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, "/records/"+id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.total--
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// GetOne fetches a single record without touching the cache.
func (s *Store) GetOne(ctx context.Context, id string) (*models.Record, error) {
	var rec models.Record
	if err := s.api.Get(ctx, "/records/"+id, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Records returns a copy of the cached page in server order.
func (s *Store) Records() []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Record, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *Store) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Store) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSize
}

// TotalPages derives the page count from the server-side total.
func (s *Store) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPagesLocked()
}

func (s *Store) totalPagesLocked() int {
	if s.pageSize == 0 {
		return 0
	}
	return (s.total + s.pageSize - 1) / s.pageSize
}

// Statistics are computed over the loaded page only, not the full dataset.
type Statistics struct {
	Income  float64
	Expense float64
	Balance float64
	Count   int
}

// Statistics aggregates the cached page on demand.
func (s *Store) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Statistics
	for _, r := range s.items {
		switch r.Type {
		case models.RecordTypeIncome:
			stats.Income += r.Amount
		case models.RecordTypeExpense:
			stats.Expense += r.Amount
		}
	}
	stats.Balance = stats.Income - stats.Expense
	stats.Count = len(s.items)
	return stats
}

// GoToPage moves to page and re-fetches. Out-of-range pages are a no-op:
// the current page and cache stay as they are.
func (s *Store) GoToPage(ctx context.Context, page int) error {
	s.mu.Lock()
	if page < 1 || page > s.totalPagesLocked() {
		s.mu.Unlock()
		return nil
	}
	s.page = page
	s.mu.Unlock()

	return s.List(ctx, nil)
}

func (s *Store) NextPage(ctx context.Context) error {
	return s.GoToPage(ctx, s.Page()+1)
}

func (s *Store) PrevPage(ctx context.Context) error {
	return s.GoToPage(ctx, s.Page()-1)
}
