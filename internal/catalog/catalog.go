// Package catalog keeps the client's last known view of the book list.
//
// Local deltas from borrow and return are provisional; the next full fetch
// replaces them with server truth.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/segyhp/library-circulation/internal/domain"
)

// Entry is a book as last seen plus the local delta applied since
type Entry struct {
	domain.Book
	Provisional bool
	Wishlisted  bool
}

// Filter selects books like the catalog page does. Keyword matches title, author or genre.
type Filter struct {
	Keyword       string
	Genre         string
	AvailableOnly bool
	DigitalOnly   bool
}

type Catalog struct {
	mu       sync.RWMutex
	books    map[int64]domain.Book
	order    []int64
	deltas   map[int64]int
	wishlist map[int64]struct{}
}

func New() *Catalog {
	return &Catalog{
		books:    make(map[int64]domain.Book),
		deltas:   make(map[int64]int),
		wishlist: make(map[int64]struct{}),
	}
}

// Replace installs a full server listing and drops every local delta
func (c *Catalog) Replace(books []domain.Book) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.books = make(map[int64]domain.Book, len(books))
	c.order = make([]int64, 0, len(books))
	for _, b := range books {
		if _, seen := c.books[b.ID]; !seen {
			c.order = append(c.order, b.ID)
		}
		c.books[b.ID] = b
	}
	c.deltas = make(map[int64]int)
}

// Upsert refreshes one book from the server and drops its delta
func (c *Catalog) Upsert(book domain.Book) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, seen := c.books[book.ID]; !seen {
		c.order = append(c.order, book.ID)
	}
	c.books[book.ID] = book
	delete(c.deltas, book.ID)
}

// ApplyDelta shifts the available copies of a known book by d and reports whether it was known
func (c *Catalog) ApplyDelta(bookID int64, d int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.books[bookID]; !ok {
		return false
	}
	c.deltas[bookID] += d
	return true
}

// Get returns the book with its delta applied
func (c *Catalog) Get(bookID int64) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.books[bookID]; !ok {
		return Entry{}, false
	}
	return c.entry(bookID), true
}

// Len is the number of books known
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// List returns every book in server order
func (c *Catalog) List() []Entry {
	return c.Search(Filter{})
}

// Search filters the known books locally
func (c *Catalog) Search(f Filter) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))
	genre := strings.TrimSpace(f.Genre)

	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		e := c.entry(id)

		if keyword != "" && !matches(e.Book, keyword) {
			continue
		}
		if genre != "" && !strings.EqualFold(e.Genre, genre) {
			continue
		}
		if f.AvailableOnly && e.AvailableCopies <= 0 {
			continue
		}
		if f.DigitalOnly && !e.HasDigitalCopy {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Genres lists the distinct genres of the known books, sorted
func (c *Catalog) Genres() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, b := range c.books {
		if b.Genre != "" {
			seen[b.Genre] = struct{}{}
		}
	}

	genres := make([]string, 0, len(seen))
	for g := range seen {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

// SetWishlist replaces the set of wishlisted book ids
func (c *Catalog) SetWishlist(bookIDs []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.wishlist = make(map[int64]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		c.wishlist[id] = struct{}{}
	}
}

// MarkWishlisted records a local wishlist change
func (c *Catalog) MarkWishlisted(bookID int64, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if on {
		c.wishlist[bookID] = struct{}{}
	} else {
		delete(c.wishlist, bookID)
	}
}

func (c *Catalog) IsWishlisted(bookID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.wishlist[bookID]
	return ok
}

// entry must be called with the lock held
func (c *Catalog) entry(id int64) Entry {
	b := c.books[id]
	d, provisional := c.deltas[id]

	b.AvailableCopies += d
	if b.AvailableCopies < 0 {
		b.AvailableCopies = 0
	}
	if b.TotalCopies > 0 && b.AvailableCopies > b.TotalCopies {
		b.AvailableCopies = b.TotalCopies
	}

	_, wishlisted := c.wishlist[id]
	return Entry{Book: b, Provisional: provisional && d != 0, Wishlisted: wishlisted}
}

func matches(b domain.Book, keyword string) bool {
	return strings.Contains(strings.ToLower(b.Title), keyword) ||
		strings.Contains(strings.ToLower(b.Author), keyword) ||
		strings.Contains(strings.ToLower(b.Genre), keyword)
}
