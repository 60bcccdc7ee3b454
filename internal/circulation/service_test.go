package circulation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-circulation/internal/catalog"
	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/inflight"
	"github.com/segyhp/library-circulation/internal/ledger"
	"github.com/segyhp/library-circulation/internal/session"
	"github.com/segyhp/library-circulation/pkg/client"
)

var now = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

type fakeSession struct {
	mu      sync.Mutex
	active  bool
	expired int
}

func (f *fakeSession) Current() (*session.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return nil, false
	}
	return &session.Session{Token: "token", UserID: 1, Role: domain.RoleUser}, true
}

func (f *fakeSession) Token() (string, bool) {
	s, ok := f.Current()
	if !ok {
		return "", false
	}
	return s.Token, true
}

func (f *fakeSession) Expire(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
	f.expired++
	return nil
}

type fixture struct {
	svc     *Service
	catalog *catalog.Catalog
	session *fakeSession
	calls   *int32
}

func newFixture(t *testing.T, handler http.HandlerFunc) fixture {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	sess := &fakeSession{active: true}
	books := catalog.New()
	books.Replace([]domain.Book{
		{ID: 1, Title: "Kindred", AvailableCopies: 2, TotalCopies: 2},
		{ID: 2, Title: "Dune", AvailableCopies: 0, TotalCopies: 1},
	})

	api := client.New(srv.URL, 2*time.Second, sess)
	estimator := ledger.NewEstimator(ledger.DefaultDailyRate, func() time.Time { return now })

	return fixture{
		svc:     NewService(api, sess, books, estimator),
		catalog: books,
		session: sess,
		calls:   &calls,
	}
}

func writeData(w http.ResponseWriter, status int, data string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"success":true,"data":%s}`, data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"success":false,"message":%q}`, message)
}

const activeLoan = `{"id":5,"book":{"id":1,"title":"Kindred"},"member":{"id":3},"borrowDate":"2024-01-20","dueDate":"2024-02-03"}`

func TestService_BorrowRequiresSession(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusCreated, activeLoan)
	})
	f.session.active = false

	_, err := f.svc.Borrow(context.Background(), 1)

	assert.ErrorIs(t, err, client.ErrNotAuthenticated)
	assert.EqualValues(t, 0, atomic.LoadInt32(f.calls))
}

func TestService_Borrow(t *testing.T) {
	tests := []struct {
		name          string
		bookID        int64
		opts          []BorrowOption
		expectedErr   error
		expectedCalls int32
	}{
		{name: "available book", bookID: 1, expectedCalls: 1},
		{name: "no copies left locally", bookID: 2, expectedErr: ErrNoCopiesAvailable, expectedCalls: 0},
		{name: "forced past the hint", bookID: 2, opts: []BorrowOption{Force()}, expectedCalls: 1},
		{name: "unknown to the catalog", bookID: 99, expectedCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, fmt.Sprintf("/api/borrowings/borrow/%d", tt.bookID), r.URL.Path)
				writeData(w, http.StatusCreated, activeLoan)
			})

			b, err := f.svc.Borrow(context.Background(), tt.bookID, tt.opts...)

			assert.EqualValues(t, tt.expectedCalls, atomic.LoadInt32(f.calls))
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(5), b.ID)
		})
	}
}

func TestService_BorrowUpdatesCatalogOptimistically(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusCreated, activeLoan)
	})

	_, err := f.svc.Borrow(context.Background(), 1)
	require.NoError(t, err)

	e, _ := f.catalog.Get(1)
	assert.Equal(t, 1, e.AvailableCopies)
	assert.True(t, e.Provisional)
}

func TestService_BorrowFailureLeavesCatalog(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusBadRequest, "Member has reached the maximum number of active borrowings")
	})

	_, err := f.svc.Borrow(context.Background(), 1)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, client.KindValidation, apiErr.Kind)
	assert.Equal(t, "Member has reached the maximum number of active borrowings", apiErr.UserMessage())

	e, _ := f.catalog.Get(1)
	assert.Equal(t, 2, e.AvailableCopies)
	assert.False(t, e.Provisional)
	assert.False(t, f.svc.Pending("borrow", 1))
}

func TestService_DoubleReturnIssuesOneCall(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		// the server charges 3.00 whatever the local clock says
		writeData(w, http.StatusOK, `{"id":5,"book":{"id":2,"title":"Dune"},"member":{"id":3},`+
			`"borrowDate":"2024-01-01","dueDate":"2024-01-15","returnDate":"2024-01-20","fine":3.00}`)
	})

	type outcome struct {
		result *ReturnResult
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		r, err := f.svc.Return(context.Background(), 5)
		first <- outcome{r, err}
	}()

	require.Eventually(t, func() bool { return f.svc.Pending("return", 5) }, time.Second, time.Millisecond)

	_, err := f.svc.Return(context.Background(), 5)
	assert.ErrorIs(t, err, inflight.ErrDuplicate)

	close(release)
	got := <-first

	require.NoError(t, got.err)
	assert.True(t, got.result.Fine.Equal(decimal.RequireFromString("3.00")))
	assert.True(t, got.result.Late())
	assert.EqualValues(t, 1, atomic.LoadInt32(f.calls))
	assert.False(t, f.svc.Pending("return", 5))

	e, _ := f.catalog.Get(2)
	assert.Equal(t, 1, e.AvailableCopies)
}

func TestService_ReturnWithoutFine(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, `{"id":5,"book":{"id":1},"member":{"id":3},`+
			`"borrowDate":"2024-01-10","dueDate":"2024-01-24","returnDate":"2024-01-20","fine":null}`)
	})

	result, err := f.svc.Return(context.Background(), 5)

	require.NoError(t, err)
	assert.True(t, result.Fine.IsZero())
	assert.False(t, result.Late())
}

func TestService_AuthFailureEndsSession(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "Invalid or expired JWT token")
	})

	_, err := f.svc.Return(context.Background(), 5)
	kind, ok := client.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, client.KindAuthentication, kind)
	assert.Equal(t, 1, f.session.expired)

	_, err = f.svc.Renew(context.Background(), 5)
	assert.ErrorIs(t, err, client.ErrNotAuthenticated)
	assert.EqualValues(t, 1, atomic.LoadInt32(f.calls))
}

func TestService_Renew(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/borrowings/renew/5", r.URL.Path)
		writeData(w, http.StatusOK, `{"id":5,"book":{"id":1},"member":{"id":3},"borrowDate":"2024-01-10","dueDate":"2024-02-07"}`)
	})

	entry, err := f.svc.Renew(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, ledger.StatusActive, entry.Status)
	assert.Equal(t, "2024-02-07", entry.Borrowing.DueDate.String())
}

func TestService_Dashboard(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/borrowings/current", r.URL.Path)
		writeData(w, http.StatusOK, `[
			{"id":1,"book":{"id":1},"member":{"id":3},"borrowDate":"2024-01-01","dueDate":"2024-01-15"},
			{"id":2,"book":{"id":2},"member":{"id":3},"borrowDate":"2024-01-10","dueDate":"2024-01-24"},
			{"id":3,"book":{"id":3},"member":{"id":3},"borrowDate":"2024-01-06","dueDate":"2024-01-20"}
		]`)
	})

	d, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Loans, 3)

	assert.Equal(t, ledger.StatusOverdue, d.Loans[0].Status)
	assert.Equal(t, 6, d.Loans[0].DaysOverdue)
	assert.Equal(t, ledger.StatusActive, d.Loans[1].Status)
	// due today at midnight, now is noon: half a day rounds up
	assert.Equal(t, ledger.StatusOverdue, d.Loans[2].Status)
	assert.Equal(t, 1, d.Loans[2].DaysOverdue)

	assert.Equal(t, 1, d.Summary.Active)
	assert.Equal(t, 2, d.Summary.Overdue)
	assert.True(t, d.Summary.EstimatedFines.Equal(decimal.NewFromInt(7)))
}

func TestService_DashboardOutlivesCancelledCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		writeData(w, http.StatusOK, `[`+activeLoan+`]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		d   *Dashboard
		err error
	}
	done := make(chan result, 1)
	go func() {
		d, err := f.svc.Dashboard(ctx)
		done <- result{d, err}
	}()

	<-started
	cancel()
	close(release)

	// the fetch may be shared with other callers, so it must not die with the one that started it
	r := <-done
	require.NoError(t, r.err)
	assert.Len(t, r.d.Loans, 1)
	assert.EqualValues(t, 1, atomic.LoadInt32(f.calls))
}

func TestService_OverdueReport(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/stats/overdue-books", r.URL.Path)
		writeData(w, http.StatusOK, `[
			{"id":1,"book":{"id":1},"member":{"id":3,"fullName":"Ada"},"borrowDate":"2024-01-01","dueDate":"2024-01-15"}
		]`)
	})

	entries, summary, err := f.svc.OverdueReport(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.StatusOverdue, entries[0].Status)
	assert.Equal(t, 1, summary.Overdue)
	assert.True(t, summary.EstimatedFines.Equal(decimal.NewFromInt(6)))
}

func TestService_HistoryShowsServerFines(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, `[{"id":1,"book":{"id":1},"member":{"id":3},`+
			`"borrowDate":"2023-12-01","dueDate":"2023-12-15","returnDate":"2023-12-20","fine":4.50}]`)
	})

	entries, err := f.svc.History(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	amount, provisional := entries[0].Fine()
	assert.Equal(t, ledger.StatusReturned, entries[0].Status)
	assert.False(t, provisional)
	assert.True(t, amount.Equal(decimal.RequireFromString("4.50")))
}

func TestService_RefreshCatalogDropsDeltas(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/borrowings/borrow/1":
			writeData(w, http.StatusCreated, activeLoan)
		case "/api/books":
			writeData(w, http.StatusOK, `[{"id":1,"title":"Kindred","availableCopies":2,"totalCopies":2}]`)
		default:
			http.NotFound(w, r)
		}
	})

	_, err := f.svc.Borrow(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.RefreshCatalog(context.Background()))

	e, _ := f.catalog.Get(1)
	assert.Equal(t, 2, e.AvailableCopies)
	assert.False(t, e.Provisional)
}

func TestService_Wishlist(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			writeData(w, http.StatusOK, `[{"id":1,"memberId":3,"book":{"id":2,"title":"Dune"}}]`)
		case r.Method == http.MethodPost:
			writeData(w, http.StatusCreated, `{"id":2,"memberId":3,"book":{"id":1}}`)
		case r.Method == http.MethodDelete:
			writeData(w, http.StatusOK, `{"message":"Book removed from wishlist"}`)
		}
	})
	ctx := context.Background()

	items, err := f.svc.RefreshWishlist(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.True(t, f.catalog.IsWishlisted(2))

	require.NoError(t, f.svc.ToggleWishlist(ctx, 1, true))
	assert.True(t, f.catalog.IsWishlisted(1))

	require.NoError(t, f.svc.ToggleWishlist(ctx, 2, false))
	assert.False(t, f.catalog.IsWishlisted(2))
}

func TestService_NetworkFailureSurfaces(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	srvless := client.New("http://127.0.0.1:1", 200*time.Millisecond, f.session)
	svc := NewService(srvless, f.session, f.catalog, f.svc.Estimator())

	_, err := svc.Borrow(context.Background(), 1)

	kind, ok := client.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, client.KindNetwork, kind)
	assert.False(t, errors.Is(err, client.ErrNotAuthenticated))
}
