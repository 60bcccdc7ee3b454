package handler

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-circulation/internal/auth"
	"github.com/segyhp/library-circulation/internal/config"
	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/mocks"
	"github.com/segyhp/library-circulation/internal/service"
	"github.com/segyhp/library-circulation/pkg/response"
)

const (
	readerUserID   int64 = 1
	readerMemberID int64 = 3
	adminUserID    int64 = 9
)

type testEnv struct {
	router     http.Handler
	tokens     *auth.TokenService
	books      *mocks.MockBookRepository
	members    *mocks.MockMemberRepository
	users      *mocks.MockUserRepository
	borrowings *mocks.MockBorrowingRepository
	wishlist   *mocks.MockWishlistRepository
	digital    *mocks.MockDigitalBookRepository
	store      *mocks.MockFileStore
	db         *fakePinger
}

type fakePinger struct {
	err error
}

func (p *fakePinger) PingContext(context.Context) error { return p.err }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tokens:     auth.NewTokenService("handler-test-secret", time.Hour),
		books:      &mocks.MockBookRepository{},
		members:    &mocks.MockMemberRepository{},
		users:      &mocks.MockUserRepository{},
		borrowings: &mocks.MockBorrowingRepository{},
		wishlist:   &mocks.MockWishlistRepository{},
		digital:    &mocks.MockDigitalBookRepository{},
		store:      &mocks.MockFileStore{},
		db:         &fakePinger{},
	}

	cfg := &config.Config{
		Business: config.BusinessConfig{
			FineDailyRate:       "1.00",
			LoanPeriodDays:      14,
			RenewPeriodDays:     14,
			MaxActiveBorrowings: 5,
		},
		Scheduler: config.SchedulerConfig{Timezone: "UTC"},
	}
	cache := service.NopCache{}
	tx := mocks.Transactor{}

	authService := service.NewAuthService(env.users, env.members, tx, env.tokens)
	bookService := service.NewBookService(env.books, env.borrowings, cache, time.Minute)
	borrowingService := service.NewBorrowingService(env.borrowings, env.books, tx, cache, cfg)
	memberService := service.NewMemberService(env.members, env.users, env.borrowings, tx, authService, cache)
	wishlistService := service.NewWishlistService(env.wishlist, env.books)
	statsService := service.NewStatsService(env.books, env.members, env.borrowings, cache, time.Minute)
	digitalService := service.NewDigitalBookService(env.digital, env.books, tx, env.store, 1024, cache)

	env.router = NewRouter(Handlers{
		Health:       NewHealthHandler(env.db, nil, time.Second),
		Auth:         NewAuthHandler(authService),
		Books:        NewBookHandler(bookService),
		Borrowings:   NewBorrowingHandler(borrowingService, authService),
		Wishlist:     NewWishlistHandler(wishlistService, authService),
		Admin:        NewAdminHandler(bookService, memberService, authService, borrowingService, statsService),
		DigitalBooks: NewDigitalBookHandler(digitalService, 1024),
	}, env.tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return env
}

func (e *testEnv) token(t *testing.T, role string) string {
	t.Helper()

	user := &domain.User{ID: readerUserID, Username: "reader", Role: role}
	if role == domain.RoleAdmin {
		user = &domain.User{ID: adminUserID, Username: "librarian", Role: role}
	}

	token, err := e.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

// asReader makes the member profile lookup of the regular user succeed
func (e *testEnv) asReader() {
	e.members.On("GetByUserID", mock.Anything, readerUserID).
		Return(&domain.Member{ID: readerMemberID, FullName: "Shevek"}, nil)
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRouter_AccessControl(t *testing.T) {
	tests := []struct {
		name            string
		method          string
		path            string
		role            string
		rawToken        string
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "missing token",
			method:          http.MethodGet,
			path:            "/api/borrowings/current",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Full authentication is required to access this resource",
		},
		{
			name:            "forged token",
			method:          http.MethodGet,
			path:            "/api/wishlist",
			rawToken:        "not.a.jwt",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid or expired JWT token",
		},
		{
			name:            "regular user on admin console",
			method:          http.MethodGet,
			path:            "/api/admin/stats",
			role:            domain.RoleUser,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "Access denied",
		},
		{
			name:            "regular user on staff borrowing report",
			method:          http.MethodGet,
			path:            "/api/borrowings/overdue",
			role:            domain.RoleUser,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "Access denied",
		},
		{
			name:            "regular user uploading a digital book",
			method:          http.MethodPost,
			path:            "/api/digital-books/upload",
			role:            domain.RoleUser,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "Access denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			token := tt.rawToken
			if tt.role != "" {
				token = env.token(t, tt.role)
			}

			w := env.do(t, tt.method, tt.path, token, nil, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeEnvelope(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedMessage, resp.Message)
		})
	}
}

func TestRouter_RequestID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(response.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(response.RequestIDHeader))

	w = env.do(t, http.MethodGet, "/health", "", nil, "")
	assert.NotEmpty(t, w.Header().Get(response.RequestIDHeader))
}

func TestHealthHandler_Ready(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health/ready", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	env.db.err = errors.New("connection refused")
	w = env.do(t, http.MethodGet, "/health/ready", "", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthHandler_Signin(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(env *testEnv)
		expectedStatus int
		checkResponse  func(t *testing.T, resp response.Response)
	}{
		{
			name:           "missing password",
			requestBody:    `{"username":"reader"}`,
			setupMock:      func(env *testEnv) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, resp response.Response) {
				assert.Equal(t, "Validation failed", resp.Message)
			},
		},
		{
			name:        "unknown user",
			requestBody: `{"username":"ghost","password":"secret1"}`,
			setupMock: func(env *testEnv) {
				env.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, sql.ErrNoRows)
			},
			expectedStatus: http.StatusUnauthorized,
			checkResponse: func(t *testing.T, resp response.Response) {
				assert.False(t, resp.Success)
				assert.NotEmpty(t, resp.Message)
			},
		},
		{
			name:           "malformed body",
			requestBody:    `{"username":`,
			setupMock:      func(env *testEnv) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, resp response.Response) {
				assert.Equal(t, "Invalid request body", resp.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setupMock(env)

			w := env.do(t, http.MethodPost, "/api/auth/signin", "", strings.NewReader(tt.requestBody), "application/json")

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkResponse(t, decodeEnvelope(t, w))
			env.users.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	env := newTestEnv(t)
	env.users.On("GetByID", mock.Anything, readerUserID).
		Return(&domain.User{ID: readerUserID, Username: "reader", Role: domain.RoleUser}, nil)
	env.asReader()

	w := env.do(t, http.MethodGet, "/api/auth/me", env.token(t, domain.RoleUser), nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data domain.CurrentUser `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "reader", body.Data.Username)
	require.NotNil(t, body.Data.Member)
	assert.Equal(t, readerMemberID, body.Data.Member.ID)
}

func TestBookHandler_Search(t *testing.T) {
	env := newTestEnv(t)
	env.books.On("Search", mock.Anything, domain.BookSearchRequest{Keyword: "le guin", AvailableOnly: true}).
		Return([]*domain.Book{{ID: 1, Title: "The Lathe of Heaven", Author: "Ursula K. Le Guin", AvailableCopies: 1, TotalCopies: 1}}, nil)

	w := env.do(t, http.MethodPost, "/api/books/search", "",
		strings.NewReader(`{"keyword":"le guin","availableOnly":true}`), "application/json")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []domain.Book `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "The Lathe of Heaven", body.Data[0].Title)
	env.books.AssertExpectations(t)
}

func TestBookHandler_Get(t *testing.T) {
	env := newTestEnv(t)
	env.books.On("GetByID", mock.Anything, int64(404)).Return(nil, sql.ErrNoRows)

	w := env.do(t, http.MethodGet, "/api/books/404", "", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBorrowingHandler_Borrow(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(env *testEnv)
		expectedStatus int
		checkResponse  func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "successful borrow",
			path: "/api/borrowings/borrow/7",
			setupMock: func(env *testEnv) {
				env.asReader()
				env.books.On("GetByID", mock.Anything, int64(7)).
					Return(&domain.Book{ID: 7, Title: "The Dispossessed", AvailableCopies: 1, TotalCopies: 1}, nil)
				env.borrowings.On("HasActive", mock.Anything, readerMemberID, int64(7)).Return(false, nil)
				env.borrowings.On("CountActiveByMember", mock.Anything, readerMemberID).Return(int64(0), nil)
				env.books.On("AdjustAvailable", mock.Anything, int64(7), -1).Return(nil)
				env.borrowings.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Borrowing).ID = 55
				}).Return(nil)
				env.borrowings.On("GetByID", mock.Anything, int64(55)).Return(&domain.Borrowing{
					ID:      55,
					Book:    domain.BookSummary{ID: 7, Title: "The Dispossessed"},
					Member:  domain.MemberSummary{ID: readerMemberID},
					DueDate: domain.MustParseDate("2030-01-15"),
					Fine:    decimal.NewNullDecimal(decimal.Zero),
				}, nil)
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var body struct {
					Data domain.Borrowing `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, int64(55), body.Data.ID)
				assert.Equal(t, "2030-01-15", body.Data.DueDate.String())
			},
		},
		{
			name: "no copies left",
			path: "/api/borrowings/borrow/7",
			setupMock: func(env *testEnv) {
				env.asReader()
				env.books.On("GetByID", mock.Anything, int64(7)).
					Return(&domain.Book{ID: 7, AvailableCopies: 0, TotalCopies: 1}, nil)
				env.borrowings.On("HasActive", mock.Anything, readerMemberID, int64(7)).Return(false, nil)
				env.borrowings.On("CountActiveByMember", mock.Anything, readerMemberID).Return(int64(0), nil)
			},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decodeEnvelope(t, w)
				assert.NotEmpty(t, resp.Message)
			},
		},
		{
			name:           "non numeric book id",
			path:           "/api/borrowings/borrow/abc",
			setupMock:      func(env *testEnv) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "Invalid bookId", decodeEnvelope(t, w).Message)
			},
		},
		{
			name: "account without member profile",
			path: "/api/borrowings/borrow/7",
			setupMock: func(env *testEnv) {
				env.members.On("GetByUserID", mock.Anything, readerUserID).Return(nil, sql.ErrNoRows)
			},
			expectedStatus: http.StatusBadRequest,
			checkResponse:  func(t *testing.T, w *httptest.ResponseRecorder) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setupMock(env)

			w := env.do(t, http.MethodPost, tt.path, env.token(t, domain.RoleUser), nil, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkResponse(t, w)
		})
	}
}

func TestBorrowingHandler_Return(t *testing.T) {
	returnedOn := domain.MustParseDate("2024-01-12")

	tests := []struct {
		name           string
		role           string
		setupMock      func(env *testEnv)
		expectedStatus int
	}{
		{
			name: "borrower returns",
			role: domain.RoleUser,
			setupMock: func(env *testEnv) {
				env.asReader()
				open := &domain.Borrowing{
					ID:      5,
					Book:    domain.BookSummary{ID: 7},
					Member:  domain.MemberSummary{ID: readerMemberID},
					DueDate: domain.MustParseDate("2999-01-01"),
				}
				closed := *open
				closed.ReturnDate = &returnedOn
				closed.Fine = decimal.NewNullDecimal(decimal.Zero)

				env.borrowings.On("GetByID", mock.Anything, int64(5)).Return(open, nil).Once()
				env.borrowings.On("MarkReturned", mock.Anything, int64(5), mock.Anything, mock.Anything).Return(nil)
				env.books.On("AdjustAvailable", mock.Anything, int64(7), 1).Return(nil)
				env.borrowings.On("GetByID", mock.Anything, int64(5)).Return(&closed, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "another member's borrowing",
			role: domain.RoleUser,
			setupMock: func(env *testEnv) {
				env.asReader()
				env.borrowings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Borrowing{
					ID:     5,
					Member: domain.MemberSummary{ID: 99},
				}, nil)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "already returned",
			role: domain.RoleAdmin,
			setupMock: func(env *testEnv) {
				env.borrowings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Borrowing{
					ID:         5,
					Member:     domain.MemberSummary{ID: 99},
					ReturnDate: &returnedOn,
				}, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setupMock(env)

			w := env.do(t, http.MethodPut, "/api/borrowings/return/5", env.token(t, tt.role), nil, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			env.borrowings.AssertExpectations(t)
		})
	}
}

func TestBorrowingHandler_TotalFines(t *testing.T) {
	env := newTestEnv(t)
	env.borrowings.On("TotalFinesByMember", mock.Anything, int64(3)).Return(decimal.RequireFromString("4.50"), nil)

	w := env.do(t, http.MethodGet, "/api/borrowings/member/3/total-fines", env.token(t, domain.RoleAdmin), nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data domain.TotalFinesResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Data.MemberID)
	assert.True(t, body.Data.TotalFines.Equal(decimal.RequireFromString("4.5")))
}

func TestWishlistHandler_AddDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.asReader()
	env.books.On("GetByID", mock.Anything, int64(7)).Return(&domain.Book{ID: 7}, nil)
	env.wishlist.On("Exists", mock.Anything, readerMemberID, int64(7)).Return(true, nil)

	w := env.do(t, http.MethodPost, "/api/wishlist/7", env.token(t, domain.RoleUser), nil, "")

	assert.Equal(t, http.StatusConflict, w.Code)
	env.wishlist.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminHandler_CreateBook(t *testing.T) {
	env := newTestEnv(t)
	env.books.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Book) bool {
		return b.Title == "Always Coming Home" && b.TotalCopies == 3 && b.AvailableCopies == 3
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Book).ID = 12
	}).Return(nil)

	w := env.do(t, http.MethodPost, "/api/admin/books", env.token(t, domain.RoleAdmin),
		strings.NewReader(`{"title":"Always Coming Home","author":"Ursula K. Le Guin","totalCopies":3}`), "application/json")

	assert.Equal(t, http.StatusCreated, w.Code)
	env.books.AssertExpectations(t)
}

func TestAdminHandler_UpdateRoleValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/admin/users/4/role", env.token(t, domain.RoleAdmin),
		strings.NewReader(`{"role":"LIBRARIAN"}`), "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.users.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestDigitalBookHandler_Upload(t *testing.T) {
	env := newTestEnv(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("bookId", "3"))
	require.NoError(t, form.WriteField("fileFormat", "epub"))
	part, err := form.CreateFormFile("file", "lathe.epub")
	require.NoError(t, err)
	_, err = part.Write([]byte("PK\x03\x04"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	var stored []byte
	env.books.On("GetByID", mock.Anything, int64(3)).Return(&domain.Book{ID: 3, Title: "The Lathe of Heaven"}, nil)
	env.store.On("Save", mock.Anything, domain.FormatEPUB, mock.Anything).Run(func(args mock.Arguments) {
		stored, _ = io.ReadAll(args.Get(2).(io.Reader))
	}).Return("f00d.epub", int64(4), nil)
	env.digital.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.books.On("SetHasDigitalCopy", mock.Anything, int64(3), true).Return(nil)

	w := env.do(t, http.MethodPost, "/api/digital-books/upload", env.token(t, domain.RoleAdmin), &body, form.FormDataContentType())

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []byte("PK\x03\x04"), stored)
	var resp struct {
		Data domain.DigitalBook `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/api/digital-books/files/f00d.epub", resp.Data.FileURL)
}

func TestDigitalBookHandler_Download(t *testing.T) {
	env := newTestEnv(t)
	env.digital.On("GetByID", mock.Anything, int64(8)).Return(&domain.DigitalBook{
		ID:         8,
		FileFormat: domain.FormatPDF,
		FileName:   "f00d.pdf",
		SizeBytes:  4,
	}, nil)
	env.store.On("Open", mock.Anything, "f00d.pdf").Return(io.NopCloser(strings.NewReader("%PDF")), nil)

	w := env.do(t, http.MethodGet, "/api/digital-books/download/8", env.token(t, domain.RoleUser), nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "f00d.pdf")
	assert.Equal(t, "%PDF", w.Body.String())
}
