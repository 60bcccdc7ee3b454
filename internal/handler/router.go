package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/library-circulation/internal/auth"
	"github.com/segyhp/library-circulation/internal/repository"
	"github.com/segyhp/library-circulation/pkg/response"
)

// Handlers groups everything the router dispatches to
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	Books        *BookHandler
	Borrowings   *BorrowingHandler
	Wishlist     *WishlistHandler
	Admin        *AdminHandler
	DigitalBooks *DigitalBookHandler
}

// NewRouter mounts the library API
func NewRouter(h Handlers, tokens *auth.TokenService, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()

	router.Use(RequestID)
	router.Use(response.LoggingMiddleware(logger))
	router.Use(response.CORSMiddleware)

	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	authenticated := Authenticate(tokens)

	// Auth
	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/signin", h.Auth.Signin).Methods(http.MethodPost)
	authRoutes.HandleFunc("/signup", h.Auth.Signup).Methods(http.MethodPost)
	authRoutes.HandleFunc("/setup-admin", h.Auth.SetupAdmin).Methods(http.MethodPost)
	authRoutes.Handle("/me", authenticated(http.HandlerFunc(h.Auth.Me))).Methods(http.MethodGet)

	// Catalog
	books := api.PathPrefix("/books").Subrouter()
	books.HandleFunc("", h.Books.List).Methods(http.MethodGet)
	books.HandleFunc("/search", h.Books.Search).Methods(http.MethodPost, http.MethodGet)
	books.HandleFunc("/available", h.Books.Available).Methods(http.MethodGet)
	books.HandleFunc("/digital", h.Books.Digital).Methods(http.MethodGet)
	books.HandleFunc("/popular", h.Books.Popular).Methods(http.MethodGet)
	books.HandleFunc("/genres", h.Books.Genres).Methods(http.MethodGet)
	books.HandleFunc("/{id:[0-9]+}", h.Books.Get).Methods(http.MethodGet)

	// Borrowings
	borrowings := api.PathPrefix("/borrowings").Subrouter()
	borrowings.Use(authenticated)
	borrowings.HandleFunc("/borrow/{bookId}", h.Borrowings.Borrow).Methods(http.MethodPost)
	borrowings.HandleFunc("/return/{id}", h.Borrowings.Return).Methods(http.MethodPut)
	borrowings.HandleFunc("/renew/{id}", h.Borrowings.Renew).Methods(http.MethodPut)
	borrowings.HandleFunc("/current", h.Borrowings.Current).Methods(http.MethodGet)
	borrowings.HandleFunc("/history", h.Borrowings.History).Methods(http.MethodGet)

	staff := borrowings.NewRoute().Subrouter()
	staff.Use(RequireAdmin)
	staff.HandleFunc("/overdue", h.Borrowings.Overdue).Methods(http.MethodGet)
	staff.HandleFunc("/calculate-fines", h.Borrowings.CalculateFines).Methods(http.MethodPost)
	staff.HandleFunc("/book/{bookId}", h.Borrowings.ByBook).Methods(http.MethodGet)
	staff.HandleFunc("/member/{memberId}", h.Borrowings.ByMember(repository.BorrowingsAll)).Methods(http.MethodGet)
	staff.HandleFunc("/member/{memberId}/current", h.Borrowings.ByMember(repository.BorrowingsCurrent)).Methods(http.MethodGet)
	staff.HandleFunc("/member/{memberId}/history", h.Borrowings.ByMember(repository.BorrowingsHistory)).Methods(http.MethodGet)
	staff.HandleFunc("/member/{memberId}/total-fines", h.Borrowings.TotalFines).Methods(http.MethodGet)

	borrowings.HandleFunc("/{id:[0-9]+}", h.Borrowings.Get).Methods(http.MethodGet)

	// Wishlist
	wishlist := api.PathPrefix("/wishlist").Subrouter()
	wishlist.Use(authenticated)
	wishlist.HandleFunc("", h.Wishlist.List).Methods(http.MethodGet)
	wishlist.HandleFunc("/{bookId}", h.Wishlist.Add).Methods(http.MethodPost)
	wishlist.HandleFunc("/{bookId}", h.Wishlist.Remove).Methods(http.MethodDelete)

	// Admin console
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authenticated, RequireAdmin)
	admin.HandleFunc("/books", h.Admin.ListBooks).Methods(http.MethodGet)
	admin.HandleFunc("/books", h.Admin.CreateBook).Methods(http.MethodPost)
	admin.HandleFunc("/books/{id}", h.Admin.UpdateBook).Methods(http.MethodPut)
	admin.HandleFunc("/books/{id}", h.Admin.DeleteBook).Methods(http.MethodDelete)
	admin.HandleFunc("/members", h.Admin.ListMembers).Methods(http.MethodGet)
	admin.HandleFunc("/members", h.Admin.CreateMember).Methods(http.MethodPost)
	admin.HandleFunc("/members/{id}", h.Admin.GetMember).Methods(http.MethodGet)
	admin.HandleFunc("/members/{id}", h.Admin.UpdateMember).Methods(http.MethodPut)
	admin.HandleFunc("/members/{id}", h.Admin.DeleteMember).Methods(http.MethodDelete)
	admin.HandleFunc("/users", h.Admin.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/admin", h.Admin.CreateAdmin).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}/role", h.Admin.UpdateRole).Methods(http.MethodPut)
	admin.HandleFunc("/borrowings", h.Admin.Borrowings).Methods(http.MethodGet)
	admin.HandleFunc("/stats", h.Admin.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/stats/dashboard", h.Admin.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/stats/overdue-books", h.Admin.OverdueBooks).Methods(http.MethodGet)

	// Digital books
	digital := api.PathPrefix("/digital-books").Subrouter()
	digital.HandleFunc("", h.DigitalBooks.List).Methods(http.MethodGet)
	digital.HandleFunc("/book/{bookId}", h.DigitalBooks.ByBook).Methods(http.MethodGet)
	digital.HandleFunc("/format/{format}", h.DigitalBooks.ByFormat).Methods(http.MethodGet)

	files := digital.NewRoute().Subrouter()
	files.Use(authenticated)
	files.HandleFunc("/files/{fileName}", h.DigitalBooks.File).Methods(http.MethodGet)
	files.HandleFunc("/download/{id}", h.DigitalBooks.Download).Methods(http.MethodGet)

	manage := digital.NewRoute().Subrouter()
	manage.Use(authenticated, RequireAdmin)
	manage.HandleFunc("/upload", h.DigitalBooks.Upload).Methods(http.MethodPost)
	manage.HandleFunc("/{id:[0-9]+}", h.DigitalBooks.Delete).Methods(http.MethodDelete)

	return router
}
