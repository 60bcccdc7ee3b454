package domain

// DashboardStats backs the admin dashboard cards
type DashboardStats struct {
	TotalBooks       int64 `json:"totalBooks" db:"total_books"`
	TotalMembers     int64 `json:"totalMembers" db:"total_members"`
	ActiveBorrowings int64 `json:"activeBorrowings" db:"active_borrowings"`
	OverdueBooks     int64 `json:"overdueBooks" db:"overdue_books"`
}
