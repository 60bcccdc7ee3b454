package service

import (
	"context"
	"time"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/repository"
)

type StatsService struct {
	BookRepo      repository.BookRepository
	MemberRepo    repository.MemberRepository
	BorrowingRepo repository.BorrowingRepository
	cache         Cache
	cacheTTL      time.Duration
	Now           func() time.Time
}

func NewStatsService(
	bookRepo repository.BookRepository,
	memberRepo repository.MemberRepository,
	borrowingRepo repository.BorrowingRepository,
	cache Cache,
	cacheTTL time.Duration,
) *StatsService {
	return &StatsService{
		BookRepo:      bookRepo,
		MemberRepo:    memberRepo,
		BorrowingRepo: borrowingRepo,
		cache:         cache,
		cacheTTL:      cacheTTL,
		Now:           time.Now,
	}
}

// Dashboard returns the admin dashboard counters
func (s *StatsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	return cached(ctx, s.cache, cacheKeyDashboard, s.cacheTTL, func() (*domain.DashboardStats, error) {
		var (
			stats domain.DashboardStats
			err   error
		)

		if stats.TotalBooks, err = s.BookRepo.Count(ctx); err != nil {
			return nil, err
		}
		if stats.TotalMembers, err = s.MemberRepo.Count(ctx); err != nil {
			return nil, err
		}
		if stats.ActiveBorrowings, err = s.BorrowingRepo.CountActive(ctx); err != nil {
			return nil, err
		}
		if stats.OverdueBooks, err = s.BorrowingRepo.CountOverdue(ctx, domain.NewDate(s.Now())); err != nil {
			return nil, err
		}

		return &stats, nil
	})
}
