package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/repository"
	"github.com/segyhp/library-circulation/internal/storage"
	customError "github.com/segyhp/library-circulation/pkg/errors"
)

// filesRoute prefixes the public URL of stored files
const filesRoute = "/api/digital-books/files/"

type DigitalBookService struct {
	DigitalBookRepo repository.DigitalBookRepository
	BookRepo        repository.BookRepository
	Tx              repository.Transactor
	store           storage.FileStore
	maxBytes        int64
	cache           Cache
}

func NewDigitalBookService(
	digitalBookRepo repository.DigitalBookRepository,
	bookRepo repository.BookRepository,
	tx repository.Transactor,
	store storage.FileStore,
	maxBytes int64,
	cache Cache,
) *DigitalBookService {
	return &DigitalBookService{
		DigitalBookRepo: digitalBookRepo,
		BookRepo:        bookRepo,
		Tx:              tx,
		store:           store,
		maxBytes:        maxBytes,
		cache:           cache,
	}
}

func (s *DigitalBookService) List(ctx context.Context) ([]*domain.DigitalBook, error) {
	digitalBooks, err := s.DigitalBookRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return digitalBooks, nil
}

func (s *DigitalBookService) ByBook(ctx context.Context, bookID int64) ([]*domain.DigitalBook, error) {
	digitalBooks, err := s.DigitalBookRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return digitalBooks, nil
}

func (s *DigitalBookService) ByFormat(ctx context.Context, format string) ([]*domain.DigitalBook, error) {
	normalized, ok := domain.NormalizeFormat(format)
	if !ok {
		return nil, customError.WrapUnsupportedFileFormat(format)
	}

	digitalBooks, err := s.DigitalBookRepo.ListByFormat(ctx, normalized)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return digitalBooks, nil
}

// Upload stores a file for a book and flags the book as having a digital copy
func (s *DigitalBookService) Upload(ctx context.Context, bookID int64, format string, file io.Reader) (*domain.DigitalBook, error) {
	normalized, ok := domain.NormalizeFormat(format)
	if !ok {
		return nil, customError.WrapUnsupportedFileFormat(format)
	}

	book, err := s.BookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, lookupError(err, customError.WrapBookNotFound(bookID))
	}

	fileName, size, err := s.store.Save(ctx, normalized, file)
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return nil, customError.WrapFileTooLarge(s.maxBytes)
	case err != nil:
		return nil, customError.WrapStorageError(err)
	}

	if size == 0 {
		s.discard(ctx, fileName)
		return nil, customError.WrapEmptyFile()
	}

	digitalBook := &domain.DigitalBook{
		BookID:     book.ID,
		BookTitle:  book.Title,
		FileFormat: normalized,
		FileName:   fileName,
		FileURL:    filesRoute + fileName,
		SizeBytes:  size,
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.DigitalBookRepo.Create(ctx, digitalBook); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := s.BookRepo.SetHasDigitalCopy(ctx, book.ID, true); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, fileName)
		return nil, err
	}

	invalidate(ctx, s.cache, cacheKeyBooks)
	slog.InfoContext(ctx, "digital book uploaded",
		"digital_book_id", digitalBook.ID,
		"book_id", book.ID,
		"format", normalized,
		"size_bytes", size,
	)

	return digitalBook, nil
}

// Open returns the record and content of a digital book. The caller closes the reader.
func (s *DigitalBookService) Open(ctx context.Context, id int64) (*domain.DigitalBook, io.ReadCloser, error) {
	digitalBook, err := s.DigitalBookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, lookupError(err, customError.WrapDigitalBookNotFound(id))
	}

	content, err := s.openFile(ctx, digitalBook)
	if err != nil {
		return nil, nil, err
	}
	return digitalBook, content, nil
}

// OpenFile is Open addressed by stored file name
func (s *DigitalBookService) OpenFile(ctx context.Context, fileName string) (*domain.DigitalBook, io.ReadCloser, error) {
	digitalBook, err := s.DigitalBookRepo.GetByFileName(ctx, fileName)
	if err != nil {
		return nil, nil, lookupError(err, customError.NewBusinessError(customError.ErrCodeNotFound, "File not found "+fileName, customError.ErrDigitalBookNotFound))
	}

	content, err := s.openFile(ctx, digitalBook)
	if err != nil {
		return nil, nil, err
	}
	return digitalBook, content, nil
}

func (s *DigitalBookService) openFile(ctx context.Context, digitalBook *domain.DigitalBook) (io.ReadCloser, error) {
	content, err := s.store.Open(ctx, digitalBook.FileName)
	if errors.Is(err, storage.ErrFileNotFound) {
		return nil, customError.WrapDigitalBookNotFound(digitalBook.ID)
	}
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}
	return content, nil
}

// Delete removes a digital copy and clears the book flag when it was the last one
func (s *DigitalBookService) Delete(ctx context.Context, id int64) error {
	var fileName string

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		digitalBook, err := s.DigitalBookRepo.GetByID(ctx, id)
		if err != nil {
			return lookupError(err, customError.WrapDigitalBookNotFound(id))
		}
		fileName = digitalBook.FileName

		if err := s.DigitalBookRepo.Delete(ctx, id); err != nil {
			return lookupError(err, customError.WrapDigitalBookNotFound(id))
		}

		remaining, err := s.DigitalBookRepo.CountByBook(ctx, digitalBook.BookID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if remaining == 0 {
			if err := s.BookRepo.SetHasDigitalCopy(ctx, digitalBook.BookID, false); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discard(ctx, fileName)
	invalidate(ctx, s.cache, cacheKeyBooks)

	return nil
}

func (s *DigitalBookService) discard(ctx context.Context, fileName string) {
	if err := s.store.Delete(ctx, fileName); err != nil {
		slog.WarnContext(ctx, "failed to delete stored file", "file_name", fileName, "error", err)
	}
}
