package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrBookNotFound          = errors.New("book not found")
	ErrMemberNotFound        = errors.New("member not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrBorrowingNotFound     = errors.New("borrowing record not found")
	ErrDigitalBookNotFound   = errors.New("digital book not found")
	ErrNoCopiesAvailable     = errors.New("book is not available for borrowing")
	ErrAlreadyBorrowed       = errors.New("book already borrowed by member")
	ErrBorrowLimitReached    = errors.New("maximum borrowing limit reached")
	ErrAlreadyReturned       = errors.New("book has already been returned")
	ErrRenewOverdue          = errors.New("overdue borrowings cannot be renewed")
	ErrNotBorrower           = errors.New("borrowing belongs to another member")
	ErrUsernameTaken         = errors.New("username is already taken")
	ErrEmailInUse            = errors.New("email is already in use")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrAdminExists           = errors.New("admin user already exists")
	ErrMemberHasBorrowings   = errors.New("member has active borrowings")
	ErrAlreadyInWishlist     = errors.New("book is already in wishlist")
	ErrNotInWishlist         = errors.New("book is not in wishlist")
	ErrUnsupportedFileFormat = errors.New("unsupported file format")
	ErrEmptyFile             = errors.New("file is empty")
	ErrNoMemberProfile       = errors.New("user has no member profile")
	ErrCopiesOnLoan          = errors.New("total copies below copies on loan")
	ErrBookHasBorrowings     = errors.New("book has borrowing records")
	ErrFileTooLarge          = errors.New("file exceeds the upload limit")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeNoCopiesAvailable  = "NO_COPIES_AVAILABLE"
	ErrCodeAlreadyBorrowed    = "ALREADY_BORROWED"
	ErrCodeBorrowLimitReached = "BORROW_LIMIT_REACHED"
	ErrCodeAlreadyReturned    = "ALREADY_RETURNED"
	ErrCodeRenewOverdue       = "RENEW_OVERDUE"
	ErrCodeNotBorrower        = "NOT_BORROWER"
	ErrCodeDuplicate          = "DUPLICATE"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeMemberHasLoans     = "MEMBER_HAS_BORROWINGS"
	ErrCodeInvalidFile        = "INVALID_FILE"
	ErrCodeNoMemberProfile    = "NO_MEMBER_PROFILE"
	ErrCodeInvalidCopies      = "INVALID_COPIES"
	ErrCodeBookInUse          = "BOOK_IN_USE"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeCacheError         = "CACHE_ERROR"
	ErrCodeStorageError       = "STORAGE_ERROR"
)

func WrapBookNotFound(bookID int64) *BusinessError {
	return NewBusinessError(ErrCodeNotFound, fmt.Sprintf("Book not found with id: %d", bookID), ErrBookNotFound)
}

func WrapMemberNotFound(memberID int64) *BusinessError {
	return NewBusinessError(ErrCodeNotFound, fmt.Sprintf("Member not found with id: %d", memberID), ErrMemberNotFound)
}

func WrapUserNotFound(userID int64) *BusinessError {
	return NewBusinessError(ErrCodeNotFound, fmt.Sprintf("User not found with id: %d", userID), ErrUserNotFound)
}

func WrapBorrowingNotFound(borrowingID int64) *BusinessError {
	return NewBusinessError(ErrCodeNotFound, fmt.Sprintf("Borrowing record not found with id: %d", borrowingID), ErrBorrowingNotFound)
}

func WrapDigitalBookNotFound(id int64) *BusinessError {
	return NewBusinessError(ErrCodeNotFound, fmt.Sprintf("Digital book not found with id: %d", id), ErrDigitalBookNotFound)
}

func WrapNoCopiesAvailable(bookID int64) *BusinessError {
	return NewBusinessError(ErrCodeNoCopiesAvailable, fmt.Sprintf("Book %d is not available for borrowing", bookID), ErrNoCopiesAvailable)
}

func WrapAlreadyBorrowed(bookID int64) *BusinessError {
	return NewBusinessError(ErrCodeAlreadyBorrowed, fmt.Sprintf("You have already borrowed book %d", bookID), ErrAlreadyBorrowed)
}

func WrapBorrowLimitReached(limit int) *BusinessError {
	return NewBusinessError(ErrCodeBorrowLimitReached, fmt.Sprintf("You have reached the maximum borrowing limit of %d books", limit), ErrBorrowLimitReached)
}

func WrapAlreadyReturned(borrowingID int64) *BusinessError {
	return NewBusinessError(ErrCodeAlreadyReturned, fmt.Sprintf("Borrowing %d has already been returned", borrowingID), ErrAlreadyReturned)
}

func WrapRenewOverdue(borrowingID int64) *BusinessError {
	return NewBusinessError(ErrCodeRenewOverdue, fmt.Sprintf("Borrowing %d is overdue and cannot be renewed", borrowingID), ErrRenewOverdue)
}

func WrapNotBorrower(borrowingID int64) *BusinessError {
	return NewBusinessError(ErrCodeNotBorrower, fmt.Sprintf("Borrowing %d belongs to another member", borrowingID), ErrNotBorrower)
}

func WrapUsernameTaken(username string) *BusinessError {
	return NewBusinessError(ErrCodeDuplicate, fmt.Sprintf("Username %s is already taken", username), ErrUsernameTaken)
}

func WrapEmailInUse(email string) *BusinessError {
	return NewBusinessError(ErrCodeDuplicate, fmt.Sprintf("Email %s is already in use", email), ErrEmailInUse)
}

func WrapInvalidCredentials() *BusinessError {
	return NewBusinessError(ErrCodeInvalidCredentials, "Invalid username or password", ErrInvalidCredentials)
}

func WrapAdminExists() *BusinessError {
	return NewBusinessError(ErrCodeDuplicate, "Admin user already exists. Use regular admin creation.", ErrAdminExists)
}

func WrapMemberHasBorrowings(memberID int64) *BusinessError {
	return NewBusinessError(ErrCodeMemberHasLoans, fmt.Sprintf("Cannot delete member %d with active borrowings", memberID), ErrMemberHasBorrowings)
}

func WrapAlreadyInWishlist(bookID int64) *BusinessError {
	return NewBusinessError(ErrCodeDuplicate, fmt.Sprintf("Book %d is already in your wishlist", bookID), ErrAlreadyInWishlist)
}

func WrapNotInWishlist(bookID int64) *BusinessError {
	return NewBusinessError(ErrCodeNotFound, fmt.Sprintf("Book %d is not in your wishlist", bookID), ErrNotInWishlist)
}

func WrapUnsupportedFileFormat(format string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidFile, fmt.Sprintf("Unsupported file format: %s", format), ErrUnsupportedFileFormat)
}

func WrapEmptyFile() *BusinessError {
	return NewBusinessError(ErrCodeInvalidFile, "File is empty", ErrEmptyFile)
}

func WrapNoMemberProfile(username string) *BusinessError {
	return NewBusinessError(ErrCodeNoMemberProfile, fmt.Sprintf("User %s has no member profile", username), ErrNoMemberProfile)
}

func WrapCopiesOnLoan(bookID int64, onLoan int) *BusinessError {
	return NewBusinessError(ErrCodeInvalidCopies, fmt.Sprintf("Book %d has %d copies on loan; total copies cannot be lower", bookID, onLoan), ErrCopiesOnLoan)
}

func WrapBookHasBorrowings(bookID int64) *BusinessError {
	return NewBusinessError(ErrCodeBookInUse, fmt.Sprintf("Cannot delete book %d with borrowing records", bookID), ErrBookHasBorrowings)
}

func WrapFileTooLarge(limit int64) *BusinessError {
	return NewBusinessError(ErrCodeInvalidFile, fmt.Sprintf("File exceeds the upload limit of %d bytes", limit), ErrFileTooLarge)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

func WrapStorageError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeStorageError,
		"Could not store file. Please try again!",
		err,
	)
}

// HTTPStatus maps an error returned by the service layer to a response status
func HTTPStatus(err error) int {
	var be *BusinessError
	if !errors.As(err, &be) {
		return http.StatusInternalServerError
	}

	switch be.Code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case ErrCodeNotBorrower:
		return http.StatusForbidden
	case ErrCodeDuplicate:
		return http.StatusConflict
	case ErrCodeDatabaseError, ErrCodeCacheError, ErrCodeStorageError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// PublicMessage returns the text safe to show to API callers
func PublicMessage(err error) string {
	var be *BusinessError
	if !errors.As(err, &be) {
		return "Internal server error"
	}

	switch be.Code {
	case ErrCodeDatabaseError, ErrCodeCacheError:
		return "Internal server error"
	}
	return be.Message
}
