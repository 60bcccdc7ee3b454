package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/service"
	customError "github.com/segyhp/library-circulation/pkg/errors"
	"github.com/segyhp/library-circulation/pkg/response"
)

// multipartOverhead leaves room for the form fields around the file part
const multipartOverhead = 1 << 20

type DigitalBookHandler struct {
	digitalBookService *service.DigitalBookService
	maxUploadBytes     int64
}

func NewDigitalBookHandler(digitalBookService *service.DigitalBookService, maxUploadBytes int64) *DigitalBookHandler {
	return &DigitalBookHandler{
		digitalBookService: digitalBookService,
		maxUploadBytes:     maxUploadBytes,
	}
}

// List handles GET /api/digital-books
func (h *DigitalBookHandler) List(w http.ResponseWriter, r *http.Request) {
	digitalBooks, err := h.digitalBookService.List(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, digitalBooks)
}

// ByBook handles GET /api/digital-books/book/{bookId}
func (h *DigitalBookHandler) ByBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r, "bookId")
	if !ok {
		return
	}

	digitalBooks, err := h.digitalBookService.ByBook(r.Context(), bookID)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, digitalBooks)
}

// ByFormat handles GET /api/digital-books/format/{format}
func (h *DigitalBookHandler) ByFormat(w http.ResponseWriter, r *http.Request) {
	digitalBooks, err := h.digitalBookService.ByFormat(r.Context(), mux.Vars(r)["format"])
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, digitalBooks)
}

// Upload handles the multipart POST /api/digital-books/upload with bookId, fileFormat and file parts
func (h *DigitalBookHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(w, r, customError.WrapFileTooLarge(h.maxUploadBytes))
			return
		}
		response.BadRequest(w, "Invalid multipart form", err)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.WarnContext(r.Context(), "failed to remove multipart temp files", "error", err)
		}
	}()

	bookID, err := strconv.ParseInt(r.FormValue("bookId"), 10, 64)
	if err != nil || bookID <= 0 {
		response.BadRequest(w, "Invalid bookId", err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file", err)
		return
	}
	defer file.Close()

	digitalBook, err := h.digitalBookService.Upload(r.Context(), bookID, r.FormValue("fileFormat"), file)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Created(w, digitalBook)
}

// Download handles GET /api/digital-books/download/{id}
func (h *DigitalBookHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	digitalBook, content, err := h.digitalBookService.Open(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	h.stream(w, r, digitalBook, content)
}

// File handles GET /api/digital-books/files/{fileName}
func (h *DigitalBookHandler) File(w http.ResponseWriter, r *http.Request) {
	digitalBook, content, err := h.digitalBookService.OpenFile(r.Context(), mux.Vars(r)["fileName"])
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	h.stream(w, r, digitalBook, content)
}

// Delete handles DELETE /api/digital-books/{id}
func (h *DigitalBookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.digitalBookService.Delete(r.Context(), id); err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Message(w, "Digital book deleted successfully")
}

func (h *DigitalBookHandler) stream(w http.ResponseWriter, r *http.Request, digitalBook *domain.DigitalBook, content io.ReadCloser) {
	defer content.Close()

	w.Header().Set("Content-Type", domain.ContentType(digitalBook.FileFormat))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(digitalBook.FileName)))
	if digitalBook.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(digitalBook.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		slog.WarnContext(r.Context(), "digital book download interrupted",
			"digital_book_id", digitalBook.ID,
			"error", err,
		)
	}
}
