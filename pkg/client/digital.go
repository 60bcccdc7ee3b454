package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/segyhp/library-circulation/internal/domain"
)

func (c *Client) DigitalBooks(ctx context.Context) ([]domain.DigitalBook, error) {
	return c.digitalList(ctx, "/api/digital-books")
}

func (c *Client) DigitalBooksForBook(ctx context.Context, bookID int64) ([]domain.DigitalBook, error) {
	return c.digitalList(ctx, fmt.Sprintf("/api/digital-books/book/%d", bookID))
}

func (c *Client) DigitalBooksByFormat(ctx context.Context, format string) ([]domain.DigitalBook, error) {
	return c.digitalList(ctx, "/api/digital-books/format/"+format)
}

// UploadDigitalBook streams content as the multipart fields bookId, fileFormat and file
func (c *Client) UploadDigitalBook(ctx context.Context, bookID int64, format, fileName string, content io.Reader) (*domain.DigitalBook, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(form, bookID, format, fileName, content))
	}()

	resp, err := c.send(ctx, http.MethodPost, "/api/digital-books/upload", authenticated, pr, form.FormDataContentType())
	// unblocks the writer when the request ended before consuming the body
	pr.Close()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(http.MethodPost, "/api/digital-books/upload", err)
	}

	var out domain.DigitalBook
	if err := decodeData(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeUploadForm(form *multipart.Writer, bookID int64, format, fileName string, content io.Reader) error {
	if err := form.WriteField("bookId", strconv.FormatInt(bookID, 10)); err != nil {
		return err
	}
	if err := form.WriteField("fileFormat", format); err != nil {
		return err
	}

	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return form.Close()
}

// DownloadDigitalBook streams the file of a digital book into w and returns the bytes written
func (c *Client) DownloadDigitalBook(ctx context.Context, id int64, w io.Writer) (int64, error) {
	path := fmt.Sprintf("/api/digital-books/download/%d", id)

	resp, err := c.send(ctx, http.MethodGet, path, authenticated, nil, "")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, c.transportError(http.MethodGet, path, err)
	}
	return n, nil
}

func (c *Client) DeleteDigitalBook(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/digital-books/%d", id), authenticated)
}

func (c *Client) digitalList(ctx context.Context, path string) ([]domain.DigitalBook, error) {
	var out []domain.DigitalBook
	if err := c.get(ctx, path, public, &out); err != nil {
		return nil, err
	}
	return out, nil
}
