package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/logging"
	"eventsapi/internal/service"
)

// UploadHandler handles image uploads.
type UploadHandler struct {
	uploadService service.UploadService
	baseURL       string
}

// NewUploadHandler creates an upload handler. baseURL overrides the scheme
// and host used to build absolute URLs for relative uploads.
func NewUploadHandler(uploadService service.UploadService, baseURL string) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, baseURL: strings.TrimRight(baseURL, "/")}
}

// UploadResponse describes a stored image.
type UploadResponse struct {
	URL      string `json:"url"`
	FullURL  string `json:"fullUrl"`
	Filename string `json:"filename"`
}

// UploadImage godoc
// @Summary Upload an event image
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image (jpeg, png, gif, webp; max 5MB)"
// @Success 200 {object} Response{data=UploadResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload/image [post]
func (h *UploadHandler) UploadImage(c echo.Context) error {
	fh, err := formFile(c, "image")
	if err != nil {
		return err
	}
	img, err := h.uploadService.ReadImage(fh)
	if err != nil {
		return err
	}

	saved, err := h.uploadService.Upload(c.Request().Context(), img)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "image uploaded successfully", UploadResponse{
		URL:      saved.URL,
		FullURL:  h.fullURL(c, saved.URL),
		Filename: saved.Filename,
	})
}

// fullURL makes a relative upload path absolute. URLs that already carry a
// scheme are returned unchanged.
func (h *UploadHandler) fullURL(c echo.Context, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	base := h.baseURL
	if base == "" {
		base = c.Scheme() + "://" + c.Request().Host
	}
	return base + path
}

// formFile returns the named multipart file. A request without one yields
// a nil header so the caller reports ErrNoFile.
func formFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err == nil {
		return fh, nil
	}

	var maxBytesErr *http.MaxBytesError
	var he *echo.HTTPError
	if errors.As(err, &maxBytesErr) || (errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge) {
		return nil, apperrors.ErrImageTooLarge
	}
	if !errors.Is(err, http.ErrMissingFile) {
		logging.Debug().Err(err).Str("field", field).Msg("request carries no readable file")
	}
	return nil, nil
}
