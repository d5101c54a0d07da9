package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patinhas-app/backend/pkg/media"
)

const (
	maxUploadSize   = 10 << 20 // 10 MiB
	presignedGetTTL = 15 * time.Minute
)

var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"video/mp4":  true,
}

// MediaHandler handles media upload and download requests
type MediaHandler struct {
	storage *media.Storage
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(storage *media.Storage) *MediaHandler {
	return &MediaHandler{storage: storage}
}

// RegisterMediaRoutes registers media routes
func (h *MediaHandler) RegisterMediaRoutes(public, protected *echo.Group) {
	protected.POST("/media", h.Upload)
	// keys contain a slash (uploader id prefix), hence the wildcard
	public.GET("/media/*", h.Download)
}

// Upload stores a multipart file and returns its object key
func (h *MediaHandler) Upload(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}
	if h.storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Armazenamento de mídia indisponível")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Arquivo muito grande")
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedMediaTypes[contentType] {
		return echo.NewHTTPError(http.StatusBadRequest, "Tipo de arquivo não suportado")
	}

	src, err := file.Open()
	if err != nil {
		return internalError(err)
	}
	defer src.Close()

	key := fmt.Sprintf("%d/%s%s", userID, uuid.NewString(), strings.ToLower(filepath.Ext(file.Filename)))
	if err := h.storage.Put(c.Request().Context(), key, contentType, src, file.Size); err != nil {
		return internalError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"key": key})
}

// Download redirects to a presigned URL for the object
func (h *MediaHandler) Download(c echo.Context) error {
	if h.storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Armazenamento de mídia indisponível")
	}

	key := c.Param("*")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}

	url, err := h.storage.PresignGet(c.Request().Context(), key, presignedGetTTL)
	if err != nil {
		return internalError(err)
	}
	return c.Redirect(http.StatusTemporaryRedirect, url.String())
}
