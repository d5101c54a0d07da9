package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
)

// PetHandler handles lost/found/adoption pet listing requests
type PetHandler struct {
	petRepository repositories.PetListingRepository
}

// NewPetHandler creates a new PetHandler
func NewPetHandler(petRepo repositories.PetListingRepository) *PetHandler {
	return &PetHandler{petRepository: petRepo}
}

// RegisterPetRoutes registers pet listing routes
func (h *PetHandler) RegisterPetRoutes(public, protected *echo.Group) {
	public.GET("/pets", h.GetListings)
	public.GET("/pets/:id", h.GetListing)
	protected.POST("/pets", h.CreateListing)
	protected.PUT("/pets/:id", h.UpdateListing)
	protected.PUT("/pets/:id/resolve", h.ResolveListing)
	protected.DELETE("/pets/:id", h.DeleteListing)
	protected.GET("/me/pets", h.MyListings)
}

// GetListings returns filtered pet listings with pagination
func (h *PetHandler) GetListings(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	filter := repositories.PetListingFilter{
		Category: c.QueryParam("category"),
		Species:  c.QueryParam("species"),
		City:     c.QueryParam("city"),
	}
	if resolved := c.QueryParam("resolved"); resolved != "" {
		value := resolved == "true"
		filter.Resolved = &value
	}

	listings, total, err := h.petRepository.GetListings(filter, (page-1)*limit, limit)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pets": listings,
		"meta": echo.Map{"currentPage": page, "totalItems": total, "itemsPerPage": limit},
	})
}

// GetListing returns one pet listing
func (h *PetHandler) GetListing(c echo.Context) error {
	listing, err := h.findListing(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listing)
}

// CreateListing creates a new pet listing
func (h *PetHandler) CreateListing(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	var req models.CreatePetListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	listing := &models.PetListing{
		UserID:      userID,
		Category:    req.Category,
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		Description: req.Description,
		City:        req.City,
		PhotoURLs:   req.PhotoURLs,
	}
	if err := h.petRepository.CreateListing(listing); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusCreated, listing)
}

// UpdateListing updates a listing owned by the current user
func (h *PetHandler) UpdateListing(c echo.Context) error {
	listing, err := h.findOwnedListing(c)
	if err != nil {
		return err
	}

	var req models.UpdatePetListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Name != "" {
		listing.Name = req.Name
	}
	if req.Breed != "" {
		listing.Breed = req.Breed
	}
	if req.Description != "" {
		listing.Description = req.Description
	}
	if req.City != "" {
		listing.City = req.City
	}
	if req.PhotoURLs != nil {
		listing.PhotoURLs = req.PhotoURLs
	}

	if err := h.petRepository.UpdateListing(listing); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, listing)
}

// ResolveListing marks a listing as resolved (pet reunited or adopted)
func (h *PetHandler) ResolveListing(c echo.Context) error {
	listing, err := h.findOwnedListing(c)
	if err != nil {
		return err
	}

	listing.Resolved = true
	if err := h.petRepository.UpdateListing(listing); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, listing)
}

// DeleteListing deletes a listing owned by the current user
func (h *PetHandler) DeleteListing(c echo.Context) error {
	listing, err := h.findOwnedListing(c)
	if err != nil {
		return err
	}

	if err := h.petRepository.DeleteListing(listing.ID); err != nil {
		return internalError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MyListings returns the current user's pet listings
func (h *PetHandler) MyListings(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	listings, err := h.petRepository.GetListingsByUser(userID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"pets": listings})
}

func (h *PetHandler) findListing(c echo.Context) (*models.PetListing, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}
	listing, err := h.petRepository.GetListingByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Pet não encontrado")
		}
		return nil, internalError(err)
	}
	return listing, nil
}

func (h *PetHandler) findOwnedListing(c echo.Context) (*models.PetListing, error) {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}
	listing, err := h.findListing(c)
	if err != nil {
		return nil, err
	}
	if listing.UserID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Você não pode alterar este anúncio")
	}
	return listing, nil
}
