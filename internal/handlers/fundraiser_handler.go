package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
	"github.com/patinhas-app/backend/pkg/payments"
)

// FundraiserHandler handles fundraiser and donation requests
type FundraiserHandler struct {
	fundraiserRepository   repositories.FundraiserRepository
	donationRepository     repositories.DonationRepository
	notificationRepository repositories.NotificationRepository
	gateway                payments.Gateway
}

// NewFundraiserHandler creates a new FundraiserHandler
func NewFundraiserHandler(
	fundraiserRepo repositories.FundraiserRepository,
	donationRepo repositories.DonationRepository,
	notificationRepo repositories.NotificationRepository,
	gateway payments.Gateway,
) *FundraiserHandler {
	return &FundraiserHandler{
		fundraiserRepository:   fundraiserRepo,
		donationRepository:     donationRepo,
		notificationRepository: notificationRepo,
		gateway:                gateway,
	}
}

// RegisterFundraiserRoutes registers fundraiser and donation routes. The
// payment webhook is registered on the root group because the gateway calls
// it unauthenticated, identified by its signature instead.
func (h *FundraiserHandler) RegisterFundraiserRoutes(root *echo.Echo, public, protected *echo.Group) {
	public.GET("/fundraisers", h.GetFundraisers)
	public.GET("/fundraisers/:id", h.GetFundraiser)
	public.GET("/fundraisers/:id/donations", h.GetDonations)
	protected.POST("/fundraisers", h.CreateFundraiser)
	protected.PUT("/fundraisers/:id/close", h.CloseFundraiser)
	protected.POST("/fundraisers/:id/donations", h.CreateDonation)
	protected.GET("/me/donations", h.MyDonations)
	root.POST("/api/payments/webhook", h.PaymentWebhook)
}

// GetFundraisers lists fundraisers, active ones by default
func (h *FundraiserHandler) GetFundraisers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	activeOnly := c.QueryParam("all") != "true"

	fundraisers, total, err := h.fundraiserRepository.GetFundraisers(activeOnly, (page-1)*limit, limit)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"fundraisers": fundraisers,
		"meta":        echo.Map{"currentPage": page, "totalItems": total, "itemsPerPage": limit},
	})
}

// GetFundraiser returns one fundraiser
func (h *FundraiserHandler) GetFundraiser(c echo.Context) error {
	fundraiser, err := h.findFundraiser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fundraiser)
}

// CreateFundraiser opens a new campaign
func (h *FundraiserHandler) CreateFundraiser(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	var req models.CreateFundraiserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fundraiser := &models.Fundraiser{
		UserID:       userID,
		PetListingID: req.PetListingID,
		Title:        req.Title,
		Description:  req.Description,
		GoalCents:    req.GoalCents,
		Active:       true,
	}
	if err := h.fundraiserRepository.CreateFundraiser(fundraiser); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusCreated, fundraiser)
}

// CloseFundraiser deactivates a campaign owned by the current user
func (h *FundraiserHandler) CloseFundraiser(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	fundraiser, err := h.findFundraiser(c)
	if err != nil {
		return err
	}
	if fundraiser.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Você não pode encerrar esta vaquinha")
	}

	fundraiser.Active = false
	if err := h.fundraiserRepository.UpdateFundraiser(fundraiser); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, fundraiser)
}

// CreateDonation opens a payment with the gateway and records a pending
// donation. The donation only counts toward the fundraiser total once the
// gateway confirms it via webhook.
func (h *FundraiserHandler) CreateDonation(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}
	if h.gateway == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Pagamentos indisponíveis")
	}

	fundraiser, err := h.findFundraiser(c)
	if err != nil {
		return err
	}
	if !fundraiser.Active {
		return echo.NewHTTPError(http.StatusBadRequest, "Vaquinha encerrada")
	}

	var req models.CreateDonationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	idempotencyKey := uuid.NewString()
	payment, err := h.gateway.CreatePayment(
		c.Request().Context(),
		req.AmountCents,
		"brl",
		fmt.Sprintf("Doação para %q", fundraiser.Title),
		idempotencyKey,
	)
	if err != nil {
		return internalError(err)
	}

	donation := &models.Donation{
		FundraiserID:   fundraiser.ID,
		UserID:         userID,
		AmountCents:    req.AmountCents,
		Message:        req.Message,
		Status:         models.DonationPending,
		PaymentID:      payment.ID,
		IdempotencyKey: idempotencyKey,
	}
	if err := h.donationRepository.CreateDonation(donation); err != nil {
		return internalError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"donation":     donation,
		"clientSecret": payment.ClientSecret,
	})
}

// GetDonations lists a fundraiser's confirmed donations
func (h *FundraiserHandler) GetDonations(c echo.Context) error {
	fundraiser, err := h.findFundraiser(c)
	if err != nil {
		return err
	}

	donations, err := h.donationRepository.GetDonationsByFundraiser(fundraiser.ID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"donations": donations})
}

// MyDonations lists the current user's donations in any state
func (h *FundraiserHandler) MyDonations(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	donations, err := h.donationRepository.GetDonationsByUser(userID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"donations": donations})
}

// PaymentWebhook settles pending donations from gateway notifications
func (h *FundraiserHandler) PaymentWebhook(c echo.Context) error {
	if h.gateway == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Pagamentos indisponíveis")
	}

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}

	event, err := h.gateway.ParseWebhook(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Assinatura inválida")
	}
	if event.Type == "" {
		return c.NoContent(http.StatusOK) // irrelevant event, acknowledge
	}

	donation, err := h.donationRepository.GetDonationByPaymentID(event.PaymentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.NoContent(http.StatusOK) // unknown payment, nothing to settle
		}
		return internalError(err)
	}
	if donation.Status != models.DonationPending {
		return c.NoContent(http.StatusOK) // already settled, webhook retry
	}

	switch event.Type {
	case payments.EventPaymentSucceeded:
		donation.Status = models.DonationPaid
		if err := h.donationRepository.UpdateDonation(donation); err != nil {
			return internalError(err)
		}
		if err := h.fundraiserRepository.AddRaisedCents(donation.FundraiserID, donation.AmountCents); err != nil {
			return internalError(err)
		}
		if fundraiser, err := h.fundraiserRepository.GetFundraiserByID(donation.FundraiserID); err == nil {
			h.notifyDonation(fundraiser, donation)
		}
	case payments.EventPaymentFailed:
		donation.Status = models.DonationFailed
		if err := h.donationRepository.UpdateDonation(donation); err != nil {
			return internalError(err)
		}
	}

	return c.NoContent(http.StatusOK)
}

func (h *FundraiserHandler) notifyDonation(fundraiser *models.Fundraiser, donation *models.Donation) {
	if fundraiser.UserID == donation.UserID {
		return
	}
	notification := &models.Notification{
		Type:        models.NotificationDonation,
		ActorID:     donation.UserID,
		RecipientID: fundraiser.UserID,
		TargetID:    strconv.FormatUint(uint64(fundraiser.ID), 10),
		TargetType:  string(models.SubjectFundraiser),
		Message:     "fez uma doação para sua vaquinha",
	}
	_ = h.notificationRepository.CreateNotification(notification)
}

func (h *FundraiserHandler) findFundraiser(c echo.Context) (*models.Fundraiser, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}
	fundraiser, err := h.fundraiserRepository.GetFundraiserByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Vaquinha não encontrada")
		}
		return nil, internalError(err)
	}
	return fundraiser, nil
}
