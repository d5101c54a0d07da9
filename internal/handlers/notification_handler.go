package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
)

const defaultNotificationLimit = 50

// NotificationHandler handles notification requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notificationRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(protected *echo.Group) {
	protected.GET("/notifications", h.GetNotifications)
	protected.GET("/notifications/unread-count", h.GetUnreadCount)
	protected.PUT("/notifications/:id/read", h.MarkAsRead)
	protected.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications lists the current user's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	limit := defaultNotificationLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	notifications, err := h.notificationRepository.GetNotificationsByRecipient(userID, limit)
	if err != nil {
		return internalError(err)
	}

	actorIDs := make([]uint, 0, len(notifications))
	seen := make(map[uint]bool)
	for _, n := range notifications {
		if !seen[n.ActorID] {
			seen[n.ActorID] = true
			actorIDs = append(actorIDs, n.ActorID)
		}
	}
	actors, err := h.userRepository.GetUsersByIDs(actorIDs)
	if err != nil {
		return internalError(err)
	}
	byID := make(map[uint]models.UserCompact, len(actors))
	for _, u := range actors {
		byID[u.ID] = u.ToCompact()
	}

	type notificationView struct {
		models.Notification
		Actor models.UserCompact `json:"actor"`
	}
	views := make([]notificationView, len(notifications))
	for i, n := range notifications {
		views[i] = notificationView{Notification: n, Actor: byID[n.ActorID]}
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": views})
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	count, err := h.notificationRepository.GetUnreadCount(userID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

// MarkAsRead marks one notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}

	if err := h.notificationRepository.MarkAsRead(uint(id), userID); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notificação marcada como lida"})
}

// MarkAllAsRead marks every notification of the current user as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	if err := h.notificationRepository.MarkAllAsRead(userID); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notificações marcadas como lidas"})
}
