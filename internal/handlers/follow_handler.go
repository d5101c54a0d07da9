package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
)

// FollowHandler handles follow relationship requests
type FollowHandler struct {
	followRepository       repositories.FollowRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, notificationRepo repositories.NotificationRepository) *FollowHandler {
	return &FollowHandler{
		followRepository:       followRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(public, protected *echo.Group) {
	protected.POST("/users/:id/follow", h.Follow)
	protected.DELETE("/users/:id/follow", h.Unfollow)
	public.GET("/users/:id/followers", h.GetFollowers)
	public.GET("/users/:id/following", h.GetFollowing)
}

// Follow makes the current user follow another user
func (h *FollowHandler) Follow(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	targetID, err := h.targetUserID(c)
	if err != nil {
		return err
	}
	if targetID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Você não pode seguir a si mesmo")
	}

	created, err := h.followRepository.CreateFollow(&models.Follow{
		FollowerID:  userID,
		FollowingID: targetID,
	})
	if err != nil {
		return internalError(err)
	}

	if created {
		notification := &models.Notification{
			Type:        models.NotificationFollow,
			ActorID:     userID,
			RecipientID: targetID,
			TargetID:    strconv.FormatUint(uint64(userID), 10),
			TargetType:  "user",
			Message:     "começou a seguir você",
		}
		_ = h.notificationRepository.CreateNotification(notification)
	}

	return c.JSON(http.StatusOK, echo.Map{"following": true})
}

// Unfollow removes a follow relationship
func (h *FollowHandler) Unfollow(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	targetID, err := h.targetUserID(c)
	if err != nil {
		return err
	}

	// Removing an absent relation still ends in the desired state
	_ = h.followRepository.DeleteFollow(userID, targetID)

	return c.JSON(http.StatusOK, echo.Map{"following": false})
}

// GetFollowers lists a user's followers
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	targetID, err := h.targetUserID(c)
	if err != nil {
		return err
	}

	users, err := h.followRepository.GetFollowers(targetID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": compactUsers(users)})
}

// GetFollowing lists who a user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	targetID, err := h.targetUserID(c)
	if err != nil {
		return err
	}

	users, err := h.followRepository.GetFollowing(targetID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": compactUsers(users)})
}

func (h *FollowHandler) targetUserID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}
	if _, err := h.userRepository.GetUserByID(uint(id)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, echo.NewHTTPError(http.StatusNotFound, "Usuário não encontrado")
		}
		return 0, internalError(err)
	}
	return uint(id), nil
}

func compactUsers(users []models.User) []models.UserCompact {
	compact := make([]models.UserCompact, len(users))
	for i, u := range users {
		compact[i] = u.ToCompact()
	}
	return compact
}
