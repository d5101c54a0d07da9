package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
)

const defaultThreadLimit = 50

// MessageHandler handles direct message requests
type MessageHandler struct {
	messageRepository      repositories.MessageRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, notificationRepo repositories.NotificationRepository) *MessageHandler {
	return &MessageHandler{
		messageRepository:      messageRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterMessageRoutes registers direct message routes
func (h *MessageHandler) RegisterMessageRoutes(protected *echo.Group) {
	protected.POST("/messages/:id", h.SendMessage)
	protected.GET("/messages/:id", h.GetThread)
	protected.GET("/conversations", h.GetConversations)
	protected.PUT("/messages/:id/read", h.MarkThreadRead)
	protected.GET("/messages/unread-count", h.GetUnreadCount)
}

// SendMessage sends a direct message to another user
func (h *MessageHandler) SendMessage(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	recipientID, err := h.counterpartID(c)
	if err != nil {
		return err
	}
	if recipientID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Você não pode enviar mensagem para si mesmo")
	}

	req := new(models.SendMessageRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Mensagem não pode ser vazia")
	}

	message := &models.Message{
		SenderID:    userID,
		RecipientID: recipientID,
		Content:     req.Content,
	}
	if err := h.messageRepository.CreateMessage(message); err != nil {
		return internalError(err)
	}

	notification := &models.Notification{
		Type:        models.NotificationMessage,
		ActorID:     userID,
		RecipientID: recipientID,
		TargetID:    strconv.FormatUint(uint64(message.ID), 10),
		TargetType:  "message",
		Message:     "enviou uma mensagem para você",
	}
	_ = h.notificationRepository.CreateNotification(notification)

	return c.JSON(http.StatusCreated, message)
}

// GetThread retrieves the message thread with another user
func (h *MessageHandler) GetThread(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	otherID, err := h.counterpartID(c)
	if err != nil {
		return err
	}

	limit := defaultThreadLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	messages, err := h.messageRepository.GetThread(userID, otherID, limit)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": messages})
}

// GetConversations lists the current user's conversations
func (h *MessageHandler) GetConversations(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	conversations, err := h.messageRepository.GetConversations(userID)
	if err != nil {
		return internalError(err)
	}

	ids := make([]uint, len(conversations))
	for i, conv := range conversations {
		ids[i] = conv.OtherUserID
	}
	users, err := h.userRepository.GetUsersByIDs(ids)
	if err != nil {
		return internalError(err)
	}
	byID := make(map[uint]models.UserCompact, len(users))
	for _, u := range users {
		byID[u.ID] = u.ToCompact()
	}

	type conversationView struct {
		models.Conversation
		User models.UserCompact `json:"user"`
	}
	views := make([]conversationView, len(conversations))
	for i, conv := range conversations {
		views[i] = conversationView{Conversation: conv, User: byID[conv.OtherUserID]}
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": views})
}

// MarkThreadRead marks every message from the given user as read
func (h *MessageHandler) MarkThreadRead(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	otherID, err := h.counterpartID(c)
	if err != nil {
		return err
	}

	if err := h.messageRepository.MarkThreadRead(userID, otherID); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Mensagens marcadas como lidas"})
}

// GetUnreadCount returns the number of unread messages
func (h *MessageHandler) GetUnreadCount(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	count, err := h.messageRepository.GetUnreadCount(userID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

func (h *MessageHandler) counterpartID(c echo.Context) (uint, error) {
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
