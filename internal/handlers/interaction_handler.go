package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
	"github.com/patinhas-app/backend/internal/services"
)

// InteractionHandler is the single HTTP surface for likes, saves and
// comments across every subject type.
type InteractionHandler struct {
	service                *services.InteractionService
	userRepository         repositories.UserRepository
	postRepository         repositories.PostRepository
	petRepository          repositories.PetListingRepository
	fundraiserRepository   repositories.FundraiserRepository
	notificationRepository repositories.NotificationRepository
}

// NewInteractionHandler creates a new InteractionHandler
func NewInteractionHandler(
	service *services.InteractionService,
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	petRepo repositories.PetListingRepository,
	fundraiserRepo repositories.FundraiserRepository,
	notificationRepo repositories.NotificationRepository,
) *InteractionHandler {
	return &InteractionHandler{
		service:                service,
		userRepository:         userRepo,
		postRepository:         postRepo,
		petRepository:          petRepo,
		fundraiserRepository:   fundraiserRepo,
		notificationRepository: notificationRepo,
	}
}

type subjectRoutes struct {
	prefix          string
	subject         models.SubjectType
	notFoundMessage string
}

var interactionSubjects = []subjectRoutes{
	{"/posts", models.SubjectPost, "Post não encontrado"},
	{"/pets", models.SubjectPet, "Pet não encontrado"},
	{"/fundraisers", models.SubjectFundraiser, "Vaquinha não encontrada"},
}

// RegisterInteractionRoutes registers the consolidated like/save/comment
// routes for every subject type
func (h *InteractionHandler) RegisterInteractionRoutes(public, protected *echo.Group) {
	for _, s := range interactionSubjects {
		protected.POST(s.prefix+"/:id/like", h.toggle(s.subject, models.KindLike, s.notFoundMessage))
		protected.DELETE(s.prefix+"/:id/like", h.remove(s.subject, models.KindLike, s.notFoundMessage))
		protected.POST(s.prefix+"/:id/save", h.toggle(s.subject, models.KindSave, s.notFoundMessage))
		protected.DELETE(s.prefix+"/:id/save", h.remove(s.subject, models.KindSave, s.notFoundMessage))
		public.GET(s.prefix+"/:id/comments", h.listComments(s.subject, s.notFoundMessage))
		protected.POST(s.prefix+"/:id/comments", h.addComment(s.subject, s.notFoundMessage))
	}
	protected.POST("/comments/:id/toggle-like", h.toggle(models.SubjectComment, models.KindLike, "Comentário não encontrado"))

	protected.GET("/me/liked-posts", h.MyLikedPosts)
	protected.GET("/me/saved-posts", h.MySavedPosts)
}

// toggle flips the like/save relation and returns the post-transition state
func (h *InteractionHandler) toggle(subject models.SubjectType, kind models.InteractionKind, notFoundMessage string) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := getUserIDFromContext(c)
		if userID == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
		}
		subjectID := c.Param("id")

		result, err := h.service.Toggle(c.Request().Context(), userID, subject, subjectID, kind)
		if err != nil {
			return serviceError(err, notFoundMessage)
		}

		if kind == models.KindLike && result.Present {
			h.notifyOwner(c.Request().Context(), userID, subject, subjectID, models.NotificationLike, "curtiu sua publicação")
		}

		if kind == models.KindSave {
			return c.JSON(http.StatusOK, echo.Map{"saved": result.Present})
		}
		return c.JSON(http.StatusOK, echo.Map{"liked": result.Present, "likesCount": result.Count})
	}
}

// remove forces the relation absent (the DELETE routes)
func (h *InteractionHandler) remove(subject models.SubjectType, kind models.InteractionKind, notFoundMessage string) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := getUserIDFromContext(c)
		if userID == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
		}

		result, err := h.service.Remove(c.Request().Context(), userID, subject, c.Param("id"), kind)
		if err != nil {
			return serviceError(err, notFoundMessage)
		}

		if kind == models.KindSave {
			return c.JSON(http.StatusOK, echo.Map{"saved": false})
		}
		return c.JSON(http.StatusOK, echo.Map{"liked": false, "likesCount": result.Count})
	}
}

// addComment appends a comment to a subject
func (h *InteractionHandler) addComment(subject models.SubjectType, notFoundMessage string) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := getUserIDFromContext(c)
		if userID == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
		}

		var req models.CreateCommentRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
		}

		comment, err := h.service.AddComment(c.Request().Context(), userID, subject, c.Param("id"), req.Content)
		if err != nil {
			if errors.Is(err, services.ErrInvalidInput) {
				return echo.NewHTTPError(http.StatusBadRequest, "Comentário não pode ser vazio")
			}
			return serviceError(err, notFoundMessage)
		}

		h.notifyOwner(c.Request().Context(), userID, subject, c.Param("id"), models.NotificationComment, "comentou na sua publicação")

		return c.JSON(http.StatusCreated, h.commentView(comment, nil, 0))
	}
}

// listComments returns a subject's comments joined with their authors
func (h *InteractionHandler) listComments(subject models.SubjectType, notFoundMessage string) echo.HandlerFunc {
	return func(c echo.Context) error {
		comments, err := h.service.Comments(c.Request().Context(), subject, c.Param("id"))
		if err != nil {
			return serviceError(err, notFoundMessage)
		}

		userIDs := make([]uint, 0, len(comments))
		commentIDs := make([]string, 0, len(comments))
		for _, comment := range comments {
			userIDs = append(userIDs, comment.UserID)
			commentIDs = append(commentIDs, strconv.FormatUint(uint64(comment.ID), 10))
		}

		users, err := h.userRepository.GetUsersByIDs(userIDs)
		if err != nil {
			return internalError(err)
		}
		userMap := make(map[uint]models.UserCompact, len(users))
		for _, u := range users {
			userMap[u.ID] = u.ToCompact()
		}

		likeCounts, err := h.service.CommentLikeCounts(c.Request().Context(), commentIDs)
		if err != nil {
			return internalError(err)
		}

		views := make([]models.CommentView, len(comments))
		for i, comment := range comments {
			author := userMap[comment.UserID]
			views[i] = h.commentView(&comment, &author, likeCounts[strconv.FormatUint(uint64(comment.ID), 10)])
		}
		return c.JSON(http.StatusOK, views)
	}
}

// MyLikedPosts returns the posts the current user has liked, newest first
func (h *InteractionHandler) MyLikedPosts(c echo.Context) error {
	return h.myPostsByKind(c, models.KindLike)
}

// MySavedPosts returns the posts the current user has saved, newest first
func (h *InteractionHandler) MySavedPosts(c echo.Context) error {
	return h.myPostsByKind(c, models.KindSave)
}

func (h *InteractionHandler) myPostsByKind(c echo.Context, kind models.InteractionKind) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
	}

	interactions, err := h.service.ListForUser(userID, kind)
	if err != nil {
		return internalError(err)
	}

	var postIDs []string
	for _, interaction := range interactions {
		if interaction.SubjectType == models.SubjectPost {
			postIDs = append(postIDs, interaction.SubjectID)
		}
	}

	posts, err := h.postRepository.GetPostsByIDs(c.Request().Context(), postIDs)
	if err != nil {
		return internalError(err)
	}

	// Restore interaction order (newest interaction first)
	postMap := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		postMap[p.ID.Hex()] = p
	}
	ordered := make([]models.Post, 0, len(posts))
	for _, id := range postIDs {
		if p, ok := postMap[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": ordered})
}

func (h *InteractionHandler) commentView(comment *models.Interaction, author *models.UserCompact, likesCount int64) models.CommentView {
	view := models.CommentView{
		ID:         comment.ID,
		Content:    comment.Payload,
		UserID:     comment.UserID,
		LikesCount: likesCount,
		CreatedAt:  comment.CreatedAt,
	}
	if author == nil {
		if user, err := h.userRepository.GetUserByID(comment.UserID); err == nil {
			compact := user.ToCompact()
			author = &compact
		}
	}
	if author != nil {
		view.Username = author.Username
		view.UserPhotoURL = author.PhotoURL
	}
	return view
}

// notifyOwner records a notification for the subject's owner. Failures are
// logged and never fail the request.
func (h *InteractionHandler) notifyOwner(ctx context.Context, actorID uint, subject models.SubjectType, subjectID, notificationType, message string) {
	ownerID, err := h.ownerOf(ctx, subject, subjectID)
	if err != nil || ownerID == 0 || ownerID == actorID {
		return
	}
	notification := &models.Notification{
		Type:        notificationType,
		ActorID:     actorID,
		RecipientID: ownerID,
		TargetID:    subjectID,
		TargetType:  string(subject),
		Message:     message,
	}
	if err := h.notificationRepository.CreateNotification(notification); err != nil {
		log.Printf("failed to create notification: %v", err)
	}
}

func (h *InteractionHandler) ownerOf(ctx context.Context, subject models.SubjectType, subjectID string) (uint, error) {
	switch subject {
	case models.SubjectPost:
		post, err := h.postRepository.GetPostByID(ctx, subjectID)
		if err != nil {
			return 0, err
		}
		return post.UserID, nil
	case models.SubjectPet:
		id, err := strconv.ParseUint(subjectID, 10, 32)
		if err != nil {
			return 0, err
		}
		listing, err := h.petRepository.GetListingByID(uint(id))
		if err != nil {
			return 0, err
		}
		return listing.UserID, nil
	case models.SubjectFundraiser:
		id, err := strconv.ParseUint(subjectID, 10, 32)
		if err != nil {
			return 0, err
		}
		fundraiser, err := h.fundraiserRepository.GetFundraiserByID(uint(id))
		if err != nil {
			return 0, err
		}
		return fundraiser.UserID, nil
	case models.SubjectComment:
		comment, err := h.service.CommentByID(ctx, subjectID)
		if err != nil {
			return 0, err
		}
		return comment.UserID, nil
	}
	return 0, nil
}
