package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
	"github.com/patinhas-app/backend/internal/services"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	service        *services.InteractionService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, service *services.InteractionService) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		service:        service,
	}
}

// RegisterFeedRoutes registers feed-related routes. The feed is readable
// anonymously; annotation flags default to false without a viewer.
func (h *FeedHandler) RegisterFeedRoutes(public *echo.Group) {
	public.GET("/feed", h.GetFeed)
}

// EnrichedPost is a post with author info and viewer-specific flags
type EnrichedPost struct {
	models.Post
	Author  models.UserCompact `json:"author"`
	IsLiked bool               `json:"is_liked"`
	IsSaved bool               `json:"is_saved"`
}

// GetFeed returns enriched feed posts annotated for the current viewer
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	skip := int64((page - 1) * limit)

	posts, err := h.postRepository.GetAllPosts(ctx, skip, int64(limit))
	if err != nil {
		return internalError(err)
	}

	totalItems, err := h.postRepository.CountAllPosts(ctx)
	if err != nil {
		return internalError(err)
	}

	authorIDs := make([]uint, 0, len(posts))
	seenAuthors := make(map[uint]bool)
	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID.Hex()
		if !seenAuthors[p.UserID] {
			seenAuthors[p.UserID] = true
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	authors, err := h.userRepository.GetUsersByIDs(authorIDs)
	if err != nil {
		return internalError(err)
	}
	authorMap := make(map[uint]models.UserCompact, len(authors))
	for _, u := range authors {
		authorMap[u.ID] = u.ToCompact()
	}

	// One batched query for the viewer's like/save flags; none for anonymous
	flags, err := h.service.Flags(ctx, viewerID, models.SubjectPost, postIDs)
	if err != nil {
		return internalError(err)
	}

	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		pid := p.ID.Hex()
		enriched[i] = EnrichedPost{
			Post:    p,
			Author:  authorMap[p.UserID],
			IsLiked: flags[pid].Liked,
			IsSaved: flags[pid].Saved,
		}
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"posts": enriched,
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      totalItems,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}
