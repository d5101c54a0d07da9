package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
	"github.com/patinhas-app/backend/internal/services"
)

// memInteractionRepo is an in-memory InteractionRepository for handler tests
type memInteractionRepo struct {
	nextID uint
	rows   map[uint]models.Interaction
}

func newMemInteractionRepo() *memInteractionRepo {
	return &memInteractionRepo{nextID: 1, rows: make(map[uint]models.Interaction)}
}

func (r *memInteractionRepo) Find(userID uint, subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (*models.Interaction, error) {
	for _, row := range r.rows {
		if row.UserID == userID && row.SubjectType == subjectType && row.SubjectID == subjectID && row.Kind == kind {
			found := row
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memInteractionRepo) GetByID(id uint) (*models.Interaction, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *memInteractionRepo) InsertIfAbsent(interaction *models.Interaction) (bool, error) {
	if interaction.Kind != models.KindComment {
		if _, err := r.Find(interaction.UserID, interaction.SubjectType, interaction.SubjectID, interaction.Kind); err == nil {
			return false, nil
		}
	}
	return true, r.Insert(interaction)
}

func (r *memInteractionRepo) Insert(interaction *models.Interaction) error {
	interaction.ID = r.nextID
	r.nextID++
	r.rows[interaction.ID] = *interaction
	return nil
}

func (r *memInteractionRepo) DeleteByID(id uint) (bool, error) {
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *memInteractionRepo) ListForSubject(subjectType models.SubjectType, subjectID string, kind models.InteractionKind) ([]models.Interaction, error) {
	var out []models.Interaction
	for id := uint(1); id < r.nextID; id++ {
		if row, ok := r.rows[id]; ok && row.SubjectType == subjectType && row.SubjectID == subjectID && row.Kind == kind {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memInteractionRepo) ListForUser(userID uint, kind models.InteractionKind) ([]models.Interaction, error) {
	var out []models.Interaction
	for id := r.nextID; id > 0; id-- {
		if row, ok := r.rows[id]; ok && row.UserID == userID && row.Kind == kind {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memInteractionRepo) ListForUserBySubjects(userID uint, subjectType models.SubjectType, subjectIDs []string, kinds []models.InteractionKind) ([]models.Interaction, error) {
	wantID := make(map[string]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		wantID[id] = true
	}
	wantKind := make(map[models.InteractionKind]bool, len(kinds))
	for _, k := range kinds {
		wantKind[k] = true
	}
	var out []models.Interaction
	for _, row := range r.rows {
		if row.UserID == userID && row.SubjectType == subjectType && wantID[row.SubjectID] && wantKind[row.Kind] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memInteractionRepo) Count(subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (int64, error) {
	var count int64
	for _, row := range r.rows {
		if row.SubjectType == subjectType && row.SubjectID == subjectID && row.Kind == kind {
			count++
		}
	}
	return count, nil
}

func (r *memInteractionRepo) CountBySubjects(subjectType models.SubjectType, subjectIDs []string, kind models.InteractionKind) (map[string]int64, error) {
	counts := make(map[string]int64, len(subjectIDs))
	for _, id := range subjectIDs {
		counts[id], _ = r.Count(subjectType, id, kind)
	}
	return counts, nil
}

// memPostRepo is an in-memory PostRepository
type memPostRepo struct {
	posts map[string]*models.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[string]*models.Post)}
}

func (r *memPostRepo) add(userID uint, content string) *models.Post {
	post := &models.Post{ID: primitive.NewObjectID(), UserID: userID, Content: content}
	r.posts[post.ID.Hex()] = post
	return post
}

func (r *memPostRepo) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	r.posts[post.ID.Hex()] = post
	return nil
}

func (r *memPostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return post, nil
}

func (r *memPostRepo) GetPostsByUserID(ctx context.Context, userID uint, skip, limit int64) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPostRepo) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	var out []models.Post
	for _, id := range ids {
		if p, ok := r.posts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPostRepo) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memPostRepo) CountAllPosts(ctx context.Context) (int64, error) {
	return int64(len(r.posts)), nil
}

func (r *memPostRepo) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	r.posts[id] = post
	return nil
}

func (r *memPostRepo) DeletePost(ctx context.Context, id string) error {
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) PostExists(ctx context.Context, id string) (bool, error) {
	_, ok := r.posts[id]
	return ok, nil
}

func (r *memPostRepo) SetLikesCount(ctx context.Context, postID string, value int64) error {
	if p, ok := r.posts[postID]; ok {
		p.LikesCount = value
	}
	return nil
}

func (r *memPostRepo) SetCommentsCount(ctx context.Context, postID string, value int64) error {
	if p, ok := r.posts[postID]; ok {
		p.CommentsCount = value
	}
	return nil
}

// memUserRepo is an in-memory UserRepository
type memUserRepo struct {
	users map[uint]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) CreateUser(user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetUserByID(id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	for _, u := range r.users {
		if u.FirebaseUID == firebaseUID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetUsersByIDs(ids []uint) ([]models.User, error) {
	var out []models.User
	seen := make(map[uint]bool)
	for _, id := range ids {
		if u, ok := r.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) UpdateUser(user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) DeleteUser(id uint) error {
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) SearchUsers(query string) ([]models.User, error) {
	return nil, nil
}

// memNotificationRepo records created notifications
type memNotificationRepo struct {
	created []models.Notification
}

func (r *memNotificationRepo) CreateNotification(n *models.Notification) error {
	r.created = append(r.created, *n)
	return nil
}

func (r *memNotificationRepo) GetNotificationsByRecipient(recipientID uint, limit int) ([]models.Notification, error) {
	return r.created, nil
}

func (r *memNotificationRepo) GetUnreadCount(recipientID uint) (int64, error) {
	return int64(len(r.created)), nil
}

func (r *memNotificationRepo) MarkAsRead(id, recipientID uint) error { return nil }

func (r *memNotificationRepo) MarkAllAsRead(recipientID uint) error { return nil }

// memPetRepo is an empty PetListingRepository
type memPetRepo struct{}

func (memPetRepo) CreateListing(*models.PetListing) error { return nil }
func (memPetRepo) GetListingByID(uint) (*models.PetListing, error) {
	return nil, gorm.ErrRecordNotFound
}
func (memPetRepo) GetListings(repositories.PetListingFilter, int, int) ([]models.PetListing, int64, error) {
	return nil, 0, nil
}
func (memPetRepo) GetListingsByUser(uint) ([]models.PetListing, error) { return nil, nil }
func (memPetRepo) UpdateListing(*models.PetListing) error              { return nil }
func (memPetRepo) DeleteListing(uint) error                            { return nil }
func (memPetRepo) ListingExists(uint) (bool, error)                    { return false, nil }
func (memPetRepo) SetLikesCount(uint, int64) error                     { return nil }
func (memPetRepo) SetCommentsCount(uint, int64) error                  { return nil }

// memFundraiserRepo is an empty FundraiserRepository
type memFundraiserRepo struct{}

func (memFundraiserRepo) CreateFundraiser(*models.Fundraiser) error { return nil }
func (memFundraiserRepo) GetFundraiserByID(uint) (*models.Fundraiser, error) {
	return nil, gorm.ErrRecordNotFound
}
func (memFundraiserRepo) GetFundraisers(bool, int, int) ([]models.Fundraiser, int64, error) {
	return nil, 0, nil
}
func (memFundraiserRepo) GetFundraisersByUser(uint) ([]models.Fundraiser, error) { return nil, nil }
func (memFundraiserRepo) UpdateFundraiser(*models.Fundraiser) error              { return nil }
func (memFundraiserRepo) FundraiserExists(uint) (bool, error)                    { return false, nil }
func (memFundraiserRepo) AddRaisedCents(uint, int64) error                       { return nil }
func (memFundraiserRepo) SetLikesCount(uint, int64) error                        { return nil }
func (memFundraiserRepo) SetCommentsCount(uint, int64) error                     { return nil }

type interactionHarness struct {
	echo          *echo.Echo
	posts         *memPostRepo
	users         *memUserRepo
	interactions  *memInteractionRepo
	notifications *memNotificationRepo
}

// newInteractionHarness wires the interaction routes over in-memory stores.
// authUserID 0 registers the protected group without an identity, matching an
// unauthenticated request.
func newInteractionHarness(authUserID uint) *interactionHarness {
	posts := newMemPostRepo()
	users := newMemUserRepo(
		&models.User{ID: 1, Name: "Ana", Username: "ana", Email: "ana@example.com"},
		&models.User{ID: 2, Name: "Bruno", Username: "bruno", Email: "bruno@example.com"},
	)
	interactions := newMemInteractionRepo()
	notifications := &memNotificationRepo{}

	subjects := services.NewSubjectStores(posts, memPetRepo{}, memFundraiserRepo{}, interactions)
	service := services.NewInteractionService(interactions, subjects)
	handler := NewInteractionHandler(service, users, posts, memPetRepo{}, memFundraiserRepo{}, notifications)

	e := echo.New()
	identity := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authUserID != 0 {
				c.Set("userID", authUserID)
			}
			return next(c)
		}
	}
	public := e.Group("/api", identity)
	protected := e.Group("/api", identity)
	handler.RegisterInteractionRoutes(public, protected)

	return &interactionHarness{echo: e, posts: posts, users: users, interactions: interactions, notifications: notifications}
}

func (h *interactionHarness) request(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	h.echo.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			// list responses decode elsewhere
			decoded = nil
		}
	}
	return rec, decoded
}

func TestLikeToggleEndpoint(t *testing.T) {
	h := newInteractionHarness(1)
	post := h.posts.add(2, "Meu primeiro pet!")
	path := "/api/posts/" + post.ID.Hex() + "/like"

	rec, body := h.request(t, http.MethodPost, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if body["liked"] != true || body["likesCount"] != float64(1) {
		t.Fatalf("body = %v, want liked true with likesCount 1", body)
	}
	if post.LikesCount != 1 {
		t.Fatalf("post.LikesCount = %d, want 1", post.LikesCount)
	}

	rec, body = h.request(t, http.MethodPost, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("second toggle status = %d, want 200", rec.Code)
	}
	if body["liked"] != false || body["likesCount"] != float64(0) {
		t.Fatalf("second toggle body = %v, want liked false with likesCount 0", body)
	}
	if post.LikesCount != 0 {
		t.Fatalf("post.LikesCount after unlike = %d, want 0", post.LikesCount)
	}
}

func TestLikeNotifiesPostOwner(t *testing.T) {
	h := newInteractionHarness(1)
	post := h.posts.add(2, "Adotem a Mel!")

	rec, _ := h.request(t, http.MethodPost, "/api/posts/"+post.ID.Hex()+"/like", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(h.notifications.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(h.notifications.created))
	}
	n := h.notifications.created[0]
	if n.RecipientID != 2 || n.ActorID != 1 || n.Type != models.NotificationLike {
		t.Fatalf("notification = %+v, want like from user 1 to user 2", n)
	}
}

func TestLikeOwnPostSkipsNotification(t *testing.T) {
	h := newInteractionHarness(1)
	post := h.posts.add(1, "Selfie com o Thor")

	rec, _ := h.request(t, http.MethodPost, "/api/posts/"+post.ID.Hex()+"/like", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(h.notifications.created) != 0 {
		t.Fatalf("notifications = %d, want 0 for self-like", len(h.notifications.created))
	}
}

func TestLikeMissingPost(t *testing.T) {
	h := newInteractionHarness(1)

	rec, body := h.request(t, http.MethodPost, "/api/posts/99999/like", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body["message"] != "Post não encontrado" {
		t.Fatalf("message = %v, want %q", body["message"], "Post não encontrado")
	}
}

func TestLikeRequiresAuthentication(t *testing.T) {
	h := newInteractionHarness(0)
	post := h.posts.add(2, "Post de teste")

	rec, body := h.request(t, http.MethodPost, "/api/posts/"+post.ID.Hex()+"/like", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body["message"] != "Não autenticado" {
		t.Fatalf("message = %v, want %q", body["message"], "Não autenticado")
	}
	if n, _ := h.interactions.Count(models.SubjectPost, post.ID.Hex(), models.KindLike); n != 0 {
		t.Fatalf("stored likes = %d, want 0 after rejected request", n)
	}
}

func TestCommentFlow(t *testing.T) {
	h := newInteractionHarness(1)
	post := h.posts.add(2, "Olha esse filhote")
	base := "/api/posts/" + post.ID.Hex() + "/comments"

	rec, body := h.request(t, http.MethodPost, base, `{"content":"Cute!"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	if body["content"] != "Cute!" || body["username"] != "ana" {
		t.Fatalf("body = %v, want content Cute! by ana", body)
	}
	if post.CommentsCount != 1 {
		t.Fatalf("post.CommentsCount = %d, want 1", post.CommentsCount)
	}

	rec, _ = h.request(t, http.MethodGet, base, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var views []models.CommentView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode comments: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("len(comments) = %d, want 1", len(views))
	}
	if views[0].Content != "Cute!" || views[0].Username != "ana" || views[0].LikesCount != 0 {
		t.Fatalf("comment view = %+v", views[0])
	}
}

func TestEmptyCommentRejected(t *testing.T) {
	h := newInteractionHarness(1)
	post := h.posts.add(2, "Post de teste")

	rec, body := h.request(t, http.MethodPost, "/api/posts/"+post.ID.Hex()+"/comments", `{"content":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["message"] != "Comentário não pode ser vazio" {
		t.Fatalf("message = %v, want %q", body["message"], "Comentário não pode ser vazio")
	}
	if post.CommentsCount != 0 {
		t.Fatalf("post.CommentsCount = %d, want 0", post.CommentsCount)
	}
}

func TestCommentLikeEndpoint(t *testing.T) {
	h := newInteractionHarness(2)
	post := h.posts.add(2, "Post de teste")

	rec, _ := h.request(t, http.MethodPost, "/api/posts/"+post.ID.Hex()+"/comments", `{"content":"Lindo!"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment status = %d, want 201", rec.Code)
	}

	rec, body := h.request(t, http.MethodPost, "/api/comments/1/toggle-like", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if body["liked"] != true || body["likesCount"] != float64(1) {
		t.Fatalf("body = %v, want liked true with likesCount 1", body)
	}

	rec, body = h.request(t, http.MethodPost, "/api/comments/99999/toggle-like", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing comment status = %d, want 404", rec.Code)
	}
	if body["message"] != "Comentário não encontrado" {
		t.Fatalf("message = %v, want %q", body["message"], "Comentário não encontrado")
	}
}

func TestSavedPostsListing(t *testing.T) {
	h := newInteractionHarness(1)
	first := h.posts.add(2, "Primeiro")
	second := h.posts.add(2, "Segundo")

	for _, p := range []*models.Post{first, second} {
		rec, body := h.request(t, http.MethodPost, "/api/posts/"+p.ID.Hex()+"/save", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("save status = %d, want 200", rec.Code)
		}
		if body["saved"] != true {
			t.Fatalf("save body = %v, want saved true", body)
		}
		if _, ok := body["likesCount"]; ok {
			t.Fatalf("save response carries a count: %v", body)
		}
	}

	rec, _ := h.request(t, http.MethodGet, "/api/me/saved-posts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var listing struct {
		Posts []models.Post `json:"posts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode saved posts: %v", err)
	}
	if len(listing.Posts) != 2 {
		t.Fatalf("len(saved) = %d, want 2", len(listing.Posts))
	}
	// Newest save first
	if listing.Posts[0].ID != second.ID || listing.Posts[1].ID != first.ID {
		t.Fatalf("saved order = [%s %s], want newest first", listing.Posts[0].ID.Hex(), listing.Posts[1].ID.Hex())
	}

	// Unsave drops the post from the listing
	rec, body := h.request(t, http.MethodDelete, "/api/posts/"+first.ID.Hex()+"/save", "")
	if rec.Code != http.StatusOK || body["saved"] != false {
		t.Fatalf("unsave = %d %v, want 200 saved false", rec.Code, body)
	}
	rec, _ = h.request(t, http.MethodGet, "/api/me/saved-posts", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode saved posts: %v", err)
	}
	if len(listing.Posts) != 1 || listing.Posts[0].ID != second.ID {
		t.Fatalf("saved after unsave = %d posts, want only the second", len(listing.Posts))
	}
}
