package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/patinhas-app/backend/internal/models"
)

// fakeInteractionRepo is an in-memory InteractionRepository
type fakeInteractionRepo struct {
	nextID        uint
	rows          map[uint]models.Interaction
	listBatchHits int
}

func newFakeInteractionRepo() *fakeInteractionRepo {
	return &fakeInteractionRepo{nextID: 1, rows: make(map[uint]models.Interaction)}
}

func (r *fakeInteractionRepo) Find(userID uint, subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (*models.Interaction, error) {
	for _, row := range r.rows {
		if row.UserID == userID && row.SubjectType == subjectType && row.SubjectID == subjectID && row.Kind == kind {
			found := row
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInteractionRepo) GetByID(id uint) (*models.Interaction, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *fakeInteractionRepo) InsertIfAbsent(interaction *models.Interaction) (bool, error) {
	if interaction.Kind != models.KindComment {
		if _, err := r.Find(interaction.UserID, interaction.SubjectType, interaction.SubjectID, interaction.Kind); err == nil {
			return false, nil
		}
	}
	if err := r.Insert(interaction); err != nil {
		return false, err
	}
	return true, nil
}

func (r *fakeInteractionRepo) Insert(interaction *models.Interaction) error {
	interaction.ID = r.nextID
	r.nextID++
	r.rows[interaction.ID] = *interaction
	return nil
}

func (r *fakeInteractionRepo) DeleteByID(id uint) (bool, error) {
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *fakeInteractionRepo) ListForSubject(subjectType models.SubjectType, subjectID string, kind models.InteractionKind) ([]models.Interaction, error) {
	var out []models.Interaction
	for id := uint(1); id < r.nextID; id++ {
		row, ok := r.rows[id]
		if ok && row.SubjectType == subjectType && row.SubjectID == subjectID && row.Kind == kind {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeInteractionRepo) ListForUser(userID uint, kind models.InteractionKind) ([]models.Interaction, error) {
	var out []models.Interaction
	for id := r.nextID; id > 0; id-- {
		row, ok := r.rows[id]
		if ok && row.UserID == userID && row.Kind == kind {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeInteractionRepo) ListForUserBySubjects(userID uint, subjectType models.SubjectType, subjectIDs []string, kinds []models.InteractionKind) ([]models.Interaction, error) {
	r.listBatchHits++
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

func (r *fakeInteractionRepo) Count(subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (int64, error) {
	var count int64
	for _, row := range r.rows {
		if row.SubjectType == subjectType && row.SubjectID == subjectID && row.Kind == kind {
			count++
		}
	}
	return count, nil
}

func (r *fakeInteractionRepo) CountBySubjects(subjectType models.SubjectType, subjectIDs []string, kind models.InteractionKind) (map[string]int64, error) {
	counts := make(map[string]int64, len(subjectIDs))
	for _, id := range subjectIDs {
		n, _ := r.Count(subjectType, id, kind)
		counts[id] = n
	}
	return counts, nil
}

// fakeSubjectStore records every counter write so tests can assert the
// maintainer pushed recomputed values
type fakeSubjectStore struct {
	existing map[string]bool
	counters map[string]map[models.InteractionKind]int64
	writes   int
}

func newFakeSubjectStore(ids ...string) *fakeSubjectStore {
	existing := make(map[string]bool, len(ids))
	for _, id := range ids {
		existing[id] = true
	}
	return &fakeSubjectStore{existing: existing, counters: make(map[string]map[models.InteractionKind]int64)}
}

func (s *fakeSubjectStore) Exists(ctx context.Context, id string) (bool, error) {
	return s.existing[id], nil
}

func (s *fakeSubjectStore) SetCounter(ctx context.Context, id string, kind models.InteractionKind, value int64) error {
	s.writes++
	if s.counters[id] == nil {
		s.counters[id] = make(map[models.InteractionKind]int64)
	}
	s.counters[id][kind] = value
	return nil
}

func newTestService(posts, pets *fakeSubjectStore) (*InteractionService, *fakeInteractionRepo) {
	repo := newFakeInteractionRepo()
	subjects := map[models.SubjectType]SubjectStore{
		models.SubjectPost: posts,
		models.SubjectPet:  pets,
	}
	return NewInteractionService(repo, subjects), repo
}

func TestToggleAlternates(t *testing.T) {
	posts := newFakeSubjectStore("abc123")
	svc, _ := newTestService(posts, newFakeSubjectStore())
	ctx := context.Background()

	res, err := svc.Toggle(ctx, 1, models.SubjectPost, "abc123", models.KindLike)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !res.Present || res.Count != 1 {
		t.Fatalf("first toggle = %+v, want present with count 1", res)
	}
	if got := posts.counters["abc123"][models.KindLike]; got != 1 {
		t.Fatalf("likes counter after toggle on = %d, want 1", got)
	}

	res, err = svc.Toggle(ctx, 1, models.SubjectPost, "abc123", models.KindLike)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if res.Present || res.Count != 0 {
		t.Fatalf("second toggle = %+v, want absent with count 0", res)
	}
	if got := posts.counters["abc123"][models.KindLike]; got != 0 {
		t.Fatalf("likes counter after toggle off = %d, want 0", got)
	}
}

func TestToggleCountsDistinctUsers(t *testing.T) {
	posts := newFakeSubjectStore("abc123")
	svc, repo := newTestService(posts, newFakeSubjectStore())
	ctx := context.Background()

	for userID := uint(1); userID <= 3; userID++ {
		res, err := svc.Toggle(ctx, userID, models.SubjectPost, "abc123", models.KindLike)
		if err != nil {
			t.Fatalf("toggle for user %d: %v", userID, err)
		}
		if res.Count != int64(userID) {
			t.Fatalf("count after user %d = %d, want %d", userID, res.Count, userID)
		}
	}

	if n, _ := repo.Count(models.SubjectPost, "abc123", models.KindLike); n != 3 {
		t.Fatalf("stored likes = %d, want 3", n)
	}
}

func TestToggleValidation(t *testing.T) {
	posts := newFakeSubjectStore("abc123")
	svc, _ := newTestService(posts, newFakeSubjectStore())
	ctx := context.Background()

	tests := []struct {
		name        string
		subjectType models.SubjectType
		subjectID   string
		kind        models.InteractionKind
		wantErr     error
	}{
		{"comment kind rejected", models.SubjectPost, "abc123", models.KindComment, ErrInvalidInput},
		{"unknown subject type", "story", "abc123", models.KindLike, ErrInvalidInput},
		{"missing subject", models.SubjectPost, "99999", models.KindLike, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Toggle(ctx, 1, tt.subjectType, tt.subjectID, tt.kind)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Toggle() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestToggleRecomputesDriftedCounter(t *testing.T) {
	posts := newFakeSubjectStore("abc123")
	// A drifted denormalized value must be overwritten, not incremented
	posts.counters["abc123"] = map[models.InteractionKind]int64{models.KindLike: 42}
	svc, _ := newTestService(posts, newFakeSubjectStore())

	res, err := svc.Toggle(context.Background(), 1, models.SubjectPost, "abc123", models.KindLike)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("count = %d, want authoritative 1", res.Count)
	}
	if got := posts.counters["abc123"][models.KindLike]; got != 1 {
		t.Fatalf("counter = %d, want recomputed 1", got)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	posts := newFakeSubjectStore("abc123")
	svc, _ := newTestService(posts, newFakeSubjectStore())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := svc.Remove(ctx, 1, models.SubjectPost, "abc123", models.KindLike)
		if err != nil {
			t.Fatalf("remove #%d: %v", i+1, err)
		}
		if res.Present || res.Count != 0 {
			t.Fatalf("remove #%d = %+v, want absent with count 0", i+1, res)
		}
	}
}

func TestSaveToggleSkipsCounterWrite(t *testing.T) {
	posts := newFakeSubjectStore("abc123")
	svc, _ := newTestService(posts, newFakeSubjectStore())

	res, err := svc.Toggle(context.Background(), 1, models.SubjectPost, "abc123", models.KindSave)
	if err != nil {
		t.Fatalf("toggle save: %v", err)
	}
	if !res.Present || res.Count != 1 {
		t.Fatalf("toggle save = %+v, want present with count 1", res)
	}
	if posts.writes != 0 {
		t.Fatalf("saves wrote %d counter updates, want 0", posts.writes)
	}
}

func TestAddComment(t *testing.T) {
	posts := newFakeSubjectStore("abc123")
	svc, repo := newTestService(posts, newFakeSubjectStore())
	ctx := context.Background()

	t.Run("rejects blank content", func(t *testing.T) {
		for _, content := range []string{"", "   ", "\n\t"} {
			if _, err := svc.AddComment(ctx, 1, models.SubjectPost, "abc123", content); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("AddComment(%q) error = %v, want ErrInvalidInput", content, err)
			}
		}
	})

	t.Run("rejects commenting on a comment", func(t *testing.T) {
		if _, err := svc.AddComment(ctx, 1, models.SubjectComment, "1", "hi"); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("AddComment on comment error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("same user may comment repeatedly", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if _, err := svc.AddComment(ctx, 1, models.SubjectPost, "abc123", "Que fofo!"); err != nil {
				t.Fatalf("comment #%d: %v", i+1, err)
			}
		}
		comments, err := svc.Comments(ctx, models.SubjectPost, "abc123")
		if err != nil {
			t.Fatalf("comments: %v", err)
		}
		if len(comments) != 2 {
			t.Fatalf("len(comments) = %d, want 2", len(comments))
		}
		if got := posts.counters["abc123"][models.KindComment]; got != 2 {
			t.Fatalf("comments counter = %d, want 2", got)
		}
		if n, _ := repo.Count(models.SubjectPost, "abc123", models.KindComment); n != 2 {
			t.Fatalf("stored comments = %d, want 2", n)
		}
	})
}

func TestCommentByID(t *testing.T) {
	posts := newFakeSubjectStore("abc123")
	svc, repo := newTestService(posts, newFakeSubjectStore())
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, 1, models.SubjectPost, "abc123", "Cute!")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	like := &models.Interaction{UserID: 2, SubjectType: models.SubjectPost, SubjectID: "abc123", Kind: models.KindLike}
	if err := repo.Insert(like); err != nil {
		t.Fatalf("insert like: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"existing comment", "1", nil},
		{"malformed id", "not-a-number", ErrNotFound},
		{"missing id", "9999", ErrNotFound},
		{"like row is not a comment", "2", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CommentByID(ctx, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CommentByID(%q) error = %v, want %v", tt.id, err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != comment.ID {
				t.Fatalf("CommentByID(%q).ID = %d, want %d", tt.id, got.ID, comment.ID)
			}
		})
	}
}

func TestCommentLikeToggle(t *testing.T) {
	repo := newFakeInteractionRepo()
	subjects := map[models.SubjectType]SubjectStore{
		models.SubjectPost:    newFakeSubjectStore("abc123"),
		models.SubjectComment: &commentSubjectStore{interactions: repo},
	}
	svc := NewInteractionService(repo, subjects)
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, 1, models.SubjectPost, "abc123", "Lindo!")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	commentID := "1"
	res, err := svc.Toggle(ctx, 2, models.SubjectComment, commentID, models.KindLike)
	if err != nil {
		t.Fatalf("toggle like on comment: %v", err)
	}
	if !res.Present || res.Count != 1 {
		t.Fatalf("toggle = %+v, want present with count 1", res)
	}

	counts, err := svc.CommentLikeCounts(ctx, []string{commentID})
	if err != nil {
		t.Fatalf("comment like counts: %v", err)
	}
	if counts[commentID] != 1 {
		t.Fatalf("like count for comment %d = %d, want 1", comment.ID, counts[commentID])
	}

	// Liking an id that is not a comment row must 404
	if _, err := svc.Toggle(ctx, 2, models.SubjectComment, "9999", models.KindLike); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle on missing comment error = %v, want ErrNotFound", err)
	}
}

func TestFlags(t *testing.T) {
	posts := newFakeSubjectStore("a", "b", "c")
	svc, repo := newTestService(posts, newFakeSubjectStore())
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, 7, models.SubjectPost, "a", models.KindLike); err != nil {
		t.Fatalf("seed like: %v", err)
	}
	if _, err := svc.Toggle(ctx, 7, models.SubjectPost, "b", models.KindSave); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	repo.listBatchHits = 0
	flags, err := svc.Flags(ctx, 7, models.SubjectPost, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	if repo.listBatchHits != 1 {
		t.Fatalf("flag annotation made %d queries, want 1", repo.listBatchHits)
	}
	want := map[string]Flags{
		"a": {Liked: true},
		"b": {Saved: true},
		"c": {},
	}
	for id, w := range want {
		if flags[id] != w {
			t.Fatalf("flags[%q] = %+v, want %+v", id, flags[id], w)
		}
	}
}

func TestFlagsAnonymousViewer(t *testing.T) {
	posts := newFakeSubjectStore("a", "b")
	svc, repo := newTestService(posts, newFakeSubjectStore())

	if _, err := svc.Toggle(context.Background(), 7, models.SubjectPost, "a", models.KindLike); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	repo.listBatchHits = 0
	flags, err := svc.Flags(context.Background(), 0, models.SubjectPost, []string{"a", "b"})
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	if repo.listBatchHits != 0 {
		t.Fatalf("anonymous annotation made %d queries, want 0", repo.listBatchHits)
	}
	for id, f := range flags {
		if f.Liked || f.Saved {
			t.Fatalf("flags[%q] = %+v, want all false for anonymous viewer", id, f)
		}
	}
}
