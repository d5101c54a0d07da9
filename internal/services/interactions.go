package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
	"gorm.io/gorm"
)

// SubjectStore is the per-subject-type view the interaction service needs: an
// existence check and a counter setter. Counters are overwritten with
// recomputed values, never incremented, so they cannot drift from the
// interactions table.
type SubjectStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	SetCounter(ctx context.Context, id string, kind models.InteractionKind, value int64) error
}

// ToggleResult reports the post-transition state of a like/save tuple
type ToggleResult struct {
	Present bool
	Count   int64
}

// Flags annotates one subject with the viewer's like/save state
type Flags struct {
	Liked bool
	Saved bool
}

// CounterMaintainer keeps denormalized counters equal to the authoritative
// interaction counts. It is the only code path that writes counter fields.
type CounterMaintainer struct {
	interactions repositories.InteractionRepository
	subjects     map[models.SubjectType]SubjectStore
}

// NewCounterMaintainer creates a CounterMaintainer over the given subject stores
func NewCounterMaintainer(interactions repositories.InteractionRepository, subjects map[models.SubjectType]SubjectStore) *CounterMaintainer {
	return &CounterMaintainer{interactions: interactions, subjects: subjects}
}

// Refresh recomputes the authoritative count for (subject, kind), pushes it
// into the subject's counter field and returns it.
func (m *CounterMaintainer) Refresh(ctx context.Context, subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (int64, error) {
	count, err := m.interactions.Count(subjectType, subjectID, kind)
	if err != nil {
		return 0, err
	}
	store, ok := m.subjects[subjectType]
	if !ok {
		return 0, fmt.Errorf("no subject store registered for %q", subjectType)
	}
	if err := store.SetCounter(ctx, subjectID, kind, count); err != nil {
		return 0, err
	}
	return count, nil
}

// InteractionService implements the consolidated toggle, comment and feed
// annotation contracts over the interaction store.
type InteractionService struct {
	interactions repositories.InteractionRepository
	maintainer   *CounterMaintainer
	subjects     map[models.SubjectType]SubjectStore
}

// NewInteractionService creates an InteractionService
func NewInteractionService(interactions repositories.InteractionRepository, subjects map[models.SubjectType]SubjectStore) *InteractionService {
	return &InteractionService{
		interactions: interactions,
		maintainer:   NewCounterMaintainer(interactions, subjects),
		subjects:     subjects,
	}
}

func (s *InteractionService) subjectExists(ctx context.Context, subjectType models.SubjectType, subjectID string) error {
	store, ok := s.subjects[subjectType]
	if !ok {
		return ErrInvalidInput
	}
	exists, err := store.Exists(ctx, subjectID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// Toggle flips the (user, subject, kind) relation: insert when absent, delete
// when present. The returned count is recomputed from the interaction store,
// not incremented locally, so the response is correct even if the counter
// field had drifted.
func (s *InteractionService) Toggle(ctx context.Context, userID uint, subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (ToggleResult, error) {
	if kind != models.KindLike && kind != models.KindSave {
		return ToggleResult{}, ErrInvalidInput
	}
	if err := s.subjectExists(ctx, subjectType, subjectID); err != nil {
		return ToggleResult{}, err
	}

	existing, err := s.interactions.Find(userID, subjectType, subjectID, kind)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return ToggleResult{}, err
	}

	var present bool
	if existing == nil {
		inserted, err := s.interactions.InsertIfAbsent(&models.Interaction{
			UserID:      userID,
			SubjectType: subjectType,
			SubjectID:   subjectID,
			Kind:        kind,
		})
		if err != nil {
			return ToggleResult{}, err
		}
		if !inserted {
			// Lost a race with a concurrent toggle; the tuple is already
			// present and the unique index kept a single row.
			return ToggleResult{}, ErrDuplicateInteraction
		}
		present = true
	} else {
		// A concurrent delete having gotten there first is fine; the end
		// state is the same.
		if _, err := s.interactions.DeleteByID(existing.ID); err != nil {
			return ToggleResult{}, err
		}
		present = false
	}

	count, err := s.refreshCounter(ctx, subjectType, subjectID, kind)
	if err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Present: present, Count: count}, nil
}

// Remove forces the tuple absent regardless of current state (DELETE routes)
func (s *InteractionService) Remove(ctx context.Context, userID uint, subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (ToggleResult, error) {
	if kind != models.KindLike && kind != models.KindSave {
		return ToggleResult{}, ErrInvalidInput
	}
	if err := s.subjectExists(ctx, subjectType, subjectID); err != nil {
		return ToggleResult{}, err
	}

	existing, err := s.interactions.Find(userID, subjectType, subjectID, kind)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return ToggleResult{}, err
	}
	if existing != nil {
		if _, err := s.interactions.DeleteByID(existing.ID); err != nil {
			return ToggleResult{}, err
		}
	}

	count, err := s.refreshCounter(ctx, subjectType, subjectID, kind)
	if err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Present: false, Count: count}, nil
}

// AddComment appends a comment interaction and refreshes the subject's
// comments counter. Comments are permanent; there is no removal operation.
func (s *InteractionService) AddComment(ctx context.Context, userID uint, subjectType models.SubjectType, subjectID string, content string) (*models.Interaction, error) {
	if subjectType == models.SubjectComment {
		return nil, ErrInvalidInput
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrInvalidInput
	}
	if err := s.subjectExists(ctx, subjectType, subjectID); err != nil {
		return nil, err
	}

	comment := &models.Interaction{
		UserID:      userID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Kind:        models.KindComment,
		Payload:     content,
	}
	if err := s.interactions.Insert(comment); err != nil {
		return nil, err
	}
	if _, err := s.maintainer.Refresh(ctx, subjectType, subjectID, models.KindComment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Comments lists a subject's comments, oldest first
func (s *InteractionService) Comments(ctx context.Context, subjectType models.SubjectType, subjectID string) ([]models.Interaction, error) {
	if err := s.subjectExists(ctx, subjectType, subjectID); err != nil {
		return nil, err
	}
	return s.interactions.ListForSubject(subjectType, subjectID, models.KindComment)
}

// CommentByID retrieves one comment interaction; non-comment rows and
// malformed ids surface ErrNotFound.
func (s *InteractionService) CommentByID(ctx context.Context, id string) (*models.Interaction, error) {
	numericID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return nil, ErrNotFound
	}
	row, err := s.interactions.GetByID(uint(numericID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if row.Kind != models.KindComment {
		return nil, ErrNotFound
	}
	return row, nil
}

// CommentLikeCounts batch-counts likes for a page of comments. Comments have
// no denormalized counter; counts always come from the store.
func (s *InteractionService) CommentLikeCounts(ctx context.Context, commentIDs []string) (map[string]int64, error) {
	return s.interactions.CountBySubjects(models.SubjectComment, commentIDs, models.KindLike)
}

// Flags batch-annotates a page of subjects with the viewer's like/save state.
// An anonymous viewer (id 0) gets all-false flags without touching storage.
func (s *InteractionService) Flags(ctx context.Context, viewerID uint, subjectType models.SubjectType, subjectIDs []string) (map[string]Flags, error) {
	flags := make(map[string]Flags, len(subjectIDs))
	for _, id := range subjectIDs {
		flags[id] = Flags{}
	}
	if viewerID == 0 || len(subjectIDs) == 0 {
		return flags, nil
	}

	rows, err := s.interactions.ListForUserBySubjects(viewerID, subjectType, subjectIDs,
		[]models.InteractionKind{models.KindLike, models.KindSave})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		f := flags[row.SubjectID]
		switch row.Kind {
		case models.KindLike:
			f.Liked = true
		case models.KindSave:
			f.Saved = true
		}
		flags[row.SubjectID] = f
	}
	return flags, nil
}

// ListForUser exposes a user's own interactions ("my likes", "my saved")
func (s *InteractionService) ListForUser(userID uint, kind models.InteractionKind) ([]models.Interaction, error) {
	return s.interactions.ListForUser(userID, kind)
}

// refreshCounter updates the denormalized counter for kinds that have one.
// Saves are a per-user relation with no aggregate on the subject.
func (s *InteractionService) refreshCounter(ctx context.Context, subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (int64, error) {
	if kind == models.KindSave {
		return s.interactions.Count(subjectType, subjectID, kind)
	}
	return s.maintainer.Refresh(ctx, subjectType, subjectID, kind)
}
