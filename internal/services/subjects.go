package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
	"gorm.io/gorm"
)

// NewSubjectStores wires one SubjectStore per subject type over the
// application repositories.
func NewSubjectStores(
	posts repositories.PostRepository,
	pets repositories.PetListingRepository,
	fundraisers repositories.FundraiserRepository,
	interactions repositories.InteractionRepository,
) map[models.SubjectType]SubjectStore {
	return map[models.SubjectType]SubjectStore{
		models.SubjectPost:       &postSubjectStore{posts: posts},
		models.SubjectPet:        &petSubjectStore{pets: pets},
		models.SubjectFundraiser: &fundraiserSubjectStore{fundraisers: fundraisers},
		models.SubjectComment:    &commentSubjectStore{interactions: interactions},
	}
}

type postSubjectStore struct {
	posts repositories.PostRepository
}

func (s *postSubjectStore) Exists(ctx context.Context, id string) (bool, error) {
	return s.posts.PostExists(ctx, id)
}

func (s *postSubjectStore) SetCounter(ctx context.Context, id string, kind models.InteractionKind, value int64) error {
	switch kind {
	case models.KindLike:
		return s.posts.SetLikesCount(ctx, id, value)
	case models.KindComment:
		return s.posts.SetCommentsCount(ctx, id, value)
	}
	return nil
}

type petSubjectStore struct {
	pets repositories.PetListingRepository
}

func (s *petSubjectStore) Exists(ctx context.Context, id string) (bool, error) {
	numericID, ok := parseNumericID(id)
	if !ok {
		return false, nil
	}
	return s.pets.ListingExists(numericID)
}

func (s *petSubjectStore) SetCounter(ctx context.Context, id string, kind models.InteractionKind, value int64) error {
	numericID, ok := parseNumericID(id)
	if !ok {
		return nil
	}
	switch kind {
	case models.KindLike:
		return s.pets.SetLikesCount(numericID, value)
	case models.KindComment:
		return s.pets.SetCommentsCount(numericID, value)
	}
	return nil
}

type fundraiserSubjectStore struct {
	fundraisers repositories.FundraiserRepository
}

func (s *fundraiserSubjectStore) Exists(ctx context.Context, id string) (bool, error) {
	numericID, ok := parseNumericID(id)
	if !ok {
		return false, nil
	}
	return s.fundraisers.FundraiserExists(numericID)
}

func (s *fundraiserSubjectStore) SetCounter(ctx context.Context, id string, kind models.InteractionKind, value int64) error {
	numericID, ok := parseNumericID(id)
	if !ok {
		return nil
	}
	switch kind {
	case models.KindLike:
		return s.fundraisers.SetLikesCount(numericID, value)
	case models.KindComment:
		return s.fundraisers.SetCommentsCount(numericID, value)
	}
	return nil
}

// commentSubjectStore lets comments themselves be liked. Comments carry no
// denormalized counter, so SetCounter does nothing; their like counts are
// always read from the interaction store.
type commentSubjectStore struct {
	interactions repositories.InteractionRepository
}

func (s *commentSubjectStore) Exists(ctx context.Context, id string) (bool, error) {
	numericID, ok := parseNumericID(id)
	if !ok {
		return false, nil
	}
	row, err := s.interactions.GetByID(numericID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return row.Kind == models.KindComment, nil
}

func (s *commentSubjectStore) SetCounter(ctx context.Context, id string, kind models.InteractionKind, value int64) error {
	return nil
}

func parseNumericID(id string) (uint, bool) {
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
