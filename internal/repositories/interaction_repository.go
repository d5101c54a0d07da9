package repositories

import (
	"github.com/patinhas-app/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InteractionRepository defines the interface for interaction data operations.
// The interactions table is the source of truth for all like/save/comment
// state; denormalized counters elsewhere are derived from it.
type InteractionRepository interface {
	Find(userID uint, subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (*models.Interaction, error)
	GetByID(id uint) (*models.Interaction, error)
	// InsertIfAbsent inserts a like/save row unless the unique tuple already
	// exists. Returns false when the row was already present.
	InsertIfAbsent(interaction *models.Interaction) (bool, error)
	Insert(interaction *models.Interaction) error
	// DeleteByID removes a row and reports whether anything was deleted.
	DeleteByID(id uint) (bool, error)
	ListForSubject(subjectType models.SubjectType, subjectID string, kind models.InteractionKind) ([]models.Interaction, error)
	ListForUser(userID uint, kind models.InteractionKind) ([]models.Interaction, error)
	// ListForUserBySubjects fetches the user's like/save rows for a page of
	// subject ids in a single IN query.
	ListForUserBySubjects(userID uint, subjectType models.SubjectType, subjectIDs []string, kinds []models.InteractionKind) ([]models.Interaction, error)
	Count(subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (int64, error)
	CountBySubjects(subjectType models.SubjectType, subjectIDs []string, kind models.InteractionKind) (map[string]int64, error)
}

// PostgresInteractionRepository implements InteractionRepository for PostgreSQL
type PostgresInteractionRepository struct {
	db *gorm.DB
}

// NewPostgresInteractionRepository creates a new PostgresInteractionRepository
func NewPostgresInteractionRepository(db *gorm.DB) *PostgresInteractionRepository {
	return &PostgresInteractionRepository{db: db}
}

// Find retrieves the interaction for a unique (user, subject, kind) tuple
func (r *PostgresInteractionRepository) Find(userID uint, subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (*models.Interaction, error) {
	var interaction models.Interaction
	err := r.db.
		Where("user_id = ? AND subject_type = ? AND subject_id = ? AND kind = ?", userID, subjectType, subjectID, kind).
		First(&interaction).Error
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

// GetByID retrieves an interaction by primary key
func (r *PostgresInteractionRepository) GetByID(id uint) (*models.Interaction, error) {
	var interaction models.Interaction
	if err := r.db.First(&interaction, id).Error; err != nil {
		return nil, err
	}
	return &interaction, nil
}

// InsertIfAbsent performs a conditional insert against the partial unique
// index, so two concurrent toggles cannot both create a row.
func (r *PostgresInteractionRepository) InsertIfAbsent(interaction *models.Interaction) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "subject_type"},
			{Name: "subject_id"},
			{Name: "kind"},
		},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "kind <> 'comment'"},
		}},
		DoNothing: true,
	}).Create(interaction)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Insert creates an interaction row unconditionally (comments)
func (r *PostgresInteractionRepository) Insert(interaction *models.Interaction) error {
	return r.db.Create(interaction).Error
}

// DeleteByID deletes an interaction and reports whether a row was removed
func (r *PostgresInteractionRepository) DeleteByID(id uint) (bool, error) {
	res := r.db.Delete(&models.Interaction{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListForSubject retrieves interactions targeting one subject, oldest first.
// Pass an empty kind to list every kind.
func (r *PostgresInteractionRepository) ListForSubject(subjectType models.SubjectType, subjectID string, kind models.InteractionKind) ([]models.Interaction, error) {
	var interactions []models.Interaction
	q := r.db.Where("subject_type = ? AND subject_id = ?", subjectType, subjectID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Order("created_at ASC").Find(&interactions).Error; err != nil {
		return nil, err
	}
	return interactions, nil
}

// ListForUser retrieves a user's interactions, newest first
func (r *PostgresInteractionRepository) ListForUser(userID uint, kind models.InteractionKind) ([]models.Interaction, error) {
	var interactions []models.Interaction
	q := r.db.Where("user_id = ?", userID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Order("created_at DESC").Find(&interactions).Error; err != nil {
		return nil, err
	}
	return interactions, nil
}

// ListForUserBySubjects retrieves the user's rows for a page of subjects
func (r *PostgresInteractionRepository) ListForUserBySubjects(userID uint, subjectType models.SubjectType, subjectIDs []string, kinds []models.InteractionKind) ([]models.Interaction, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	var interactions []models.Interaction
	err := r.db.
		Where("user_id = ? AND subject_type = ? AND subject_id IN ? AND kind IN ?", userID, subjectType, subjectIDs, kinds).
		Find(&interactions).Error
	if err != nil {
		return nil, err
	}
	return interactions, nil
}

// Count returns the authoritative interaction count for a subject and kind
func (r *PostgresInteractionRepository) Count(subjectType models.SubjectType, subjectID string, kind models.InteractionKind) (int64, error) {
	var count int64
	err := r.db.Model(&models.Interaction{}).
		Where("subject_type = ? AND subject_id = ? AND kind = ?", subjectType, subjectID, kind).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountBySubjects returns per-subject counts for a page of subjects in one
// GROUP BY query
func (r *PostgresInteractionRepository) CountBySubjects(subjectType models.SubjectType, subjectIDs []string, kind models.InteractionKind) (map[string]int64, error) {
	result := make(map[string]int64)
	if len(subjectIDs) == 0 {
		return result, nil
	}
	type row struct {
		SubjectID string
		Total     int64
	}
	var rows []row
	err := r.db.Model(&models.Interaction{}).
		Select("subject_id, COUNT(*) AS total").
		Where("subject_type = ? AND subject_id IN ? AND kind = ?", subjectType, subjectIDs, kind).
		Group("subject_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		result[r.SubjectID] = r.Total
	}
	return result, nil
}
