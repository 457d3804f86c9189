package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// ChoreFilter narrows chore queries.
type ChoreFilter struct {
	AssigneeID *uint
	Category   *string
	ActiveOnly bool
}

// ChoreRepository defines data operations for chores.
type ChoreRepository interface {
	List(ctx context.Context, filter ChoreFilter) ([]models.Chore, error)
	GetByID(ctx context.Context, id uint) (models.Chore, error)
	Create(ctx context.Context, chore *models.Chore) error
	Update(ctx context.Context, chore *models.Chore) error
}

type choreRepository struct {
	db *gorm.DB
}

// NewChoreRepository instantiates the repository.
func NewChoreRepository(db *gorm.DB) ChoreRepository {
	return &choreRepository{db: db}
}

func (r *choreRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Chore{}).Preload("Assignee")
}

func (r *choreRepository) List(ctx context.Context, filter ChoreFilter) ([]models.Chore, error) {
	query := r.baseQuery(ctx)

	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}

	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var chores []models.Chore
	if err := query.Order("title ASC").Find(&chores).Error; err != nil {
		return nil, err
	}

	return chores, nil
}

func (r *choreRepository) GetByID(ctx context.Context, id uint) (models.Chore, error) {
	var chore models.Chore
	if err := r.baseQuery(ctx).First(&chore, id).Error; err != nil {
		return models.Chore{}, err
	}

	return chore, nil
}

func (r *choreRepository) Create(ctx context.Context, chore *models.Chore) error {
	return r.db.WithContext(ctx).Create(chore).Error
}

func (r *choreRepository) Update(ctx context.Context, chore *models.Chore) error {
	return r.db.WithContext(ctx).Save(chore).Error
}
