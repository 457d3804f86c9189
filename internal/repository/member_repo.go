package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// MemberRepository defines data operations for household members.
type MemberRepository interface {
	List(ctx context.Context) ([]models.Member, error)
	ListByRole(ctx context.Context, role string) ([]models.Member, error)
	GetByID(ctx context.Context, id uint) (models.Member, error)
	Create(ctx context.Context, member *models.Member) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository instantiates the repository.
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) List(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}

func (r *memberRepository) ListByRole(ctx context.Context, role string) ([]models.Member, error) {
	var members []models.Member
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("name ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return models.Member{}, err
	}

	return member, nil
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}
