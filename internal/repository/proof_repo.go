package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// ErrStaleProof indicates a guarded update found the proof in a different
// status than required. Callers surface this as a conflict.
var ErrStaleProof = errors.New("proof status changed concurrently")

// ProofFilter narrows proof queries.
type ProofFilter struct {
	MemberID *uint
	Status   *string
	Category *string
}

// ProofRepository defines data operations for proofs.
type ProofRepository interface {
	List(ctx context.Context, filter ProofFilter) ([]models.Proof, error)
	GetByID(ctx context.Context, id uint) (models.Proof, error)
	Create(ctx context.Context, proof *models.Proof) error
	Update(ctx context.Context, proof *models.Proof) error
	UpdateFromStatus(ctx context.Context, proof *models.Proof, fromStatus string) error
}

type proofRepository struct {
	db *gorm.DB
}

// NewProofRepository instantiates the repository.
func NewProofRepository(db *gorm.DB) ProofRepository {
	return &proofRepository{db: db}
}

func (r *proofRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Proof{}).Preload("Member")
}

func (r *proofRepository) List(ctx context.Context, filter ProofFilter) ([]models.Proof, error) {
	query := r.baseQuery(ctx)

	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}

	var proofs []models.Proof
	if err := query.Order("created_at DESC").Find(&proofs).Error; err != nil {
		return nil, err
	}

	return proofs, nil
}

func (r *proofRepository) GetByID(ctx context.Context, id uint) (models.Proof, error) {
	var proof models.Proof
	if err := r.baseQuery(ctx).First(&proof, id).Error; err != nil {
		return models.Proof{}, err
	}

	return proof, nil
}

func (r *proofRepository) Create(ctx context.Context, proof *models.Proof) error {
	return r.db.WithContext(ctx).Create(proof).Error
}

func (r *proofRepository) Update(ctx context.Context, proof *models.Proof) error {
	return r.db.WithContext(ctx).Save(proof).Error
}

// UpdateFromStatus persists the proof only if its stored status still equals
// fromStatus. Concurrent resubmissions and double reviews are serialized by
// this guard: the loser sees ErrStaleProof.
func (r *proofRepository) UpdateFromStatus(ctx context.Context, proof *models.Proof, fromStatus string) error {
	result := r.db.WithContext(ctx).Model(&models.Proof{}).
		Where("id = ? AND status = ?", proof.ID, fromStatus).
		Select("*").Omit("id", "created_at", "Member").
		Updates(proof)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrStaleProof
	}

	return nil
}
