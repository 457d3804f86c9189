package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/repository"
)

// ErrMemberNotFound indicates the member does not exist.
var ErrMemberNotFound = errors.New("member not found")

// MemberService manages household members.
type MemberService interface {
	Create(ctx context.Context, req dto.MemberCreateRequest) (dto.MemberResponse, error)
	GetByID(ctx context.Context, id uint) (dto.MemberResponse, error)
	GetModel(ctx context.Context, id uint) (models.Member, error)
	List(ctx context.Context) ([]dto.MemberResponse, error)
}

type memberService struct {
	repo      repository.MemberRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewMemberService constructs the member service.
func NewMemberService(repo repository.MemberRepository, validate *validator.Validate, logger zerolog.Logger) MemberService {
	return &memberService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "member_service").Logger(),
	}
}

func (s *memberService) Create(ctx context.Context, req dto.MemberCreateRequest) (dto.MemberResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MemberResponse{}, err
	}

	member := models.Member{
		Name:      strings.TrimSpace(s.sanitizer.Sanitize(req.Name)),
		Role:      req.Role,
		AvatarURL: req.AvatarURL,
	}

	if err := s.repo.Create(ctx, &member); err != nil {
		return dto.MemberResponse{}, err
	}

	return dto.NewMemberResponse(member), nil
}

func (s *memberService) GetByID(ctx context.Context, id uint) (dto.MemberResponse, error) {
	member, err := s.GetModel(ctx, id)
	if err != nil {
		return dto.MemberResponse{}, err
	}

	return dto.NewMemberResponse(member), nil
}

// GetModel returns the raw member record. Review authorization needs the
// model, not the DTO.
func (s *memberService) GetModel(ctx context.Context, id uint) (models.Member, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Member{}, ErrMemberNotFound
		}
		return models.Member{}, err
	}

	return member, nil
}

func (s *memberService) List(ctx context.Context) ([]dto.MemberResponse, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewMemberResponseSlice(members), nil
}
