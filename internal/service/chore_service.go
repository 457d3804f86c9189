package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/repository"
)

// ErrChoreNotFound indicates the chore does not exist.
var ErrChoreNotFound = errors.New("chore not found")

// ChoreService manages chore definitions. Creating a chore with a checklist
// also registers the evaluation rule that the proof pipeline resolves
// against.
type ChoreService interface {
	Create(ctx context.Context, req dto.ChoreCreateRequest) (dto.ChoreResponse, error)
	Update(ctx context.Context, id uint, req dto.ChoreUpdateRequest) (dto.ChoreResponse, error)
	GetByID(ctx context.Context, id uint) (dto.ChoreResponse, error)
	List(ctx context.Context, filter dto.ChoreFilter) ([]dto.ChoreResponse, error)
}

type choreService struct {
	chores    repository.ChoreRepository
	rules     repository.RuleRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewChoreService constructs the chore service.
func NewChoreService(chores repository.ChoreRepository, rules repository.RuleRepository, validate *validator.Validate, logger zerolog.Logger) ChoreService {
	return &choreService{
		chores:    chores,
		rules:     rules,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "chore_service").Logger(),
	}
}

func (s *choreService) Create(ctx context.Context, req dto.ChoreCreateRequest) (dto.ChoreResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ChoreResponse{}, err
	}

	category := req.Category
	if category == "" {
		category = string(models.TaskCategoryChore)
	}

	chore := models.Chore{
		Title:        strings.TrimSpace(s.sanitizer.Sanitize(req.Title)),
		Description:  s.sanitizer.Sanitize(req.Description),
		Category:     category,
		Room:         strings.TrimSpace(req.Room),
		Checklist:    datatypes.JSONSlice[string](req.Checklist),
		RewardPoints: req.RewardPoints,
		DueWeekday:   req.DueWeekday,
		Active:       true,
	}

	if err := s.chores.Create(ctx, &chore); err != nil {
		return dto.ChoreResponse{}, err
	}

	if len(req.Checklist) > 0 {
		// The rule is keyed by the chore id, not the title: titles can be
		// renamed later and must not orphan the rule.
		rule := models.EvaluationRule{
			Category:       chore.Category,
			TaskIdentifier: strconv.FormatUint(uint64(chore.ID), 10),
			Scope:          chore.Description,
			Criteria:       "Every checklist item must be visibly complete in the photo.",
			Checklist:      chore.Checklist,
			AutoReview:     true,
			RewardPoints:   chore.RewardPoints,
		}
		if err := s.rules.Create(ctx, &rule); err != nil {
			s.logger.Warn().Err(err).Str("title", chore.Title).Msg("failed to register evaluation rule, proofs will go to human review")
		}
	}

	return dto.NewChoreResponse(chore), nil
}

func (s *choreService) Update(ctx context.Context, id uint, req dto.ChoreUpdateRequest) (dto.ChoreResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ChoreResponse{}, err
	}

	chore, err := s.chores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChoreResponse{}, ErrChoreNotFound
		}
		return dto.ChoreResponse{}, err
	}

	if req.Title != nil {
		chore.Title = strings.TrimSpace(s.sanitizer.Sanitize(*req.Title))
	}
	if req.Description != nil {
		chore.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.Checklist != nil {
		chore.Checklist = datatypes.JSONSlice[string](req.Checklist)
	}
	if req.AssigneeID != nil {
		chore.AssigneeID = req.AssigneeID
	}
	if req.RewardPoints != nil {
		chore.RewardPoints = *req.RewardPoints
	}
	if req.DueWeekday != nil {
		chore.DueWeekday = req.DueWeekday
	}
	if req.Active != nil {
		chore.Active = *req.Active
	}

	if err := s.chores.Update(ctx, &chore); err != nil {
		return dto.ChoreResponse{}, err
	}

	return dto.NewChoreResponse(chore), nil
}

func (s *choreService) GetByID(ctx context.Context, id uint) (dto.ChoreResponse, error) {
	chore, err := s.chores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChoreResponse{}, ErrChoreNotFound
		}
		return dto.ChoreResponse{}, err
	}

	return dto.NewChoreResponse(chore), nil
}

func (s *choreService) List(ctx context.Context, filter dto.ChoreFilter) ([]dto.ChoreResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	chores, err := s.chores.List(ctx, repository.ChoreFilter{
		AssigneeID: filter.AssigneeID,
		Category:   filter.Category,
		ActiveOnly: filter.ActiveOnly,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewChoreResponseSlice(chores), nil
}
