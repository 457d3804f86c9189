package service_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/repository"
	"github.com/choreboardhq/choreboard-api/internal/service"
)

func TestCreateChoreRegistersRuleKeyedByID(t *testing.T) {
	db := newTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	ruleRepo := repository.NewRuleRepository(db)

	chores := service.NewChoreService(repository.NewChoreRepository(db), ruleRepo, validate, testLogger())

	chore, err := chores.Create(context.Background(), dto.ChoreCreateRequest{
		Title:        "Kitchen Cleanup",
		Description:  "Clear and wipe the kitchen counter.",
		Checklist:    []string{"counter clear", "floor swept"},
		RewardPoints: 20,
	})
	require.NoError(t, err)

	rule, err := ruleRepo.GetByTask(context.Background(), "chore", strconv.FormatUint(uint64(chore.ID), 10))
	require.NoError(t, err)
	require.True(t, rule.AutoReview)
	require.InDelta(t, 20, rule.RewardPoints, 0.001)
	require.Len(t, rule.Checklist, 2)

	// The title is mutable; a rename must never orphan the rule, so it is
	// not part of the key.
	_, err = ruleRepo.GetByTask(context.Background(), "chore", "Kitchen Cleanup")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateChoreWithoutChecklistRegistersNoRule(t *testing.T) {
	db := newTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	ruleRepo := repository.NewRuleRepository(db)

	chores := service.NewChoreService(repository.NewChoreRepository(db), ruleRepo, validate, testLogger())

	chore, err := chores.Create(context.Background(), dto.ChoreCreateRequest{
		Title: "Water the plants",
	})
	require.NoError(t, err)

	_, err = ruleRepo.GetByTask(context.Background(), "chore", strconv.FormatUint(uint64(chore.ID), 10))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
