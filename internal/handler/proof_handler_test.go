package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/config"
	"github.com/choreboardhq/choreboard-api/internal/database"
	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/handler"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/repository"
	"github.com/choreboardhq/choreboard-api/internal/router"
	"github.com/choreboardhq/choreboard-api/internal/service"
	"github.com/choreboardhq/choreboard-api/pkg/ai"
	"github.com/choreboardhq/choreboard-api/pkg/cloudinary"
)

type testImageStore struct{}

func (testImageStore) Upload(_ context.Context, name string, _ io.Reader) (cloudinary.Asset, error) {
	return cloudinary.Asset{PublicID: "test/" + name, URL: "https://img.test/" + name}, nil
}

func (testImageStore) Delete(context.Context, string) error { return nil }

type testNotifier struct{}

func (testNotifier) Notify(context.Context, uint, string, string) {}

type testVision struct {
	result ai.VisionResult
}

func (v *testVision) Evaluate(context.Context, ai.VisionInput) (ai.VisionResult, error) {
	return v.result, nil
}

func setupProofApp(t *testing.T, vision *testVision) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newHandlerTestDB(t)

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.Nop()

	proofRepo := repository.NewProofRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	signalRepo := repository.NewSignalRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	ruleResolver := service.NewRuleResolver(ruleRepo, logger)
	patterns := service.NewPatternRetriever(signalRepo, 0, logger)
	activity := service.NewActivityService(activityRepo, validate, logger)
	rewards := service.NewRewardService(rewardRepo, nil, "test", 0, logger)
	memberService := service.NewMemberService(memberRepo, validate, logger)

	var evaluator service.ProofEvaluator
	if vision != nil {
		evaluator = service.NewProofEvaluator(vision, 0, logger)
	}

	proofService := service.NewProofService(
		proofRepo, memberRepo, ruleResolver, patterns, evaluator,
		testImageStore{}, testNotifier{}, activity, validate, 0, 0, logger,
	)
	reviewService := service.NewReviewService(
		proofRepo, ruleResolver, signalRepo, rewards,
		testNotifier{}, activity, validate, 5, logger,
	)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "ChoreBoard Test", JWTSecret: "secret"}, router.Dependencies{
		ProofHandler:  handler.NewProofHandler(proofService, logger),
		ReviewHandler: handler.NewReviewHandler(reviewService, memberService, logger),
		RewardHandler: handler.NewRewardHandler(rewards, logger),
		JWTMiddleware: headerAuth,
	})

	return app, db
}

// headerAuth lets tests impersonate members via plain headers.
func headerAuth(c *fiber.Ctx) error {
	if id, err := strconv.ParseUint(c.Get("X-Test-Member"), 10, 64); err == nil {
		c.Locals("member_id", uint(id))
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("member_role", role)
	}
	return c.Next()
}

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func multipartProof(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	part, err := writer.CreateFormFile("photo", "proof.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

type proofEnvelope struct {
	Success bool              `json:"success"`
	Data    dto.ProofResponse `json:"data"`
}

func submitTestProof(t *testing.T, app *fiber.App, memberID uint) dto.ProofResponse {
	t.Helper()

	body, contentType := multipartProof(t, map[string]string{
		"category":   "chore",
		"identifier": "kitchen-cleanup",
		"notes":      "all clean",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/proofs", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Test-Member", strconv.FormatUint(uint64(memberID), 10))
	req.Header.Set("X-Test-Role", models.MemberRoleKid)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var envelope proofEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestProofSubmissionEndToEnd(t *testing.T) {
	vision := &testVision{result: ai.VisionResult{Passed: true, Feedback: "nice", Confidence: 0.9}}
	app, db := setupProofApp(t, vision)

	kid := models.Member{Name: "Mika", Role: models.MemberRoleKid}
	require.NoError(t, db.Create(&kid).Error)
	rule := models.EvaluationRule{Category: "chore", TaskIdentifier: "kitchen-cleanup", AutoReview: true, RewardPoints: 15}
	require.NoError(t, db.Create(&rule).Error)

	proof := submitTestProof(t, app, kid.ID)
	require.Equal(t, models.ProofStatusPendingHuman, proof.Status)
	require.NotNil(t, proof.AutoPassed)
	require.True(t, *proof.AutoPassed)
}

func TestProofSubmissionRequiresPhoto(t *testing.T) {
	app, db := setupProofApp(t, nil)

	kid := models.Member{Name: "Mika", Role: models.MemberRoleKid}
	require.NoError(t, db.Create(&kid).Error)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("category", "chore"))
	require.NoError(t, writer.WriteField("identifier", "kitchen-cleanup"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/proofs", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Test-Member", "1")
	req.Header.Set("X-Test-Role", models.MemberRoleKid)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReviewApproveAndConflict(t *testing.T) {
	app, db := setupProofApp(t, nil)

	kid := models.Member{Name: "Mika", Role: models.MemberRoleKid}
	require.NoError(t, db.Create(&kid).Error)
	parent := models.Member{Name: "Sam", Role: models.MemberRoleParent}
	require.NoError(t, db.Create(&parent).Error)
	rule := models.EvaluationRule{Category: "chore", TaskIdentifier: "kitchen-cleanup", AutoReview: true, RewardPoints: 15}
	require.NoError(t, db.Create(&rule).Error)

	proof := submitTestProof(t, app, kid.ID)

	decision := func() *http.Request {
		payload, err := json.Marshal(dto.ReviewRequest{Decision: dto.ReviewDecisionApprove})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/proofs/%d/review", proof.ID), bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Member", strconv.FormatUint(uint64(parent.ID), 10))
		req.Header.Set("X-Test-Role", models.MemberRoleParent)
		return req
	}

	resp, err := app.Test(decision(), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(decision(), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	balanceReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/rewards/members/%d/balance", kid.ID), nil)
	balanceReq.Header.Set("X-Test-Member", strconv.FormatUint(uint64(parent.ID), 10))
	balanceReq.Header.Set("X-Test-Role", models.MemberRoleParent)

	resp, err = app.Test(balanceReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data dto.BalanceResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.InDelta(t, 15, envelope.Data.Balance, 0.001)
}

func TestReviewForbiddenForKids(t *testing.T) {
	app, db := setupProofApp(t, nil)

	kid := models.Member{Name: "Mika", Role: models.MemberRoleKid}
	require.NoError(t, db.Create(&kid).Error)
	rule := models.EvaluationRule{Category: "chore", TaskIdentifier: "kitchen-cleanup", AutoReview: true, RewardPoints: 15}
	require.NoError(t, db.Create(&rule).Error)

	proof := submitTestProof(t, app, kid.ID)

	payload, err := json.Marshal(dto.ReviewRequest{Decision: dto.ReviewDecisionApprove})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/proofs/%d/review", proof.ID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Member", strconv.FormatUint(uint64(kid.ID), 10))
	req.Header.Set("X-Test-Role", models.MemberRoleKid)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestEscalateEndpoint(t *testing.T) {
	app, db := setupProofApp(t, nil)

	kid := models.Member{Name: "Mika", Role: models.MemberRoleKid}
	require.NoError(t, db.Create(&kid).Error)

	proof := submitTestProof(t, app, kid.ID)
	require.Equal(t, models.ProofStatusPendingHuman, proof.Status)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/proofs/%d/escalate", proof.ID), nil)
	req.Header.Set("X-Test-Member", strconv.FormatUint(uint64(kid.ID), 10))
	req.Header.Set("X-Test-Role", models.MemberRoleKid)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope proofEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Data.Escalated)
}
