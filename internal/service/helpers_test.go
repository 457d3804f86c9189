package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/database"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/repository"
	"github.com/choreboardhq/choreboard-api/internal/service"
	"github.com/choreboardhq/choreboard-api/pkg/ai"
	"github.com/choreboardhq/choreboard-api/pkg/cloudinary"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

// stubVision implements ai.Evaluator with a canned result or failure.
type stubVision struct {
	result ai.VisionResult
	err    error
	block  bool

	mu    sync.Mutex
	calls int
}

func (s *stubVision) Evaluate(ctx context.Context, _ ai.VisionInput) (ai.VisionResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return ai.VisionResult{}, ctx.Err()
	}
	if s.err != nil {
		return ai.VisionResult{}, s.err
	}
	return s.result, nil
}

func (s *stubVision) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubImageStore implements service.ImageStore in memory.
type stubImageStore struct {
	mu      sync.Mutex
	uploads int
	deleted []string
	fail    bool
}

func (s *stubImageStore) Upload(_ context.Context, name string, _ io.Reader) (cloudinary.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return cloudinary.Asset{}, fmt.Errorf("upload unavailable")
	}

	s.uploads++
	return cloudinary.Asset{
		PublicID: fmt.Sprintf("test-%d", s.uploads),
		URL:      "https://img.test/" + name,
	}, nil
}

func (s *stubImageStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, publicID)
	return nil
}

// recordingNotifier captures notifications without delivering anything.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	MemberID uint
	Type     string
	Message  string
}

func (n *recordingNotifier) Notify(_ context.Context, memberID uint, notificationType, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{MemberID: memberID, Type: notificationType, Message: message})
}

func (n *recordingNotifier) byType(notificationType string) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()

	var matched []sentNotification
	for _, s := range n.sent {
		if s.Type == notificationType {
			matched = append(matched, s)
		}
	}
	return matched
}

// pipeline bundles everything needed to exercise the proof flow in tests.
type pipeline struct {
	db       *gorm.DB
	proofs   service.ProofService
	reviews  service.ReviewService
	rewards  service.RewardService
	vision   *stubVision
	images   *stubImageStore
	notifier *recordingNotifier
	validate *validator.Validate
}

func newPipeline(t *testing.T, vision *stubVision) *pipeline {
	t.Helper()

	db := newTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := testLogger()

	proofRepo := repository.NewProofRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	signalRepo := repository.NewSignalRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	images := &stubImageStore{}
	notifier := &recordingNotifier{}

	ruleResolver := service.NewRuleResolver(ruleRepo, logger)
	patterns := service.NewPatternRetriever(signalRepo, 0, logger)
	activity := service.NewActivityService(activityRepo, validate, logger)
	rewards := service.NewRewardService(rewardRepo, nil, "test", 0, logger)

	var evaluator service.ProofEvaluator
	if vision != nil {
		evaluator = service.NewProofEvaluator(vision, 0, logger)
	}

	proofs := service.NewProofService(
		proofRepo, memberRepo, ruleResolver, patterns, evaluator,
		images, notifier, activity, validate, 0, 0, logger,
	)
	reviews := service.NewReviewService(
		proofRepo, ruleResolver, signalRepo, rewards,
		notifier, activity, validate, 5, logger,
	)

	return &pipeline{
		db:       db,
		proofs:   proofs,
		reviews:  reviews,
		rewards:  rewards,
		vision:   vision,
		images:   images,
		notifier: notifier,
		validate: validate,
	}
}

func createMember(t *testing.T, db *gorm.DB, name, role string) models.Member {
	t.Helper()

	member := models.Member{Name: name, Role: role}
	require.NoError(t, db.Create(&member).Error)
	return member
}

func createRule(t *testing.T, db *gorm.DB, category, identifier string, autoReview bool, points float64) models.EvaluationRule {
	t.Helper()

	rule := models.EvaluationRule{
		Category:       category,
		TaskIdentifier: identifier,
		Scope:          "Photograph the finished task",
		Criteria:       "Everything on the checklist must be visible",
		Checklist:      []string{"surface clear", "floor swept"},
		AutoReview:     autoReview,
		RewardPoints:   points,
	}
	require.NoError(t, db.Create(&rule).Error)
	return rule
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func photoFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["photo"]
	require.Len(t, files, 1)
	return files[0]
}

func pngFile(t *testing.T, name string) *multipart.FileHeader {
	return photoFileHeader(t, name, append(append([]byte{}, pngMagic...), []byte("test-image-data")...))
}
