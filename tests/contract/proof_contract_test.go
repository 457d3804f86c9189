package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/handler"
)

type stubProofService struct {
	response dto.ProofResponse
}

func (s stubProofService) Submit(context.Context, uint, dto.ProofCreateRequest, *multipart.FileHeader) (dto.ProofResponse, error) {
	return s.response, nil
}

func (s stubProofService) Resubmit(context.Context, uint, uint, dto.ProofResubmitRequest, *multipart.FileHeader) (dto.ProofResponse, error) {
	return s.response, nil
}

func (s stubProofService) Escalate(context.Context, uint, uint) (dto.ProofResponse, error) {
	return s.response, nil
}

func (s stubProofService) GetByID(context.Context, uint) (dto.ProofResponse, error) {
	return s.response, nil
}

func (s stubProofService) List(context.Context, dto.ProofFilter) ([]dto.ProofResponse, error) {
	return []dto.ProofResponse{s.response}, nil
}

func TestProofResponseContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "proof.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	passed := true
	feedback := "Counter is clear and the floor looks swept."
	confidence := 0.92
	evaluatedAt := time.Now().UTC()

	proof := dto.ProofResponse{
		ID:             7,
		Category:       "chore",
		TaskIdentifier: "kitchen-cleanup",
		MemberID:       3,
		ImageURL:       "https://res.cloudinary.com/demo/image/upload/proofs/7.jpg",
		Notes:          "wiped everything down",
		Status:         "pending_human",
		Attempt:        1,
		Escalated:      false,
		AutoPassed:     &passed,
		AutoFeedback:   &feedback,
		AutoConfidence: &confidence,
		AutoChecklist: []dto.ChecklistItemResponse{
			{Item: "surface clear", Passed: true},
			{Item: "floor swept", Passed: true, Note: "mostly"},
		},
		EvaluatedAt: &evaluatedAt,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
		Member:      dto.MemberLite{ID: 3, Name: "Mika", Role: "kid"},
	}

	serviceStub := stubProofService{response: proof}
	proofHandler := handler.NewProofHandler(serviceStub, zerolog.Nop())

	app := fiber.New()
	proofHandler.Register(app.Group("/api/v1/proofs"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/proofs/7", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestProofResponseContractAfterReview(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "proof.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	decision := "approve"
	reviewerID := uint(1)
	note := "Great job."
	reviewedAt := time.Now().UTC()

	proof := dto.ProofResponse{
		ID:             7,
		Category:       "room",
		TaskIdentifier: "bedroom",
		MemberID:       3,
		ImageURL:       "https://res.cloudinary.com/demo/image/upload/proofs/7.jpg",
		Status:         "approved",
		Attempt:        2,
		ReviewDecision: &decision,
		ReviewerID:     &reviewerID,
		ReviewerNote:   &note,
		ReviewedAt:     &reviewedAt,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
		Member:         dto.MemberLite{ID: 3, Name: "Mika", Role: "kid"},
	}

	serviceStub := stubProofService{response: proof}
	proofHandler := handler.NewProofHandler(serviceStub, zerolog.Nop())

	app := fiber.New()
	proofHandler.Register(app.Group("/api/v1/proofs"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/proofs/7", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
