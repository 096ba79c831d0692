package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sidopi/internal/middleware"
	"sidopi/internal/model"
	"sidopi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// submissionServiceStub records which roles reach the service layer; routes
// are the unit under test here, not the lifecycle itself
type submissionServiceStub struct {
	createdByRole []string
}

func (s *submissionServiceStub) CreateSubmission(_ context.Context, _ service.CreateSubmissionRequest, _, submitterRole string) (*model.Submission, error) {
	s.createdByRole = append(s.createdByRole, submitterRole)
	return &model.Submission{SubmissionNumber: "SUB-202608-0001", Status: model.StatusPending}, nil
}

func (s *submissionServiceStub) UpdateStatus(_ context.Context, _ string, _ service.UpdateStatusRequest, _, _ string) (*model.Submission, error) {
	return &model.Submission{}, nil
}

func (s *submissionServiceStub) GetSubmission(_ context.Context, _, _, _ string) (*model.Submission, error) {
	return &model.Submission{}, nil
}

func (s *submissionServiceStub) ListSubmissions(_ context.Context, _ service.SubmissionFilter, _, _ string) ([]model.Submission, int64, error) {
	return nil, 0, nil
}

func (s *submissionServiceStub) DeleteSubmission(_ context.Context, _, _, _ string) error {
	return nil
}

func (s *submissionServiceStub) ExpireStale(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

type recommendationServiceStub struct{}

func (recommendationServiceStub) GetRecommendations(_ context.Context, _ string, _ service.RecommendationOptions) (*service.RecommendationResponse, error) {
	return &service.RecommendationResponse{}, nil
}

func newSubmissionRouter(stub *submissionServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewSubmissionHandler(stub, recommendationServiceStub{}).RegisterRoutes(router.Group(""))
	return router
}

func signTestToken(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)
	return signed
}

const createSubmissionBody = `{
	"submission_type": "PPL_REGULAR",
	"farmer_group_id": "1b671a64-40d5-491e-99b0-da01ff1f3341",
	"village": "Sukamaju",
	"district": "Cianjur",
	"affected_area": 5,
	"total_area": 10,
	"pest_types": ["wereng coklat"],
	"items": [{"medicine_id": "2c671a64-40d5-491e-99b0-da01ff1f3342", "requested_quantity": 5}]
}`

func TestCreateSubmissionRouteAcceptsAllRoles(t *testing.T) {
	stub := &submissionServiceStub{}
	router := newSubmissionRouter(stub)

	for _, role := range []string{model.RolePPL, model.RolePOPT, model.RoleDinas, model.RoleAdmin} {
		req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewBufferString(createSubmissionBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, role))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code, "role %s", role)
	}

	assert.Equal(t, []string{model.RolePPL, model.RolePOPT, model.RoleDinas, model.RoleAdmin}, stub.createdByRole)
}

func TestCreateSubmissionRouteRequiresToken(t *testing.T) {
	router := newSubmissionRouter(&submissionServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewBufferString(createSubmissionBody))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateStatusRouteRejectsFieldExtensionOfficer(t *testing.T) {
	router := newSubmissionRouter(&submissionServiceStub{})

	req := httptest.NewRequest(http.MethodPatch, "/submissions/abc/status", bytes.NewBufferString(`{"status":"UNDER_REVIEW"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, model.RolePPL))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
