package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/pdvd-assess/internal/ai"
	"github.com/ortelius/pdvd-assess/internal/scoring"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) FetchVulnerability(ctx context.Context, cveID string) (*model.Vulnerability, error) {
	args := m.Called(ctx, cveID)
	if v := args.Get(0); v != nil {
		return v.(*model.Vulnerability), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) GetApplication(ctx context.Context, key string) (*model.Application, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.(*model.Application), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) SaveAssessment(ctx context.Context, a *model.Assessment) error {
	args := m.Called(ctx, a)
	if a.Key == "" {
		a.Key = "a1"
	}
	return args.Error(0)
}

func (m *mockStore) GetAssessment(ctx context.Context, key string) (*model.Assessment, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.(*model.Assessment), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishAssessmentCompleted(ctx context.Context, a *model.Assessment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockPublisher) PublishScoreAdjusted(ctx context.Context, a *model.Assessment, previous float64) error {
	return m.Called(ctx, a, previous).Error(0)
}

var justification = strings.Repeat("Reachable through the public upload endpoint without authentication. ", 2)

func vulnWithBase(t *testing.T, vector string) *model.Vulnerability {
	t.Helper()
	return model.NewVulnerability(models.Vulnerability{
		ID:       "CVE-2023-1000",
		Summary:  "test vulnerability",
		Severity: []models.Severity{{Type: models.SeverityCVSSV3, Score: vector}},
	})
}

// 7.5 base score
const vector75 = "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:N/A:N"

func publicApp() *model.Application {
	app := model.NewApplication("docs-site")
	app.Key = "app1"
	app.DataSensitivity = "PUBLIC"
	return app
}

func newService(provider ai.Provider) (*AssessmentService, *mockCatalog, *mockStore, *mockPublisher) {
	catalog := &mockCatalog{}
	store := &mockStore{}
	pub := &mockPublisher{}
	return &AssessmentService{
		Catalog:      catalog,
		Applications: store,
		Assessments:  store,
		Publisher:    pub,
		Provider:     provider,
	}, catalog, store, pub
}

func TestAssessAcceptedAnalysis(t *testing.T) {
	provider := &ai.MockProvider{Result: ai.Analysis{Score: 8.0, Justification: justification, Confidence: 0.9}}
	svc, catalog, store, pub := newService(provider)
	ctx := context.Background()

	catalog.On("FetchVulnerability", ctx, "CVE-2023-1000").Return(vulnWithBase(t, vector75), nil)
	store.On("GetApplication", ctx, "app1").Return(publicApp(), nil)
	store.On("SaveAssessment", ctx, mock.AnythingOfType("*model.Assessment")).Return(nil)
	pub.On("PublishAssessmentCompleted", ctx, mock.Anything).Return(nil)
	pub.On("PublishScoreAdjusted", ctx, mock.Anything, 7.5).Return(nil)

	a, err := svc.Assess(ctx, model.AssessmentRequest{CveID: "cve-2023-1000", ApplicationKey: "app1", RequestedBy: "alice"})
	require.NoError(t, err)

	assert.Equal(t, "a1", a.Key)
	assert.Equal(t, "CVE-2023-1000", a.CveID)
	assert.Equal(t, "alice", a.RequestedBy)
	assert.InDelta(t, 7.5, a.BaselineScore, 1e-9)
	assert.InDelta(t, 8.0, a.ConstrainedScore, 1e-9)
	assert.InDelta(t, 0.3*7.5+0.7*8.0, a.FinalScore, 1e-9)
	assert.False(t, a.AIRejected)
	assert.False(t, a.RequiresReview)
	assert.Equal(t, model.StatusCompleted, a.Status)
	assert.Equal(t, 1, provider.Calls())

	catalog.AssertExpectations(t)
	store.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestAssessRejectedAnalysisUsesBaseline(t *testing.T) {
	provider := &ai.MockProvider{Result: ai.Analysis{Score: 2.0, Justification: justification, Confidence: 0.9}}
	svc, catalog, store, pub := newService(provider)
	ctx := context.Background()

	catalog.On("FetchVulnerability", ctx, "CVE-2023-1000").Return(vulnWithBase(t, vector75), nil)
	store.On("GetApplication", ctx, "app1").Return(publicApp(), nil)
	store.On("SaveAssessment", ctx, mock.Anything).Return(nil)
	pub.On("PublishAssessmentCompleted", ctx, mock.Anything).Return(nil)

	a, err := svc.Assess(ctx, model.AssessmentRequest{CveID: "CVE-2023-1000", ApplicationKey: "app1"})
	require.NoError(t, err)

	assert.True(t, a.AIRejected)
	assert.Equal(t, string(scoring.RejectExcessiveAdjustment), a.RejectReason)
	assert.InDelta(t, 7.5, a.FinalScore, 1e-9)
	assert.InDelta(t, 2.0, a.AISuggestedScore, 1e-9)
	assert.Equal(t, scoring.DefaultFallbackConfidence, a.Confidence)
	assert.True(t, a.RequiresReview)
	assert.Equal(t, model.StatusRequiresReview, a.Status)
	pub.AssertNotCalled(t, "PublishScoreAdjusted", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateProviderFailure(t *testing.T) {
	provider := &ai.MockProvider{Err: errors.New("timeout")}
	svc, _, _, _ := newService(provider)

	a, err := svc.Evaluate(context.Background(), vulnWithBase(t, vector75), publicApp(), provider)
	require.NoError(t, err)
	assert.True(t, a.AIRejected)
	assert.Equal(t, string(scoring.RejectProviderError), a.RejectReason)
	assert.InDelta(t, 7.5, a.FinalScore, 1e-9)
	assert.True(t, a.RequiresReview)
}

func TestEvaluateOutOfRangeScore(t *testing.T) {
	provider := &ai.MockProvider{Result: ai.Analysis{Score: 14.0, Justification: justification, Confidence: 0.9}}
	svc, _, _, _ := newService(provider)

	a, err := svc.Evaluate(context.Background(), vulnWithBase(t, vector75), publicApp(), provider)
	require.NoError(t, err)
	assert.True(t, a.AIRejected)
	assert.Equal(t, string(scoring.RejectInvalidScore), a.RejectReason)
	assert.InDelta(t, 7.5, a.FinalScore, 1e-9)
	assert.InDelta(t, 14.0, a.AISuggestedScore, 1e-9)
}

func TestEvaluateCriticalBaselineHolds(t *testing.T) {
	provider := &ai.MockProvider{Result: ai.Analysis{Score: 7.0, Justification: justification, Confidence: 0.8}}
	svc, _, _, _ := newService(provider)

	app := publicApp()
	app.InternetExposed = true
	app.DataSensitivity = "SENSITIVE"
	app.RuntimeEnvironments = []string{"production"}

	a, err := svc.Evaluate(context.Background(), vulnWithBase(t, vector75), app, provider)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, a.BaselineScore, 1e-9)
	assert.False(t, a.AIRejected, "a 3.0 point deviation is still accepted")
	assert.InDelta(t, 10.0, a.ConstrainedScore, 1e-9)
	assert.InDelta(t, 10.0, a.FinalScore, 1e-9)
	assert.True(t, a.RequiresReview)
}

func TestEvaluateFallbackProvider(t *testing.T) {
	svc, _, _, _ := newService(ai.FallbackProvider{})

	a, err := svc.Evaluate(context.Background(), vulnWithBase(t, vector75), publicApp(), ai.FallbackProvider{})
	require.NoError(t, err)
	assert.True(t, a.AIRejected)
	assert.Equal(t, string(scoring.RejectLowConfidence), a.RejectReason)
	assert.Equal(t, "Fallback (No AI)", a.Provider)
	assert.InDelta(t, 7.5, a.FinalScore, 1e-9)
}

func TestAssessErrors(t *testing.T) {
	ctx := context.Background()

	svc, _, _, _ := newService(&ai.MockProvider{})
	_, err := svc.Assess(ctx, model.AssessmentRequest{CveID: "nope", ApplicationKey: "app1"})
	assert.ErrorIs(t, err, model.ErrInvalidCveID)

	_, err = svc.Assess(ctx, model.AssessmentRequest{CveID: "CVE-2023-1000", ApplicationKey: "app1", Provider: "llama"})
	assert.ErrorIs(t, err, ai.ErrUnknownProvider)

	svc, _, store, _ := newService(&ai.MockProvider{})
	store.On("GetApplication", ctx, "missing").Return(nil, model.ErrNotFound)
	_, err = svc.Assess(ctx, model.AssessmentRequest{CveID: "CVE-2023-1000", ApplicationKey: "missing"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	svc, catalog, store, _ := newService(&ai.MockProvider{})
	store.On("GetApplication", ctx, "app1").Return(publicApp(), nil)
	catalog.On("FetchVulnerability", ctx, "CVE-2023-1000").Return(nil, model.ErrNotFound)
	_, err = svc.Assess(ctx, model.AssessmentRequest{CveID: "CVE-2023-1000", ApplicationKey: "app1"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCompleteReview(t *testing.T) {
	ctx := context.Background()
	svc, _, store, pub := newService(&ai.MockProvider{})

	pending := model.NewAssessment("CVE-2023-1000", "app1")
	pending.Key = "a9"
	pending.Status = model.StatusRequiresReview
	pending.FinalScore = 9.5
	pending.RequiresReview = true

	store.On("GetAssessment", ctx, "a9").Return(pending, nil)
	store.On("SaveAssessment", ctx, pending).Return(nil)
	pub.On("PublishAssessmentCompleted", ctx, pending).Return(nil)
	pub.On("PublishScoreAdjusted", ctx, pending, 9.5).Return(nil)

	a, err := svc.CompleteReview(ctx, "a9", "bob", 8.0, "compensating control verified")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, a.Status)
	assert.Equal(t, 8.0, a.FinalScore)
	store.AssertExpectations(t)
	pub.AssertExpectations(t)

	_, err = svc.CompleteReview(ctx, "a9", "bob", 8.0, "")
	assert.ErrorIs(t, err, model.ErrInvalidStateTransition)

	store.On("GetAssessment", ctx, "zz").Return(nil, model.ErrNotFound)
	_, err = svc.CompleteReview(ctx, "zz", "bob", 8.0, "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
