package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/carbon-audit/internal/application"
	"github.com/bryanwahyu/carbon-audit/internal/domain/activity"
	"github.com/bryanwahyu/carbon-audit/internal/domain/ai"
	"github.com/bryanwahyu/carbon-audit/internal/domain/analysis"
	"github.com/bryanwahyu/carbon-audit/internal/domain/briefs"
	"github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Brief(ctx context.Context, req ai.BriefRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockClient) Model() string { return "gpt-test" }

// stubSubmissions only serves Get
type stubSubmissions struct {
	submissions.Repository
	items map[submissions.SubmissionID]*submissions.Submission
}

func (s *stubSubmissions) Get(_ context.Context, id submissions.SubmissionID) (*submissions.Submission, error) {
	sub, ok := s.items[id]
	if !ok {
		return nil, submissions.ErrNotFound
	}
	return sub, nil
}

type memBriefs struct {
	saved []*briefs.Brief
	err   error
}

func (m *memBriefs) Save(_ context.Context, b *briefs.Brief) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, b)
	return nil
}

func (m *memBriefs) Paginate(_ context.Context, submissionID string, _, _ int) ([]*briefs.Brief, error) {
	var out []*briefs.Brief
	for _, b := range m.saved {
		if b.SubmissionID == submissionID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBriefs) LatestBySubmission(_ context.Context, submissionID string) (*briefs.Brief, error) {
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].SubmissionID == submissionID {
			return m.saved[i], nil
		}
	}
	return nil, nil
}

type memActivity struct {
	entries []*activity.Entry
}

func (m *memActivity) Save(_ context.Context, e *activity.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memActivity) ListByTarget(context.Context, string, int) ([]*activity.Entry, error) {
	return m.entries, nil
}

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func fixture() (*Service, *mockClient, *memBriefs, *memActivity) {
	res := analysis.Result{RiskScore: analysis.RiskScore{FraudProbability: 52, GreenwashingRisk: 41, OverallRiskLevel: analysis.RiskHigh}}
	subs := &stubSubmissions{items: map[submissions.SubmissionID]*submissions.Submission{
		"s1": {ID: "s1", ProjectName: "Mangrove", Description: "planned offset", ClaimedCredits: 800, Location: "-6.2,106.8", Analysis: &res},
		"s2": {ID: "s2", ProjectName: "Unscored"},
	}}
	client := new(mockClient)
	br := &memBriefs{}
	act := &memActivity{}
	return NewService(client, subs, br, act, application.FixedClock{T: now}, nil), client, br, act
}

func TestGenerateBrief(t *testing.T) {
	ctx := context.Background()
	svc, client, br, act := fixture()

	client.On("Brief", ctx, mock.MatchedBy(func(r ai.BriefRequest) bool {
		return r.SubmissionID == "s1" && r.ClaimedCredits == 800 && r.Analysis.RiskScore.OverallRiskLevel == analysis.RiskHigh
	})).Return(`{"summary":"check baseline"}`, nil)

	b, err := svc.GenerateBrief(ctx, "gov-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "gpt-test", b.Model)
	assert.Equal(t, "gov-1", b.Reviewer)
	assert.Equal(t, now, b.CreatedAt)
	assert.JSONEq(t, `{"summary":"check baseline"}`, b.Content)
	assert.Len(t, br.saved, 1)
	require.Len(t, act.entries, 1)
	assert.Equal(t, activity.ActionBriefGenerated, act.entries[0].Action)

	latest, err := svc.LatestBrief(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, b.ID, latest.ID)

	list, err := svc.ListBriefs(ctx, "s1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGenerateBrief_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown submission", func(t *testing.T) {
		svc, _, _, _ := fixture()
		_, err := svc.GenerateBrief(ctx, "gov-1", "missing")
		assert.ErrorIs(t, err, submissions.ErrNotFound)
	})

	t.Run("no analysis", func(t *testing.T) {
		svc, client, _, _ := fixture()
		_, err := svc.GenerateBrief(ctx, "gov-1", "s2")
		assert.ErrorIs(t, err, submissions.ErrNotFound)
		client.AssertNotCalled(t, "Brief", mock.Anything, mock.Anything)
	})

	t.Run("quota", func(t *testing.T) {
		svc, client, br, _ := fixture()
		client.On("Brief", ctx, mock.Anything).Return("", ai.ErrQuotaExceeded)

		_, err := svc.GenerateBrief(ctx, "gov-1", "s1")
		assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
		assert.Empty(t, br.saved)
	})

	t.Run("save", func(t *testing.T) {
		svc, client, br, act := fixture()
		br.err = errors.New("disk full")
		client.On("Brief", ctx, mock.Anything).Return("{}", nil)

		_, err := svc.GenerateBrief(ctx, "gov-1", "s1")
		assert.Error(t, err)
		assert.Empty(t, act.entries)
	})
}

func TestLatestBrief_None(t *testing.T) {
	svc, _, _, _ := fixture()
	_, err := svc.LatestBrief(context.Background(), "s1")
	assert.ErrorIs(t, err, submissions.ErrNotFound)

	list, err := svc.ListBriefs(context.Background(), "s1", 1, 20)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
