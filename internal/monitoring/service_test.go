package monitoring

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/socialpulse/monitor-bot/internal/alerting"
	"github.com/socialpulse/monitor-bot/internal/classifier"
	"github.com/socialpulse/monitor-bot/internal/models"
	"github.com/socialpulse/monitor-bot/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of the store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ActiveAccounts(ctx context.Context) ([]models.SocialAccount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.SocialAccount), args.Error(1)
}

func (m *MockStore) CommentExists(ctx context.Context, platform models.Platform, postID string) (bool, error) {
	args := m.Called(ctx, platform, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) InsertComments(ctx context.Context, comments []models.Comment) error {
	args := m.Called(ctx, comments)
	return args.Error(0)
}

func (m *MockStore) UpdateLastSync(ctx context.Context, accountID string, ts time.Time) error {
	args := m.Called(ctx, accountID, ts)
	return args.Error(0)
}

func (m *MockStore) InsertAlert(ctx context.Context, alert *models.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// stubClassifier flags comments containing "vile" as high risk and
// everything else as neutral.
type stubClassifier struct{}

func (stubClassifier) Classify(_ context.Context, input classifier.Input) models.Classification {
	if strings.Contains(input.Content, "vile") {
		return models.Classification{
			Sentiment:      models.SentimentNegative,
			HateSpeechRisk: models.RiskHigh,
			Confidence:     0.95,
			Reasoning:      "Targeted abuse",
		}
	}
	return models.Classification{
		Sentiment:      models.SentimentNeutral,
		HateSpeechRisk: models.RiskNone,
		Confidence:     0.9,
		Reasoning:      "Neutral remark",
	}
}

func (c stubClassifier) ClassifyBatch(ctx context.Context, inputs []classifier.Input) []models.Classification {
	results := make([]models.Classification, len(inputs))
	for i, input := range inputs {
		results[i] = c.Classify(ctx, input)
	}
	return results
}

// stubFetcher serves canned pages or errors per account ID.
type stubFetcher struct {
	platform models.Platform
	pages    map[string][]models.RawComment
	errs     map[string]error
}

func (f *stubFetcher) Platform() models.Platform {
	return f.platform
}

func (f *stubFetcher) FetchComments(_ context.Context, account models.SocialAccount, _ time.Time) ([]models.RawComment, error) {
	if err := f.errs[account.ID]; err != nil {
		return nil, err
	}
	return f.pages[account.ID], nil
}

func newTestService(st *MockStore, fetchers ...sources.Fetcher) *Service {
	return NewService(st, stubClassifier{}, fetchers, alerting.NewEvaluator(), nil)
}

func facebookAccount(id string) models.SocialAccount {
	return models.SocialAccount{
		ID:        id,
		Platform:  models.PlatformFacebook,
		AccountID: "page_" + id,
		IsActive:  true,
		LastSync:  time.Now().Add(-24 * time.Hour),
	}
}

func rawComment(postID, content string) models.RawComment {
	return models.RawComment{
		PostID:    postID,
		Content:   content,
		Author:    "someone",
		AuthorID:  "author_1",
		CreatedAt: time.Now().Add(-time.Hour),
	}
}

func TestService_SyncAccount_IngestsNewComments(t *testing.T) {
	st := &MockStore{}
	account := facebookAccount("acct_1")

	fetcher := &stubFetcher{
		platform: models.PlatformFacebook,
		pages: map[string][]models.RawComment{
			"acct_1": {rawComment("p1", "nothing special"), rawComment("p2", "สวัสดีครับ")},
		},
	}

	st.On("CommentExists", mock.Anything, models.PlatformFacebook, "p1").Return(false, nil)
	st.On("CommentExists", mock.Anything, models.PlatformFacebook, "p2").Return(false, nil)
	st.On("InsertComments", mock.Anything, mock.MatchedBy(func(comments []models.Comment) bool {
		return len(comments) == 2
	})).Return(nil)
	st.On("UpdateLastSync", mock.Anything, "acct_1", mock.Anything).Return(nil)

	service := newTestService(st, fetcher)
	outcome := service.SyncAccount(context.Background(), account)

	assert.True(t, outcome.Success)
	assert.Equal(t, 2, outcome.CommentCount)
	assert.Empty(t, outcome.Error)
	st.AssertExpectations(t)

	// Verify the persisted rows carry identity, language and
	// classification fields.
	var inserted []models.Comment
	for _, call := range st.Calls {
		if call.Method == "InsertComments" {
			inserted = call.Arguments.Get(1).([]models.Comment)
		}
	}
	require.Len(t, inserted, 2)
	assert.NotEmpty(t, inserted[0].ID)
	assert.Equal(t, "acct_1", inserted[0].SocialAccountID)
	assert.Equal(t, models.PlatformFacebook, inserted[0].Platform)
	assert.Equal(t, models.LanguageEnglish, inserted[0].Language)
	assert.Equal(t, models.LanguageThai, inserted[1].Language)
	assert.Equal(t, models.SentimentNeutral, inserted[0].Sentiment)
}

func TestService_SyncAccount_SkipsExistingComments(t *testing.T) {
	st := &MockStore{}
	account := facebookAccount("acct_1")

	fetcher := &stubFetcher{
		platform: models.PlatformFacebook,
		pages: map[string][]models.RawComment{
			"acct_1": {rawComment("p1", "already seen"), rawComment("p2", "also seen")},
		},
	}

	st.On("CommentExists", mock.Anything, models.PlatformFacebook, "p1").Return(true, nil)
	st.On("CommentExists", mock.Anything, models.PlatformFacebook, "p2").Return(true, nil)
	st.On("UpdateLastSync", mock.Anything, "acct_1", mock.Anything).Return(nil)

	service := newTestService(st, fetcher)
	outcome := service.SyncAccount(context.Background(), account)

	assert.True(t, outcome.Success)
	assert.Equal(t, 0, outcome.CommentCount)
	st.AssertNotCalled(t, "InsertComments", mock.Anything, mock.Anything)
	st.AssertExpectations(t)
}

func TestService_SyncAccount_PersistFailureSkipsCheckpoint(t *testing.T) {
	st := &MockStore{}
	account := facebookAccount("acct_1")

	fetcher := &stubFetcher{
		platform: models.PlatformFacebook,
		pages: map[string][]models.RawComment{
			"acct_1": {rawComment("p1", "fresh")},
		},
	}

	st.On("CommentExists", mock.Anything, models.PlatformFacebook, "p1").Return(false, nil)
	st.On("InsertComments", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	service := newTestService(st, fetcher)
	outcome := service.SyncAccount(context.Background(), account)

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "persist failed")
	st.AssertNotCalled(t, "UpdateLastSync", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SyncAccount_EmptyWindowStillAdvancesCheckpoint(t *testing.T) {
	st := &MockStore{}
	account := facebookAccount("acct_1")

	fetcher := &stubFetcher{platform: models.PlatformFacebook}

	st.On("UpdateLastSync", mock.Anything, "acct_1", mock.MatchedBy(func(ts time.Time) bool {
		return !ts.Before(account.LastSync)
	})).Return(nil)

	service := newTestService(st, fetcher)
	outcome := service.SyncAccount(context.Background(), account)

	assert.True(t, outcome.Success)
	assert.Equal(t, 0, outcome.CommentCount)
	st.AssertNotCalled(t, "InsertComments", mock.Anything, mock.Anything)
	st.AssertExpectations(t)
}

func TestService_SyncAccount_HighRiskCommentRaisesAlert(t *testing.T) {
	st := &MockStore{}
	account := facebookAccount("acct_1")

	fetcher := &stubFetcher{
		platform: models.PlatformFacebook,
		pages: map[string][]models.RawComment{
			"acct_1": {rawComment("p1", "what a vile thing to say")},
		},
	}

	st.On("CommentExists", mock.Anything, models.PlatformFacebook, "p1").Return(false, nil)
	st.On("InsertComments", mock.Anything, mock.Anything).Return(nil)
	st.On("InsertAlert", mock.Anything, mock.MatchedBy(func(alert *models.Alert) bool {
		return alert.Type == models.AlertHighHateSpeech &&
			alert.Severity == models.SeverityCritical &&
			len(alert.RelatedComments) == 1
	})).Return(nil)
	st.On("UpdateLastSync", mock.Anything, "acct_1", mock.Anything).Return(nil)

	service := newTestService(st, fetcher)
	outcome := service.SyncAccount(context.Background(), account)

	assert.True(t, outcome.Success)
	st.AssertExpectations(t)
}

func TestService_SyncAccount_AlertFailureDoesNotFailSync(t *testing.T) {
	st := &MockStore{}
	account := facebookAccount("acct_1")

	fetcher := &stubFetcher{
		platform: models.PlatformFacebook,
		pages: map[string][]models.RawComment{
			"acct_1": {rawComment("p1", "vile nonsense")},
		},
	}

	st.On("CommentExists", mock.Anything, models.PlatformFacebook, "p1").Return(false, nil)
	st.On("InsertComments", mock.Anything, mock.Anything).Return(nil)
	st.On("InsertAlert", mock.Anything, mock.Anything).Return(errors.New("alerts table locked"))
	st.On("UpdateLastSync", mock.Anything, "acct_1", mock.Anything).Return(nil)

	service := newTestService(st, fetcher)
	outcome := service.SyncAccount(context.Background(), account)

	assert.True(t, outcome.Success)
	assert.Equal(t, 1, outcome.CommentCount)
	st.AssertExpectations(t)
}

func TestService_SyncAccount_UnknownPlatform(t *testing.T) {
	st := &MockStore{}
	account := models.SocialAccount{ID: "acct_1", Platform: models.PlatformTwitter}

	service := newTestService(st, &stubFetcher{platform: models.PlatformFacebook})
	outcome := service.SyncAccount(context.Background(), account)

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "no fetcher registered")
}

func TestService_SyncAll_IsolatesAccountFailures(t *testing.T) {
	st := &MockStore{}

	accounts := []models.SocialAccount{
		facebookAccount("acct_1"),
		facebookAccount("acct_2"),
		facebookAccount("acct_3"),
	}

	fetcher := &stubFetcher{
		platform: models.PlatformFacebook,
		pages: map[string][]models.RawComment{
			"acct_1": {rawComment("p1", "fine")},
			"acct_3": {rawComment("p3", "also fine")},
		},
		errs: map[string]error{
			"acct_2": errors.New("token expired"),
		},
	}

	st.On("ActiveAccounts", mock.Anything).Return(accounts, nil)
	st.On("CommentExists", mock.Anything, models.PlatformFacebook, mock.Anything).Return(false, nil)
	st.On("InsertComments", mock.Anything, mock.Anything).Return(nil)
	st.On("UpdateLastSync", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := newTestService(st, fetcher)
	outcomes, err := service.SyncAll(context.Background())

	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.True(t, outcomes[0].Success)
	assert.False(t, outcomes[1].Success)
	assert.Contains(t, outcomes[1].Error, "token expired")
	assert.True(t, outcomes[2].Success)

	// Outcomes follow account retrieval order.
	assert.Equal(t, "acct_1", outcomes[0].AccountID)
	assert.Equal(t, "acct_2", outcomes[1].AccountID)
	assert.Equal(t, "acct_3", outcomes[2].AccountID)
}

func TestService_SyncAll_AccountListFailure(t *testing.T) {
	st := &MockStore{}
	st.On("ActiveAccounts", mock.Anything).Return([]models.SocialAccount(nil), errors.New("database down"))

	service := newTestService(st, &stubFetcher{platform: models.PlatformFacebook})
	outcomes, err := service.SyncAll(context.Background())

	assert.Error(t, err)
	assert.Nil(t, outcomes)
}
