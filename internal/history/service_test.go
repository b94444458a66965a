package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
	apperrors "github.com/tooeasytravel/hotel-bot/internal/errors"
)

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Append(ctx context.Context, rec *domain.HistoryRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockHistoryRepo) ListByUser(ctx context.Context, userID int64) ([]domain.HistoryRecord, error) {
	args := m.Called(ctx, userID)
	if recs, ok := args.Get(0).([]domain.HistoryRecord); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockHistoryRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockHistoryRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(repo *mockHistoryRepo) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRecord_StoresFormattedResults(t *testing.T) {
	repo := new(mockHistoryRepo)
	var captured *domain.HistoryRecord
	repo.On("Append", mock.Anything, mock.MatchedBy(func(rec *domain.HistoryRecord) bool {
		captured = rec
		return true
	})).Return(nil).Once()

	newTestService(repo).Record(context.Background(), 42, "/lowprice", []domain.HotelResult{
		{Name: "Plaza", Address: "1 Main St", DistanceValue: 0.7, DistanceUnit: "MILE", Price: 120.5, CurrencyCode: "USD"},
	})

	repo.AssertExpectations(t)
	require.NotNil(t, captured)
	assert.Equal(t, int64(42), captured.UserID)
	assert.Equal(t, "/lowprice", captured.Command)
	assert.Contains(t, captured.Value, "Название: Plaza")
	assert.False(t, captured.CreatedAt.IsZero())
}

func TestRecord_EmptyResultsStillStored(t *testing.T) {
	repo := new(mockHistoryRepo)
	repo.On("Append", mock.Anything, mock.MatchedBy(func(rec *domain.HistoryRecord) bool {
		return rec.Value == ""
	})).Return(nil).Once()

	newTestService(repo).Record(context.Background(), 42, "/bestdeal", nil)
	repo.AssertExpectations(t)
}

func TestRecord_SwallowsRepositoryFailure(t *testing.T) {
	repo := new(mockHistoryRepo)
	repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("db down"))

	// must not panic or propagate
	newTestService(repo).Record(context.Background(), 42, "/lowprice", nil)
}

func TestRecord_RetriesTransientDatabaseError(t *testing.T) {
	repo := new(mockHistoryRepo)
	dbErr := apperrors.NewDatabaseError(errors.New("connection reset"))
	repo.On("Append", mock.Anything, mock.Anything).Return(dbErr).Once()
	repo.On("Append", mock.Anything, mock.Anything).Return(nil).Once()

	newTestService(repo).Record(context.Background(), 42, "/lowprice", nil)
	repo.AssertExpectations(t)
}

func TestClear_ReportsRemovedCount(t *testing.T) {
	repo := new(mockHistoryRepo)
	repo.On("DeleteByUser", mock.Anything, int64(42)).Return(int64(3), nil).Once()

	removed, err := newTestService(repo).Clear(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}

func TestClear_EmptyHistoryIsNotAnError(t *testing.T) {
	repo := new(mockHistoryRepo)
	repo.On("DeleteByUser", mock.Anything, int64(42)).Return(int64(0), nil).Once()

	removed, err := newTestService(repo).Clear(context.Background(), 42)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPrune_UsesRetentionCutoff(t *testing.T) {
	repo := new(mockHistoryRepo)
	repo.On("PruneOlderThan", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		// cutoff should sit roughly 90 days in the past
		expected := time.Now().UTC().Add(-90 * 24 * time.Hour)
		return cutoff.Sub(expected).Abs() < time.Minute
	})).Return(int64(7), nil).Once()

	removed, err := newTestService(repo).Prune(context.Background(), 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
}
