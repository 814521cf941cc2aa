package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTradingBot/internal/domain"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "trading-bot-test-*")
	require.NoError(t, err)

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(tmpDir, "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	})
	return repo
}

func makeTrade(wallet, symbol string, netPnL float64, closedAt time.Time) *domain.Trade {
	return &domain.Trade{
		Wallet:      wallet,
		Symbol:      symbol,
		Side:        domain.Long,
		EntryPrice:  2000.0,
		ExitPrice:   2100.0,
		Quantity:    0.5,
		GrossPnL:    50.0,
		Commission:  0.42,
		NetPnL:      netPnL,
		OpenedAt:    closedAt.Add(-2 * time.Hour),
		ClosedAt:    closedAt,
		CloseReason: domain.CloseReasonTakeProfit,
	}
}

func TestRepository_RecordTrade(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	trade := makeTrade("main", "ETHUSDT", 49.58, time.Now())
	id, err := repo.RecordTrade(ctx, trade)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	assert.Equal(t, id, trade.ID)

	found, err := repo.FindBySymbol(ctx, "ETHUSDT", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "main", found[0].Wallet)
	assert.Equal(t, domain.Long, found[0].Side)
	assert.Equal(t, domain.CloseReasonTakeProfit, found[0].CloseReason)
	assert.InDelta(t, 49.58, found[0].NetPnL, 1e-9)
	assert.InDelta(t, 0.42, found[0].Commission, 1e-9)
}

func TestRepository_FindBySymbol_LimitAndOrder(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 5; i++ {
		trade := makeTrade("main", "ETHUSDT", float64(i), now.Add(time.Duration(i)*time.Hour))
		trade.OpenedAt = now.Add(time.Duration(i) * time.Hour)
		_, err := repo.RecordTrade(ctx, trade)
		require.NoError(t, err)
	}
	_, err := repo.RecordTrade(ctx, makeTrade("main", "BTCUSDT", 7, now))
	require.NoError(t, err)

	found, err := repo.FindBySymbol(ctx, "ETHUSDT", 3)
	require.NoError(t, err)
	require.Len(t, found, 3)
	// Most recent first.
	assert.InDelta(t, 4.0, found[0].NetPnL, 1e-9)
	assert.InDelta(t, 2.0, found[2].NetPnL, 1e-9)
}

func TestRepository_FindByWallet(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	now := time.Now()
	_, err := repo.RecordTrade(ctx, makeTrade("alpha", "ETHUSDT", 10, now))
	require.NoError(t, err)
	_, err = repo.RecordTrade(ctx, makeTrade("alpha", "BTCUSDT", -4, now.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.RecordTrade(ctx, makeTrade("beta", "ETHUSDT", 99, now))
	require.NoError(t, err)

	found, err := repo.FindByWallet(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, found, 2)
	// Oldest first.
	assert.InDelta(t, 10.0, found[0].NetPnL, 1e-9)
	assert.InDelta(t, -4.0, found[1].NetPnL, 1e-9)
}

func TestRepository_TotalNetPnL(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	total, err := repo.TotalNetPnL(ctx, "main")
	require.NoError(t, err)
	assert.Zero(t, total)

	now := time.Now()
	_, err = repo.RecordTrade(ctx, makeTrade("main", "ETHUSDT", 25.5, now))
	require.NoError(t, err)
	_, err = repo.RecordTrade(ctx, makeTrade("main", "ETHUSDT", -10.5, now))
	require.NoError(t, err)
	_, err = repo.RecordTrade(ctx, makeTrade("other", "ETHUSDT", 500, now))
	require.NoError(t, err)

	total, err = repo.TotalNetPnL(ctx, "main")
	require.NoError(t, err)
	assert.InDelta(t, 15.0, total, 1e-9)
}

func TestRepository_CountTodayBySymbol(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.RecordTrade(ctx, makeTrade("main", "ETHUSDT", 1, time.Now()))
	require.NoError(t, err)
	_, err = repo.RecordTrade(ctx, makeTrade("main", "ETHUSDT", 1, time.Now().AddDate(0, 0, -3)))
	require.NoError(t, err)

	count, err := repo.CountTodayBySymbol(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
