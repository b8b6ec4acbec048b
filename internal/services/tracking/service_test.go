package tracking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksense/internal/domain/user"
	"stocksense/internal/knowledge"
	"stocksense/internal/repository/memory"
	"stocksense/pkg/logger"
)

func init() {
	logger.Init("error", "test")
}

func newTestService(t *testing.T) (*Service, *memory.ProfileRepository, *clock.Mock) {
	t.Helper()
	repo := memory.NewProfileRepository()
	clk := clock.NewMock()
	return NewService(repo, knowledge.NewService(nil), clk), repo, clk
}

func TestTrackSearchUpdatesProfile(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.TrackSearch(ctx, "NVIDIA semiconductor outlook")
	require.NoError(t, err)
	require.NotNil(t, res)

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NVIDIA semiconductor outlook"}, stored.SearchHistory)
	assert.Contains(t, stored.PreferredSectors, "Technology")
	assert.True(t, stored.ExpertiseTier.Valid())
}

func TestSearchHistoryCapped(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < user.MaxSearchHistory+20; i++ {
		_, err := svc.TrackSearch(ctx, fmt.Sprintf("stock %d", i))
		require.NoError(t, err)
	}

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Len(t, stored.SearchHistory, user.MaxSearchHistory)
	// oldest entries evicted first
	assert.Equal(t, "stock 20", stored.SearchHistory[0])
	assert.Equal(t, fmt.Sprintf("stock %d", user.MaxSearchHistory+19), stored.SearchHistory[len(stored.SearchHistory)-1])
}

func TestClickEventsCapped(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < user.MaxClickEvents+30; i++ {
		require.NoError(t, svc.TrackClick(ctx, fmt.Sprintf("button-%d", i), "stock-cards"))
	}

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Len(t, stored.ClickEvents, user.MaxClickEvents)
	assert.Equal(t, "button-30", stored.ClickEvents[0].Element)
}

func TestPreferredSectorsCappedAndDeduplicated(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	queries := []string{
		"apple earnings", "pharma pipeline", "bank stress test",
		"oil futures", "amazon retail", "reit dividends", "tesla deliveries",
		"apple again",
	}
	for _, q := range queries {
		_, err := svc.TrackSearch(ctx, q)
		require.NoError(t, err)
	}

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(stored.PreferredSectors), user.MaxPreferredSectors)

	seen := map[string]bool{}
	for _, s := range stored.PreferredSectors {
		assert.False(t, seen[s], "duplicate sector %s", s)
		seen[s] = true
	}
}

func TestSectionTimeTracking(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()

	svc.SectionEnter("ai-insights")
	clk.Add(90 * time.Second)
	require.NoError(t, svc.SectionLeave(ctx, "ai-insights"))

	svc.SectionEnter("ai-insights")
	clk.Add(30 * time.Second)
	require.NoError(t, svc.SectionLeave(ctx, "ai-insights"))

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, stored.TimeSpent["ai-insights"])
}

func TestSectionLeaveWithoutEnterIsNoop(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SectionLeave(ctx, "never-entered"))
	_, err := repo.Get(ctx)
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.TrackSearch(ctx, "implied volatility surface")
	require.NoError(t, err)

	before, err := svc.Profile(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))

	after, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, before.ID, after.ID)
	assert.Empty(t, after.SearchHistory)
	assert.Equal(t, user.TierBeginner, after.ExpertiseTier)
	assert.Empty(t, svc.SearchAnalysisHistory())
}

func TestSimulate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Simulate(ctx, user.TierAdvanced))

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.TierAdvanced, stored.ExpertiseTier)
	assert.Len(t, stored.SearchHistory, 5)
	assert.Len(t, svc.SearchAnalysisHistory(), 3)

	assert.Error(t, svc.Simulate(ctx, user.ExpertiseTier("expert")))
}
