package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkclient/internal/checklist"
)

type listOnlyStore struct {
	items []checklist.Checklist
}

var _ checklist.Store = (*listOnlyStore)(nil)

func (s *listOnlyStore) Get(context.Context, checklist.Key) (*checklist.Checklist, error) {
	return nil, checklist.ErrNotFound
}
func (s *listOnlyStore) List(_ context.Context, f checklist.Filter) ([]checklist.Checklist, error) {
	out := make([]checklist.Checklist, 0, len(s.items))
	for _, c := range s.items {
		if f.UserID != "" && c.UserID != f.UserID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
func (s *listOnlyStore) Create(context.Context, *checklist.Checklist) (*checklist.Checklist, error) {
	return nil, checklist.ErrNotFound
}
func (s *listOnlyStore) Update(context.Context, checklist.Key, checklist.Patch) (*checklist.Checklist, error) {
	return nil, checklist.ErrNotFound
}
func (s *listOnlyStore) Delete(context.Context, checklist.Key) (*checklist.Checklist, error) {
	return nil, checklist.ErrNotFound
}

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func newTestAggregator(items []checklist.Checklist) *Aggregator {
	a := NewAggregator(&listOnlyStore{items: items})
	a.now = func() time.Time { return testNow }
	return a
}

func mk(status checklist.Status, service string, age time.Duration) checklist.Checklist {
	return checklist.Checklist{
		ID:          "cl_x",
		UserID:      "1",
		ServiceType: service,
		Status:      status,
		CreatedAt:   testNow.Add(-age),
	}
}

func TestCompute_EmptySet(t *testing.T) {
	a := newTestAggregator(nil)

	m, err := a.Compute(context.Background(), 30, "")
	require.NoError(t, err)

	assert.Equal(t, 0, m.TotalChecklists)
	assert.Equal(t, StatusCounts{}, m.StatusCounts)
	assert.Equal(t, 0, m.CompletionRate)
	assert.Equal(t, 0, m.AbandonmentRate)
	assert.Equal(t, 0, m.ResponseTimeHours)
	assert.Empty(t, m.CreatedByMonth)
	assert.Empty(t, m.CompletionRateByMonth)
	assert.Empty(t, m.CompletionRateByService)
}

func TestCompute_WindowExcludesEverything(t *testing.T) {
	a := newTestAggregator([]checklist.Checklist{
		mk(checklist.StatusCompleted, "Website", 80*24*time.Hour),
	})

	m, err := a.Compute(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, 0, m.TotalChecklists)
	assert.Empty(t, m.CreatedByMonth)
}

func TestCompute_StatusCountsAndRates(t *testing.T) {
	a := newTestAggregator([]checklist.Checklist{
		mk(checklist.StatusPending, "Website", 24*time.Hour),
		mk(checklist.StatusPending, "Website", 10*24*time.Hour), // pending > 7d: abandoned
		mk(checklist.StatusInReview, "Website", 24*time.Hour),
		mk(checklist.StatusResponded, "Website", 24*time.Hour),
		mk(checklist.StatusCompleted, "Store", 24*time.Hour),
		mk(checklist.StatusCanceled, "Store", 24*time.Hour),
	})

	m, err := a.Compute(context.Background(), 30, "")
	require.NoError(t, err)

	assert.Equal(t, 6, m.TotalChecklists)
	assert.Equal(t, StatusCounts{Pending: 2, InReview: 1, Responded: 1, Completed: 1, Canceled: 1}, m.StatusCounts)
	assert.Equal(t, 33, m.CompletionRate)    // (1+1)/6
	assert.Equal(t, 17, m.AbandonmentRate)   // 1/6
	assert.Equal(t, 24, m.ResponseTimeHours) // placeholder while no duration exists

	require.Len(t, m.CompletionRateByService, 2)
	assert.Equal(t, "Store", m.CompletionRateByService[0].ServiceType)
	assert.Equal(t, 50, m.CompletionRateByService[0].Rate)
	assert.Equal(t, "Website", m.CompletionRateByService[1].ServiceType)
	assert.Equal(t, 25, m.CompletionRateByService[1].Rate)
}

func TestCompute_CategoryFilter(t *testing.T) {
	a := newTestAggregator([]checklist.Checklist{
		mk(checklist.StatusCompleted, "Website", 24*time.Hour),
		mk(checklist.StatusPending, "Store", 24*time.Hour),
	})

	m, err := a.Compute(context.Background(), 30, "Website")
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalChecklists)
	assert.Equal(t, 100, m.CompletionRate)

	m, err = a.Compute(context.Background(), 30, "all")
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalChecklists)
}

func TestCompute_GrowthIsDeterministic(t *testing.T) {
	items := []checklist.Checklist{
		// current 30d window: 3 checklists, 1 completed
		mk(checklist.StatusCompleted, "Website", 5*24*time.Hour),
		mk(checklist.StatusPending, "Website", 6*24*time.Hour),
		mk(checklist.StatusPending, "Website", 8*24*time.Hour),
		// previous window: 1 checklist, 0 completed
		mk(checklist.StatusPending, "Website", 45*24*time.Hour),
	}
	a := newTestAggregator(items)

	m1, err := a.Compute(context.Background(), 30, "")
	require.NoError(t, err)
	m2, err := a.Compute(context.Background(), 30, "")
	require.NoError(t, err)
	assert.Equal(t, m1, m2)

	// counts: 100*(3-1)/1 = 200, clamped to 100
	assert.Equal(t, 100, m1.Growth.TotalChecklists)
	// completion: cur 33, prev 0 -> clamped to 30
	assert.Equal(t, 30, m1.Growth.CompletionRate)
}

func TestCompute_MonthlySeries(t *testing.T) {
	a := newTestAggregator([]checklist.Checklist{
		mk(checklist.StatusCompleted, "Website", 24*time.Hour),    // Aug
		mk(checklist.StatusPending, "Website", 40*24*time.Hour),   // Jul
		mk(checklist.StatusResponded, "Website", 41*24*time.Hour), // Jul
	})

	m, err := a.Compute(context.Background(), 90, "")
	require.NoError(t, err)

	require.Len(t, m.CreatedByMonth, 6)
	assert.Equal(t, "Aug", m.CreatedByMonth[5].Label)
	assert.Equal(t, 1, m.CreatedByMonth[5].Value)
	assert.Equal(t, "Jul", m.CreatedByMonth[4].Label)
	assert.Equal(t, 2, m.CreatedByMonth[4].Value)
	assert.Equal(t, "Mar", m.CreatedByMonth[0].Label)
	assert.Equal(t, 0, m.CreatedByMonth[0].Value)

	require.Len(t, m.CompletionRateByMonth, 6)
	assert.Equal(t, 100, m.CompletionRateByMonth[5].Value) // 1/1 completed in Aug
	assert.Equal(t, 50, m.CompletionRateByMonth[4].Value)  // 1/2 in Jul
}

func TestGrowthPct_Clamps(t *testing.T) {
	assert.Equal(t, 0, growthPct(0, 0, -50, 100))
	assert.Equal(t, 100, growthPct(5, 1, -50, 100))
	assert.Equal(t, -50, growthPct(0, 10, -50, 100))
	assert.Equal(t, 25, growthPct(5, 4, -50, 100))
}
