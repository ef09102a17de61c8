package checker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"domaincheck/internal/checker"
	mockchecker "domaincheck/internal/checker/mock"
	"domaincheck/pkg/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type mocks struct {
	registrar *mockchecker.MockRegistrar
	traffic   *mockchecker.MockEstimator
	backlinks *mockchecker.MockEstimator
}

func newTestChecker(t *testing.T) (mocks, checker.Checker) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		registrar: mockchecker.NewMockRegistrar(ctrl),
		traffic:   mockchecker.NewMockEstimator(ctrl),
		backlinks: mockchecker.NewMockEstimator(ctrl),
	}

	return m, checker.New(m.registrar, m.traffic, m.backlinks)
}

func registered(source string) domain.Registration {
	return domain.Registration{Status: domain.StatusRegistered, Source: source, Note: "http=200"}
}

func TestCheck_Registered(t *testing.T) {
	m, c := newTestChecker(t)

	traffic := domain.Estimate{Value: 15000, Source: domain.SourceStatshow, Note: "http=200;ok"}
	backlinks := domain.Estimate{Value: 42, Source: domain.SourceHypestat, Note: "http=200;ok"}
	gomock.InOrder(
		m.registrar.EXPECT().Resolve(gomock.Any(), "nikeshop.com").Return(registered(domain.SourceRDAP)),
		m.traffic.EXPECT().Estimate(gomock.Any(), "nikeshop.com").Return(traffic),
		m.backlinks.EXPECT().Estimate(gomock.Any(), "nikeshop.com").Return(backlinks),
	)

	res := c.Check(context.Background(), "  NikeShop.com ")
	require.Equal(t, "nikeshop.com", res.Domain)
	require.True(t, res.Registered())
	require.Equal(t, traffic, res.Traffic)
	require.Equal(t, backlinks, res.Backlinks)
	require.True(t, res.Brand)
	require.Equal(t, "whois=http=200 | traffic=http=200;ok | backlinks=http=200;ok", res.Notes())
}

func TestCheck_SkipsEstimatesWhenNotRegistered(t *testing.T) {
	for _, reg := range []domain.Registration{
		{Status: domain.StatusAvailable, Source: domain.SourceRDAP, Note: "http=404"},
		{Status: domain.StatusUnknown, Source: domain.SourceWhois, Note: "rdap_http=500;http=503"},
	} {
		t.Run(reg.Status.String(), func(t *testing.T) {
			m, c := newTestChecker(t)
			// no expectations on the estimators: any call fails the test
			m.registrar.EXPECT().Resolve(gomock.Any(), "example.com").Return(reg)

			res := c.Check(context.Background(), "example.com")
			require.Equal(t, reg, res.Registration)
			require.Equal(t, domain.Estimate{Value: 0, Source: "none", Note: "skip_no_reg"}, res.Traffic)
			require.Equal(t, domain.Estimate{Value: 0, Source: "none", Note: "skip_no_reg"}, res.Backlinks)
			require.False(t, res.Brand)
		})
	}
}

func TestRun_PreservesInputOrder(t *testing.T) {
	m, c := newTestChecker(t)

	input := []string{"a.com", "b.com", "c.com", "a.com"}
	// earlier domains finish last
	delays := map[string]time.Duration{"a.com": 40 * time.Millisecond, "b.com": 20 * time.Millisecond}
	m.registrar.EXPECT().Resolve(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, name string) domain.Registration {
			time.Sleep(delays[name])
			if name == "b.com" {
				return domain.Registration{Status: domain.StatusAvailable, Source: domain.SourceRDAP}
			}

			return registered(domain.SourceRDAP)
		}).Times(4)
	m.traffic.EXPECT().Estimate(gomock.Any(), gomock.Any()).Return(domain.NoData()).Times(3)
	m.backlinks.EXPECT().Estimate(gomock.Any(), gomock.Any()).Return(domain.NoData()).Times(3)

	var mu sync.Mutex
	var seen []int
	results, err := c.Run(context.Background(), input, checker.RunOptions{
		Workers: 4,
		OnProgress: func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			require.Equal(t, 4, total)
			seen = append(seen, done)
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, r := range results {
		require.Equal(t, input[i], r.Domain)
	}
	require.Equal(t, domain.StatusAvailable, results[1].Registration.Status)
	require.Equal(t, []int{1, 2, 3, 4}, seen)
}

func TestRun_MaxDomains(t *testing.T) {
	m, c := newTestChecker(t)

	m.registrar.EXPECT().Resolve(gomock.Any(), gomock.Any()).
		Return(domain.Registration{Status: domain.StatusAvailable}).Times(2)

	results, err := c.Run(context.Background(), []string{"a.com", "b.com", "c.com"}, checker.RunOptions{MaxDomains: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "b.com", results[1].Domain)
}

func TestRun_Checkpoints(t *testing.T) {
	m, c := newTestChecker(t)

	m.registrar.EXPECT().Resolve(gomock.Any(), gomock.Any()).
		Return(domain.Registration{Status: domain.StatusAvailable}).Times(5)

	var sizes []int
	results, err := c.Run(context.Background(), []string{"a", "b", "c", "d", "e"}, checker.RunOptions{
		CheckpointEvery: 2,
		OnCheckpoint: func(_ context.Context, rs domain.ResultSet) error {
			sizes = append(sizes, len(rs))
			require.Equal(t, "a", rs[0].Domain)

			return context.DeadlineExceeded // errors are logged only
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 5)
	require.Equal(t, []int{2, 4}, sizes)
}

func TestRun_CancelReturnsCompletedPrefix(t *testing.T) {
	m, c := newTestChecker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.registrar.EXPECT().Resolve(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, name string) domain.Registration {
			if name == "b.com" {
				cancel()
			}

			return domain.Registration{Status: domain.StatusAvailable, Source: domain.SourceRDAP}
		}).Times(2)

	results, err := c.Run(ctx, []string{"a.com", "b.com", "c.com"}, checker.RunOptions{Workers: 1})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	require.Equal(t, "a.com", results[0].Domain)
}

func TestRun_Empty(t *testing.T) {
	_, c := newTestChecker(t)

	results, err := c.Run(context.Background(), nil, checker.RunOptions{})
	require.NoError(t, err)
	require.Empty(t, results)
}
