// Package storetest holds behaviour checks shared by store implementations.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hanrank/pkg/hanrank/internalerr"
	"github.com/cognicore/hanrank/pkg/hanrank/rank"
	"github.com/cognicore/hanrank/pkg/hanrank/store"
)

// Run exercises an implementation returned by open. open is called once per
// subtest and must return an empty store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("Empty", func(t *testing.T) { testEmpty(t, open(t)) })
	t.Run("SaveAndGet", func(t *testing.T) { testSaveAndGet(t, open(t)) })
	t.Run("Ordering", func(t *testing.T) { testOrdering(t, open(t)) })
	t.Run("Prune", func(t *testing.T) { testPrune(t, open(t)) })
}

func sample(at time.Time, keywords ...string) store.Snapshot {
	kws := make([]rank.Keyword, len(keywords))
	for i, k := range keywords {
		kws[i] = rank.Keyword{Keyword: k, ArticleCount: len(keywords) - i, Variants: []string{k}}
	}
	return store.Snapshot{
		CreatedAt: at,
		Source:    "test",
		Titles:    []string{"특검법 국회 통과", "대통령실 반응"},
		Keywords:  kws,
	}
}

func testEmpty(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	_, err := st.LatestSnapshot(ctx)
	assert.True(t, errors.Is(err, internalerr.ErrNotFound), "LatestSnapshot: %v", err)

	_, err = st.GetSnapshot(ctx, "missing")
	assert.True(t, errors.Is(err, internalerr.ErrNotFound), "GetSnapshot: %v", err)

	list, err := st.ListSnapshots(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testSaveAndGet(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	saved, err := st.SaveSnapshot(ctx, sample(at, "국회", "특검법"))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, 2, saved.TitleCount)

	got, err := st.GetSnapshot(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.True(t, at.Equal(got.CreatedAt), "CreatedAt = %v", got.CreatedAt)
	assert.Equal(t, "test", got.Source)
	assert.Equal(t, []string{"특검법 국회 통과", "대통령실 반응"}, got.Titles)
	assert.Equal(t, []rank.Keyword{
		{Keyword: "국회", ArticleCount: 2, Variants: []string{"국회"}},
		{Keyword: "특검법", ArticleCount: 1, Variants: []string{"특검법"}},
	}, got.Keywords)

	latest, err := st.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, latest.ID)
}

func testOrdering(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		s, err := st.SaveSnapshot(ctx, sample(base.Add(time.Duration(i)*time.Minute), "국회"))
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	latest, err := st.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[2], latest.ID)

	prev, err := st.PreviousSnapshot(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, ids[1], prev.ID)

	_, err = st.PreviousSnapshot(ctx, ids[0])
	assert.True(t, errors.Is(err, internalerr.ErrNotFound))

	list, err := st.ListSnapshots(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
	assert.Empty(t, list[0].Titles)
	assert.Equal(t, 2, list[0].TitleCount)
	assert.Len(t, list[0].Keywords, 1)
}

func testPrune(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var last string
	for i := 0; i < 5; i++ {
		s, err := st.SaveSnapshot(ctx, sample(base.Add(time.Duration(i)*time.Minute), "국회"))
		require.NoError(t, err)
		last = s.ID
	}

	n, err := st.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list, err := st.ListSnapshots(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, last, list[0].ID)

	n, err = st.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, n)
}
