package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hanrank/pkg/hanrank/rank"
	"github.com/cognicore/hanrank/pkg/hanrank/store"
	"github.com/cognicore/hanrank/pkg/hanrank/store/storetest"
)

func TestMemstore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestMemstoreCopiesOnSave(t *testing.T) {
	st := New()
	ctx := context.Background()

	snap := store.Snapshot{
		Titles:   []string{"국회 반응"},
		Keywords: []rank.Keyword{{Keyword: "국회", ArticleCount: 1, Variants: []string{"국회"}}},
	}
	saved, err := st.SaveSnapshot(ctx, snap)
	require.NoError(t, err)

	snap.Titles[0] = "changed"
	snap.Keywords[0].Variants[0] = "changed"

	got, err := st.GetSnapshot(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "국회 반응", got.Titles[0])
	assert.Equal(t, "국회", got.Keywords[0].Variants[0])
}
