package catalog

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/example/storefront-core/internal/domain"
	"github.com/example/storefront-core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byID(ps []domain.Product) map[string]domain.Product {
	out := make(map[string]domain.Product, len(ps))
	for _, p := range ps {
		out[p.ID] = p
	}
	return out
}

func TestMergeFullWins(t *testing.T) {
	lite := []domain.Product{
		{ID: "1", Name: "one", Images: []string{"1a"}},
		{ID: "2", Name: "two", Images: []string{"2a"}},
	}
	full := []domain.Product{
		{ID: "2", Name: "two", Images: []string{"2a", "2b", "2c"}},
		{ID: "3", Name: "three", Images: []string{"3a"}},
	}
	merged := Merge(lite, full)
	assert.Equal(t, []string{"1", "2", "3"}, ids(merged))
	assert.Len(t, merged[1].Images, 3)
}

func TestMergeIdempotent(t *testing.T) {
	lite := []domain.Product{{ID: "5", Name: "lite"}, {ID: "9", Name: "lite"}}
	full := []domain.Product{{ID: "9", Name: "full"}, {ID: "7", Name: "full"}}
	once := Merge(lite, full)
	twice := Merge(once, full)
	assert.Equal(t, once, twice)
}

func TestMergeIndependentOfInputOrder(t *testing.T) {
	lite := []domain.Product{{ID: "1", Name: "l1"}, {ID: "2", Name: "l2"}}
	full := []domain.Product{{ID: "2", Name: "f2"}, {ID: "3", Name: "f3"}, {ID: "4", Name: "f4"}}
	reversedLite := []domain.Product{lite[1], lite[0]}
	reversedFull := []domain.Product{full[2], full[1], full[0]}

	a := Merge(lite, full)
	b := Merge(reversedLite, reversedFull)
	assert.Equal(t, byID(a), byID(b))

	keys := ids(b)
	sort.Strings(keys)
	assert.Equal(t, []string{"1", "2", "3", "4"}, keys)
}

func TestLoadLiteSuccess(t *testing.T) {
	api := testutil.NewFakeAPI()
	settings := domain.DefaultSettings()
	api.Home = domain.HomeData{Settings: &settings, Products: []domain.Product{{ID: "1"}}}
	sink := &testutil.RecordingSink{}

	res := Reconciler{API: api, Sink: sink}.LoadLite(context.Background())
	require.NoError(t, res.Err)
	assert.False(t, res.FullLoaded)
	assert.False(t, res.Fallback)
	assert.Equal(t, []string{"1"}, ids(res.Products))
	assert.NotNil(t, res.Settings)
	require.Len(t, sink.Named(domain.EventCatalogLoaded), 1)
	assert.Equal(t, "lite", sink.Events()[0].Attrs["phase"])
}

func TestLoadLiteFailureFallsBack(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.HomeErr = domain.ErrNetwork

	res := Reconciler{API: api}.LoadLite(context.Background())
	assert.True(t, errors.Is(res.Err, domain.ErrNetwork))
	assert.True(t, res.FullLoaded)
	assert.True(t, res.Fallback)
	assert.Equal(t, ids(SampleCatalog()), ids(res.Products))
}

func TestLoadLiteEmptyUsesSampleButKeepsFullPending(t *testing.T) {
	api := testutil.NewFakeAPI()
	res := Reconciler{API: api}.LoadLite(context.Background())
	require.NoError(t, res.Err)
	assert.False(t, res.FullLoaded)
	assert.NotEmpty(t, res.Products)
}

func TestFetchFull(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.All = []domain.Product{{ID: "2", Name: "full"}}
	sink := &testutil.RecordingSink{}
	r := Reconciler{API: api, Sink: sink}

	full, err := r.FetchFull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(full))
	require.Len(t, sink.Named(domain.EventCatalogLoaded), 1)

	merged := Merge([]domain.Product{{ID: "1"}, {ID: "2", Name: "lite"}}, full)
	assert.Equal(t, "full", byID(merged)["2"].Name)
	assert.Len(t, merged, 2)

	api.AllErr = domain.ErrNetwork
	_, err = r.FetchFull(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Len(t, sink.Named(domain.EventCatalogLoaded), 1)
}

func TestFetchFullEmptyUsesSample(t *testing.T) {
	full, err := Reconciler{API: testutil.NewFakeAPI()}.FetchFull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ids(SampleCatalog()), ids(full))
}

func TestSampleCatalogIsFresh(t *testing.T) {
	a := SampleCatalog()
	a[0].Images[0] = "changed"
	b := SampleCatalog()
	assert.NotEqual(t, "changed", b[0].Images[0])
}
