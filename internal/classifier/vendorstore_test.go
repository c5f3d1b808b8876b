package classifier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/email-ledger/internal/aiclient"
	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/models"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "vendors.yaml")
}

func TestVendorStoreLearnAndLookup(t *testing.T) {
	store := NewVendorStore(tempStorePath(t), logging.NewMockLogger())

	_, ok := store.Lookup("Uber")
	assert.False(t, ok)

	store.Learn("Uber", models.CategoryTransport)

	category, ok := store.Lookup("Uber")
	require.True(t, ok)
	assert.Equal(t, models.CategoryTransport, category)

	// Lookup is case-insensitive.
	category, ok = store.Lookup("  UBER ")
	require.True(t, ok)
	assert.Equal(t, models.CategoryTransport, category)
}

func TestVendorStorePersistsAcrossLoads(t *testing.T) {
	path := tempStorePath(t)

	store := NewVendorStore(path, logging.NewMockLogger())
	store.Learn("Uber", models.CategoryTransport)
	store.Learn("GitHub", models.CategorySaaS)

	reloaded := NewVendorStore(path, logging.NewMockLogger())
	assert.Equal(t, 2, reloaded.Len())

	category, ok := reloaded.Lookup("github")
	require.True(t, ok)
	assert.Equal(t, models.CategorySaaS, category)
}

func TestVendorStoreIgnoresInvalidInput(t *testing.T) {
	store := NewVendorStore(tempStorePath(t), logging.NewMockLogger())

	store.Learn("", models.CategoryTransport)
	store.Learn("Uber", "crypto")

	assert.Equal(t, 0, store.Len())
}

func TestVendorStoreDropsUnknownCategoriesOnLoad(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte("uber: transport\nshady: crypto\n"), 0o644))

	store := NewVendorStore(path, logging.NewMockLogger())
	assert.Equal(t, 1, store.Len())

	_, ok := store.Lookup("shady")
	assert.False(t, ok)
}

func TestVendorStoreStartsEmptyOnGarbageFile(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	store := NewVendorStore(path, logging.NewMockLogger())
	assert.Equal(t, 0, store.Len())
}

func TestClassifyUsesLearnedVendor(t *testing.T) {
	store := NewVendorStore(tempStorePath(t), logging.NewMockLogger())
	store.Learn("Uber", models.CategoryTransport)

	mock := aiclient.NewMockClient(`{"category": "other"}`)
	engine := New(mock, store, DefaultOptions(), logging.NewMockLogger())

	got := engine.Classify(context.Background(), sampleContent(), sampleData())

	assert.Equal(t, models.CategoryTransport, got.Category)
	assert.Equal(t, 0, mock.Calls)
}

func TestClassifyLearnsFromModel(t *testing.T) {
	store := NewVendorStore(tempStorePath(t), logging.NewMockLogger())
	mock := aiclient.NewMockClient(`{"category": "transport"}`)
	engine := New(mock, store, DefaultOptions(), logging.NewMockLogger())

	engine.Classify(context.Background(), sampleContent(), sampleData())
	engine.Classify(context.Background(), sampleContent(), sampleData())

	// The second call is answered from the learned mapping.
	assert.Equal(t, 1, mock.Calls)

	category, ok := store.Lookup("Uber")
	require.True(t, ok)
	assert.Equal(t, models.CategoryTransport, category)
}

func TestClassifyDoesNotLearnOther(t *testing.T) {
	store := NewVendorStore(tempStorePath(t), logging.NewMockLogger())
	mock := aiclient.NewMockClient(`{"category": "other"}`)
	engine := New(mock, store, DefaultOptions(), logging.NewMockLogger())

	engine.Classify(context.Background(), sampleContent(), sampleData())

	assert.Equal(t, 0, store.Len())
}
