package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLines(t *testing.T) {
	store := newFakeStore(
		productFixture("p1", "Rug", 40, 5, "s1"),
		productFixture("p2", "Lamp", 15, 3, "s2"),
	)

	resolved, err := ResolveLines(context.Background(), store, []CartLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	assert.Equal(t, "Rug", resolved[0].ProductName)
	assert.Equal(t, 40.0, resolved[0].UnitPrice)
	assert.Equal(t, "s1", resolved[0].SellerID)
	assert.Equal(t, "store-s1", resolved[0].StoreID)
	assert.Equal(t, 5, resolved[0].Stock)
	assert.Equal(t, 2, resolved[0].Quantity)
}

func TestResolveLines_Errors(t *testing.T) {
	store := newFakeStore(
		productFixture("p1", "Rug", 40, 1, "s1"),
		productFixture("orphaned", "Vase", 10, 4, ""),
	)
	ctx := context.Background()

	_, err := ResolveLines(ctx, store, []CartLine{{ProductID: "ghost", Quantity: 1}})
	var notFound *ProductNotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = ResolveLines(ctx, store, []CartLine{{ProductID: "orphaned", Quantity: 1}})
	var missing *MissingSellerInfoError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Vase", missing.ProductName)

	_, err = ResolveLines(ctx, store, []CartLine{{ProductID: "p1", Quantity: 2}})
	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, "p1", stock.ProductID)
}

func TestBuildDrafts(t *testing.T) {
	lines := []ResolvedLine{
		{ProductID: "p1", Quantity: 2, UnitPrice: 40, SellerID: "s1", StoreID: "st1"},
		{ProductID: "p2", Quantity: 1, UnitPrice: 15, SellerID: "s2", StoreID: "st2"},
		{ProductID: "p3", Quantity: 3, UnitPrice: 10, SellerID: "s1", StoreID: "st1"},
	}

	drafts := BuildDrafts(lines)
	require.Len(t, drafts, 2)

	// groups keep first-seen seller order
	assert.Equal(t, "s1", drafts[0].SellerID)
	assert.Equal(t, "s2", drafts[1].SellerID)

	assert.Len(t, drafts[0].Lines, 2)
	assert.Equal(t, 110.0, drafts[0].TotalAmount)
	assert.Len(t, drafts[1].Lines, 1)
	assert.Equal(t, 15.0, drafts[1].TotalAmount)
}

func TestBuildDrafts_Empty(t *testing.T) {
	assert.Empty(t, BuildDrafts(nil))
}

func TestBuildDrafts_IsPure(t *testing.T) {
	lines := []ResolvedLine{
		{ProductID: "p1", Quantity: 1, UnitPrice: 5, SellerID: "s1", Stock: 9},
	}
	drafts := BuildDrafts(lines)
	require.Len(t, drafts, 1)
	assert.Equal(t, 9, lines[0].Stock, "grouping must not mutate its input")
	assert.Equal(t, 5.0, drafts[0].TotalAmount)
}
