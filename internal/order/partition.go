package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/hakimskills/marketplace-backend/internal/catalog"
)

// ResolveLines joins each cart line with its catalog projection. It validates
// quantity against the stock visible at resolution time; the transactional
// path re-checks under a row lock before committing.
func ResolveLines(ctx context.Context, products catalog.Repository, lines []CartLine) ([]ResolvedLine, error) {
	resolved := make([]ResolvedLine, 0, len(lines))
	for _, line := range lines {
		p, err := products.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: line.ProductID}
			}
			return nil, fmt.Errorf("resolve product %s: %w", line.ProductID, err)
		}
		if p.SellerID == "" {
			return nil, &MissingSellerInfoError{ProductName: p.Name}
		}
		if line.Quantity > p.Stock {
			return nil, &InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: p.Stock,
			}
		}
		resolved = append(resolved, ResolvedLine{
			ProductID:   p.ProductID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   p.Price,
			SellerID:    p.SellerID,
			StoreID:     p.StoreID,
			Stock:       p.Stock,
		})
	}
	return resolved, nil
}

// BuildDrafts groups resolved lines by seller so each seller gets its own
// order. Groups keep the order the seller was first seen in the cart, which
// keeps multi-seller submissions reproducible. Pure; touches no stock.
func BuildDrafts(lines []ResolvedLine) []Draft {
	index := make(map[string]int, len(lines))
	drafts := make([]Draft, 0, len(lines))

	for _, line := range lines {
		i, ok := index[line.SellerID]
		if !ok {
			i = len(drafts)
			index[line.SellerID] = i
			drafts = append(drafts, Draft{SellerID: line.SellerID, StoreID: line.StoreID})
		}
		drafts[i].Lines = append(drafts[i].Lines, line)
		drafts[i].TotalAmount += line.UnitPrice * float64(line.Quantity)
	}
	return drafts
}
