package orders

import (
	"context"
	"fmt"
	"sort"

	"github.com/ariefcatur/go-storefront/internal/jsonid"
)

type Backend interface {
	ListOrders(ctx context.Context, userID jsonid.ID) ([]Order, error)
	GetOrder(ctx context.Context, id jsonid.ID) (Order, error)
}

// History is the read side a customer sees: their own orders.
type History struct {
	Backend Backend
}

// ForUser returns the user's orders, newest first.
func (h *History) ForUser(ctx context.Context, userID jsonid.ID) ([]Order, error) {
	list, err := h.Backend.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", userID, err)
	}
	SortNewestFirst(list)
	return list, nil
}

func (h *History) Get(ctx context.Context, id jsonid.ID) (Order, error) {
	return h.Backend.GetOrder(ctx, id)
}

func SortNewestFirst(list []Order) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
}
