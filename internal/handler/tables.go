package handler

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/enum"
	"github.com/kiwari-pos/backoffice/internal/pager"
	"github.com/kiwari-pos/backoffice/internal/source"
	"github.com/kiwari-pos/backoffice/internal/ws"
)

// tableFetchTimeout bounds a single page query behind a dashboard table.
const tableFetchTimeout = 10 * time.Second

// TableStore is the read side behind the live dashboard tables.
type TableStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error)
	ListPurchaseOrders(ctx context.Context, arg database.ListPurchaseOrdersParams) ([]database.PurchaseOrder, error)
	ListStockAdjustments(ctx context.Context, arg database.ListStockAdjustmentsParams) ([]database.ListStockAdjustmentsRow, error)
}

// TableSources exposes the branch list queries as websocket table sources.
// Rows are rendered exactly like the matching REST list endpoints.
//
// The orders table has no free-text search: a search that names an order
// status filters by it, anything else is ignored.
func TableSources(store TableStore) ws.Sources {
	return ws.Sources{
		"orders": func(branchID uuid.UUID, search string) pager.FetchFunc[any] {
			params := database.ListOrdersParams{BranchID: branchID}
			if s := strings.ToUpper(search); enum.IsOrderStatus(s) {
				params.Status = database.Text(s)
			}
			return tableFetch(func(ctx context.Context, limit, offset int32) ([]database.Order, error) {
				p := params
				p.Limit, p.Offset = limit, offset
				return store.ListOrders(ctx, p)
			}, toOrderResponse)
		},
		"menu-items": func(branchID uuid.UUID, search string) pager.FetchFunc[any] {
			return tableFetch(func(ctx context.Context, limit, offset int32) ([]database.MenuItem, error) {
				return store.ListMenuItems(ctx, database.ListMenuItemsParams{
					BranchID: branchID, Search: database.Text(search), Limit: limit, Offset: offset,
				})
			}, toMenuItemResponse)
		},
		"purchase-orders": func(branchID uuid.UUID, search string) pager.FetchFunc[any] {
			return tableFetch(func(ctx context.Context, limit, offset int32) ([]database.PurchaseOrder, error) {
				return store.ListPurchaseOrders(ctx, database.ListPurchaseOrdersParams{
					BranchID: branchID, Search: database.Text(search), Limit: limit, Offset: offset,
				})
			}, toPurchaseOrderResponse)
		},
		"stock-adjustments": func(branchID uuid.UUID, search string) pager.FetchFunc[any] {
			return tableFetch(func(ctx context.Context, limit, offset int32) ([]database.ListStockAdjustmentsRow, error) {
				return store.ListStockAdjustments(ctx, database.ListStockAdjustmentsParams{
					BranchID: branchID, Search: database.Text(search), Limit: limit, Offset: offset,
				})
			}, toStockAdjustmentRow)
		},
	}
}

func tableFetch[Row, Resp any](q source.QueryFunc[Row], render func(Row) Resp) pager.FetchFunc[any] {
	fetch := source.Map(source.FromQuery(q), func(r Row) any { return render(r) })
	return source.WithTimeout(fetch, tableFetchTimeout)
}
