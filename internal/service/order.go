package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mejakita/api/internal/database"
	"github.com/mejakita/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrStoreNotFound     = errors.New("store not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrInvalidStatus     = errors.New("unknown order item status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetOrganizationBySlug(ctx context.Context, slug string) (database.Organization, error)
	GetStoreBySlug(ctx context.Context, arg database.GetStoreBySlugParams) (database.Store, error)
	UpsertOpenOrder(ctx context.Context, arg database.UpsertOpenOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrderWithOrganization(ctx context.Context, id int64) (database.GetOrderWithOrganizationRow, error)
	CompleteOrder(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error)
	ListOrderItemStatuses(ctx context.Context, orderID int64) ([]string, error)
	SetOrderItemsStatus(ctx context.Context, arg database.SetOrderItemsStatusParams) (int64, error)
	GetOrderItemWithOrganization(ctx context.Context, id int64) (database.GetOrderItemWithOrganizationRow, error)
	UpdateOrderItem(ctx context.Context, arg database.UpdateOrderItemParams) (database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// OrderService handles order intake from table QR codes and staff-side
// order updates.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

type AddOrderItemRequest struct {
	MenuDetailsID int64
	Quantity      int32
}

type AddOrderRequest struct {
	OrganizationSlug string
	StoreSlug        string
	TableName        string
	Items            []AddOrderItemRequest
}

type AddOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// AddOrder appends items to the table's open order, creating the order
// first when the table has none. The whole batch lands in one
// transaction: either every item is recorded or none are.
func (s *OrderService) AddOrder(ctx context.Context, req AddOrderRequest) (*AddOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// A missing organization and a missing store look the same to the
	// guest scanning the QR code.
	org, err := store.GetOrganizationBySlug(ctx, req.OrganizationSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}

	st, err := store.GetStoreBySlug(ctx, database.GetStoreBySlugParams{
		OrganizationID: org.ID,
		Slug:           req.StoreSlug,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("get store: %w", err)
	}

	order, err := store.UpsertOpenOrder(ctx, database.UpsertOpenOrderParams{
		StoreID:   st.ID,
		TableName: req.TableName,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert open order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:       order.ID,
			MenuDetailsID: line.MenuDetailsID,
			Quantity:      line.Quantity,
			Status:        enum.ItemStatusNew,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &AddOrderResult{Order: order, Items: items}, nil
}

type UpdateOrderRequest struct {
	OrganizationID string
	OrderID        int64
	// ItemStatus, when non-empty, is applied to every item on the order.
	ItemStatus string
	// CompletedValue settles the order and stamps its completion time.
	CompletedValue *decimal.Decimal
	Remarks        *string
}

// UpdateOrder applies staff-side changes to an order: bulk item status,
// remarks, and settlement. Bulk status changes are refused unless every
// item on the order can legally make the transition.
func (s *OrderService) UpdateOrder(ctx context.Context, req UpdateOrderRequest) (*database.Order, error) {
	if req.ItemStatus != "" && !enum.IsItemStatus(req.ItemStatus) {
		return nil, ErrInvalidStatus
	}
	if req.CompletedValue != nil && req.CompletedValue.IsNegative() {
		return nil, ErrNegativePrice
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	existing, err := store.GetOrderWithOrganization(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if existing.OrganizationID != req.OrganizationID {
		return nil, ErrNotOwned
	}

	order := existing.Order

	if req.ItemStatus != "" {
		statuses, err := store.ListOrderItemStatuses(ctx, req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("list item statuses: %w", err)
		}
		for _, from := range statuses {
			if !enum.CanTransitionItem(from, req.ItemStatus) {
				return nil, ErrInvalidTransition
			}
		}
		if _, err := store.SetOrderItemsStatus(ctx, database.SetOrderItemsStatusParams{
			OrderID: req.OrderID,
			Status:  req.ItemStatus,
		}); err != nil {
			return nil, fmt.Errorf("set item statuses: %w", err)
		}
	}

	if req.CompletedValue != nil || req.Remarks != nil {
		completedValue := pgtype.Numeric{}
		if req.CompletedValue != nil {
			completedValue = decimalToNumeric(*req.CompletedValue)
		}
		remarks := pgtype.Text{}
		if req.Remarks != nil {
			remarks = pgtype.Text{String: *req.Remarks, Valid: true}
		}
		order, err = store.CompleteOrder(ctx, database.CompleteOrderParams{
			ID:             req.OrderID,
			CompletedValue: completedValue,
			Remarks:        remarks,
		})
		if err != nil {
			return nil, fmt.Errorf("complete order: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &order, nil
}

type UpdateOrderItemRequest struct {
	OrganizationID string
	ItemID         int64
	Quantity       *int32
	Status         *string
}

type UpdateOrderItemResult struct {
	Item database.OrderItem
	// StoreID locates the websocket room interested in this change.
	StoreID string
	OrderID int64
}

// UpdateOrderItem adjusts one item's quantity or advances its status.
// Omitted fields are left untouched.
func (s *OrderService) UpdateOrderItem(ctx context.Context, req UpdateOrderItemRequest) (*UpdateOrderItemResult, error) {
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Status != nil && !enum.IsItemStatus(*req.Status) {
		return nil, ErrInvalidStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	existing, err := store.GetOrderItemWithOrganization(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}
	if existing.OrganizationID != req.OrganizationID {
		return nil, ErrNotOwned
	}

	if req.Status != nil && !enum.CanTransitionItem(existing.Status, *req.Status) {
		return nil, ErrInvalidTransition
	}

	quantity := pgtype.Int4{}
	if req.Quantity != nil {
		quantity = pgtype.Int4{Int32: *req.Quantity, Valid: true}
	}
	status := pgtype.Text{}
	if req.Status != nil {
		status = pgtype.Text{String: *req.Status, Valid: true}
	}

	item, err := store.UpdateOrderItem(ctx, database.UpdateOrderItemParams{
		ID:       req.ItemID,
		Quantity: quantity,
		Status:   status,
	})
	if err != nil {
		return nil, fmt.Errorf("update order item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &UpdateOrderItemResult{Item: item, StoreID: existing.StoreID, OrderID: existing.OrderID}, nil
}
