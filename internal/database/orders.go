package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const upsertOpenOrder = `
INSERT INTO orders (store_id, table_name)
VALUES ($1, $2)
ON CONFLICT (store_id, table_name) WHERE completed_at IS NULL
DO UPDATE SET updated_at = now()
RETURNING id, store_id, table_name, completed_at, completed_value, remarks, created_at, updated_at
`

type UpsertOpenOrderParams struct {
	StoreID   string
	TableName string
}

// UpsertOpenOrder atomically finds or creates the open order for a
// (store, table) pair. Backed by a partial unique index, so concurrent
// first submissions from the same table converge on one order.
func (q *Queries) UpsertOpenOrder(ctx context.Context, arg UpsertOpenOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, upsertOpenOrder, arg.StoreID, arg.TableName)
	var o Order
	err := row.Scan(&o.ID, &o.StoreID, &o.TableName, &o.CompletedAt, &o.CompletedValue, &o.Remarks, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const createOrderItem = `
INSERT INTO order_items (order_id, menu_details_id, quantity, status)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, menu_details_id, quantity, status, created_at, updated_at
`

type CreateOrderItemParams struct {
	OrderID       int64
	MenuDetailsID int64
	Quantity      int32
	Status        string
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem, arg.OrderID, arg.MenuDetailsID, arg.Quantity, arg.Status)
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.MenuDetailsID, &i.Quantity, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getOrder = `
SELECT id, store_id, table_name, completed_at, completed_value, remarks, created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id int64) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var o Order
	err := row.Scan(&o.ID, &o.StoreID, &o.TableName, &o.CompletedAt, &o.CompletedValue, &o.Remarks, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const getOrderWithOrganization = `
SELECT o.id, o.store_id, o.table_name, o.completed_at, o.completed_value, o.remarks, o.created_at, o.updated_at, s.organization_id
FROM orders o
JOIN stores s ON s.id = o.store_id
WHERE o.id = $1
`

type GetOrderWithOrganizationRow struct {
	Order
	OrganizationID string
}

func (q *Queries) GetOrderWithOrganization(ctx context.Context, id int64) (GetOrderWithOrganizationRow, error) {
	row := q.db.QueryRow(ctx, getOrderWithOrganization, id)
	var r GetOrderWithOrganizationRow
	err := row.Scan(&r.ID, &r.StoreID, &r.TableName, &r.CompletedAt, &r.CompletedValue, &r.Remarks, &r.CreatedAt, &r.UpdatedAt, &r.OrganizationID)
	return r, err
}

const listOpenOrdersByTable = `
SELECT id, store_id, table_name, completed_at, completed_value, remarks, created_at, updated_at
FROM orders
WHERE store_id = $1 AND table_name = $2 AND completed_at IS NULL
ORDER BY created_at
`

type ListOpenOrdersByTableParams struct {
	StoreID   string
	TableName string
}

func (q *Queries) ListOpenOrdersByTable(ctx context.Context, arg ListOpenOrdersByTableParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOpenOrdersByTable, arg.StoreID, arg.TableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.StoreID, &o.TableName, &o.CompletedAt, &o.CompletedValue, &o.Remarks, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listOpenOrdersByStore = `
SELECT id, store_id, table_name, completed_at, completed_value, remarks, created_at, updated_at
FROM orders
WHERE store_id = $1 AND completed_at IS NULL
ORDER BY created_at
`

func (q *Queries) ListOpenOrdersByStore(ctx context.Context, storeID string) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOpenOrdersByStore, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.StoreID, &o.TableName, &o.CompletedAt, &o.CompletedValue, &o.Remarks, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const completeOrder = `
UPDATE orders
SET completed_value = COALESCE($2, completed_value),
    remarks = COALESCE($3, remarks),
    completed_at = CASE WHEN $2::numeric IS NOT NULL THEN now() ELSE completed_at END,
    updated_at = now()
WHERE id = $1
RETURNING id, store_id, table_name, completed_at, completed_value, remarks, created_at, updated_at
`

// CompleteOrderParams applies only the fields whose pgtype value is
// Valid; a present completed value also stamps the completion time.
type CompleteOrderParams struct {
	ID             int64
	CompletedValue pgtype.Numeric
	Remarks        pgtype.Text
}

func (q *Queries) CompleteOrder(ctx context.Context, arg CompleteOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, completeOrder, arg.ID, arg.CompletedValue, arg.Remarks)
	var o Order
	err := row.Scan(&o.ID, &o.StoreID, &o.TableName, &o.CompletedAt, &o.CompletedValue, &o.Remarks, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const listOrderItemsByOrder = `
SELECT i.id, i.order_id, i.menu_details_id, i.quantity, i.status, i.created_at, i.updated_at,
       md.name, md.sale
FROM order_items i
LEFT JOIN menu_details md ON md.id = i.menu_details_id
WHERE i.order_id = $1
ORDER BY i.id
`

// ListOrderItemsByOrderRow joins the item with its menu detail snapshot.
// The join is LEFT so items survive a deleted detail row; cost is never
// selected here because this row shape feeds public endpoints.
type ListOrderItemsByOrderRow struct {
	ID            int64
	OrderID       int64
	MenuDetailsID int64
	Quantity      int32
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	MenuName      pgtype.Text
	MenuSale      pgtype.Numeric
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]ListOrderItemsByOrderRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOrderItemsByOrderRow
	for rows.Next() {
		var r ListOrderItemsByOrderRow
		if err := rows.Scan(&r.ID, &r.OrderID, &r.MenuDetailsID, &r.Quantity, &r.Status, &r.CreatedAt, &r.UpdatedAt, &r.MenuName, &r.MenuSale); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const setOrderItemsStatus = `
UPDATE order_items
SET status = $2, updated_at = now()
WHERE order_id = $1
`

type SetOrderItemsStatusParams struct {
	OrderID int64
	Status  string
}

func (q *Queries) SetOrderItemsStatus(ctx context.Context, arg SetOrderItemsStatusParams) (int64, error) {
	tag, err := q.db.Exec(ctx, setOrderItemsStatus, arg.OrderID, arg.Status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const getOrderItemWithOrganization = `
SELECT i.id, i.order_id, i.menu_details_id, i.quantity, i.status, i.created_at, i.updated_at, s.organization_id, o.store_id
FROM order_items i
JOIN orders o ON o.id = i.order_id
JOIN stores s ON s.id = o.store_id
WHERE i.id = $1
`

type GetOrderItemWithOrganizationRow struct {
	OrderItem
	OrganizationID string
	StoreID        string
}

func (q *Queries) GetOrderItemWithOrganization(ctx context.Context, id int64) (GetOrderItemWithOrganizationRow, error) {
	row := q.db.QueryRow(ctx, getOrderItemWithOrganization, id)
	var r GetOrderItemWithOrganizationRow
	err := row.Scan(&r.ID, &r.OrderID, &r.MenuDetailsID, &r.Quantity, &r.Status, &r.CreatedAt, &r.UpdatedAt, &r.OrganizationID, &r.StoreID)
	return r, err
}

const updateOrderItem = `
UPDATE order_items
SET quantity = COALESCE($2, quantity),
    status = COALESCE($3, status),
    updated_at = now()
WHERE id = $1
RETURNING id, order_id, menu_details_id, quantity, status, created_at, updated_at
`

// UpdateOrderItemParams is an explicit optional-field update: only
// fields with Valid set are applied.
type UpdateOrderItemParams struct {
	ID       int64
	Quantity pgtype.Int4
	Status   pgtype.Text
}

func (q *Queries) UpdateOrderItem(ctx context.Context, arg UpdateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, updateOrderItem, arg.ID, arg.Quantity, arg.Status)
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.MenuDetailsID, &i.Quantity, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listOrderItemStatuses = `
SELECT status
FROM order_items
WHERE order_id = $1
`

func (q *Queries) ListOrderItemStatuses(ctx context.Context, orderID int64) ([]string, error) {
	rows, err := q.db.Query(ctx, listOrderItemStatuses, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
