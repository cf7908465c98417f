package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mejakita/api/internal/database"
	"github.com/mejakita/api/internal/enum"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error          { return m.commitErr }
func (m *mockTx) Rollback(ctx context.Context) error        { return m.rollbackErr }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx  pgx.Tx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// mockOrderStore implements OrderStore with configurable behavior.
type mockOrderStore struct {
	getOrganizationBySlugFn        func(ctx context.Context, slug string) (database.Organization, error)
	getStoreBySlugFn               func(ctx context.Context, arg database.GetStoreBySlugParams) (database.Store, error)
	upsertOpenOrderFn              func(ctx context.Context, arg database.UpsertOpenOrderParams) (database.Order, error)
	createOrderItemFn              func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	getOrderWithOrganizationFn     func(ctx context.Context, id int64) (database.GetOrderWithOrganizationRow, error)
	completeOrderFn                func(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error)
	listOrderItemStatusesFn        func(ctx context.Context, orderID int64) ([]string, error)
	setOrderItemsStatusFn          func(ctx context.Context, arg database.SetOrderItemsStatusParams) (int64, error)
	getOrderItemWithOrganizationFn func(ctx context.Context, id int64) (database.GetOrderItemWithOrganizationRow, error)
	updateOrderItemFn              func(ctx context.Context, arg database.UpdateOrderItemParams) (database.OrderItem, error)
}

func (m *mockOrderStore) GetOrganizationBySlug(ctx context.Context, slug string) (database.Organization, error) {
	return m.getOrganizationBySlugFn(ctx, slug)
}
func (m *mockOrderStore) GetStoreBySlug(ctx context.Context, arg database.GetStoreBySlugParams) (database.Store, error) {
	return m.getStoreBySlugFn(ctx, arg)
}
func (m *mockOrderStore) UpsertOpenOrder(ctx context.Context, arg database.UpsertOpenOrderParams) (database.Order, error) {
	return m.upsertOpenOrderFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}
func (m *mockOrderStore) GetOrderWithOrganization(ctx context.Context, id int64) (database.GetOrderWithOrganizationRow, error) {
	return m.getOrderWithOrganizationFn(ctx, id)
}
func (m *mockOrderStore) CompleteOrder(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error) {
	return m.completeOrderFn(ctx, arg)
}
func (m *mockOrderStore) ListOrderItemStatuses(ctx context.Context, orderID int64) ([]string, error) {
	return m.listOrderItemStatusesFn(ctx, orderID)
}
func (m *mockOrderStore) SetOrderItemsStatus(ctx context.Context, arg database.SetOrderItemsStatusParams) (int64, error) {
	return m.setOrderItemsStatusFn(ctx, arg)
}
func (m *mockOrderStore) GetOrderItemWithOrganization(ctx context.Context, id int64) (database.GetOrderItemWithOrganizationRow, error) {
	return m.getOrderItemWithOrganizationFn(ctx, id)
}
func (m *mockOrderStore) UpdateOrderItem(ctx context.Context, arg database.UpdateOrderItemParams) (database.OrderItem, error) {
	return m.updateOrderItemFn(ctx, arg)
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

// newTestOrderService creates an OrderService with mocked dependencies.
func newTestOrderService(store *mockOrderStore) *OrderService {
	pool := &mockTxBeginner{tx: &mockTx{}}
	newStore := func(db database.DBTX) OrderStore { return store }
	return NewOrderService(pool, newStore)
}

// defaultOrderStore returns a mockOrderStore resolving one known
// organization/store pair. Individual tests override what they need.
func defaultOrderStore() *mockOrderStore {
	var nextItemID int64
	return &mockOrderStore{
		getOrganizationBySlugFn: func(ctx context.Context, slug string) (database.Organization, error) {
			if slug == "warung-ijo" {
				return database.Organization{ID: "org_1", Name: "Warung Ijo", Slug: "warung-ijo"}, nil
			}
			return database.Organization{}, pgx.ErrNoRows
		},
		getStoreBySlugFn: func(ctx context.Context, arg database.GetStoreBySlugParams) (database.Store, error) {
			if arg.OrganizationID == "org_1" && arg.Slug == "cabang-kota" {
				return database.Store{ID: "store_1", Name: "Cabang Kota", Slug: "cabang-kota", OrganizationID: "org_1"}, nil
			}
			return database.Store{}, pgx.ErrNoRows
		},
		upsertOpenOrderFn: func(ctx context.Context, arg database.UpsertOpenOrderParams) (database.Order, error) {
			return database.Order{ID: 7, StoreID: arg.StoreID, TableName: arg.TableName}, nil
		},
		createOrderItemFn: func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			nextItemID++
			return database.OrderItem{
				ID:            nextItemID,
				OrderID:       arg.OrderID,
				MenuDetailsID: arg.MenuDetailsID,
				Quantity:      arg.Quantity,
				Status:        arg.Status,
			}, nil
		},
	}
}

func basicOrderReq() AddOrderRequest {
	return AddOrderRequest{
		OrganizationSlug: "warung-ijo",
		StoreSlug:        "cabang-kota",
		TableName:        "A3",
		Items: []AddOrderItemRequest{
			{MenuDetailsID: 11, Quantity: 2},
		},
	}
}

// =====================
// AddOrder tests
// =====================

func TestAddOrder_EmptyItems(t *testing.T) {
	svc := newTestOrderService(defaultOrderStore())

	req := basicOrderReq()
	req.Items = nil
	_, err := svc.AddOrder(context.Background(), req)
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got: %v", err)
	}
}

func TestAddOrder_ZeroQuantity(t *testing.T) {
	svc := newTestOrderService(defaultOrderStore())

	req := basicOrderReq()
	req.Items = []AddOrderItemRequest{{MenuDetailsID: 11, Quantity: 0}}
	_, err := svc.AddOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got: %v", err)
	}
}

func TestAddOrder_UnknownOrganizationSlug(t *testing.T) {
	svc := newTestOrderService(defaultOrderStore())

	req := basicOrderReq()
	req.OrganizationSlug = "no-such-org"
	_, err := svc.AddOrder(context.Background(), req)
	if !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got: %v", err)
	}
}

func TestAddOrder_UnknownStoreSlug(t *testing.T) {
	svc := newTestOrderService(defaultOrderStore())

	req := basicOrderReq()
	req.StoreSlug = "no-such-store"
	_, err := svc.AddOrder(context.Background(), req)
	if !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got: %v", err)
	}
}

func TestAddOrder_ItemsLandOnOpenOrderAsNew(t *testing.T) {
	store := defaultOrderStore()

	var capturedUpsert database.UpsertOpenOrderParams
	store.upsertOpenOrderFn = func(ctx context.Context, arg database.UpsertOpenOrderParams) (database.Order, error) {
		capturedUpsert = arg
		return database.Order{ID: 7, StoreID: arg.StoreID, TableName: arg.TableName}, nil
	}

	var capturedItems []database.CreateOrderItemParams
	store.createOrderItemFn = func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
		capturedItems = append(capturedItems, arg)
		return database.OrderItem{
			ID:            int64(len(capturedItems)),
			OrderID:       arg.OrderID,
			MenuDetailsID: arg.MenuDetailsID,
			Quantity:      arg.Quantity,
			Status:        arg.Status,
		}, nil
	}

	svc := newTestOrderService(store)
	req := basicOrderReq()
	req.Items = []AddOrderItemRequest{
		{MenuDetailsID: 11, Quantity: 2},
		{MenuDetailsID: 12, Quantity: 1},
	}
	result, err := svc.AddOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturedUpsert.StoreID != "store_1" || capturedUpsert.TableName != "A3" {
		t.Errorf("upsert params: got %+v", capturedUpsert)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	for _, item := range capturedItems {
		if item.OrderID != 7 {
			t.Errorf("item order_id: got %d, want 7", item.OrderID)
		}
		if item.Status != enum.ItemStatusNew {
			t.Errorf("item status: got %q, want %q", item.Status, enum.ItemStatusNew)
		}
	}
}

func TestAddOrder_ItemInsertFailureAborts(t *testing.T) {
	store := defaultOrderStore()
	store.createOrderItemFn = func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
		return database.OrderItem{}, errors.New("constraint violation")
	}

	svc := newTestOrderService(store)
	_, err := svc.AddOrder(context.Background(), basicOrderReq())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// =====================
// UpdateOrder tests
// =====================

func openOrderRow(orgID string) database.GetOrderWithOrganizationRow {
	return database.GetOrderWithOrganizationRow{
		Order:          database.Order{ID: 7, StoreID: "store_1", TableName: "A3"},
		OrganizationID: orgID,
	}
}

func TestUpdateOrder_NotFound(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderWithOrganizationRow, error) {
		return database.GetOrderWithOrganizationRow{}, pgx.ErrNoRows
	}

	svc := newTestOrderService(store)
	_, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{OrganizationID: "org_1", OrderID: 7})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got: %v", err)
	}
}

func TestUpdateOrder_WrongOrganization(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderWithOrganizationRow, error) {
		return openOrderRow("org_other"), nil
	}

	svc := newTestOrderService(store)
	_, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{OrganizationID: "org_1", OrderID: 7})
	if !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got: %v", err)
	}
}

func TestUpdateOrder_UnknownStatus(t *testing.T) {
	svc := newTestOrderService(defaultOrderStore())

	_, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{
		OrganizationID: "org_1",
		OrderID:        7,
		ItemStatus:     "DELIVERED",
	})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got: %v", err)
	}
}

func TestUpdateOrder_BulkTransitionRefusedWhenAnyItemCannot(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderWithOrganizationRow, error) {
		return openOrderRow("org_1"), nil
	}
	// One item already served: the whole bulk move to IN_PROGRESS fails.
	store.listOrderItemStatusesFn = func(ctx context.Context, orderID int64) ([]string, error) {
		return []string{enum.ItemStatusNew, enum.ItemStatusServed}, nil
	}
	store.setOrderItemsStatusFn = func(ctx context.Context, arg database.SetOrderItemsStatusParams) (int64, error) {
		t.Fatal("SetOrderItemsStatus must not be called on refused transition")
		return 0, nil
	}

	svc := newTestOrderService(store)
	_, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{
		OrganizationID: "org_1",
		OrderID:        7,
		ItemStatus:     enum.ItemStatusInProgress,
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got: %v", err)
	}
}

func TestUpdateOrder_BulkStatusApplied(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderWithOrganizationRow, error) {
		return openOrderRow("org_1"), nil
	}
	store.listOrderItemStatusesFn = func(ctx context.Context, orderID int64) ([]string, error) {
		return []string{enum.ItemStatusNew, enum.ItemStatusNew}, nil
	}

	var captured database.SetOrderItemsStatusParams
	store.setOrderItemsStatusFn = func(ctx context.Context, arg database.SetOrderItemsStatusParams) (int64, error) {
		captured = arg
		return 2, nil
	}

	svc := newTestOrderService(store)
	_, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{
		OrganizationID: "org_1",
		OrderID:        7,
		ItemStatus:     enum.ItemStatusInProgress,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.OrderID != 7 || captured.Status != enum.ItemStatusInProgress {
		t.Errorf("set status params: got %+v", captured)
	}
}

func TestUpdateOrder_CompletedValueSettles(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderWithOrganizationRow, error) {
		return openOrderRow("org_1"), nil
	}

	var captured database.CompleteOrderParams
	store.completeOrderFn = func(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error) {
		captured = arg
		return database.Order{ID: arg.ID, StoreID: "store_1", CompletedValue: arg.CompletedValue}, nil
	}

	svc := newTestOrderService(store)
	value := decimal.RequireFromString("125000")
	order, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{
		OrganizationID: "org_1",
		OrderID:        7,
		CompletedValue: &value,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !captured.CompletedValue.Valid || !numericEquals(captured.CompletedValue, "125000") {
		t.Errorf("completed_value: got %v, want 125000", numericToDecimal(captured.CompletedValue))
	}
	if captured.Remarks.Valid {
		t.Error("remarks should stay untouched when not provided")
	}
	if order.ID != 7 {
		t.Errorf("returned order id: got %d, want 7", order.ID)
	}
}

func TestUpdateOrder_RemarksOnly(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderWithOrganizationRow, error) {
		return openOrderRow("org_1"), nil
	}

	var captured database.CompleteOrderParams
	store.completeOrderFn = func(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error) {
		captured = arg
		return database.Order{ID: arg.ID, StoreID: "store_1", Remarks: arg.Remarks}, nil
	}

	svc := newTestOrderService(store)
	remarks := "paid in cash"
	_, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{
		OrganizationID: "org_1",
		OrderID:        7,
		Remarks:        &remarks,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !captured.Remarks.Valid || captured.Remarks.String != "paid in cash" {
		t.Errorf("remarks: got %+v", captured.Remarks)
	}
	if captured.CompletedValue.Valid {
		t.Error("completed_value must stay null when only remarks change")
	}
}

func TestUpdateOrder_NegativeCompletedValue(t *testing.T) {
	svc := newTestOrderService(defaultOrderStore())

	value := decimal.RequireFromString("-1")
	_, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{
		OrganizationID: "org_1",
		OrderID:        7,
		CompletedValue: &value,
	})
	if !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice, got: %v", err)
	}
}

// =====================
// UpdateOrderItem tests
// =====================

func orderItemRow(orgID, status string) database.GetOrderItemWithOrganizationRow {
	return database.GetOrderItemWithOrganizationRow{
		OrderItem:      database.OrderItem{ID: 3, OrderID: 7, MenuDetailsID: 11, Quantity: 2, Status: status},
		OrganizationID: orgID,
		StoreID:        "store_1",
	}
}

func TestUpdateOrderItem_NotFound(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderItemWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderItemWithOrganizationRow, error) {
		return database.GetOrderItemWithOrganizationRow{}, pgx.ErrNoRows
	}

	svc := newTestOrderService(store)
	_, err := svc.UpdateOrderItem(context.Background(), UpdateOrderItemRequest{OrganizationID: "org_1", ItemID: 3})
	if !errors.Is(err, ErrOrderItemNotFound) {
		t.Fatalf("expected ErrOrderItemNotFound, got: %v", err)
	}
}

func TestUpdateOrderItem_WrongOrganization(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderItemWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderItemWithOrganizationRow, error) {
		return orderItemRow("org_other", enum.ItemStatusNew), nil
	}

	svc := newTestOrderService(store)
	_, err := svc.UpdateOrderItem(context.Background(), UpdateOrderItemRequest{OrganizationID: "org_1", ItemID: 3})
	if !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got: %v", err)
	}
}

func TestUpdateOrderItem_ZeroQuantity(t *testing.T) {
	svc := newTestOrderService(defaultOrderStore())

	qty := int32(0)
	_, err := svc.UpdateOrderItem(context.Background(), UpdateOrderItemRequest{
		OrganizationID: "org_1",
		ItemID:         3,
		Quantity:       &qty,
	})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got: %v", err)
	}
}

func TestUpdateOrderItem_BackwardTransitionRefused(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderItemWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderItemWithOrganizationRow, error) {
		return orderItemRow("org_1", enum.ItemStatusServed), nil
	}

	svc := newTestOrderService(store)
	status := enum.ItemStatusNew
	_, err := svc.UpdateOrderItem(context.Background(), UpdateOrderItemRequest{
		OrganizationID: "org_1",
		ItemID:         3,
		Status:         &status,
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got: %v", err)
	}
}

func TestUpdateOrderItem_CancelServedRefused(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderItemWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderItemWithOrganizationRow, error) {
		return orderItemRow("org_1", enum.ItemStatusServed), nil
	}

	svc := newTestOrderService(store)
	status := enum.ItemStatusCancelled
	_, err := svc.UpdateOrderItem(context.Background(), UpdateOrderItemRequest{
		OrganizationID: "org_1",
		ItemID:         3,
		Status:         &status,
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got: %v", err)
	}
}

func TestUpdateOrderItem_QuantityOnly(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderItemWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderItemWithOrganizationRow, error) {
		return orderItemRow("org_1", enum.ItemStatusNew), nil
	}

	var captured database.UpdateOrderItemParams
	store.updateOrderItemFn = func(ctx context.Context, arg database.UpdateOrderItemParams) (database.OrderItem, error) {
		captured = arg
		return database.OrderItem{ID: arg.ID, OrderID: 7, Quantity: arg.Quantity.Int32, Status: enum.ItemStatusNew}, nil
	}

	svc := newTestOrderService(store)
	qty := int32(5)
	result, err := svc.UpdateOrderItem(context.Background(), UpdateOrderItemRequest{
		OrganizationID: "org_1",
		ItemID:         3,
		Quantity:       &qty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !captured.Quantity.Valid || captured.Quantity.Int32 != 5 {
		t.Errorf("quantity param: got %+v", captured.Quantity)
	}
	if captured.Status.Valid {
		t.Error("status param must stay null when not provided")
	}
	if result.StoreID != "store_1" || result.OrderID != 7 {
		t.Errorf("result routing info: got %+v", result)
	}
}

func TestUpdateOrderItem_StatusAdvance(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderItemWithOrganizationFn = func(ctx context.Context, id int64) (database.GetOrderItemWithOrganizationRow, error) {
		return orderItemRow("org_1", enum.ItemStatusInProgress), nil
	}

	var captured database.UpdateOrderItemParams
	store.updateOrderItemFn = func(ctx context.Context, arg database.UpdateOrderItemParams) (database.OrderItem, error) {
		captured = arg
		return database.OrderItem{ID: arg.ID, OrderID: 7, Status: arg.Status.String}, nil
	}

	svc := newTestOrderService(store)
	status := enum.ItemStatusServed
	_, err := svc.UpdateOrderItem(context.Background(), UpdateOrderItemRequest{
		OrganizationID: "org_1",
		ItemID:         3,
		Status:         &status,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !captured.Status.Valid || captured.Status.String != enum.ItemStatusServed {
		t.Errorf("status param: got %+v", captured.Status)
	}
}
