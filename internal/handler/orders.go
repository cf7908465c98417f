package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/mejakita/api/internal/database"
	"github.com/mejakita/api/internal/service"
	"github.com/mejakita/api/internal/ws"
	"github.com/shopspring/decimal"
)

// OrderService is the slice of the order service the handlers call.
type OrderService interface {
	AddOrder(ctx context.Context, req service.AddOrderRequest) (*service.AddOrderResult, error)
	UpdateOrder(ctx context.Context, req service.UpdateOrderRequest) (*database.Order, error)
	UpdateOrderItem(ctx context.Context, req service.UpdateOrderItemRequest) (*service.UpdateOrderItemResult, error)
}

// OrderReadStore serves the order read paths. Satisfied by
// *database.Queries.
type OrderReadStore interface {
	GetOrganizationBySlug(ctx context.Context, slug string) (database.Organization, error)
	GetStoreBySlug(ctx context.Context, arg database.GetStoreBySlugParams) (database.Store, error)
	GetStore(ctx context.Context, arg database.GetStoreParams) (database.Store, error)
	GetOrder(ctx context.Context, id int64) (database.Order, error)
	ListOpenOrdersByTable(ctx context.Context, arg database.ListOpenOrdersByTableParams) ([]database.Order, error)
	ListOpenOrdersByStore(ctx context.Context, storeID string) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.ListOrderItemsByOrderRow, error)
}

// OrderHandler handles guest order intake and staff order management.
type OrderHandler struct {
	svc   OrderService
	store OrderReadStore
	hub   *ws.Hub
}

func NewOrderHandler(svc OrderService, store OrderReadStore, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterPublicRoutes registers the guest-facing endpoints hit from
// the QR table page.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/public/{orgSlug}/{storeSlug}/orders", h.AddOrder)
	r.Get("/public/{orgSlug}/{storeSlug}/tables/{table}/orders", h.GetTableOrders)
	r.Get("/public/orders/{id}", h.GetOrder)
}

// RegisterOrganizationRoutes registers staff endpoints; mount under
// /organizations/{oid} behind RequireOrganization. ListStoreOrders is
// registered separately inside the stores route group.
func (h *OrderHandler) RegisterOrganizationRoutes(r chi.Router) {
	r.Patch("/orders/{id}", h.UpdateOrder)
	r.Patch("/order-items/{id}", h.UpdateOrderItem)
}

// --- Request / Response types ---

type addOrderItemRequest struct {
	MenuDetailsID int64 `json:"menu_details_id"`
	Quantity      int32 `json:"quantity"`
}

type addOrderRequest struct {
	TableName string                `json:"table_name"`
	Items     []addOrderItemRequest `json:"items"`
}

type updateOrderRequest struct {
	ItemStatus     string  `json:"item_status"`
	CompletedValue *string `json:"completed_value"`
	Remarks        *string `json:"remarks"`
}

type updateOrderItemRequest struct {
	Quantity *int32  `json:"quantity"`
	Status   *string `json:"status"`
}

type orderItemResponse struct {
	ID            int64   `json:"id"`
	MenuDetailsID int64   `json:"menu_details_id"`
	Quantity      int32   `json:"quantity"`
	Status        string  `json:"status"`
	MenuName      *string `json:"menu_name,omitempty"`
	Sale          *string `json:"sale,omitempty"`
}

type orderResponse struct {
	ID             int64               `json:"id"`
	StoreID        string              `json:"store_id"`
	TableName      string              `json:"table_name"`
	CompletedAt    *time.Time          `json:"completed_at"`
	CompletedValue *string             `json:"completed_value"`
	Remarks        *string             `json:"remarks"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []orderItemResponse `json:"items"`
}

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:        o.ID,
		StoreID:   o.StoreID,
		TableName: o.TableName,
		CreatedAt: o.CreatedAt,
		Items:     []orderItemResponse{},
	}
	if o.CompletedAt.Valid {
		resp.CompletedAt = &o.CompletedAt.Time
	}
	if o.CompletedValue.Valid {
		v := numericString(o.CompletedValue)
		resp.CompletedValue = &v
	}
	if o.Remarks.Valid {
		resp.Remarks = &o.Remarks.String
	}
	return resp
}

func toOrderItemResponses(rows []database.ListOrderItemsByOrderRow) []orderItemResponse {
	items := make([]orderItemResponse, len(rows))
	for i, r := range rows {
		item := orderItemResponse{
			ID:            r.ID,
			MenuDetailsID: r.MenuDetailsID,
			Quantity:      r.Quantity,
			Status:        r.Status,
		}
		if r.MenuName.Valid {
			item.MenuName = &r.MenuName.String
		}
		if r.MenuSale.Valid {
			v := numericString(r.MenuSale)
			item.Sale = &v
		}
		items[i] = item
	}
	return items
}

// --- Handlers ---

// AddOrder takes a guest's batch of items from the QR table page and
// appends them to the table's open order. Kitchen screens watching the
// store's websocket room hear about it immediately.
func (h *OrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req addOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TableName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_name is required"})
		return
	}

	items := make([]service.AddOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.AddOrderItemRequest{MenuDetailsID: it.MenuDetailsID, Quantity: it.Quantity}
	}

	result, err := h.svc.AddOrder(r.Context(), service.AddOrderRequest{
		OrganizationSlug: chi.URLParam(r, "orgSlug"),
		StoreSlug:        chi.URLParam(r, "storeSlug"),
		TableName:        req.TableName,
		Items:            items,
	})
	if err != nil {
		writeOrderServiceError(w, err, "add order")
		return
	}

	resp := toOrderResponse(result.Order)
	for _, item := range result.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:            item.ID,
			MenuDetailsID: item.MenuDetailsID,
			Quantity:      item.Quantity,
			Status:        item.Status,
		})
	}

	h.broadcast(result.Order.StoreID, ws.EventOrderCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// GetTableOrders returns the open orders for a table so the guest can
// see what has already been sent to the kitchen.
func (h *OrderHandler) GetTableOrders(w http.ResponseWriter, r *http.Request) {
	orgSlug := chi.URLParam(r, "orgSlug")
	storeSlug := chi.URLParam(r, "storeSlug")
	table := chi.URLParam(r, "table")

	org, err := h.store.GetOrganizationBySlug(r.Context(), orgSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusOK, []orderResponse{})
			return
		}
		log.Printf("ERROR: get organization by slug: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	store, err := h.store.GetStoreBySlug(r.Context(), database.GetStoreBySlugParams{
		OrganizationID: org.ID,
		Slug:           storeSlug,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusOK, []orderResponse{})
			return
		}
		log.Printf("ERROR: get store by slug: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	orders, err := h.store.ListOpenOrdersByTable(r.Context(), database.ListOpenOrdersByTableParams{
		StoreID:   store.ID,
		TableName: table,
	})
	if err != nil {
		log.Printf("ERROR: list open orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, ok := h.ordersWithItems(w, r, orders)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOrder returns one order with its items; the order ID works as an
// opaque receipt handle for the guest.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseInt64Param(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order)
	resp.Items = toOrderItemResponses(items)
	writeJSON(w, http.StatusOK, resp)
}

// ListStoreOrders returns a store's open orders for the staff board.
func (h *OrderHandler) ListStoreOrders(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	storeID := chi.URLParam(r, "id")

	if _, err := h.store.GetStore(r.Context(), database.GetStoreParams{
		ID:             storeID,
		OrganizationID: orgID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "store not found"})
			return
		}
		log.Printf("ERROR: get store: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	orders, err := h.store.ListOpenOrdersByStore(r.Context(), storeID)
	if err != nil {
		log.Printf("ERROR: list open orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, ok := h.ordersWithItems(w, r, orders)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateOrder applies staff changes to an order: bulk item status,
// remarks, and settlement.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	orderID, ok := parseInt64Param(w, r, "id", "order")
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var completedValue *decimal.Decimal
	if req.CompletedValue != nil {
		v, err := decimal.NewFromString(*req.CompletedValue)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid completed_value"})
			return
		}
		completedValue = &v
	}

	order, err := h.svc.UpdateOrder(r.Context(), service.UpdateOrderRequest{
		OrganizationID: orgID,
		OrderID:        orderID,
		ItemStatus:     req.ItemStatus,
		CompletedValue: completedValue,
		Remarks:        req.Remarks,
	})
	if err != nil {
		writeOrderServiceError(w, err, "update order")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(*order)
	resp.Items = toOrderItemResponses(items)

	h.broadcast(order.StoreID, ws.EventOrderUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

// UpdateOrderItem adjusts one item's quantity or advances its status.
func (h *OrderHandler) UpdateOrderItem(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	itemID, ok := parseInt64Param(w, r, "id", "order item")
	if !ok {
		return
	}

	var req updateOrderItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.UpdateOrderItem(r.Context(), service.UpdateOrderItemRequest{
		OrganizationID: orgID,
		ItemID:         itemID,
		Quantity:       req.Quantity,
		Status:         req.Status,
	})
	if err != nil {
		writeOrderServiceError(w, err, "update order item")
		return
	}

	resp := orderItemResponse{
		ID:            result.Item.ID,
		MenuDetailsID: result.Item.MenuDetailsID,
		Quantity:      result.Item.Quantity,
		Status:        result.Item.Status,
	}

	h.broadcast(result.StoreID, ws.EventOrderItemUpdated, struct {
		OrderID int64 `json:"order_id"`
		orderItemResponse
	}{OrderID: result.OrderID, orderItemResponse: resp})
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *OrderHandler) ordersWithItems(w http.ResponseWriter, r *http.Request, orders []database.Order) ([]orderResponse, bool) {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		items, err := h.store.ListOrderItemsByOrder(r.Context(), o.ID)
		if err != nil {
			log.Printf("ERROR: list order items: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return nil, false
		}
		resp[i] = toOrderResponse(o)
		resp[i].Items = toOrderItemResponses(items)
	}
	return resp, true
}

// broadcast publishes an event to the store's websocket room. Delivery
// is best effort; a marshal failure is logged and the HTTP response
// proceeds.
func (h *OrderHandler) broadcast(storeID, eventType string, payload any) {
	if h.hub == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.hub.BroadcastToStore(storeID, ws.Event{Type: eventType, Payload: raw})
}

func writeOrderServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNegativePrice):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrStoreNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrOrderItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotOwned):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
