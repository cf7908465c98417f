package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mejakita/api/internal/database"
)

// StoreStore defines the database methods needed by store handlers.
// Satisfied by *database.Queries.
type StoreStore interface {
	CreateStore(ctx context.Context, arg database.CreateStoreParams) (database.Store, error)
	ListStoresByOrganization(ctx context.Context, organizationID string) ([]database.Store, error)
	GetStore(ctx context.Context, arg database.GetStoreParams) (database.Store, error)
	DeleteStore(ctx context.Context, arg database.DeleteStoreParams) (string, error)
	SetStoreOpen(ctx context.Context, arg database.SetStoreOpenParams) (database.Store, error)
	AttachMenuToStore(ctx context.Context, arg database.AttachMenuToStoreParams) (database.StoreMenu, error)
	DetachMenuFromStore(ctx context.Context, arg database.DetachMenuFromStoreParams) (int64, error)
	ListStoreMenus(ctx context.Context, storeID string) ([]database.ListStoreMenusRow, error)
	GetMenuWithOrganization(ctx context.Context, id int64) (database.GetMenuWithOrganizationRow, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (database.Organization, error)
	GetStoreBySlug(ctx context.Context, arg database.GetStoreBySlugParams) (database.Store, error)
}

// StoreHandler handles store directory endpoints.
type StoreHandler struct {
	store StoreStore
}

func NewStoreHandler(store StoreStore) *StoreHandler {
	return &StoreHandler{store: store}
}

// RegisterRoutes registers store endpoints; mount under
// /organizations/{oid}/stores behind RequireOrganization.
func (h *StoreHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/open", h.SetOpen)
	r.Put("/{id}/menus/{menuID}", h.AttachMenu)
	r.Delete("/{id}/menus/{menuID}", h.DetachMenu)
}

// RegisterPublicRoutes registers the QR-page menu endpoint.
func (h *StoreHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/public/{orgSlug}/{storeSlug}/menu", h.PublicMenu)
}

// --- Request / Response types ---

type createStoreRequest struct {
	Name string `json:"name"`
}

type setStoreOpenRequest struct {
	IsOpen bool `json:"is_open"`
}

type storeResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	IsOpen bool   `json:"is_open"`
}

// soldMenuResponse is the customer-facing view of a sold item; cost is
// never serialized here.
type soldMenuResponse struct {
	MenuID        int64   `json:"menu_id"`
	MenuGroupID   int64   `json:"menu_group_id"`
	MenuGroupName string  `json:"menu_group_name"`
	MenuDetailsID int64   `json:"menu_details_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	ImageUrl      *string `json:"image_url"`
	Sale          string  `json:"sale"`
}

type storeWithMenusResponse struct {
	storeResponse
	Menus []soldMenuResponse `json:"menus"`
}

type publicMenuResponse struct {
	StoreName string             `json:"store_name"`
	IsOpen    bool               `json:"is_open"`
	Menus     []soldMenuResponse `json:"menus"`
}

func toStoreResponse(s database.Store) storeResponse {
	return storeResponse{ID: s.ID, Name: s.Name, Slug: s.Slug, IsOpen: s.IsOpen}
}

func toSoldMenuResponses(rows []database.ListStoreMenusRow) []soldMenuResponse {
	menus := make([]soldMenuResponse, len(rows))
	for i, m := range rows {
		resp := soldMenuResponse{
			MenuID:        m.MenuID,
			MenuGroupID:   m.MenuGroupID,
			MenuGroupName: m.MenuGroupName,
			MenuDetailsID: m.MenuDetailsID,
			Name:          m.Name,
			Sale:          numericString(m.Sale),
		}
		if m.Description.Valid {
			resp.Description = &m.Description.String
		}
		if m.ImageUrl.Valid {
			resp.ImageUrl = &m.ImageUrl.String
		}
		menus[i] = resp
	}
	return menus
}

// --- Handlers ---

// List returns the organization's stores; with ?with_menus=true each
// store carries the menus it sells.
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")

	stores, err := h.store.ListStoresByOrganization(r.Context(), orgID)
	if err != nil {
		log.Printf("ERROR: list stores: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if r.URL.Query().Get("with_menus") != "true" {
		resp := make([]storeResponse, len(stores))
		for i, s := range stores {
			resp[i] = toStoreResponse(s)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp := make([]storeWithMenusResponse, len(stores))
	for i, s := range stores {
		rows, err := h.store.ListStoreMenus(r.Context(), s.ID)
		if err != nil {
			log.Printf("ERROR: list store menus: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp[i] = storeWithMenusResponse{
			storeResponse: toStoreResponse(s),
			Menus:         toSoldMenuResponses(rows),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a store; the slug is derived from the name and must be
// unique within the organization.
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")

	var req createStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	slug := slugify(req.Name)
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name does not produce a valid slug"})
		return
	}

	id, err := gonanoid.New()
	if err != nil {
		log.Printf("ERROR: generate store id: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	store, err := h.store.CreateStore(r.Context(), database.CreateStoreParams{
		ID:             id,
		Name:           req.Name,
		Slug:           slug,
		OrganizationID: orgID,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "store slug already taken"})
			return
		}
		log.Printf("ERROR: create store: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toStoreResponse(store))
}

func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	storeID := chi.URLParam(r, "id")

	if _, err := h.store.DeleteStore(r.Context(), database.DeleteStoreParams{
		ID:             storeID,
		OrganizationID: orgID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "store not found"})
			return
		}
		log.Printf("ERROR: delete store: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetOpen flips the store's open flag.
func (h *StoreHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	storeID := chi.URLParam(r, "id")

	var req setStoreOpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	store, err := h.store.SetStoreOpen(r.Context(), database.SetStoreOpenParams{
		ID:             storeID,
		OrganizationID: orgID,
		IsOpen:         req.IsOpen,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "store not found"})
			return
		}
		log.Printf("ERROR: set store open: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStoreResponse(store))
}

// AttachMenu puts a menu on a store's sold list. Both sides must
// belong to the organization.
func (h *StoreHandler) AttachMenu(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	storeID := chi.URLParam(r, "id")
	menuID, ok := parseInt64Param(w, r, "menuID", "menu")
	if !ok {
		return
	}

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

	menu, err := h.store.GetMenuWithOrganization(r.Context(), menuID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu not found"})
			return
		}
		log.Printf("ERROR: get menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if menu.OrganizationID != orgID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "menu does not belong to this organization"})
		return
	}

	if _, err := h.store.AttachMenuToStore(r.Context(), database.AttachMenuToStoreParams{
		StoreID: storeID,
		MenuID:  menuID,
	}); err != nil {
		if isUniqueViolation(err) {
			// Already attached; treat as idempotent.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		log.Printf("ERROR: attach menu to store: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) DetachMenu(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	storeID := chi.URLParam(r, "id")
	menuID, ok := parseInt64Param(w, r, "menuID", "menu")
	if !ok {
		return
	}

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

	if _, err := h.store.DetachMenuFromStore(r.Context(), database.DetachMenuFromStoreParams{
		StoreID: storeID,
		MenuID:  menuID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu not attached to store"})
			return
		}
		log.Printf("ERROR: detach menu from store: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PublicMenu serves the QR landing page data. Unknown slugs fail soft
// with an empty menu so the page renders rather than erroring.
func (h *StoreHandler) PublicMenu(w http.ResponseWriter, r *http.Request) {
	orgSlug := chi.URLParam(r, "orgSlug")
	storeSlug := chi.URLParam(r, "storeSlug")

	empty := publicMenuResponse{Menus: []soldMenuResponse{}}

	org, err := h.store.GetOrganizationBySlug(r.Context(), orgSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusOK, empty)
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
			writeJSON(w, http.StatusOK, empty)
			return
		}
		log.Printf("ERROR: get store by slug: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	rows, err := h.store.ListStoreMenus(r.Context(), store.ID)
	if err != nil {
		log.Printf("ERROR: list store menus: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, publicMenuResponse{
		StoreName: store.Name,
		IsOpen:    store.IsOpen,
		Menus:     toSoldMenuResponses(rows),
	})
}
