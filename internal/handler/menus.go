package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mejakita/api/internal/database"
	"github.com/mejakita/api/internal/service"
	"github.com/shopspring/decimal"
)

// MenuService is the slice of the menu service the handlers call.
type MenuService interface {
	AddMenu(ctx context.Context, req service.AddMenuRequest) (*service.AddMenuResult, error)
	EditMenu(ctx context.Context, req service.EditMenuRequest) (*service.AddMenuResult, error)
	DeleteMenu(ctx context.Context, organizationID string, menuID int64) (*service.DeleteMenuResult, error)
}

// MenuReadStore serves the catalog read path. Satisfied by
// *database.Queries.
type MenuReadStore interface {
	ListMenuGroupsByOrganization(ctx context.Context, organizationID string) ([]database.MenuGroup, error)
	ListMenusByGroup(ctx context.Context, menuGroupID int64) ([]database.ListMenusByGroupRow, error)
}

// MenuHandler handles the menu catalog endpoints.
type MenuHandler struct {
	svc   MenuService
	store MenuReadStore
}

func NewMenuHandler(svc MenuService, store MenuReadStore) *MenuHandler {
	return &MenuHandler{svc: svc, store: store}
}

// RegisterRoutes registers menu endpoints; mount under
// /organizations/{oid}/menus behind RequireOrganization.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/", h.Add)
	r.Put("/{id}", h.Edit)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type imageUploadRequest struct {
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
}

type addMenuRequest struct {
	MenuGroupID int64               `json:"menu_group_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Image       *imageUploadRequest `json:"image"`
	Sale        string              `json:"sale"`
	Cost        string              `json:"cost"`
}

type editMenuRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Image       *imageUploadRequest `json:"image"`
	Sale        string              `json:"sale"`
	Cost        string              `json:"cost"`
}

type menuDetailsResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ImageUrl    *string `json:"image_url"`
	Sale        string  `json:"sale"`
	Cost        string  `json:"cost"`
}

type menuResponse struct {
	ID          int64               `json:"id"`
	MenuGroupID int64               `json:"menu_group_id"`
	Details     menuDetailsResponse `json:"details"`
	UploadURL   *string             `json:"upload_url"`
}

type menuCatalogEntry struct {
	ID      int64               `json:"id"`
	Details menuDetailsResponse `json:"details"`
}

type menuCatalogGroup struct {
	ID    int64              `json:"id"`
	Name  string             `json:"name"`
	Menus []menuCatalogEntry `json:"menus"`
}

func toMenuDetailsResponse(d database.MenuDetails) menuDetailsResponse {
	resp := menuDetailsResponse{
		ID:   d.ID,
		Name: d.Name,
		Sale: numericString(d.Sale),
		Cost: numericString(d.Cost),
	}
	if d.Description.Valid {
		resp.Description = &d.Description.String
	}
	if d.ImageUrl.Valid {
		resp.ImageUrl = &d.ImageUrl.String
	}
	return resp
}

func toMenuResponse(res *service.AddMenuResult) menuResponse {
	resp := menuResponse{
		ID:          res.Menu.ID,
		MenuGroupID: res.Menu.MenuGroupID,
		Details:     toMenuDetailsResponse(res.Details),
	}
	if res.UploadURL != "" {
		resp.UploadURL = &res.UploadURL
	}
	return resp
}

// --- Handlers ---

// Get returns the organization's whole catalog: every menu group with
// its menus and their current details.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")

	groups, err := h.store.ListMenuGroupsByOrganization(r.Context(), orgID)
	if err != nil {
		log.Printf("ERROR: list menu groups: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuCatalogGroup, len(groups))
	for i, g := range groups {
		menus, err := h.store.ListMenusByGroup(r.Context(), g.ID)
		if err != nil {
			log.Printf("ERROR: list menus for group %d: %v", g.ID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}

		entries := make([]menuCatalogEntry, len(menus))
		for j, m := range menus {
			details := menuDetailsResponse{
				ID:   m.MenuDetailsID,
				Name: m.Name,
				Sale: numericString(m.Sale),
				Cost: numericString(m.Cost),
			}
			if m.Description.Valid {
				details.Description = &m.Description.String
			}
			if m.ImageUrl.Valid {
				details.ImageUrl = &m.ImageUrl.String
			}
			entries[j] = menuCatalogEntry{ID: m.MenuID, Details: details}
		}
		resp[i] = menuCatalogGroup{ID: g.ID, Name: g.Name, Menus: entries}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Add creates a menu in a group the organization owns.
func (h *MenuHandler) Add(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")

	var req addMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.MenuGroupID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and menu_group_id are required"})
		return
	}

	sale, cost, ok := parsePrices(w, req.Sale, req.Cost)
	if !ok {
		return
	}

	result, err := h.svc.AddMenu(r.Context(), service.AddMenuRequest{
		OrganizationID: orgID,
		MenuGroupID:    req.MenuGroupID,
		Name:           req.Name,
		Description:    req.Description,
		Image:          toServiceImage(req.Image),
		Sale:           sale,
		Cost:           cost,
	})
	if err != nil {
		writeMenuServiceError(w, err, "add menu")
		return
	}

	writeJSON(w, http.StatusCreated, toMenuResponse(result))
}

// Edit replaces a menu's details with a fresh snapshot.
func (h *MenuHandler) Edit(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	menuID, ok := parseInt64Param(w, r, "id", "menu")
	if !ok {
		return
	}

	var req editMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	sale, cost, ok := parsePrices(w, req.Sale, req.Cost)
	if !ok {
		return
	}

	result, err := h.svc.EditMenu(r.Context(), service.EditMenuRequest{
		OrganizationID: orgID,
		MenuID:         menuID,
		Name:           req.Name,
		Description:    req.Description,
		Image:          toServiceImage(req.Image),
		Sale:           sale,
		Cost:           cost,
	})
	if err != nil {
		writeMenuServiceError(w, err, "edit menu")
		return
	}

	writeJSON(w, http.StatusOK, toMenuResponse(result))
}

// Delete removes a menu, keeping its details row while order history
// references it.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	menuID, ok := parseInt64Param(w, r, "id", "menu")
	if !ok {
		return
	}

	if _, err := h.svc.DeleteMenu(r.Context(), orgID, menuID); err != nil {
		writeMenuServiceError(w, err, "delete menu")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func toServiceImage(img *imageUploadRequest) *service.ImageUpload {
	if img == nil {
		return nil
	}
	return &service.ImageUpload{FileSize: img.FileSize, FileType: img.FileType}
}

func writeMenuServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrImageTooLarge),
		errors.Is(err, service.ErrImageType),
		errors.Is(err, service.ErrNegativePrice):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrMenuGroupNotFound),
		errors.Is(err, service.ErrMenuNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotOwned):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func parsePrices(w http.ResponseWriter, saleStr, costStr string) (decimal.Decimal, decimal.Decimal, bool) {
	sale, err := decimal.NewFromString(saleStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sale price"})
		return decimal.Zero, decimal.Zero, false
	}
	cost, err := decimal.NewFromString(costStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cost price"})
		return decimal.Zero, decimal.Zero, false
	}
	return sale, cost, true
}

func parseInt64Param(w http.ResponseWriter, r *http.Request, name, what string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + what + " ID"})
		return 0, false
	}
	return id, true
}

// numericString renders a pgtype.Numeric as a fixed-2 decimal string.
func numericString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
