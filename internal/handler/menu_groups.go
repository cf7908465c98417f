package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/mejakita/api/internal/database"
)

// MenuGroupStore defines the database methods needed by menu group
// handlers. Satisfied by *database.Queries.
type MenuGroupStore interface {
	CreateMenuGroup(ctx context.Context, arg database.CreateMenuGroupParams) (database.MenuGroup, error)
	ListMenuGroupsByOrganization(ctx context.Context, organizationID string) ([]database.MenuGroup, error)
	UpdateMenuGroup(ctx context.Context, arg database.UpdateMenuGroupParams) (database.MenuGroup, error)
	DeleteMenuGroup(ctx context.Context, arg database.DeleteMenuGroupParams) (int64, error)
}

// MenuGroupHandler handles menu group CRUD endpoints.
type MenuGroupHandler struct {
	store MenuGroupStore
}

func NewMenuGroupHandler(store MenuGroupStore) *MenuGroupHandler {
	return &MenuGroupHandler{store: store}
}

// RegisterRoutes registers menu group endpoints; mount under
// /organizations/{oid}/menu-groups behind RequireOrganization.
func (h *MenuGroupHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type menuGroupRequest struct {
	Name string `json:"name"`
}

type menuGroupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *MenuGroupHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")

	groups, err := h.store.ListMenuGroupsByOrganization(r.Context(), orgID)
	if err != nil {
		log.Printf("ERROR: list menu groups: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuGroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = menuGroupResponse{ID: g.ID, Name: g.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MenuGroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")

	var req menuGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	group, err := h.store.CreateMenuGroup(r.Context(), database.CreateMenuGroupParams{
		Name:           req.Name,
		OrganizationID: orgID,
	})
	if err != nil {
		log.Printf("ERROR: create menu group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, menuGroupResponse{ID: group.ID, Name: group.Name})
}

func (h *MenuGroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	groupID, ok := parseInt64Param(w, r, "id", "menu group")
	if !ok {
		return
	}

	var req menuGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	group, err := h.store.UpdateMenuGroup(r.Context(), database.UpdateMenuGroupParams{
		ID:             groupID,
		OrganizationID: orgID,
		Name:           req.Name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu group not found"})
			return
		}
		log.Printf("ERROR: update menu group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, menuGroupResponse{ID: group.ID, Name: group.Name})
}

func (h *MenuGroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	groupID, ok := parseInt64Param(w, r, "id", "menu group")
	if !ok {
		return
	}

	if _, err := h.store.DeleteMenuGroup(r.Context(), database.DeleteMenuGroupParams{
		ID:             groupID,
		OrganizationID: orgID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu group not found"})
			return
		}
		log.Printf("ERROR: delete menu group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
