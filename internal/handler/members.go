package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mejakita/api/internal/database"
	"github.com/mejakita/api/internal/enum"
	"github.com/mejakita/api/internal/middleware"
	"github.com/mejakita/api/internal/service"
)

// Invitations expire a week after they are issued.
const invitationTTL = 7 * 24 * time.Hour

// MemberStore defines the database methods needed by member and
// invitation handlers. Satisfied by *database.Queries.
type MemberStore interface {
	ListMembersByOrganization(ctx context.Context, organizationID string) ([]database.ListMembersByOrganizationRow, error)
	DeleteMember(ctx context.Context, arg database.DeleteMemberParams) (string, error)
	GetUser(ctx context.Context, id string) (database.User, error)
	CreateInvitation(ctx context.Context, arg database.CreateInvitationParams) (database.Invitation, error)
	GetInvitation(ctx context.Context, id uuid.UUID) (database.Invitation, error)
	ListPendingInvitationsByEmail(ctx context.Context, email string) ([]database.ListPendingInvitationsByEmailRow, error)
	UpdateInvitationStatus(ctx context.Context, arg database.UpdateInvitationStatusParams) (database.Invitation, error)
	CreateMember(ctx context.Context, arg database.CreateMemberParams) (database.Member, error)
	ListDefaultPermissionGroups(ctx context.Context, organizationID string) ([]database.PermissionGroup, error)
	AddMemberToPermissionGroup(ctx context.Context, arg database.AddMemberToPermissionGroupParams) (database.MemberPermissionGroup, error)
	ListPermissionGroupsByOrganization(ctx context.Context, organizationID string) ([]database.PermissionGroup, error)
	CreatePermissionGroup(ctx context.Context, arg database.CreatePermissionGroupParams) (database.PermissionGroup, error)
	DeletePermissionGroup(ctx context.Context, arg database.DeletePermissionGroupParams) (int64, error)
}

// NewMemberStore creates a MemberStore from a DBTX.
type NewMemberStore func(db database.DBTX) MemberStore

// MemberHandler handles members, invitations and permission groups.
// Accepting an invitation writes several rows, so the handler owns a
// transaction for that path.
type MemberHandler struct {
	pool     service.TxBeginner
	newStore NewMemberStore
	store    MemberStore
}

func NewMemberHandler(pool service.TxBeginner, newStore NewMemberStore, store MemberStore) *MemberHandler {
	return &MemberHandler{pool: pool, newStore: newStore, store: store}
}

// RegisterOrganizationRoutes registers the organization-scoped routes;
// mount under /organizations/{oid} behind RequireOrganization.
func (h *MemberHandler) RegisterOrganizationRoutes(r chi.Router) {
	r.Get("/members", h.ListMembers)
	r.Delete("/members/{id}", h.DeleteMember)
	r.Post("/invitations", h.CreateInvitation)
	r.Get("/permission-groups", h.ListPermissionGroups)
	r.Post("/permission-groups", h.CreatePermissionGroup)
	r.Delete("/permission-groups/{id}", h.DeletePermissionGroup)
}

// RegisterUserRoutes registers the caller-scoped invitation routes;
// mount inside the authenticated group.
func (h *MemberHandler) RegisterUserRoutes(r chi.Router) {
	r.Get("/invitations", h.ListMyInvitations)
	r.Post("/invitations/{id}/accept", h.AcceptInvitation)
	r.Post("/invitations/{id}/decline", h.DeclineInvitation)
}

// --- Request / Response types ---

type memberResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type createInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type invitationResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type pendingInvitationResponse struct {
	invitationResponse
	OrganizationName string `json:"organization_name"`
	InviterName      string `json:"inviter_name"`
}

type createPermissionGroupRequest struct {
	Name      string `json:"name"`
	IsAdmin   bool   `json:"is_admin"`
	IsDefault bool   `json:"is_default"`
}

type permissionGroupResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"is_admin"`
	IsDefault bool   `json:"is_default"`
}

// --- Member handlers ---

func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")

	members, err := h.store.ListMembersByOrganization(r.Context(), orgID)
	if err != nil {
		log.Printf("ERROR: list members: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]memberResponse, len(members))
	for i, m := range members {
		resp[i] = memberResponse{
			ID:        m.ID,
			UserID:    m.UserID,
			Name:      m.UserName,
			Email:     m.UserEmail,
			Role:      m.Role,
			CreatedAt: m.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")
	memberID := chi.URLParam(r, "id")

	if _, err := h.store.DeleteMember(r.Context(), database.DeleteMemberParams{
		ID:             memberID,
		OrganizationID: orgID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
			return
		}
		log.Printf("ERROR: delete member: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Invitation handlers ---

// CreateInvitation records an invitation for an email address. Nothing
// is sent; the invitee sees it on their pending list after signing in.
func (h *MemberHandler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	orgID := chi.URLParam(r, "oid")

	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}
	role := req.Role
	if role == "" {
		role = enum.MemberRoleAdmin
	}

	inv, err := h.store.CreateInvitation(r.Context(), database.CreateInvitationParams{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          req.Email,
		Role:           role,
		Status:         enum.InvitationStatusPending,
		ExpiresAt:      time.Now().Add(invitationTTL),
		InviterID:      claims.UserID,
	})
	if err != nil {
		log.Printf("ERROR: create invitation: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, invitationResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		Role:      inv.Role,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	})
}

// ListMyInvitations returns pending invitations addressed to the
// caller's email.
func (h *MemberHandler) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	user, err := h.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: get user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	invitations, err := h.store.ListPendingInvitationsByEmail(r.Context(), user.Email)
	if err != nil {
		log.Printf("ERROR: list invitations: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]pendingInvitationResponse, len(invitations))
	for i, inv := range invitations {
		resp[i] = pendingInvitationResponse{
			invitationResponse: invitationResponse{
				ID:        inv.ID,
				Email:     inv.Email,
				Role:      inv.Role,
				Status:    inv.Status,
				ExpiresAt: inv.ExpiresAt,
				CreatedAt: inv.CreatedAt,
			},
			OrganizationName: inv.OrganizationName,
			InviterName:      inv.InviterName,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// gateInvitation loads an invitation and checks that the caller may
// respond to it: it must be pending, unexpired, and addressed to the
// caller's email.
func (h *MemberHandler) gateInvitation(w http.ResponseWriter, r *http.Request) (database.Invitation, string, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return database.Invitation{}, "", false
	}

	invID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid invitation ID"})
		return database.Invitation{}, "", false
	}

	inv, err := h.store.GetInvitation(r.Context(), invID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "invitation not found"})
			return database.Invitation{}, "", false
		}
		log.Printf("ERROR: get invitation: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.Invitation{}, "", false
	}

	user, err := h.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: get user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.Invitation{}, "", false
	}
	if user.Email != inv.Email {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invitation addressed to another user"})
		return database.Invitation{}, "", false
	}

	if inv.Status != enum.InvitationStatusPending {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invitation is no longer pending"})
		return database.Invitation{}, "", false
	}
	if time.Now().After(inv.ExpiresAt) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invitation expired"})
		return database.Invitation{}, "", false
	}

	return inv, claims.UserID, true
}

// AcceptInvitation turns a pending invitation into a membership and
// attaches the organization's default permission groups.
func (h *MemberHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	inv, userID, ok := h.gateInvitation(w, r)
	if !ok {
		return
	}

	memberID, err := gonanoid.New()
	if err != nil {
		log.Printf("ERROR: generate member id: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: begin tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context()) //nolint:errcheck

	store := h.newStore(tx)

	if _, err := store.UpdateInvitationStatus(r.Context(), database.UpdateInvitationStatusParams{
		ID:     inv.ID,
		Status: enum.InvitationStatusAccepted,
	}); err != nil {
		log.Printf("ERROR: accept invitation: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	member, err := store.CreateMember(r.Context(), database.CreateMemberParams{
		ID:             memberID,
		OrganizationID: inv.OrganizationID,
		UserID:         userID,
		Role:           inv.Role,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "already a member of this organization"})
			return
		}
		log.Printf("ERROR: create member: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	groups, err := store.ListDefaultPermissionGroups(r.Context(), inv.OrganizationID)
	if err != nil {
		log.Printf("ERROR: list default groups: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	for _, g := range groups {
		if _, err := store.AddMemberToPermissionGroup(r.Context(), database.AddMemberToPermissionGroupParams{
			MemberID:          member.ID,
			PermissionGroupID: g.ID,
		}); err != nil {
			log.Printf("ERROR: attach member to group: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"member_id":       member.ID,
		"organization_id": member.OrganizationID,
		"role":            member.Role,
	})
}

// DeclineInvitation marks a pending invitation declined.
func (h *MemberHandler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	inv, _, ok := h.gateInvitation(w, r)
	if !ok {
		return
	}

	if _, err := h.store.UpdateInvitationStatus(r.Context(), database.UpdateInvitationStatusParams{
		ID:     inv.ID,
		Status: enum.InvitationStatusDeclined,
	}); err != nil {
		log.Printf("ERROR: decline invitation: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Permission group handlers ---

func (h *MemberHandler) ListPermissionGroups(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")

	groups, err := h.store.ListPermissionGroupsByOrganization(r.Context(), orgID)
	if err != nil {
		log.Printf("ERROR: list permission groups: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]permissionGroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = permissionGroupResponse{ID: g.ID, Name: g.Name, IsAdmin: g.IsAdmin, IsDefault: g.IsDefault}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MemberHandler) CreatePermissionGroup(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")

	var req createPermissionGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	group, err := h.store.CreatePermissionGroup(r.Context(), database.CreatePermissionGroupParams{
		Name:           req.Name,
		IsAdmin:        req.IsAdmin,
		IsDefault:      req.IsDefault,
		OrganizationID: orgID,
	})
	if err != nil {
		log.Printf("ERROR: create permission group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, permissionGroupResponse{
		ID: group.ID, Name: group.Name, IsAdmin: group.IsAdmin, IsDefault: group.IsDefault,
	})
}

func (h *MemberHandler) DeletePermissionGroup(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "oid")

	groupID, ok := parseInt64Param(w, r, "id", "permission group")
	if !ok {
		return
	}

	if _, err := h.store.DeletePermissionGroup(r.Context(), database.DeletePermissionGroupParams{
		ID:             groupID,
		OrganizationID: orgID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "permission group not found"})
			return
		}
		log.Printf("ERROR: delete permission group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
