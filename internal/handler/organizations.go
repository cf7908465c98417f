package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mejakita/api/internal/auth"
	"github.com/mejakita/api/internal/database"
	"github.com/mejakita/api/internal/enum"
	"github.com/mejakita/api/internal/middleware"
	"github.com/mejakita/api/internal/service"
)

// OrganizationStore defines the database methods needed by
// organization handlers. Satisfied by *database.Queries.
type OrganizationStore interface {
	CreateOrganization(ctx context.Context, arg database.CreateOrganizationParams) (database.Organization, error)
	ListOrganizationsByUser(ctx context.Context, userID string) ([]database.Organization, error)
	GetMemberByUser(ctx context.Context, arg database.GetMemberByUserParams) (database.Member, error)
	GetUser(ctx context.Context, id string) (database.User, error)
	CreateMember(ctx context.Context, arg database.CreateMemberParams) (database.Member, error)
	CreatePermissionGroup(ctx context.Context, arg database.CreatePermissionGroupParams) (database.PermissionGroup, error)
	AddMemberToPermissionGroup(ctx context.Context, arg database.AddMemberToPermissionGroupParams) (database.MemberPermissionGroup, error)
}

// NewOrganizationStore creates an OrganizationStore from a DBTX.
type NewOrganizationStore func(db database.DBTX) OrganizationStore

// OrganizationHandler handles organization lifecycle endpoints.
// Creation spans several tables, so the handler owns a transaction.
type OrganizationHandler struct {
	pool      service.TxBeginner
	newStore  NewOrganizationStore
	store     OrganizationStore
	jwtSecret string
}

func NewOrganizationHandler(pool service.TxBeginner, newStore NewOrganizationStore, store OrganizationStore, jwtSecret string) *OrganizationHandler {
	return &OrganizationHandler{pool: pool, newStore: newStore, store: store, jwtSecret: jwtSecret}
}

// RegisterRoutes registers organization endpoints; mount inside the
// authenticated group.
func (h *OrganizationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/organizations", h.List)
	r.Post("/organizations", h.Create)
	r.Post("/organizations/{oid}/activate", h.Activate)
}

// --- Request / Response types ---

type createOrganizationRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type organizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Logo      *string   `json:"logo"`
	CreatedAt time.Time `json:"created_at"`
}

type createOrganizationResponse struct {
	Organization organizationResponse `json:"organization"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

func toOrganizationResponse(o database.Organization) organizationResponse {
	resp := organizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		Slug:      o.Slug,
		CreatedAt: o.CreatedAt,
	}
	if o.Logo.Valid {
		resp.Logo = &o.Logo.String
	}
	return resp
}

// --- Handlers ---

// List returns the organizations the caller belongs to.
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orgs, err := h.store.ListOrganizationsByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list organizations: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]organizationResponse, len(orgs))
	for i, o := range orgs {
		resp[i] = toOrganizationResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create sets up a new organization: the organization row, the caller
// as owner member, an admin permission group holding the owner, and a
// default group for future members. One transaction; fresh tokens with
// the new organization active come back with the response.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name does not produce a valid slug"})
		return
	}

	orgID, err := gonanoid.New()
	if err != nil {
		log.Printf("ERROR: generate organization id: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
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

	org, err := store.CreateOrganization(r.Context(), database.CreateOrganizationParams{
		ID:   orgID,
		Name: req.Name,
		Slug: slug,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "organization slug already taken"})
			return
		}
		log.Printf("ERROR: create organization: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	member, err := store.CreateMember(r.Context(), database.CreateMemberParams{
		ID:             memberID,
		OrganizationID: org.ID,
		UserID:         claims.UserID,
		Role:           enum.MemberRoleOwner,
	})
	if err != nil {
		log.Printf("ERROR: create owner member: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	adminGroup, err := store.CreatePermissionGroup(r.Context(), database.CreatePermissionGroupParams{
		Name:           "Admin",
		IsAdmin:        true,
		OrganizationID: org.ID,
	})
	if err != nil {
		log.Printf("ERROR: create admin group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if _, err := store.CreatePermissionGroup(r.Context(), database.CreatePermissionGroupParams{
		Name:           "Member",
		IsDefault:      true,
		OrganizationID: org.ID,
	}); err != nil {
		log.Printf("ERROR: create default group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if _, err := store.AddMemberToPermissionGroup(r.Context(), database.AddMemberToPermissionGroupParams{
		MemberID:          member.ID,
		PermissionGroupID: adminGroup.ID,
	}); err != nil {
		log.Printf("ERROR: attach owner to admin group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	accessToken, refreshToken, ok := h.issueTokens(w, claims.UserID, org.ID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusCreated, createOrganizationResponse{
		Organization: toOrganizationResponse(org),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Activate switches the caller's active organization after a
// membership check, reissuing the token pair.
func (h *OrganizationHandler) Activate(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orgID := chi.URLParam(r, "oid")
	if orgID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing organization ID"})
		return
	}

	if _, err := h.store.GetMemberByUser(r.Context(), database.GetMemberByUserParams{
		OrganizationID: orgID,
		UserID:         claims.UserID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "organization does not belong to user"})
			return
		}
		log.Printf("ERROR: get member: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	accessToken, refreshToken, ok := h.issueTokens(w, claims.UserID, orgID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *OrganizationHandler) issueTokens(w http.ResponseWriter, userID, activeOrganizationID string) (string, string, bool) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, userID, activeOrganizationID)
	if err != nil {
		log.Printf("ERROR: generate access token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return "", "", false
	}
	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, userID)
	if err != nil {
		log.Printf("ERROR: generate refresh token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return "", "", false
	}
	return accessToken, refreshToken, true
}

// slugify turns "Warung Ijo  2" into "warung-ijo-2".
func slugify(name string) string {
	var b strings.Builder
	prevHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
