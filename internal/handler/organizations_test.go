package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mejakita/api/internal/auth"
	"github.com/mejakita/api/internal/database"
	"github.com/mejakita/api/internal/handler"
	"github.com/mejakita/api/internal/middleware"
)

// --- Transaction mocks ---

// mockTx implements pgx.Tx with only the methods handlers touch.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error          { return m.commitErr }
func (m *mockTx) Rollback(ctx context.Context) error        { return nil }
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

type mockPool struct {
	beginErr error
}

func (m *mockPool) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return &mockTx{}, nil
}

// --- Mock store ---

type mockOrgStore struct {
	createOrganizationFn         func(ctx context.Context, arg database.CreateOrganizationParams) (database.Organization, error)
	listOrganizationsByUserFn    func(ctx context.Context, userID string) ([]database.Organization, error)
	getMemberByUserFn            func(ctx context.Context, arg database.GetMemberByUserParams) (database.Member, error)
	getUserFn                    func(ctx context.Context, id string) (database.User, error)
	createMemberFn               func(ctx context.Context, arg database.CreateMemberParams) (database.Member, error)
	createPermissionGroupFn      func(ctx context.Context, arg database.CreatePermissionGroupParams) (database.PermissionGroup, error)
	addMemberToPermissionGroupFn func(ctx context.Context, arg database.AddMemberToPermissionGroupParams) (database.MemberPermissionGroup, error)
}

func (m *mockOrgStore) CreateOrganization(ctx context.Context, arg database.CreateOrganizationParams) (database.Organization, error) {
	if m.createOrganizationFn != nil {
		return m.createOrganizationFn(ctx, arg)
	}
	return database.Organization{ID: arg.ID, Name: arg.Name, Slug: arg.Slug}, nil
}

func (m *mockOrgStore) ListOrganizationsByUser(ctx context.Context, userID string) ([]database.Organization, error) {
	if m.listOrganizationsByUserFn != nil {
		return m.listOrganizationsByUserFn(ctx, userID)
	}
	return []database.Organization{}, nil
}

func (m *mockOrgStore) GetMemberByUser(ctx context.Context, arg database.GetMemberByUserParams) (database.Member, error) {
	if m.getMemberByUserFn != nil {
		return m.getMemberByUserFn(ctx, arg)
	}
	return database.Member{}, pgx.ErrNoRows
}

func (m *mockOrgStore) GetUser(ctx context.Context, id string) (database.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, id)
	}
	return database.User{}, pgx.ErrNoRows
}

func (m *mockOrgStore) CreateMember(ctx context.Context, arg database.CreateMemberParams) (database.Member, error) {
	if m.createMemberFn != nil {
		return m.createMemberFn(ctx, arg)
	}
	return database.Member{ID: arg.ID, OrganizationID: arg.OrganizationID, UserID: arg.UserID, Role: arg.Role}, nil
}

func (m *mockOrgStore) CreatePermissionGroup(ctx context.Context, arg database.CreatePermissionGroupParams) (database.PermissionGroup, error) {
	if m.createPermissionGroupFn != nil {
		return m.createPermissionGroupFn(ctx, arg)
	}
	return database.PermissionGroup{ID: 1, Name: arg.Name, IsAdmin: arg.IsAdmin, IsDefault: arg.IsDefault, OrganizationID: arg.OrganizationID}, nil
}

func (m *mockOrgStore) AddMemberToPermissionGroup(ctx context.Context, arg database.AddMemberToPermissionGroupParams) (database.MemberPermissionGroup, error) {
	if m.addMemberToPermissionGroupFn != nil {
		return m.addMemberToPermissionGroupFn(ctx, arg)
	}
	return database.MemberPermissionGroup{ID: 1, MemberID: arg.MemberID, PermissionGroupID: arg.PermissionGroupID}, nil
}

// --- Helpers ---

func setupOrgRouter(store *mockOrgStore) chi.Router {
	h := handler.NewOrganizationHandler(
		&mockPool{},
		func(db database.DBTX) handler.OrganizationStore { return store },
		store,
		testSecret,
	)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testSecret))
	h.RegisterRoutes(r)
	return r
}

func doOrgRequest(t *testing.T, router http.Handler, method, path string, body interface{}, userID, activeOrgID string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, userID, activeOrgID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return doAuthedRequest(t, router, method, path, body, token)
}

// --- Create tests ---

func TestCreateOrganization_Success(t *testing.T) {
	var createdMember database.CreateMemberParams
	var groups []database.CreatePermissionGroupParams
	var attached []database.AddMemberToPermissionGroupParams

	store := &mockOrgStore{
		createMemberFn: func(_ context.Context, arg database.CreateMemberParams) (database.Member, error) {
			createdMember = arg
			return database.Member{ID: arg.ID, OrganizationID: arg.OrganizationID, UserID: arg.UserID, Role: arg.Role}, nil
		},
		createPermissionGroupFn: func(_ context.Context, arg database.CreatePermissionGroupParams) (database.PermissionGroup, error) {
			groups = append(groups, arg)
			return database.PermissionGroup{ID: int64(len(groups)), Name: arg.Name, IsAdmin: arg.IsAdmin, IsDefault: arg.IsDefault}, nil
		},
		addMemberToPermissionGroupFn: func(_ context.Context, arg database.AddMemberToPermissionGroupParams) (database.MemberPermissionGroup, error) {
			attached = append(attached, arg)
			return database.MemberPermissionGroup{}, nil
		},
	}
	r := setupOrgRouter(store)

	rr := doOrgRequest(t, r, "POST", "/organizations", map[string]string{
		"name": "Warung Ijo",
	}, "usr_1", "")

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	org, ok := resp["organization"].(map[string]interface{})
	if !ok {
		t.Fatal("expected organization object in response")
	}
	if org["slug"] != "warung-ijo" {
		t.Errorf("slug: got %v, want warung-ijo", org["slug"])
	}

	if createdMember.UserID != "usr_1" {
		t.Errorf("member user: got %q, want usr_1", createdMember.UserID)
	}
	if createdMember.Role != "owner" {
		t.Errorf("member role: got %q, want owner", createdMember.Role)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 permission groups, got %d", len(groups))
	}
	if !groups[0].IsAdmin || groups[0].Name != "Admin" {
		t.Errorf("first group should be the admin group, got %+v", groups[0])
	}
	if !groups[1].IsDefault || groups[1].Name != "Member" {
		t.Errorf("second group should be the default group, got %+v", groups[1])
	}
	if len(attached) != 1 || attached[0].MemberID != createdMember.ID {
		t.Errorf("owner should join the admin group, got %+v", attached)
	}

	// New tokens must activate the created organization.
	claims, err := auth.ValidateToken(testSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.ActiveOrganizationID != org["id"] {
		t.Errorf("active organization: got %q, want %v", claims.ActiveOrganizationID, org["id"])
	}
}

func TestCreateOrganization_DuplicateSlug(t *testing.T) {
	store := &mockOrgStore{
		createOrganizationFn: func(_ context.Context, _ database.CreateOrganizationParams) (database.Organization, error) {
			return database.Organization{}, &pgconn.PgError{Code: "23505"}
		},
	}
	r := setupOrgRouter(store)

	rr := doOrgRequest(t, r, "POST", "/organizations", map[string]string{
		"name": "Warung Ijo",
	}, "usr_1", "")

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestCreateOrganization_MissingName(t *testing.T) {
	r := setupOrgRouter(&mockOrgStore{})

	rr := doOrgRequest(t, r, "POST", "/organizations", map[string]string{}, "usr_1", "")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateOrganization_ExplicitSlugWins(t *testing.T) {
	var created database.CreateOrganizationParams
	store := &mockOrgStore{
		createOrganizationFn: func(_ context.Context, arg database.CreateOrganizationParams) (database.Organization, error) {
			created = arg
			return database.Organization{ID: arg.ID, Name: arg.Name, Slug: arg.Slug}, nil
		},
	}
	r := setupOrgRouter(store)

	rr := doOrgRequest(t, r, "POST", "/organizations", map[string]string{
		"name": "Warung Ijo",
		"slug": "ijo",
	}, "usr_1", "")

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if created.Slug != "ijo" {
		t.Errorf("slug: got %q, want ijo", created.Slug)
	}
}

func TestCreateOrganization_Unauthenticated(t *testing.T) {
	r := setupOrgRouter(&mockOrgStore{})

	rr := postJSON(t, r, "/organizations", map[string]string{"name": "Warung Ijo"})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// --- List tests ---

func TestListOrganizations_ReturnsUserOrganizations(t *testing.T) {
	store := &mockOrgStore{
		listOrganizationsByUserFn: func(_ context.Context, userID string) ([]database.Organization, error) {
			if userID != "usr_1" {
				t.Errorf("listed for user %q, want usr_1", userID)
			}
			return []database.Organization{
				{ID: "org_1", Name: "Warung Ijo", Slug: "warung-ijo"},
				{ID: "org_2", Name: "Warung Biru", Slug: "warung-biru"},
			}, nil
		},
	}
	r := setupOrgRouter(store)

	rr := doOrgRequest(t, r, "GET", "/organizations", nil, "usr_1", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeListResponse(t, rr)
	if len(resp) != 2 {
		t.Fatalf("expected 2 organizations, got %d", len(resp))
	}
	if resp[0]["slug"] != "warung-ijo" {
		t.Errorf("first slug: got %v, want warung-ijo", resp[0]["slug"])
	}
}

// --- Activate tests ---

func TestActivateOrganization_Member(t *testing.T) {
	store := &mockOrgStore{
		getMemberByUserFn: func(_ context.Context, arg database.GetMemberByUserParams) (database.Member, error) {
			if arg.OrganizationID == "org_1" && arg.UserID == "usr_1" {
				return database.Member{ID: "mbr_1", OrganizationID: "org_1", UserID: "usr_1", Role: "owner"}, nil
			}
			return database.Member{}, pgx.ErrNoRows
		},
	}
	r := setupOrgRouter(store)

	rr := doOrgRequest(t, r, "POST", "/organizations/org_1/activate", nil, "usr_1", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	claims, err := auth.ValidateToken(testSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.ActiveOrganizationID != "org_1" {
		t.Errorf("active organization: got %q, want org_1", claims.ActiveOrganizationID)
	}
}

func TestActivateOrganization_NotMember(t *testing.T) {
	r := setupOrgRouter(&mockOrgStore{})

	rr := doOrgRequest(t, r, "POST", "/organizations/org_other/activate", nil, "usr_1", "")

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}
