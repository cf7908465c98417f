package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mejakita/api/internal/database"
	"github.com/mejakita/api/internal/storage"
	"github.com/shopspring/decimal"
)

const maxImageSize = 1 * 1024 * 1024 // 1MB

// Errors returned by the menu service.
var (
	ErrImageTooLarge     = errors.New("image size too big")
	ErrImageType         = errors.New("image type not supported")
	ErrMenuGroupNotFound = errors.New("menu group not found")
	ErrMenuNotFound      = errors.New("menu not found")
	ErrNegativePrice     = errors.New("price must be >= 0")
)

// ErrNotOwned is returned when a resource exists but belongs to a
// different organization than the caller's.
var ErrNotOwned = errors.New("resource does not belong to this organization")

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// MenuStore defines the DB methods needed by the menu service.
// Satisfied by *database.Queries (and its WithTx variant).
type MenuStore interface {
	GetMenuGroup(ctx context.Context, arg database.GetMenuGroupParams) (database.MenuGroup, error)
	CreateMenuDetails(ctx context.Context, arg database.CreateMenuDetailsParams) (database.MenuDetails, error)
	GetMenuDetails(ctx context.Context, id int64) (database.MenuDetails, error)
	DeleteMenuDetails(ctx context.Context, id int64) error
	CreateMenu(ctx context.Context, arg database.CreateMenuParams) (database.Menu, error)
	GetMenuWithOrganization(ctx context.Context, id int64) (database.GetMenuWithOrganizationRow, error)
	SetMenuDetailsRef(ctx context.Context, arg database.SetMenuDetailsRefParams) (database.Menu, error)
	DeleteMenu(ctx context.Context, id int64) (database.Menu, error)
	CountOrderItemsByMenuDetails(ctx context.Context, menuDetailsID int64) (int64, error)
}

// NewMenuStore creates a MenuStore from a DBTX (pool or tx).
type NewMenuStore func(db database.DBTX) MenuStore

// MenuService owns the menu catalog mutations. Each mutation that
// touches more than one table runs in a single transaction.
type MenuService struct {
	pool          TxBeginner
	newStore      NewMenuStore
	presigner     storage.Presigner
	imageBasePath string
}

func NewMenuService(pool TxBeginner, newStore NewMenuStore, presigner storage.Presigner, imageBasePath string) *MenuService {
	return &MenuService{
		pool:          pool,
		newStore:      newStore,
		presigner:     presigner,
		imageBasePath: imageBasePath,
	}
}

// ImageUpload describes the file the client intends to upload. The
// binary itself goes directly to object storage via the presigned URL.
type ImageUpload struct {
	FileSize int64
	FileType string
}

type AddMenuRequest struct {
	OrganizationID string
	MenuGroupID    int64
	Name           string
	Description    string
	Image          *ImageUpload
	Sale           decimal.Decimal
	Cost           decimal.Decimal
}

type AddMenuResult struct {
	Menu    database.Menu
	Details database.MenuDetails
	// UploadURL is empty when no image was requested.
	UploadURL string
}

func validateImage(img *ImageUpload) error {
	if img.FileSize > maxImageSize {
		return ErrImageTooLarge
	}
	if img.FileType != "image/jpeg" && img.FileType != "image/png" {
		return ErrImageType
	}
	return nil
}

// AddMenu creates a menu details snapshot and its menu slot atomically.
// When an image is requested it also returns a presigned PUT URL valid
// for one hour; the stored image URL is derived from the object key up
// front, before the client has uploaded anything.
func (s *MenuService) AddMenu(ctx context.Context, req AddMenuRequest) (*AddMenuResult, error) {
	if req.Sale.IsNegative() || req.Cost.IsNegative() {
		return nil, ErrNegativePrice
	}

	uploadURL := ""
	imageURL := pgtype.Text{}
	if req.Image != nil {
		if err := validateImage(req.Image); err != nil {
			return nil, err
		}
		key, err := storage.NewObjectKey(req.OrganizationID)
		if err != nil {
			return nil, err
		}
		uploadURL, err = s.presigner.PresignUpload(ctx, key, req.Image.FileType, req.Image.FileSize)
		if err != nil {
			return nil, err
		}
		imageURL = pgtype.Text{String: storage.PublicURL(s.imageBasePath, key), Valid: true}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// The group lookup doubles as the ownership check.
	if _, err := store.GetMenuGroup(ctx, database.GetMenuGroupParams{
		ID:             req.MenuGroupID,
		OrganizationID: req.OrganizationID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuGroupNotFound
		}
		return nil, fmt.Errorf("get menu group: %w", err)
	}

	details, err := store.CreateMenuDetails(ctx, database.CreateMenuDetailsParams{
		Name:        req.Name,
		Description: textOrNull(req.Description),
		ImageUrl:    imageURL,
		Sale:        decimalToNumeric(req.Sale),
		Cost:        decimalToNumeric(req.Cost),
	})
	if err != nil {
		return nil, fmt.Errorf("create menu details: %w", err)
	}

	menu, err := store.CreateMenu(ctx, database.CreateMenuParams{
		MenuGroupID:   req.MenuGroupID,
		MenuDetailsID: details.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &AddMenuResult{Menu: menu, Details: details, UploadURL: uploadURL}, nil
}

type EditMenuRequest struct {
	OrganizationID string
	MenuID         int64
	Name           string
	Description    string
	// Image, when set, requests a replacement upload. When nil the new
	// snapshot keeps the previous image URL.
	Image *ImageUpload
	Sale  decimal.Decimal
	Cost  decimal.Decimal
}

// EditMenu inserts a fresh menu details row and repoints the menu to
// it. The previous row is never touched; order items referencing it
// keep the prices they were sold at.
func (s *MenuService) EditMenu(ctx context.Context, req EditMenuRequest) (*AddMenuResult, error) {
	if req.Sale.IsNegative() || req.Cost.IsNegative() {
		return nil, ErrNegativePrice
	}
	if req.Image != nil {
		if err := validateImage(req.Image); err != nil {
			return nil, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	menu, err := store.GetMenuWithOrganization(ctx, req.MenuID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("get menu: %w", err)
	}
	if menu.OrganizationID != req.OrganizationID {
		return nil, ErrNotOwned
	}

	uploadURL := ""
	imageURL := pgtype.Text{}
	if req.Image != nil {
		key, err := storage.NewObjectKey(req.OrganizationID)
		if err != nil {
			return nil, err
		}
		uploadURL, err = s.presigner.PresignUpload(ctx, key, req.Image.FileType, req.Image.FileSize)
		if err != nil {
			return nil, err
		}
		imageURL = pgtype.Text{String: storage.PublicURL(s.imageBasePath, key), Valid: true}
	} else {
		prev, err := store.GetMenuDetails(ctx, menu.MenuDetailsID)
		if err != nil {
			return nil, fmt.Errorf("get previous details: %w", err)
		}
		imageURL = prev.ImageUrl
	}

	details, err := store.CreateMenuDetails(ctx, database.CreateMenuDetailsParams{
		Name:        req.Name,
		Description: textOrNull(req.Description),
		ImageUrl:    imageURL,
		Sale:        decimalToNumeric(req.Sale),
		Cost:        decimalToNumeric(req.Cost),
	})
	if err != nil {
		return nil, fmt.Errorf("create menu details: %w", err)
	}

	updated, err := store.SetMenuDetailsRef(ctx, database.SetMenuDetailsRefParams{
		ID:            req.MenuID,
		MenuDetailsID: details.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("update menu: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &AddMenuResult{Menu: updated, Details: details, UploadURL: uploadURL}, nil
}

type DeleteMenuResult struct {
	Menu database.Menu
	// DetailsDeleted is false when order items still reference the
	// detail snapshot, which is then intentionally left in place.
	DetailsDeleted bool
}

// DeleteMenu removes a menu slot. Its detail snapshot goes with it only
// when no order item ever referenced it.
func (s *MenuService) DeleteMenu(ctx context.Context, organizationID string, menuID int64) (*DeleteMenuResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	menu, err := store.GetMenuWithOrganization(ctx, menuID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("get menu: %w", err)
	}
	if menu.OrganizationID != organizationID {
		return nil, ErrNotOwned
	}

	deleted, err := store.DeleteMenu(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("delete menu: %w", err)
	}

	refs, err := store.CountOrderItemsByMenuDetails(ctx, deleted.MenuDetailsID)
	if err != nil {
		return nil, fmt.Errorf("count detail references: %w", err)
	}

	detailsDeleted := false
	if refs == 0 {
		if err := store.DeleteMenuDetails(ctx, deleted.MenuDetailsID); err != nil {
			return nil, fmt.Errorf("delete menu details: %w", err)
		}
		detailsDeleted = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &DeleteMenuResult{Menu: deleted, DetailsDeleted: detailsDeleted}, nil
}

// --- Helpers ---

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
