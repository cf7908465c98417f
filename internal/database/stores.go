package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createStore = `
INSERT INTO stores (id, name, slug, organization_id)
VALUES ($1, $2, $3, $4)
RETURNING id, name, slug, is_open, organization_id, created_at, updated_at
`

type CreateStoreParams struct {
	ID             string
	Name           string
	Slug           string
	OrganizationID string
}

func (q *Queries) CreateStore(ctx context.Context, arg CreateStoreParams) (Store, error) {
	row := q.db.QueryRow(ctx, createStore, arg.ID, arg.Name, arg.Slug, arg.OrganizationID)
	var s Store
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.IsOpen, &s.OrganizationID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

const listStoresByOrganization = `
SELECT id, name, slug, is_open, organization_id, created_at, updated_at
FROM stores
WHERE organization_id = $1
ORDER BY created_at
`

func (q *Queries) ListStoresByOrganization(ctx context.Context, organizationID string) ([]Store, error) {
	rows, err := q.db.Query(ctx, listStoresByOrganization, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.IsOpen, &s.OrganizationID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const getStore = `
SELECT id, name, slug, is_open, organization_id, created_at, updated_at
FROM stores
WHERE id = $1 AND organization_id = $2
`

type GetStoreParams struct {
	ID             string
	OrganizationID string
}

func (q *Queries) GetStore(ctx context.Context, arg GetStoreParams) (Store, error) {
	row := q.db.QueryRow(ctx, getStore, arg.ID, arg.OrganizationID)
	var s Store
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.IsOpen, &s.OrganizationID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

const getStoreBySlug = `
SELECT id, name, slug, is_open, organization_id, created_at, updated_at
FROM stores
WHERE organization_id = $1 AND slug = $2
`

type GetStoreBySlugParams struct {
	OrganizationID string
	Slug           string
}

func (q *Queries) GetStoreBySlug(ctx context.Context, arg GetStoreBySlugParams) (Store, error) {
	row := q.db.QueryRow(ctx, getStoreBySlug, arg.OrganizationID, arg.Slug)
	var s Store
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.IsOpen, &s.OrganizationID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

const deleteStore = `
DELETE FROM stores
WHERE id = $1 AND organization_id = $2
RETURNING id
`

type DeleteStoreParams struct {
	ID             string
	OrganizationID string
}

func (q *Queries) DeleteStore(ctx context.Context, arg DeleteStoreParams) (string, error) {
	row := q.db.QueryRow(ctx, deleteStore, arg.ID, arg.OrganizationID)
	var id string
	err := row.Scan(&id)
	return id, err
}

const setStoreOpen = `
UPDATE stores
SET is_open = $3, updated_at = now()
WHERE id = $1 AND organization_id = $2
RETURNING id, name, slug, is_open, organization_id, created_at, updated_at
`

type SetStoreOpenParams struct {
	ID             string
	OrganizationID string
	IsOpen         bool
}

func (q *Queries) SetStoreOpen(ctx context.Context, arg SetStoreOpenParams) (Store, error) {
	row := q.db.QueryRow(ctx, setStoreOpen, arg.ID, arg.OrganizationID, arg.IsOpen)
	var s Store
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.IsOpen, &s.OrganizationID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

const attachMenuToStore = `
INSERT INTO store_menus (store_id, menu_id)
VALUES ($1, $2)
RETURNING id, store_id, menu_id, created_at
`

type AttachMenuToStoreParams struct {
	StoreID string
	MenuID  int64
}

func (q *Queries) AttachMenuToStore(ctx context.Context, arg AttachMenuToStoreParams) (StoreMenu, error) {
	row := q.db.QueryRow(ctx, attachMenuToStore, arg.StoreID, arg.MenuID)
	var sm StoreMenu
	err := row.Scan(&sm.ID, &sm.StoreID, &sm.MenuID, &sm.CreatedAt)
	return sm, err
}

const detachMenuFromStore = `
DELETE FROM store_menus
WHERE store_id = $1 AND menu_id = $2
RETURNING id
`

type DetachMenuFromStoreParams struct {
	StoreID string
	MenuID  int64
}

func (q *Queries) DetachMenuFromStore(ctx context.Context, arg DetachMenuFromStoreParams) (int64, error) {
	row := q.db.QueryRow(ctx, detachMenuFromStore, arg.StoreID, arg.MenuID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listStoreMenus = `
SELECT m.id, mg.id, mg.name, md.id, md.name, md.description, md.image_url, md.sale
FROM store_menus sm
JOIN menus m ON m.id = sm.menu_id
JOIN menu_groups mg ON mg.id = m.menu_group_id
JOIN menu_details md ON md.id = m.menu_details_id
WHERE sm.store_id = $1
ORDER BY mg.id, m.id
`

// ListStoreMenusRow is the customer-facing view of a sold menu item.
// Cost is deliberately not selected.
type ListStoreMenusRow struct {
	MenuID        int64
	MenuGroupID   int64
	MenuGroupName string
	MenuDetailsID int64
	Name          string
	Description   pgtype.Text
	ImageUrl      pgtype.Text
	Sale          pgtype.Numeric
}

func (q *Queries) ListStoreMenus(ctx context.Context, storeID string) ([]ListStoreMenusRow, error) {
	rows, err := q.db.Query(ctx, listStoreMenus, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListStoreMenusRow
	for rows.Next() {
		var r ListStoreMenusRow
		if err := rows.Scan(&r.MenuID, &r.MenuGroupID, &r.MenuGroupName, &r.MenuDetailsID, &r.Name, &r.Description, &r.ImageUrl, &r.Sale); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
