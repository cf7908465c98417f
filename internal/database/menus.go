package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const createMenuGroup = `
INSERT INTO menu_groups (name, organization_id)
VALUES ($1, $2)
RETURNING id, name, organization_id, created_at, updated_at
`

type CreateMenuGroupParams struct {
	Name           string
	OrganizationID string
}

func (q *Queries) CreateMenuGroup(ctx context.Context, arg CreateMenuGroupParams) (MenuGroup, error) {
	row := q.db.QueryRow(ctx, createMenuGroup, arg.Name, arg.OrganizationID)
	var g MenuGroup
	err := row.Scan(&g.ID, &g.Name, &g.OrganizationID, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

const listMenuGroupsByOrganization = `
SELECT id, name, organization_id, created_at, updated_at
FROM menu_groups
WHERE organization_id = $1
ORDER BY id
`

func (q *Queries) ListMenuGroupsByOrganization(ctx context.Context, organizationID string) ([]MenuGroup, error) {
	rows, err := q.db.Query(ctx, listMenuGroupsByOrganization, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuGroup
	for rows.Next() {
		var g MenuGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.OrganizationID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

const getMenuGroup = `
SELECT id, name, organization_id, created_at, updated_at
FROM menu_groups
WHERE id = $1 AND organization_id = $2
`

type GetMenuGroupParams struct {
	ID             int64
	OrganizationID string
}

func (q *Queries) GetMenuGroup(ctx context.Context, arg GetMenuGroupParams) (MenuGroup, error) {
	row := q.db.QueryRow(ctx, getMenuGroup, arg.ID, arg.OrganizationID)
	var g MenuGroup
	err := row.Scan(&g.ID, &g.Name, &g.OrganizationID, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

const updateMenuGroup = `
UPDATE menu_groups
SET name = $3, updated_at = now()
WHERE id = $1 AND organization_id = $2
RETURNING id, name, organization_id, created_at, updated_at
`

type UpdateMenuGroupParams struct {
	ID             int64
	OrganizationID string
	Name           string
}

func (q *Queries) UpdateMenuGroup(ctx context.Context, arg UpdateMenuGroupParams) (MenuGroup, error) {
	row := q.db.QueryRow(ctx, updateMenuGroup, arg.ID, arg.OrganizationID, arg.Name)
	var g MenuGroup
	err := row.Scan(&g.ID, &g.Name, &g.OrganizationID, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

const deleteMenuGroup = `
DELETE FROM menu_groups
WHERE id = $1 AND organization_id = $2
RETURNING id
`

type DeleteMenuGroupParams struct {
	ID             int64
	OrganizationID string
}

func (q *Queries) DeleteMenuGroup(ctx context.Context, arg DeleteMenuGroupParams) (int64, error) {
	row := q.db.QueryRow(ctx, deleteMenuGroup, arg.ID, arg.OrganizationID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createMenuDetails = `
INSERT INTO menu_details (name, description, image_url, sale, cost)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, description, image_url, sale, cost, created_at
`

type CreateMenuDetailsParams struct {
	Name        string
	Description pgtype.Text
	ImageUrl    pgtype.Text
	Sale        pgtype.Numeric
	Cost        pgtype.Numeric
}

func (q *Queries) CreateMenuDetails(ctx context.Context, arg CreateMenuDetailsParams) (MenuDetails, error) {
	row := q.db.QueryRow(ctx, createMenuDetails, arg.Name, arg.Description, arg.ImageUrl, arg.Sale, arg.Cost)
	var d MenuDetails
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.ImageUrl, &d.Sale, &d.Cost, &d.CreatedAt)
	return d, err
}

const getMenuDetails = `
SELECT id, name, description, image_url, sale, cost, created_at
FROM menu_details
WHERE id = $1
`

func (q *Queries) GetMenuDetails(ctx context.Context, id int64) (MenuDetails, error) {
	row := q.db.QueryRow(ctx, getMenuDetails, id)
	var d MenuDetails
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.ImageUrl, &d.Sale, &d.Cost, &d.CreatedAt)
	return d, err
}

const deleteMenuDetails = `
DELETE FROM menu_details
WHERE id = $1
`

func (q *Queries) DeleteMenuDetails(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteMenuDetails, id)
	return err
}

const createMenu = `
INSERT INTO menus (menu_group_id, menu_details_id)
VALUES ($1, $2)
RETURNING id, menu_group_id, menu_details_id, created_at, updated_at
`

type CreateMenuParams struct {
	MenuGroupID   int64
	MenuDetailsID int64
}

func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	row := q.db.QueryRow(ctx, createMenu, arg.MenuGroupID, arg.MenuDetailsID)
	var m Menu
	err := row.Scan(&m.ID, &m.MenuGroupID, &m.MenuDetailsID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const getMenuWithOrganization = `
SELECT m.id, m.menu_group_id, m.menu_details_id, m.created_at, m.updated_at, mg.organization_id
FROM menus m
JOIN menu_groups mg ON mg.id = m.menu_group_id
WHERE m.id = $1
`

// GetMenuWithOrganizationRow carries the owning organization so callers
// can authorize before mutating.
type GetMenuWithOrganizationRow struct {
	ID             int64
	MenuGroupID    int64
	MenuDetailsID  int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	OrganizationID string
}

func (q *Queries) GetMenuWithOrganization(ctx context.Context, id int64) (GetMenuWithOrganizationRow, error) {
	row := q.db.QueryRow(ctx, getMenuWithOrganization, id)
	var r GetMenuWithOrganizationRow
	err := row.Scan(&r.ID, &r.MenuGroupID, &r.MenuDetailsID, &r.CreatedAt, &r.UpdatedAt, &r.OrganizationID)
	return r, err
}

const setMenuDetailsRef = `
UPDATE menus
SET menu_details_id = $2, updated_at = now()
WHERE id = $1
RETURNING id, menu_group_id, menu_details_id, created_at, updated_at
`

type SetMenuDetailsRefParams struct {
	ID            int64
	MenuDetailsID int64
}

func (q *Queries) SetMenuDetailsRef(ctx context.Context, arg SetMenuDetailsRefParams) (Menu, error) {
	row := q.db.QueryRow(ctx, setMenuDetailsRef, arg.ID, arg.MenuDetailsID)
	var m Menu
	err := row.Scan(&m.ID, &m.MenuGroupID, &m.MenuDetailsID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const deleteMenu = `
DELETE FROM menus
WHERE id = $1
RETURNING id, menu_group_id, menu_details_id, created_at, updated_at
`

func (q *Queries) DeleteMenu(ctx context.Context, id int64) (Menu, error) {
	row := q.db.QueryRow(ctx, deleteMenu, id)
	var m Menu
	err := row.Scan(&m.ID, &m.MenuGroupID, &m.MenuDetailsID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const countOrderItemsByMenuDetails = `
SELECT count(*)
FROM order_items
WHERE menu_details_id = $1
`

func (q *Queries) CountOrderItemsByMenuDetails(ctx context.Context, menuDetailsID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countOrderItemsByMenuDetails, menuDetailsID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listMenusByGroup = `
SELECT m.id, md.id, md.name, md.description, md.image_url, md.sale, md.cost, md.created_at
FROM menus m
JOIN menu_details md ON md.id = m.menu_details_id
WHERE m.menu_group_id = $1
ORDER BY m.id
`

type ListMenusByGroupRow struct {
	MenuID        int64
	MenuDetailsID int64
	Name          string
	Description   pgtype.Text
	ImageUrl      pgtype.Text
	Sale          pgtype.Numeric
	Cost          pgtype.Numeric
	CreatedAt     time.Time
}

func (q *Queries) ListMenusByGroup(ctx context.Context, menuGroupID int64) ([]ListMenusByGroupRow, error) {
	rows, err := q.db.Query(ctx, listMenusByGroup, menuGroupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListMenusByGroupRow
	for rows.Next() {
		var r ListMenusByGroupRow
		if err := rows.Scan(&r.MenuID, &r.MenuDetailsID, &r.Name, &r.Description, &r.ImageUrl, &r.Sale, &r.Cost, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
