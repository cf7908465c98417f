package database

import (
	"context"
)

const createOrganization = `
INSERT INTO organizations (id, name, slug)
VALUES ($1, $2, $3)
RETURNING id, name, slug, logo, metadata, created_at
`

type CreateOrganizationParams struct {
	ID   string
	Name string
	Slug string
}

func (q *Queries) CreateOrganization(ctx context.Context, arg CreateOrganizationParams) (Organization, error) {
	row := q.db.QueryRow(ctx, createOrganization, arg.ID, arg.Name, arg.Slug)
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Logo, &o.Metadata, &o.CreatedAt)
	return o, err
}

const getOrganization = `
SELECT id, name, slug, logo, metadata, created_at
FROM organizations
WHERE id = $1
`

func (q *Queries) GetOrganization(ctx context.Context, id string) (Organization, error) {
	row := q.db.QueryRow(ctx, getOrganization, id)
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Logo, &o.Metadata, &o.CreatedAt)
	return o, err
}

const getOrganizationBySlug = `
SELECT id, name, slug, logo, metadata, created_at
FROM organizations
WHERE slug = $1
`

func (q *Queries) GetOrganizationBySlug(ctx context.Context, slug string) (Organization, error) {
	row := q.db.QueryRow(ctx, getOrganizationBySlug, slug)
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Logo, &o.Metadata, &o.CreatedAt)
	return o, err
}

const listOrganizationsByUser = `
SELECT o.id, o.name, o.slug, o.logo, o.metadata, o.created_at
FROM organizations o
JOIN members m ON m.organization_id = o.id
WHERE m.user_id = $1
ORDER BY o.created_at
`

func (q *Queries) ListOrganizationsByUser(ctx context.Context, userID string) ([]Organization, error) {
	rows, err := q.db.Query(ctx, listOrganizationsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.Logo, &o.Metadata, &o.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}
