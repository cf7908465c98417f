package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createMember = `
INSERT INTO members (id, organization_id, user_id, role)
VALUES ($1, $2, $3, $4)
RETURNING id, organization_id, user_id, role, created_at
`

type CreateMemberParams struct {
	ID             string
	OrganizationID string
	UserID         string
	Role           string
}

func (q *Queries) CreateMember(ctx context.Context, arg CreateMemberParams) (Member, error) {
	row := q.db.QueryRow(ctx, createMember, arg.ID, arg.OrganizationID, arg.UserID, arg.Role)
	var m Member
	err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, err
}

const getMemberByUser = `
SELECT id, organization_id, user_id, role, created_at
FROM members
WHERE organization_id = $1 AND user_id = $2
`

type GetMemberByUserParams struct {
	OrganizationID string
	UserID         string
}

func (q *Queries) GetMemberByUser(ctx context.Context, arg GetMemberByUserParams) (Member, error) {
	row := q.db.QueryRow(ctx, getMemberByUser, arg.OrganizationID, arg.UserID)
	var m Member
	err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, err
}

const listMembersByOrganization = `
SELECT m.id, m.organization_id, m.user_id, m.role, m.created_at, u.name, u.email
FROM members m
JOIN users u ON u.id = m.user_id
WHERE m.organization_id = $1
ORDER BY m.created_at
`

type ListMembersByOrganizationRow struct {
	ID             string
	OrganizationID string
	UserID         string
	Role           string
	CreatedAt      time.Time
	UserName       string
	UserEmail      string
}

func (q *Queries) ListMembersByOrganization(ctx context.Context, organizationID string) ([]ListMembersByOrganizationRow, error) {
	rows, err := q.db.Query(ctx, listMembersByOrganization, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListMembersByOrganizationRow
	for rows.Next() {
		var r ListMembersByOrganizationRow
		if err := rows.Scan(&r.ID, &r.OrganizationID, &r.UserID, &r.Role, &r.CreatedAt, &r.UserName, &r.UserEmail); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteMember = `
DELETE FROM members
WHERE id = $1 AND organization_id = $2
RETURNING id
`

type DeleteMemberParams struct {
	ID             string
	OrganizationID string
}

func (q *Queries) DeleteMember(ctx context.Context, arg DeleteMemberParams) (string, error) {
	row := q.db.QueryRow(ctx, deleteMember, arg.ID, arg.OrganizationID)
	var id string
	err := row.Scan(&id)
	return id, err
}

const createInvitation = `
INSERT INTO invitations (id, organization_id, email, role, status, expires_at, inviter_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, organization_id, email, role, status, expires_at, inviter_id, created_at
`

type CreateInvitationParams struct {
	ID             uuid.UUID
	OrganizationID string
	Email          string
	Role           string
	Status         string
	ExpiresAt      time.Time
	InviterID      string
}

func (q *Queries) CreateInvitation(ctx context.Context, arg CreateInvitationParams) (Invitation, error) {
	row := q.db.QueryRow(ctx, createInvitation,
		arg.ID, arg.OrganizationID, arg.Email, arg.Role, arg.Status, arg.ExpiresAt, arg.InviterID)
	var i Invitation
	err := row.Scan(&i.ID, &i.OrganizationID, &i.Email, &i.Role, &i.Status, &i.ExpiresAt, &i.InviterID, &i.CreatedAt)
	return i, err
}

const getInvitation = `
SELECT id, organization_id, email, role, status, expires_at, inviter_id, created_at
FROM invitations
WHERE id = $1
`

func (q *Queries) GetInvitation(ctx context.Context, id uuid.UUID) (Invitation, error) {
	row := q.db.QueryRow(ctx, getInvitation, id)
	var i Invitation
	err := row.Scan(&i.ID, &i.OrganizationID, &i.Email, &i.Role, &i.Status, &i.ExpiresAt, &i.InviterID, &i.CreatedAt)
	return i, err
}

const listPendingInvitationsByEmail = `
SELECT i.id, i.email, i.role, i.status, i.expires_at, i.created_at, o.name, u.name
FROM invitations i
JOIN organizations o ON o.id = i.organization_id
JOIN users u ON u.id = i.inviter_id
WHERE i.email = $1 AND i.status = 'pending'
ORDER BY i.created_at DESC
`

type ListPendingInvitationsByEmailRow struct {
	ID               uuid.UUID
	Email            string
	Role             string
	Status           string
	ExpiresAt        time.Time
	CreatedAt        time.Time
	OrganizationName string
	InviterName      string
}

func (q *Queries) ListPendingInvitationsByEmail(ctx context.Context, email string) ([]ListPendingInvitationsByEmailRow, error) {
	rows, err := q.db.Query(ctx, listPendingInvitationsByEmail, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPendingInvitationsByEmailRow
	for rows.Next() {
		var r ListPendingInvitationsByEmailRow
		if err := rows.Scan(&r.ID, &r.Email, &r.Role, &r.Status, &r.ExpiresAt, &r.CreatedAt, &r.OrganizationName, &r.InviterName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateInvitationStatus = `
UPDATE invitations
SET status = $2
WHERE id = $1
RETURNING id, organization_id, email, role, status, expires_at, inviter_id, created_at
`

type UpdateInvitationStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) UpdateInvitationStatus(ctx context.Context, arg UpdateInvitationStatusParams) (Invitation, error) {
	row := q.db.QueryRow(ctx, updateInvitationStatus, arg.ID, arg.Status)
	var i Invitation
	err := row.Scan(&i.ID, &i.OrganizationID, &i.Email, &i.Role, &i.Status, &i.ExpiresAt, &i.InviterID, &i.CreatedAt)
	return i, err
}

const createPermissionGroup = `
INSERT INTO permission_groups (name, is_admin, is_default, organization_id)
VALUES ($1, $2, $3, $4)
RETURNING id, name, is_admin, is_default, organization_id, created_at, updated_at
`

type CreatePermissionGroupParams struct {
	Name           string
	IsAdmin        bool
	IsDefault      bool
	OrganizationID string
}

func (q *Queries) CreatePermissionGroup(ctx context.Context, arg CreatePermissionGroupParams) (PermissionGroup, error) {
	row := q.db.QueryRow(ctx, createPermissionGroup, arg.Name, arg.IsAdmin, arg.IsDefault, arg.OrganizationID)
	var g PermissionGroup
	err := row.Scan(&g.ID, &g.Name, &g.IsAdmin, &g.IsDefault, &g.OrganizationID, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

const listPermissionGroupsByOrganization = `
SELECT id, name, is_admin, is_default, organization_id, created_at, updated_at
FROM permission_groups
WHERE organization_id = $1
ORDER BY id
`

func (q *Queries) ListPermissionGroupsByOrganization(ctx context.Context, organizationID string) ([]PermissionGroup, error) {
	rows, err := q.db.Query(ctx, listPermissionGroupsByOrganization, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PermissionGroup
	for rows.Next() {
		var g PermissionGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.IsAdmin, &g.IsDefault, &g.OrganizationID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

const listDefaultPermissionGroups = `
SELECT id, name, is_admin, is_default, organization_id, created_at, updated_at
FROM permission_groups
WHERE organization_id = $1 AND is_default = TRUE
ORDER BY id
`

func (q *Queries) ListDefaultPermissionGroups(ctx context.Context, organizationID string) ([]PermissionGroup, error) {
	rows, err := q.db.Query(ctx, listDefaultPermissionGroups, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PermissionGroup
	for rows.Next() {
		var g PermissionGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.IsAdmin, &g.IsDefault, &g.OrganizationID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

const deletePermissionGroup = `
DELETE FROM permission_groups
WHERE id = $1 AND organization_id = $2
RETURNING id
`

type DeletePermissionGroupParams struct {
	ID             int64
	OrganizationID string
}

func (q *Queries) DeletePermissionGroup(ctx context.Context, arg DeletePermissionGroupParams) (int64, error) {
	row := q.db.QueryRow(ctx, deletePermissionGroup, arg.ID, arg.OrganizationID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const addMemberToPermissionGroup = `
INSERT INTO member_permission_groups (member_id, permission_group_id)
VALUES ($1, $2)
RETURNING id, member_id, permission_group_id, created_at
`

type AddMemberToPermissionGroupParams struct {
	MemberID          string
	PermissionGroupID int64
}

func (q *Queries) AddMemberToPermissionGroup(ctx context.Context, arg AddMemberToPermissionGroupParams) (MemberPermissionGroup, error) {
	row := q.db.QueryRow(ctx, addMemberToPermissionGroup, arg.MemberID, arg.PermissionGroupID)
	var m MemberPermissionGroup
	err := row.Scan(&m.ID, &m.MemberID, &m.PermissionGroupID, &m.CreatedAt)
	return m, err
}
