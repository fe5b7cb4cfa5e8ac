package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// UpsertUser is the identity the gateway forwards on each request. Role is
// "designer" or "client"; designers own templates and projects, clients
// only read and answer questionnaires on projects linked to them.
type UpsertUser struct {
	ExternalID  string
	Email       string
	DisplayName string
	Role        string
}

func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (string, error) {
	if u.ExternalID == "" {
		return "", fmt.Errorf("external id required")
	}
	if u.Role == "" {
		u.Role = "designer"
	}

	const q = `
insert into users (external_id, email, display_name, role, updated_at)
values ($1, nullif($2,''), nullif($3,''), $4, now())
on conflict (external_id) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  role = excluded.role,
  updated_at = now()
returning id::text;
`
	var id string
	if err := r.db.QueryRow(ctx, q, u.ExternalID, u.Email, u.DisplayName, u.Role).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
