package userinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/logx"
	"github.com/Abraxas-365/skyport/iam/user"
	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `
			id, tenant_id, username, email, password_hash, role, status,
			last_login_at, created_at, updated_at`

// PostgresUserRepository implementación de PostgreSQL para UserRepository
type PostgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository crea una nueva instancia del repositorio de usuarios
func NewPostgresUserRepository(db *sqlx.DB) user.UserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

// FindByID busca un usuario por ID y tenant
func (r *PostgresUserRepository) FindByID(ctx context.Context, id kernel.UserID, tenantID kernel.TenantID) (*user.User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users
		WHERE id = $1 AND tenant_id = $2`

	var u user.User
	err := r.db.GetContext(ctx, &u, query, id.String(), tenantID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("user_id", id.String())
		}
		logx.Error("Error fetching user by ID: %v", err)
		return nil, errx.Wrap(err, "failed to find user by id", errx.TypeInternal).
			WithDetail("user_id", id.String()).
			WithDetail("tenant_id", tenantID.String())
	}

	return &u, nil
}

// FindByUsername busca un usuario por username dentro de un tenant
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string, tenantID kernel.TenantID) (*user.User, error) {
	if username == "" || tenantID.IsEmpty() {
		return nil, user.ErrUserNotFound()
	}

	query := `
		SELECT` + userColumns + `
		FROM users
		WHERE username = $1 AND tenant_id = $2`

	var u user.User
	err := r.db.GetContext(ctx, &u, query, username, tenantID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("username", username)
		}
		logx.Error("Error fetching user by username: %v", err)
		return nil, errx.Wrap(err, "failed to find user by username", errx.TypeInternal).
			WithDetail("tenant_id", tenantID.String())
	}

	return &u, nil
}

// Save inserta o actualiza un usuario. Un id existente en otro tenant no se toca
// y se reporta como no encontrado.
func (r *PostgresUserRepository) Save(ctx context.Context, u user.User) error {
	query := `
		INSERT INTO users (` + userColumns + `
		) VALUES (
			:id, :tenant_id, :username, :email, :password_hash, :role, :status,
			:last_login_at, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			status = EXCLUDED.status,
			last_login_at = EXCLUDED.last_login_at,
			updated_at = EXCLUDED.updated_at
		WHERE users.tenant_id = EXCLUDED.tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return user.ErrUserAlreadyExists().
				WithDetail("username", u.Username).
				WithDetail("tenant_id", u.TenantID.String())
		}
		return errx.Wrap(err, "failed to save user", errx.TypeInternal).
			WithDetail("user_id", u.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return user.ErrUserNotFound().WithDetail("user_id", u.ID.String())
	}

	return nil
}
