package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	"github.com/echopind/echopind_backend/internal/models"
	"github.com/echopind/echopind_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `user_id, full_name, email, password_hash, role, phone, address, date_of_birth,
	student_id, school, grade, profile_photo, is_active, last_login,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func scanUser(row pgx.Row) (*domain.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.FullName,
		&m.Email,
		&m.PasswordHash,
		&m.Role,
		&m.Phone,
		&m.Address,
		&m.DateOfBirth,
		&m.StudentID,
		&m.School,
		&m.Grade,
		&m.ProfilePhoto,
		&m.IsActive,
		&m.LastLogin,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	d, err := mapping.ToDomainUser(m)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, LOWER($3), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.UserID,
		m.FullName,
		m.Email,
		m.PasswordHash,
		m.Role,
		m.Phone,
		m.Address,
		m.DateOfBirth,
		m.StudentID,
		m.School,
		m.Grade,
		m.ProfilePhoto,
		m.IsActive,
		m.LastLogin,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "failed to save user")
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1;`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("failed to find user by ID %s", userID))
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1);`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, domain.NormalizeEmail(email)))
	if err != nil {
		return nil, translateError(err, "failed to find user by email")
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE user_id = (
			SELECT user_id FROM user_refresh_tokens
			WHERE token_hash = $1 AND expires_at > $2
		);
	`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, tokenHash, now))
	if err != nil {
		return nil, translateError(err, "failed to find user by refresh token")
	}
	return user, nil
}

// escapeLike escapes LIKE metacharacters so search input is matched literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PgxUserRepository) FindUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	role := ""
	if filter.Role != domain.RoleUnknown {
		role = filter.Role.String()
	}
	pattern := ""
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern = "%" + escapeLike(s) + "%"
	}
	where := `
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR full_name ILIKE $2 OR email ILIKE $2 OR school ILIKE $2)`

	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, role, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + userColumns + ` FROM users` + where + `
		ORDER BY created_at DESC, user_id ASC
		LIMIT $3 OFFSET $4;`
	rows, err := r.Pool.Query(ctx, query, role, pattern, limit, max(filter.Offset, 0))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, total, nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
		UPDATE users SET
			full_name = $2, email = LOWER($3), phone = $4, address = $5, date_of_birth = $6,
			student_id = $7, school = $8, grade = $9, profile_photo = $10,
			last_updated_at = $11, last_updated_by = $12
		WHERE user_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.UserID, m.FullName, m.Email, m.Phone, m.Address, m.DateOfBirth,
		m.StudentID, m.School, m.Grade, m.ProfilePhoto,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update user %s", user.UserID))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE user_id = $1;`, userID, at)
	if err != nil {
		return fmt.Errorf("failed to update last login for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) SetUserActive(ctx context.Context, userID string, isActive bool, at time.Time, updatedBy string) (*domain.User, error) {
	var updated *domain.User
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE users SET is_active = $2, last_updated_at = $3, last_updated_by = $4
			WHERE user_id = $1
			RETURNING ` + userColumns + `;`
		u, err := scanUser(tx.QueryRow(ctx, query, userID, isActive, at, updatedBy))
		if err != nil {
			return translateError(err, fmt.Sprintf("failed to set status of user %s", userID))
		}
		if !isActive {
			if _, err := tx.Exec(ctx, `DELETE FROM user_refresh_tokens WHERE user_id = $1;`, userID); err != nil {
				return fmt.Errorf("failed to clear sessions of user %s: %w", userID, err)
			}
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes the user row; user_refresh_tokens rows go with it via ON DELETE CASCADE.
func (r *PgxUserRepository) DeleteUser(ctx context.Context, userID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1;`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
