package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/spec-kit/etutor-gateway/internal/domain"
)

const mysqlDuplicateEntry = 1062

type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository returns a UserRepository backed by MySQL. IDs are
// generated client-side as UUID strings.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *mysqlUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, is_active) VALUES (?,?,?,?,?,?)",
		user.ID, user.Name, NormalizeEmail(user.Email), user.PasswordHash, string(user.Role), user.Active)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return ErrEmailExists
		}
		return err
	}

	created, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	user.CreatedAt, user.UpdatedAt = created.CreatedAt, created.UpdatedAt
	return nil
}

func (r *mysqlUserRepository) Update(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, password_hash=?, role=?, is_active=? WHERE id=?",
		user.Name, NormalizeEmail(user.Email), user.PasswordHash, string(user.Role), user.Active, user.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *mysqlUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanMySQLUser(row)
}

func (r *mysqlUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", NormalizeEmail(email))
	return scanMySQLUser(row)
}

func (r *mysqlUserRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	filter = filter.Normalize()

	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.Role != nil {
		clauses = append(clauses, "role=?")
		args = append(args, string(*filter.Role))
	}
	if filter.Active != nil {
		clauses = append(clauses, "is_active=?")
		args = append(args, *filter.Active)
	}

	query := "SELECT " + userColumns + " FROM users"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, filter.Limit)
	for rows.Next() {
		user, err := scanMySQLUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *mysqlUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanMySQLUser(row rowScanner) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, mapNotFound(err)
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", user.ID, err)
	}
	user.Role = parsed
	return &user, nil
}

// Relies on clientFoundRows (forced by persistence.OpenMySQL) so a matched but
// unchanged row still counts as affected.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
