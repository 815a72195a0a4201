package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/database"
	"github.com/gilsonricardopeloso/devretain/internal/database/postgres"
	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
)

const userColumns = `id, name, email, password, role, is_active, last_activity_at, preferences, created_at, updated_at`

type PostgresUserRepository struct {
	db database.DB
	q  database.Querier
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db, q: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	prefs, err := json.Marshal(u.Preferences)
	if err != nil {
		return user.User{}, err
	}

	row := r.q.QueryRow(ctx,
		`INSERT INTO users (name, email, password, role, is_active, preferences)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.IsActive, prefs,
	)
	created, err := scanUser(row)
	if err != nil {
		if _, ok := postgres.IsUniqueViolation(err); ok {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}
	return created, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (user.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetByIDForUpdate(ctx context.Context, id int64) (user.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]user.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
}

func (r *PostgresUserRepository) ListPage(ctx context.Context, limit, offset int) ([]user.User, int64, error) {
	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	items, err := r.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresUserRepository) SearchByName(ctx context.Context, query string) ([]user.User, error) {
	return r.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE name LIKE '%' || $1 || '%' ESCAPE '\' ORDER BY name ASC, id ASC`,
		escapeLike(query),
	)
}

func (r *PostgresUserRepository) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]user.User, error) {
	return r.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE is_active AND COALESCE(last_activity_at, created_at) < $1
		 ORDER BY COALESCE(last_activity_at, created_at) ASC, id ASC`,
		cutoff,
	)
}

func (r *PostgresUserRepository) Update(ctx context.Context, id int64, c user.Changes) (user.User, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 6)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if c.Name != nil {
		add("name", *c.Name)
	}
	if c.Email != nil {
		add("email", *c.Email)
	}
	if c.PasswordHash != nil {
		add("password", *c.PasswordHash)
	}
	if c.Role != nil {
		add("role", string(*c.Role))
	}
	if c.IsActive != nil {
		add("is_active", *c.IsActive)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`, strings.Join(sets, ", "), len(args), userColumns)
	updated, err := scanUser(r.q.QueryRow(ctx, q, args...))
	if err != nil {
		if _, ok := postgres.IsUniqueViolation(err); ok {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}
	return updated, nil
}

func (r *PostgresUserRepository) SetPreferences(ctx context.Context, id int64, p user.Preferences) (user.User, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return user.User{}, err
	}
	return scanUser(r.q.QueryRow(ctx,
		`UPDATE users SET preferences = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns,
		id, b,
	))
}

func (r *PostgresUserRepository) TouchLastActivity(ctx context.Context, id int64, at time.Time) error {
	affected, err := r.q.Exec(ctx, `UPDATE users SET last_activity_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) WithinTx(ctx context.Context, fn func(user.Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		return fn(&PostgresUserRepository{q: tx})
	})
}

func (r *PostgresUserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]user.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanUser(row database.Row) (user.User, error) {
	var (
		u     user.User
		role  string
		prefs []byte
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsActive,
		&u.LastActivityAt, &prefs, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	u.Role = user.Role(role)

	u.Preferences = user.DefaultPreferences()
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &u.Preferences); err != nil {
			return user.User{}, errors.Join(errors.New("decode preferences"), err)
		}
	}
	return u, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
