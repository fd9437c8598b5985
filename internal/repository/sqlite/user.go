package sqlite

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"careercast/internal/domain/user"
	"careercast/pkg/errors"
)

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
}

func (r userRow) toDomain() *user.User {
	return &user.User{
		ID:           strconv.FormatInt(r.ID, 10),
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
	}
}

// CreateUser inserts a new account, mapping UNIQUE violations on username or
// email to ErrDuplicateKey.
func (g *Gateway) CreateUser(ctx context.Context, username, email, passwordHash string) (*user.User, error) {
	query := `INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`

	res, err := g.db.ExecContext(ctx, query, username, email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Wrap(errors.ErrDuplicateKey, err.Error())
		}
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	return &user.User{
		ID:           strconv.FormatInt(id, 10),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}, nil
}

// FindUserByIdentifier looks up an account by username or email.
func (g *Gateway) FindUserByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	var row userRow

	query := `SELECT id, username, email, password_hash FROM users WHERE username = ? OR email = ?`

	err := g.db.GetContext(ctx, &row, query, identifier, identifier)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "user not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageUnavailable, err.Error())
	}

	return row.toDomain(), nil
}

// isUniqueViolation detects sqlite's unique constraint errors. The modernc
// driver surfaces them as plain error strings, so matching the message is the
// only portable check.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
