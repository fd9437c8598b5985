package user

import "strings"

// User represents a registered account. Users are created on signup and read
// on login; this service never mutates or deletes them.
//
// The ID is an opaque string assigned by the active storage engine: a hex
// ObjectID under the document engine, a decimal rowid under the relational
// fallback. Both shapes are treated identically everywhere above the gateway.
type User struct {
	ID           string `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
}

// IsAdmin reports whether this account has access to the audit views.
func (u *User) IsAdmin() bool {
	return strings.EqualFold(u.Username, "admin")
}
