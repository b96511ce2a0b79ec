package store

import "database/sql"

// AdminUser is an operator account for the web console.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
}

// CreateAdminUser inserts an operator account with a pre-hashed password.
func (db *DB) CreateAdminUser(username, passwordHash string) error {
	_, err := db.Exec(`INSERT INTO admin_users (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	return err
}

// GetAdminUser fetches an operator account by username. Returns nil, nil when
// the user does not exist.
func (db *DB) GetAdminUser(username string) (*AdminUser, error) {
	var u AdminUser
	err := db.QueryRow(`SELECT id, username, password_hash FROM admin_users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateAdminPassword replaces an operator account's password hash.
func (db *DB) UpdateAdminPassword(username, passwordHash string) error {
	_, err := db.Exec(`UPDATE admin_users SET password_hash = ? WHERE username = ?`, passwordHash, username)
	return err
}

// CountAdminUsers returns the number of operator accounts.
func (db *DB) CountAdminUsers() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM admin_users`).Scan(&n)
	return n, err
}
