package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidAccessLevel is returned for an access level outside level1..level3.
var ErrInvalidAccessLevel = errors.New("invalid access level")

// AccessLevel is the clearance granted to an enrolled user.
type AccessLevel string

const (
	// AccessLevel1 is granted to staff.
	AccessLevel1 AccessLevel = "level1"
	// AccessLevel2 is granted to division directors.
	AccessLevel2 AccessLevel = "level2"
	// AccessLevel3 is granted to the minister.
	AccessLevel3 AccessLevel = "level3"
)

// ParseAccessLevel validates an access level name.
func ParseAccessLevel(s string) (AccessLevel, error) {
	switch l := AccessLevel(s); l {
	case AccessLevel1, AccessLevel2, AccessLevel3:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAccessLevel, s)
	}
}

// Role returns the human readable role for the level.
func (l AccessLevel) Role() string {
	switch l {
	case AccessLevel1:
		return "staff"
	case AccessLevel2:
		return "division director"
	case AccessLevel3:
		return "minister"
	default:
		return "unknown"
	}
}

// User represents an enrolled person.
type User struct {
	ID          string
	Name        string
	AccessLevel AccessLevel
	CreatedAt   time.Time
}

// UserRepository provides CRUD operations for users.
type UserRepository struct {
	db *sql.DB
}

// Users returns the user repository for this store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

// Create inserts a new user into the database.
func (r *UserRepository) Create(u *User) error {
	if _, err := ParseAccessLevel(string(u.AccessLevel)); err != nil {
		return err
	}
	u.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO users (id, name, access_level, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, string(u.AccessLevel), u.CreatedAt,
	)
	return err
}

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(id string) (*User, error) {
	u := &User{}
	var level string

	err := r.db.QueryRow(
		`SELECT id, name, access_level, created_at FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Name, &level, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	u.AccessLevel = AccessLevel(level)
	return u, nil
}

// List retrieves all users in enrollment order.
func (r *UserRepository) List() ([]*User, error) {
	rows, err := r.db.Query(
		`SELECT id, name, access_level, created_at FROM users ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		var level string
		if err := rows.Scan(&u.ID, &u.Name, &level, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.AccessLevel = AccessLevel(level)
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// Delete removes a user and, by cascade, its templates.
func (r *UserRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
