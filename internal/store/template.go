package store

import (
	"database/sql"
	"time"
)

// Template is an enrolled fingerprint: the encoded descriptor matrix of one image.
type Template struct {
	ID          string
	UserID      string
	Detector    string // "sift" or "orb"
	Keypoints   int
	Descriptors []byte
	CreatedAt   time.Time
}

// TemplateRepository provides storage for fingerprint templates.
type TemplateRepository struct {
	db *sql.DB
}

// Templates returns the template repository for this store.
func (s *Store) Templates() *TemplateRepository {
	return &TemplateRepository{db: s.db}
}

// Create inserts a template. The owning user must exist.
func (r *TemplateRepository) Create(t *Template) error {
	t.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO templates (id, user_id, detector, keypoints, descriptors, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Detector, t.Keypoints, t.Descriptors, t.CreatedAt,
	)
	return err
}

// ListAll retrieves every template in enrollment order.
func (r *TemplateRepository) ListAll() ([]*Template, error) {
	return r.query(
		`SELECT id, user_id, detector, keypoints, descriptors, created_at
		 FROM templates ORDER BY rowid`,
	)
}

// ListByUser retrieves the templates of one user in enrollment order.
func (r *TemplateRepository) ListByUser(userID string) ([]*Template, error) {
	return r.query(
		`SELECT id, user_id, detector, keypoints, descriptors, created_at
		 FROM templates WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
}

func (r *TemplateRepository) query(q string, args ...interface{}) ([]*Template, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t := &Template{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Detector, &t.Keypoints, &t.Descriptors, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}
