package store

import "github.com/groupfund/backend/internal/models"

func (s *Store) CreateUser(u *models.User) error {
	return s.q.QueryRow(`
		INSERT INTO users (name, email, password, avatar)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		u.Name, u.Email, u.Password, u.Avatar).
		Scan(&u.ID, &u.CreatedAt)
}

func (s *Store) UserByEmail(email string) (*models.User, error) {
	var u models.User
	err := s.q.QueryRow(`
		SELECT id, name, email, password, avatar, created_at
		FROM users WHERE email = $1`,
		email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Avatar, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserByID(id int) (*models.User, error) {
	var u models.User
	err := s.q.QueryRow(`
		SELECT id, name, email, password, avatar, created_at
		FROM users WHERE id = $1`,
		id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Avatar, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserExists(id int) (bool, error) {
	var exists bool
	err := s.q.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// EmailInUseByOther reports whether another user already owns the email.
func (s *Store) EmailInUseByOther(email string, userID int) (bool, error) {
	var exists bool
	err := s.q.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, userID).Scan(&exists)
	return exists, err
}

func (s *Store) UpdateUser(u *models.User) error {
	_, err := s.q.Exec(`
		UPDATE users SET name = $1, email = $2, password = $3, avatar = $4 WHERE id = $5`,
		u.Name, u.Email, u.Password, u.Avatar, u.ID)
	return err
}

// SearchUsersByEmail returns at most five suggestions for an email fragment.
func (s *Store) SearchUsersByEmail(fragment string) ([]models.User, error) {
	rows, err := s.q.Query(`
		SELECT id, name, email, avatar, created_at
		FROM users WHERE email ILIKE '%' || $1 || '%'
		ORDER BY email LIMIT 5`,
		fragment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
