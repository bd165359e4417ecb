package sqlstore

import (
	"context"

	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

const userColumns = `u.id, u.email, u.username, COALESCE(u.image_url, ''), COALESCE(u.header_image_url, ''),
	COALESCE(u.bio, ''), COALESCE(u.location, ''), u.password`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.ImageURL, &u.HeaderImageURL, &u.Bio, &u.Location, &u.Password)
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (s *queries) CreateUser(ctx context.Context, user *models.User) error {
	query := s.rebind(`INSERT INTO users (email, username, image_url, header_image_url, bio, location, password)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := s.q.QueryRowContext(ctx, query, user.Email, user.Username, user.ImageURL, user.HeaderImageURL,
		user.Bio, user.Location, user.Password).Scan(&user.ID)
	return classify(err)
}

func (s *queries) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := s.rebind("SELECT " + userColumns + " FROM users u WHERE u.id = ?")
	return scanUser(s.q.QueryRowContext(ctx, query, id))
}

func (s *queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := s.rebind("SELECT " + userColumns + " FROM users u WHERE u.username = ?")
	return scanUser(s.q.QueryRowContext(ctx, query, username))
}

func (s *queries) UpdateUser(ctx context.Context, user *models.User) error {
	return s.execOne(ctx, `UPDATE users SET email = ?, username = ?, image_url = ?, header_image_url = ?,
		bio = ?, location = ?, password = ? WHERE id = ?`,
		user.Email, user.Username, user.ImageURL, user.HeaderImageURL, user.Bio, user.Location, user.Password, user.ID)
}

func (s *queries) DeleteUser(ctx context.Context, id int) error {
	return s.execOne(ctx, "DELETE FROM users WHERE id = ?", id)
}

func (s *queries) SearchUsers(ctx context.Context, queryStr string) ([]models.User, error) {
	query := s.rebind("SELECT " + userColumns + " FROM users u WHERE " + store.SearchUsernameClause + " ORDER BY u.username LIMIT ?")
	return s.listUsers(ctx, query, store.SearchPattern(queryStr), store.DefaultLimit)
}

func (s *queries) listUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
