package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

const userColumns = `u.id, u.email, u.username, COALESCE(u.image_url, ''), COALESCE(u.header_image_url, ''),
	COALESCE(u.bio, ''), COALESCE(u.location, ''), u.password`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.ImageURL, &u.HeaderImageURL, &u.Bio, &u.Location, &u.Password)
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	err := q.tx.QueryRow(ctx, `INSERT INTO users (email, username, image_url, header_image_url, bio, location, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		user.Email, user.Username, user.ImageURL, user.HeaderImageURL, user.Bio, user.Location, user.Password,
	).Scan(&user.ID)
	return classify(err)
}

func (q *queries) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return scanUser(q.tx.QueryRow(ctx, "SELECT "+userColumns+" FROM users u WHERE u.id = $1", id))
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(q.tx.QueryRow(ctx, "SELECT "+userColumns+" FROM users u WHERE u.username = $1", username))
}

func (q *queries) UpdateUser(ctx context.Context, user *models.User) error {
	return q.execOne(ctx, `UPDATE users SET email = $1, username = $2, image_url = $3, header_image_url = $4,
		bio = $5, location = $6, password = $7 WHERE id = $8`,
		user.Email, user.Username, user.ImageURL, user.HeaderImageURL, user.Bio, user.Location, user.Password, user.ID)
}

func (q *queries) DeleteUser(ctx context.Context, id int) error {
	return q.execOne(ctx, "DELETE FROM users WHERE id = $1", id)
}

func (q *queries) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	return q.listUsers(ctx,
		`SELECT `+userColumns+` FROM users u WHERE LOWER(u.username) LIKE $1 ESCAPE '\' ORDER BY u.username LIMIT $2`,
		store.SearchPattern(query), store.DefaultLimit)
}

func (q *queries) listUsers(ctx context.Context, sql string, args ...any) ([]models.User, error) {
	rows, err := q.tx.Query(ctx, sql, args...)
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
	return users, classify(rows.Err())
}
