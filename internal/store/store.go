package store

import (
	"context"
	"strings"

	"github.com/pliu/warbler/internal/models"
)

// DefaultLimit caps list queries when the caller passes a non-positive limit.
const DefaultLimit = 100

// Store hands out units of work. Nothing is read or written outside a Tx.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	// Migrate creates the tables if they do not exist.
	Migrate(ctx context.Context) error
	Close() error
}

// Tx is a transaction-scoped handle. Changes become durable on Commit;
// Rollback discards them. Rollback after Commit is a no-op error.
type Tx interface {
	Queries
	Commit() error
	Rollback() error
}

// Queries is everything that can be done inside a unit of work.
type Queries interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int) error
	SearchUsers(ctx context.Context, query string) ([]models.User, error)

	// Message operations
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id int) (*models.Message, error)
	DeleteMessage(ctx context.Context, id int) error
	ListUserMessages(ctx context.Context, userID, limit int) ([]models.Message, error)
	Timeline(ctx context.Context, userID, limit int) ([]models.Message, error)

	// Follow operations
	AddFollow(ctx context.Context, f models.Follows) error
	RemoveFollow(ctx context.Context, f models.Follows) error
	IsFollowing(ctx context.Context, followerID, followedID int) (bool, error)
	ListFollowers(ctx context.Context, userID int) ([]models.User, error)
	ListFollowing(ctx context.Context, userID int) ([]models.User, error)

	// Like operations
	AddLike(ctx context.Context, l models.Like) error
	RemoveLike(ctx context.Context, l models.Like) error
	IsLiked(ctx context.Context, l models.Like) (bool, error)
	ListLikedMessages(ctx context.Context, userID int) ([]models.Message, error)

	Counts(ctx context.Context) (Counts, error)
	// Purge deletes every row from every table.
	Purge(ctx context.Context) error
}

type Counts struct {
	Users    int64 `json:"users"`
	Messages int64 `json:"messages"`
	Follows  int64 `json:"follows"`
	Likes    int64 `json:"likes"`
}

// WithTx runs fn in a new transaction, committing when fn returns nil and
// rolling back otherwise.
func WithTx(ctx context.Context, s Store, fn func(tx Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchPattern turns a username search into a LIKE pattern for
// SearchUsernameClause: a lower-cased substring match with wildcards escaped.
func SearchPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}

// SearchUsernameClause is the WHERE condition matching a SearchPattern.
const SearchUsernameClause = `LOWER(u.username) LIKE ? ESCAPE '\'`

// Limit normalizes a caller supplied list limit.
func Limit(n int) int {
	if n <= 0 || n > DefaultLimit {
		return DefaultLimit
	}
	return n
}
