package store

import "strings"

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL UNIQUE,
	image_url TEXT DEFAULT '/static/images/default-pic.png',
	header_image_url TEXT DEFAULT '/static/images/warbler-hero.jpg',
	bio TEXT,
	location TEXT,
	password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text VARCHAR(140) NOT NULL CHECK (length(text) BETWEEN 1 AND 140),
	"timestamp" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_user_id ON messages(user_id);

CREATE TABLE IF NOT EXISTS follows (
	user_being_followed_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	user_following_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	PRIMARY KEY (user_being_followed_id, user_following_id)
);

CREATE INDEX IF NOT EXISTS idx_follows_following ON follows(user_following_id);

CREATE TABLE IF NOT EXISTS likes (
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	message_id INTEGER NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, message_id)
);
`

// Schema returns the DDL statements for dialect, one statement per element.
func Schema(dialect string) []string {
	query := schemaSQL
	if dialect == DialectPostgres {
		query = strings.ReplaceAll(query, "INTEGER PRIMARY KEY AUTOINCREMENT", "SERIAL PRIMARY KEY")
		query = strings.ReplaceAll(query, "DATETIME", "TIMESTAMP")
	}

	var stmts []string
	for _, stmt := range strings.Split(query, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// PurgeOrder lists the tables children first so deletes never trip a foreign key.
var PurgeOrder = []string{"likes", "messages", "follows", "users"}

// SQLiteDSN turns on foreign key enforcement, which sqlite leaves off by default.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}
