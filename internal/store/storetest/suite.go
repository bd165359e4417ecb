// Package storetest holds the behaviour every store.Store backend must share.
// Backends call Run from their own tests with a constructor for a migrated store.
package storetest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

// Opener returns a migrated store. It may hand back the same database for
// every call; each case purges all rows before it starts.
type Opener func(t *testing.T) store.Store

// Run executes the conformance cases against the stores produced by open.
func Run(t *testing.T, open Opener) {
	cases := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Purge", testPurge},
		{"CreateAndGetUser", testCreateAndGetUser},
		{"DuplicateUser", testDuplicateUser},
		{"UpdateUser", testUpdateUser},
		{"SearchUsers", testSearchUsers},
		{"SearchUsersLiteral", testSearchUsersLiteral},
		{"CreateMessage", testCreateMessage},
		{"MessageConstraints", testMessageConstraints},
		{"ListUserMessages", testListUserMessages},
		{"Follows", testFollows},
		{"FollowConstraints", testFollowConstraints},
		{"Timeline", testTimeline},
		{"Likes", testLikes},
		{"DeleteUserCascades", testDeleteUserCascades},
		{"Rollback", testRollback},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := open(t)
			inTx(t, s, func(q store.Queries) {
				require.NoError(t, q.Purge(context.Background()))
			})
			tc.fn(t, s)
		})
	}
}

// inTx runs fn in a committed transaction.
func inTx(t *testing.T, s store.Store, fn func(q store.Queries)) {
	t.Helper()
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit())
}

// expectErr runs fn in its own transaction, rolls it back and checks the error.
// Postgres aborts a transaction after a failed statement, so every expected
// failure gets a fresh one.
func expectErr(t *testing.T, s store.Store, target error, fn func(q store.Queries) error) {
	t.Helper()
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	err = fn(tx)
	_ = tx.Rollback()
	assert.ErrorIs(t, err, target)
}

func createUser(t *testing.T, s store.Store, username string) *models.User {
	t.Helper()
	u := models.NewUser(username, username+"@test.com", "HASHED_"+username)
	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.CreateUser(context.Background(), u))
	})
	require.NotZero(t, u.ID)
	return u
}

func createMessage(t *testing.T, s store.Store, userID int, text string, at time.Time) *models.Message {
	t.Helper()
	m := &models.Message{Text: text, UserID: userID, Timestamp: at}
	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.CreateMessage(context.Background(), m))
	})
	require.NotZero(t, m.ID)
	return m
}

func counts(t *testing.T, s store.Store) store.Counts {
	t.Helper()
	var c store.Counts
	inTx(t, s, func(q store.Queries) {
		var err error
		c, err = q.Counts(context.Background())
		require.NoError(t, err)
	})
	return c
}

func usernames(users []models.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names
}

func texts(msgs []models.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testPurge(t *testing.T, s store.Store) {
	ctx := context.Background()
	u1 := createUser(t, s, "testuser")
	u2 := createUser(t, s, "testuser2")
	m := createMessage(t, s, u1.ID, "hello", base)
	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.AddFollow(ctx, models.Follows{UserBeingFollowedID: u1.ID, UserFollowingID: u2.ID}))
		require.NoError(t, q.AddLike(ctx, models.Like{UserID: u2.ID, MessageID: m.ID}))
	})

	assert.Equal(t, store.Counts{Users: 2, Messages: 1, Follows: 1, Likes: 1}, counts(t, s))

	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.Purge(ctx))
	})
	assert.Equal(t, store.Counts{}, counts(t, s))
}

func testCreateAndGetUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "testuser")

	inTx(t, s, func(q store.Queries) {
		got, err := q.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "testuser", got.Username)
		assert.Equal(t, "testuser@test.com", got.Email)
		assert.Equal(t, u.Password, got.Password)
		assert.Equal(t, models.DefaultImageURL, got.ImageURL)
		assert.Equal(t, models.DefaultHeaderImageURL, got.HeaderImageURL)
		assert.Empty(t, got.Bio)

		byName, err := q.GetUserByUsername(ctx, "testuser")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byName.ID)
	})

	expectErr(t, s, store.ErrNotFound, func(q store.Queries) error {
		_, err := q.GetUserByID(ctx, u.ID+1000)
		return err
	})
	expectErr(t, s, store.ErrNotFound, func(q store.Queries) error {
		_, err := q.GetUserByUsername(ctx, "nobody")
		return err
	})
}

func testDuplicateUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	createUser(t, s, "testuser")

	expectErr(t, s, store.ErrDuplicate, func(q store.Queries) error {
		return q.CreateUser(ctx, models.NewUser("testuser", "other@test.com", "pw"))
	})
	expectErr(t, s, store.ErrDuplicate, func(q store.Queries) error {
		return q.CreateUser(ctx, models.NewUser("other", "testuser@test.com", "pw"))
	})

	assert.Equal(t, int64(1), counts(t, s).Users)
}

func testUpdateUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "testuser")
	createUser(t, s, "taken")

	u.Bio = "I warble"
	u.Location = "Oakland"
	u.ImageURL = "https://example.com/me.png"
	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.UpdateUser(ctx, u))
	})
	inTx(t, s, func(q store.Queries) {
		got, err := q.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "I warble", got.Bio)
		assert.Equal(t, "Oakland", got.Location)
		assert.Equal(t, "https://example.com/me.png", got.ImageURL)
	})

	expectErr(t, s, store.ErrDuplicate, func(q store.Queries) error {
		clash := *u
		clash.Username = "taken"
		return q.UpdateUser(ctx, &clash)
	})
	expectErr(t, s, store.ErrNotFound, func(q store.Queries) error {
		ghost := *u
		ghost.ID = u.ID + 1000
		ghost.Username = "ghost"
		ghost.Email = "ghost@test.com"
		return q.UpdateUser(ctx, &ghost)
	})
}

func testSearchUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	createUser(t, s, "alice")
	createUser(t, s, "bob")
	createUser(t, s, "alex")

	inTx(t, s, func(q store.Queries) {
		users, err := q.SearchUsers(ctx, "al")
		require.NoError(t, err)
		assert.Equal(t, []string{"alex", "alice"}, usernames(users))

		all, err := q.SearchUsers(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)

		none, err := q.SearchUsers(ctx, "zed")
		require.NoError(t, err)
		assert.Empty(t, none)

		upper, err := q.SearchUsers(ctx, "AL")
		require.NoError(t, err)
		assert.Equal(t, []string{"alex", "alice"}, usernames(upper))
	})
}

func testSearchUsersLiteral(t *testing.T, s store.Store) {
	ctx := context.Background()
	createUser(t, s, "alice")
	createUser(t, s, "bob_smith")
	createUser(t, s, "100pct")

	inTx(t, s, func(q store.Queries) {
		underscore, err := q.SearchUsers(ctx, "_")
		require.NoError(t, err)
		assert.Equal(t, []string{"bob_smith"}, usernames(underscore))

		percent, err := q.SearchUsers(ctx, "%")
		require.NoError(t, err)
		assert.Empty(t, percent)

		backslash, err := q.SearchUsers(ctx, `\`)
		require.NoError(t, err)
		assert.Empty(t, backslash)
	})
}

func testCreateMessage(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "testuser")

	before := time.Now().UTC().Add(-time.Second)
	m := &models.Message{Text: "This is some text", UserID: u.ID}
	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.CreateMessage(ctx, m))
	})
	require.NotZero(t, m.ID)
	require.False(t, m.Timestamp.IsZero())
	assert.True(t, m.Timestamp.After(before))

	inTx(t, s, func(q store.Queries) {
		got, err := q.GetMessage(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "This is some text", got.Text)
		assert.Equal(t, u.ID, got.UserID)
		assert.Equal(t, "testuser", got.Username)
		assert.WithinDuration(t, m.Timestamp, got.Timestamp, time.Second)
	})

	expectErr(t, s, store.ErrNotFound, func(q store.Queries) error {
		_, err := q.GetMessage(ctx, m.ID+1000)
		return err
	})
	expectErr(t, s, store.ErrNotFound, func(q store.Queries) error {
		return q.DeleteMessage(ctx, m.ID+1000)
	})

	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.DeleteMessage(ctx, m.ID))
	})
	assert.Zero(t, counts(t, s).Messages)
}

func testMessageConstraints(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "testuser")

	expectErr(t, s, store.ErrForeignKey, func(q store.Queries) error {
		return q.CreateMessage(ctx, &models.Message{Text: "orphan", UserID: u.ID + 1000})
	})
	expectErr(t, s, store.ErrConstraint, func(q store.Queries) error {
		return q.CreateMessage(ctx, &models.Message{Text: "", UserID: u.ID})
	})
	expectErr(t, s, store.ErrConstraint, func(q store.Queries) error {
		return q.CreateMessage(ctx, &models.Message{Text: strings.Repeat("x", models.MaxMessageLength+1), UserID: u.ID})
	})

	createMessage(t, s, u.ID, strings.Repeat("x", models.MaxMessageLength), base)
	assert.Equal(t, int64(1), counts(t, s).Messages)
}

func testListUserMessages(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "testuser")
	other := createUser(t, s, "other")
	createMessage(t, s, u.ID, "first", base)
	createMessage(t, s, u.ID, "second", base.Add(time.Minute))
	createMessage(t, s, u.ID, "third", base.Add(2*time.Minute))
	createMessage(t, s, other.ID, "not mine", base.Add(3*time.Minute))

	inTx(t, s, func(q store.Queries) {
		msgs, err := q.ListUserMessages(ctx, u.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, texts(msgs))

		limited, err := q.ListUserMessages(ctx, u.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second"}, texts(limited))
	})
}

func testFollows(t *testing.T, s store.Store) {
	ctx := context.Background()
	user1 := createUser(t, s, "testuser")
	user2 := createUser(t, s, "testuser2")
	user3 := createUser(t, s, "testuser3")

	// user2 follows user1
	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.AddFollow(ctx, models.Follows{UserBeingFollowedID: user1.ID, UserFollowingID: user2.ID}))
	})

	inTx(t, s, func(q store.Queries) {
		ok, err := q.IsFollowing(ctx, user2.ID, user1.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = q.IsFollowing(ctx, user1.ID, user2.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = q.IsFollowing(ctx, user3.ID, user1.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		followers, err := q.ListFollowers(ctx, user1.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"testuser2"}, usernames(followers))

		following, err := q.ListFollowing(ctx, user2.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"testuser"}, usernames(following))

		none, err := q.ListFollowers(ctx, user2.ID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.RemoveFollow(ctx, models.Follows{UserBeingFollowedID: user1.ID, UserFollowingID: user2.ID}))
	})
	inTx(t, s, func(q store.Queries) {
		ok, err := q.IsFollowing(ctx, user2.ID, user1.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
	expectErr(t, s, store.ErrNotFound, func(q store.Queries) error {
		return q.RemoveFollow(ctx, models.Follows{UserBeingFollowedID: user1.ID, UserFollowingID: user2.ID})
	})
}

func testFollowConstraints(t *testing.T, s store.Store) {
	ctx := context.Background()
	user1 := createUser(t, s, "testuser")
	user2 := createUser(t, s, "testuser2")
	edge := models.Follows{UserBeingFollowedID: user1.ID, UserFollowingID: user2.ID}

	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.AddFollow(ctx, edge))
		// The reverse edge is a different pair.
		require.NoError(t, q.AddFollow(ctx, models.Follows{UserBeingFollowedID: user2.ID, UserFollowingID: user1.ID}))
	})

	expectErr(t, s, store.ErrDuplicate, func(q store.Queries) error {
		return q.AddFollow(ctx, edge)
	})
	expectErr(t, s, store.ErrForeignKey, func(q store.Queries) error {
		return q.AddFollow(ctx, models.Follows{UserBeingFollowedID: user1.ID + 1000, UserFollowingID: user2.ID})
	})
	assert.Equal(t, int64(2), counts(t, s).Follows)
}

func testTimeline(t *testing.T, s store.Store) {
	ctx := context.Background()
	me := createUser(t, s, "me")
	friend := createUser(t, s, "friend")
	stranger := createUser(t, s, "stranger")

	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.AddFollow(ctx, models.Follows{UserBeingFollowedID: friend.ID, UserFollowingID: me.ID}))
	})
	createMessage(t, s, me.ID, "mine", base)
	createMessage(t, s, friend.ID, "friend's", base.Add(time.Minute))
	createMessage(t, s, stranger.ID, "stranger's", base.Add(2*time.Minute))

	inTx(t, s, func(q store.Queries) {
		msgs, err := q.Timeline(ctx, me.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"friend's", "mine"}, texts(msgs))
		assert.Equal(t, "friend", msgs[0].Username)

		theirs, err := q.Timeline(ctx, stranger.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"stranger's"}, texts(theirs))
	})
}

func testLikes(t *testing.T, s store.Store) {
	ctx := context.Background()
	author := createUser(t, s, "author")
	fan := createUser(t, s, "fan")
	m1 := createMessage(t, s, author.ID, "one", base)
	m2 := createMessage(t, s, author.ID, "two", base.Add(time.Minute))
	like := models.Like{UserID: fan.ID, MessageID: m1.ID}

	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.AddLike(ctx, like))
		require.NoError(t, q.AddLike(ctx, models.Like{UserID: fan.ID, MessageID: m2.ID}))
	})
	expectErr(t, s, store.ErrDuplicate, func(q store.Queries) error {
		return q.AddLike(ctx, like)
	})
	expectErr(t, s, store.ErrForeignKey, func(q store.Queries) error {
		return q.AddLike(ctx, models.Like{UserID: fan.ID, MessageID: m2.ID + 1000})
	})

	inTx(t, s, func(q store.Queries) {
		ok, err := q.IsLiked(ctx, like)
		require.NoError(t, err)
		assert.True(t, ok)

		liked, err := q.ListLikedMessages(ctx, fan.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"two", "one"}, texts(liked))

		require.NoError(t, q.RemoveLike(ctx, like))
		ok, err = q.IsLiked(ctx, like)
		require.NoError(t, err)
		assert.False(t, ok)
	})
	expectErr(t, s, store.ErrNotFound, func(q store.Queries) error {
		return q.RemoveLike(ctx, like)
	})
}

func testDeleteUserCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	doomed := createUser(t, s, "doomed")
	survivor := createUser(t, s, "survivor")
	theirs := createMessage(t, s, doomed.ID, "bye", base)
	mine := createMessage(t, s, survivor.ID, "still here", base)

	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.AddFollow(ctx, models.Follows{UserBeingFollowedID: doomed.ID, UserFollowingID: survivor.ID}))
		require.NoError(t, q.AddFollow(ctx, models.Follows{UserBeingFollowedID: survivor.ID, UserFollowingID: doomed.ID}))
		require.NoError(t, q.AddLike(ctx, models.Like{UserID: survivor.ID, MessageID: theirs.ID}))
		require.NoError(t, q.AddLike(ctx, models.Like{UserID: doomed.ID, MessageID: mine.ID}))
	})

	inTx(t, s, func(q store.Queries) {
		require.NoError(t, q.DeleteUser(ctx, doomed.ID))
	})

	assert.Equal(t, store.Counts{Users: 1, Messages: 1}, counts(t, s))
	expectErr(t, s, store.ErrNotFound, func(q store.Queries) error {
		return q.DeleteUser(ctx, doomed.ID)
	})
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateUser(ctx, models.NewUser("ghost", "ghost@test.com", "pw")))
	require.NoError(t, tx.Rollback())

	assert.Zero(t, counts(t, s).Users)

	err = store.WithTx(ctx, s, func(tx store.Tx) error {
		if err := tx.CreateUser(ctx, models.NewUser("first", "first@test.com", "pw")); err != nil {
			return err
		}
		return tx.CreateUser(ctx, models.NewUser("first", "second@test.com", "pw"))
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.Zero(t, counts(t, s).Users)
}
