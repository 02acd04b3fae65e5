package repositories

import (
	"context"
	"testing"

	"github.com/digitalblog/backoffice/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with foreign keys
// enforced and the schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to :memory: would be a separate database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

func mustUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, NewPostgresUserRepository(db).CreateUser(context.Background(), u))
	return u
}

func mustPost(t *testing.T, db *gorm.DB, author *models.User, title string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: author.ID, Title: title, Body: "body of " + title}
	require.NoError(t, NewPostgresPostRepository(db).CreatePost(context.Background(), p))
	return p
}

func mustComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, text string) *models.Comment {
	t.Helper()
	c := &models.Comment{CommentedOn: post.ID, CommentedBy: author.ID, Comment: text}
	require.NoError(t, NewPostgresCommentRepository(db).CreateComment(context.Background(), c))
	return c
}

func count(t *testing.T, db *gorm.DB, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
