package crud

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nasahack25/airq/domain"
)

// testDB opens a fresh in-memory sqlite database, migrated to the full
// schema. The pool is capped at a single connection so that concurrent
// transactions queue instead of fighting over sqlite's file lock.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(domain.User{}, domain.Post{}, domain.Comment{}, domain.Like{})
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		RememberHash: "remember-" + username,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, author *domain.User, content string) *domain.Post {
	t.Helper()
	post := &domain.Post{AuthorID: author.ID, Content: content}
	require.NoError(t, db.Create(post).Error)
	return post
}

func reloadPost(t *testing.T, db *gorm.DB, id int) *domain.Post {
	t.Helper()
	var post domain.Post
	require.NoError(t, db.First(&post, "id = ?", id).Error)
	return &post
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, postID int) int {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where("post_id = ?", postID).Count(&count).Error)
	return int(count)
}
