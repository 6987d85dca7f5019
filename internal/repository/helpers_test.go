package repository

import (
	"DevNest/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, userID uint64, slug string, publishedAt time.Time) *model.Post {
	t.Helper()
	post := &model.Post{
		UserID:      userID,
		Title:       slug,
		Slug:        slug,
		Content:     "content of " + slug,
		PublishedAt: publishedAt,
	}
	require.NoError(t, db.Omit("User", "Tags", "Metric").Create(post).Error)
	return post
}

func seedTags(t *testing.T, db *gorm.DB, slugs ...string) []*model.Tag {
	t.Helper()
	tags := make([]*model.Tag, 0, len(slugs))
	for _, slug := range slugs {
		tags = append(tags, &model.Tag{Name: slug, Slug: slug})
	}
	stored, err := NewTagRepository(db).GetOrCreateTags(context.Background(), tags)
	require.NoError(t, err)
	return stored
}
