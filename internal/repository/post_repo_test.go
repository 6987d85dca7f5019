package repository

import (
	"DevNest/internal/model"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepo_CreateWithTags(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	require.NoError(t, db.Create(&model.Tag{Name: "Go", Slug: "go"}).Error)

	tags, err := NewTagRepository(db).GetOrCreateTags(ctx, []*model.Tag{{Name: "golang", Slug: "go"}, {Name: "Databases", Slug: "databases"}})
	require.NoError(t, err)

	post := &model.Post{UserID: author.ID, Title: "Hello", Slug: "hello", Content: "body", PublishedAt: time.Now()}
	require.NoError(t, repo.CreatePost(ctx, post, tags))

	require.NotZero(t, post.ID)
	require.Len(t, post.Tags, 2)
	assert.Equal(t, "Go", post.Tags[0].Name, "existing tag keeps its first display name")
	assert.Equal(t, "databases", post.Tags[1].Slug)

	loaded, err := repo.GetPostBySlug(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.User.Username)
	assert.Len(t, loaded.Tags, 2)
	require.NotNil(t, loaded.Metric)
	assert.Zero(t, loaded.Metric.ViewsCount)

	var tagCount int64
	db.Model(&model.Tag{}).Count(&tagCount)
	assert.Equal(t, int64(2), tagCount)
}

func TestPostRepo_UpdateReplacesTags(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	post := &model.Post{UserID: author.ID, Title: "Hello", Slug: "hello", Content: "body", PublishedAt: time.Now()}
	require.NoError(t, repo.CreatePost(ctx, post, seedTags(t, db, "go")))

	post.Title = "Hello again"
	post.Content = "new body"
	require.NoError(t, repo.UpdatePost(ctx, post, seedTags(t, db, "rust")))

	loaded, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", loaded.Title)
	assert.Equal(t, "hello", loaded.Slug)
	require.Len(t, loaded.Tags, 1)
	assert.Equal(t, "rust", loaded.Tags[0].Slug)
}

func TestPostRepo_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	post := &model.Post{UserID: author.ID, Title: "Hello", Slug: "hello", Content: "body", PublishedAt: time.Now()}
	require.NoError(t, repo.CreatePost(ctx, post, seedTags(t, db, "go")))
	body := "hi"
	comment := &model.Comment{PostID: post.ID, UserID: author.ID, Body: &body}
	require.NoError(t, db.Create(comment).Error)
	require.NoError(t, db.Create(&model.Reaction{TargetType: model.TargetComment, TargetID: comment.ID, UserID: author.ID, Kind: model.ReactionLike, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&model.Reaction{TargetType: model.TargetPost, TargetID: post.ID, UserID: author.ID, Kind: model.ReactionLike, PostID: post.ID}).Error)

	require.NoError(t, repo.DeletePost(ctx, post.ID))

	_, err := repo.GetPost(ctx, post.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	for _, m := range []any{&model.Reaction{}, &model.Comment{}, &model.PostTag{}, &model.PostMetric{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T should be empty", m)
	}
	var tags int64
	db.Model(&model.Tag{}).Count(&tags)
	assert.Equal(t, int64(1), tags, "tags outlive posts")
}

func TestPostRepo_GetSlugOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	post := seedPost(t, db, author.ID, "taken", time.Now())

	id, taken, err := repo.GetSlugOwner(ctx, "taken")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.Equal(t, post.ID, id)

	_, taken, err = repo.GetSlugOwner(ctx, "free")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestPostRepo_SearchAndOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older := seedPost(t, db, author.ID, "go-basics", base)
	newer := seedPost(t, db, author.ID, "go-advanced", base.Add(time.Hour))
	sameTime := seedPost(t, db, author.ID, "rust-intro", base.Add(time.Hour))

	posts, total, err := repo.SearchPosts(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, posts, 3)
	assert.Equal(t, []uint64{sameTime.ID, newer.ID, older.ID}, []uint64{posts[0].ID, posts[1].ID, posts[2].ID})

	posts, total, err = repo.SearchPosts(ctx, "GO-", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, posts, 1)
	assert.Equal(t, older.ID, posts[0].ID)

	latest, err := repo.GetLatestPosts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, latest, 2)

	mine, err := repo.GetPostsByUserID(ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	byIDs, err := repo.GetPostsByIDs(ctx, []uint64{newer.ID, 9999, older.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, []uint64{newer.ID, older.ID}, []uint64{byIDs[0].ID, byIDs[1].ID})

	exists, err := repo.ExistsPost(ctx, older.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}
