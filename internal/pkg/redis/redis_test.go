package redis

import (
	"DevNest/internal/model"
	"DevNest/internal/pkg/consts"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	UseClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	return mr
}

func TestPostCountersRoundTrip(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	c, err := GetPostCounters(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, c)

	filled, err := SetPostCounters(ctx, 1, &PostCounters{Views: 7, Likes: 2}, time.Minute, 0)
	require.NoError(t, err)
	assert.True(t, filled)
	c, err = GetPostCounters(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &PostCounters{Views: 7, Likes: 2}, c)
	assert.Equal(t, time.Minute, mr.TTL(consts.PostEngagementKey+"1"))

	require.NoError(t, DeletePostCounters(ctx, 1))
	assert.False(t, mr.Exists(consts.PostEngagementKey+"1"))
}

func TestSetPostCountersSkipsAfterConcurrentEviction(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	version, err := GetCountersVersion(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, version)

	// 回源读取期间发生一次写入失效
	require.NoError(t, DeletePostCounters(ctx, 5))

	filled, err := SetPostCounters(ctx, 5, &PostCounters{Views: 1}, time.Minute, version)
	require.NoError(t, err)
	assert.False(t, filled)
	assert.False(t, mr.Exists(consts.PostEngagementKey+"5"))

	version, err = GetCountersVersion(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, 24*time.Hour, mr.TTL(consts.PostEngagementVerKey+"5"))

	filled, err = SetPostCounters(ctx, 5, &PostCounters{Views: 2, Likes: 1}, time.Minute, version)
	require.NoError(t, err)
	assert.True(t, filled)
	c, err := GetPostCounters(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, &PostCounters{Views: 2, Likes: 1}, c)
}

func TestMarkDirtyAndRename(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, MarkDirty(ctx, consts.PostDirtyKey, 3, 4, 3))
	members, err := mr.Members(consts.PostDirtyKey)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"3", "4"}, members)

	ok, err := Rename(ctx, consts.PostDirtyKey, consts.PostDirtyKey+consts.ProcessingSuffix)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Rename(ctx, consts.PostDirtyKey, consts.PostDirtyKey+consts.ProcessingSuffix)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTryLock(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	ok, err := TryLock(ctx, "lock:a", "x", time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = TryLock(ctx, "lock:a", "y", time.Minute, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	UnLock(ctx, "lock:a", "y")
	v, _ := GetValue(ctx, "lock:a")
	assert.Equal(t, "x", v)

	UnLock(ctx, "lock:a", "x")
	v, _ = GetValue(ctx, "lock:a")
	assert.Equal(t, "", v)
}

func TestMarkEngagementDirty(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, MarkEngagementDirty(ctx, &model.EngagementEvent{Type: model.EventLike, TargetType: model.TargetPost, TargetID: 5, PostID: 5}))
	require.NoError(t, MarkEngagementDirty(ctx, &model.EngagementEvent{Type: model.EventUnlike, TargetType: model.TargetComment, TargetID: 9, PostID: 5}))
	require.NoError(t, MarkEngagementDirty(ctx, &model.EngagementEvent{Type: model.EventView, TargetType: model.TargetPost, TargetID: 6, PostID: 6}))

	posts, _ := mr.Members(consts.PostDirtyKey)
	comments, _ := mr.Members(consts.CommentLikeDirtyKey)
	assert.Equal(t, []string{"5"}, posts)
	assert.Equal(t, []string{"9"}, comments)
}
