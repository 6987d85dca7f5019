package service

import (
	"DevNest/internal/api/dto"
	"DevNest/internal/model"
	"DevNest/internal/pkg/consts"
	"DevNest/internal/pkg/redis"
	"DevNest/internal/repository"
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	post := f.post(t, author, "Idempotent likes")
	target := ReactionTarget{Type: model.TargetPost, ID: post.ID, PostID: post.ID}

	first, err := f.engagement.React(ctx, target, reader, model.ReactionLike)
	require.NoError(t, err)
	second, err := f.engagement.React(ctx, target, reader, model.ReactionLike)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Count)
	assert.True(t, first.Active)
	assert.Equal(t, int64(1), second.Count)
	assert.True(t, second.Active)
	assert.Len(t, f.notifier.snapshot(), 1)

	metric, err := f.metrics.GetMetric(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, metric.LastLikeAt)
}

func TestUnreactWithoutReaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	post := f.post(t, author, "Nothing to undo")
	target := ReactionTarget{Type: model.TargetPost, ID: post.ID, PostID: post.ID}

	res, err := f.engagement.Unreact(ctx, target, author, model.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Count)
	assert.False(t, res.Active)
	assert.Empty(t, f.notifier.snapshot())
}

func TestUnreactClampsAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	post := f.post(t, author, "Drifted counter")

	require.NoError(t, f.db.Create(&model.Reaction{
		TargetType: model.TargetPost, TargetID: post.ID, UserID: author, Kind: model.ReactionLike, PostID: post.ID,
	}).Error)

	res, err := f.engagement.Unreact(ctx, ReactionTarget{Type: model.TargetPost, ID: post.ID, PostID: post.ID}, author, model.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Count)
	assert.False(t, res.Active)
}

func TestConcurrentReactsCountOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	post := f.post(t, author, "Racing likes")
	target := ReactionTarget{Type: model.TargetPost, ID: post.ID, PostID: post.ID}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engagement.React(ctx, target, author, model.ReactionLike)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	metric, err := f.metrics.GetMetric(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), metric.LikesCount)
}

func TestRecordViewCountsEveryCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	post := f.post(t, author, "Viewed")

	for i := 0; i < 3; i++ {
		_, err := f.engagement.RecordView(ctx, post.ID)
		require.NoError(t, err)
	}
	metric, err := f.engagement.RecordView(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), metric.ViewsCount)
	require.NotNil(t, metric.LastViewAt)
}

func TestRecordViewCreatesMissingSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	post := f.post(t, author, "No snapshot yet")
	require.NoError(t, f.db.Where("post_id = ?", post.ID).Delete(&model.PostMetric{}).Error)

	metric, err := f.engagement.RecordView(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), metric.ViewsCount)
	assert.Equal(t, int64(0), metric.LikesCount)
}

func TestReactEvictsCachedCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	post := f.post(t, author, "Cached")

	filled, err := redis.SetPostCounters(ctx, post.ID, &redis.PostCounters{Views: 10}, time.Minute, 0)
	require.NoError(t, err)
	require.True(t, filled)
	_, err = f.engagement.React(ctx, ReactionTarget{Type: model.TargetPost, ID: post.ID, PostID: post.ID}, author, model.ReactionLike)
	require.NoError(t, err)

	assert.False(t, f.mr.Exists(consts.PostEngagementKey+strconv.FormatUint(post.ID, 10)))
}

func TestReconcileRepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	post := f.post(t, author, "Reconciled")
	comment, err := f.comments.CreateComment(ctx, reader, post.ID, &dto.CommentWriteDTO{Body: "hello"})
	require.NoError(t, err)

	_, err = f.engagement.React(ctx, ReactionTarget{Type: model.TargetPost, ID: post.ID, PostID: post.ID}, reader, model.ReactionLike)
	require.NoError(t, err)
	_, err = f.engagement.React(ctx, ReactionTarget{Type: model.TargetComment, ID: comment.ID, PostID: post.ID}, reader, model.ReactionLike)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&model.PostMetric{}).Where("post_id = ?", post.ID).Update("likes_count", 42).Error)
	require.NoError(t, f.db.Model(&model.Comment{}).Where("id = ?", comment.ID).Update("likes_count", 0).Error)

	require.NoError(t, f.engagement.ReconcilePostLikes(ctx, post.ID))
	require.NoError(t, f.engagement.ReconcileCommentLikes(ctx, comment.ID))

	metric, err := f.metrics.GetMetric(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), metric.LikesCount)

	var stored model.Comment
	require.NoError(t, f.db.First(&stored, comment.ID).Error)
	assert.Equal(t, int64(1), stored.LikesCount)

	assert.NoError(t, f.engagement.ReconcilePostLikes(ctx, 9999))
	assert.NoError(t, f.engagement.ReconcileCommentLikes(ctx, 9999))
}

func TestDirtySetNotifier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n := NewDirtySetNotifier()
	require.NoError(t, n.Notify(ctx, &model.EngagementEvent{Type: model.EventLike, TargetType: model.TargetComment, TargetID: 12, PostID: 3}))

	members, err := f.mr.Members(consts.CommentLikeDirtyKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"12"}, members)
}

type txMarkKey struct{}

// markingTransactor 为每次事务编号，仓储包装据此确认调用发生在同一事务内
type markingTransactor struct {
	inner repository.Transactor
	n     int
}

func (m *markingTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.n++
	id := m.n
	return m.inner.Transaction(ctx, func(ctx context.Context) error {
		return fn(context.WithValue(ctx, txMarkKey{}, id))
	})
}

func opAt(ctx context.Context, op string) string {
	id, _ := ctx.Value(txMarkKey{}).(int)
	return op + "@" + strconv.Itoa(id)
}

type recordingMetricRepo struct {
	repository.PostMetricRepo
	ops *[]string
}

func (r *recordingMetricRepo) LockMetric(ctx context.Context, postID uint64) (*model.PostMetric, error) {
	*r.ops = append(*r.ops, opAt(ctx, "lock"))
	return r.PostMetricRepo.LockMetric(ctx, postID)
}

func (r *recordingMetricRepo) SetLikes(ctx context.Context, postID uint64, likes int64) error {
	*r.ops = append(*r.ops, opAt(ctx, "set"))
	return r.PostMetricRepo.SetLikes(ctx, postID, likes)
}

type recordingCommentRepo struct {
	repository.CommentRepo
	ops *[]string
}

func (r *recordingCommentRepo) LockLikesCount(ctx context.Context, id uint64) (int64, error) {
	*r.ops = append(*r.ops, opAt(ctx, "lock"))
	return r.CommentRepo.LockLikesCount(ctx, id)
}

func (r *recordingCommentRepo) SetLikesCount(ctx context.Context, id uint64, count int64) error {
	*r.ops = append(*r.ops, opAt(ctx, "set"))
	return r.CommentRepo.SetLikesCount(ctx, id, count)
}

type recordingReactionRepo struct {
	repository.ReactionRepo
	ops *[]string
}

func (r *recordingReactionRepo) CountByTarget(ctx context.Context, targetType string, targetID uint64, kind string) (int64, error) {
	*r.ops = append(*r.ops, opAt(ctx, "count"))
	return r.ReactionRepo.CountByTarget(ctx, targetType, targetID, kind)
}

func TestReconcileCountsAndSetsUnderRowLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	post := f.post(t, author, "Locked reconcile")
	comment, err := f.comments.CreateComment(ctx, reader, post.ID, &dto.CommentWriteDTO{Body: "hello"})
	require.NoError(t, err)

	_, err = f.engagement.React(ctx, ReactionTarget{Type: model.TargetPost, ID: post.ID, PostID: post.ID}, reader, model.ReactionLike)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.PostMetric{}).Where("post_id = ?", post.ID).Update("likes_count", 7).Error)
	require.NoError(t, f.db.Model(&model.Comment{}).Where("id = ?", comment.ID).Update("likes_count", 3).Error)

	var ops []string
	svc := NewEngagementService(
		&markingTransactor{inner: repository.NewTransactor(f.db)},
		&recordingMetricRepo{PostMetricRepo: f.metrics, ops: &ops},
		&recordingCommentRepo{CommentRepo: repository.NewCommentRepo(f.db), ops: &ops},
		&recordingReactionRepo{ReactionRepo: f.reactions, ops: &ops},
		f.notifier,
	)

	require.NoError(t, svc.ReconcilePostLikes(ctx, post.ID))
	assert.Equal(t, []string{"lock@1", "count@1", "set@1"}, ops)

	ops = ops[:0]
	require.NoError(t, svc.ReconcileCommentLikes(ctx, comment.ID))
	assert.Equal(t, []string{"lock@2", "count@2", "set@2"}, ops)

	ops = ops[:0]
	require.NoError(t, svc.ReconcilePostLikes(ctx, post.ID))
	assert.Equal(t, []string{"lock@3", "count@3"}, ops)

	metric, err := f.metrics.GetMetric(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), metric.LikesCount)
}
