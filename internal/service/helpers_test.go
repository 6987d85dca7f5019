package service

import (
	"DevNest/internal/api/config"
	"DevNest/internal/api/dto"
	"DevNest/internal/model"
	"DevNest/internal/pkg/redis"
	"DevNest/internal/repository"
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []*model.EngagementEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event *model.EngagementEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) snapshot() []*model.EngagementEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*model.EngagementEvent, len(n.events))
	copy(out, n.events)
	return out
}

// fakeSearcher 记录索引写入，err 非空时模拟索引不可用
type fakeSearcher struct {
	mu      sync.Mutex
	hits    []uint64
	err     error
	indexed []uint64
	removed []uint64
}

func (f *fakeSearcher) SearchPostIDs(_ context.Context, _ string, _, _ int) ([]uint64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.hits, int64(len(f.hits)), nil
}

func (f *fakeSearcher) IndexPost(_ context.Context, post *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, post.ID)
	return nil
}

func (f *fakeSearcher) RemovePost(_ context.Context, postID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, postID)
	return nil
}

type fixture struct {
	db         *gorm.DB
	mr         *miniredis.Miniredis
	notifier   *recordingNotifier
	searcher   *fakeSearcher
	reactions  repository.ReactionRepo
	metrics    repository.PostMetricRepo
	engagement EngagementService
	posts      PostService
	// indexed 与 posts 共享存储，额外接入 searcher
	indexed    PostService
	comments   CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	mr := miniredis.RunT(t)
	redis.UseClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepo(db)
	metricRepo := repository.NewPostMetricRepository(db)
	commentRepo := repository.NewCommentRepo(db)
	reactionRepo := repository.NewReactionRepo(db)
	tagRepo := repository.NewTagRepository(db)

	notifier := &recordingNotifier{}
	searcher := &fakeSearcher{}
	tx := repository.NewTransactor(db)
	engagement := NewEngagementService(tx, metricRepo, commentRepo, reactionRepo, notifier)

	return &fixture{
		db:         db,
		mr:         mr,
		notifier:   notifier,
		searcher:   searcher,
		reactions:  reactionRepo,
		metrics:    metricRepo,
		engagement: engagement,
		posts: NewPostService(tx, postRepo, userRepo, metricRepo, reactionRepo, NewTagResolver(tagRepo), nil,
			engagement, config.EngagementConfig{CacheTTLSeconds: 60}),
		indexed: NewPostService(tx, postRepo, userRepo, metricRepo, reactionRepo, NewTagResolver(tagRepo), searcher,
			engagement, config.EngagementConfig{CacheTTLSeconds: 60}),
		comments: NewCommentService(commentRepo, postRepo, userRepo, reactionRepo, engagement),
	}
}

func (f *fixture) user(t *testing.T, username string) uint64 {
	t.Helper()
	u := &model.User{Username: username}
	require.NoError(t, f.db.Create(u).Error)
	return u.ID
}

func (f *fixture) post(t *testing.T, userID uint64, title string, tags ...string) *dto.PostDetailDTO {
	t.Helper()
	post, err := f.posts.CreatePost(context.Background(), userID, &dto.PostWriteDTO{
		Title:   title,
		Content: "body of " + title,
		Tags:    tags,
	})
	require.NoError(t, err)
	return post
}

func ptr[T any](v T) *T {
	return &v
}
