package service

import (
	"DevNest/internal/api/config"
	"DevNest/internal/api/dto"
	"DevNest/internal/model"
	"DevNest/internal/pkg/consts"
	"DevNest/internal/pkg/redis"
	"DevNest/internal/pkg/slug"
	"DevNest/internal/pkg/util"
	"DevNest/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	maxTitleLen   = 200
	maxContentLen = 20000
	maxSummaryLen = 500
	maxHeroURLLen = 400
	maxTags       = 10
	maxTagLen     = 40

	// slugWriteRetries 并发写入撞上唯一索引时重新生成 slug 的次数
	slugWriteRetries = 3
)

type PostService interface {
	// CreatePost 创建帖子并初始化计数快照
	CreatePost(ctx context.Context, userID uint64, req *dto.PostWriteDTO) (*dto.PostDetailDTO, error)
	// UpdatePost 仅作者可改，slug 保持不变
	UpdatePost(ctx context.Context, userID, postID uint64, req *dto.PostWriteDTO) (*dto.PostDetailDTO, error)
	// DeletePost 仅作者可删，级联删除评论、标签关联、计数与表态
	DeletePost(ctx context.Context, userID, postID uint64) error
	// GetPostBySlug 获取详情并记录一次浏览
	GetPostBySlug(ctx context.Context, slug string) (*dto.PostDetailDTO, error)
	// GetEngagement 只读查询帖子互动状态
	GetEngagement(ctx context.Context, postID, viewerID uint64) (*dto.PostEngagementDTO, error)
	ListPosts(ctx context.Context, query *dto.PostListQuery) (*dto.PostPageDTO, error)
	LatestPosts(ctx context.Context, limit int) ([]*dto.PostSummaryDTO, error)
	PostsByAuthor(ctx context.Context, userID uint64) ([]*dto.PostSummaryDTO, error)
	LikePost(ctx context.Context, userID, postID uint64) (*dto.PostEngagementDTO, error)
	UnlikePost(ctx context.Context, userID, postID uint64) (*dto.PostEngagementDTO, error)
}

// PostSearcher 帖子全文检索，未启用时为 nil，列表查询退回 SQL LIKE
type PostSearcher interface {
	SearchPostIDs(ctx context.Context, keyword string, from, size int) ([]uint64, int64, error)
	IndexPost(ctx context.Context, post *model.Post) error
	RemovePost(ctx context.Context, postID uint64) error
}

type postServiceImpl struct {
	tx            repository.Transactor
	postRepo      repository.PostRepo
	userRepo      repository.UserRepo
	metricRepo    repository.PostMetricRepo
	reactionRepo  repository.ReactionRepo
	tagResolver   *TagResolver
	searcher      PostSearcher
	engagementSvc EngagementService
	cfg           config.EngagementConfig
}

func NewPostService(
	tx repository.Transactor,
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	metricRepo repository.PostMetricRepo,
	reactionRepo repository.ReactionRepo,
	tagResolver *TagResolver,
	searcher PostSearcher,
	engagementSvc EngagementService,
	cfg config.EngagementConfig,
) PostService {
	return &postServiceImpl{
		tx:            tx,
		postRepo:      postRepo,
		userRepo:      userRepo,
		metricRepo:    metricRepo,
		reactionRepo:  reactionRepo,
		tagResolver:   tagResolver,
		searcher:      searcher,
		engagementSvc: engagementSvc,
		cfg:           cfg,
	}
}

// postFields 校验并规整后的写入字段
type postFields struct {
	title   string
	content string
	summary *string
	heroURL *string
	tags    []string
}

func validatePost(req *dto.PostWriteDTO) (*postFields, error) {
	if req == nil {
		return nil, ErrParamInvalid
	}
	f := &postFields{
		title:   strings.TrimSpace(req.Title),
		content: req.Content,
		summary: util.TrimToNil(req.Summary),
		heroURL: util.TrimToNil(req.HeroImageURL),
	}
	if f.title == "" {
		return nil, ErrTitleBlank
	}
	if utf8.RuneCountInString(f.title) > maxTitleLen {
		return nil, ErrTitleTooLong
	}
	if strings.TrimSpace(f.content) == "" {
		return nil, ErrContentBlank
	}
	if utf8.RuneCountInString(f.content) > maxContentLen {
		return nil, ErrContentTooLong
	}
	if f.summary != nil && utf8.RuneCountInString(*f.summary) > maxSummaryLen {
		return nil, ErrSummaryTooLong
	}
	if f.heroURL != nil && utf8.RuneCountInString(*f.heroURL) > maxHeroURLLen {
		return nil, ErrHeroURLTooLong
	}
	if len(req.Tags) > maxTags {
		return nil, ErrTooManyTags
	}
	for _, tag := range req.Tags {
		if utf8.RuneCountInString(strings.TrimSpace(tag)) > maxTagLen {
			return nil, ErrTagTooLong
		}
	}
	f.tags = req.Tags
	return f, nil
}

func (s *postServiceImpl) CreatePost(ctx context.Context, userID uint64, req *dto.PostWriteDTO) (*dto.PostDetailDTO, error) {
	fields, err := validatePost(req)
	if err != nil {
		return nil, err
	}
	if err = ensureUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	tags, err := s.tagResolver.Resolve(ctx, fields.tags)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	post := &model.Post{
		UserID:       userID,
		Title:        fields.title,
		Summary:      fields.summary,
		Content:      fields.content,
		HeroImageURL: fields.heroURL,
		PublishedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for attempt := 1; ; attempt++ {
		post.Slug, err = s.uniqueSlug(ctx, fields.title, 0)
		if err != nil {
			return nil, err
		}
		post.ID = 0
		err = s.tx.Transaction(ctx, func(ctx context.Context) error {
			persisted, err := s.tagResolver.Persist(ctx, tags)
			if err != nil {
				return err
			}
			return s.postRepo.CreatePost(ctx, post, persisted)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= slugWriteRetries {
			log.ErrorContext(ctx, "create post error", "user_id", userID, "slug", post.Slug, "err", err)
			return nil, err
		}
		log.WarnContext(ctx, "slug taken concurrently, regenerating", "slug", post.Slug, "attempt", attempt)
	}

	log.InfoContext(ctx, "post created", "post_id", post.ID, "slug", post.Slug)
	return s.loadAndIndex(ctx, post.ID)
}

func (s *postServiceImpl) UpdatePost(ctx context.Context, userID, postID uint64, req *dto.PostWriteDTO) (*dto.PostDetailDTO, error) {
	fields, err := validatePost(req)
	if err != nil {
		return nil, err
	}

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrForbidden
	}

	tags, err := s.tagResolver.Resolve(ctx, fields.tags)
	if err != nil {
		return nil, err
	}

	post.Title = fields.title
	post.Content = fields.content
	post.Summary = fields.summary
	post.HeroImageURL = fields.heroURL
	post.UpdatedAt = time.Now()
	if strings.TrimSpace(post.Slug) == "" {
		if post.Slug, err = s.uniqueSlug(ctx, fields.title, post.ID); err != nil {
			return nil, err
		}
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		persisted, err := s.tagResolver.Persist(ctx, tags)
		if err != nil {
			return err
		}
		return s.postRepo.UpdatePost(ctx, post, persisted)
	})
	if err != nil {
		log.ErrorContext(ctx, "update post error", "post_id", postID, "err", err)
		return nil, err
	}
	return s.loadAndIndex(ctx, post.ID)
}

func (s *postServiceImpl) DeletePost(ctx context.Context, userID, postID uint64) error {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrForbidden
	}
	if err = s.postRepo.DeletePost(ctx, postID); err != nil {
		log.ErrorContext(ctx, "delete post error", "post_id", postID, "err", err)
		return err
	}
	if err = redis.DeletePostCounters(ctx, postID); err != nil {
		log.WarnContext(ctx, "evict post counters error", "post_id", postID, "err", err)
	}
	if s.searcher != nil {
		if err = s.searcher.RemovePost(ctx, postID); err != nil {
			log.WarnContext(ctx, "remove post from search index error", "post_id", postID, "err", err)
		}
	}
	log.InfoContext(ctx, "post deleted", "post_id", postID)
	return nil
}

func (s *postServiceImpl) GetPostBySlug(ctx context.Context, postSlug string) (*dto.PostDetailDTO, error) {
	post, err := s.postRepo.GetPostBySlug(ctx, postSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	metric, err := s.engagementSvc.RecordView(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Metric = metric
	return toPostDetail(post), nil
}

func (s *postServiceImpl) GetEngagement(ctx context.Context, postID, viewerID uint64) (*dto.PostEngagementDTO, error) {
	exists, err := s.postRepo.ExistsPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPostNotFound
	}

	counters, err := s.cachedCounters(ctx, postID)
	if err != nil {
		return nil, err
	}
	res := &dto.PostEngagementDTO{Views: counters.Views, Likes: counters.Likes}

	if viewerID != 0 {
		res.Liked, err = s.reactionRepo.Exists(ctx, repository.ReactionKey{
			TargetType: model.TargetPost,
			TargetID:   postID,
			UserID:     viewerID,
			Kind:       model.ReactionLike,
		})
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *postServiceImpl) ListPosts(ctx context.Context, query *dto.PostListQuery) (*dto.PostPageDTO, error) {
	page := max(query.Page, 0)
	size := util.ClampInt(query.Size, consts.DefaultPageSize, 1, consts.MaxPageSize)
	keyword := strings.TrimSpace(query.Keyword)

	posts, total, err := s.searchPosts(ctx, keyword, size, page*size)
	if err != nil {
		return nil, err
	}
	return &dto.PostPageDTO{
		Items:         toPostSummaries(posts),
		TotalElements: total,
		TotalPages:    util.TotalPages(total, size),
		Page:          page,
		Size:          size,
	}, nil
}

// searchPosts 有关键字且启用检索时走索引，索引不可用时退回 SQL LIKE
func (s *postServiceImpl) searchPosts(ctx context.Context, keyword string, size, offset int) ([]*model.Post, int64, error) {
	if keyword != "" && s.searcher != nil {
		ids, total, err := s.searcher.SearchPostIDs(ctx, keyword, offset, size)
		if err == nil {
			posts, err := s.postRepo.GetPostsByIDs(ctx, ids)
			if err != nil {
				return nil, 0, err
			}
			return posts, total, nil
		}
		log.WarnContext(ctx, "search index query error, falling back to sql", "keyword", keyword, "err", err)
	}
	return s.postRepo.SearchPosts(ctx, keyword, size, offset)
}

func (s *postServiceImpl) LatestPosts(ctx context.Context, limit int) ([]*dto.PostSummaryDTO, error) {
	limit = util.ClampInt(limit, consts.DefaultLatest, 1, consts.MaxPageSize)
	posts, err := s.postRepo.GetLatestPosts(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toPostSummaries(posts), nil
}

func (s *postServiceImpl) PostsByAuthor(ctx context.Context, userID uint64) ([]*dto.PostSummaryDTO, error) {
	posts, err := s.postRepo.GetPostsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toPostSummaries(posts), nil
}

func (s *postServiceImpl) LikePost(ctx context.Context, userID, postID uint64) (*dto.PostEngagementDTO, error) {
	return s.togglePostLike(ctx, userID, postID, true)
}

func (s *postServiceImpl) UnlikePost(ctx context.Context, userID, postID uint64) (*dto.PostEngagementDTO, error) {
	return s.togglePostLike(ctx, userID, postID, false)
}

func (s *postServiceImpl) togglePostLike(ctx context.Context, userID, postID uint64, like bool) (*dto.PostEngagementDTO, error) {
	exists, err := s.postRepo.ExistsPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPostNotFound
	}
	if err = ensureUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	target := ReactionTarget{Type: model.TargetPost, ID: postID, PostID: postID}
	var result *ReactionResult
	if like {
		result, err = s.engagementSvc.React(ctx, target, userID, model.ReactionLike)
	} else {
		result, err = s.engagementSvc.Unreact(ctx, target, userID, model.ReactionLike)
	}
	if err != nil {
		return nil, err
	}
	return &dto.PostEngagementDTO{Views: result.Views, Likes: result.Count, Liked: result.Active}, nil
}

// cachedCounters 先读 Redis，未命中时读快照并按版本号回填；快照不存在视为 0 且不回填
func (s *postServiceImpl) cachedCounters(ctx context.Context, postID uint64) (*redis.PostCounters, error) {
	counters, err := redis.GetPostCounters(ctx, postID)
	if err != nil {
		log.WarnContext(ctx, "read post counters cache error", "post_id", postID, "err", err)
	}
	if counters != nil {
		return counters, nil
	}

	version, verErr := redis.GetCountersVersion(ctx, postID)
	if verErr != nil {
		log.WarnContext(ctx, "read post counters version error", "post_id", postID, "err", verErr)
	}

	metric, err := s.metricRepo.GetMetric(ctx, postID)
	if err != nil {
		return nil, err
	}
	if metric == nil {
		return &redis.PostCounters{}, nil
	}

	counters = &redis.PostCounters{Views: metric.ViewsCount, Likes: metric.LikesCount}
	if verErr != nil {
		return counters, nil
	}
	filled, err := redis.SetPostCounters(ctx, postID, counters, s.cacheTTL(), version)
	if err != nil {
		log.WarnContext(ctx, "fill post counters cache error", "post_id", postID, "err", err)
	} else if !filled {
		log.DebugContext(ctx, "post counters changed during fill, skipped", "post_id", postID)
	}
	return counters, nil
}

func (s *postServiceImpl) cacheTTL() time.Duration {
	if s.cfg.CacheTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(s.cfg.CacheTTLSeconds) * time.Second
}

func (s *postServiceImpl) uniqueSlug(ctx context.Context, title string, excludeID uint64) (string, error) {
	candidate, err := slug.Unique(ctx, title, excludeID, s.cfg.SlugMaxAttempts, s.postRepo.GetSlugOwner)
	if err != nil {
		if errors.Is(err, slug.ErrExhausted) {
			return "", ErrSlugExhausted
		}
		return "", err
	}
	return candidate, nil
}

func ensureUser(ctx context.Context, userRepo repository.UserRepo, userID uint64) error {
	if _, err := userRepo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *postServiceImpl) getPost(ctx context.Context, postID uint64) (*model.Post, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// loadAndIndex 重新加载帖子并尽力同步检索索引，索引失败不影响写入结果
func (s *postServiceImpl) loadAndIndex(ctx context.Context, postID uint64) (*dto.PostDetailDTO, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if s.searcher != nil {
		if err = s.searcher.IndexPost(ctx, post); err != nil {
			log.WarnContext(ctx, "index post error", "post_id", postID, "err", err)
		}
	}
	return toPostDetail(post), nil
}

func toPostDetail(post *model.Post) *dto.PostDetailDTO {
	detail := &dto.PostDetailDTO{}
	_ = copier.Copy(detail, post)
	_ = copier.Copy(&detail.Tags, &post.Tags)
	if detail.Tags == nil {
		detail.Tags = []dto.TagDTO{}
	}
	detail.Author = toAuthorDTO(&post.User)
	if post.Metric != nil {
		detail.Views = post.Metric.ViewsCount
		detail.Likes = post.Metric.LikesCount
	}
	return detail
}

func toPostSummaries(posts []*model.Post) []*dto.PostSummaryDTO {
	items := make([]*dto.PostSummaryDTO, 0, len(posts))
	for _, post := range posts {
		item := &dto.PostSummaryDTO{}
		_ = copier.Copy(item, post)
		_ = copier.Copy(&item.Tags, &post.Tags)
		if item.Tags == nil {
			item.Tags = []dto.TagDTO{}
		}
		item.Author = toAuthorDTO(&post.User)
		if post.Metric != nil {
			item.Views = post.Metric.ViewsCount
			item.Likes = post.Metric.LikesCount
		}
		items = append(items, item)
	}
	return items
}
