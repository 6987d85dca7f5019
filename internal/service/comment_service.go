package service

import (
	"DevNest/internal/api/dto"
	"DevNest/internal/model"
	"DevNest/internal/pkg/consts"
	"DevNest/internal/pkg/util"
	"DevNest/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const maxCommentLen = 5000

type CommentService interface {
	// ListComments 返回帖子的评论树，viewerID 为 0 表示未登录
	ListComments(ctx context.Context, postID, viewerID uint64) ([]*dto.CommentDTO, error)
	// CreateComment parentID 必须属于同一帖子
	CreateComment(ctx context.Context, userID, postID uint64, req *dto.CommentWriteDTO) (*dto.CommentDTO, error)
	UpdateComment(ctx context.Context, userID, commentID uint64, req *dto.CommentUpdateDTO) (*dto.CommentDTO, error)
	// DeleteComment 软删除，保留树结构
	DeleteComment(ctx context.Context, userID, commentID uint64) error
	LikeComment(ctx context.Context, userID, commentID uint64) (*dto.CommentReactionDTO, error)
	UnlikeComment(ctx context.Context, userID, commentID uint64) (*dto.CommentReactionDTO, error)
	// UserComments 我的评论，按创建时间倒序
	UserComments(ctx context.Context, userID uint64, query *dto.PageQuery) (*dto.UserCommentPageDTO, error)
}

type commentServiceImpl struct {
	commentRepo   repository.CommentRepo
	postRepo      repository.PostRepo
	userRepo      repository.UserRepo
	reactionRepo  repository.ReactionRepo
	engagementSvc EngagementService
}

func NewCommentService(
	commentRepo repository.CommentRepo,
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	reactionRepo repository.ReactionRepo,
	engagementSvc EngagementService,
) CommentService {
	return &commentServiceImpl{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		userRepo:      userRepo,
		reactionRepo:  reactionRepo,
		engagementSvc: engagementSvc,
	}
}

func validateBody(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return "", ErrBodyBlank
	}
	if utf8.RuneCountInString(body) > maxCommentLen {
		return "", ErrBodyTooLong
	}
	return body, nil
}

func (s *commentServiceImpl) ListComments(ctx context.Context, postID, viewerID uint64) ([]*dto.CommentDTO, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []*dto.CommentDTO{}, nil
	}

	counts, err := s.reactionRepo.CountGroupByPost(ctx, model.TargetComment, postID, model.ReactionLike)
	if err != nil {
		return nil, err
	}

	liked := make(map[uint64]struct{})
	if viewerID != 0 {
		ids, err := s.reactionRepo.GetUserTargetIDs(ctx, model.TargetComment, postID, viewerID, model.ReactionLike)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			liked[id] = struct{}{}
		}
	}

	return BuildCommentTree(comments, counts, liked), nil
}

func (s *commentServiceImpl) CreateComment(ctx context.Context, userID, postID uint64, req *dto.CommentWriteDTO) (*dto.CommentDTO, error) {
	if req == nil {
		return nil, ErrParamInvalid
	}
	body, err := validateBody(req.Body)
	if err != nil {
		return nil, err
	}
	if err = s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	if err = ensureUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err = s.commentRepo.GetCommentInPost(ctx, *req.ParentID, postID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentInvalid
			}
			return nil, err
		}
	}

	comment := &model.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: req.ParentID,
		Body:     &body,
	}
	if err = s.commentRepo.CreateComment(ctx, comment); err != nil {
		log.ErrorContext(ctx, "create comment error", "post_id", postID, "user_id", userID, "err", err)
		return nil, err
	}

	created, err := s.getComment(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	return toCommentNode(created, nil, nil), nil
}

func (s *commentServiceImpl) UpdateComment(ctx context.Context, userID, commentID uint64, req *dto.CommentUpdateDTO) (*dto.CommentDTO, error) {
	if req == nil {
		return nil, ErrParamInvalid
	}
	body, err := validateBody(req.Body)
	if err != nil {
		return nil, err
	}

	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}

	if err = s.commentRepo.UpdateBody(ctx, commentID, body); err != nil {
		log.ErrorContext(ctx, "update comment error", "comment_id", commentID, "err", err)
		return nil, err
	}

	updated, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	count, err := s.reactionRepo.CountByTarget(ctx, model.TargetComment, commentID, model.ReactionLike)
	if err != nil {
		return nil, err
	}
	liked, err := s.reactionRepo.Exists(ctx, repository.ReactionKey{
		TargetType: model.TargetComment,
		TargetID:   commentID,
		UserID:     userID,
		Kind:       model.ReactionLike,
	})
	if err != nil {
		return nil, err
	}

	likedSet := map[uint64]struct{}{}
	if liked {
		likedSet[commentID] = struct{}{}
	}
	return toCommentNode(updated, map[uint64]int64{commentID: count}, likedSet), nil
}

func (s *commentServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrForbidden
	}
	if comment.IsDeleted {
		return nil
	}
	if err = s.commentRepo.SoftDelete(ctx, commentID); err != nil {
		log.ErrorContext(ctx, "delete comment error", "comment_id", commentID, "err", err)
		return err
	}
	return nil
}

func (s *commentServiceImpl) LikeComment(ctx context.Context, userID, commentID uint64) (*dto.CommentReactionDTO, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err = ensureUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	result, err := s.engagementSvc.React(ctx, ReactionTarget{
		Type:   model.TargetComment,
		ID:     commentID,
		PostID: comment.PostID,
	}, userID, model.ReactionLike)
	if err != nil {
		return nil, err
	}
	return &dto.CommentReactionDTO{LikeCount: result.Count, Liked: result.Active}, nil
}

// UnlikeComment 事件携带所属帖子 ID，作为消息分区键
func (s *commentServiceImpl) UnlikeComment(ctx context.Context, userID, commentID uint64) (*dto.CommentReactionDTO, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	result, err := s.engagementSvc.Unreact(ctx, ReactionTarget{
		Type:   model.TargetComment,
		ID:     commentID,
		PostID: comment.PostID,
	}, userID, model.ReactionLike)
	if err != nil {
		return nil, err
	}
	return &dto.CommentReactionDTO{LikeCount: result.Count, Liked: result.Active}, nil
}

func (s *commentServiceImpl) UserComments(ctx context.Context, userID uint64, query *dto.PageQuery) (*dto.UserCommentPageDTO, error) {
	page := max(query.Page, 0)
	size := util.ClampInt(query.Size, consts.DefaultPageSize, 1, consts.MaxPageSize)

	comments, total, err := s.commentRepo.GetCommentsByUserID(ctx, userID, size, page*size)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	counts, err := s.reactionRepo.CountGroupByTargets(ctx, model.TargetComment, ids, model.ReactionLike)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.UserCommentDTO, 0, len(comments))
	for _, c := range comments {
		item := &dto.UserCommentDTO{
			ID:        c.ID,
			PostID:    c.PostID,
			ParentID:  c.ParentID,
			Deleted:   c.IsDeleted,
			LikeCount: counts[c.ID],
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		if !c.IsDeleted {
			item.Body = c.Body
		}
		if c.Post != nil {
			item.PostTitle = c.Post.Title
			item.PostSlug = c.Post.Slug
		}
		items = append(items, item)
	}

	return &dto.UserCommentPageDTO{
		Items:         items,
		TotalElements: total,
		TotalPages:    util.TotalPages(total, size),
		Page:          page,
		Size:          size,
	}, nil
}

func (s *commentServiceImpl) ensurePost(ctx context.Context, postID uint64) error {
	exists, err := s.postRepo.ExistsPost(ctx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPostNotFound
	}
	return nil
}

func (s *commentServiceImpl) getComment(ctx context.Context, commentID uint64) (*model.Comment, error) {
	comment, err := s.commentRepo.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}
