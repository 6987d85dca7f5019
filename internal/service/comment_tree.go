package service

import (
	"DevNest/internal/api/dto"
	"DevNest/internal/model"
	"sort"
)

// BuildCommentTree 将帖子下的扁平评论组装为回复树。
// 同级按创建时间升序、ID 升序；父评论不在输入中的评论作为根节点。
// 软删除的评论保留位置与子回复，正文为空。likeCounts 缺省为 0，likedByViewer 为空表示未登录或未点赞。
func BuildCommentTree(comments []*model.Comment, likeCounts map[uint64]int64, likedByViewer map[uint64]struct{}) []*dto.CommentDTO {
	sorted := make([]*model.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	present := make(map[uint64]struct{}, len(sorted))
	for _, c := range sorted {
		present[c.ID] = struct{}{}
	}

	roots := make([]*model.Comment, 0)
	children := make(map[uint64][]*model.Comment)
	for _, c := range sorted {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if _, ok := present[*c.ParentID]; !ok || *c.ParentID == c.ID {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	type frame struct {
		comment *model.Comment
		node    *dto.CommentDTO
	}

	result := make([]*dto.CommentDTO, 0, len(roots))
	for _, root := range roots {
		result = append(result, toCommentNode(root, likeCounts, likedByViewer))
	}

	stack := make([]frame, 0, len(sorted))
	visited := make(map[uint64]struct{}, len(sorted))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{comment: roots[i], node: result[i]})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[top.comment.ID]; ok {
			continue
		}
		visited[top.comment.ID] = struct{}{}

		kids := children[top.comment.ID]
		top.node.Replies = make([]*dto.CommentDTO, 0, len(kids))
		for _, kid := range kids {
			top.node.Replies = append(top.node.Replies, toCommentNode(kid, likeCounts, likedByViewer))
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{comment: kids[i], node: top.node.Replies[i]})
		}
	}

	return result
}

func toCommentNode(c *model.Comment, likeCounts map[uint64]int64, likedByViewer map[uint64]struct{}) *dto.CommentDTO {
	node := &dto.CommentDTO{
		ID:        c.ID,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Deleted:   c.IsDeleted,
		LikeCount: likeCounts[c.ID],
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Replies:   []*dto.CommentDTO{},
	}
	if !c.IsDeleted && c.Body != nil {
		body := *c.Body
		node.Body = &body
	}
	if _, ok := likedByViewer[c.ID]; ok {
		node.Liked = true
	}
	if c.User != nil {
		node.Author = toAuthorDTO(c.User)
	}
	return node
}

func toAuthorDTO(u *model.User) *dto.AuthorDTO {
	if u == nil || u.ID == 0 {
		return nil
	}
	author := &dto.AuthorDTO{ID: u.ID, Username: u.Username}
	if u.DisplayName != nil {
		author.DisplayName = *u.DisplayName
	}
	return author
}
