package service

import (
	"DevNest/internal/api/dto"
	"DevNest/internal/model"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentAndReply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	post := f.post(t, author, "Threaded")

	root, err := f.comments.CreateComment(ctx, reader, post.ID, &dto.CommentWriteDTO{Body: "  first!  "})
	require.NoError(t, err)
	assert.Equal(t, "first!", *root.Body)
	assert.Zero(t, root.LikeCount)
	assert.False(t, root.Liked)
	assert.Equal(t, "reader", root.Author.Username)
	assert.Empty(t, root.Replies)

	reply, err := f.comments.CreateComment(ctx, author, post.ID, &dto.CommentWriteDTO{Body: "thanks", ParentID: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, root.ID, *reply.ParentID)

	tree, err := f.comments.ListComments(ctx, post.ID, 0)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, []uint64{reply.ID}, ids(tree[0].Replies))
}

func TestCreateCommentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	post := f.post(t, author, "One")
	other := f.post(t, author, "Two")

	foreign, err := f.comments.CreateComment(ctx, author, other.ID, &dto.CommentWriteDTO{Body: "elsewhere"})
	require.NoError(t, err)

	_, err = f.comments.CreateComment(ctx, author, post.ID, &dto.CommentWriteDTO{Body: "x", ParentID: &foreign.ID})
	assert.ErrorIs(t, err, ErrParentInvalid)
	assert.Equal(t, BadRequest, CodeOf(err))

	_, err = f.comments.CreateComment(ctx, author, post.ID, &dto.CommentWriteDTO{Body: "x", ParentID: ptr(uint64(9999))})
	assert.ErrorIs(t, err, ErrParentInvalid)

	_, err = f.comments.CreateComment(ctx, author, post.ID, &dto.CommentWriteDTO{Body: "   "})
	assert.ErrorIs(t, err, ErrBodyBlank)

	_, err = f.comments.CreateComment(ctx, author, post.ID, &dto.CommentWriteDTO{Body: strings.Repeat("b", 5001)})
	assert.ErrorIs(t, err, ErrBodyTooLong)

	_, err = f.comments.CreateComment(ctx, author, 9999, &dto.CommentWriteDTO{Body: "x"})
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.comments.CreateComment(ctx, 9999, post.ID, &dto.CommentWriteDTO{Body: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCommentLikesPerViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	ann := f.user(t, "ann")
	bob := f.user(t, "bob")
	post := f.post(t, author, "Likeable")

	c1, err := f.comments.CreateComment(ctx, author, post.ID, &dto.CommentWriteDTO{Body: "one"})
	require.NoError(t, err)
	c2, err := f.comments.CreateComment(ctx, author, post.ID, &dto.CommentWriteDTO{Body: "two"})
	require.NoError(t, err)

	res, err := f.comments.LikeComment(ctx, ann, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.CommentReactionDTO{LikeCount: 1, Liked: true}, *res)
	res, err = f.comments.LikeComment(ctx, bob, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.LikeCount)
	_, err = f.comments.LikeComment(ctx, bob, c2.ID)
	require.NoError(t, err)

	annTree, err := f.comments.ListComments(ctx, post.ID, ann)
	require.NoError(t, err)
	require.Len(t, annTree, 2)
	assert.Equal(t, int64(2), annTree[0].LikeCount)
	assert.True(t, annTree[0].Liked)
	assert.Equal(t, int64(1), annTree[1].LikeCount)
	assert.False(t, annTree[1].Liked)

	bobTree, err := f.comments.ListComments(ctx, post.ID, bob)
	require.NoError(t, err)
	assert.True(t, bobTree[0].Liked)
	assert.True(t, bobTree[1].Liked)

	res, err = f.comments.UnlikeComment(ctx, ann, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.CommentReactionDTO{LikeCount: 1, Liked: false}, *res)
	res, err = f.comments.UnlikeComment(ctx, ann, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.LikeCount)

	_, err = f.comments.LikeComment(ctx, ann, 9999)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = f.comments.UnlikeComment(ctx, ann, 9999)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestUpdateAndDeleteComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	post := f.post(t, author, "Editable")

	root, err := f.comments.CreateComment(ctx, reader, post.ID, &dto.CommentWriteDTO{Body: "draft"})
	require.NoError(t, err)
	_, err = f.comments.CreateComment(ctx, author, post.ID, &dto.CommentWriteDTO{Body: "reply", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = f.comments.LikeComment(ctx, reader, root.ID)
	require.NoError(t, err)

	_, err = f.comments.UpdateComment(ctx, author, root.ID, &dto.CommentUpdateDTO{Body: "nope"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.comments.UpdateComment(ctx, reader, root.ID, &dto.CommentUpdateDTO{Body: " final "})
	require.NoError(t, err)
	assert.Equal(t, "final", *updated.Body)
	assert.Equal(t, int64(1), updated.LikeCount)
	assert.True(t, updated.Liked)

	assert.ErrorIs(t, f.comments.DeleteComment(ctx, author, root.ID), ErrForbidden)
	require.NoError(t, f.comments.DeleteComment(ctx, reader, root.ID))
	require.NoError(t, f.comments.DeleteComment(ctx, reader, root.ID))

	tree, err := f.comments.ListComments(ctx, post.ID, 0)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.True(t, tree[0].Deleted)
	assert.Nil(t, tree[0].Body)
	assert.Len(t, tree[0].Replies, 1)

	liked, err := f.comments.LikeComment(ctx, author, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), liked.LikeCount)

	restored, err := f.comments.UpdateComment(ctx, reader, root.ID, &dto.CommentUpdateDTO{Body: "back"})
	require.NoError(t, err)
	assert.False(t, restored.Deleted)
	assert.Equal(t, "back", *restored.Body)

	assert.ErrorIs(t, f.comments.DeleteComment(ctx, reader, 9999), ErrCommentNotFound)
}

func TestUserComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	post := f.post(t, author, "Discussed")

	var last *dto.CommentDTO
	for _, body := range []string{"a", "b", "c"} {
		c, err := f.comments.CreateComment(ctx, reader, post.ID, &dto.CommentWriteDTO{Body: body})
		require.NoError(t, err)
		last = c
	}
	_, err := f.comments.LikeComment(ctx, author, last.ID)
	require.NoError(t, err)

	page, err := f.comments.UserComments(ctx, reader, &dto.PageQuery{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, last.ID, page.Items[0].ID)
	assert.Equal(t, int64(1), page.Items[0].LikeCount)
	assert.Equal(t, "Discussed", page.Items[0].PostTitle)
	assert.Equal(t, "discussed", page.Items[0].PostSlug)

	empty, err := f.comments.UserComments(ctx, author, &dto.PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 10, empty.Size)
}

func TestListCommentsUnknownPost(t *testing.T) {
	f := newFixture(t)
	_, err := f.comments.ListComments(context.Background(), 9999, 0)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestUnlikeCommentEventCarriesPostID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	post := f.post(t, author, "Keyed events")

	comment, err := f.comments.CreateComment(ctx, author, post.ID, &dto.CommentWriteDTO{Body: "like me"})
	require.NoError(t, err)
	_, err = f.comments.LikeComment(ctx, reader, comment.ID)
	require.NoError(t, err)
	_, err = f.comments.UnlikeComment(ctx, reader, comment.ID)
	require.NoError(t, err)

	events := f.notifier.snapshot()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, model.EventUnlike, last.Type)
	assert.Equal(t, model.TargetComment, last.TargetType)
	assert.Equal(t, comment.ID, last.TargetID)
	assert.Equal(t, post.ID, last.PostID)
}
