package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core"
	"github.com/nqhuy/edusystem/core/post"
)

// CommentClient wraps the per-post comments resource.
type CommentClient struct {
	api *Client
}

func NewCommentClient(api *Client) *CommentClient {
	return &CommentClient{api: api}
}

// ListForPost returns a post's comments, newest first. A 404 means the post
// has no comments resource yet (brand-new post) and is normalized to an empty
// list here, so every call site sees uniform empty-vs-populated semantics.
func (cc *CommentClient) ListForPost(ctx context.Context, postID string, limit int) ([]post.Comment, error) {
	if limit <= 0 {
		limit = 50
	}
	endpoint := "/api/posts/" + postID + "/comments?limit=" + strconv.Itoa(limit)

	var comments []post.Comment
	if err := cc.api.request(ctx, endpoint, requestOptions{}, &comments); err != nil {
		if core.IsStatus(err, http.StatusNotFound) {
			return []post.Comment{}, nil
		}
		return nil, errors.Wrap(err, "listing comments")
	}
	return comments, nil
}

func (cc *CommentClient) Create(ctx context.Context, postID string, nc post.NewComment) (post.Comment, error) {
	var c post.Comment
	opts := requestOptions{method: http.MethodPost, body: nc, requireAuth: true}
	if err := cc.api.request(ctx, "/api/posts/"+postID+"/comments", opts, &c); err != nil {
		return post.Comment{}, errors.Wrap(err, "creating comment")
	}
	return c, nil
}

func (cc *CommentClient) Update(ctx context.Context, postID, commentID string, nc post.NewComment) (post.Comment, error) {
	var c post.Comment
	opts := requestOptions{method: http.MethodPut, body: nc, requireAuth: true}
	if err := cc.api.request(ctx, "/api/posts/"+postID+"/comments/"+commentID, opts, &c); err != nil {
		return post.Comment{}, errors.Wrap(err, "updating comment")
	}
	return c, nil
}

func (cc *CommentClient) Delete(ctx context.Context, postID, commentID string) error {
	opts := requestOptions{method: http.MethodDelete, requireAuth: true}
	if err := cc.api.request(ctx, "/api/posts/"+postID+"/comments/"+commentID, opts, nil); err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	return nil
}
