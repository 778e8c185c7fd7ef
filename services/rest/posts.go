package rest

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/post"
)

// PostClient wraps the posts resource.
type PostClient struct {
	api *Client
}

func NewPostClient(api *Client) *PostClient {
	return &PostClient{api: api}
}

// List calls the basic posts endpoint; the response is a bare array and the
// caller infers has-more from the page length.
func (pc *PostClient) List(ctx context.Context, filter post.QueryFilter) ([]post.Post, error) {
	endpoint := "/api/posts"
	if query := filter.Values().Encode(); query != "" {
		endpoint += "?" + query
	}
	var posts []post.Post
	if err := pc.api.request(ctx, endpoint, requestOptions{}, &posts); err != nil {
		return nil, errors.Wrap(err, "listing posts")
	}
	return posts, nil
}

// ListEnhanced calls the paginated posts endpoint and returns the
// standardized envelope. Not every deployment serves it; callers fall back
// to List on failure.
func (pc *PostClient) ListEnhanced(ctx context.Context, filter post.QueryFilter) (post.Page, error) {
	endpoint := "/api/posts"
	if query := filter.Values().Encode(); query != "" {
		endpoint += "?" + query
	}
	var page post.Page
	if err := pc.api.request(ctx, endpoint, requestOptions{}, &page); err != nil {
		return post.Page{}, errors.Wrap(err, "listing posts (enhanced)")
	}
	return page, nil
}

// Stats returns collection-level statistics from the enhanced API.
func (pc *PostClient) Stats(ctx context.Context) (post.Stats, error) {
	var stats post.Stats
	if err := pc.api.request(ctx, "/api/posts/stats", requestOptions{}, &stats); err != nil {
		return post.Stats{}, errors.Wrap(err, "fetching post stats")
	}
	return stats, nil
}

func (pc *PostClient) Get(ctx context.Context, postID string) (post.Post, error) {
	var p post.Post
	if err := pc.api.request(ctx, "/api/posts/"+postID, requestOptions{}, &p); err != nil {
		return post.Post{}, errors.Wrap(err, "fetching post")
	}
	return p, nil
}

func (pc *PostClient) Create(ctx context.Context, np post.NewPost) (post.Post, error) {
	var p post.Post
	opts := requestOptions{method: http.MethodPost, body: np, requireAuth: true}
	if err := pc.api.request(ctx, "/api/posts", opts, &p); err != nil {
		return post.Post{}, errors.Wrap(err, "creating post")
	}
	return p, nil
}

func (pc *PostClient) Update(ctx context.Context, postID string, up post.UpdatePost) (post.Post, error) {
	var p post.Post
	opts := requestOptions{method: http.MethodPut, body: up, requireAuth: true}
	if err := pc.api.request(ctx, "/api/posts/"+postID, opts, &p); err != nil {
		return post.Post{}, errors.Wrap(err, "updating post")
	}
	return p, nil
}

func (pc *PostClient) Delete(ctx context.Context, postID string) error {
	opts := requestOptions{method: http.MethodDelete, requireAuth: true}
	if err := pc.api.request(ctx, "/api/posts/"+postID, opts, nil); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return nil
}

// Like bumps the legacy like counter.
func (pc *PostClient) Like(ctx context.Context, postID string) (int, error) {
	var resp struct {
		Message string `json:"message"`
		Likes   int    `json:"likes"`
	}
	opts := requestOptions{method: http.MethodPost, requireAuth: true}
	if err := pc.api.request(ctx, "/api/posts/"+postID+"/like", opts, &resp); err != nil {
		return 0, errors.Wrap(err, "liking post")
	}
	return resp.Likes, nil
}

// React attaches a reaction to the post. The server computes the resulting
// counts; callers re-fetch the post instead of guessing.
func (pc *PostClient) React(ctx context.Context, postID string, reaction post.Reaction, userID string) error {
	body := struct {
		UserID   string        `json:"user_id,omitempty"`
		Reaction post.Reaction `json:"reaction"`
	}{UserID: userID, Reaction: reaction}

	opts := requestOptions{method: http.MethodPost, body: body, requireAuth: true}
	if err := pc.api.request(ctx, "/api/posts/"+postID+"/reaction", opts, nil); err != nil {
		return errors.Wrap(err, "reacting to post")
	}
	return nil
}
