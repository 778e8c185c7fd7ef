package rest

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/post"
	"github.com/nqhuy/edusystem/core/user"
)

// AdminClient wraps the admin-only surfaces: platform stats, user management
// and post moderation.
type AdminClient struct {
	api *Client
}

func NewAdminClient(api *Client) *AdminClient {
	return &AdminClient{api: api}
}

func (ac *AdminClient) Stats(ctx context.Context) (user.AdminStats, error) {
	var stats user.AdminStats
	opts := requestOptions{requireAuth: true}
	if err := ac.api.request(ctx, "/api/admin/stats", opts, &stats); err != nil {
		return user.AdminStats{}, errors.Wrap(err, "fetching admin stats")
	}
	return stats, nil
}

func (ac *AdminClient) Users(ctx context.Context, filter user.QueryFilter) ([]user.Info, error) {
	endpoint := "/api/users"
	if query := filter.Values().Encode(); query != "" {
		endpoint += "?" + query
	}
	var users []user.Info
	opts := requestOptions{requireAuth: true}
	if err := ac.api.request(ctx, endpoint, opts, &users); err != nil {
		return nil, errors.Wrap(err, "listing users")
	}
	return users, nil
}

func (ac *AdminClient) UpdateUserRole(ctx context.Context, userID, role string) (user.Info, error) {
	body := struct {
		Role string `json:"role"`
	}{Role: role}

	var info user.Info
	opts := requestOptions{method: http.MethodPut, body: body, requireAuth: true}
	if err := ac.api.request(ctx, "/api/users/"+userID+"/role", opts, &info); err != nil {
		return user.Info{}, errors.Wrap(err, "updating user role")
	}
	return info, nil
}

func (ac *AdminClient) DeleteUser(ctx context.Context, userID string) error {
	opts := requestOptions{method: http.MethodDelete, requireAuth: true}
	if err := ac.api.request(ctx, "/api/users/"+userID, opts, nil); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return nil
}

// Posts lists posts across all moderation statuses.
func (ac *AdminClient) Posts(ctx context.Context, filter post.QueryFilter) ([]post.Post, error) {
	endpoint := "/api/admin/posts/all"
	if query := filter.Values().Encode(); query != "" {
		endpoint += "?" + query
	}
	var posts []post.Post
	opts := requestOptions{requireAuth: true}
	if err := ac.api.request(ctx, endpoint, opts, &posts); err != nil {
		return nil, errors.Wrap(err, "listing posts (admin)")
	}
	return posts, nil
}

func (ac *AdminClient) DeletePost(ctx context.Context, postID string) error {
	opts := requestOptions{method: http.MethodDelete, requireAuth: true}
	if err := ac.api.request(ctx, "/api/admin/posts/"+postID, opts, nil); err != nil {
		return errors.Wrap(err, "deleting post (admin)")
	}
	return nil
}

func (ac *AdminClient) UpdatePostStatus(ctx context.Context, postID, status string) (post.Post, error) {
	body := struct {
		Status string `json:"status"`
	}{Status: status}

	var p post.Post
	opts := requestOptions{method: http.MethodPut, body: body, requireAuth: true}
	if err := ac.api.request(ctx, "/api/admin/posts/"+postID+"/status", opts, &p); err != nil {
		return post.Post{}, errors.Wrap(err, "updating post status")
	}
	return p, nil
}
