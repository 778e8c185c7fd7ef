package rest

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/user"
)

// UserClient wraps the users resource. The role lives here, on the backend —
// never in the identity token.
type UserClient struct {
	api *Client
}

func NewUserClient(api *Client) *UserClient {
	return &UserClient{api: api}
}

// Me returns the backend profile for the signed-in account, role included.
func (uc *UserClient) Me(ctx context.Context) (user.Info, error) {
	var info user.Info
	opts := requestOptions{requireAuth: true}
	if err := uc.api.request(ctx, "/api/users/me", opts, &info); err != nil {
		return user.Info{}, errors.Wrap(err, "fetching current user")
	}
	return info, nil
}

func (uc *UserClient) UpdateMe(ctx context.Context, um user.UpdateMe) (user.Info, error) {
	var info user.Info
	opts := requestOptions{method: http.MethodPut, body: um, requireAuth: true}
	if err := uc.api.request(ctx, "/api/users/me", opts, &info); err != nil {
		return user.Info{}, errors.Wrap(err, "updating current user")
	}
	return info, nil
}

func (uc *UserClient) Get(ctx context.Context, userID string) (user.Info, error) {
	var info user.Info
	if err := uc.api.request(ctx, "/api/users/"+userID, requestOptions{}, &info); err != nil {
		return user.Info{}, errors.Wrap(err, "fetching user")
	}
	return info, nil
}

// MeClient wraps the profile overview endpoint.
type MeClient struct {
	api *Client
}

func NewMeClient(api *Client) *MeClient {
	return &MeClient{api: api}
}

func (mc *MeClient) Overview(ctx context.Context) (user.Overview, error) {
	var ov user.Overview
	opts := requestOptions{requireAuth: true}
	if err := mc.api.request(ctx, "/api/me/overview", opts, &ov); err != nil {
		return user.Overview{}, errors.Wrap(err, "fetching profile overview")
	}
	return ov, nil
}
