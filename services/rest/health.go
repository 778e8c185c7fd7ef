package rest

import (
	"context"

	"github.com/pkg/errors"
)

// HealthClient probes backend liveness.
type HealthClient struct {
	api *Client
}

func NewHealthClient(api *Client) *HealthClient {
	return &HealthClient{api: api}
}

func (hc *HealthClient) Check(ctx context.Context) error {
	if err := hc.api.request(ctx, "/health", requestOptions{}, nil); err != nil {
		return errors.Wrap(err, "health check")
	}
	return nil
}

func (hc *HealthClient) Root(ctx context.Context) error {
	if err := hc.api.request(ctx, "/", requestOptions{}, nil); err != nil {
		return errors.Wrap(err, "root check")
	}
	return nil
}
