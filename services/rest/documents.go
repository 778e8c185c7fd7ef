package rest

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/document"
)

// DocumentClient wraps the library documents resource.
type DocumentClient struct {
	api *Client
}

func NewDocumentClient(api *Client) *DocumentClient {
	return &DocumentClient{api: api}
}

func (dc *DocumentClient) List(ctx context.Context, filter document.QueryFilter) ([]document.Document, error) {
	endpoint := "/api/documents"
	if query := filter.Values().Encode(); query != "" {
		endpoint += "?" + query
	}
	var docs []document.Document
	if err := dc.api.request(ctx, endpoint, requestOptions{}, &docs); err != nil {
		return nil, errors.Wrap(err, "listing documents")
	}
	return docs, nil
}

func (dc *DocumentClient) Get(ctx context.Context, documentID string) (document.Document, error) {
	var d document.Document
	if err := dc.api.request(ctx, "/api/documents/"+documentID, requestOptions{}, &d); err != nil {
		return document.Document{}, errors.Wrap(err, "fetching document")
	}
	return d, nil
}

func (dc *DocumentClient) Create(ctx context.Context, nd document.NewDocument) (document.Document, error) {
	var d document.Document
	opts := requestOptions{method: http.MethodPost, body: nd, requireAuth: true}
	if err := dc.api.request(ctx, "/api/documents", opts, &d); err != nil {
		return document.Document{}, errors.Wrap(err, "creating document")
	}
	return d, nil
}

// Download records a download and returns the updated counter.
func (dc *DocumentClient) Download(ctx context.Context, documentID string) (int, error) {
	var resp struct {
		Message   string `json:"message"`
		Downloads int    `json:"downloads"`
	}
	opts := requestOptions{method: http.MethodPost, requireAuth: true}
	if err := dc.api.request(ctx, "/api/documents/"+documentID+"/download", opts, &resp); err != nil {
		return 0, errors.Wrap(err, "downloading document")
	}
	return resp.Downloads, nil
}

func (dc *DocumentClient) Delete(ctx context.Context, documentID string) error {
	opts := requestOptions{method: http.MethodDelete, requireAuth: true}
	if err := dc.api.request(ctx, "/api/documents/"+documentID, opts, nil); err != nil {
		return errors.Wrap(err, "deleting document")
	}
	return nil
}
