package rest

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/post"
)

// UploadClient wraps the multipart upload endpoints. Uploaded files come back
// as Attachment metadata that posts then reference by URL.
type UploadClient struct {
	api *Client
}

func NewUploadClient(api *Client) *UploadClient {
	return &UploadClient{api: api}
}

func (uc *UploadClient) UploadDocument(ctx context.Context, filename string, file io.Reader) (post.Attachment, error) {
	var att post.Attachment
	if err := uc.api.upload(ctx, "/api/uploads/doc", filename, file, &att); err != nil {
		return post.Attachment{}, errors.Wrap(err, "uploading document")
	}
	return att, nil
}

func (uc *UploadClient) UploadImage(ctx context.Context, filename string, file io.Reader) (post.Attachment, error) {
	var att post.Attachment
	if err := uc.api.upload(ctx, "/api/uploads/image", filename, file, &att); err != nil {
		return post.Attachment{}, errors.Wrap(err, "uploading image")
	}
	return att, nil
}
