package devapi

import (
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nqhuy/edusystem/core/post"
)

var allowedDocExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

type uploadApi struct{}

func registerUploadAPI(g *echo.Group, auth echo.MiddlewareFunc) {
	api := uploadApi{}

	ug := g.Group("/uploads", auth)
	ug.POST("/doc", api.uploadDoc)
	ug.POST("/image", api.uploadImage)
}

// uploadDoc accepts the file and discards its bytes; the stub only ever
// hands back metadata.
func (api *uploadApi) uploadDoc(ctx echo.Context) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	if !allowedDocExts[filepath.Ext(header.Filename)] {
		return echo.NewHTTPError(http.StatusBadRequest, "only pdf, doc and docx files are accepted")
	}
	return ctx.JSON(http.StatusCreated, attachmentFor(header.Filename, header.Size))
}

func (api *uploadApi) uploadImage(ctx echo.Context) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	return ctx.JSON(http.StatusCreated, attachmentFor(header.Filename, header.Size))
}

func attachmentFor(filename string, size int64) post.Attachment {
	now := time.Now().UTC()
	return post.Attachment{
		URL:        "/media/uploads/" + uuid.NewString() + "_" + filepath.Base(filename),
		FileName:   filename,
		FileType:   mime.TypeByExtension(filepath.Ext(filename)),
		FileSize:   size,
		UploadedAt: &now,
	}
}
