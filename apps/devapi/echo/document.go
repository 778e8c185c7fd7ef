package devapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/document"
)

type documentApi struct {
	store *Store
}

func registerDocumentAPI(g *echo.Group, auth echo.MiddlewareFunc, store *Store) {
	api := documentApi{store: store}

	dg := g.Group("/documents")
	dg.GET("", api.query)
	dg.GET("/:id", api.retrieve)
	dg.POST("", api.create, auth)
	dg.POST("/:id/download", api.download, auth)
	dg.DELETE("/:id", api.destroy, auth)
}

func (api *documentApi) query(ctx echo.Context) error {
	filter := document.QueryFilter{
		Category: ctx.QueryParam("category"),
		Subject:  ctx.QueryParam("subject"),
	}
	if limit, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil {
		filter.Limit = limit
	}
	return ctx.JSON(http.StatusOK, api.store.QueryDocuments(filter))
}

func (api *documentApi) retrieve(ctx echo.Context) error {
	d, ok := api.store.GetDocument(ctx.Param("id"))
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *documentApi) create(ctx echo.Context) error {
	var data document.NewDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocument")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, api.store.CreateDocument(data))
}

func (api *documentApi) download(ctx echo.Context) error {
	downloads, ok := api.store.RecordDownload(ctx.Param("id"))
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "download recorded", "downloads": downloads})
}

func (api *documentApi) destroy(ctx echo.Context) error {
	if !api.store.DeleteDocument(ctx.Param("id")) {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "document deleted"})
}
