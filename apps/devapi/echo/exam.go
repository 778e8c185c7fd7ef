package devapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/exam"
)

type examApi struct {
	store *Store
}

func registerExamAPI(g *echo.Group, auth echo.MiddlewareFunc, store *Store) {
	api := examApi{store: store}

	eg := g.Group("/exams")
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
	eg.POST("", api.create, auth)
	eg.PUT("/:id", api.update, auth)
	eg.DELETE("/:id", api.destroy, auth)
}

func (api *examApi) query(ctx echo.Context) error {
	filter := exam.QueryFilter{
		Subject:    ctx.QueryParam("subject"),
		Difficulty: ctx.QueryParam("difficulty"),
	}
	if limit, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil {
		filter.Limit = limit
	}
	return ctx.JSON(http.StatusOK, api.store.QueryExams(filter))
}

func (api *examApi) retrieve(ctx echo.Context) error {
	e, ok := api.store.GetExam(ctx.Param("id"))
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, api.store.CreateExam(data))
}

func (api *examApi) update(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	e, ok := api.store.UpdateExam(ctx.Param("id"), data)
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) destroy(ctx echo.Context) error {
	if !api.store.DeleteExam(ctx.Param("id")) {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "exam deleted"})
}
