package devapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/post"
)

type adminApi struct {
	store *Store
}

func registerAdminAPI(g *echo.Group, auth echo.MiddlewareFunc, store *Store) {
	api := adminApi{store: store}

	ag := g.Group("/admin", auth, adminMiddleware(store))
	ag.GET("/stats", api.stats)
	ag.GET("/posts/all", api.queryPosts)
	ag.DELETE("/posts/:id", api.destroyPost)
	ag.PUT("/posts/:id/status", api.updatePostStatus)
}

func (api *adminApi) stats(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.AdminStats())
}

// queryPosts lists posts across all moderation statuses.
func (api *adminApi) queryPosts(ctx echo.Context) error {
	posts := api.store.QueryPosts(bindPostFilter(ctx), true /* allStatuses */)
	return ctx.JSON(http.StatusOK, posts)
}

func (api *adminApi) destroyPost(ctx echo.Context) error {
	if !api.store.DeletePost(ctx.Param("id")) {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "post deleted"})
}

func (api *adminApi) updatePostStatus(ctx echo.Context) error {
	var data struct {
		Status string `json:"status"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding status")
	}
	switch data.Status {
	case post.StatusPending, post.StatusClean, post.StatusNeedsReview, post.StatusRejected:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	p, ok := api.store.SetPostStatus(ctx.Param("id"), data.Status)
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, p)
}
