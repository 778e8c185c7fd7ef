package devapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/user"
)

type userApi struct {
	store *Store
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, store *Store) {
	api := userApi{store: store}

	ug := g.Group("/users")
	ug.GET("/me", api.me, auth)
	ug.PUT("/me", api.updateMe, auth)
	ug.GET("", api.query, auth, adminMiddleware(store))
	ug.GET("/:id", api.retrieve)
	ug.PUT("/:id/role", api.updateRole, auth, adminMiddleware(store))
	ug.DELETE("/:id", api.destroy, auth, adminMiddleware(store))

	g.GET("/me/overview", api.overview, auth)
}

// adminMiddleware rejects identities whose backend profile is not admin.
func adminMiddleware(store *Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ident, ok := contextIdentity(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if usr, ok := store.GetUser(ident.UID); !ok || !usr.IsAdmin() {
				return errHTTPForbidden
			}
			return next(ctx)
		}
	}
}

func (api *userApi) me(ctx echo.Context) error {
	ident, ok := contextIdentity(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	usr, ok := api.store.GetUser(ident.UID)
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateMe(ctx echo.Context) error {
	var data user.UpdateMe
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMe")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ident, ok := contextIdentity(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	usr, ok := api.store.UpdateUser(ident.UID, data)
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	filter := user.QueryFilter{
		Search: ctx.QueryParam("search"),
		Role:   ctx.QueryParam("role"),
	}
	if limit, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil {
		filter.Limit = limit
	}

	users := api.store.QueryUsers(filter)
	if filter.Limit > 0 && len(users) > filter.Limit {
		users = users[:filter.Limit]
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, ok := api.store.GetUser(ctx.Param("id"))
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateRole(ctx echo.Context) error {
	var data struct {
		Role string `json:"role"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding role")
	}
	if !user.ValidRole(data.Role) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	usr, ok := api.store.SetUserRole(ctx.Param("id"), data.Role)
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	// no self-deletion
	if ident, ok := contextIdentity(ctx); ok && ident.UID == ctx.Param("id") {
		return errHTTPForbidden
	}
	if !api.store.DeleteUser(ctx.Param("id")) {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

func (api *userApi) overview(ctx echo.Context) error {
	ident, ok := contextIdentity(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	ov, ok := api.store.Overview(ident.UID)
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, ov)
}
