package devapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/post"
)

type postApi struct {
	store *Store
}

func registerPostAPI(g *echo.Group, auth echo.MiddlewareFunc, store *Store) {
	api := postApi{store: store}

	pg := g.Group("/posts")
	pg.GET("", api.query)
	pg.GET("/stats", api.stats)
	pg.GET("/:id", api.retrieve)
	pg.POST("", api.create, auth)
	pg.PUT("/:id", api.update, auth)
	pg.DELETE("/:id", api.destroy, auth)
	pg.POST("/:id/like", api.like, auth)
	pg.POST("/:id/reaction", api.react, auth)

	pg.GET("/:id/comments", api.queryComments)
	pg.POST("/:id/comments", api.createComment, auth)
	pg.PUT("/:id/comments/:cid", api.updateComment, auth)
	pg.DELETE("/:id/comments/:cid", api.destroyComment, auth)
}

func bindPostFilter(ctx echo.Context) post.QueryFilter {
	filter := post.QueryFilter{
		Subject:  ctx.QueryParam("subject"),
		AuthorID: ctx.QueryParam("author_id"),
		Status:   ctx.QueryParam("status"),
		Search:   ctx.QueryParam("search"),
	}
	// negative values would end up in slice expressions
	if limit, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && limit >= 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(ctx.QueryParam("offset")); err == nil && offset >= 0 {
		filter.Offset = &offset
	}
	return filter
}

// query serves the paginated envelope.
func (api *postApi) query(ctx echo.Context) error {
	filter := bindPostFilter(ctx)
	posts := api.store.QueryPosts(filter, false /* allStatuses */)

	total := len(posts)
	offset := 0
	if filter.Offset != nil {
		offset = *filter.Offset
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := post.Page{
		Success: true,
		Data:    posts[offset:end],
		Pagination: post.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
		},
	}
	if page.Data == nil {
		page.Data = []post.Post{}
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *postApi) stats(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.PostStats())
}

func (api *postApi) retrieve(ctx echo.Context) error {
	p, ok := api.store.GetPost(ctx.Param("id"))
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *postApi) create(ctx echo.Context) error {
	var data post.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ident, ok := contextIdentity(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	author, _ := api.store.GetUser(ident.UID)

	p := api.store.CreatePost(data, author)
	return ctx.JSON(http.StatusCreated, p)
}

func (api *postApi) update(ctx echo.Context) error {
	var data post.UpdatePost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePost")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, ok := api.store.UpdatePost(ctx.Param("id"), data)
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *postApi) destroy(ctx echo.Context) error {
	if !api.store.DeletePost(ctx.Param("id")) {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "post deleted"})
}

func (api *postApi) like(ctx echo.Context) error {
	likes, ok := api.store.LikePost(ctx.Param("id"))
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "post liked", "likes": likes})
}

func (api *postApi) react(ctx echo.Context) error {
	var data struct {
		UserID   string        `json:"user_id"`
		Reaction post.Reaction `json:"reaction"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding reaction")
	}
	if !post.ValidReaction(data.Reaction) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown reaction")
	}

	userID := data.UserID
	if ident, ok := contextIdentity(ctx); ok && userID == "" {
		userID = ident.UID
	}

	p, ok := api.store.ReactToPost(ctx.Param("id"), userID, data.Reaction)
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, p)
}

// Comments

func (api *postApi) queryComments(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	comments, ok := api.store.QueryComments(ctx.Param("id"), limit)
	if !ok {
		return errHTTPNotFound
	}
	if comments == nil {
		comments = []post.Comment{}
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *postApi) createComment(ctx echo.Context) error {
	var data post.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ident, ok := contextIdentity(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	author, _ := api.store.GetUser(ident.UID)

	c, ok := api.store.CreateComment(ctx.Param("id"), data, author)
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *postApi) updateComment(ctx echo.Context) error {
	var data post.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, ok := api.store.UpdateComment(ctx.Param("id"), ctx.Param("cid"), data)
	if !ok {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *postApi) destroyComment(ctx echo.Context) error {
	if !api.store.DeleteComment(ctx.Param("id"), ctx.Param("cid")) {
		return errHTTPNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "comment deleted"})
}
