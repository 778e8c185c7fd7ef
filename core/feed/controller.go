package feed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core"
	"github.com/nqhuy/edusystem/core/post"
	"github.com/nqhuy/edusystem/core/user"
)

// Session state of a feed.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateLoadingMore
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateLoadingMore:
		return "loading-more"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// FilterAll matches every subject/grade.
const FilterAll = "all"

const defaultCommentLimit = 50

// User-facing notifications.
const (
	msgLoginToComment  = "please log in to comment"
	msgLoginToReact    = "please log in to react"
	msgLoginToDelete   = "please log in to delete"
	msgPostGone        = "post not found, please refresh the feed"
	msgCommentGone     = "comment not found"
	msgCommentSent     = "comment sent"
	msgCommentUpdated  = "comment updated"
	msgCommentDeleted  = "comment deleted"
	msgPostUpdated     = "post updated"
	msgPostDeleted     = "post deleted"
	msgNoCommentPerm   = "you do not have permission to comment"
	msgNoDeletePerm    = "you do not have permission to delete this post"
	msgEmptyContent    = "content must not be empty"
)

type (
	// PostAPI is what the controller needs from the posts resource client.
	PostAPI interface {
		Get(ctx context.Context, postID string) (post.Post, error)
		Update(ctx context.Context, postID string, up post.UpdatePost) (post.Post, error)
		Delete(ctx context.Context, postID string) error
		React(ctx context.Context, postID string, reaction post.Reaction, userID string) error
	}

	// CommentAPI is what the controller needs from the comments resource client.
	CommentAPI interface {
		ListForPost(ctx context.Context, postID string, limit int) ([]post.Comment, error)
		Create(ctx context.Context, postID string, nc post.NewComment) (post.Comment, error)
		Update(ctx context.Context, postID, commentID string, nc post.NewComment) (post.Comment, error)
		Delete(ctx context.Context, postID, commentID string) error
	}

	// Session exposes the signed-in identity principal, if any.
	Session interface {
		CurrentAccount() (user.Account, bool)
	}

	Deps struct {
		Lister   Lister
		Posts    PostAPI
		Comments CommentAPI
		Session  Session
		Notifier core.Notifier
		Logger   core.Logger
		PageSize int
	}
)

// Controller drives one feed session: paginated loading, filters, the
// per-post comment cache and the optimistic mutations on top of it.
//
// All exported methods are safe for concurrent use; state is guarded by a
// mutex and network calls happen outside of it. In-flight guards keep a
// given pagination cursor or a given post from having two overlapping
// requests.
type Controller struct {
	deps Deps

	mu          sync.Mutex
	state       State
	lastErr     error
	posts       []post.Post
	hasMore     bool
	loading     bool
	loadingMore bool

	// server-side filters; changing either resets pagination
	subject string
	search  string
	// client-side filters; narrowing only, no refetch
	grade string
	tag   string

	comments           map[string][]post.Comment
	expanded           map[string]bool
	loadingCommentsFor string
	creatingCommentFor string
}

func NewController(deps Deps) *Controller {
	if deps.Notifier == nil {
		deps.Notifier = core.NopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = core.NopLogger{}
	}
	if deps.PageSize <= 0 {
		deps.PageSize = 20
	}
	return &Controller{
		deps:     deps,
		state:    StateIdle,
		hasMore:  true,
		subject:  FilterAll,
		grade:    FilterAll,
		comments: make(map[string][]post.Comment),
		expanded: make(map[string]bool),
	}
}

// Refresh resets pagination and replaces the post list with the first page.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.loadPosts(ctx, true)
}

// LoadMore appends the next page. It is a no-op while hasMore is false or
// any post-level fetch is already in flight, which keeps a cursor from
// producing duplicate or reordered pages.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if !c.hasMore || c.loading || c.loadingMore {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.loadPosts(ctx, false)
}

func (c *Controller) loadPosts(ctx context.Context, reset bool) error {
	c.mu.Lock()
	if c.loading || c.loadingMore {
		c.mu.Unlock()
		return nil
	}
	if reset {
		c.loading = true
		c.state = StateLoading
	} else {
		c.loadingMore = true
		c.state = StateLoadingMore
	}
	offset := 0
	if !reset {
		offset = len(c.posts)
	}
	filter := post.QueryFilter{
		Subject: c.subject,
		Search:  c.search,
		Limit:   c.deps.PageSize,
		Offset:  &offset,
	}
	c.mu.Unlock()

	page, err := c.deps.Lister.ListPage(ctx, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.loadingMore = false

	if err != nil {
		if reset && len(c.posts) == 0 {
			c.posts = []post.Post{}
		}
		// hasMore survives a failed fetch; LoadMore can retry
		c.state = StateError
		c.lastErr = err
		// a timed-out page fetch is already visible as a stalled feed;
		// skip the notification to avoid spamming on slow links
		if !errors.Is(err, context.DeadlineExceeded) {
			c.deps.Notifier.Error("could not load the feed: " + core.Classify(err))
		}
		return err
	}

	if reset {
		c.posts = page.Data
	} else {
		c.posts = append(c.posts, page.Data...)
	}
	c.hasMore = page.Pagination.HasMore
	c.state = StateLoaded
	c.lastErr = nil
	return nil
}

// SetSubject changes the server-side subject filter; pagination resets and
// the list is replaced.
func (c *Controller) SetSubject(ctx context.Context, subject string) error {
	c.mu.Lock()
	if subject == c.subject {
		c.mu.Unlock()
		return nil
	}
	c.subject = subject
	c.mu.Unlock()
	return c.loadPosts(ctx, true)
}

// SetSearch changes the server-side search term; pagination resets and the
// list is replaced.
func (c *Controller) SetSearch(ctx context.Context, search string) error {
	search = core.CleanString(search)
	c.mu.Lock()
	if search == c.search {
		c.mu.Unlock()
		return nil
	}
	c.search = search
	c.mu.Unlock()
	return c.loadPosts(ctx, true)
}

// SetGrade narrows the already-fetched window client-side; no refetch.
func (c *Controller) SetGrade(grade string) {
	c.mu.Lock()
	c.grade = grade
	c.mu.Unlock()
}

// SetTag narrows the already-fetched window client-side; no refetch.
func (c *Controller) SetTag(tag string) {
	c.mu.Lock()
	c.tag = tag
	c.mu.Unlock()
}

// Posts returns the visible window: the fetched list narrowed by the
// client-side subject/grade/tag filters.
func (c *Controller) Posts() []post.Post {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := make([]post.Post, 0, len(c.posts))
	for _, p := range c.posts {
		if !c.matches(p) {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}

func (c *Controller) matches(p post.Post) bool {
	if c.subject != "" && c.subject != FilterAll && p.Subject != c.subject {
		return false
	}
	if c.grade != "" && c.grade != FilterAll && p.Grade != 0 && strconv.Itoa(p.Grade) != c.grade {
		return false
	}
	if tag := core.CleanString(c.tag, true); tag != "" {
		haystack := strings.ToLower(strings.Join(p.AITags, " "))
		if !strings.Contains(haystack, tag) {
			return false
		}
	}
	return true
}

// Len returns the size of the fetched (unfiltered) window.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.posts)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Loaded reports whether postID is in the fetched window.
func (c *Controller) Loaded(postID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasPost(postID)
}

func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Insert unshifts a freshly created post to the top of the feed.
func (c *Controller) Insert(p post.Post) {
	c.mu.Lock()
	c.posts = append([]post.Post{p}, c.posts...)
	c.mu.Unlock()
}

// ReloadPost re-fetches one post and replaces it in place, picking up
// server-computed counters and any moderation-pipeline fields that arrived
// asynchronously. Errors are swallowed: a stale entry is better than an
// interrupted session.
func (c *Controller) ReloadPost(ctx context.Context, postID string) {
	updated, err := c.deps.Posts.Get(ctx, postID)
	if err != nil {
		c.deps.Logger.Debug(fmt.Sprintf("reloading post %s: %v", postID, err))
		return
	}
	c.mu.Lock()
	for i := range c.posts {
		if c.posts[i].ID == postID {
			c.posts[i] = updated
			break
		}
	}
	c.mu.Unlock()
}

// React sends a reaction and then reloads the post, so the local reaction
// counts exactly match the server rather than an optimistic guess (the
// moderation pipeline may have touched the post in the meantime).
func (c *Controller) React(ctx context.Context, postID string, reaction post.Reaction) error {
	acct, ok := c.currentAccount()
	if !ok {
		c.deps.Notifier.Error(msgLoginToReact)
		return nil
	}
	if err := c.deps.Posts.React(ctx, postID, reaction, acct.UID); err != nil {
		c.deps.Notifier.Error("could not update reaction: " + core.Classify(err))
		return err
	}
	c.ReloadPost(ctx, postID)
	return nil
}

// UpdatePost edits a post's content and subject and merges the server's
// response in place.
func (c *Controller) UpdatePost(ctx context.Context, postID, content, subject string) error {
	up := post.UpdatePost{Content: content, Subject: subject}
	if err := up.Validate(); err != nil {
		c.deps.Notifier.Error(validationMessage(err))
		return err
	}
	if up.Content == "" {
		c.deps.Notifier.Error(msgEmptyContent)
		return core.NewValidationError(errors.New(msgEmptyContent))
	}

	updated, err := c.deps.Posts.Update(ctx, postID, up)
	if err != nil {
		c.deps.Notifier.Error("could not update the post: " + core.Classify(err))
		return err
	}
	c.mu.Lock()
	for i := range c.posts {
		if c.posts[i].ID == postID {
			c.posts[i] = updated
			break
		}
	}
	c.mu.Unlock()
	c.deps.Notifier.Success(msgPostUpdated)
	return nil
}

// DeletePost removes a post. A 404 still prunes it locally: the entry is
// gone server-side either way.
func (c *Controller) DeletePost(ctx context.Context, postID string) error {
	if _, ok := c.currentAccount(); !ok {
		c.deps.Notifier.Error(msgLoginToDelete)
		return nil
	}
	if err := c.deps.Posts.Delete(ctx, postID); err != nil {
		switch core.StatusOf(err) {
		case http.StatusForbidden:
			c.deps.Notifier.Error(msgNoDeletePerm)
		case http.StatusNotFound:
			c.deps.Notifier.Error(msgPostGone)
			c.removePost(postID)
		default:
			c.deps.Notifier.Error("could not delete the post: " + core.Classify(err))
		}
		return err
	}
	c.removePost(postID)
	c.deps.Notifier.Success(msgPostDeleted)
	return nil
}

func (c *Controller) removePost(postID string) {
	c.mu.Lock()
	kept := c.posts[:0]
	for _, p := range c.posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	c.posts = kept
	c.mu.Unlock()
}

func (c *Controller) currentAccount() (user.Account, bool) {
	if c.deps.Session == nil {
		return user.Account{}, false
	}
	return c.deps.Session.CurrentAccount()
}

// validationMessage picks the first translated field message off a validation
// error, falling back to the error's own text.
func validationMessage(err error) string {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		return vErr.Fields[0].Error
	}
	return core.Classify(err)
}
