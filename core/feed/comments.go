package feed

import (
	"context"
	"net/http"

	"github.com/nqhuy/edusystem/core"
	"github.com/nqhuy/edusystem/core/post"
)

// Comment thread handling: a lazy per-post cache plus optimistic counter
// updates. Unlike reactions, a comment mutation never triggers a full post
// reload — the comment body is already known to the client, only the
// advisory counter moves.

// ToggleComments expands or collapses a post's thread, lazily loading it on
// first expand.
func (c *Controller) ToggleComments(ctx context.Context, postID string) {
	c.mu.Lock()
	expanded := c.expanded[postID]
	cached := c.comments[postID] != nil
	c.mu.Unlock()

	if expanded {
		c.mu.Lock()
		c.expanded[postID] = false
		c.mu.Unlock()
		return
	}
	if !cached {
		c.LoadComments(ctx, postID)
		return
	}
	c.mu.Lock()
	c.expanded[postID] = true
	c.mu.Unlock()
}

// LoadComments populates the comment cache for postID on first use. A post
// that is no longer in the local window gets an empty thread without a
// network call.
func (c *Controller) LoadComments(ctx context.Context, postID string) {
	c.mu.Lock()
	if c.comments[postID] != nil {
		c.expanded[postID] = true
		c.mu.Unlock()
		return
	}
	if !c.hasPost(postID) {
		c.comments[postID] = []post.Comment{}
		c.expanded[postID] = true
		c.mu.Unlock()
		return
	}
	if c.loadingCommentsFor == postID {
		c.mu.Unlock()
		return
	}
	c.loadingCommentsFor = postID
	c.mu.Unlock()

	// a 404 never reaches this point; the resource client normalizes it
	comments, err := c.deps.Comments.ListForPost(ctx, postID, defaultCommentLimit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadingCommentsFor == postID {
		c.loadingCommentsFor = ""
	}
	if err != nil {
		c.deps.Notifier.Error("could not load comments: " + core.Classify(err))
		// still open an empty thread so the user can comment
		comments = []post.Comment{}
	}
	c.comments[postID] = comments
	c.expanded[postID] = true
}

// Comments returns the cached thread for postID (nil when never loaded).
func (c *Controller) Comments(postID string) []post.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached := c.comments[postID]
	if cached == nil {
		return nil
	}
	out := make([]post.Comment, len(cached))
	copy(out, cached)
	return out
}

// Expanded reports whether postID's thread is currently open.
func (c *Controller) Expanded(postID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded[postID]
}

// CreateComment posts a comment, prepends it to the cached thread and bumps
// the post's advisory counter by one. Only one comment creation per post may
// be in flight.
func (c *Controller) CreateComment(ctx context.Context, postID, content string) error {
	nc := post.NewComment{Content: content}
	if err := nc.Validate(); err != nil {
		return err
	}

	if _, ok := c.currentAccount(); !ok {
		c.deps.Notifier.Error(msgLoginToComment)
		return nil
	}

	// guard check and claim share one critical section
	c.mu.Lock()
	if c.creatingCommentFor == postID {
		c.mu.Unlock()
		return nil
	}
	if !c.hasPost(postID) {
		c.mu.Unlock()
		c.deps.Notifier.Error(msgPostGone)
		return nil
	}
	c.creatingCommentFor = postID
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.creatingCommentFor = ""
		c.mu.Unlock()
	}()

	created, err := c.deps.Comments.Create(ctx, postID, nc)
	if err != nil {
		c.commentMutationError(err, postID)
		return err
	}

	c.mu.Lock()
	c.comments[postID] = append([]post.Comment{created}, c.comments[postID]...)
	c.expanded[postID] = true
	c.bumpCommentCount(postID, +1)
	c.mu.Unlock()
	c.deps.Notifier.Success(msgCommentSent)
	return nil
}

// UpdateComment edits a cached comment in place.
func (c *Controller) UpdateComment(ctx context.Context, postID, commentID, content string) error {
	nc := post.NewComment{Content: content}
	if err := nc.Validate(); err != nil {
		c.deps.Notifier.Error(msgEmptyContent)
		return err
	}

	updated, err := c.deps.Comments.Update(ctx, postID, commentID, nc)
	if err != nil {
		c.commentMutationError(err, postID)
		return err
	}

	c.mu.Lock()
	thread := c.comments[postID]
	for i := range thread {
		if thread[i].ID == commentID {
			thread[i] = updated
			break
		}
	}
	c.mu.Unlock()
	c.deps.Notifier.Success(msgCommentUpdated)
	return nil
}

// DeleteComment removes a comment from the cached thread and decrements the
// post's advisory counter, clamped at zero.
func (c *Controller) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := c.deps.Comments.Delete(ctx, postID, commentID); err != nil {
		switch core.StatusOf(err) {
		case http.StatusUnauthorized:
			c.deps.Notifier.Error(msgLoginToDelete)
		case http.StatusNotFound:
			c.deps.Notifier.Error(msgCommentGone)
			c.pruneComment(postID, commentID)
		default:
			c.deps.Notifier.Error("could not delete the comment: " + core.Classify(err))
		}
		return err
	}

	c.pruneComment(postID, commentID)
	c.deps.Notifier.Success(msgCommentDeleted)
	return nil
}

func (c *Controller) pruneComment(postID, commentID string) {
	c.mu.Lock()
	thread := c.comments[postID]
	kept := thread[:0]
	removed := false
	for _, cm := range thread {
		if cm.ID == commentID {
			removed = true
			continue
		}
		kept = append(kept, cm)
	}
	c.comments[postID] = kept
	if removed {
		c.bumpCommentCount(postID, -1)
	}
	c.mu.Unlock()
}

// commentMutationError applies the mutation error policy: 401 prompts a
// re-login, 403 is a hard permission denial, 404 prunes the vanished post to
// re-converge with the server, anything else is a generic notification. No
// retries anywhere.
func (c *Controller) commentMutationError(err error, postID string) {
	switch core.StatusOf(err) {
	case http.StatusUnauthorized:
		c.deps.Notifier.Error(msgLoginToComment)
	case http.StatusForbidden:
		c.deps.Notifier.Error(msgNoCommentPerm)
	case http.StatusNotFound:
		c.deps.Notifier.Error(msgPostGone)
		c.removePost(postID)
	default:
		c.deps.Notifier.Error("could not send the comment: " + core.Classify(err))
	}
}

// bumpCommentCount adjusts a post's advisory comment counter; callers hold
// the lock. The counter never goes negative.
func (c *Controller) bumpCommentCount(postID string, delta int) {
	for i := range c.posts {
		if c.posts[i].ID == postID {
			c.posts[i].Comments += delta
			if c.posts[i].Comments < 0 {
				c.posts[i].Comments = 0
			}
			break
		}
	}
}

// hasPost reports whether postID is in the local window; callers hold the lock.
func (c *Controller) hasPost(postID string) bool {
	for _, p := range c.posts {
		if p.ID == postID {
			return true
		}
	}
	return false
}
