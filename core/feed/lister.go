package feed

import (
	"context"
	"sync"
	"time"

	"github.com/nqhuy/edusystem/core/post"
)

type (
	// Lister fetches one page of the feed. The two backend list variants
	// (standardized paginated envelope vs bare array) are normalized behind
	// this interface so the controller never sees which one served a page.
	Lister interface {
		ListPage(ctx context.Context, filter post.QueryFilter) (post.Page, error)
	}

	enhancedAPI interface {
		ListEnhanced(ctx context.Context, filter post.QueryFilter) (post.Page, error)
	}

	basicAPI interface {
		List(ctx context.Context, filter post.QueryFilter) ([]post.Post, error)
	}
)

// EnhancedLister serves pages from the paginated endpoint; has-more comes
// from the envelope.
type EnhancedLister struct {
	api enhancedAPI
}

var _ Lister = (*EnhancedLister)(nil)

func NewEnhancedLister(api enhancedAPI) *EnhancedLister {
	return &EnhancedLister{api: api}
}

func (l *EnhancedLister) ListPage(ctx context.Context, filter post.QueryFilter) (post.Page, error) {
	page, err := l.api.ListEnhanced(ctx, filter)
	if err != nil {
		return post.Page{}, err
	}
	if !page.Success || page.Data == nil {
		// a well-formed but empty envelope ends pagination
		return post.Page{Success: true, Data: []post.Post{}}, nil
	}
	return page, nil
}

// BasicLister serves pages from the plain endpoint; has-more is inferred
// from a full page.
type BasicLister struct {
	api basicAPI
}

var _ Lister = (*BasicLister)(nil)

func NewBasicLister(api basicAPI) *BasicLister {
	return &BasicLister{api: api}
}

func (l *BasicLister) ListPage(ctx context.Context, filter post.QueryFilter) (post.Page, error) {
	posts, err := l.api.List(ctx, filter)
	if err != nil {
		return post.Page{}, err
	}
	page := post.Page{Success: true, Data: posts}
	page.Pagination.Limit = filter.Limit
	if filter.Offset != nil {
		page.Pagination.Offset = *filter.Offset
	}
	page.Pagination.HasMore = filter.Limit > 0 && len(posts) == filter.Limit
	return page, nil
}

// FallbackLister probes the primary (enhanced) variant and degrades to the
// fallback (basic) one when the primary errors out or exceeds the timeout.
// The probe result sticks: once the primary has failed, later pages go
// straight to the fallback instead of re-failing every fetch.
type FallbackLister struct {
	primary  Lister
	fallback Lister
	timeout  time.Duration

	mu       sync.Mutex
	degraded bool
}

var _ Lister = (*FallbackLister)(nil)

func NewFallbackLister(primary, fallback Lister, timeout time.Duration) *FallbackLister {
	return &FallbackLister{primary: primary, fallback: fallback, timeout: timeout}
}

func (l *FallbackLister) ListPage(ctx context.Context, filter post.QueryFilter) (post.Page, error) {
	if !l.isDegraded() {
		page, err := l.listPrimary(ctx, filter)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			// the caller gave up; says nothing about the primary's capability
			return post.Page{}, err
		}
		l.degrade()
	}
	return l.fallback.ListPage(ctx, filter)
}

// listPrimary applies the probe timeout; the fallback runs on the caller's
// context alone.
func (l *FallbackLister) listPrimary(ctx context.Context, filter post.QueryFilter) (post.Page, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return l.primary.ListPage(ctx, filter)
}

func (l *FallbackLister) isDegraded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.degraded
}

func (l *FallbackLister) degrade() {
	l.mu.Lock()
	l.degraded = true
	l.mu.Unlock()
}
