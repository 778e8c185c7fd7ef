package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/nqhuy/edusystem/core"
	"github.com/nqhuy/edusystem/core/post"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(context.Context) (string, error) { return s.token, s.err }

func testClient(t *testing.T, handler http.Handler, tokens TokenSource) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := &core.Config{}
	conf.API.BaseURL = srv.URL + "/" // trailing slash must be normalized away
	conf.API.RequestTimeout = 5 * time.Second
	return NewClient(conf, tokens, core.NopLogger{}), srv
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "401 means the session expired", status: 401, body: `{"detail":"token invalid"}`, wantMsg: core.MsgSessionExpired},
		{name: "403 is a permission denial", status: 403, body: `{"detail":"nope"}`, wantMsg: core.MsgForbidden},
		{name: "500 is a server error", status: 500, body: `oops`, wantMsg: core.MsgServerError},
		{name: "404 keeps the server detail", status: 404, body: `{"detail":"post not found"}`, wantMsg: "post not found"},
		{name: "400 keeps the server detail", status: 400, body: `{"detail":"bad subject"}`, wantMsg: "bad subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}), nil)

			_, err := NewPostClient(api).Get(context.Background(), "p1")
			assert.Error(t, err)
			assert.Equal(t, tt.status, core.StatusOf(err))
			assert.Equal(t, tt.wantMsg, errors.Cause(err).Error())
		})
	}
}

func TestCommentList404IsEmpty(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"no comments resource"}`))
	}), nil)

	comments, err := NewCommentClient(api).ListForPost(context.Background(), "brand-new", 0)
	assert.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestCommentListDefaultLimit(t *testing.T) {
	var gotQuery string
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}), nil)

	_, err := NewCommentClient(api).ListForPost(context.Background(), "p1", 0)
	assert.NoError(t, err)
	assert.Equal(t, "limit=50", gotQuery)
}

func TestPostListQueryParams(t *testing.T) {
	var got *http.Request
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(`[]`))
	}), nil)

	offset := 0
	filter := post.QueryFilter{Subject: "all", Search: "đạo hàm", Limit: 20, Offset: &offset}
	_, err := NewPostClient(api).List(context.Background(), filter)
	assert.NoError(t, err)

	q := got.URL.Query()
	// "all" is the absence of a subject filter
	assert.False(t, q.Has("subject"))
	// an explicit zero offset is still sent
	assert.Equal(t, "0", q.Get("offset"))
	assert.Equal(t, "20", q.Get("limit"))
	assert.Equal(t, "đạo hàm", q.Get("search"))
}

func TestClientAuthFailsOpen(t *testing.T) {
	tests := []struct {
		name       string
		tokens     TokenSource
		wantHeader string
	}{
		{name: "token attached", tokens: staticTokens{token: "tok-123"}, wantHeader: "Bearer tok-123"},
		{name: "signed out sends nothing", tokens: staticTokens{}},
		{name: "token fetch error sends nothing", tokens: staticTokens{err: errors.New("refresh failed")}},
		{name: "no token source", tokens: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string
			api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				_ = json.NewEncoder(w).Encode(post.Post{ID: "p1"})
			}), tt.tokens)

			_, err := NewPostClient(api).Create(context.Background(), post.NewPost{Content: "hi"})
			assert.NoError(t, err)
			assert.Equal(t, tt.wantHeader, gotAuth)
		})
	}
}

func TestClientBaseURLNormalized(t *testing.T) {
	var gotPath string
	api, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}), nil)

	assert.Equal(t, srv.URL, api.BaseURL())
	_, err := NewPostClient(api).List(context.Background(), post.QueryFilter{})
	assert.NoError(t, err)
	assert.Equal(t, "/api/posts", gotPath)
}

func TestUploadSendsMultipartFile(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		_ = json.NewEncoder(w).Encode(post.Attachment{URL: "/media/" + header.Filename, FileName: header.Filename})
	}), staticTokens{token: "tok"})

	att, err := NewUploadClient(api).UploadDocument(context.Background(), "notes.pdf", http.NoBody)
	assert.NoError(t, err)
	assert.Equal(t, "notes.pdf", att.FileName)
	assert.Equal(t, "/media/notes.pdf", att.URL)
}

func TestLikeReturnsServerCount(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts/p1/like", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"message":"post liked","likes":7}`))
	}), staticTokens{token: "tok"})

	likes, err := NewPostClient(api).Like(context.Background(), "p1")
	assert.NoError(t, err)
	assert.Equal(t, 7, likes)
}
