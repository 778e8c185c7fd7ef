package devapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nqhuy/edusystem/core"
	"github.com/nqhuy/edusystem/core/post"
	"github.com/nqhuy/edusystem/core/user"
)

func TestMain(m *testing.M) {
	core.InitValidators()
	post.InitValidators()
	user.InitValidators()
	os.Exit(m.Run())
}

func setup(t *testing.T) (Server, *Store) {
	t.Helper()
	store := NewStore()
	srv := NewServer(&Options{
		DisableReqLogs: true,
		Debug:          false,
		Store:          store,
	})
	return srv, store
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, uid, email, name string) string {
	t.Helper()
	token, err := MintToken(uid, email, name)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func TestHealth(t *testing.T) {
	srv, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/health")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req, rec = newRequest(http.MethodGet, "/")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostLifecycle(t *testing.T) {
	srv, store := setup(t)
	token := getToken(t, "uid-1", "nam@example.com", "Nam")

	// unauthenticated create is rejected with the standard error shape
	req, rec := newRequest(http.MethodPost, "/api/posts", marshallObj(t, post.NewPost{Content: "hi"}))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"authentication required"}`, rec.Body.String())

	// create
	np := post.NewPost{Content: "Ôn thi cùng mình nhé", Subject: "toan"}
	req, rec = newAuthRequest(http.MethodPost, "/api/posts", token, marshallObj(t, np))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created post.Post
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "uid-1", created.AuthorID)
	assert.Equal(t, post.StatusPending, created.Status)
	assert.Equal(t, post.TypeText, created.Type)

	// the list endpoint serves the paginated envelope
	req, rec = newRequest(http.MethodGet, "/api/posts?limit=20&offset=0")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var page post.Page
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.True(t, page.Success)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.False(t, page.Pagination.HasMore)

	// validation failures surface field errors
	req, rec = newAuthRequest(http.MethodPost, "/api/posts", token, marshallObj(t, post.NewPost{Content: "x", Subject: "nope"}))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// update and delete
	req, rec = newAuthRequest(http.MethodPut, "/api/posts/"+created.ID, token, marshallObj(t, post.UpdatePost{Content: "sửa lại"}))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, "/api/posts/"+created.ID, token)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, ok := store.GetPost(created.ID)
	assert.False(t, ok)
}

func TestPostQueryBadPagination(t *testing.T) {
	srv, store := setup(t)
	author := store.EnsureUser("uid-1", "nam@example.com", "Nam")
	store.CreatePost(post.NewPost{Content: "bài viết", Subject: "toan"}, author)

	tests := []struct {
		name    string
		query   string
		wantLen int
	}{
		{name: "negative offset is ignored", query: "offset=-1&limit=20", wantLen: 1},
		{name: "negative limit is ignored", query: "offset=0&limit=-5", wantLen: 1},
		{name: "offset past the end", query: "offset=999&limit=20", wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, "/api/posts?"+tt.query)
			srv.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)

			var page post.Page
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
			assert.True(t, page.Success)
			assert.NotNil(t, page.Data)
			assert.Len(t, page.Data, tt.wantLen)
			assert.False(t, page.Pagination.HasMore)
		})
	}
}

func TestCommentsFor404AndCounter(t *testing.T) {
	srv, store := setup(t)
	token := getToken(t, "uid-1", "nam@example.com", "Nam")
	author := store.EnsureUser("uid-1", "nam@example.com", "Nam")
	p := store.CreatePost(post.NewPost{Content: "bài viết"}, author)

	// comments of an unknown post are a 404; the SDK normalizes this
	req, rec := newRequest(http.MethodGet, "/api/posts/unknown/comments")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// empty thread serves a bare empty array
	req, rec = newRequest(http.MethodGet, "/api/posts/"+p.ID+"/comments")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	// creating a comment bumps the post counter
	req, rec = newAuthRequest(http.MethodPost, "/api/posts/"+p.ID+"/comments", token,
		marshallObj(t, post.NewComment{Content: "hay quá"}))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var c post.Comment
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	got, _ := store.GetPost(p.ID)
	assert.Equal(t, 1, got.Comments)

	// deleting it brings the counter back down
	req, rec = newAuthRequest(http.MethodDelete, "/api/posts/"+p.ID+"/comments/"+c.ID, token)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	got, _ = store.GetPost(p.ID)
	assert.Equal(t, 0, got.Comments)
}

func TestReactionToggle(t *testing.T) {
	srv, store := setup(t)
	token := getToken(t, "uid-1", "nam@example.com", "Nam")
	author := store.EnsureUser("uid-1", "nam@example.com", "Nam")
	p := store.CreatePost(post.NewPost{Content: "bài viết"}, author)

	react := func() post.Post {
		body := marshallObj(t, map[string]string{"reaction": "idea"})
		req, rec := newAuthRequest(http.MethodPost, "/api/posts/"+p.ID+"/reaction", token, body)
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		var got post.Post
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		return got
	}

	got := react()
	assert.Equal(t, 1, got.ReactionCounts[post.ReactionIdea])
	// same reaction again toggles it off
	got = react()
	assert.Equal(t, 0, got.ReactionCounts[post.ReactionIdea])
}

func TestUserEndpoints(t *testing.T) {
	srv, store := setup(t)
	token := getToken(t, "uid-1", "nam@example.com", "Nam")

	// first authed request upserts the profile as a student
	req, rec := newAuthRequest(http.MethodGet, "/api/users/me", token)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var me user.Info
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "uid-1", me.UID)
	assert.Equal(t, user.RoleStudent, me.Role)

	// self-update
	req, rec = newAuthRequest(http.MethodPut, "/api/users/me", token, marshallObj(t, user.UpdateMe{Name: "Nam Nguyễn"}))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "Nam Nguyễn", me.Name)

	// admin surfaces are closed to students
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/stats", token)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// promote and retry
	store.SetUserRole("uid-1", user.RoleAdmin)
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/stats", token)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats user.AdminStats
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Users.Total)
}

func TestOverview(t *testing.T) {
	srv, store := setup(t)
	token := getToken(t, "uid-1", "nam@example.com", "Nam")
	author := store.EnsureUser("uid-1", "nam@example.com", "Nam")
	store.CreatePost(post.NewPost{Content: "một", Subject: "toan"}, author)
	store.CreatePost(post.NewPost{Content: "hai", Subject: "toan"}, author)
	store.CreatePost(post.NewPost{Content: "ba", Subject: "ly"}, author)

	req, rec := newAuthRequest(http.MethodGet, "/api/me/overview", token)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var ov user.Overview
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	assert.Equal(t, 3, ov.Stats.TotalPosts)
	if assert.NotNil(t, ov.Stats.FavoriteSubject) {
		assert.Equal(t, "toan", *ov.Stats.FavoriteSubject)
	}
	assert.Len(t, ov.RecentPosts, 3)
}
