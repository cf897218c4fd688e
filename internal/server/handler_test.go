package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Decentr-net/photon/internal/entities"
	"github.com/Decentr-net/photon/internal/imaging"
	mm "github.com/Decentr-net/photon/internal/middleware"
	"github.com/Decentr-net/photon/internal/middleware/memory"
	"github.com/Decentr-net/photon/internal/service"
	svcmock "github.com/Decentr-net/photon/internal/service/mock"
	"github.com/Decentr-net/photon/internal/session"
	sessmock "github.com/Decentr-net/photon/internal/session/mock"
	"github.com/Decentr-net/photon/internal/storage"
	"github.com/Decentr-net/photon/internal/storage/mock"
)

const (
	testToken  = "token"
	testURL    = "https://photon.example"
	me         = "11111111-1111-1111-1111-111111111111"
	other      = "22222222-2222-2222-2222-222222222222"
	testPostID = "33333333-3333-3333-3333-333333333333"
	testFileID = "44444444-4444-4444-4444-444444444444"
)

var timestamp = time.Unix(100, 0).UTC()

type testServer struct {
	router http.Handler
	s      *mock.MockStorage
	svc    *svcmock.MockService
}

func newTestServer(t *testing.T) *testServer {
	ctrl := gomock.NewController(t)

	sm := sessmock.NewMockManager(ctrl)
	sm.EXPECT().Lookup(gomock.Any(), testToken).Return(&session.Session{ID: "sid", UserID: me}, nil).AnyTimes()
	sm.EXPECT().Lookup(gomock.Any(), gomock.Not(testToken)).Return(nil, session.ErrNotFound).AnyTimes()

	ts := &testServer{
		s:   mock.NewMockStorage(ctrl),
		svc: svcmock.NewMockService(ctrl),
	}

	r := chi.NewRouter()
	SetupRouter(r, Config{
		Storage:   ts.s,
		Service:   ts.svc,
		Sessions:  sm,
		Realtime:  http.NotFoundHandler(),
		Cache:     memory.NewStorage(),
		Timeout:   time.Minute,
		PublicURL: testURL + "/",
	})
	ts.router = r

	return ts
}

func (ts *testServer) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, r)
	return w
}

func authorized(r *http.Request) *http.Request {
	r.Header.Set("Authorization", "Bearer "+testToken)
	return r
}

func jsonRequest(method, path, body string) *http.Request {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file, name string, data []byte) *http.Request {
	var b bytes.Buffer
	mw := multipart.NewWriter(&b)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if file != "" {
		fw, err := mw.CreateFormFile(file, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, path, &b)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func testUser(id, name string) *entities.User {
	return &entities.User{
		ID:                 id,
		Email:              name + "@example.com",
		Name:               name,
		ShowActivityStatus: true,
		AllowTagging:       true,
		CreatedAt:          timestamp,
		UpdatedAt:          timestamp,
	}
}

func testPost() *entities.Post {
	return &entities.Post{
		ID:        testPostID,
		UserID:    other,
		Caption:   "sunset #sky",
		ImageID:   testFileID,
		CreatedAt: timestamp,
	}
}

func Test_signUp(t *testing.T) {
	tt := []struct {
		name string
		body string
		err  error
		call bool
		code int
	}{
		{
			name: "success",
			body: `{"email":"a@b.c","password":"password","name":"alice"}`,
			call: true,
			code: http.StatusCreated,
		},
		{
			name: "invalid body",
			body: `{"email":`,
			code: http.StatusBadRequest,
		},
		{
			name: "empty body",
			code: http.StatusBadRequest,
		},
		{
			name: "invalid request",
			body: `{"email":"a","password":"p","name":""}`,
			err:  service.ErrInvalidRequest,
			call: true,
			code: http.StatusBadRequest,
		},
		{
			name: "email taken",
			body: `{"email":"a@b.c","password":"password","name":"alice"}`,
			err:  service.ErrEmailTaken,
			call: true,
			code: http.StatusConflict,
		},
		{
			name: "internal error",
			body: `{"email":"a@b.c","password":"password","name":"alice"}`,
			err:  io.ErrUnexpectedEOF,
			call: true,
			code: http.StatusInternalServerError,
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)

			if tc.call {
				var req SignUpRequest
				require.NoError(t, json.Unmarshal([]byte(tc.body), &req))

				if tc.err != nil {
					ts.svc.EXPECT().SignUp(gomock.Any(), req.Email, req.Password, req.Name).Return("", nil, tc.err)
				} else {
					ts.svc.EXPECT().SignUp(gomock.Any(), req.Email, req.Password, req.Name).Return(testToken, testUser(me, "alice"), nil)
				}
			}

			w := ts.do(jsonRequest(http.MethodPost, "/v1/auth/signup", tc.body))
			require.Equal(t, tc.code, w.Code, w.Body.String())

			if tc.code == http.StatusCreated {
				cookies := w.Result().Cookies()
				require.Len(t, cookies, 1)
				assert.Equal(t, mm.SessionCookie, cookies[0].Name)
				assert.Equal(t, testToken, cookies[0].Value)
				assert.True(t, cookies[0].HttpOnly)

				var resp AuthResponse
				decode(t, w, &resp)
				assert.Equal(t, testToken, resp.Token)
				assert.Equal(t, me, resp.User.ID)
			}
		})
	}
}

func Test_login(t *testing.T) {
	ts := newTestServer(t)

	ts.svc.EXPECT().SignIn(gomock.Any(), "a@b.c", "wrong").Return("", nil, service.ErrInvalidCredentials)

	w := ts.do(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"a@b.c","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func Test_logout(t *testing.T) {
	ts := newTestServer(t)

	ts.svc.EXPECT().SignOut(gomock.Any(), testToken).Return(nil)

	w := ts.do(authorized(httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)))
	assert.Equal(t, http.StatusNoContent, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, mm.SessionCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func Test_protected(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	r.Header.Set("Accept", "text/html,application/xhtml+xml")
	w = ts.do(r)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, mm.LoginPath, w.Header().Get("Location"))

	r = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	r.AddCookie(&http.Cookie{Name: mm.SessionCookie, Value: "revoked"})
	w = ts.do(r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	ts.s.EXPECT().GetUser(gomock.Any(), me).Return(testUser(me, "alice"), nil)

	r = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	r.AddCookie(&http.Cookie{Name: mm.SessionCookie, Value: testToken})
	w = ts.do(r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func Test_listPosts(t *testing.T) {
	ts := newTestServer(t)

	ts.s.EXPECT().ListPosts(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *storage.ListPostsParams) ([]*entities.Post, error) {
		assert.EqualValues(t, 20, p.Limit)
		assert.EqualValues(t, 40, p.Offset)
		require.NotNil(t, p.FollowedBy)
		assert.Equal(t, me, *p.FollowedBy)
		require.NotNil(t, p.Query)
		assert.Equal(t, "sunset", *p.Query)
		assert.Nil(t, p.Owner)
		assert.Nil(t, p.BookmarkedBy)
		require.NotNil(t, p.ViewerID)
		assert.Equal(t, me, *p.ViewerID)

		return []*entities.Post{testPost()}, nil
	})
	ts.s.EXPECT().GetPostStats(gomock.Any(), testPostID).Return(map[string]entities.PostStats{
		testPostID: {Likes: 3, Comments: 2, Shares: 1, Bookmarks: 4},
	}, nil)
	ts.s.EXPECT().GetLikes(gomock.Any(), me, testPostID).Return(map[string]bool{testPostID: true}, nil)
	ts.s.EXPECT().GetBookmarks(gomock.Any(), me, testPostID).Return(map[string]bool{}, nil)
	ts.s.EXPECT().GetUsers(gomock.Any(), other).Return([]*entities.User{testUser(other, "bob")}, nil)

	w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts?limit=20&offset=40&feed=true&q=sunset", nil)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ListPostsResponse
	decode(t, w, &resp)

	require.Len(t, resp.Posts, 1)
	assert.Equal(t, *testPost(), resp.Posts[0].Post)
	assert.Equal(t, testURL+"/v1/files/"+testFileID+"/view", resp.Posts[0].ImageURL)
	assert.Equal(t, entities.PostStats{Likes: 3, Comments: 2, Shares: 1, Bookmarks: 4}, resp.Posts[0].Stats)
	assert.True(t, resp.Posts[0].Liked)
	assert.False(t, resp.Posts[0].Bookmarked)
	require.Contains(t, resp.Profiles, other)
	assert.Equal(t, "bob", resp.Profiles[other].Name)
}

func Test_listPosts_Empty(t *testing.T) {
	ts := newTestServer(t)

	ts.s.EXPECT().ListPosts(gomock.Any(), gomock.Any()).Return([]*entities.Post{}, nil)

	w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts":[],"profiles":{}}`, w.Body.String())
}

func Test_listPosts_InvalidParams(t *testing.T) {
	for _, q := range []string{
		"limit=0",
		"limit=101",
		"limit=abc",
		"offset=-1",
		"owner=abc",
		"feed=maybe",
	} {
		t.Run(q, func(t *testing.T) {
			ts := newTestServer(t)

			w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts?"+q, nil)))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func Test_listPosts_HiddenFromViewer(t *testing.T) {
	for _, q := range []string{
		"",
		"owner=" + other,
		"q=sunset",
	} {
		t.Run(q, func(t *testing.T) {
			ts := newTestServer(t)

			ts.s.EXPECT().ListPosts(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *storage.ListPostsParams) ([]*entities.Post, error) {
				require.NotNil(t, p.ViewerID)
				assert.Equal(t, me, *p.ViewerID)
				return []*entities.Post{}, nil
			})

			w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts?"+q, nil)))
			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"posts":[],"profiles":{}}`, w.Body.String())
		})
	}
}

func Test_listBookmarks(t *testing.T) {
	ts := newTestServer(t)

	ts.s.EXPECT().ListPosts(gomock.Any(), &storage.ListPostsParams{
		Limit:        defaultLimit,
		BookmarkedBy: func() *string { s := me; return &s }(),
		ViewerID:     func() *string { s := me; return &s }(),
	}).Return(nil, nil)

	w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/bookmarks", nil)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func Test_getPost(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts/abc", nil)))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		ts := newTestServer(t)

		ts.s.EXPECT().GetPost(gomock.Any(), testPostID).Return(nil, storage.ErrNotFound)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts/"+testPostID, nil)))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("blocked", func(t *testing.T) {
		ts := newTestServer(t)

		ts.s.EXPECT().GetPost(gomock.Any(), testPostID).Return(testPost(), nil)
		ts.s.EXPECT().GetUser(gomock.Any(), other).Return(testUser(other, "bob"), nil)
		ts.s.EXPECT().CanView(gomock.Any(), me, other).Return(false, nil)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts/"+testPostID, nil)))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		ts := newTestServer(t)

		ts.s.EXPECT().GetPost(gomock.Any(), testPostID).Return(testPost(), nil)
		ts.s.EXPECT().GetUser(gomock.Any(), other).Return(testUser(other, "bob"), nil)
		ts.s.EXPECT().CanView(gomock.Any(), me, other).Return(true, nil)
		ts.s.EXPECT().GetPostStats(gomock.Any(), testPostID).Return(map[string]entities.PostStats{}, nil)
		ts.s.EXPECT().GetLikes(gomock.Any(), me, testPostID).Return(nil, nil)
		ts.s.EXPECT().GetBookmarks(gomock.Any(), me, testPostID).Return(map[string]bool{testPostID: true}, nil)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts/"+testPostID, nil)))
		require.Equal(t, http.StatusOK, w.Code)

		var resp GetPostResponse
		decode(t, w, &resp)
		assert.Equal(t, testPostID, resp.Post.ID)
		assert.True(t, resp.Post.Bookmarked)
		assert.False(t, resp.Post.Liked)
		assert.Equal(t, "bob", resp.Profile.Name)
	})
}

func Test_createPost(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ts := newTestServer(t)

		ts.svc.EXPECT().CreatePost(gomock.Any(), me, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, p *service.CreatePostParams) (*entities.Post, error) {
				assert.Equal(t, "hello #world", p.Caption)
				assert.Equal(t, "photo.png", p.Image.Name)
				assert.Equal(t, []byte("image"), p.Image.Data)
				assert.Equal(t, imaging.Adjustment{Preset: "sepia", Brightness: 120, Contrast: 100}, p.Adjustment)

				return &entities.Post{ID: testPostID, UserID: me, Caption: p.Caption, ImageID: testFileID, CreatedAt: timestamp}, nil
			})

		w := ts.do(authorized(multipartRequest(t, "/v1/posts", map[string]string{
			"caption":    "hello #world",
			"filter":     "sepia",
			"brightness": "120",
		}, "image", "photo.png", []byte("image"))))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var p Post
		decode(t, w, &p)
		assert.Equal(t, testPostID, p.ID)
		assert.Equal(t, testURL+"/v1/files/"+testFileID+"/view", p.ImageURL)
	})

	for name, fields := range map[string]map[string]string{
		"unknown preset":     {"filter": "vintage"},
		"invalid brightness": {"brightness": "bright"},
		"contrast too high":  {"contrast": "201"},
	} {
		fields := fields
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t)

			w := ts.do(authorized(multipartRequest(t, "/v1/posts", fields, "image", "photo.png", []byte("image"))))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("no image", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(authorized(multipartRequest(t, "/v1/posts", map[string]string{"caption": "x"}, "", "", nil)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"invalid request: image is required"}`, w.Body.String())
	})

	t.Run("unsupported image", func(t *testing.T) {
		ts := newTestServer(t)

		ts.svc.EXPECT().CreatePost(gomock.Any(), me, gomock.Any()).Return(nil, service.ErrInvalidRequest)

		w := ts.do(authorized(multipartRequest(t, "/v1/posts", nil, "image", "photo.png", []byte("image"))))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func Test_deletePost(t *testing.T) {
	tt := []struct {
		name string
		err  error
		code int
	}{
		{name: "success", code: http.StatusNoContent},
		{name: "forbidden", err: service.ErrForbidden, code: http.StatusForbidden},
		{name: "not found", err: storage.ErrNotFound, code: http.StatusNotFound},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)

			ts.svc.EXPECT().DeletePost(gomock.Any(), me, testPostID).Return(tc.err)

			w := ts.do(authorized(httptest.NewRequest(http.MethodDelete, "/v1/posts/"+testPostID, nil)))
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func Test_getAnalytics(t *testing.T) {
	t.Run("forbidden", func(t *testing.T) {
		ts := newTestServer(t)

		ts.s.EXPECT().GetPost(gomock.Any(), testPostID).Return(testPost(), nil)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts/"+testPostID+"/analytics", nil)))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		ts := newTestServer(t)

		p := testPost()
		p.UserID = me

		ts.s.EXPECT().GetPost(gomock.Any(), testPostID).Return(p, nil)
		ts.s.EXPECT().GetPostStats(gomock.Any(), testPostID).Return(map[string]entities.PostStats{
			testPostID: {Likes: 5, Comments: 4, Shares: 3, Bookmarks: 2},
		}, nil)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts/"+testPostID+"/analytics", nil)))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"likes":5,"comments":4,"shares":3}`, w.Body.String())
	})
}

func Test_toggles(t *testing.T) {
	tt := []struct {
		name   string
		method string
		path   string
		expect func(s *svcmock.MockService) *gomock.Call
		code   int
		body   string
	}{
		{
			name:   "like",
			method: http.MethodPut,
			path:   "/v1/posts/" + testPostID + "/like",
			expect: func(s *svcmock.MockService) *gomock.Call {
				return s.EXPECT().SetLike(gomock.Any(), me, testPostID, true).Return(&service.ToggleState{Active: true, Count: 8}, nil)
			},
			code: http.StatusOK,
			body: `{"active":true,"count":8}`,
		},
		{
			name:   "unlike",
			method: http.MethodDelete,
			path:   "/v1/posts/" + testPostID + "/like",
			expect: func(s *svcmock.MockService) *gomock.Call {
				return s.EXPECT().SetLike(gomock.Any(), me, testPostID, false).Return(&service.ToggleState{Count: 7}, nil)
			},
			code: http.StatusOK,
			body: `{"active":false,"count":7}`,
		},
		{
			name:   "bookmark missing post",
			method: http.MethodPut,
			path:   "/v1/posts/" + testPostID + "/bookmark",
			expect: func(s *svcmock.MockService) *gomock.Call {
				return s.EXPECT().SetBookmark(gomock.Any(), me, testPostID, true).Return(nil, storage.ErrNotFound)
			},
			code: http.StatusNotFound,
			body: `{"error":"not found"}`,
		},
		{
			name:   "like hidden post",
			method: http.MethodPut,
			path:   "/v1/posts/" + testPostID + "/like",
			expect: func(s *svcmock.MockService) *gomock.Call {
				return s.EXPECT().SetLike(gomock.Any(), me, testPostID, true).Return(nil, fmt.Errorf("failed to get post: %w", storage.ErrNotFound))
			},
			code: http.StatusNotFound,
			body: `{"error":"not found"}`,
		},
		{
			name:   "follow",
			method: http.MethodPut,
			path:   "/v1/users/" + other + "/follow",
			expect: func(s *svcmock.MockService) *gomock.Call {
				return s.EXPECT().SetFollow(gomock.Any(), me, other, true).Return(&service.ToggleState{Active: true, Count: 1}, nil)
			},
			code: http.StatusOK,
			body: `{"active":true,"count":1}`,
		},
		{
			name:   "follow blocked",
			method: http.MethodPut,
			path:   "/v1/users/" + other + "/follow",
			expect: func(s *svcmock.MockService) *gomock.Call {
				return s.EXPECT().SetFollow(gomock.Any(), me, other, true).Return(nil, service.ErrBlocked)
			},
			code: http.StatusForbidden,
			body: `{"error":"blocked"}`,
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			tc.expect(ts.svc)

			w := ts.do(authorized(httptest.NewRequest(tc.method, tc.path, nil)))
			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func Test_setBlock(t *testing.T) {
	ts := newTestServer(t)

	ts.svc.EXPECT().SetBlock(gomock.Any(), me, other, false).Return(nil)

	w := ts.do(authorized(httptest.NewRequest(http.MethodDelete, "/v1/users/"+other+"/block", nil)))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func Test_getProfile(t *testing.T) {
	t.Run("private", func(t *testing.T) {
		ts := newTestServer(t)

		u := testUser(other, "bob")
		u.IsPrivate = true

		ts.s.EXPECT().GetUser(gomock.Any(), other).Return(u, nil)
		ts.s.EXPECT().GetFollowStats(gomock.Any(), other).Return(&entities.FollowStats{Followers: 10, Following: 2}, nil)
		ts.s.EXPECT().IsFollowing(gomock.Any(), me, other).Return(false, nil)
		ts.s.EXPECT().IsBlocked(gomock.Any(), me, other).Return(false, nil)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/users/"+other, nil)))
		require.Equal(t, http.StatusOK, w.Code)

		var resp ProfileResponse
		decode(t, w, &resp)
		assert.Equal(t, "bob", resp.User.Name)
		assert.Empty(t, resp.Posts)
		assert.EqualValues(t, 10, resp.Followers)
		assert.EqualValues(t, 2, resp.Following)
		assert.False(t, resp.IsFollowing)
	})

	t.Run("own", func(t *testing.T) {
		ts := newTestServer(t)

		p := testPost()
		p.UserID = me

		ts.s.EXPECT().GetUser(gomock.Any(), me).Return(testUser(me, "alice"), nil)
		ts.s.EXPECT().GetFollowStats(gomock.Any(), me).Return(&entities.FollowStats{}, nil)
		ts.s.EXPECT().ListPosts(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, params *storage.ListPostsParams) ([]*entities.Post, error) {
			require.NotNil(t, params.Owner)
			assert.Equal(t, me, *params.Owner)
			return []*entities.Post{p}, nil
		})
		ts.s.EXPECT().GetPostStats(gomock.Any(), testPostID).Return(nil, nil)
		ts.s.EXPECT().GetLikes(gomock.Any(), me, testPostID).Return(nil, nil)
		ts.s.EXPECT().GetBookmarks(gomock.Any(), me, testPostID).Return(nil, nil)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/users/"+me, nil)))
		require.Equal(t, http.StatusOK, w.Code)

		var resp ProfileResponse
		decode(t, w, &resp)
		require.Len(t, resp.Posts, 1)
		assert.Equal(t, testPostID, resp.Posts[0].ID)
	})

	t.Run("not found", func(t *testing.T) {
		ts := newTestServer(t)

		ts.s.EXPECT().GetUser(gomock.Any(), other).Return(nil, storage.ErrNotFound)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/users/"+other, nil)))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func Test_listFollowers(t *testing.T) {
	ts := newTestServer(t)

	ts.s.EXPECT().ListFollows(gomock.Any(), &storage.ListFollowsParams{
		UserID:    me,
		Direction: storage.Followers,
		Limit:     defaultLimit,
	}).Return([]*entities.Follow{{FollowerID: other, FollowedID: me}}, nil)
	ts.s.EXPECT().GetUsers(gomock.Any(), other).Return([]*entities.User{testUser(other, "bob")}, nil)

	w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/users/"+me+"/followers", nil)))
	require.Equal(t, http.StatusOK, w.Code)

	var users []*entities.User
	decode(t, w, &users)
	require.Len(t, users, 1)
	assert.Equal(t, other, users[0].ID)
}

func Test_updatePrivacy(t *testing.T) {
	ts := newTestServer(t)

	ts.svc.EXPECT().UpdateUser(gomock.Any(), me, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, p *service.UpdateUserParams) (*entities.User, error) {
			require.NotNil(t, p.IsPrivate)
			assert.True(t, *p.IsPrivate)
			assert.Nil(t, p.AllowTagging)
			assert.Nil(t, p.Name)

			u := testUser(me, "alice")
			u.IsPrivate = true
			return u, nil
		})

	w := ts.do(authorized(jsonRequest(http.MethodPut, "/v1/me/privacy", `{"isPrivate":true}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var u entities.User
	decode(t, w, &u)
	assert.True(t, u.IsPrivate)
}

func Test_addComment(t *testing.T) {
	ts := newTestServer(t)

	ts.svc.EXPECT().AddComment(gomock.Any(), me, testPostID, "nice").Return(&entities.Comment{
		ID: "c", UserID: me, PostID: testPostID, Content: "nice", CreatedAt: timestamp,
	}, nil)

	w := ts.do(authorized(jsonRequest(http.MethodPost, "/v1/posts/"+testPostID+"/comments", `{"content":"nice"}`)))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"c","userId":"`+me+`","postId":"`+testPostID+`","content":"nice","createdAt":"1970-01-01T00:01:40Z"}`, w.Body.String())
}

func Test_addComment_HiddenPost(t *testing.T) {
	ts := newTestServer(t)

	ts.svc.EXPECT().AddComment(gomock.Any(), me, testPostID, "nice").Return(nil, fmt.Errorf("failed to get post: %w", storage.ErrNotFound))

	w := ts.do(authorized(jsonRequest(http.MethodPost, "/v1/posts/"+testPostID+"/comments", `{"content":"nice"}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func Test_listComments(t *testing.T) {
	t.Run("hidden post", func(t *testing.T) {
		ts := newTestServer(t)

		ts.s.EXPECT().GetPost(gomock.Any(), testPostID).Return(testPost(), nil)
		ts.s.EXPECT().CanView(gomock.Any(), me, other).Return(false, nil)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts/"+testPostID+"/comments", nil)))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		ts := newTestServer(t)

		ts.s.EXPECT().GetPost(gomock.Any(), testPostID).Return(testPost(), nil)
		ts.s.EXPECT().CanView(gomock.Any(), me, other).Return(true, nil)
		ts.s.EXPECT().ListComments(gomock.Any(), testPostID, uint16(defaultLimit), uint16(0)).Return([]*entities.Comment{
			{ID: "c", UserID: other, PostID: testPostID, Content: "nice", CreatedAt: timestamp},
		}, nil)
		ts.s.EXPECT().GetUsers(gomock.Any(), other).Return([]*entities.User{testUser(other, "bob")}, nil)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/posts/"+testPostID+"/comments", nil)))
		require.Equal(t, http.StatusOK, w.Code)

		var resp ListCommentsResponse
		decode(t, w, &resp)
		require.Len(t, resp.Comments, 1)
		assert.Contains(t, resp.Profiles, other)
	})
}

func Test_bodyLimit(t *testing.T) {
	ts := newTestServer(t)

	body := `{"content":"` + strings.Repeat("a", maxBodySize) + `"}`

	w := ts.do(authorized(jsonRequest(http.MethodPost, "/v1/posts/"+testPostID+"/comments", body)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_listTrendingHashtags_Cached(t *testing.T) {
	ts := newTestServer(t)

	ts.s.EXPECT().ListTrendingHashtags(gomock.Any(), uint16(5)).Return([]*entities.Hashtag{
		{ID: "h", Name: "sky", PostCount: 3, CreatedAt: timestamp, UpdatedAt: timestamp},
	}, nil).Times(1)

	for _, cache := range []string{"MISS", "HIT"} {
		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/hashtags/trending?limit=5", nil)))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, cache, w.Header().Get("X-Cache"))
		assert.Contains(t, w.Body.String(), `"name":"sky"`)
	}
}

func Test_viewFile(t *testing.T) {
	ts := newTestServer(t)

	ts.s.EXPECT().GetFile(gomock.Any(), testFileID).Return(&entities.File{
		ID:          testFileID,
		Name:        "photo.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Data:        []byte("data"),
	}, nil)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/v1/files/"+testFileID+"/view", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "4", w.Header().Get("Content-Length"))
	assert.Equal(t, "data", w.Body.String())
}

func Test_profileFeed(t *testing.T) {
	t.Run("public", func(t *testing.T) {
		ts := newTestServer(t)

		ts.s.EXPECT().GetUser(gomock.Any(), other).Return(testUser(other, "bob"), nil)
		ts.s.EXPECT().ListPosts(gomock.Any(), gomock.Any()).Return([]*entities.Post{testPost()}, nil)

		w := ts.do(httptest.NewRequest(http.MethodGet, "/v1/profiles/"+other+"/feed.rss", nil))
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		assert.Contains(t, w.Header().Get("Content-Type"), "application/rss+xml")
		assert.Contains(t, body, "<title>Photon - bob</title>")
		assert.Contains(t, body, "sunset #sky")
		assert.Contains(t, body, testURL+"/posts/"+testPostID)
		assert.Contains(t, body, testURL+"/v1/files/"+testFileID+"/view")
	})

	t.Run("private", func(t *testing.T) {
		ts := newTestServer(t)

		u := testUser(other, "bob")
		u.IsPrivate = true
		ts.s.EXPECT().GetUser(gomock.Any(), other).Return(u, nil)

		w := ts.do(httptest.NewRequest(http.MethodGet, "/v1/profiles/"+other+"/feed.rss", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func Test_listStories(t *testing.T) {
	ts := newTestServer(t)

	ts.s.EXPECT().ListStories(gomock.Any(), me, gomock.Any(), uint16(defaultLimit)).Return([]*entities.Story{
		{ID: "s", UserID: other, ImageID: testFileID, CreatedAt: timestamp, ExpiresAt: timestamp.Add(24 * time.Hour)},
	}, nil)
	ts.s.EXPECT().GetUsers(gomock.Any(), other).Return([]*entities.User{testUser(other, "bob")}, nil)

	w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/stories", nil)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListStoriesResponse
	decode(t, w, &resp)
	require.Len(t, resp.Stories, 1)
	assert.Equal(t, testURL+"/v1/files/"+testFileID+"/view", resp.Stories[0].ImageURL)
	assert.Contains(t, resp.Profiles, other)
}

func Test_listReels(t *testing.T) {
	ts := newTestServer(t)

	ts.s.EXPECT().ListReels(gomock.Any(), me, uint16(5), uint16(10)).Return([]*entities.Reel{
		{ID: "r", UserID: other, VideoFileID: testFileID, CreatedAt: timestamp},
	}, nil)
	ts.s.EXPECT().GetUsers(gomock.Any(), other).Return([]*entities.User{testUser(other, "bob")}, nil)

	w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/reels?limit=5&offset=10", nil)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListReelsResponse
	decode(t, w, &resp)
	require.Len(t, resp.Reels, 1)
	assert.Equal(t, testURL+"/v1/files/"+testFileID+"/view", resp.Reels[0].VideoURL)
}

func Test_createReel(t *testing.T) {
	ts := newTestServer(t)

	ts.svc.EXPECT().CreateReel(gomock.Any(), me, "dance", gomock.Any()).DoAndReturn(
		func(_ context.Context, _, caption string, u *service.Upload) (*entities.Reel, error) {
			assert.Equal(t, "clip.mp4", u.Name)
			return &entities.Reel{ID: "r", UserID: me, Caption: caption, VideoFileID: testFileID, CreatedAt: timestamp}, nil
		})

	w := ts.do(authorized(multipartRequest(t, "/v1/reels", map[string]string{"caption": "dance"}, "video", "clip.mp4", []byte("video"))))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var r Reel
	decode(t, w, &r)
	assert.Equal(t, testURL+"/v1/files/"+testFileID+"/view", r.VideoURL)
}

func Test_listMessages(t *testing.T) {
	t.Run("not participant", func(t *testing.T) {
		ts := newTestServer(t)

		ts.s.EXPECT().GetConversation(gomock.Any(), testPostID).Return(&entities.Conversation{
			ID:           testPostID,
			Participants: []string{other, "55555555-5555-5555-5555-555555555555"},
		}, nil)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/conversations/"+testPostID+"/messages", nil)))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		ts := newTestServer(t)

		ts.s.EXPECT().GetConversation(gomock.Any(), testPostID).Return(&entities.Conversation{
			ID:           testPostID,
			Participants: []string{me, other},
		}, nil)
		ts.s.EXPECT().ListMessages(gomock.Any(), testPostID, uint16(defaultLimit)).Return([]*entities.Message{}, nil)

		w := ts.do(authorized(httptest.NewRequest(http.MethodGet, "/v1/conversations/"+testPostID+"/messages", nil)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func Test_sendMessage(t *testing.T) {
	t.Run("invalid receiver", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(authorized(jsonRequest(http.MethodPost, "/v1/messages", `{"receiverId":"bob","content":"hi"}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("blocked", func(t *testing.T) {
		ts := newTestServer(t)

		ts.svc.EXPECT().SendMessage(gomock.Any(), me, &service.SendMessageParams{
			ReceiverID: other,
			Content:    "hi",
		}).Return(nil, service.ErrBlocked)

		w := ts.do(authorized(jsonRequest(http.MethodPost, "/v1/messages", `{"receiverId":"`+other+`","content":"hi"}`)))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("to conversation", func(t *testing.T) {
		ts := newTestServer(t)

		ts.svc.EXPECT().SendMessage(gomock.Any(), me, &service.SendMessageParams{
			ConversationID: testPostID,
			Content:        "hi",
		}).Return(&entities.Message{ID: "m", Content: "hi", Type: entities.TextMessage}, nil)

		w := ts.do(authorized(jsonRequest(http.MethodPost, "/v1/conversations/"+testPostID+"/messages", `{"content":"hi"}`)))
		require.Equal(t, http.StatusCreated, w.Code)

		var m entities.Message
		decode(t, w, &m)
		assert.Equal(t, "m", m.ID)
	})
}

func Test_sharePost_HiddenPost(t *testing.T) {
	ts := newTestServer(t)

	ts.svc.EXPECT().SharePost(gomock.Any(), me, testPostID, other).Return(nil, fmt.Errorf("failed to get post: %w", storage.ErrNotFound))

	w := ts.do(authorized(jsonRequest(http.MethodPost, "/v1/posts/"+testPostID+"/share", `{"receiverId":"`+other+`"}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func Test_sharePost(t *testing.T) {
	ts := newTestServer(t)

	ts.svc.EXPECT().SharePost(gomock.Any(), me, testPostID, other).Return(&entities.Message{
		ID:      "m",
		Type:    entities.SharedPostMessage,
		Content: testPostID,
	}, nil)

	w := ts.do(authorized(jsonRequest(http.MethodPost, "/v1/posts/"+testPostID+"/share", `{"receiverId":"`+other+`"}`)))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"shared_post"`)
}
