package integration

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"goblog/internal/auth"
	"goblog/internal/web"
	"goblog/middleware"
	"goblog/models"
	"goblog/tests/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWebServer(t *testing.T) (*testEnv, *testutils.TestServer, func()) {
	env, cleanup := setupTestEnv(t)

	cfg := testutils.GetTestConfig()
	authHandlers := auth.NewAuthHandlers(cfg, env.authService)
	handler := web.NewWebHandler(env.authService, env.postService, authHandlers, cfg, "../../templates")
	mw := middleware.NewMiddleware(cfg)

	ts := testutils.NewTestServer(t, handler.SetupRoutes(mw))
	return env, ts, func() {
		ts.Close()
		cleanup()
	}
}

func signup(t *testing.T, ts *testutils.TestServer, client *http.Client, fullname, username, email, password string) {
	resp := ts.POSTForm(client, "/signup_page", url.Values{
		"fullname":         {fullname},
		"username":         {username},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// A successful signup auto-logs in and lands on the home page
	require.Equal(t, "/", resp.Request.URL.Path)
}

func TestWebHandlers_GuardsRejectAnonymous(t *testing.T) {
	_, ts, cleanup := setupWebServer(t)
	defer cleanup()

	// Client that does not follow redirects so the guard's response is visible
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	for _, path := range []string{"/blog_page", "/edit_post/1", "/delete_post/1", "/logout_page"} {
		resp := ts.GET(client, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "GET %s", path)
		assert.Equal(t, "/login_page", resp.Header.Get("Location"), "GET %s", path)
	}
}

func TestWebHandlers_EndToEnd(t *testing.T) {
	env, ts, cleanup := setupWebServer(t)
	defer cleanup()

	ctx := context.Background()
	alice := ts.NewBrowser()

	signup(t, ts, alice, "Alice A", "alice", "alice@x.com", "p1")

	resp := ts.POSTForm(alice, "/blog_page", url.Values{
		"title":   {"Hi"},
		"content": {"World"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	aliceUser, err := env.userRepo.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)

	posts, err := env.postService.ListOwnedBy(ctx, aliceUser.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hi", posts[0].Title)
	assert.Equal(t, "World", posts[0].Content)

	body := testutils.ReadBody(t, ts.GET(alice, "/blog_page"))
	assert.Contains(t, body, "Hi")
	assert.Contains(t, body, "World")

	// A second user must not be able to edit or delete alice's post
	bob := ts.NewBrowser()
	signup(t, ts, bob, "Bob B", "bob", "bob@x.com", "p2")

	postPath := "/edit_post/" + strconv.Itoa(posts[0].ID)
	resp = ts.POSTForm(bob, postPath, url.Values{
		"title":   {"hijacked"},
		"content": {"hijacked"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.GET(bob, postPath)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.GET(bob, "/delete_post/"+strconv.Itoa(posts[0].ID))
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	unchanged, err := env.postService.Get(ctx, posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", unchanged.Title)

	// The owner edits and the change shows up on her blog page
	resp = ts.POSTForm(alice, postPath, url.Values{
		"title":   {"T2"},
		"content": {"C2"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = testutils.ReadBody(t, ts.GET(alice, "/blog_page"))
	assert.Contains(t, body, "T2")
	assert.NotContains(t, body, "World")
}

func TestWebHandlers_LoginAndLogout(t *testing.T) {
	_, ts, cleanup := setupWebServer(t)
	defer cleanup()

	browser := ts.NewBrowser()
	signup(t, ts, browser, "Alice A", "alice", "alice@x.com", "p1")

	// Logout ends the session
	resp := ts.GET(browser, "/logout_page")
	resp.Body.Close()
	require.Equal(t, "/", resp.Request.URL.Path)

	resp = ts.GET(browser, "/blog_page")
	resp.Body.Close()
	assert.Equal(t, "/login_page", resp.Request.URL.Path)

	// Wrong password bounces back to the login form without a session
	resp = ts.POSTForm(browser, "/login_page", url.Values{
		"email":    {"alice@x.com"},
		"password": {"wrong"},
	})
	resp.Body.Close()
	assert.Equal(t, "/login_page", resp.Request.URL.Path)

	resp = ts.GET(browser, "/blog_page")
	resp.Body.Close()
	assert.Equal(t, "/login_page", resp.Request.URL.Path)

	// Correct credentials restore access
	resp = ts.POSTForm(browser, "/login_page", url.Values{
		"email":    {"alice@x.com"},
		"password": {"p1"},
	})
	resp.Body.Close()
	require.Equal(t, "/", resp.Request.URL.Path)

	resp = ts.GET(browser, "/blog_page")
	resp.Body.Close()
	assert.Equal(t, "/blog_page", resp.Request.URL.Path)
}

func TestWebHandlers_API(t *testing.T) {
	_, ts, cleanup := setupWebServer(t)
	defer cleanup()

	browser := ts.NewBrowser()
	signup(t, ts, browser, "Alice A", "alice", "alice@x.com", "p1")

	resp := ts.POSTForm(browser, "/blog_page", url.Values{
		"title":   {"Hi"},
		"content": {"World"},
	})
	resp.Body.Close()

	client := &http.Client{}

	t.Run("LoginIssuesToken", func(t *testing.T) {
		var tokenResp map[string]string
		resp := ts.POSTJson(client, "/api/login", auth.Credentials{Email: "alice@x.com", Password: "p1"})
		testutils.AssertJSONResponse(t, resp, http.StatusOK, &tokenResp)
		require.NotEmpty(t, tokenResp["token"])

		var posts []models.Post
		resp = ts.GETBearer(client, "/api/posts", tokenResp["token"])
		testutils.AssertJSONResponse(t, resp, http.StatusOK, &posts)
		require.Len(t, posts, 1)
		assert.Equal(t, "Hi", posts[0].Title)
	})

	t.Run("BadCredentialsRejected", func(t *testing.T) {
		resp := ts.POSTJson(client, "/api/login", auth.Credentials{Email: "alice@x.com", Password: "wrong"})
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("MissingTokenRejected", func(t *testing.T) {
		resp := ts.GETBearer(client, "/api/posts", "")
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("MalformedAuthHeaderRejected", func(t *testing.T) {
		// Headers shorter than the bearer prefix must yield 401, not a panic
		for _, path := range []string{"/api/check-auth", "/api/posts"} {
			req, err := http.NewRequest("GET", ts.URL+path, nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "x")

			resp, err := client.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "GET %s", path)
		}
	})
}
