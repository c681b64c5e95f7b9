package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type TestServer struct {
	*httptest.Server
	t *testing.T
}

func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	server := httptest.NewServer(handler)
	return &TestServer{
		Server: server,
		t:      t,
	}
}

// NewBrowser returns a client with its own cookie jar, simulating a
// distinct logged-in visitor
func (ts *TestServer) NewBrowser() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(ts.t, err)
	return &http.Client{Jar: jar}
}

func (ts *TestServer) GET(client *http.Client, path string) *http.Response {
	resp, err := client.Get(ts.URL + path)
	require.NoError(ts.t, err)
	return resp
}

// POSTForm submits an HTML form the way the server-rendered pages do
func (ts *TestServer) POSTForm(client *http.Client, path string, form url.Values) *http.Response {
	resp, err := client.Post(ts.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(ts.t, err)
	return resp
}

// POSTJson submits a JSON body, used by the API endpoints
func (ts *TestServer) POSTJson(client *http.Client, path string, body interface{}) *http.Response {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(ts.t, err)
		bodyReader = bytes.NewReader(jsonBody)
	}

	resp, err := client.Post(ts.URL+path, "application/json", bodyReader)
	require.NoError(ts.t, err)
	return resp
}

// GETBearer performs a GET with an Authorization bearer token
func (ts *TestServer) GETBearer(client *http.Client, path, token string) *http.Response {
	req, err := http.NewRequest("GET", ts.URL+path, nil)
	require.NoError(ts.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(ts.t, err)
	return resp
}

func ReadBody(t *testing.T, resp *http.Response) string {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func AssertJSONResponse(t *testing.T, resp *http.Response, expectedStatus int, target interface{}) {
	require.Equal(t, expectedStatus, resp.StatusCode)

	if target != nil {
		defer resp.Body.Close()
		err := json.NewDecoder(resp.Body).Decode(target)
		require.NoError(t, err)
	}
}
