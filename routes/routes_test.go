package routes

import (
	"bufio"
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

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/navbryce/next-social-be/controllers"
	"github.com/navbryce/next-social-be/db/memory"
	"github.com/navbryce/next-social-be/middleware"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiFixture struct {
	router   *gin.Engine
	verifier *middleware.JWTVerifier
	bus      *services.MemoryBus
	fanout   *controllers.FanoutDispatcher

	stopStreams context.CancelFunc
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	mdb := memory.New()
	bus := services.NewMemoryBus()
	cache := services.NewMemoryPostCache()
	uploader := &services.DiskUploader{Dir: t.TempDir()}
	verifier := middleware.NewJWTVerifier([]byte("secret"), "")
	fanout := controllers.NewFanoutDispatcher(bus, &controllers.FanoutOpts{Workers: 4, MaxTries: 1})
	t.Cleanup(fanout.Wait)

	r := gin.New()
	AddHealthCheckRoutes(&r.RouterGroup, mdb)
	AddMetricsRoutes(&r.RouterGroup)
	api := r.Group("/api")
	AddPostRoutes(api, mdb, verifier, controllers.NewPostController(mdb, cache, uploader, fanout))
	AddInteractionRoutes(api, mdb, verifier, controllers.NewInteractionController(mdb, cache))
	AddDirectRoutes(api, mdb, verifier, controllers.NewDirectController(mdb, fanout))
	AddUserRoutes(api, mdb, verifier, controllers.NewUserController(mdb, uploader))
	AddFollowRoutes(api, mdb, verifier, controllers.NewFollowController(mdb))
	AddFeedRoutes(api, mdb, verifier, controllers.NewExploreController(mdb))
	AddNotificationRoutes(api, mdb, verifier, controllers.NewNotificationController(mdb))
	streams, stopStreams := context.WithCancel(context.Background())
	t.Cleanup(stopStreams)
	AddRealtimeRoutes(api, mdb, verifier, bus, streams.Done())

	return &apiFixture{router: r, verifier: verifier, bus: bus, fanout: fanout, stopStreams: stopStreams}
}

func (f *apiFixture) token(t *testing.T, email string) string {
	t.Helper()
	token, err := f.verifier.Sign(&middleware.SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(t *testing.T, req *http.Request, token string) (int, map[string]interface{}) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func (f *apiFixture) json(t *testing.T, method, path, token string, payload interface{}) map[string]interface{} {
	t.Helper()
	var reader *bytes.Reader
	if payload == nil {
		reader = bytes.NewReader(nil)
	} else {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	code, body := f.do(t, req, token)
	require.Equal(t, http.StatusOK, code)
	return body
}

func (f *apiFixture) form(t *testing.T, path, token string, fields map[string]string) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	code, body := f.do(t, req, token)
	require.Equal(t, http.StatusOK, code)
	return body
}

// signUp creates the account for email and returns its token and username.
func (f *apiFixture) signUp(t *testing.T, email string) (string, string) {
	t.Helper()
	token := f.token(t, email)
	body := f.json(t, http.MethodPut, "/api/user", token, nil)
	user := body["user"].(map[string]interface{})
	return token, user["username"].(string)
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	f := newAPIFixture(t)
	code, body := f.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["ok"])

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutesRequireSession(t *testing.T) {
	f := newAPIFixture(t)
	code, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/post?id=1", nil), "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, body["success"])

	code, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/user", nil), f.token(t, "nobody@example.com"))
	assert.Equal(t, http.StatusForbidden, code)
}

func TestPostLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	token, _ := f.signUp(t, "alice@example.com")

	created := f.form(t, "/api/post", token, map[string]string{"post": "hello world"})
	post := created["post"].(map[string]interface{})
	assert.Equal(t, "hello world", post["content"])
	id := int64(post["id"].(float64))

	fetched := f.json(t, http.MethodGet, fmt.Sprintf("/api/post?id=%d", id), token, nil)
	assert.Equal(t, "hello world", fetched["post"].(map[string]interface{})["content"])

	liked := f.json(t, http.MethodPost, "/api/like", token, gin.H{"id": id})
	assert.Equal(t, true, liked["liked"])
	checked := f.json(t, http.MethodGet, fmt.Sprintf("/api/like?post_id=%d", id), token, nil)
	assert.Equal(t, true, checked["liked"])
	bookmarked := f.json(t, http.MethodPost, "/api/bookmark", token, gin.H{"id": id})
	assert.Equal(t, true, bookmarked["bookmarked"])

	deleted := f.json(t, http.MethodDelete, "/api/post", token, gin.H{"id": id})
	assert.NotNil(t, deleted["post"])

	missing := f.json(t, http.MethodGet, fmt.Sprintf("/api/post?id=%d", id), token, nil)
	assert.Equal(t, true, missing["error"])
	assert.Equal(t, "not_found", missing["kind"])
	assert.NotContains(t, missing, "errorMessage")
}

func TestMalformedRequestsAreValidationErrors(t *testing.T) {
	f := newAPIFixture(t)
	token, _ := f.signUp(t, "alice@example.com")

	body := f.json(t, http.MethodGet, "/api/post?id=abc", token, nil)
	assert.Equal(t, "validation", body["kind"])

	body = f.json(t, http.MethodPost, "/api/repost", token, gin.H{"wrong": 1})
	assert.Equal(t, "validation", body["kind"])

	body = f.json(t, http.MethodPost, "/api/direct-message", token, gin.H{"directId": "1"})
	assert.Equal(t, "validation", body["kind"])
}

func TestUpdateProfileReportsTakenUsername(t *testing.T) {
	f := newAPIFixture(t)
	_, aliceName := f.signUp(t, "alice@example.com")
	bobToken, _ := f.signUp(t, "bob@example.com")

	body := f.form(t, "/api/user", bobToken, map[string]string{
		"username":    aliceName,
		"displayname": "Bob",
		"description": "hi",
	})
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "username taken", body["errorMessage"])

	body = f.form(t, "/api/user", bobToken, map[string]string{
		"username":    "bobby",
		"displayname": "Bob",
		"description": "hi",
		"avatar":      "data:image/png;base64,aGVsbG8=",
	})
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "bobby", user["username"])
	assert.NotNil(t, user["avatar"])

	profile := f.json(t, http.MethodGet, "/api/users/bobby", bobToken, nil)
	assert.Equal(t, "bobby", profile["user"].(map[string]interface{})["username"])
}

func TestFollowAndFeeds(t *testing.T) {
	f := newAPIFixture(t)
	aliceToken, _ := f.signUp(t, "alice@example.com")
	bobToken, bobName := f.signUp(t, "bob@example.com")

	followed := f.json(t, http.MethodPost, "/api/follow", aliceToken, gin.H{"username": bobName})
	assert.Equal(t, true, followed["following"])

	f.form(t, "/api/post", bobToken, map[string]string{"post": "from bob"})

	feed := f.json(t, http.MethodPost, "/api/feeds", aliceToken, gin.H{"cursorType": "DASHBOARD", "cursor": gin.H{}})
	posts := feed["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "from bob", posts[0].(map[string]interface{})["content"])
	assert.Nil(t, feed["cursor"])

	explore := f.json(t, http.MethodGet, "/api/explore?skip=0", aliceToken, nil)
	assert.Len(t, explore["posts"], 1)
	assert.Equal(t, true, explore["noMore"])

	notifications := f.json(t, http.MethodGet, "/api/notifications", bobToken, nil)
	assert.Len(t, notifications["notifications"], 1)
	read := f.json(t, http.MethodPost, "/api/notifications/read", bobToken, nil)
	assert.Equal(t, "ok", read["ok"])
}

func TestDirectMessages(t *testing.T) {
	f := newAPIFixture(t)
	aliceToken, _ := f.signUp(t, "alice@example.com")
	_, bobName := f.signUp(t, "bob@example.com")

	started := f.json(t, http.MethodPost, "/api/direct", aliceToken, gin.H{"username": bobName})
	direct := started["direct"].(map[string]interface{})
	directId := fmt.Sprintf("%d", int64(direct["id"].(float64)))

	sent := f.json(t, http.MethodPost, "/api/direct-message", aliceToken, gin.H{"directId": directId, "message": "hey"})
	assert.Equal(t, "ok", sent["ok"])

	listed := f.json(t, http.MethodGet, "/api/direct", aliceToken, nil)
	assert.Len(t, listed["directs"], 1)
}

func TestRealtimeRejectsForeignChannels(t *testing.T) {
	f := newAPIFixture(t)
	token, _ := f.signUp(t, "alice@example.com")

	body := f.json(t, http.MethodGet, "/api/realtime/"+model.DashboardChannel("bob@example.com"), token, nil)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "forbidden", body["kind"])
}

func TestRealtimeStreamsEvents(t *testing.T) {
	f := newAPIFixture(t)
	token, _ := f.signUp(t, "alice@example.com")
	server := httptest.NewServer(f.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	channel := model.DashboardChannel("alice@example.com")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/realtime/"+channel+"?access_token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.NoError(t, f.bus.Publish(ctx, channel, model.EventNewMessage, gin.H{"post": gin.H{"id": 1}}))

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	assert.Equal(t, "event:"+model.EventNewMessage, lines[0])
	assert.JSONEq(t, `{"post":{"id":1}}`, strings.TrimPrefix(lines[1], "data:"))
}

func TestRealtimeStreamEndsOnServerShutdown(t *testing.T) {
	f := newAPIFixture(t)
	token, _ := f.signUp(t, "alice@example.com")
	server := httptest.NewUnstartedServer(f.router)
	server.Config.RegisterOnShutdown(f.stopStreams)
	server.Start()
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	channel := model.DashboardChannel("alice@example.com")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/realtime/"+channel+"?access_token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- server.Config.Shutdown(ctx) }()

	// the stream closes cleanly instead of running into the client deadline
	_, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, <-shutdownErr)
	assert.NoError(t, ctx.Err())
}
