package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BinLe1988/cofounder-match/api/handlers"
	"github.com/BinLe1988/cofounder-match/database/dbtest"
	"github.com/BinLe1988/cofounder-match/pkg/chunking"
	"github.com/BinLe1988/cofounder-match/pkg/filter"
	"github.com/BinLe1988/cofounder-match/pkg/matching"
	"github.com/BinLe1988/cofounder-match/pkg/retrieval"
	"github.com/BinLe1988/cofounder-match/pkg/storage"
	"github.com/BinLe1988/cofounder-match/pkg/tasks"
	"github.com/BinLe1988/cofounder-match/pkg/utils"
	"github.com/BinLe1988/cofounder-match/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	queue  *tasks.MemoryQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	log := zap.NewNop()
	jwt := utils.NewJWTManager("test-secret", 1)

	store, err := storage.NewLocalStore(t.TempDir(), "http://example.test", time.Minute)
	require.NoError(t, err)
	resolver := storage.NewResolver(store, 100, time.Minute, log)
	t.Cleanup(resolver.Close)

	contentFilter, err := filter.NewFromConfig([]string{"scam"}, nil)
	require.NoError(t, err)
	queue := tasks.NewMemoryQueue(16)
	search := retrieval.NewService(db, retrieval.Options{})

	router := gin.New()
	SetupRouter(router, Options{JWT: jwt, Log: log}, Handlers{
		Auth:          handlers.NewAuthHandler(services.NewAuthService(db, jwt, log)),
		Profiles:      handlers.NewProfileHandler(services.NewProfileService(db, resolver, log)),
		Swipes:        handlers.NewSwipeHandler(services.NewSwipeService(db, resolver, matching.NewMatcher(), log)),
		Matches:       handlers.NewMatchHandler(services.NewMatchService(db, resolver, contentFilter, log)),
		Documents:     handlers.NewDocumentHandler(services.NewDocumentService(db, chunking.New(), store, log), search),
		AiChats:       handlers.NewAiChatHandler(services.NewAiChatService(db, contentFilter, queue, log)),
		Notifications: handlers.NewNotificationHandler(services.NewNotificationService(db, log)),
		Social:        handlers.NewSocialHandler(services.NewSocialService(db, log)),
		Filter:        handlers.NewContentFilterHandler(contentFilter),
		Files:         handlers.NewFileHandler(store),
	})
	return &testServer{router: router, queue: queue}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

// register 注册用户，返回令牌和用户ID
func (s *testServer) register(t *testing.T, email string) (string, string) {
	t.Helper()

	code, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "password1",
	})
	require.Equal(t, http.StatusCreated, code, body)
	user := body["user"].(map[string]interface{})
	return body["token"].(string), user["id"].(string)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/api/matches", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization header is required", body["error"])

	code, _ = s.do(t, http.MethodGet, "/api/matches", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMatchAndMessageScenario(t *testing.T) {
	s := newTestServer(t)

	tokenA, idA := s.register(t, "a@example.com")
	tokenB, idB := s.register(t, "b@example.com")
	tokenC, _ := s.register(t, "c@example.com")

	code, _ := s.do(t, http.MethodPost, "/api/profile", tokenB, map[string]interface{}{
		"name": "Dana", "bio": "ML engineer", "skills": []string{"ML"},
		"lookingFor": "business co-founder", "experience": "expert",
	})
	require.Equal(t, http.StatusCreated, code)

	code, body := s.do(t, http.MethodPost, "/api/swipes", tokenB, map[string]string{"swipedUserId": idA, "direction": "right"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["isMatch"])

	code, body = s.do(t, http.MethodPost, "/api/swipes", tokenA, map[string]string{"swipedUserId": idB, "direction": "right"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["isMatch"])
	matchID := body["matchId"].(string)
	require.NotEmpty(t, matchID)

	code, body = s.do(t, http.MethodPost, "/api/swipes", tokenA, map[string]string{"swipedUserId": idB, "direction": "left"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already swiped on this user", body["error"])

	code, body = s.do(t, http.MethodGet, "/api/matches", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	matches := body["matches"].([]interface{})
	require.Len(t, matches, 1)
	profile := matches[0].(map[string]interface{})["profile"].(map[string]interface{})
	assert.Equal(t, "Dana", profile["name"])

	path := "/api/matches/" + matchID + "/messages"
	code, _ = s.do(t, http.MethodPost, path, tokenA, map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusCreated, code)

	code, body = s.do(t, http.MethodPost, path, tokenC, map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.NotEmpty(t, body["error"])

	code, body = s.do(t, http.MethodGet, "/api/notifications/unread-count", tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["count"], "match plus message")

	code, body = s.do(t, http.MethodPost, "/api/notifications/read-all", tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["marked"])
}

func TestAiChatGatingOverHTTP(t *testing.T) {
	s := newTestServer(t)

	tokenA, _ := s.register(t, "a@example.com")
	_, idOwner := s.register(t, "owner@example.com")

	code, body := s.do(t, http.MethodGet, "/api/ai-chats/"+idOwner+"/access", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["canAccess"])
	assert.Equal(t, "You must be matched with this founder to chat with their AI", body["reason"])

	code, _ = s.do(t, http.MethodPost, "/api/ai-chats/"+idOwner+"/messages", tokenA, map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Zero(t, s.queue.Len())
}

func TestDocumentSearchOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "a@example.com")

	code, _ := s.do(t, http.MethodPost, "/api/documents", token, map[string]interface{}{
		"title": "Notes", "content": "machine learning is great\n\nI love hiking",
	})
	require.Equal(t, http.StatusCreated, code)

	code, body := s.do(t, http.MethodPost, "/api/documents/search", token, map[string]string{"query": "machine learning"})
	require.Equal(t, http.StatusOK, code)
	results := body["results"].([]interface{})
	require.Len(t, results, 1)

	code, body = s.do(t, http.MethodPost, "/api/documents/search", token, map[string]string{"query": "a an"})
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["results"])
}

func TestLocalUploadFlow(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "a@example.com")

	code, body := s.do(t, http.MethodPost, "/api/profile/photos/upload-url", token, nil)
	require.Equal(t, http.StatusOK, code)
	storageID := body["storageId"].(string)

	req := httptest.NewRequest(http.MethodPut, "/api/uploads/"+storageID, strings.NewReader("png-bytes"))
	req.Header.Set("Content-Type", "image/png")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// 令牌只能使用一次
	req = httptest.NewRequest(http.MethodPut, "/api/uploads/"+storageID, strings.NewReader("again"))
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	code, body = s.do(t, http.MethodPost, "/api/profile/photos", token, map[string]string{"storageId": storageID})
	require.Equal(t, http.StatusOK, code)

	req = httptest.NewRequest(http.MethodGet, "/files/"+storageID, nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())

	code, body = s.do(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	photos := body["profile"].(map[string]interface{})["photos"].([]interface{})
	require.Len(t, photos, 1)
	assert.Equal(t, "http://example.test/files/"+storageID, photos[0].(map[string]interface{})["url"])
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}
