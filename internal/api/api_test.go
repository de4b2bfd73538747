package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurufuwa/board/internal/app"
	"github.com/yurufuwa/board/internal/clock"
	"github.com/yurufuwa/board/internal/store"
	"github.com/yurufuwa/board/pkg/config"
)

var start = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type server struct {
	engine   *gin.Engine
	clock    *clock.Fake
	sessions *Sessions
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := clock.NewFake(start)
	s := store.NewMemory(0)
	a := app.NewWithStore(config.Defaults(), s, c)
	sessions := NewSessions(a, "default", 0)
	t.Cleanup(sessions.Close)

	engine := gin.New()
	NewRouter(sessions, s, true).SetupRoutes(engine)
	return &server{engine: engine, clock: c, sessions: sessions}
}

type rpcResult struct {
	Result json.RawMessage `json:"result"`
	Error  *JSONRPCError   `json:"error"`
}

func (s *server) call(t *testing.T, method string, params interface{}) rpcResult {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)
	return s.raw(t, body)
}

func (s *server) raw(t *testing.T, body []byte) rpcResult {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res rpcResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func decode[T any](t *testing.T, res rpcResult) T {
	t.Helper()
	require.Nil(t, res.Error, "unexpected error: %+v", res.Error)
	var out T
	require.NoError(t, json.Unmarshal(res.Result, &out))
	return out
}

func TestJSONRPCProtocolErrors(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"parse error", `{not json`, ErrParseError},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"board.state"}`, ErrInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"board.nope"}`, ErrMethodNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.raw(t, []byte(tt.body))
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.code, res.Error.Code)
		})
	}
}

func TestCreateAndState(t *testing.T) {
	s := newServer(t)

	post := decode[PostView](t, s.call(t, "board.create_post", map[string]interface{}{
		"nickname": "Aki", "content": "ice cream", "category": "food", "lifetime": 30,
	}))
	assert.Equal(t, int64(1), post.ID)
	assert.Equal(t, int64(30000), post.LifetimeMs)
	assert.Equal(t, int64(30000), post.RemainingMs)
	assert.Equal(t, "normal", post.Tier)
	assert.NotNil(t, post.Position)

	s.clock.Advance(10 * time.Second)
	state := decode[StateResult](t, s.call(t, "board.state", nil))
	assert.Equal(t, "default", state.Room)
	assert.Equal(t, "Main", state.RoomName)
	require.Len(t, state.Posts, 1)
	assert.Equal(t, int64(20000), state.Posts[0].RemainingMs)
	assert.Equal(t, "10s ago", state.Posts[0].Age)

	s.clock.Advance(21 * time.Second)
	state = decode[StateResult](t, s.call(t, "board.state", nil))
	assert.Empty(t, state.Posts)
}

func TestCreateValidation(t *testing.T) {
	s := newServer(t)

	res := s.call(t, "board.create_post", map[string]interface{}{"content": "   "})
	require.NotNil(t, res.Error)
	assert.Equal(t, ErrInvalidParams, res.Error.Code)

	res = s.call(t, "board.create_post", map[string]interface{}{"content": "x", "lifetime": -1})
	require.NotNil(t, res.Error)
	assert.Equal(t, ErrInvalidParams, res.Error.Code)

	toasts := decode[[]map[string]interface{}](t, s.call(t, "board.toasts", map[string]interface{}{"limit": 1}))
	require.Len(t, toasts, 1)
	assert.Equal(t, "Tell us what you'd like to do!", toasts[0]["message"])
	assert.Equal(t, "warning", toasts[0]["severity"])
}

func TestReactionPinAndNotifications(t *testing.T) {
	s := newServer(t)
	decode[PostView](t, s.call(t, "board.create_post", map[string]interface{}{"content": "sushi", "lifetime": 10}))

	r := decode[ReactionView](t, s.call(t, "board.toggle_reaction", map[string]interface{}{"id": 1, "kind": "cheer"}))
	assert.True(t, r.Added)
	assert.Equal(t, 1, r.Post.TotalReactions)

	res := s.call(t, "board.toggle_reaction", map[string]interface{}{"id": 1, "kind": "boo"})
	require.NotNil(t, res.Error)
	assert.Equal(t, ErrInvalidParams, res.Error.Code)

	res = s.call(t, "board.toggle_reaction", map[string]interface{}{"id": 9, "kind": "like"})
	require.NotNil(t, res.Error)
	assert.Equal(t, ErrNotFound, res.Error.Code)

	pinned := decode[PostView](t, s.call(t, "board.toggle_pin", map[string]interface{}{"id": 1}))
	assert.True(t, pinned.IsPinned)

	s.clock.Advance(time.Minute)
	got := decode[PostView](t, s.call(t, "board.get_post", map[string]interface{}{"id": 1}))
	assert.Equal(t, int64(0), got.RemainingMs)

	removed := decode[map[string]bool](t, s.call(t, "board.remove_post", map[string]interface{}{"id": 1}))
	assert.False(t, removed["removed"], "pinned posts are not removed")

	notes := decode[[]map[string]interface{}](t, s.call(t, "board.notifications", nil))
	require.Len(t, notes, 1)
	assert.Equal(t, "cheer", notes[0]["reactionType"])
	assert.Equal(t, float64(1), notes[0]["postId"])
}

func TestGetPostMissingID(t *testing.T) {
	s := newServer(t)
	res := s.call(t, "board.get_post", map[string]interface{}{})
	require.NotNil(t, res.Error)
	assert.Equal(t, ErrInvalidParams, res.Error.Code)

	res = s.call(t, "board.get_post", map[string]interface{}{"id": 4})
	require.NotNil(t, res.Error)
	assert.Equal(t, ErrNotFound, res.Error.Code)
}

func TestLoadRoomSwapsSession(t *testing.T) {
	s := newServer(t)
	decode[PostView](t, s.call(t, "board.create_post", map[string]interface{}{"content": "ramen", "lifetime": 600}))

	state := decode[StateResult](t, s.call(t, "board.load_room", map[string]interface{}{"room": "food"}))
	assert.Equal(t, "food", state.Room)
	assert.Equal(t, "Want to eat", state.RoomName)
	assert.Empty(t, state.Posts)

	post := decode[PostView](t, s.call(t, "board.create_post", map[string]interface{}{"content": "curry", "lifetime": 600}))
	assert.Equal(t, "food", post.Room)
	assert.Equal(t, int64(2), post.ID)

	state = decode[StateResult](t, s.call(t, "board.load_room", map[string]interface{}{"room": "default"}))
	require.Len(t, state.Posts, 1)
	assert.Equal(t, "ramen", state.Posts[0].Content)
}

func TestPreferences(t *testing.T) {
	s := newServer(t)

	prefs := decode[PreferencesView](t, s.call(t, "board.get_preferences", nil))
	assert.Equal(t, PreferencesView{Theme: "auto"}, prefs)

	prefs = decode[PreferencesView](t, s.call(t, "board.set_preferences", map[string]interface{}{"theme": "night", "nickname": "Mio"}))
	assert.Equal(t, PreferencesView{Nickname: "Mio", Theme: "night"}, prefs)

	res := s.call(t, "board.set_preferences", map[string]interface{}{"theme": "sepia"})
	require.NotNil(t, res.Error)
	assert.Equal(t, ErrInvalidParams, res.Error.Code)
}

func TestShareText(t *testing.T) {
	s := newServer(t)
	decode[PostView](t, s.call(t, "board.create_post", map[string]interface{}{"nickname": "Aki", "content": "ice cream"}))

	out := decode[map[string]string](t, s.call(t, "board.share_text", map[string]interface{}{"id": 1}))
	assert.Equal(t, `Aki: "ice cream" #yurufuwa`, out["text"])
}

func TestBoardRoute(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/board?room=winter", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var state StateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "winter", state.Room)
	assert.Equal(t, "Winter", state.RoomName)

	cur, err := s.sessions.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "winter", cur.Board.Room())
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/health", "/.well-known/healthcheck.json", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestMethodsRegistered(t *testing.T) {
	r := NewRouter(NewSessions(nil, "default", 0), store.NewMemory(0), false)
	assert.ElementsMatch(t, []string{
		"board.load_room", "board.state", "board.create_post", "board.get_post",
		"board.remove_post", "board.toggle_reaction", "board.toggle_pin",
		"board.share_text", "board.notifications", "board.toasts",
		"board.get_preferences", "board.set_preferences",
	}, r.Handler().Methods())
}
