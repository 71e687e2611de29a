package router

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woshisimox/mahjong-ai-match/internal/config"
	"github.com/woshisimox/mahjong-ai-match/internal/game"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/handler"
	"github.com/woshisimox/mahjong-ai-match/internal/health"
	"github.com/woshisimox/mahjong-ai-match/internal/task"
	"github.com/woshisimox/mahjong-ai-match/pkg/response"
)

// APIResponse 用于解析响应体
type APIResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	pool := task.NewWorkerPool(2)
	pool.Start()
	rooms := game.NewRoomManager(0, time.Minute)
	t.Cleanup(func() {
		_ = rooms.Shutdown(context.Background())
		pool.Stop()
	})

	svc := mahjong.NewService(config.EngineConfig{
		Profile:         string(core.ProfileSichuan),
		Hands:           1,
		ProviderTimeout: 5 * time.Second,
	}, mahjong.Deps{Pool: pool, Rooms: rooms})

	return SetupRouter(gin.TestMode, slog.Default(),
		health.NewChecker(nil, nil, nil, rooms),
		handler.NewRoomHandler(svc),
		handler.NewRulesHandler(svc),
	)
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) APIResponse {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRoomLifecycleAPI(t *testing.T) {
	r := setupTestRouter(t)

	resp := do(t, r, http.MethodPost, "/api/v1/rooms", mahjong.StartRequest{Seed: 9, Hands: 1})
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)
	var info game.RoomInfo
	require.NoError(t, json.Unmarshal(resp.Data, &info))
	require.NotEmpty(t, info.ID)

	var result struct {
		Scores []int `json:"scores"`
	}
	require.Eventually(t, func() bool {
		resp := do(t, r, http.MethodGet, "/api/v1/rooms/"+info.ID+"/result", nil)
		return resp.Code == response.CodeSuccess && string(resp.Data) != "null" &&
			json.Unmarshal(resp.Data, &result) == nil
	}, 20*time.Second, 20*time.Millisecond)
	assert.Len(t, result.Scores, 4)

	resp = do(t, r, http.MethodGet, "/api/v1/rooms/"+info.ID+"/events?hand=1", nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	var events struct {
		Hand int               `json:"hand"`
		List []json.RawMessage `json:"list"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &events))
	assert.Equal(t, 1, events.Hand)
	assert.NotEmpty(t, events.List)

	resp = do(t, r, http.MethodGet, "/api/v1/rooms/"+info.ID+"/snapshot", nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	var snap core.TableSnapshot
	require.NoError(t, json.Unmarshal(resp.Data, &snap))
	assert.False(t, snap.RoundActive)

	resp = do(t, r, http.MethodGet, "/api/v1/rooms", nil)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	resp = do(t, r, http.MethodPost, "/api/v1/rooms/"+info.ID+"/pause", nil)
	assert.Equal(t, response.CodeRoomFinished, resp.Code)

	resp = do(t, r, http.MethodGet, "/api/v1/rooms/"+info.ID+"/events?hand=x", nil)
	assert.Equal(t, response.CodeInvalidParams, resp.Code)
}

func TestRoomErrorsAPI(t *testing.T) {
	r := setupTestRouter(t)

	resp := do(t, r, http.MethodPost, "/api/v1/rooms", mahjong.StartRequest{Profile: "riichi"})
	assert.Equal(t, response.CodeInvalidProfile, resp.Code)

	resp = do(t, r, http.MethodPost, "/api/v1/rooms", mahjong.StartRequest{Providers: []string{"remote"}})
	assert.Equal(t, response.CodeRemoteUnavailable, resp.Code)

	resp = do(t, r, http.MethodGet, "/api/v1/rooms/nope", nil)
	assert.Equal(t, response.CodeRoomNotFound, resp.Code)

	resp = do(t, r, http.MethodPost, "/api/v1/rooms/nope/stop", nil)
	assert.Equal(t, response.CodeRoomNotFound, resp.Code)

	resp = do(t, r, http.MethodGet, "/api/v1/rooms/nope/snapshot", nil)
	assert.Equal(t, response.CodeRoomNotFound, resp.Code)
}

func TestAnalyzeAPI(t *testing.T) {
	r := setupTestRouter(t)

	resp := do(t, r, http.MethodPost, "/api/v1/rules/analyze", mahjong.AnalyzeRequest{
		Hand: "1W 1W 1W 2W 3W 4W 5W 5W 6W 7W 8W 9W 9W 9W",
	})
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)
	var res struct {
		Shanten int  `json:"shanten"`
		Win     bool `json:"win"`
		Score   struct {
			Fan    int      `json:"fan"`
			Labels []string `json:"labels"`
		} `json:"score"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.True(t, res.Win)
	assert.Equal(t, -1, res.Shanten)
	assert.Positive(t, res.Score.Fan)

	resp = do(t, r, http.MethodPost, "/api/v1/rules/analyze", map[string]string{"hand": "1X"})
	assert.Equal(t, response.CodeInvalidTile, resp.Code)

	resp = do(t, r, http.MethodPost, "/api/v1/rules/analyze", map[string]string{})
	assert.Equal(t, response.CodeInvalidParams, resp.Code)
}

func TestDecideAPI(t *testing.T) {
	r := setupTestRouter(t)

	body := map[string]any{
		"seat": 0,
		"hand": []string{"1W", "2W", "3W", "4B", "5B", "6B", "7T", "8T", "9T", "2W", "2W", "5B", "5B", "9B"},
		"view": map[string]any{"profile": "sichuan-108"},
	}
	resp := do(t, r, http.MethodPost, "/api/v1/decide", body)
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)
	var d struct {
		Tile   string `json:"tile"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &d))
	assert.NotEmpty(t, d.Tile)
	assert.Equal(t, "local", d.Source)

	resp = do(t, r, http.MethodPost, "/api/v1/decide", map[string]any{"seat": 0, "hand": []string{}})
	assert.Equal(t, response.CodeInvalidHand, resp.Code)
}

func TestHealthRoute(t *testing.T) {
	r := setupTestRouter(t)
	resp := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}
