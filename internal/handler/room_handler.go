package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong"
	"github.com/woshisimox/mahjong-ai-match/pkg/response"
)

// RoomHandler 比赛房间处理器
type RoomHandler struct {
	svc *mahjong.Service
}

// NewRoomHandler 创建房间处理器
func NewRoomHandler(svc *mahjong.Service) *RoomHandler {
	return &RoomHandler{svc: svc}
}

// Start 开始一场比赛
// POST /api/v1/rooms
func (h *RoomHandler) Start(c *gin.Context) {
	var req mahjong.StartRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
			return
		}
	}

	info, err := h.svc.Start(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, info)
}

// List 房间列表
// GET /api/v1/rooms
func (h *RoomHandler) List(c *gin.Context) {
	response.Success(c, gin.H{"list": h.svc.Rooms()})
}

// Get 房间概要
// GET /api/v1/rooms/:id
func (h *RoomHandler) Get(c *gin.Context) {
	info, err := h.svc.Room(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, info)
}

// Pause 暂停
// POST /api/v1/rooms/:id/pause
func (h *RoomHandler) Pause(c *gin.Context) {
	h.control(c, h.svc.Pause)
}

// Resume 继续
// POST /api/v1/rooms/:id/resume
func (h *RoomHandler) Resume(c *gin.Context) {
	h.control(c, h.svc.Resume)
}

// Stop 停止
// POST /api/v1/rooms/:id/stop
func (h *RoomHandler) Stop(c *gin.Context) {
	h.control(c, h.svc.Stop)
}

func (h *RoomHandler) control(c *gin.Context, op func(roomID string) error) {
	roomID := c.Param("id")
	if err := op(roomID); err != nil {
		writeError(c, err)
		return
	}
	info, err := h.svc.Room(roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, info)
}

// Snapshot 当前局快照
// GET /api/v1/rooms/:id/snapshot
func (h *RoomHandler) Snapshot(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, snap)
}

// Events 某一局的事件, hand 默认为 1
// GET /api/v1/rooms/:id/events?hand=1
func (h *RoomHandler) Events(c *gin.Context) {
	hand, err := strconv.Atoi(c.DefaultQuery("hand", "1"))
	if err != nil || hand < 1 {
		response.ErrorWithMsg(c, response.CodeInvalidParams, "invalid hand")
		return
	}
	events, err := h.svc.Events(c.Request.Context(), c.Param("id"), hand)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"hand": hand, "list": events})
}

// Result 比赛结果, 进行中时 data 为 null
// GET /api/v1/rooms/:id/result
func (h *RoomHandler) Result(c *gin.Context) {
	res, err := h.svc.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, res)
}
