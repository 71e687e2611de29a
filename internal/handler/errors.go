package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/woshisimox/mahjong-ai-match/internal/game"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/decision"
	"github.com/woshisimox/mahjong-ai-match/internal/storage"
	"github.com/woshisimox/mahjong-ai-match/pkg/response"
)

// errorCodes 业务错误到响应码, 按顺序匹配
var errorCodes = []struct {
	err  error
	code int
}{
	{game.ErrRoomNotFound, response.CodeRoomNotFound},
	{storage.ErrNotFound, response.CodeRoomNotFound},
	{game.ErrRoomFinished, response.CodeRoomFinished},
	{game.ErrInvalidRoomState, response.CodeRoomState},
	{game.ErrTooManyRooms, response.CodeTooManyRooms},
	{mahjong.ErrRemoteUnavailable, response.CodeRemoteUnavailable},
	{mahjong.ErrUnknownProvider, response.CodeInvalidSeats},
	{mahjong.ErrSeatMismatch, response.CodeInvalidSeats},
	{core.ErrInvalidSeats, response.CodeInvalidSeats},
	{core.ErrInvalidProfile, response.CodeInvalidProfile},
	{core.ErrWallTooSmall, response.CodeInvalidProfile},
	{core.ErrInvalidTile, response.CodeInvalidTile},
	{mahjong.ErrInvalidHandSize, response.CodeInvalidHand},
	{core.ErrInvalidMeld, response.CodeInvalidHand},
	{decision.ErrEmptyHand, response.CodeInvalidHand},
}

// writeError 业务错误返回具体原因, 其余记录日志并返回服务器错误
func writeError(c *gin.Context, err error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			response.ErrorWithMsg(c, e.code, err.Error())
			return
		}
	}
	slog.ErrorContext(c.Request.Context(), "request failed",
		"path", c.FullPath(),
		"error", err)
	response.Error(c, response.CodeServerError)
}
