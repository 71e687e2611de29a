package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/decision"
	"github.com/woshisimox/mahjong-ai-match/pkg/response"
)

// RulesHandler 手牌分析与出牌决策处理器
type RulesHandler struct {
	svc *mahjong.Service
}

// NewRulesHandler 创建处理器
func NewRulesHandler(svc *mahjong.Service) *RulesHandler {
	return &RulesHandler{svc: svc}
}

// Analyze 手牌分析
// POST /api/v1/rules/analyze
func (h *RulesHandler) Analyze(c *gin.Context) {
	var req mahjong.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}
	res, err := h.svc.Analyze(req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, res)
}

// Decide 本地启发式出牌
// POST /api/v1/decide
func (h *RulesHandler) Decide(c *gin.Context) {
	var req decision.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}
	d, err := h.svc.Decide(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, d)
}
