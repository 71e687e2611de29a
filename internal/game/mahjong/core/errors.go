package core

import (
	"errors"
	"fmt"
	"maps"
)

// GameError 游戏错误类型
type GameError struct {
	Code    string                 // 错误代码
	Message string                 // 错误消息
	Cause   error                  // 原因错误
	Context map[string]interface{} // 错误上下文
}

func (e *GameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *GameError) Unwrap() error {
	return e.Cause
}

// Is 按错误代码比较, 使 errors.Is 能匹配带上下文的副本
func (e *GameError) Is(target error) bool {
	var ge *GameError
	if !errors.As(target, &ge) {
		return false
	}
	return ge.Code == e.Code
}

// NewGameError 创建游戏错误
func NewGameError(code, message string) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

func (e *GameError) clone() *GameError {
	c := *e
	c.Context = maps.Clone(e.Context)
	if c.Context == nil {
		c.Context = make(map[string]interface{})
	}
	return &c
}

// WithCause 返回带原因错误的副本, 哨兵错误本身不被修改
func (e *GameError) WithCause(cause error) *GameError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithContext 返回带上下文信息的副本
func (e *GameError) WithContext(key string, value interface{}) *GameError {
	c := e.clone()
	c.Context[key] = value
	return c
}

// 牌相关错误
var (
	ErrInvalidTile   = NewGameError("INVALID_TILE", "无效的牌编码")
	ErrTileNotInHand = NewGameError("TILE_NOT_IN_HAND", "手牌中没有指定的牌")
)

// 配置相关错误
var (
	ErrInvalidProfile = NewGameError("INVALID_PROFILE", "无效的规则配置")
	ErrWallTooSmall   = NewGameError("WALL_TOO_SMALL", "牌墙张数不足以发牌")
	ErrInvalidSeats   = NewGameError("INVALID_SEATS", "座位数不正确")
)

// 副露相关错误
var (
	ErrMeldRejected = NewGameError("MELD_REJECTED", "手牌不足以完成副露")
	ErrInvalidMeld  = NewGameError("INVALID_MELD", "无效的副露")
	ErrInvalidSeat  = NewGameError("INVALID_SEAT", "无效的座位")
)

// 牌局相关错误
var (
	ErrHandNotActive = NewGameError("HAND_NOT_ACTIVE", "牌局未在进行")
	ErrHandStopped   = NewGameError("HAND_STOPPED", "牌局已停止")
)
