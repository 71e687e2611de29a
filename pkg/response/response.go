package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 错误码常量
const (
	CodeSuccess = 0

	// 参数相关 11000-11999
	CodeInvalidParams  = 11001
	CodeInvalidProfile = 11002
	CodeInvalidTile    = 11003
	CodeInvalidHand    = 11004
	CodeInvalidSeats   = 11005

	// 房间相关 12000-12999
	CodeRoomNotFound      = 12001
	CodeRoomFinished      = 12002
	CodeRoomState         = 12003
	CodeTooManyRooms      = 12004
	CodeRemoteUnavailable = 12005

	// 系统错误 50000-50999
	CodeServerError  = 50000
	CodeStorageError = 50001
)

var codeMessages = map[int]string{
	CodeSuccess:           "success",
	CodeInvalidParams:     "参数校验失败",
	CodeInvalidProfile:    "无效的规则配置",
	CodeInvalidTile:       "无效的牌编码",
	CodeInvalidHand:       "手牌不合法",
	CodeInvalidSeats:      "座位配置不合法",
	CodeRoomNotFound:      "房间不存在",
	CodeRoomFinished:      "比赛已结束",
	CodeRoomState:         "房间状态不支持该操作",
	CodeTooManyRooms:      "房间数已达上限",
	CodeRemoteUnavailable: "远程决策服务不可用",
	CodeServerError:       "服务器内部错误",
	CodeStorageError:      "存储错误",
}

// Message 错误码对应的默认信息
func Message(code int) string {
	if message, ok := codeMessages[code]; ok {
		return message
	}
	return "unknown error"
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: Message(code),
		Data:    nil,
	})
}

// ErrorWithMsg 自定义错误消息
func ErrorWithMsg(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ServiceUnavailable 依赖不可用
func ServiceUnavailable(c *gin.Context, data interface{}) {
	c.JSON(http.StatusServiceUnavailable, Response{
		Code:    CodeServerError,
		Message: "service unavailable",
		Data:    data,
	})
}
