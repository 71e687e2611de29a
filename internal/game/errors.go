package game

import "errors"

// 房间相关错误定义

var (
	// ErrRoomNotFound 房间不存在
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExists 房间已存在
	ErrRoomExists = errors.New("room already exists")

	// ErrTooManyRooms 房间数达到上限
	ErrTooManyRooms = errors.New("too many rooms")

	// ErrRoomFinished 比赛已结束, 不能再暂停或继续
	ErrRoomFinished = errors.New("room finished")

	// ErrInvalidRoomState 当前状态不支持该操作
	ErrInvalidRoomState = errors.New("invalid room state")
)
