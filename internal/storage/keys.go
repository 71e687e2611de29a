package storage

import (
	"fmt"
	"time"
)

const (
	// RoomKeyPrefix 房间 Redis Key 前缀
	RoomKeyPrefix = "mahjong:room:"

	// RoomTTL 房间数据保留时长
	RoomTTL = 24 * time.Hour
)

// BuildSnapshotKey 快照 Key: mahjong:room:{roomId}:snapshot
func BuildSnapshotKey(roomID string) string {
	return fmt.Sprintf("%s%s:snapshot", RoomKeyPrefix, roomID)
}

// BuildEventsKey 单局事件列表 Key: mahjong:room:{roomId}:hand:{hand}
func BuildEventsKey(roomID string, hand int) string {
	return fmt.Sprintf("%s%s:hand:%d", RoomKeyPrefix, roomID, hand)
}

// BuildResultKey 比赛结果 Key: mahjong:room:{roomId}:result
func BuildResultKey(roomID string) string {
	return fmt.Sprintf("%s%s:result", RoomKeyPrefix, roomID)
}
