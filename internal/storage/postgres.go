package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
)

const schema = `
	CREATE TABLE IF NOT EXISTS mahjong_snapshots (
		room_id    TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS mahjong_events (
		id         UUID PRIMARY KEY,
		room_id    TEXT NOT NULL,
		hand       INT NOT NULL,
		seq        BIGSERIAL,
		event_type TEXT NOT NULL,
		seat       INT NOT NULL,
		payload    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mahjong_events_room_hand ON mahjong_events (room_id, hand, seq);
	CREATE TABLE IF NOT EXISTS mahjong_results (
		room_id    TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// PostgresStore 基于 PostgreSQL 的房间存储, 事件按写入顺序持久化
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore 创建 PostgreSQL 存储
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate 建表
func (r *PostgresStore) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

// SaveSnapshot 保存快照
func (r *PostgresStore) SaveSnapshot(ctx context.Context, roomID string, snap *core.TableSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO mahjong_snapshots (room_id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (room_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`
	_, err = r.db.Exec(ctx, query, roomID, data)
	return err
}

// LoadSnapshot 读取快照
func (r *PostgresStore) LoadSnapshot(ctx context.Context, roomID string) (*core.TableSnapshot, error) {
	query := `SELECT payload FROM mahjong_snapshots WHERE room_id = $1`

	var data []byte
	err := r.db.QueryRow(ctx, query, roomID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap core.TableSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// AppendEvent 追加事件
func (r *PostgresStore) AppendEvent(ctx context.Context, roomID string, e table.Event) error {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		id = uuid.New()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO mahjong_events (id, room_id, hand, event_type, seat, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query, [16]byte(id), roomID, e.Hand, string(e.Type), e.Seat, data, e.At)
	return err
}

// ListEvents 列出某局事件
func (r *PostgresStore) ListEvents(ctx context.Context, roomID string, hand int) ([]table.Event, error) {
	query := `
		SELECT payload FROM mahjong_events
		WHERE room_id = $1 AND hand = $2
		ORDER BY seq
	`
	rows, err := r.db.Query(ctx, query, roomID, hand)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []table.Event{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var e table.Event
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// SaveResult 保存比赛结果
func (r *PostgresStore) SaveResult(ctx context.Context, roomID string, res table.MatchResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO mahjong_results (room_id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (room_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`
	_, err = r.db.Exec(ctx, query, roomID, data)
	return err
}

// LoadResult 读取比赛结果
func (r *PostgresStore) LoadResult(ctx context.Context, roomID string) (*table.MatchResult, error) {
	query := `SELECT payload FROM mahjong_results WHERE room_id = $1`

	var data []byte
	err := r.db.QueryRow(ctx, query, roomID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var res table.MatchResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
