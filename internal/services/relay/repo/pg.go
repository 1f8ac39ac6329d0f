package repo

import (
	"context"

	"cardrelay/internal/modkit/repokit"
	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/store"

	dom "cardrelay/internal/services/relay/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

const schemaSQL = `
CREATE TABLE IF NOT EXISTS relay_chats (
	chat_id    BIGINT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS relay_threads (
	chat_id   BIGINT NOT NULL REFERENCES relay_chats (chat_id) ON DELETE CASCADE,
	category  TEXT NOT NULL,
	thread_id INTEGER NOT NULL,
	PRIMARY KEY (chat_id, category)
)`

// EnsureSchema creates the relay tables when missing
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, schemaSQL)
	return perr.FromPostgres(err, "ensure relay schema")
}

type threadRow struct {
	name     string
	category *string
	threadID *int32
}

// Get implements dom.ChatCategoryStore
func (s *pg) Get(ctx context.Context, chatID int64) (dom.ChatRecord, bool, error) {
	rows, err := store.Many(ctx, s.q, func(r repokit.Row) (threadRow, error) {
		var tr threadRow
		err := r.Scan(&tr.name, &tr.category, &tr.threadID)
		return tr, err
	}, `
		SELECT c.name, t.category, t.thread_id
		FROM relay_chats c
		LEFT JOIN relay_threads t ON t.chat_id = c.chat_id
		WHERE c.chat_id = $1
		ORDER BY t.category`, chatID)
	if err != nil {
		return dom.ChatRecord{}, false, perr.FromPostgresf(err, "get chat %d", chatID)
	}
	if len(rows) == 0 {
		return dom.ChatRecord{}, false, nil
	}

	rec := dom.ChatRecord{ChatID: chatID, Name: rows[0].name, Threads: make(map[string]int, len(rows))}
	for _, r := range rows {
		if r.category == nil || r.threadID == nil {
			continue
		}
		rec.Threads[*r.category] = int(*r.threadID)
	}
	return rec, true, nil
}

// Put implements dom.ChatCategoryStore
func (s *pg) Put(ctx context.Context, chatID int64, category string, threadID int) error {
	err := store.ExecOne(ctx, s.q, `
		INSERT INTO relay_threads (chat_id, category, thread_id)
		SELECT chat_id, $2, $3 FROM relay_chats WHERE chat_id = $1
		ON CONFLICT (chat_id, category) DO UPDATE SET thread_id = EXCLUDED.thread_id`,
		chatID, category, threadID)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf("chat %d is not registered", chatID)
	}
	return perr.FromPostgresf(err, "put thread for chat %d", chatID)
}

// Register implements dom.ChatCategoryStore
func (s *pg) Register(ctx context.Context, chatID int64, name string) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO relay_chats (chat_id, name) VALUES ($1, $2)
		ON CONFLICT (chat_id) DO NOTHING`, chatID, name)
	if err != nil {
		return false, perr.FromPostgresf(err, "register chat %d", chatID)
	}
	return tag.RowsAffected() == 1, nil
}

// Remove implements dom.ChatCategoryStore; threads cascade
func (s *pg) Remove(ctx context.Context, chatID int64) (bool, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM relay_chats WHERE chat_id = $1`, chatID)
	if err != nil {
		return false, perr.FromPostgresf(err, "remove chat %d", chatID)
	}
	return tag.RowsAffected() > 0, nil
}
