package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

type Message struct {
	ID        int       `json:"id"`
	UserID    string    `json:"userId"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type SessionInfo struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) SaveMessage(ctx context.Context, msg Message) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "chatRepo.saveMessage")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err = r.db.Exec(ctx, `
		INSERT INTO chat_message (user_id, session_id, role, content, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.UserID, msg.SessionID, msg.Role, msg.Content, msg.Category, msg.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	return nil
}

// ListSessions returns the user's distinct chat sessions, newest first.
func (r *Repo) ListSessions(ctx context.Context, userID string) (_ []SessionInfo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "chatRepo.listSessions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT session_id, MAX(created_at) AS created_at
		FROM chat_message
		WHERE user_id = $1
		GROUP BY session_id
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var s SessionInfo
		if err = rows.Scan(&s.SessionID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list chat sessions rows: %w", err)
	}

	return sessions, nil
}

// SessionMessages returns one session's messages in order.
func (r *Repo) SessionMessages(ctx context.Context, userID, sessionID string) (_ []Message, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "chatRepo.sessionMessages")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, session_id, role, content, category, created_at
		FROM chat_message
		WHERE user_id = $1 AND session_id = $2
		ORDER BY created_at`,
		userID, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list session messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err = rows.Scan(
			&m.ID, &m.UserID, &m.SessionID, &m.Role, &m.Content, &m.Category, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list session messages rows: %w", err)
	}

	return messages, nil
}
