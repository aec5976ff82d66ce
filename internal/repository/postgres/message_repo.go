package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/chatty/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, text, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Text, msg.Image, msg.CreatedAt, msg.UpdatedAt,
	)
	return err
}

// ListBetween returns the conversation between two users in both
// directions, oldest first.
func (r *MessageRepo) ListBetween(ctx context.Context, userID, otherID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, image, created_at, updated_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
			OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID, otherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Text, &msg.Image,
			&msg.CreatedAt, &msg.UpdatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
