package repository

import (
	"context"
	"time"

	"github.com/manusiele/TherapyFlow/internal/models"
)

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) CreateOrGet(
	ctx context.Context,
	patientID int64,
	therapistID int64,
) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (patient_id, therapist_id)
		VALUES ($1, $2)
		ON CONFLICT (patient_id, therapist_id)
		DO UPDATE SET updated_at = conversations.updated_at
		RETURNING id, patient_id, therapist_id, created_at, updated_at
	`
	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, patientID, therapistID).Scan(
		&conversation.ID,
		&conversation.PatientID,
		&conversation.TherapistID,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepository) GetByIDForParticipant(
	ctx context.Context,
	conversationID int64,
	participantID int64,
) (*models.Conversation, error) {
	query := `
		SELECT id, patient_id, therapist_id, created_at, updated_at
		FROM conversations
		WHERE id = $1
		  AND (patient_id = $2 OR therapist_id = $2)
	`
	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, conversationID, participantID).Scan(
		&conversation.ID,
		&conversation.PatientID,
		&conversation.TherapistID,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepository) ListForParticipant(
	ctx context.Context,
	participantID int64,
) ([]models.ConversationSummary, error) {
	query := `
		SELECT c.id, c.patient_id, c.therapist_id, c.created_at, c.updated_at,
		       m.id, m.conversation_id, m.sender_id, m.content, m.is_read, m.created_at,
		       COALESCE(u.unread, 0)
		FROM conversations c
		LEFT JOIN LATERAL (
			SELECT id, conversation_id, sender_id, content, is_read, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) m ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread
			FROM messages
			WHERE conversation_id = c.id
			  AND sender_id <> $1
			  AND is_read = FALSE
		) u ON TRUE
		WHERE c.patient_id = $1 OR c.therapist_id = $1
		ORDER BY c.updated_at DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var summary models.ConversationSummary
		var messageID, messageConversationID, messageSenderID *int64
		var messageContent *string
		var messageIsRead *bool
		var messageCreatedAt *time.Time

		if err := rows.Scan(
			&summary.ID,
			&summary.PatientID,
			&summary.TherapistID,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&messageID,
			&messageConversationID,
			&messageSenderID,
			&messageContent,
			&messageIsRead,
			&messageCreatedAt,
			&summary.UnreadCount,
		); err != nil {
			return nil, err
		}

		if messageID != nil {
			summary.LastMessage = &models.ChatMessage{
				ID:             *messageID,
				ConversationID: *messageConversationID,
				SenderID:       *messageSenderID,
				Content:        *messageContent,
				IsRead:         *messageIsRead,
				CreatedAt:      *messageCreatedAt,
			}
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *ConversationRepository) Touch(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}
