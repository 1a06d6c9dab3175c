package contract

import (
	"context"
	"time"

	"edu-chatbot-be/internal/entity"
	"edu-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// IncrementMessageCount adds delta to message_count with a SQL expression
	// so concurrent appends never lose updates, bumps updated_at, and, when
	// preview is non-nil, refreshes the denormalized preview excerpt.
	IncrementMessageCount(ctx context.Context, id uuid.UUID, delta int, preview *string, now time.Time) error

	// SetClassification commits subject/topic/title only while subject is
	// still NULL. Returns whether this call won the conditional update.
	SetClassification(ctx context.Context, id uuid.UUID, subject, topic, title string) (bool, error)

	// SetProject reassigns or clears (nil) the project reference.
	SetProject(ctx context.Context, id uuid.UUID, projectId *uuid.UUID) error

	// DetachProject clears project_id on every session of the given project.
	// Used when a project is deleted; sessions are soft-orphaned, not removed.
	DetachProject(ctx context.Context, projectId uuid.UUID) error
}
