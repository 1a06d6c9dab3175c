package implementation

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"edu-chatbot-be/internal/entity"
	"edu-chatbot-be/internal/model"
	"edu-chatbot-be/internal/repository/specification"
	"edu-chatbot-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// These tests run against a real Postgres; they are skipped when
// DB_CONNECTION_STRING is not set.

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("DB_CONNECTION_STRING not set, skipping integration test")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Project{}, &model.ChatSession{}, &model.ChatMessage{}))
	return db
}

func seedSession(t *testing.T, db *gorm.DB, userId uuid.UUID) *entity.ChatSession {
	t.Helper()
	repo := NewChatSessionRepository(db)
	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "integration",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), session))
	t.Cleanup(func() {
		NewChatMessageRepository(db).DeleteByChatSessionId(context.Background(), session.Id)
		repo.Delete(context.Background(), session.Id)
	})
	return session
}

func TestIncrementMessageCountConcurrent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewChatSessionRepository(db)
	session := seedSession(t, db, uuid.New())

	// 10 concurrent +2 bumps must all land: the counter uses a SQL
	// expression, not read-modify-write.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementMessageCount(ctx, session.Id, 2, nil, time.Now()))
		}()
	}
	wg.Wait()

	stored, err := repo.FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 20, stored.MessageCount)
}

func TestSetClassificationWriteOnce(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewChatSessionRepository(db)
	session := seedSession(t, db, uuid.New())

	won, err := repo.SetClassification(ctx, session.Id, "Maths", "Algebra", "Linear Equations")
	require.NoError(t, err)
	assert.True(t, won)

	// A second writer loses and the stored values stay put
	won, err = repo.SetClassification(ctx, session.Id, "Science", "Optics", "Lenses")
	require.NoError(t, err)
	assert.False(t, won)

	stored, err := repo.FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	require.NotNil(t, stored.Subject)
	assert.Equal(t, "Maths", *stored.Subject)
	assert.Equal(t, "Linear Equations", stored.Title)
}

func TestMessageSeqOrdering(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	msgRepo := NewChatMessageRepository(db)
	session := seedSession(t, db, uuid.New())

	now := time.Now()
	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, msgRepo.Create(ctx, &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: session.Id,
			Role:          "user",
			Content:       content,
			CreatedAt:     now, // identical timestamps on purpose
		}))
	}

	messages, err := msgRepo.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "seq", Desc: false},
	)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "three", messages[2].Content)
	assert.Less(t, messages[0].Seq, messages[1].Seq)
	assert.Less(t, messages[1].Seq, messages[2].Seq)
}

func TestOwnershipFusedIntoLookup(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewChatSessionRepository(db)
	session := seedSession(t, db, uuid.New())

	found, err := repo.FindOne(ctx,
		specification.ByID{ID: session.Id},
		specification.UserOwnedBy{UserID: uuid.New()},
	)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDetachProject(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	sessionRepo := NewChatSessionRepository(db)
	projectRepo := NewProjectRepository(db)

	userId := uuid.New()
	project := &entity.Project{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      "integration project",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, projectRepo.Create(ctx, project))
	t.Cleanup(func() { projectRepo.Delete(ctx, project.Id) })

	session := seedSession(t, db, userId)
	require.NoError(t, sessionRepo.SetProject(ctx, session.Id, &project.Id))

	require.NoError(t, sessionRepo.DetachProject(ctx, project.Id))

	stored, err := sessionRepo.FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	assert.Nil(t, stored.ProjectId)
}
