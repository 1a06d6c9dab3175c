package service

import (
	"context"
	"strings"
	"time"

	"edu-chatbot-be/internal/apperror"
	"edu-chatbot-be/internal/constant"
	"edu-chatbot-be/internal/dto"
	"edu-chatbot-be/internal/entity"
	"edu-chatbot-be/internal/pkg/logger"
	"edu-chatbot-be/internal/repository/memory"
	"edu-chatbot-be/internal/repository/specification"
	"edu-chatbot-be/internal/repository/unitofwork"
	"edu-chatbot-be/pkg/events"
	"edu-chatbot-be/pkg/llm"
	"edu-chatbot-be/pkg/tutor"

	"github.com/google/uuid"
)

type IChatbotService interface {
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID, projectId *uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetSessionDetailResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	MoveSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.MoveSessionRequest) error
}

const (
	defaultSessionTitle = "New Chat"
	previewMaxLen       = 100
)

type chatbotService struct {
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	classCache     *memory.ClassificationCache
	eventPublisher EventPublisher
	logger         logger.ILogger
	llmTimeout     time.Duration
}

func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	classCache *memory.ClassificationCache,
	eventPublisher EventPublisher,
	sysLogger logger.ILogger,
	llmTimeout time.Duration,
) IChatbotService {
	return &chatbotService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		classCache:     classCache,
		eventPublisher: eventPublisher,
		logger:         sysLogger,
		llmTimeout:     llmTimeout,
	}
}

/// SendChat runs one exchange: resolve the session, call the engine outside
// any transaction, then persist both turns atomically. An engine failure
// leaves no trace in storage.
func (c *chatbotService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if strings.TrimSpace(req.Chat) == "" {
		return nil, apperror.Validation("message must not be empty")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	var session *entity.ChatSession
	var history []*entity.ChatMessage

	if req.ChatSessionId != nil {
		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: *req.ChatSessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, apperror.NotFound("chat session")
		}
		session = found

		history, err = uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
			specification.OrderBy{Field: "seq", Desc: false},
		)
		if err != nil {
			return nil, err
		}
	} else if req.ProjectId != nil {
		project, err := uow.ProjectRepository().FindOne(ctx,
			specification.ByID{ID: *req.ProjectId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, apperror.NotFound("project")
		}
	}

	classifying := session == nil || !session.Classified()

	engineCtx, cancel := context.WithTimeout(ctx, c.llmTimeout)
	defer cancel()

	raw, err := c.llmProvider.Chat(engineCtx, c.buildPrompt(classifying, history, req.Chat))
	if err != nil {
		return nil, apperror.Upstream(err)
	}

	answer := raw
	var classification *memory.Classification
	inScope := true

	if classifying {
		parsed, err := tutor.ParseClassifiedAnswer(raw)
		if err != nil {
			return nil, apperror.Upstream(err)
		}
		if parsed.InScope {
			answer = parsed.Answer
			classification = &memory.Classification{
				Subject: parsed.Subject,
				Topic:   parsed.Topic,
				Title:   parsed.Title,
			}
		} else {
			answer = constant.RedirectMessage
			inScope = false
		}
	} else if tutor.IsRedirect(raw, constant.RedirectMessage) {
		answer = constant.RedirectMessage
		inScope = false
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	isNew := session == nil
	if isNew {
		title := defaultSessionTitle
		if classification != nil {
			title = classification.Title
		}
		session = &entity.ChatSession{
			Id:        uuid.New(),
			UserId:    userId,
			ProjectId: req.ProjectId,
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return nil, err
		}
	}

	sent := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleUser,
		Content:       req.Chat,
		CreatedAt:     now,
	}
	if err := uow.ChatMessageRepository().Create(ctx, sent); err != nil {
		return nil, err
	}

	reply := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       answer,
		CreatedAt:     now,
	}
	if err := uow.ChatMessageRepository().Create(ctx, reply); err != nil {
		return nil, err
	}

	preview := tutor.TruncatePreview(answer, previewMaxLen)
	if err := uow.ChatSessionRepository().IncrementMessageCount(ctx, session.Id, 2, &preview, now); err != nil {
		return nil, err
	}

	if classification != nil {
		won, err := uow.ChatSessionRepository().SetClassification(ctx, session.Id,
			classification.Subject, classification.Topic, classification.Title)
		if err != nil {
			return nil, err
		}
		if won {
			c.classCache.Save(session.Id.String(), *classification)
			session.Subject = &classification.Subject
			session.Topic = &classification.Topic
			session.Title = classification.Title
		} else {
			// A concurrent first turn committed before us. The stored
			// values win; reuse them instead of our discarded ones.
			c.adoptStoredClassification(ctx, uow, session)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.publish(ctx, events.NewChatCompletedEvent(userId.String(), session.Id.String(), inScope))

	return &dto.SendChatResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Subject:          session.Subject,
		Topic:            session.Topic,
		InScope:          inScope,
		Sent: &dto.SendChatResponseChat{
			Id:        sent.Id,
			Chat:      sent.Content,
			Role:      sent.Role,
			CreatedAt: sent.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        reply.Id,
			Chat:      reply.Content,
			Role:      reply.Role,
			CreatedAt: reply.CreatedAt,
		},
	}, nil
}

// buildPrompt assembles the engine conversation. Unclassified sessions get
// the combined classify-and-answer contract so the label and the answer come
// from the same round trip.
func (c *chatbotService) buildPrompt(classifying bool, history []*entity.ChatMessage, chat string) []llm.Message {
	system := constant.TutorSystemPrompt
	if classifying {
		system += "\n\n" + constant.ClassifyAndAnswerPrompt
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: constant.ChatMessageRoleSystem, Content: system})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: constant.ChatMessageRoleUser, Content: chat})
	return messages
}

func (c *chatbotService) adoptStoredClassification(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession) {
	if cached, ok := c.classCache.Get(session.Id.String()); ok {
		session.Subject = &cached.Subject
		session.Topic = &cached.Topic
		session.Title = cached.Title
		return
	}
	stored, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
	if err != nil || stored == nil {
		return
	}
	session.Subject = stored.Subject
	session.Topic = stored.Topic
	session.Title = stored.Title
}

func (c *chatbotService) GetAllSessions(ctx context.Context, userId uuid.UUID, projectId *uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
	}
	if projectId != nil {
		specs = append(specs, specification.ByProjectID{ProjectID: *projectId})
	}
	specs = append(specs, specification.OrderBy{Field: "updated_at", Desc: true})

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, &dto.GetAllSessionsResponse{
			Id:           s.Id,
			Title:        s.Title,
			Subject:      s.Subject,
			Topic:        s.Topic,
			Preview:      s.Preview,
			ProjectId:    s.ProjectId,
			MessageCount: s.MessageCount,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
		})
	}
	return res, nil
}

func (c *chatbotService) GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetSessionDetailResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := c.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "seq", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	msgLog := make([]dto.GetChatHistoryResponse, 0, len(messages))
	for _, m := range messages {
		msgLog = append(msgLog, dto.GetChatHistoryResponse{
			Id:        m.Id,
			Role:      m.Role,
			Chat:      m.Content,
			CreatedAt: m.CreatedAt,
		})
	}

	return &dto.GetSessionDetailResponse{
		Id:           session.Id,
		Title:        session.Title,
		Subject:      session.Subject,
		Topic:        session.Topic,
		Preview:      session.Preview,
		ProjectId:    session.ProjectId,
		MessageCount: session.MessageCount,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
		Messages:     msgLog,
	}, nil
}

// DeleteSession is idempotent: deleting an absent (or not owned) session
// succeeds without effect.
func (c *chatbotService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	c.classCache.Delete(session.Id.String())

	c.publish(ctx, events.NewSessionDeletedEvent(userId.String(), session.Id.String()))
	return nil
}

func (c *chatbotService) publish(ctx context.Context, evt events.Event) {
	if c.eventPublisher == nil {
		return
	}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("chatbot_service", "Failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}

// MoveSession reassigns a session to another owned project, or detaches it
// when the request carries no project.
func (c *chatbotService) MoveSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.MoveSessionRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if _, err := c.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if req.ProjectId != nil {
		project, err := uow.ProjectRepository().FindOne(ctx,
			specification.ByID{ID: *req.ProjectId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return err
		}
		if project == nil {
			return apperror.NotFound("project")
		}
	}

	return uow.ChatSessionRepository().SetProject(ctx, sessionId, req.ProjectId)
}

func (c *chatbotService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("chat session")
	}
	return session, nil
}
