package service

import (
	"context"
	"time"

	"edu-chatbot-be/internal/apperror"
	"edu-chatbot-be/internal/dto"
	"edu-chatbot-be/internal/entity"
	"edu-chatbot-be/internal/pkg/logger"
	"edu-chatbot-be/internal/repository/specification"
	"edu-chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IProjectService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ProjectResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ProjectResponse, error)
}

type projectService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewProjectService(uowFactory unitofwork.RepositoryFactory, sysLogger logger.ILogger) IProjectService {
	return &projectService{
		uowFactory: uowFactory,
		logger:     sysLogger,
	}
}

func (c *projectService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	now := time.Now()
	project := entity.Project{
		Id:          uuid.New(),
		UserId:      userId,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uow.ProjectRepository().Create(ctx, &project); err != nil {
		return nil, err
	}

	return c.toResponse(&project, 0), nil
}

func (c *projectService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := c.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	project.Name = req.Name
	project.Description = req.Description
	project.UpdatedAt = time.Now()

	if err := uow.ProjectRepository().Update(ctx, project); err != nil {
		return nil, err
	}

	count, err := c.sessionCount(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	return c.toResponse(project, count), nil
}

// Delete removes the project and detaches its sessions inside one
// transaction. Sessions survive with project_id cleared.
func (c *projectService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if _, err := c.findOwned(ctx, uow, userId, id); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().DetachProject(ctx, id); err != nil {
		return err
	}

	if err := uow.ProjectRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.logger.Info("project_service", "Project deleted, sessions detached", map[string]interface{}{
		"project_id": id.String(),
		"user_id":    userId.String(),
	})
	return nil
}

func (c *projectService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := c.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	count, err := c.sessionCount(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	return c.toResponse(project, count), nil
}

func (c *projectService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	projects, err := uow.ProjectRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		count, err := c.sessionCount(ctx, uow, p.Id)
		if err != nil {
			return nil, err
		}
		res = append(res, c.toResponse(p, count))
	}
	return res, nil
}

func (c *projectService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Project, error) {
	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NotFound("project")
	}
	return project, nil
}

func (c *projectService) sessionCount(ctx context.Context, uow unitofwork.UnitOfWork, projectId uuid.UUID) (int64, error) {
	return uow.ChatSessionRepository().Count(ctx, specification.ByProjectID{ProjectID: projectId})
}

func (c *projectService) toResponse(p *entity.Project, sessionCount int64) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		Id:           p.Id,
		Name:         p.Name,
		Description:  p.Description,
		SessionCount: sessionCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
