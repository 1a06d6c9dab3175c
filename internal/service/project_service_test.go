package service

import (
	"context"
	"testing"
	"time"

	"edu-chatbot-be/internal/apperror"
	"edu-chatbot-be/internal/dto"
	"edu-chatbot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjectFixture() (*fakeRepositoryFactory, IProjectService) {
	factory := newFakeFactory()
	return factory, NewProjectService(factory, &recordingLogger{})
}

func TestProjectCreateAndList(t *testing.T) {
	_, svc := newProjectFixture()
	userId := uuid.New()

	desc := "Term 2 revision"
	first, err := svc.Create(context.Background(), userId, &dto.CreateProjectRequest{Name: "Revision", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Revision", first.Name)
	require.NotNil(t, first.Description)

	time.Sleep(time.Millisecond)
	_, err = svc.Create(context.Background(), userId, &dto.CreateProjectRequest{Name: "Homework"})
	require.NoError(t, err)

	// Another user's project must not leak into the listing
	_, err = svc.Create(context.Background(), uuid.New(), &dto.CreateProjectRequest{Name: "Foreign"})
	require.NoError(t, err)

	all, err := svc.GetAll(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// created_at ascending
	assert.Equal(t, "Revision", all[0].Name)
	assert.Equal(t, "Homework", all[1].Name)
}

func TestProjectUpdate(t *testing.T) {
	factory, svc := newProjectFixture()
	userId := uuid.New()

	created, err := svc.Create(context.Background(), userId, &dto.CreateProjectRequest{Name: "Old name"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), userId, created.Id, &dto.UpdateProjectRequest{Name: "New name"})
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))

	stored, _ := factory.uow.projects.FindOne(context.Background())
	assert.Equal(t, "New name", stored.Name)

	// Ownership fused into not-found
	_, err = svc.Update(context.Background(), uuid.New(), created.Id, &dto.UpdateProjectRequest{Name: "Hijack"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestProjectShowCountsSessions(t *testing.T) {
	factory, svc := newProjectFixture()
	userId := uuid.New()

	created, err := svc.Create(context.Background(), userId, &dto.CreateProjectRequest{Name: "Maths"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		pid := created.Id
		require.NoError(t, factory.uow.sessions.Create(context.Background(), &entity.ChatSession{
			Id: uuid.New(), UserId: userId, ProjectId: &pid,
		}))
	}

	res, err := svc.Show(context.Background(), userId, created.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.SessionCount)
}

func TestProjectDeleteSoftOrphansSessions(t *testing.T) {
	factory, svc := newProjectFixture()
	userId := uuid.New()

	created, err := svc.Create(context.Background(), userId, &dto.CreateProjectRequest{Name: "Science"})
	require.NoError(t, err)

	pid := created.Id
	session := &entity.ChatSession{Id: uuid.New(), UserId: userId, ProjectId: &pid, MessageCount: 4}
	require.NoError(t, factory.uow.sessions.Create(context.Background(), session))

	require.NoError(t, svc.Delete(context.Background(), userId, created.Id))

	// The project is gone but its sessions survive, detached
	assert.Empty(t, factory.uow.projects.projects)
	require.Len(t, factory.uow.sessions.sessions, 1)
	assert.Nil(t, factory.uow.sessions.sessions[0].ProjectId)
	assert.Equal(t, 4, factory.uow.sessions.sessions[0].MessageCount)

	// Both mutations ran inside one transaction
	assert.Equal(t, 1, factory.uow.begins)
	assert.Equal(t, 1, factory.uow.commits)
}

func TestProjectDeleteNotOwned(t *testing.T) {
	factory, svc := newProjectFixture()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, &dto.CreateProjectRequest{Name: "Mine"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New(), created.Id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Len(t, factory.uow.projects.projects, 1)
}
