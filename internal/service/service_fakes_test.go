package service

import (
	"context"
	"sort"
	"time"

	"edu-chatbot-be/internal/entity"
	"edu-chatbot-be/internal/repository/contract"
	"edu-chatbot-be/internal/repository/specification"
	"edu-chatbot-be/internal/repository/unitofwork"
	"edu-chatbot-be/pkg/events"
	"edu-chatbot-be/pkg/llm"

	"github.com/google/uuid"
)

// In-memory doubles for the repository layer. They interpret the same
// specification values the SQL implementations translate to WHERE clauses,
// so service code runs unchanged against them.

type queryFilter struct {
	id        *uuid.UUID
	userId    *uuid.UUID
	username  *string
	sessionId *uuid.UUID
	projectId *uuid.UUID
	orderBy   string
	orderDesc bool
}

func buildFilter(specs []specification.Specification) queryFilter {
	var f queryFilter
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			id := v.ID
			f.id = &id
		case specification.UserOwnedBy:
			uid := v.UserID
			f.userId = &uid
		case specification.ByUsername:
			name := v.Username
			f.username = &name
		case specification.ByChatSessionID:
			sid := v.ChatSessionID
			f.sessionId = &sid
		case specification.ByProjectID:
			pid := v.ProjectID
			f.projectId = &pid
		case specification.OrderBy:
			f.orderBy = v.Field
			f.orderDesc = v.Desc
		}
	}
	return f
}

// --- users ---

type fakeUserRepository struct {
	users []*entity.User
}

func (r *fakeUserRepository) Create(_ context.Context, user *entity.User) error {
	cp := *user
	r.users = append(r.users, &cp)
	return nil
}

func (r *fakeUserRepository) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	f := buildFilter(specs)
	for _, u := range r.users {
		if f.id != nil && u.Id != *f.id {
			continue
		}
		if f.username != nil && u.Username != *f.username {
			continue
		}
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepository) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	f := buildFilter(specs)
	var n int64
	for _, u := range r.users {
		if f.username != nil && u.Username != *f.username {
			continue
		}
		n++
	}
	return n, nil
}

// --- projects ---

type fakeProjectRepository struct {
	projects []*entity.Project
}

func (r *fakeProjectRepository) Create(_ context.Context, project *entity.Project) error {
	cp := *project
	r.projects = append(r.projects, &cp)
	return nil
}

func (r *fakeProjectRepository) Update(_ context.Context, project *entity.Project) error {
	for i, p := range r.projects {
		if p.Id == project.Id {
			cp := *project
			r.projects[i] = &cp
		}
	}
	return nil
}

func (r *fakeProjectRepository) Delete(_ context.Context, id uuid.UUID) error {
	kept := r.projects[:0]
	for _, p := range r.projects {
		if p.Id != id {
			kept = append(kept, p)
		}
	}
	r.projects = kept
	return nil
}

func (r *fakeProjectRepository) matches(p *entity.Project, f queryFilter) bool {
	if f.id != nil && p.Id != *f.id {
		return false
	}
	if f.userId != nil && p.UserId != *f.userId {
		return false
	}
	return true
}

func (r *fakeProjectRepository) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Project, error) {
	f := buildFilter(specs)
	for _, p := range r.projects {
		if r.matches(p, f) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProjectRepository) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Project, error) {
	f := buildFilter(specs)
	var out []*entity.Project
	for _, p := range r.projects {
		if r.matches(p, f) {
			cp := *p
			out = append(out, &cp)
		}
	}
	if f.orderBy == "created_at" {
		sort.SliceStable(out, func(i, j int) bool {
			if f.orderDesc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

func (r *fakeProjectRepository) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(context.Background(), specs...)
	return int64(len(all)), nil
}

// --- chat sessions ---

type fakeChatSessionRepository struct {
	sessions []*entity.ChatSession

	// When set, SetClassification behaves as if a concurrent writer won:
	// the stored row gets these values and the call reports no effect.
	raceWinner *struct{ Subject, Topic, Title string }
}

func (r *fakeChatSessionRepository) Create(_ context.Context, session *entity.ChatSession) error {
	cp := *session
	r.sessions = append(r.sessions, &cp)
	return nil
}

func (r *fakeChatSessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if s.Id != id {
			kept = append(kept, s)
		}
	}
	r.sessions = kept
	return nil
}

func (r *fakeChatSessionRepository) matches(s *entity.ChatSession, f queryFilter) bool {
	if f.id != nil && s.Id != *f.id {
		return false
	}
	if f.userId != nil && s.UserId != *f.userId {
		return false
	}
	if f.projectId != nil && (s.ProjectId == nil || *s.ProjectId != *f.projectId) {
		return false
	}
	return true
}

func (r *fakeChatSessionRepository) FindOne(_ context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	f := buildFilter(specs)
	for _, s := range r.sessions {
		if r.matches(s, f) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeChatSessionRepository) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	f := buildFilter(specs)
	var out []*entity.ChatSession
	for _, s := range r.sessions {
		if r.matches(s, f) {
			cp := *s
			out = append(out, &cp)
		}
	}
	if f.orderBy == "updated_at" {
		sort.SliceStable(out, func(i, j int) bool {
			if f.orderDesc {
				return out[i].UpdatedAt.After(out[j].UpdatedAt)
			}
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		})
	}
	return out, nil
}

func (r *fakeChatSessionRepository) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(context.Background(), specs...)
	return int64(len(all)), nil
}

func (r *fakeChatSessionRepository) IncrementMessageCount(_ context.Context, id uuid.UUID, delta int, preview *string, now time.Time) error {
	for _, s := range r.sessions {
		if s.Id == id {
			s.MessageCount += delta
			s.UpdatedAt = now
			if preview != nil {
				p := *preview
				s.Preview = &p
			}
		}
	}
	return nil
}

func (r *fakeChatSessionRepository) SetClassification(_ context.Context, id uuid.UUID, subject, topic, title string) (bool, error) {
	for _, s := range r.sessions {
		if s.Id != id {
			continue
		}
		if r.raceWinner != nil && s.Subject == nil {
			sub, top := r.raceWinner.Subject, r.raceWinner.Topic
			s.Subject, s.Topic, s.Title = &sub, &top, r.raceWinner.Title
			return false, nil
		}
		if s.Subject != nil {
			return false, nil
		}
		s.Subject, s.Topic, s.Title = &subject, &topic, title
		return true, nil
	}
	return false, nil
}

func (r *fakeChatSessionRepository) SetProject(_ context.Context, id uuid.UUID, projectId *uuid.UUID) error {
	for _, s := range r.sessions {
		if s.Id == id {
			if projectId == nil {
				s.ProjectId = nil
			} else {
				pid := *projectId
				s.ProjectId = &pid
			}
		}
	}
	return nil
}

func (r *fakeChatSessionRepository) DetachProject(_ context.Context, projectId uuid.UUID) error {
	for _, s := range r.sessions {
		if s.ProjectId != nil && *s.ProjectId == projectId {
			s.ProjectId = nil
		}
	}
	return nil
}

// --- chat messages ---

type fakeChatMessageRepository struct {
	messages []*entity.ChatMessage
	nextSeq  int64
}

func (r *fakeChatMessageRepository) Create(_ context.Context, message *entity.ChatMessage) error {
	r.nextSeq++
	cp := *message
	cp.Seq = r.nextSeq
	r.messages = append(r.messages, &cp)
	message.Seq = cp.Seq
	return nil
}

func (r *fakeChatMessageRepository) DeleteByChatSessionId(_ context.Context, sessionId uuid.UUID) error {
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.ChatSessionId != sessionId {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

func (r *fakeChatMessageRepository) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	f := buildFilter(specs)
	var out []*entity.ChatMessage
	for _, m := range r.messages {
		if f.sessionId != nil && m.ChatSessionId != *f.sessionId {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.orderDesc {
			return out[i].Seq > out[j].Seq
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (r *fakeChatMessageRepository) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(context.Background(), specs...)
	return int64(len(all)), nil
}

// --- unit of work ---

type fakeUnitOfWork struct {
	users    *fakeUserRepository
	projects *fakeProjectRepository
	sessions *fakeChatSessionRepository
	messages *fakeChatMessageRepository

	begins    int
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) Begin(_ context.Context) error { u.begins++; return nil }
func (u *fakeUnitOfWork) Commit() error                 { u.commits++; return nil }
func (u *fakeUnitOfWork) Rollback() error               { u.rollbacks++; return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return u.users
}

func (u *fakeUnitOfWork) ProjectRepository() contract.ProjectRepository {
	return u.projects
}

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return u.sessions
}

func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return u.messages
}

type fakeRepositoryFactory struct {
	uow *fakeUnitOfWork
}

func newFakeFactory() *fakeRepositoryFactory {
	return &fakeRepositoryFactory{
		uow: &fakeUnitOfWork{
			users:    &fakeUserRepository{},
			projects: &fakeProjectRepository{},
			sessions: &fakeChatSessionRepository{},
			messages: &fakeChatMessageRepository{},
		},
	}
}

func (f *fakeRepositoryFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// --- llm ---

// scriptedLLM returns canned responses in order and records every prompt.
type scriptedLLM struct {
	responses []string
	err       error
	calls     [][]llm.Message
}

func (s *scriptedLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	s.calls = append(s.calls, history)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	res := s.responses[0]
	s.responses = s.responses[1:]
	return res, nil
}

// --- logging ---

type loggedEntry struct {
	level   string
	module  string
	message string
	details map[string]interface{}
}

// recordingLogger captures every entry so tests can assert on what the
// services logged.
type recordingLogger struct {
	entries []loggedEntry
}

func (l *recordingLogger) record(level, module, message string, details map[string]interface{}) {
	l.entries = append(l.entries, loggedEntry{level: level, module: module, message: message, details: details})
}

func (l *recordingLogger) Debug(module, message string, details map[string]interface{}) {
	l.record("debug", module, message, details)
}

func (l *recordingLogger) Info(module, message string, details map[string]interface{}) {
	l.record("info", module, message, details)
}

func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	l.record("warn", module, message, details)
}

func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {
	l.record("error", module, message, details)
}

func (l *recordingLogger) Sync() error { return nil }

func (l *recordingLogger) warnings() []loggedEntry {
	var out []loggedEntry
	for _, e := range l.entries {
		if e.level == "warn" {
			out = append(out, e)
		}
	}
	return out
}

// --- events ---

// capturingPublisher records published events; when err is set every
// Publish fails with it.
type capturingPublisher struct {
	err    error
	events []events.Event
}

func (p *capturingPublisher) Publish(_ context.Context, event events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}
