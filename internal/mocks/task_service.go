package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// MockTaskService implements service.TaskService with function fields. A
// method whose function is nil panics, so tests only set what they expect
// to be called.
type MockTaskService struct {
	CreateTaskFn        func(ctx context.Context, params domain.NewTaskParams) (*domain.Task, error)
	ListTasksFn         func(ctx context.Context, filter store.TaskFilter) ([]*domain.TaskView, error)
	ListReviewerTasksFn func(ctx context.Context, reviewerID uuid.UUID) ([]*domain.TaskView, error)
	StartTaskFn         func(ctx context.Context, reviewerID, taskID uuid.UUID) (*domain.Task, error)
	SubmitTaskFn        func(ctx context.Context, reviewerID, taskID uuid.UUID, link string) (*domain.Task, error)
	DeclineTaskFn       func(ctx context.Context, reviewerID, taskID uuid.UUID, reason string) (*domain.Task, error)
	ApproveTaskFn       func(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
	RejectTaskFn        func(ctx context.Context, taskID uuid.UUID, reason string) (*domain.Task, error)
	ReassignTaskFn      func(ctx context.Context, taskID, reviewerID uuid.UUID) (*domain.Task, error)
	UpdateGuideFn       func(ctx context.Context, taskID uuid.UUID, patch domain.GuidePatch) (*domain.Task, error)
	DeleteTaskFn        func(ctx context.Context, taskID uuid.UUID) error
}

func (m *MockTaskService) CreateTask(ctx context.Context, params domain.NewTaskParams) (*domain.Task, error) {
	return m.CreateTaskFn(ctx, params)
}

func (m *MockTaskService) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.TaskView, error) {
	return m.ListTasksFn(ctx, filter)
}

func (m *MockTaskService) ListReviewerTasks(ctx context.Context, reviewerID uuid.UUID) ([]*domain.TaskView, error) {
	return m.ListReviewerTasksFn(ctx, reviewerID)
}

func (m *MockTaskService) StartTask(ctx context.Context, reviewerID, taskID uuid.UUID) (*domain.Task, error) {
	return m.StartTaskFn(ctx, reviewerID, taskID)
}

func (m *MockTaskService) SubmitTask(ctx context.Context, reviewerID, taskID uuid.UUID, link string) (*domain.Task, error) {
	return m.SubmitTaskFn(ctx, reviewerID, taskID, link)
}

func (m *MockTaskService) DeclineTask(ctx context.Context, reviewerID, taskID uuid.UUID, reason string) (*domain.Task, error) {
	return m.DeclineTaskFn(ctx, reviewerID, taskID, reason)
}

func (m *MockTaskService) ApproveTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	return m.ApproveTaskFn(ctx, taskID)
}

func (m *MockTaskService) RejectTask(ctx context.Context, taskID uuid.UUID, reason string) (*domain.Task, error) {
	return m.RejectTaskFn(ctx, taskID, reason)
}

func (m *MockTaskService) ReassignTask(ctx context.Context, taskID, reviewerID uuid.UUID) (*domain.Task, error) {
	return m.ReassignTaskFn(ctx, taskID, reviewerID)
}

func (m *MockTaskService) UpdateGuide(ctx context.Context, taskID uuid.UUID, patch domain.GuidePatch) (*domain.Task, error) {
	return m.UpdateGuideFn(ctx, taskID, patch)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	return m.DeleteTaskFn(ctx, taskID)
}
