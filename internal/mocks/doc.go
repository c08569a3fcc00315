// Package mocks provides function-field fakes of the service interfaces for
// handler and middleware tests.
//
// Each mock has one function field per interface method. Tests set only the
// fields they expect to be called; calling a method whose field is nil
// panics, which fails the test loudly:
//
//	tasks := &mocks.MockTaskService{
//	    ApproveTaskFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
//	        return nil, domain.ErrTaskApproved
//	    },
//	}
//
// MockJWTService additionally falls back to its Claims/ValidateErr fields
// when no function is set.
//
// Store mocks live next to the service tests that use them.
package mocks
