// Package testutils provides testing utilities shared across packages.
//
// TestSlogHandler captures log records so tests can assert on what a
// component logged:
//
//	handler := testutils.NewTestSlogHandler()
//	svc, _ := service.NewTaskService(db, tasks, reviewers, cafes, settlements, settings, slog.New(handler))
//	// ... exercise svc ...
//	entries := handler.EntriesWithMessage("submit link overwritten")
//
// The HTTP helpers build JSON requests for handlers under test and assert on
// the standard error body:
//
//	req := testutils.NewJSONRequest(t, http.MethodPost, "/api/admin/tasks/approve", body, "")
//	rec := httptest.NewRecorder()
//	router.ServeHTTP(rec, req)
//	testutils.AssertErrorResponse(t, rec, http.StatusNotFound, "not found")
//
// Database helpers for integration tests live in internal/testdb.
package testutils
