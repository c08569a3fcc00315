package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/mocks"
	"github.com/phrazzld/reviewdesk/internal/store"
	"github.com/phrazzld/reviewdesk/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewerHandler_CreateReviewer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           interface{}
		createErr      error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "created",
			body:           map[string]interface{}{"username": "park", "nickname": "박리뷰", "unit_price": 5000},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "zero price allowed",
			body:           map[string]interface{}{"username": "park", "nickname": "박리뷰", "unit_price": 0},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing price",
			body:           map[string]interface{}{"username": "park", "nickname": "박리뷰"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "unit_price",
		},
		{
			name:           "negative price",
			body:           map[string]interface{}{"username": "park", "nickname": "박리뷰", "unit_price": -1},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "must be greater than or equal to 0",
		},
		{
			name:           "taken username",
			body:           map[string]interface{}{"username": "park", "nickname": "박리뷰", "unit_price": 5000},
			createErr:      store.ErrUsernameExists,
			expectedStatus: http.StatusConflict,
			expectedError:  "Username already exists",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mocks.MockReviewerService{
				CreateReviewerFn: func(_ context.Context, username, nickname string, unitPrice int64) (*domain.Reviewer, error) {
					if tc.createErr != nil {
						return nil, tc.createErr
					}
					return &domain.Reviewer{ID: uuid.New(), Username: username, Nickname: nickname, UnitPrice: unitPrice}, nil
				},
			}
			rec := httptest.NewRecorder()
			NewReviewerHandler(svc, nil).CreateReviewer(rec,
				testutils.NewJSONRequest(t, http.MethodPost, "/api/admin/reviewers", tc.body, ""))

			if tc.expectedError != "" {
				testutils.AssertErrorResponse(t, rec, tc.expectedStatus, tc.expectedError)
				return
			}
			require.Equal(t, tc.expectedStatus, rec.Code)
			assert.NotContains(t, rec.Body.String(), "password")
			var resp ReviewerEnvelope
			testutils.DecodeJSONResponse(t, rec, &resp)
			assert.Equal(t, "park", resp.Reviewer.Username)
		})
	}
}

func TestReviewerHandler_ListReviewers(t *testing.T) {
	t.Parallel()

	svc := &mocks.MockReviewerService{
		ListReviewersFn: func(context.Context) ([]*domain.ReviewerSummary, error) {
			return nil, nil
		},
	}
	rec := httptest.NewRecorder()
	NewReviewerHandler(svc, nil).ListReviewers(rec, httptest.NewRequest(http.MethodGet, "/api/admin/reviewers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reviewers":[]}`, rec.Body.String())
}

func TestReviewerHandler_UpdateReviewer(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	svc := &mocks.MockReviewerService{
		UpdateReviewerFn: func(_ context.Context, got uuid.UUID, patch domain.ReviewerPatch) (*domain.Reviewer, error) {
			assert.Equal(t, id, got)
			assert.Nil(t, patch.Nickname)
			require.NotNil(t, patch.UnitPrice)
			assert.Equal(t, int64(7000), *patch.UnitPrice)
			return &domain.Reviewer{ID: id, Username: "park", UnitPrice: 7000}, nil
		},
	}
	rec := httptest.NewRecorder()
	NewReviewerHandler(svc, nil).UpdateReviewer(rec, testutils.NewJSONRequest(t, http.MethodPost, "/api/admin/reviewers/update",
		map[string]interface{}{"id": id.String(), "unit_price": 7000}, ""))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReviewerHandler_DeleteReviewer(t *testing.T) {
	t.Parallel()

	svc := &mocks.MockReviewerService{
		DeleteReviewerFn: func(context.Context, uuid.UUID) error {
			return store.ErrReviewerNotFound
		},
	}
	rec := httptest.NewRecorder()
	NewReviewerHandler(svc, nil).DeleteReviewer(rec, testutils.NewJSONRequest(t, http.MethodPost, "/api/admin/reviewers/delete",
		IDRequest{ID: uuid.NewString()}, ""))

	testutils.AssertErrorResponse(t, rec, http.StatusNotFound, "Reviewer not found")
}
