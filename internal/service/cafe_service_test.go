package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/cafeimport"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/store"
	"github.com/phrazzld/reviewdesk/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCafeFixture(t *testing.T) (*cafeServiceImpl, *MockCafeStore) {
	t.Helper()

	cafes := new(MockCafeStore)
	svc, err := NewCafeService(cafes, slog.New(testutils.NewTestSlogHandler()))
	require.NoError(t, err)

	impl := svc.(*cafeServiceImpl)
	impl.timeFunc = fixedClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	return impl, cafes
}

func TestCreateCafe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	region := "안양"
	input := CafeInput{Region: region, Link: "https://cafe.naver.com/anyangtalk", Permissions: domain.DefaultPermissions}

	t.Run("derives the name", func(t *testing.T) {
		svc, cafes := newCafeFixture(t)
		cafes.On("ExistsByLink", mock.Anything, input.Link, &region).Return(false, nil)
		cafes.On("Create", mock.Anything, mock.AnythingOfType("*domain.Cafe")).Return(nil)

		cafe, err := svc.CreateCafe(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "anyangtalk", cafe.Name)
		assert.Equal(t, region, cafe.Region)
	})

	t.Run("duplicate in region", func(t *testing.T) {
		svc, cafes := newCafeFixture(t)
		cafes.On("ExistsByLink", mock.Anything, input.Link, &region).Return(true, nil)

		_, err := svc.CreateCafe(ctx, input)
		assert.ErrorIs(t, err, store.ErrCafeExists)
		cafes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing link", func(t *testing.T) {
		svc, _ := newCafeFixture(t)
		_, err := svc.CreateCafe(ctx, CafeInput{Region: region})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestListAndDeleteCafes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("list with regions", func(t *testing.T) {
		svc, cafes := newCafeFixture(t)
		cafes.On("List", mock.Anything, store.CafeFilter{Region: "청주"}).Return([]*domain.Cafe{{Name: "truecj"}}, nil)
		cafes.On("Regions", mock.Anything).Return([]string{"안양", "청주"}, nil)

		listing, err := svc.ListCafes(ctx, " 청주 ")
		require.NoError(t, err)
		assert.Len(t, listing.Cafes, 1)
		assert.Equal(t, []string{"안양", "청주"}, listing.Regions)
	})

	t.Run("delete requires ids", func(t *testing.T) {
		svc, _ := newCafeFixture(t)
		_, err := svc.DeleteCafes(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("delete by ids", func(t *testing.T) {
		svc, cafes := newCafeFixture(t)
		ids := []uuid.UUID{uuid.New(), uuid.New()}
		cafes.On("DeleteByIDs", mock.Anything, ids).Return(int64(2), nil)

		n, err := svc.DeleteCafes(ctx, ids)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("delete all", func(t *testing.T) {
		svc, cafes := newCafeFixture(t)
		cafes.On("DeleteAll", mock.Anything).Return(int64(7), nil)

		n, err := svc.DeleteAllCafes(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})
}

func TestImportCafes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("mixed rows", func(t *testing.T) {
		svc, cafes := newCafeFixture(t)
		rows := []cafeimport.Row{
			{Line: 2, Region: "안양", Link: "https://cafe.naver.com/anyangtalk", Permissions: domain.DefaultPermissions},
			{Line: 3, Region: "안양"},
			{Line: 4, Region: "청주", Link: "https://cafe.naver.com/truecj"},
		}
		cafes.On("ExistsByLink", mock.Anything, "https://cafe.naver.com/anyangtalk", (*string)(nil)).Return(false, nil)
		cafes.On("ExistsByLink", mock.Anything, "https://cafe.naver.com/truecj", (*string)(nil)).Return(true, nil)
		cafes.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Cafe) bool {
			return c.Name == "anyangtalk" && c.Region == "안양"
		})).Return(nil)

		res, err := svc.ImportCafes(ctx, rows)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 1, res.Imported)
		assert.Equal(t, 2, res.Failed)
		assert.Equal(t, []string{
			"행 3: 카페 링크가 없습니다.",
			`행 4: "https://cafe.naver.com/truecj" 이미 존재합니다.`,
		}, res.Errors)
		cafes.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("store failure aborts", func(t *testing.T) {
		svc, cafes := newCafeFixture(t)
		dbErr := errors.New("connection refused")
		cafes.On("ExistsByLink", mock.Anything, mock.Anything, mock.Anything).Return(false, dbErr)

		_, err := svc.ImportCafes(ctx, []cafeimport.Row{{Line: 2, Link: "https://cafe.naver.com/x"}})
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("duplicate race counts as failed row", func(t *testing.T) {
		svc, cafes := newCafeFixture(t)
		cafes.On("ExistsByLink", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
		cafes.On("Create", mock.Anything, mock.Anything).Return(store.ErrCafeExists)

		res, err := svc.ImportCafes(ctx, []cafeimport.Row{{Line: 2, Link: "https://cafe.naver.com/x"}})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, []string{"행 2: 이미 존재합니다."}, res.Errors)
	})

	t.Run("no rows", func(t *testing.T) {
		svc, _ := newCafeFixture(t)
		_, err := svc.ImportCafes(ctx, nil)
		assert.ErrorIs(t, err, cafeimport.ErrEmptyFile)
	})
}
