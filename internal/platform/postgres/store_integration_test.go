//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/postgres"
	"github.com/phrazzld/reviewdesk/internal/store"
	"github.com/phrazzld/reviewdesk/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = mustLoadLocation("Asia/Seoul")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func insertReviewer(ctx context.Context, t *testing.T, tx *sql.Tx, username string, unitPrice int64) *domain.Reviewer {
	t.Helper()
	r, err := domain.NewReviewer(username, username+"-nick", unitPrice, "$2a$04$hash", time.Now())
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresReviewerStore(tx, nil).Create(ctx, r))
	return r
}

func insertCafe(ctx context.Context, t *testing.T, tx *sql.Tx, link, region string) *domain.Cafe {
	t.Helper()
	c, err := domain.NewCafe("", region, link, domain.DefaultPermissions, "", time.Now())
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresCafeStore(tx, nil).Create(ctx, c))
	return c
}

func insertTask(ctx context.Context, t *testing.T, tx *sql.Tx, reviewerID uuid.UUID, target domain.Target, deadline *domain.Date) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(domain.NewTaskParams{
		ReviewerID: reviewerID,
		Type:       domain.TaskTypeReview,
		Target:     target,
		Deadline:   deadline,
		Guide:      domain.Guide{BusinessName: "Cafe Onion", NeedPhoto: true},
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresTaskStore(tx, nil).Create(ctx, task))
	return task
}

func TestReviewerStore(t *testing.T) {
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		reviewers := postgres.NewPostgresReviewerStore(tx, nil)

		r := insertReviewer(ctx, t, tx, "reviewer-store-a", 4000)

		got, err := reviewers.GetByUsername(ctx, " reviewer-store-a ")
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
		assert.Equal(t, int64(4000), got.UnitPrice)

		dup, err := domain.NewReviewer("reviewer-store-a", "other", 0, "hash", time.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, reviewers.Create(ctx, dup), store.ErrUsernameExists)

		nickname := "renamed"
		updated, err := reviewers.Update(ctx, r.ID, domain.ReviewerPatch{Nickname: &nickname})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Nickname)
		assert.Equal(t, int64(4000), updated.UnitPrice)

		_, err = reviewers.Update(ctx, uuid.New(), domain.ReviewerPatch{Nickname: &nickname})
		assert.ErrorIs(t, err, store.ErrReviewerNotFound)

		insertTask(ctx, t, tx, r.ID, domain.RegionTarget{Region: "Seoul"}, nil)
		list, err := reviewers.List(ctx)
		require.NoError(t, err)
		var found bool
		for _, s := range list {
			if s.ID == r.ID {
				found = true
				assert.Equal(t, 1, s.TaskCount)
			}
		}
		assert.True(t, found)

		require.NoError(t, reviewers.Delete(ctx, r.ID))
		assert.ErrorIs(t, reviewers.Delete(ctx, r.ID), store.ErrReviewerNotFound)

		var remaining int
		require.NoError(t, tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE reviewer_id = $1", r.ID).Scan(&remaining))
		assert.Zero(t, remaining, "tasks should cascade with their reviewer")
	})
}

func TestCafeStore(t *testing.T) {
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		cafes := postgres.NewPostgresCafeStore(tx, nil)

		a := insertCafe(ctx, t, tx, "https://cafe.example.com/store-a", "Busan")
		insertCafe(ctx, t, tx, "https://cafe.example.com/store-b", "")

		busan := "Busan"
		exists, err := cafes.ExistsByLink(ctx, a.Link, &busan)
		require.NoError(t, err)
		assert.True(t, exists)

		other := "Seoul"
		exists, err = cafes.ExistsByLink(ctx, a.Link, &other)
		require.NoError(t, err)
		assert.False(t, exists)

		empty := ""
		exists, err = cafes.ExistsByLink(ctx, "https://cafe.example.com/store-b", &empty)
		require.NoError(t, err)
		assert.True(t, exists)

		list, err := cafes.List(ctx, store.CafeFilter{Region: "Busan"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "store-a", list[0].Name)

		regions, err := cafes.Regions(ctx)
		require.NoError(t, err)
		assert.Contains(t, regions, "Busan")
		assert.NotContains(t, regions, "")

		n, err := cafes.DeleteByIDs(ctx, []uuid.UUID{a.ID, uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = cafes.GetByID(ctx, a.ID)
		assert.ErrorIs(t, err, store.ErrCafeNotFound)
	})
}

func TestTaskStoreRoundTrip(t *testing.T) {
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		tasks := postgres.NewPostgresTaskStore(tx, nil)

		r := insertReviewer(ctx, t, tx, "task-store-a", 0)
		c := insertCafe(ctx, t, tx, "https://cafe.example.com/roundtrip", "Seoul")
		deadline := domain.NewDate(2025, time.April, 10)
		created := insertTask(ctx, t, tx, r.ID, domain.CafeTarget{CafeID: c.ID}, &deadline)

		got, err := tasks.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CafeTarget{CafeID: c.ID}, got.Target)
		require.NotNil(t, got.Deadline)
		assert.Equal(t, "2025-04-10", got.Deadline.String())
		assert.Equal(t, "Cafe Onion", got.Guide.BusinessName)
		assert.True(t, got.Guide.NeedPhoto)
		assert.Nil(t, got.SettlementAmount)

		_, err = got.Submit("https://blog.example.com/post/1")
		require.NoError(t, err)
		require.NoError(t, tasks.Update(ctx, got, domain.TaskStatusPending))

		// A stale status guard must not overwrite the row.
		assert.ErrorIs(t, tasks.Update(ctx, got, domain.TaskStatusPending), store.ErrTaskStatusChanged)

		require.NoError(t, got.Approve(3000, time.Now()))
		require.NoError(t, tasks.Update(ctx, got, domain.TaskStatusSubmitted))

		approved, err := tasks.GetByIDForUpdate(ctx, got.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusApproved, approved.Status)
		require.NotNil(t, approved.SettlementAmount)
		assert.Equal(t, int64(3000), *approved.SettlementAmount)

		missing := *got
		missing.ID = uuid.New()
		assert.ErrorIs(t, tasks.Update(ctx, &missing, domain.TaskStatusApproved), store.ErrTaskNotFound)

		views, err := tasks.List(ctx, store.TaskFilter{ReviewerID: r.ID})
		require.NoError(t, err)
		require.Len(t, views, 1)
		require.NotNil(t, views[0].Cafe)
		assert.Equal(t, "roundtrip", views[0].Cafe.Name)
		assert.Equal(t, "task-store-a", views[0].ReviewerUsername)
	})
}

func TestTaskStoreRejectsInvalidTarget(t *testing.T) {
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		r := insertReviewer(ctx, t, tx, "task-store-fk", 0)

		task, err := domain.NewTask(domain.NewTaskParams{
			ReviewerID: r.ID,
			Type:       domain.TaskTypeQuestion,
			Target:     domain.CafeTarget{CafeID: uuid.New()},
		}, time.Now())
		require.NoError(t, err)

		err = postgres.NewPostgresTaskStore(tx, nil).Create(ctx, task)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestTaskStoreReviewerOrdering(t *testing.T) {
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		tasks := postgres.NewPostgresTaskStore(tx, nil)
		r := insertReviewer(ctx, t, tx, "task-store-order", 0)

		late := domain.NewDate(2025, time.May, 1)
		early := domain.NewDate(2025, time.April, 1)
		noDeadline := insertTask(ctx, t, tx, r.ID, domain.LinkTarget{Link: "https://x.example.com/1"}, nil)
		lateTask := insertTask(ctx, t, tx, r.ID, domain.LinkTarget{Link: "https://x.example.com/2"}, &late)
		earlyTask := insertTask(ctx, t, tx, r.ID, domain.LinkTarget{Link: "https://x.example.com/3"}, &early)
		submitted := insertTask(ctx, t, tx, r.ID, domain.LinkTarget{Link: "https://x.example.com/4"}, &early)

		_, err := submitted.Submit("https://blog.example.com/4")
		require.NoError(t, err)
		require.NoError(t, tasks.Update(ctx, submitted, domain.TaskStatusPending))

		views, err := tasks.ListForReviewer(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, views, 4)
		assert.Equal(t, earlyTask.ID, views[0].ID)
		assert.Equal(t, lateTask.ID, views[1].ID)
		assert.Equal(t, noDeadline.ID, views[2].ID)
		assert.Equal(t, submitted.ID, views[3].ID)

		counts, err := tasks.CountByStatus(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, counts[domain.TaskStatusPending])
		assert.Equal(t, 1, counts[domain.TaskStatusSubmitted])
		assert.Equal(t, 0, counts[domain.TaskStatusApproved])
		assert.Equal(t, 4, counts.Total())
	})
}

func TestSettlementAccumulateAndMonthBoundaries(t *testing.T) {
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		tasks := postgres.NewPostgresTaskStore(tx, nil)
		settlements := postgres.NewPostgresSettlementStore(tx, nil)
		r := insertReviewer(ctx, t, tx, "settlement-store", 0)

		// 2025-03-31 23:30 UTC is already April in Seoul.
		approvedAt := time.Date(2025, time.March, 31, 23, 30, 0, 0, time.UTC)
		task := insertTask(ctx, t, tx, r.ID, domain.RegionTarget{Region: "Seoul"}, nil)
		_, err := task.Submit("https://blog.example.com/s")
		require.NoError(t, err)
		require.NoError(t, task.Approve(3000, approvedAt))
		require.NoError(t, tasks.Update(ctx, task, domain.TaskStatusPending))

		month := domain.MonthOf(approvedAt, seoul)
		require.Equal(t, domain.Month("2025-04"), month)

		first, err := settlements.Accumulate(ctx, r.ID, month, 3000)
		require.NoError(t, err)
		assert.Equal(t, 1, first.TaskCount)
		second, err := settlements.Accumulate(ctx, r.ID, month, 1000)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 2, second.TaskCount)
		assert.Equal(t, int64(4000), second.TotalAmount)

		sum, err := tasks.SumApproved(ctx, r.ID, "2025-04", seoul)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), sum)
		sum, err = tasks.SumApproved(ctx, r.ID, "2025-03", seoul)
		require.NoError(t, err)
		assert.Zero(t, sum)
		sum, err = tasks.SumApproved(ctx, r.ID, "2025-03", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), sum)

		approved, err := tasks.ListApproved(ctx, store.ApprovedTaskQuery{ReviewerID: r.ID, Month: "2025-04", Location: seoul})
		require.NoError(t, err)
		require.Len(t, approved, 1)
		assert.Equal(t, "Seoul", approved[0].CafeName)

		byReviewer, err := settlements.ListByReviewer(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, byReviewer, 1)

		views, err := settlements.List(ctx, "2025-04")
		require.NoError(t, err)
		var seen bool
		for _, v := range views {
			if v.ReviewerID == r.ID {
				seen = true
				assert.Equal(t, "settlement-store", v.ReviewerUsername)
			}
		}
		assert.True(t, seen)

		_, err = settlements.Get(ctx, r.ID, "2025-03")
		assert.ErrorIs(t, err, store.ErrSettlementNotFound)

		approvals, err := tasks.ListApprovals(ctx)
		require.NoError(t, err)
		var mine []domain.Approval
		for _, a := range approvals {
			if a.ReviewerID == r.ID {
				mine = append(mine, a)
			}
		}
		require.Len(t, mine, 1)
		assert.Equal(t, int64(3000), mine[0].Amount)
	})
}
