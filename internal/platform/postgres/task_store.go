package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// PostgresTaskStore implements store.TaskStore on PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

const taskColumns = `t.id, t.reviewer_id, t.cafe_id, t.cafe_link, t.is_region_arbitrary, t.region_arbitrary,
	t.task_type, t.status, t.deadline, t.business_name, t.place_address, t.need_photo, t.special_note,
	t.title_guide, t.content_guide, t.comment_guide, t.submit_link, t.rejection_reason,
	t.settlement_amount, t.assigned_at, t.approved_at, t.created_at`

const taskViewColumns = taskColumns + `,
	r.username, r.nickname,
	c.id, c.name, c.region, c.cafe_link, c.allow_review, c.allow_business_name, c.allow_after_post, c.require_approval`

// reviewerStatusOrder ranks statuses for the reviewer's task list.
const reviewerStatusOrder = `CASE t.status
	WHEN 'pending' THEN 1
	WHEN 'ongoing' THEN 2
	WHEN 'submitted' THEN 3
	WHEN 'approved' THEN 4
	WHEN 'rejected' THEN 5
	WHEN 'declined' THEN 6
	ELSE 7 END`

// taskRow holds the nullable columns of a task row before conversion.
type taskRow struct {
	task             domain.Task
	cafeID           uuid.NullUUID
	cafeLink         sql.NullString
	isRegion         bool
	region           sql.NullString
	deadline         sql.NullTime
	businessName     sql.NullString
	placeAddress     sql.NullString
	specialNote      sql.NullString
	titleGuide       sql.NullString
	contentGuide     sql.NullString
	commentGuide     sql.NullString
	submitLink       sql.NullString
	rejectionReason  sql.NullString
	settlementAmount sql.NullInt64
	approvedAt       sql.NullTime
}

func (r *taskRow) dest() []any {
	return []any{
		&r.task.ID, &r.task.ReviewerID, &r.cafeID, &r.cafeLink, &r.isRegion, &r.region,
		&r.task.Type, &r.task.Status, &r.deadline, &r.businessName, &r.placeAddress,
		&r.task.Guide.NeedPhoto, &r.specialNote, &r.titleGuide, &r.contentGuide, &r.commentGuide,
		&r.submitLink, &r.rejectionReason, &r.settlementAmount, &r.task.AssignedAt, &r.approvedAt,
		&r.task.CreatedAt,
	}
}

func (r *taskRow) toTask() *domain.Task {
	t := r.task
	switch {
	case r.cafeID.Valid:
		t.Target = domain.CafeTarget{CafeID: r.cafeID.UUID}
	case r.cafeLink.Valid:
		t.Target = domain.LinkTarget{Link: r.cafeLink.String}
	case r.isRegion:
		t.Target = domain.RegionTarget{Region: r.region.String}
	}
	if r.deadline.Valid {
		d := r.deadline.Time
		date := domain.NewDate(d.Year(), d.Month(), d.Day())
		t.Deadline = &date
	}
	t.Guide.BusinessName = r.businessName.String
	t.Guide.PlaceAddress = r.placeAddress.String
	t.Guide.SpecialNote = r.specialNote.String
	t.Guide.TitleGuide = r.titleGuide.String
	t.Guide.ContentGuide = r.contentGuide.String
	t.Guide.CommentGuide = r.commentGuide.String
	t.SubmitLink = r.submitLink.String
	t.RejectionReason = r.rejectionReason.String
	if r.settlementAmount.Valid {
		amount := r.settlementAmount.Int64
		t.SettlementAmount = &amount
	}
	if r.approvedAt.Valid {
		approvedAt := r.approvedAt.Time
		t.ApprovedAt = &approvedAt
	}
	return &t
}

// taskViewRow extends taskRow with the joined reviewer and cafe columns.
type taskViewRow struct {
	taskRow
	username       string
	nickname       string
	joinedCafeID   uuid.NullUUID
	joinedCafeName sql.NullString
	joinedRegion   sql.NullString
	joinedLink     sql.NullString
	perms          [4]sql.NullBool
}

func (r *taskViewRow) dest() []any {
	return append(r.taskRow.dest(),
		&r.username, &r.nickname,
		&r.joinedCafeID, &r.joinedCafeName, &r.joinedRegion, &r.joinedLink,
		&r.perms[0], &r.perms[1], &r.perms[2], &r.perms[3],
	)
}

func (r *taskViewRow) toView() *domain.TaskView {
	v := &domain.TaskView{
		Task:             r.toTask(),
		ReviewerUsername: r.username,
		ReviewerNickname: r.nickname,
	}
	if r.joinedCafeID.Valid {
		v.Cafe = &domain.CafeSummary{
			ID:     r.joinedCafeID.UUID,
			Name:   r.joinedCafeName.String,
			Region: r.joinedRegion.String,
			Link:   r.joinedLink.String,
			Permissions: domain.Permissions{
				AllowReview:       r.perms[0].Bool,
				AllowBusinessName: r.perms[1].Bool,
				AllowAfterPost:    r.perms[2].Bool,
				RequireApproval:   r.perms[3].Bool,
			},
		}
	}
	return v
}

// targetValues flattens a target into its four columns.
func targetValues(t domain.Target) (uuid.NullUUID, sql.NullString, bool, sql.NullString) {
	switch v := t.(type) {
	case domain.CafeTarget:
		return uuid.NullUUID{UUID: v.CafeID, Valid: true}, sql.NullString{}, false, sql.NullString{}
	case domain.LinkTarget:
		return uuid.NullUUID{}, nullString(v.Link), false, sql.NullString{}
	case domain.RegionTarget:
		return uuid.NullUUID{}, sql.NullString{}, true, nullString(v.Region)
	}
	return uuid.NullUUID{}, sql.NullString{}, false, sql.NullString{}
}

func deadlineValue(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func settlementValue(amount *int64) sql.NullInt64 {
	if amount == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *amount, Valid: true}
}

func approvedAtValue(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func locationName(loc *time.Location) string {
	if loc == nil {
		return "UTC"
	}
	return loc.String()
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	cafeID, link, isRegion, region := targetValues(task.Target)
	g := task.Guide
	query, args, err := psql.Insert("tasks").
		Columns("id", "reviewer_id", "cafe_id", "cafe_link", "is_region_arbitrary", "region_arbitrary",
			"task_type", "status", "deadline", "business_name", "place_address", "need_photo",
			"special_note", "title_guide", "content_guide", "comment_guide", "submit_link",
			"rejection_reason", "settlement_amount", "assigned_at", "approved_at", "created_at").
		Values(task.ID, task.ReviewerID, cafeID, link, isRegion, region,
			string(task.Type), string(task.Status), deadlineValue(task.Deadline),
			nullString(g.BusinessName), nullString(g.PlaceAddress), g.NeedPhoto,
			nullString(g.SpecialNote), nullString(g.TitleGuide), nullString(g.ContentGuide),
			nullString(g.CommentGuide), nullString(task.SubmitLink), nullString(task.RejectionReason),
			settlementValue(task.SettlementAmount), task.AssignedAt, approvedAtValue(task.ApprovedAt),
			task.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("task references a missing reviewer or cafe",
				slog.String("task_id", task.ID.String()),
				slog.String("reviewer_id", task.ReviewerID.String()))
			return fmt.Errorf("%w: reviewer or cafe not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("reviewer_id", task.ReviewerID.String()),
		slog.String("task_type", string(task.Type)),
		slog.String("target", string(task.Target.Kind())))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.get(ctx, id, "")
}

// GetByIDForUpdate implements store.TaskStore.GetByIDForUpdate.
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.get(ctx, id, " FOR UPDATE")
}

func (s *PostgresTaskStore) get(ctx context.Context, id uuid.UUID, lock string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var row taskRow
	err := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks t WHERE t.id = $1"+lock, id).
		Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	return row.toTask(), nil
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task, expected domain.TaskStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	cafeID, link, isRegion, region := targetValues(task.Target)
	g := task.Guide
	query, args, err := psql.Update("tasks").
		SetMap(map[string]any{
			"reviewer_id":         task.ReviewerID,
			"cafe_id":             cafeID,
			"cafe_link":           link,
			"is_region_arbitrary": isRegion,
			"region_arbitrary":    region,
			"status":              string(task.Status),
			"deadline":            deadlineValue(task.Deadline),
			"business_name":       nullString(g.BusinessName),
			"place_address":       nullString(g.PlaceAddress),
			"need_photo":          g.NeedPhoto,
			"special_note":        nullString(g.SpecialNote),
			"title_guide":         nullString(g.TitleGuide),
			"content_guide":       nullString(g.ContentGuide),
			"comment_guide":       nullString(g.CommentGuide),
			"submit_link":         nullString(task.SubmitLink),
			"rejection_reason":    nullString(task.RejectionReason),
			"settlement_amount":   settlementValue(task.SettlementAmount),
			"assigned_at":         task.AssignedAt,
			"approved_at":         approvedAtValue(task.ApprovedAt),
		}).
		Where("id = ?", task.ID).
		Where("status = ?", string(expected)).
		ToSql()
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: reviewer or cafe not found", store.ErrInvalidEntity)
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskStatusChanged); err != nil {
		if !errors.Is(err, store.ErrTaskStatusChanged) {
			return err
		}
		var exists bool
		if qErr := s.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)", task.ID).
			Scan(&exists); qErr != nil {
			return MapError(qErr)
		}
		if !exists {
			return store.ErrTaskNotFound
		}
		log.Warn("task status changed before update",
			slog.String("task_id", task.ID.String()),
			slog.String("expected_status", string(expected)))
		return err
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("from_status", string(expected)),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

func (s *PostgresTaskStore) viewQuery() sq.SelectBuilder {
	return psql.Select(taskViewColumns).
		From("tasks t").
		Join("reviewers r ON r.id = t.reviewer_id").
		LeftJoin("cafes c ON c.id = t.cafe_id")
}

// List implements store.TaskStore.List.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.TaskView, error) {
	b := s.viewQuery().OrderBy("t.assigned_at DESC", "t.id")
	if filter.Status != "" {
		b = b.Where("t.status = ?", string(filter.Status))
	}
	if filter.ReviewerID != uuid.Nil {
		b = b.Where("t.reviewer_id = ?", filter.ReviewerID)
	}
	return s.listViews(ctx, b)
}

// ListForReviewer implements store.TaskStore.ListForReviewer.
func (s *PostgresTaskStore) ListForReviewer(ctx context.Context, reviewerID uuid.UUID) ([]*domain.TaskView, error) {
	b := s.viewQuery().
		Where("t.reviewer_id = ?", reviewerID).
		OrderBy(reviewerStatusOrder, "t.deadline ASC NULLS LAST", "t.assigned_at DESC")
	return s.listViews(ctx, b)
}

func (s *PostgresTaskStore) listViews(ctx context.Context, b sq.SelectBuilder) ([]*domain.TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	views := []*domain.TaskView{}
	for rows.Next() {
		var row taskViewRow
		if err := rows.Scan(row.dest()...); err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		views = append(views, row.toView())
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning task rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed tasks", slog.Int("count", len(views)))
	return views, nil
}

// CountByStatus implements store.TaskStore.CountByStatus.
func (s *PostgresTaskStore) CountByStatus(ctx context.Context, reviewerID uuid.UUID) (domain.StatusCounts, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM tasks
		WHERE reviewer_id = $1
		GROUP BY status
	`, reviewerID)
	if err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	counts := make(domain.StatusCounts, len(domain.TaskStatuses))
	for _, status := range domain.TaskStatuses {
		counts[status] = 0
	}
	for rows.Next() {
		var status domain.TaskStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// ListApproved implements store.TaskStore.ListApproved.
func (s *PostgresTaskStore) ListApproved(ctx context.Context, q store.ApprovedTaskQuery) ([]*domain.ApprovedTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	b := psql.Select(
		"t.id", "t.task_type",
		"COALESCE(c.name, t.region_arbitrary, '')",
		"COALESCE(t.cafe_link, c.cafe_link, '')",
		"COALESCE(t.submit_link, '')",
		"t.settlement_amount", "t.approved_at").
		From("tasks t").
		LeftJoin("cafes c ON c.id = t.cafe_id").
		Where("t.reviewer_id = ?", q.ReviewerID).
		Where("t.status = ?", string(domain.TaskStatusApproved)).
		OrderBy("t.approved_at DESC")
	if q.Month != "" {
		b = b.Where("to_char(t.approved_at AT TIME ZONE ?, 'YYYY-MM') = ?", locationName(q.Location), string(q.Month))
	}
	if q.Limit > 0 {
		b = b.Limit(q.Limit)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list approved tasks",
			slog.String("error", err.Error()),
			slog.String("reviewer_id", q.ReviewerID.String()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	tasks := []*domain.ApprovedTask{}
	for rows.Next() {
		var t domain.ApprovedTask
		if err := rows.Scan(&t.ID, &t.TaskType, &t.CafeName, &t.Link, &t.SubmitLink, &t.SettlementAmount, &t.ApprovedAt); err != nil {
			log.Error("failed to scan approved task", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// SumApproved implements store.TaskStore.SumApproved.
func (s *PostgresTaskStore) SumApproved(ctx context.Context, reviewerID uuid.UUID, month domain.Month, loc *time.Location) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(settlement_amount), 0)
		FROM tasks
		WHERE reviewer_id = $1
		  AND status = 'approved'
		  AND to_char(approved_at AT TIME ZONE $2, 'YYYY-MM') = $3
	`, reviewerID, locationName(loc), string(month)).Scan(&total)
	if err != nil {
		log.Error("failed to sum approved tasks",
			slog.String("error", err.Error()),
			slog.String("reviewer_id", reviewerID.String()))
		return 0, MapError(err)
	}
	return total, nil
}

// ListApprovals implements store.TaskStore.ListApprovals.
func (s *PostgresTaskStore) ListApprovals(ctx context.Context) ([]domain.Approval, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reviewer_id, settlement_amount, approved_at
		FROM tasks
		WHERE status = 'approved'
	`)
	if err != nil {
		log.Error("failed to list approvals", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	approvals := []domain.Approval{}
	for rows.Next() {
		var a domain.Approval
		if err := rows.Scan(&a.TaskID, &a.ReviewerID, &a.Amount, &a.ApprovedAt); err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}
