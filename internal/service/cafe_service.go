package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/cafeimport"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// CafeInput holds the fields of a cafe registration.
type CafeInput struct {
	Name        string
	Region      string
	Link        string
	Permissions domain.Permissions
	Notes       string
}

// CafeListing is a cafe list together with every region in use.
type CafeListing struct {
	Cafes   []*domain.Cafe `json:"cafes"`
	Regions []string       `json:"regions"`
}

// CafeService manages the cafe registry.
type CafeService interface {
	// CreateCafe registers a cafe. A cafe with the same link in the same
	// region is rejected with store.ErrCafeExists.
	CreateCafe(ctx context.Context, input CafeInput) (*domain.Cafe, error)

	// ListCafes returns cafes, optionally limited to one region.
	ListCafes(ctx context.Context, region string) (*CafeListing, error)

	// DeleteCafes removes the given cafes and their tasks.
	DeleteCafes(ctx context.Context, ids []uuid.UUID) (int64, error)

	// DeleteAllCafes removes every cafe and their tasks.
	DeleteAllCafes(ctx context.Context) (int64, error)

	// ImportCafes registers parsed spreadsheet rows one by one. Rows without
	// a link or with an already registered link are counted as failed.
	ImportCafes(ctx context.Context, rows []cafeimport.Row) (*cafeimport.Result, error)
}

type cafeServiceImpl struct {
	cafes    store.CafeStore
	logger   *slog.Logger
	timeFunc func() time.Time
}

var _ CafeService = (*cafeServiceImpl)(nil)

// NewCafeService creates a new CafeService.
func NewCafeService(cafes store.CafeStore, logger *slog.Logger) (CafeService, error) {
	if cafes == nil {
		return nil, domain.NewValidationError("cafes", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &cafeServiceImpl{
		cafes:    cafes,
		logger:   logger.With(slog.String("component", "cafe_service")),
		timeFunc: time.Now,
	}, nil
}

func (s *cafeServiceImpl) fail(log *slog.Logger, op string, err error, attrs ...any) error {
	logFailure(log, "cafe "+op+" failed", err, attrs...)
	return NewServiceError("cafe", op, "could not "+op+" cafes", err)
}

// CreateCafe implements CafeService.
func (s *cafeServiceImpl) CreateCafe(ctx context.Context, input CafeInput) (*domain.Cafe, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cafe, err := domain.NewCafe(input.Name, input.Region, input.Link, input.Permissions, input.Notes, s.timeFunc())
	if err != nil {
		return nil, s.fail(log, "create", err)
	}

	exists, err := s.cafes.ExistsByLink(ctx, cafe.Link, &cafe.Region)
	if err != nil {
		return nil, s.fail(log, "create", err)
	}
	if exists {
		return nil, s.fail(log, "create", store.ErrCafeExists,
			slog.String("cafe_link", cafe.Link),
			slog.String("region", cafe.Region))
	}

	if err := s.cafes.Create(ctx, cafe); err != nil {
		return nil, s.fail(log, "create", err, slog.String("cafe_link", cafe.Link))
	}

	log.Info("cafe created",
		slog.String("cafe_id", cafe.ID.String()),
		slog.String("name", cafe.Name),
		slog.String("region", cafe.Region))
	return cafe, nil
}

// ListCafes implements CafeService.
func (s *cafeServiceImpl) ListCafes(ctx context.Context, region string) (*CafeListing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cafes, err := s.cafes.List(ctx, store.CafeFilter{Region: strings.TrimSpace(region)})
	if err != nil {
		return nil, s.fail(log, "list", err)
	}
	regions, err := s.cafes.Regions(ctx)
	if err != nil {
		return nil, s.fail(log, "list", err)
	}
	return &CafeListing{Cafes: cafes, Regions: regions}, nil
}

// DeleteCafes implements CafeService.
func (s *cafeServiceImpl) DeleteCafes(ctx context.Context, ids []uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return 0, s.fail(log, "delete", domain.NewValidationError("ids", "at least one cafe id is required", nil))
	}
	deleted, err := s.cafes.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, s.fail(log, "delete", err)
	}
	log.Info("cafes deleted", slog.Int("requested", len(ids)), slog.Int64("deleted", deleted))
	return deleted, nil
}

// DeleteAllCafes implements CafeService.
func (s *cafeServiceImpl) DeleteAllCafes(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deleted, err := s.cafes.DeleteAll(ctx)
	if err != nil {
		return 0, s.fail(log, "delete", err)
	}
	log.Warn("all cafes deleted", slog.Int64("deleted", deleted))
	return deleted, nil
}

// ImportCafes implements CafeService.
func (s *cafeServiceImpl) ImportCafes(ctx context.Context, rows []cafeimport.Row) (*cafeimport.Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(rows) == 0 {
		return nil, s.fail(log, "import", domain.NewValidationError("file", cafeimport.ErrEmptyFile.Error(), cafeimport.ErrEmptyFile))
	}

	result := cafeimport.NewResult(len(rows))
	for _, row := range rows {
		if row.Link == "" {
			result.Fail(row.Line, "카페 링크가 없습니다.")
			continue
		}

		exists, err := s.cafes.ExistsByLink(ctx, row.Link, nil)
		if err != nil {
			return nil, s.fail(log, "import", err, slog.Int("line", row.Line))
		}
		if exists {
			result.Fail(row.Line, fmt.Sprintf("%q 이미 존재합니다.", row.Link))
			continue
		}

		cafe, err := domain.NewCafe("", row.Region, row.Link, row.Permissions, row.Notes, s.timeFunc())
		if err == nil {
			err = s.cafes.Create(ctx, cafe)
		}
		if err != nil {
			if !isExpected(err) {
				return nil, s.fail(log, "import", err, slog.Int("line", row.Line))
			}
			result.Fail(row.Line, rowErrorMessage(err))
			continue
		}
		result.Succeed()
	}

	log.Info("cafes imported",
		slog.Int("total", result.Total),
		slog.Int("imported", result.Imported),
		slog.Int("failed", result.Failed))
	return result, nil
}

func rowErrorMessage(err error) string {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.Is(err, store.ErrDuplicate):
		return "이미 존재합니다."
	default:
		return "알 수 없는 오류"
	}
}
