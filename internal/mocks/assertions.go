package mocks

import (
	"github.com/phrazzld/reviewdesk/internal/service"
	"github.com/phrazzld/reviewdesk/internal/service/auth"
)

var (
	_ auth.JWTService           = (*MockJWTService)(nil)
	_ service.TaskService       = (*MockTaskService)(nil)
	_ service.SettlementService = (*MockSettlementService)(nil)
	_ service.ReviewerService   = (*MockReviewerService)(nil)
	_ service.CafeService       = (*MockCafeService)(nil)
	_ service.AuthService       = (*MockAuthService)(nil)
)
