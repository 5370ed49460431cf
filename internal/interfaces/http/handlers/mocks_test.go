package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/BioSecure-Portal/internal/application/admin"
	appalert "github.com/turtacn/BioSecure-Portal/internal/application/alert"
	appassessment "github.com/turtacn/BioSecure-Portal/internal/application/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	appcompliance "github.com/turtacn/BioSecure-Portal/internal/application/compliance"
	"github.com/turtacn/BioSecure-Portal/internal/application/dashboard"
	appfarm "github.com/turtacn/BioSecure-Portal/internal/application/farm"
	appprofile "github.com/turtacn/BioSecure-Portal/internal/application/profile"
	apptraining "github.com/turtacn/BioSecure-Portal/internal/application/training"
	"github.com/turtacn/BioSecure-Portal/internal/domain/activity"
	"github.com/turtacn/BioSecure-Portal/internal/domain/alert"
	"github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/domain/compliance"
	"github.com/turtacn/BioSecure-Portal/internal/domain/farm"
	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/domain/training"
)

// --- profile ---

type mockProfileService struct{ mock.Mock }

var _ appprofile.Service = (*mockProfileService)(nil)

func (m *mockProfileService) EnsureProfile(ctx context.Context, in *appprofile.EnsureInput) (*profile.Profile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *mockProfileService) Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *mockProfileService) Update(ctx context.Context, actor common.Actor, u profile.Update) (*profile.Profile, error) {
	args := m.Called(ctx, actor, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *mockProfileService) Invalidate(ctx context.Context, userID string) { m.Called(ctx, userID) }

// --- farm ---

type mockFarmService struct{ mock.Mock }

var _ appfarm.Service = (*mockFarmService)(nil)

func (m *mockFarmService) Create(ctx context.Context, actor common.Actor, in *farm.Input) (*farm.Farm, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*farm.Farm), args.Error(1)
}

func (m *mockFarmService) Get(ctx context.Context, actor common.Actor, id uuid.UUID) (*farm.Farm, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*farm.Farm), args.Error(1)
}

func (m *mockFarmService) List(ctx context.Context, actor common.Actor) ([]*farm.Farm, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*farm.Farm), args.Error(1)
}

func (m *mockFarmService) Update(ctx context.Context, actor common.Actor, id uuid.UUID, in *farm.Input) (*farm.Farm, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*farm.Farm), args.Error(1)
}

func (m *mockFarmService) Delete(ctx context.Context, actor common.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

// --- assessment ---

type mockAssessmentService struct{ mock.Mock }

var _ appassessment.Service = (*mockAssessmentService)(nil)

func (m *mockAssessmentService) Catalog() *assessment.Catalog {
	return m.Called().Get(0).(*assessment.Catalog)
}

func (m *mockAssessmentService) Submit(ctx context.Context, actor common.Actor, in *appassessment.SubmitInput) (*assessment.Assessment, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assessment.Assessment), args.Error(1)
}

func (m *mockAssessmentService) Get(ctx context.Context, actor common.Actor, id uuid.UUID) (*assessment.Assessment, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assessment.Assessment), args.Error(1)
}

func (m *mockAssessmentService) List(ctx context.Context, actor common.Actor, in *appassessment.ListInput) (*appassessment.ListResult, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appassessment.ListResult), args.Error(1)
}

func (m *mockAssessmentService) ExportReport(ctx context.Context, actor common.Actor, id uuid.UUID) (*appassessment.ReportLink, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appassessment.ReportLink), args.Error(1)
}

// --- training ---

type mockTrainingService struct{ mock.Mock }

var _ apptraining.Service = (*mockTrainingService)(nil)

func (m *mockTrainingService) ListModules(ctx context.Context) ([]*training.Module, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*training.Module), args.Error(1)
}

func (m *mockTrainingService) GetModule(ctx context.Context, id uuid.UUID) (*apptraining.ModuleDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptraining.ModuleDetail), args.Error(1)
}

func (m *mockTrainingService) progress(args mock.Arguments) (*training.Progress, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*training.Progress), args.Error(1)
}

func (m *mockTrainingService) Start(ctx context.Context, actor common.Actor, id uuid.UUID) (*training.Progress, error) {
	return m.progress(m.Called(ctx, actor, id))
}

func (m *mockTrainingService) Complete(ctx context.Context, actor common.Actor, id uuid.UUID) (*training.Progress, error) {
	return m.progress(m.Called(ctx, actor, id))
}

func (m *mockTrainingService) UpdateProgress(ctx context.Context, actor common.Actor, id uuid.UUID, pct int) (*training.Progress, error) {
	return m.progress(m.Called(ctx, actor, id, pct))
}

func (m *mockTrainingService) Progress(ctx context.Context, actor common.Actor) (*apptraining.ProgressSummary, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptraining.ProgressSummary), args.Error(1)
}

func (m *mockTrainingService) ListAllModules(ctx context.Context) ([]*training.Module, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*training.Module), args.Error(1)
}

func (m *mockTrainingService) CreateModule(ctx context.Context, in *training.ModuleInput) (*training.Module, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*training.Module), args.Error(1)
}

func (m *mockTrainingService) UpdateModule(ctx context.Context, id uuid.UUID, in *training.ModuleInput) (*training.Module, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*training.Module), args.Error(1)
}

func (m *mockTrainingService) SetModuleActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

// --- alert ---

type mockAlertService struct{ mock.Mock }

var _ appalert.Service = (*mockAlertService)(nil)

func (m *mockAlertService) one(args mock.Arguments) (*alert.Alert, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*alert.Alert), args.Error(1)
}

func (m *mockAlertService) list(args mock.Arguments) (*appalert.ListResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appalert.ListResult), args.Error(1)
}

func (m *mockAlertService) Create(ctx context.Context, actor common.Actor, in *alert.Input) (*alert.Alert, error) {
	return m.one(m.Called(ctx, actor, in))
}

func (m *mockAlertService) Update(ctx context.Context, actor common.Actor, id uuid.UUID, in *alert.Input) (*alert.Alert, error) {
	return m.one(m.Called(ctx, actor, id, in))
}

func (m *mockAlertService) Toggle(ctx context.Context, actor common.Actor, id uuid.UUID) (*alert.Alert, error) {
	return m.one(m.Called(ctx, actor, id))
}

func (m *mockAlertService) Delete(ctx context.Context, actor common.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockAlertService) List(ctx context.Context, in *appalert.ListInput) (*appalert.ListResult, error) {
	return m.list(m.Called(ctx, in))
}

func (m *mockAlertService) ListActive(ctx context.Context, in *appalert.ListInput) (*appalert.ListResult, error) {
	return m.list(m.Called(ctx, in))
}

func (m *mockAlertService) DeactivateOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	args := m.Called(ctx, maxAge)
	return args.Get(0).(int64), args.Error(1)
}

// --- compliance ---

type mockComplianceService struct{ mock.Mock }

var _ appcompliance.Service = (*mockComplianceService)(nil)

func (m *mockComplianceService) one(args mock.Arguments) (*compliance.Record, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.Record), args.Error(1)
}

func (m *mockComplianceService) Create(ctx context.Context, actor common.Actor, in *compliance.Input) (*compliance.Record, error) {
	return m.one(m.Called(ctx, actor, in))
}

func (m *mockComplianceService) Get(ctx context.Context, id uuid.UUID) (*compliance.Record, error) {
	return m.one(m.Called(ctx, id))
}

func (m *mockComplianceService) Update(ctx context.Context, actor common.Actor, id uuid.UUID, in *compliance.Input) (*compliance.Record, error) {
	return m.one(m.Called(ctx, actor, id, in))
}

func (m *mockComplianceService) Delete(ctx context.Context, actor common.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockComplianceService) List(ctx context.Context, in *appcompliance.ListInput) (*appcompliance.ListResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcompliance.ListResult), args.Error(1)
}

func (m *mockComplianceService) AttachCertificate(ctx context.Context, actor common.Actor, in *appcompliance.CertificateInput) (*compliance.Record, error) {
	return m.one(m.Called(ctx, actor, in))
}

func (m *mockComplianceService) CertificateURL(ctx context.Context, id uuid.UUID) (*appcompliance.CertificateLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcompliance.CertificateLink), args.Error(1)
}

func (m *mockComplianceService) ExpireDue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- dashboard ---

type mockDashboardService struct{ mock.Mock }

var _ dashboard.Service = (*mockDashboardService)(nil)

func (m *mockDashboardService) Get(ctx context.Context, actor common.Actor) (*dashboard.Dashboard, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.Dashboard), args.Error(1)
}

// --- admin ---

type mockAdminService struct{ mock.Mock }

var _ admin.Service = (*mockAdminService)(nil)

func (m *mockAdminService) Stats(ctx context.Context) (*admin.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admin.Stats), args.Error(1)
}

func (m *mockAdminService) ListUsers(ctx context.Context, in *admin.UserListInput) (*admin.UserListResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admin.UserListResult), args.Error(1)
}

func (m *mockAdminService) ChangeRole(ctx context.Context, actor common.Actor, id uuid.UUID, role string) (*profile.Profile, error) {
	args := m.Called(ctx, actor, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *mockAdminService) RecentActivity(ctx context.Context, limit int) ([]*activity.Entry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.Entry), args.Error(1)
}
