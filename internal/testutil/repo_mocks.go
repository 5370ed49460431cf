package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/BioSecure-Portal/internal/domain/activity"
	"github.com/turtacn/BioSecure-Portal/internal/domain/alert"
	"github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/domain/compliance"
	"github.com/turtacn/BioSecure-Portal/internal/domain/farm"
	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/domain/training"
)

// MockProfileRepository is a testify mock of profile.Repository.
type MockProfileRepository struct{ mock.Mock }

var _ profile.Repository = (*MockProfileRepository)(nil)

func (m *MockProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role profile.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockProfileRepository) List(ctx context.Context, filter profile.ListFilter) ([]*profile.Profile, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*profile.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockProfileRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockFarmRepository is a testify mock of farm.Repository.
type MockFarmRepository struct{ mock.Mock }

var _ farm.Repository = (*MockFarmRepository)(nil)

func (m *MockFarmRepository) Create(ctx context.Context, f *farm.Farm) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFarmRepository) GetByID(ctx context.Context, id uuid.UUID) (*farm.Farm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*farm.Farm), args.Error(1)
}

func (m *MockFarmRepository) Update(ctx context.Context, f *farm.Farm) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFarmRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *MockFarmRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*farm.Farm, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*farm.Farm), args.Error(1)
}

func (m *MockFarmRepository) ListByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]*farm.Farm, error) {
	args := m.Called(ctx, ownerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*farm.Farm), args.Error(1)
}

func (m *MockFarmRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAssessmentRepository is a testify mock of assessment.Repository.
type MockAssessmentRepository struct{ mock.Mock }

var _ assessment.Repository = (*MockAssessmentRepository)(nil)

func (m *MockAssessmentRepository) Create(ctx context.Context, a *assessment.Assessment, s *assessment.Score) error {
	return m.Called(ctx, a, s).Error(0)
}

func (m *MockAssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*assessment.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assessment.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) List(ctx context.Context, filter assessment.ListFilter) ([]*assessment.Assessment, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*assessment.Assessment), args.Get(1).(int64), args.Error(2)
}

func (m *MockAssessmentRepository) LatestScores(ctx context.Context, farmIDs []uuid.UUID, limit int) ([]*assessment.Score, error) {
	args := m.Called(ctx, farmIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*assessment.Score), args.Error(1)
}

// MockTrainingRepository is a testify mock of training.Repository.
type MockTrainingRepository struct{ mock.Mock }

var _ training.Repository = (*MockTrainingRepository)(nil)

func (m *MockTrainingRepository) ListModules(ctx context.Context, activeOnly bool) ([]*training.Module, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*training.Module), args.Error(1)
}

func (m *MockTrainingRepository) GetModule(ctx context.Context, id uuid.UUID) (*training.Module, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*training.Module), args.Error(1)
}

func (m *MockTrainingRepository) CreateModule(ctx context.Context, mod *training.Module) error {
	return m.Called(ctx, mod).Error(0)
}

func (m *MockTrainingRepository) UpdateModule(ctx context.Context, mod *training.Module) error {
	return m.Called(ctx, mod).Error(0)
}

func (m *MockTrainingRepository) SetModuleActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockTrainingRepository) CountActiveModules(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTrainingRepository) GetProgress(ctx context.Context, userID, moduleID uuid.UUID) (*training.Progress, error) {
	args := m.Called(ctx, userID, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*training.Progress), args.Error(1)
}

func (m *MockTrainingRepository) UpsertProgress(ctx context.Context, p *training.Progress) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockTrainingRepository) ListProgress(ctx context.Context, userID uuid.UUID) ([]*training.ProgressView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*training.ProgressView), args.Error(1)
}

func (m *MockTrainingRepository) CountCompleted(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAlertRepository is a testify mock of alert.Repository.
type MockAlertRepository struct{ mock.Mock }

var _ alert.Repository = (*MockAlertRepository)(nil)

func (m *MockAlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*alert.Alert), args.Error(1)
}

func (m *MockAlertRepository) Update(ctx context.Context, a *alert.Alert) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAlertRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockAlertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAlertRepository) List(ctx context.Context, filter alert.ListFilter) ([]*alert.Alert, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*alert.Alert), args.Get(1).(int64), args.Error(2)
}

func (m *MockAlertRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertRepository) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockComplianceRepository is a testify mock of compliance.Repository.
type MockComplianceRepository struct{ mock.Mock }

var _ compliance.Repository = (*MockComplianceRepository)(nil)

func (m *MockComplianceRepository) Create(ctx context.Context, r *compliance.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockComplianceRepository) GetByID(ctx context.Context, id uuid.UUID) (*compliance.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.Record), args.Error(1)
}

func (m *MockComplianceRepository) Update(ctx context.Context, r *compliance.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockComplianceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockComplianceRepository) List(ctx context.Context, filter compliance.ListFilter) ([]*compliance.Record, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*compliance.Record), args.Get(1).(int64), args.Error(2)
}

func (m *MockComplianceRepository) SetDocument(ctx context.Context, id uuid.UUID, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

func (m *MockComplianceRepository) ExpireDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockActivityRepository is a testify mock of activity.Repository.
type MockActivityRepository struct{ mock.Mock }

var _ activity.Repository = (*MockActivityRepository)(nil)

func (m *MockActivityRepository) Record(ctx context.Context, e *activity.Entry) (bool, error) {
	args := m.Called(ctx, e)
	return args.Bool(0), args.Error(1)
}

func (m *MockActivityRepository) Recent(ctx context.Context, limit int) ([]*activity.Entry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.Entry), args.Error(1)
}
