package iocache

import (
	"time"

	"github.com/huangsam/gapcheck/internal/contract"
	"github.com/huangsam/gapcheck/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, inputPath string, policy schema.PolicyName, freq string, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, inputPath, policy, freq, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordPeriods implements the RunStore interface.
func (m *MockRunStore) RecordPeriods(runID int64, periods []schema.PeriodOutcome) error {
	args := m.Called(runID, periods)
	return args.Error(0)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, totalPeriods, missingPeriods int) error {
	args := m.Called(runID, endTime, totalPeriods, missingPeriods)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.RunRecord)
	return records, args.Error(1)
}

// GetAllPeriods implements the RunStore interface.
func (m *MockRunStore) GetAllPeriods() ([]schema.PeriodRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.PeriodRecord)
	return records, args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
