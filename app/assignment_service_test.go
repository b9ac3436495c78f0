package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"cladeshift/domain/clade"
	"cladeshift/domain/combine"
	"cladeshift/domain/core"
	"cladeshift/internal/testkit"
)

// Mock implementations for testing
type MockSelectionRepository struct {
	mock.Mock
	saved []clade.Selection
}

func (m *MockSelectionRepository) SaveSelection(ctx context.Context, runID core.RunID, sel clade.Selection) error {
	args := m.Called(ctx, runID, sel)
	m.saved = append(m.saved, sel)
	return args.Error(0)
}

func (m *MockSelectionRepository) GetSelections(ctx context.Context, runID core.RunID) ([]clade.Selection, error) {
	args := m.Called(ctx, runID)
	return m.saved, args.Error(1)
}

func (m *MockSelectionRepository) SaveCombination(ctx context.Context, runID core.RunID, table combine.CombinationTable) error {
	args := m.Called(ctx, runID, table)
	return args.Error(0)
}

func (m *MockSelectionRepository) ListCombinations(ctx context.Context, runID core.RunID) ([]combine.CombinationTable, error) {
	args := m.Called(ctx, runID)
	return args.Get(0).([]combine.CombinationTable), args.Error(1)
}

func defaultThresholds(t *testing.T) clade.Thresholds {
	t.Helper()
	th, err := clade.NewThresholds(2, 1, 20, clade.PolicyBest)
	if err != nil {
		t.Fatalf("thresholds: %v", err)
	}
	return th
}

func TestRunAssignments_PersistsSelections(t *testing.T) {
	repo := new(MockSelectionRepository)
	repo.On("SaveSelection", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service, err := NewAssignmentService(defaultThresholds(t), repo, nil)
	assert.NoError(t, err)

	root, labels := testkit.BalancedTree(3, 2)
	runID := core.RunID(core.NewID())
	outcomes, err := service.RunAssignments(context.Background(), runID, []DatasetInput{
		{Dataset: "cells", Root: root, Labels: labels},
	})

	assert.NoError(t, err)
	assert.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, core.DatasetID("cells"), outcomes[0].Dataset)
	assert.NotEmpty(t, outcomes[0].Selection.Clades)
	assert.Len(t, outcomes[0].AllSamples, 5)
	repo.AssertNumberOfCalls(t, "SaveSelection", 1)
}

func TestRunAssignments_FailureIsolatedToDataset(t *testing.T) {
	repo := new(MockSelectionRepository)
	repo.On("SaveSelection", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service, err := NewAssignmentService(defaultThresholds(t), repo, nil)
	assert.NoError(t, err)

	goodRoot, goodLabels := testkit.BalancedTree(3, 2)
	badRoot, _ := testkit.BalancedTree(2, 2) // labels withheld below

	outcomes, err := service.RunAssignments(context.Background(), core.RunID(core.NewID()), []DatasetInput{
		{Dataset: "bad", Root: badRoot, Labels: map[core.SampleID]bool{}},
		{Dataset: "good", Root: goodRoot, Labels: goodLabels},
	})

	assert.NoError(t, err)
	assert.Len(t, outcomes, 2)

	assert.Error(t, outcomes[0].Err)
	assert.True(t, core.IsUnlabeledSampleError(outcomes[0].Err))

	assert.NoError(t, outcomes[1].Err)
	assert.NotEmpty(t, outcomes[1].Selection.Clades)

	// Only the surviving dataset is persisted.
	repo.AssertNumberOfCalls(t, "SaveSelection", 1)
	assert.Equal(t, core.DatasetID("good"), repo.saved[0].Dataset)
}

func TestRunAssignments_OutcomesKeepInputOrder(t *testing.T) {
	service, err := NewAssignmentService(defaultThresholds(t), nil, nil)
	assert.NoError(t, err)

	var inputs []DatasetInput
	names := []string{"a", "b", "c", "d"}
	for _, name := range names {
		root, labels := testkit.BalancedTree(3, 2)
		inputs = append(inputs, DatasetInput{Dataset: core.DatasetID(name), Root: root, Labels: labels})
	}

	outcomes, err := service.RunAssignments(context.Background(), core.RunID(core.NewID()), inputs)
	assert.NoError(t, err)
	for i, name := range names {
		assert.Equal(t, core.DatasetID(name), outcomes[i].Dataset)
	}
}

func TestNewAssignmentService_RejectsBadThresholds(t *testing.T) {
	_, err := clade.NewThresholds(0, 1, 20, clade.PolicyBest)
	assert.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestRunAssignments_EmptySelectionIsNotAnError(t *testing.T) {
	th, err := clade.NewThresholds(10, 0, 20, clade.PolicyBest)
	assert.NoError(t, err)

	service, err := NewAssignmentService(th, nil, nil)
	assert.NoError(t, err)

	root, labels := testkit.BalancedTree(3, 2)
	outcomes, err := service.RunAssignments(context.Background(), core.RunID(core.NewID()), []DatasetInput{
		{Dataset: "cells", Root: root, Labels: labels},
	})

	assert.NoError(t, err)
	assert.NoError(t, outcomes[0].Err)
	assert.True(t, outcomes[0].Selection.IsEmpty())
}
