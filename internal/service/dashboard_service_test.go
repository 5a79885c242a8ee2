package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/voxhire/voxhire-backend/internal/model"
)

func assignmentWithStatus(status model.AssignmentStatus) model.AssignmentDetail {
	return model.AssignmentDetail{Assignment: model.Assignment{Status: status}}
}

func resultWithPercentage(p float64) model.ResultDetail {
	return model.ResultDetail{Result: model.Result{Percentage: p}}
}

func TestComputeStats(t *testing.T) {
	assignments := []model.AssignmentDetail{
		assignmentWithStatus(model.AssignmentStatusCompleted),
		assignmentWithStatus(model.AssignmentStatusPending),
		assignmentWithStatus(model.AssignmentStatusInProgress),
		assignmentWithStatus(model.AssignmentStatusPending),
	}
	results := []model.ResultDetail{
		resultWithPercentage(50),
		resultWithPercentage(100),
	}

	stats := computeStats(assignments, results)
	assert.Equal(t, 4, stats.TotalTests)
	assert.Equal(t, 1, stats.CompletedTests)
	// An in-progress assignment counts as neither completed nor pending.
	assert.Equal(t, 2, stats.PendingTests)
	assert.Equal(t, 75.0, stats.AverageScore)
}

func TestComputeStatsRoundsAverage(t *testing.T) {
	results := []model.ResultDetail{
		resultWithPercentage(200.0 / 3.0), // 66.666...
	}

	stats := computeStats(nil, results)
	assert.Equal(t, 66.67, stats.AverageScore)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(nil, nil)
	assert.Equal(t, 0, stats.TotalTests)
	assert.Equal(t, 0, stats.CompletedTests)
	assert.Equal(t, 0, stats.PendingTests)
	assert.Equal(t, 0.0, stats.AverageScore)
}
