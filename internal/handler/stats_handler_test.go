package handler

import (
	"testing"
	"time"

	"github.com/joelosiris11/mainkam/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats_BacklogExcluded(t *testing.T) {
	tasks := []model.Task{
		{Status: model.ColumnBacklog, Priority: model.PriorityHigh, Hours: 5},
		{Status: model.ColumnTodo, Priority: model.PriorityMedium, Hours: 3},
		{Status: model.ColumnCompleted, Priority: model.PriorityLow, Hours: 2},
	}

	stats := computeStats(tasks)

	// Задача в бэклоге не входит ни в один показатель
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 5.0, stats.TotalHours)
	assert.Equal(t, map[string]int{
		model.PriorityMedium: 1,
		model.PriorityLow:    1,
	}, stats.ByPriority)
}

func TestComputeStats_EmptyBoard(t *testing.T) {
	stats := computeStats(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.Completed)
	assert.Equal(t, 0, stats.Pending)
	assert.Equal(t, 0.0, stats.TotalHours)
	assert.Empty(t, stats.ByPriority)
}

func TestBuildBurndown_IdealLine(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)
	project := &model.Project{
		BurndownStartDate: &start,
		BurndownEndDate:   &end,
	}
	tasks := []model.Task{
		{Status: model.ColumnTodo, Hours: 8},
	}

	chart := buildBurndown(project, tasks, start)

	assert.Equal(t, "2026-03-01", chart.StartDate)
	assert.Equal(t, "2026-03-05", chart.EndDate)
	assert.Equal(t, 8.0, chart.TotalHours)
	assert.Len(t, chart.Points, 5)

	// Идеальная линия равномерно спускается к нулю
	assert.Equal(t, 8.0, chart.Points[0].Ideal)
	assert.Equal(t, 4.0, chart.Points[2].Ideal)
	assert.Equal(t, 0.0, chart.Points[4].Ideal)
}

func TestBuildBurndown_ActualOmittedForFutureDays(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)
	project := &model.Project{
		BurndownStartDate: &start,
		BurndownEndDate:   &end,
	}

	completed := start.AddDate(0, 0, 1).Add(10 * time.Hour)
	tasks := []model.Task{
		{Status: model.ColumnCompleted, Hours: 3, CompletedDate: &completed},
		{Status: model.ColumnTodo, Hours: 5},
	}

	// Сегодня — третий день диапазона
	now := start.AddDate(0, 0, 2)
	chart := buildBurndown(project, tasks, now)

	// Первый день: ничего не завершено
	assert.NotNil(t, chart.Points[0].Actual)
	assert.Equal(t, 8.0, *chart.Points[0].Actual)

	// Второй день: завершена задача на 3 часа
	assert.NotNil(t, chart.Points[1].Actual)
	assert.Equal(t, 5.0, *chart.Points[1].Actual)

	// Сегодня есть, будущие дни без фактического значения
	assert.NotNil(t, chart.Points[2].Actual)
	assert.Nil(t, chart.Points[3].Actual)
	assert.Nil(t, chart.Points[4].Actual)
}

func TestBuildBurndown_BacklogHoursExcluded(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	project := &model.Project{BurndownStartDate: &start}

	tasks := []model.Task{
		{Status: model.ColumnBacklog, Hours: 10},
		{Status: model.ColumnTodo, Hours: 4},
	}

	chart := buildBurndown(project, tasks, start)

	assert.Equal(t, 4.0, chart.TotalHours)
	// Диапазон по умолчанию — две недели от начала
	assert.Len(t, chart.Points, 15)
}

func TestBuildBurndown_DefaultRangeFromCreatedAt(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	project := &model.Project{CreatedAt: created}

	chart := buildBurndown(project, nil, created)

	assert.Equal(t, "2026-03-01", chart.StartDate)
	assert.Equal(t, "2026-03-15", chart.EndDate)
}
