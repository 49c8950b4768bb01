package handler

import (
	"net/http"
	"time"

	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/permission"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	accessChecker
	taskRepo   repository.TaskRepositoryInterface
	columnRepo repository.ColumnRepositoryInterface
}

func NewStatsHandler(
	taskRepo repository.TaskRepositoryInterface,
	columnRepo repository.ColumnRepositoryInterface,
	projectRepo repository.ProjectRepositoryInterface,
	memberRepo repository.MemberRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
) *StatsHandler {
	return &StatsHandler{
		accessChecker: accessChecker{
			userRepo:    userRepo,
			projectRepo: projectRepo,
			memberRepo:  memberRepo,
		},
		taskRepo:   taskRepo,
		columnRepo: columnRepo,
	}
}

// StatsResponse представляет сводку по задачам проекта
type StatsResponse struct {
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	Pending    int            `json:"pending"`
	ByPriority map[string]int `json:"by_priority"`
	TotalHours float64        `json:"total_hours"`
}

// BurndownPoint — одна точка графика сгорания. Actual равен nil
// для будущих дат
type BurndownPoint struct {
	Date   string   `json:"date"`
	Ideal  float64  `json:"ideal"`
	Actual *float64 `json:"actual"`
}

// BurndownResponse представляет данные графика сгорания
type BurndownResponse struct {
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	TotalHours float64         `json:"total_hours"`
	Points     []BurndownPoint `json:"points"`
}

// Stats возвращает сводку по задачам проекта. Бэклог в подсчет не входит
// @Summary      Project task statistics
// @Tags         Stats
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Project ID"
// @Success      200  {object}  StatsResponse
// @Router       /projects/{id}/stats [get]
func (h *StatsHandler) Stats(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	tasks, err := h.taskRepo.GetByProjectID(c.Request.Context(), scope.project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	c.JSON(http.StatusOK, computeStats(tasks))
}

// Burndown возвращает точки графика сгорания по диапазону дат проекта
// @Summary      Project burndown chart data
// @Tags         Stats
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Project ID"
// @Success      200  {object}  BurndownResponse
// @Router       /projects/{id}/burndown [get]
func (h *StatsHandler) Burndown(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	tasks, err := h.taskRepo.GetByProjectID(c.Request.Context(), scope.project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	c.JSON(http.StatusOK, buildBurndown(scope.project, tasks, time.Now()))
}

// computeStats считает сводку по доске. Задачи в бэклоге — не взятая
// в работу очередь, они исключаются из всех показателей
func computeStats(tasks []model.Task) StatsResponse {
	stats := StatsResponse{ByPriority: map[string]int{}}
	for i := range tasks {
		task := &tasks[i]
		if task.Status == model.ColumnBacklog {
			continue
		}
		stats.Total++
		stats.TotalHours += task.Hours
		stats.ByPriority[task.Priority]++
		if task.Status == model.ColumnCompleted {
			stats.Completed++
		} else {
			stats.Pending++
		}
	}
	return stats
}

// buildBurndown строит график сгорания: идеальная линия равномерно
// спускается от суммарных часов к нулю, фактическая показывает
// оставшиеся часы на каждый прошедший день
func buildBurndown(project *model.Project, tasks []model.Task, now time.Time) BurndownResponse {
	start := project.CreatedAt
	if project.BurndownStartDate != nil {
		start = *project.BurndownStartDate
	}
	end := start.AddDate(0, 0, 14)
	if project.BurndownEndDate != nil {
		end = *project.BurndownEndDate
	}
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		end = start
	}

	var totalHours float64
	for i := range tasks {
		if tasks[i].Status == model.ColumnBacklog {
			continue
		}
		totalHours += tasks[i].Hours
	}

	days := int(end.Sub(start).Hours()/24) + 1
	today := truncateDay(now)

	points := make([]BurndownPoint, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)

		ideal := totalHours
		if days > 1 {
			ideal = totalHours * (1 - float64(i)/float64(days-1))
		}

		point := BurndownPoint{
			Date:  day.Format("2006-01-02"),
			Ideal: ideal,
		}

		if !day.After(today) {
			remaining := totalHours - completedHoursBy(tasks, day)
			point.Actual = &remaining
		}

		points = append(points, point)
	}

	return BurndownResponse{
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		TotalHours: totalHours,
		Points:     points,
	}
}

// completedHoursBy суммирует часы задач, завершенных не позже конца дня
func completedHoursBy(tasks []model.Task, day time.Time) float64 {
	endOfDay := day.AddDate(0, 0, 1)
	var hours float64
	for i := range tasks {
		task := &tasks[i]
		if task.Status == model.ColumnBacklog {
			continue
		}
		if task.CompletedDate == nil || !task.CompletedDate.Before(endOfDay) {
			continue
		}
		hours += task.Hours
	}
	return hours
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
