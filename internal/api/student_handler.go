package api

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/service"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentHandler serves the student's view of the generated schedule.
type StudentHandler struct {
	studentService service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// --- Request/Response Structs ---

type UpdateExecutionRequest struct {
	Status domain.ExecutionStatus `json:"status" binding:"required,oneof=completed skipped"`
}

// --- Handler Methods ---

// GetSchedule returns the student's execution sessions in schedule order.
func (h *StudentHandler) GetSchedule(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	schedule, err := h.studentService.GetSchedule(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve schedule")
		return
	}
	if schedule == nil {
		schedule = []domain.ExecutionSession{}
	}
	c.JSON(http.StatusOK, schedule)
}

// UpdateExecutionStatus marks one scheduled session completed or skipped.
func (h *StudentHandler) UpdateExecutionStatus(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	executionID, err := primitive.ObjectIDFromHex(c.Param("executionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid execution session ID format")
		return
	}

	var req UpdateExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	execution, err := h.studentService.UpdateExecutionStatus(c.Request.Context(), actor.ID, executionID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExecutionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExecutionAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidExecutionStatus):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update execution session")
		}
		return
	}
	c.JSON(http.StatusOK, execution)
}
