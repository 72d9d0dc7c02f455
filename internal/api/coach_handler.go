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

// CoachHandler serves roster and routine management endpoints.
type CoachHandler struct {
	coachService service.CoachService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// --- Request/Response Structs ---

type AddStudentRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type UpdateStatusRequest struct {
	Status domain.RoutineStatus `json:"status" binding:"required,oneof=active blocked cancelled completed"`
}

// --- Handler Methods ---

// AddStudent links an existing student account to the coach's roster.
func (h *CoachHandler) AddStudent(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	student, err := h.coachService.AddStudentByEmail(c.Request.Context(), actor.ID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTargetNotStudent), errors.Is(err, service.ErrUserNotCoach):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStudentAlreadyManaged):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add student")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(student))
}

// GetStudents lists the coach's roster.
func (h *CoachHandler) GetStudents(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	students, err := h.coachService.GetManagedStudents(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve students")
		return
	}

	responses := make([]UserResponse, 0, len(students))
	for i := range students {
		responses = append(responses, MapUserToResponse(&students[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetStudentRoutines lists one student's routines, newest first.
func (h *CoachHandler) GetStudentRoutines(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	studentID, err := primitive.ObjectIDFromHex(c.Param("studentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid student ID format")
		return
	}

	routines, err := h.coachService.GetRoutinesForStudent(c.Request.Context(), actor, studentID)
	if err != nil {
		h.handleCoachError(c, err)
		return
	}
	if routines == nil {
		routines = []domain.Routine{}
	}
	c.JSON(http.StatusOK, routines)
}

// GetTemplates lists the coach's templates.
func (h *CoachHandler) GetTemplates(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	templates, err := h.coachService.GetTemplates(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}
	if templates == nil {
		templates = []domain.Routine{}
	}
	c.JSON(http.StatusOK, templates)
}

// GetRoutineDetail loads the full tree for one routine or template.
func (h *CoachHandler) GetRoutineDetail(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	routineID, err := primitive.ObjectIDFromHex(c.Param("routineId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid routine ID format")
		return
	}

	detail, err := h.coachService.GetRoutineDetail(c.Request.Context(), actor, routineID)
	if err != nil {
		h.handleCoachError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateRoutineStatus applies a lifecycle transition to a routine.
func (h *CoachHandler) UpdateRoutineStatus(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	routineID, err := primitive.ObjectIDFromHex(c.Param("routineId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid routine ID format")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	routine, err := h.coachService.UpdateRoutineStatus(c.Request.Context(), actor, routineID, req.Status)
	if err != nil {
		h.handleCoachError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

// --- helpers ---

func (h *CoachHandler) handleCoachError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoutineNotFound), errors.Is(err, service.ErrStudentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRoutineAccessDenied),
		errors.Is(err, service.ErrStudentNotManaged),
		errors.Is(err, service.ErrActorNotAllowed):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidStatusChange), errors.Is(err, service.ErrStudentHasNoCoach):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
