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

// CatalogHandler serves the coach's exercise catalog.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- Request/Response Structs ---

type ExerciseRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	MuscleGroup      string `json:"muscleGroup" binding:"required"`
	ExecutionTechnic string `json:"executionTechnic"`
	Applicability    string `json:"applicability"`
	Difficulty       string `json:"difficulty"`
	DemoVideoKey     string `json:"demoVideoKey"`
}

type ExerciseResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	MuscleGroup      string `json:"muscleGroup"`
	ExecutionTechnic string `json:"executionTechnic,omitempty"`
	Applicability    string `json:"applicability,omitempty"`
	Difficulty       string `json:"difficulty,omitempty"`
	DemoVideoURL     string `json:"demoVideoUrl,omitempty"` // Presigned, short lived
}

// --- Handler Methods ---

// CreateExercise adds an exercise to the coach's catalog.
func (h *CatalogHandler) CreateExercise(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.catalogService.CreateExercise(
		c.Request.Context(), actor.ID,
		req.Name, req.Description, req.MuscleGroup,
		req.ExecutionTechnic, req.Applicability, req.Difficulty, req.DemoVideoKey,
	)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise")
		}
		return
	}

	c.JSON(http.StatusCreated, h.mapExerciseToResponse(c, exercise))
}

// GetCoachExercises lists the authenticated coach's catalog.
func (h *CatalogHandler) GetCoachExercises(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	exercises, err := h.catalogService.GetExercisesByCoach(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises")
		return
	}

	responses := make([]ExerciseResponse, 0, len(exercises))
	for i := range exercises {
		responses = append(responses, h.mapExerciseToResponse(c, &exercises[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// UpdateExercise edits a catalog exercise owned by the coach.
func (h *CatalogHandler) UpdateExercise(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format")
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise := &domain.Exercise{
		ID:               exerciseID,
		Name:             req.Name,
		Description:      req.Description,
		MuscleGroup:      req.MuscleGroup,
		ExecutionTechnic: req.ExecutionTechnic,
		Applicability:    req.Applicability,
		Difficulty:       req.Difficulty,
		DemoVideoKey:     req.DemoVideoKey,
	}
	updated, err := h.catalogService.UpdateExercise(c.Request.Context(), actor.ID, exercise)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.mapExerciseToResponse(c, updated))
}

// DeleteExercise removes a catalog exercise owned by the coach.
func (h *CatalogHandler) DeleteExercise(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format")
		return
	}

	if err := h.catalogService.DeleteExercise(c.Request.Context(), actor.ID, exerciseID); err != nil {
		h.handleCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- helpers ---

func (h *CatalogHandler) handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExerciseAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected catalog error occurred")
	}
}

func (h *CatalogHandler) mapExerciseToResponse(c *gin.Context, exercise *domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:               exercise.ID.Hex(),
		Name:             exercise.Name,
		Description:      exercise.Description,
		MuscleGroup:      exercise.MuscleGroup,
		ExecutionTechnic: exercise.ExecutionTechnic,
		Applicability:    exercise.Applicability,
		Difficulty:       exercise.Difficulty,
		DemoVideoURL:     h.catalogService.DemoVideoURL(c.Request.Context(), exercise),
	}
}
