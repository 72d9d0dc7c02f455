package api

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/service"
	"coachdesk/training-app/internal/workflow"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthoringHandler serves the routine authoring workflow. Every route works
// in one of two scopes resolved from the path: a student routine
// (/authoring/students/:studentId/...) or the coach's template
// (/authoring/template/...).
type AuthoringHandler struct {
	authoringService service.AuthoringService
	commitService    service.CommitService
}

// NewAuthoringHandler creates a new AuthoringHandler.
func NewAuthoringHandler(authoringService service.AuthoringService, commitService service.CommitService) *AuthoringHandler {
	return &AuthoringHandler{
		authoringService: authoringService,
		commitService:    commitService,
	}
}

// --- Request/Response Structs ---

type ConfigurationRequest struct {
	Name            string     `json:"name"`
	Objective       string     `json:"objective"`
	Difficulty      string     `json:"difficulty"`
	GenderTarget    string     `json:"genderTarget"`
	DurationWeeks   int        `json:"durationWeeks"`
	SessionsPerWeek int        `json:"sessionsPerWeek"`
	StartDate       *time.Time `json:"startDate"`
	Notes           string     `json:"notes"`
}

type UpdateSessionRequest struct {
	Name         *string   `json:"name"`
	Notes        *string   `json:"notes"`
	MuscleGroups *[]string `json:"muscleGroups"`
}

type ReorderSessionsRequest struct {
	OrderedIDs []string `json:"orderedIds" binding:"required,min=1"`
}

type EntryChoiceRequest struct {
	Kind             domain.EntryKind `json:"kind" binding:"required,oneof=simple paired"`
	ExerciseID       string           `json:"exerciseId" binding:"required"`
	SecondExerciseID *string          `json:"secondExerciseId"`
}

type ApplySelectionRequest struct {
	Entries []EntryChoiceRequest `json:"entries"`
}

type MoveEntryRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

type UpdateSetRequest struct {
	Reps         int     `json:"reps"`
	Load         float64 `json:"load"`
	SecondReps   int     `json:"secondReps"`
	SecondLoad   float64 `json:"secondLoad"`
	HasDropset   bool    `json:"hasDropset"`
	DropsetLoad  float64 `json:"dropsetLoad"`
	RestAfterSet int     `json:"restAfterSet"`
}

// DraftResponse wraps the draft with the cascade notices the operation
// produced, so the UI can surface removals.
type DraftResponse struct {
	Draft   *domain.RoutineDraft     `json:"draft"`
	Notices []workflow.CascadeNotice `json:"notices"`
}

func draftResponse(d *domain.RoutineDraft, notices []workflow.CascadeNotice) DraftResponse {
	if notices == nil {
		notices = []workflow.CascadeNotice{}
	}
	return DraftResponse{Draft: d, Notices: notices}
}

// --- Handler Methods ---

// StartOrResume returns the draft for the scope, resuming any in-progress
// or durable draft, or starting fresh.
func (h *AuthoringHandler) StartOrResume(c *gin.Context) {
	actor, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.authoringService.StartOrResume(c.Request.Context(), actor, scope)
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(d, nil))
}

// SyncConfiguration stores the configuration fields as typed, without
// validation; invalid values surface on advance.
func (h *AuthoringHandler) SyncConfiguration(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req ConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	cfg := domain.RoutineConfiguration{
		Name:            req.Name,
		Objective:       req.Objective,
		Difficulty:      req.Difficulty,
		GenderTarget:    req.GenderTarget,
		DurationWeeks:   req.DurationWeeks,
		SessionsPerWeek: req.SessionsPerWeek,
		StartDate:       req.StartDate,
		Notes:           req.Notes,
	}
	d, err := h.authoringService.SyncConfiguration(c.Request.Context(), scope, cfg)
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(d, nil))
}

// AdvanceToSessions validates the configuration and enters the session stage.
func (h *AuthoringHandler) AdvanceToSessions(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authoringService.AdvanceToSessions(c.Request.Context(), scope)
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(result.Draft, result.Notices))
}

// UpdateSession edits one session's name, notes or muscle groups.
func (h *AuthoringHandler) UpdateSession(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	d, err := h.authoringService.UpdateSession(c.Request.Context(), scope, c.Param("sessionId"), service.SessionUpdate{
		Name:         req.Name,
		Notes:        req.Notes,
		MuscleGroups: req.MuscleGroups,
	})
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(d, nil))
}

// ReorderSessions rearranges the session list.
func (h *AuthoringHandler) ReorderSessions(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req ReorderSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	d, err := h.authoringService.ReorderSessions(c.Request.Context(), scope, req.OrderedIDs)
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(d, nil))
}

// AdvanceToExercises enters the exercise stage, running the muscle-group
// cascade.
func (h *AuthoringHandler) AdvanceToExercises(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authoringService.AdvanceToExercises(c.Request.Context(), scope)
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(result.Draft, result.Notices))
}

// SessionSelection returns the resolved picker state for a session.
func (h *AuthoringHandler) SessionSelection(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.authoringService.SessionSelection(c.Request.Context(), scope, c.Param("sessionId"))
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	if items == nil {
		items = []service.SelectionItem{}
	}
	c.JSON(http.StatusOK, items)
}

// ApplySelection replaces the session's entries with the picker selection.
func (h *AuthoringHandler) ApplySelection(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req ApplySelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	choices, err := mapChoices(req.Entries)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.authoringService.ApplySelection(c.Request.Context(), scope, c.Param("sessionId"), choices)
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(d, nil))
}

// AddEntry appends one entry (simple or paired) to the session.
func (h *AuthoringHandler) AddEntry(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req EntryChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	choices, err := mapChoices([]EntryChoiceRequest{req})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.authoringService.AddEntry(c.Request.Context(), scope, c.Param("sessionId"), choices[0])
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draftResponse(d, nil))
}

// RemoveEntry deletes one entry from the session.
func (h *AuthoringHandler) RemoveEntry(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.authoringService.RemoveEntry(c.Request.Context(), scope, c.Param("sessionId"), c.Param("entryId"))
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(d, nil))
}

// MoveEntry swaps the entry with its neighbor.
func (h *AuthoringHandler) MoveEntry(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req MoveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	d, err := h.authoringService.MoveEntry(c.Request.Context(), scope, c.Param("sessionId"), c.Param("entryId"), req.Direction == "up")
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(d, nil))
}

// AddSet appends a blank set to the entry.
func (h *AuthoringHandler) AddSet(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.authoringService.AddSet(c.Request.Context(), scope, c.Param("sessionId"), c.Param("entryId"))
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draftResponse(d, nil))
}

// RemoveSet deletes one set from the entry.
func (h *AuthoringHandler) RemoveSet(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	setNumber, err := setNumberParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.authoringService.RemoveSet(c.Request.Context(), scope, c.Param("sessionId"), c.Param("entryId"), setNumber)
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(d, nil))
}

// UpdateSet replaces the set's reps/load/rest fields.
func (h *AuthoringHandler) UpdateSet(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	setNumber, err := setNumberParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	d, err := h.authoringService.UpdateSet(c.Request.Context(), scope, c.Param("sessionId"), c.Param("entryId"), setNumber, domain.SetEntry{
		Reps:         req.Reps,
		Load:         req.Load,
		SecondReps:   req.SecondReps,
		SecondLoad:   req.SecondLoad,
		HasDropset:   req.HasDropset,
		DropsetLoad:  req.DropsetLoad,
		RestAfterSet: req.RestAfterSet,
	})
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(d, nil))
}

// ToggleDropset flips the dropset flag on the set.
func (h *AuthoringHandler) ToggleDropset(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	setNumber, err := setNumberParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.authoringService.ToggleDropset(c.Request.Context(), scope, c.Param("sessionId"), c.Param("entryId"), setNumber)
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(d, nil))
}

// SaveAsDraft commits the draft tree with draft status.
func (h *AuthoringHandler) SaveAsDraft(c *gin.Context) {
	actor, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	routine, err := h.commitService.SaveAsDraft(c.Request.Context(), actor, scope)
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

// Finalize commits the draft tree with live status.
func (h *AuthoringHandler) Finalize(c *gin.Context) {
	actor, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	routine, err := h.commitService.Finalize(c.Request.Context(), actor, scope)
	if err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

// Discard drops the authoring session without committing.
func (h *AuthoringHandler) Discard(c *gin.Context) {
	_, scope, err := getScopeFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authoringService.Discard(c.Request.Context(), scope); err != nil {
		h.handleAuthoringError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- helpers ---

func mapChoices(entries []EntryChoiceRequest) ([]service.SelectionChoice, error) {
	choices := make([]service.SelectionChoice, 0, len(entries))
	for _, e := range entries {
		exerciseID, err := primitive.ObjectIDFromHex(e.ExerciseID)
		if err != nil {
			return nil, errors.New("invalid exercise ID format")
		}
		choice := service.SelectionChoice{Kind: e.Kind, ExerciseID: exerciseID}
		if e.SecondExerciseID != nil {
			secondID, err := primitive.ObjectIDFromHex(*e.SecondExerciseID)
			if err != nil {
				return nil, errors.New("invalid second exercise ID format")
			}
			choice.SecondExerciseID = &secondID
		}
		choices = append(choices, choice)
	}
	return choices, nil
}

func setNumberParam(c *gin.Context) (int, error) {
	setNumber, err := strconv.Atoi(c.Param("setNumber"))
	if err != nil || setNumber < 1 {
		return 0, errors.New("invalid set number")
	}
	return setNumber, nil
}

func (h *AuthoringHandler) handleAuthoringError(c *gin.Context, err error) {
	var validationErrs workflow.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": validationErrs})
	case errors.Is(err, service.ErrNoActiveDraft):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, workflow.ErrUnknownSession),
		errors.Is(err, workflow.ErrUnknownEntry),
		errors.Is(err, workflow.ErrUnknownSet),
		errors.Is(err, service.ErrStudentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrPairedSameExercise),
		errors.Is(err, workflow.ErrLastSet):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionsIncomplete),
		errors.Is(err, service.ErrRoutineIncomplete),
		errors.Is(err, service.ErrStudentHasNoCoach):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStudentNotManaged),
		errors.Is(err, service.ErrActorNotAllowed):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected authoring error occurred")
	}
}
