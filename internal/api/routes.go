package api

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	catalogService service.CatalogService,
	authoringService service.AuthoringService,
	commitService service.CommitService,
	coachService service.CoachService,
	studentService service.StudentService,
) {
	authHandler := NewAuthHandler(authService)
	catalogHandler := NewCatalogHandler(catalogService)
	authoringHandler := NewAuthoringHandler(authoringService, commitService)
	coachHandler := NewCoachHandler(coachService)
	studentHandler := NewStudentHandler(studentService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Exercise Catalog (coaches only) ---
		exerciseGroup := protected.Group("/exercises")
		exerciseGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			exerciseGroup.POST("", catalogHandler.CreateExercise)
			exerciseGroup.GET("", catalogHandler.GetCoachExercises)
			exerciseGroup.PUT("/:exerciseId", catalogHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", catalogHandler.DeleteExercise)
		}

		// --- Coach Roster & Routine Management ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.POST("/students", coachHandler.AddStudent)
			coachGroup.GET("/students", coachHandler.GetStudents)
			coachGroup.GET("/templates", coachHandler.GetTemplates)
		}

		// Routine reads and status transitions. Authorization is per-entity:
		// coaches see their own, students their assigned routines, admins all.
		routineGroup := protected.Group("/routines")
		{
			routineGroup.GET("/:routineId", coachHandler.GetRoutineDetail)
			routineGroup.PATCH("/:routineId/status", RoleMiddleware(domain.RoleCoach, domain.RoleAdmin), coachHandler.UpdateRoutineStatus)
		}
		protected.GET("/students/:studentId/routines",
			RoleMiddleware(domain.RoleCoach, domain.RoleAdmin), coachHandler.GetStudentRoutines)

		// --- Authoring Workflow ---
		// Two scopes share the same handlers: a student routine (admins may
		// author on behalf of the student's coach) and the coach's template.
		authoring := protected.Group("/authoring")
		authoring.Use(RoleMiddleware(domain.RoleCoach, domain.RoleAdmin))
		{
			registerAuthoringRoutes(authoring.Group("/students/:studentId"), authoringHandler)
			registerAuthoringRoutes(authoring.Group("/template"), authoringHandler)
		}

		// --- Student Schedule ---
		studentGroup := protected.Group("/student")
		studentGroup.Use(RoleMiddleware(domain.RoleStudent))
		{
			studentGroup.GET("/schedule", studentHandler.GetSchedule)
			studentGroup.PATCH("/schedule/:executionId", studentHandler.UpdateExecutionStatus)
		}
	}
}

// registerAuthoringRoutes wires the stage and editing operations under one
// authoring scope group.
func registerAuthoringRoutes(group *gin.RouterGroup, h *AuthoringHandler) {
	group.GET("", h.StartOrResume)
	group.DELETE("", h.Discard)
	group.PUT("/configuration", h.SyncConfiguration)
	group.POST("/advance/sessions", h.AdvanceToSessions)
	group.POST("/advance/exercises", h.AdvanceToExercises)
	group.PUT("/sessions/order", h.ReorderSessions)
	group.PATCH("/sessions/:sessionId", h.UpdateSession)
	group.GET("/sessions/:sessionId/selection", h.SessionSelection)
	group.PUT("/sessions/:sessionId/selection", h.ApplySelection)
	group.POST("/sessions/:sessionId/entries", h.AddEntry)
	group.DELETE("/sessions/:sessionId/entries/:entryId", h.RemoveEntry)
	group.POST("/sessions/:sessionId/entries/:entryId/move", h.MoveEntry)
	group.POST("/sessions/:sessionId/entries/:entryId/sets", h.AddSet)
	group.PUT("/sessions/:sessionId/entries/:entryId/sets/:setNumber", h.UpdateSet)
	group.DELETE("/sessions/:sessionId/entries/:entryId/sets/:setNumber", h.RemoveSet)
	group.POST("/sessions/:sessionId/entries/:entryId/sets/:setNumber/dropset", h.ToggleDropset)
	group.POST("/save", h.SaveAsDraft)
	group.POST("/finalize", h.Finalize)
}
