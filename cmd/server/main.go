package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roboteamup/internal/config"
	"roboteamup/internal/handlers"
	"roboteamup/internal/repository"
	"roboteamup/internal/roster"
	"roboteamup/internal/security"
	"roboteamup/internal/service"
	"roboteamup/internal/store"
	"roboteamup/internal/vision"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Open the workbook-backed row store
	workbook, err := store.OpenWorkbook(cfg.WorkbookPath)
	if err != nil {
		log.Fatalf("Failed to open workbook: %v", err)
	}
	defer workbook.Close()

	if err := workbook.EnsureTables(store.Tables()); err != nil {
		log.Fatalf("Failed to prepare workbook tables: %v", err)
	}
	rowStore := store.New(workbook)

	log.Printf("Row store ready: %s", cfg.WorkbookPath)

	// Initialize repositories
	userRepo := repository.NewUserRepository(rowStore)
	classRepo := repository.NewClassRepository(rowStore)
	enrollmentRepo := repository.NewEnrollmentRepository(rowStore)
	catalogRepo := repository.NewCatalogRepository(rowStore)
	selectionRepo := repository.NewSelectionRepository(rowStore)
	visionRepo := repository.NewVisionRepository(rowStore)
	teamRepo := repository.NewTeamRepository(rowStore)
	joinCodeRepo := repository.NewJoinCodeRepository(rowStore)
	settingsRepo := repository.NewSyncSettingsRepository(rowStore)
	sessionRepo := repository.NewSessionRepository(rowStore)

	// Initialize external clients
	ctx := context.Background()
	verifier := security.NewGoogleTokenVerifier(cfg.GoogleClientID)

	var rosterProvider roster.Provider
	if cfg.GoogleClientID != "" && cfg.GoogleRefreshToken != "" {
		rosterProvider = roster.NewClassroomClient(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRefreshToken)
		log.Println("Classroom roster client configured")
	} else {
		log.Println("Classroom roster client not configured, roster sync disabled")
	}

	var generator vision.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := vision.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("Warning: Gemini unavailable, vision texts fall back to local generation: %v", err)
		} else {
			generator = gemini
			log.Printf("Gemini generator configured: %s", cfg.GeminiModel)
		}
	}

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, enrollmentRepo, sessionRepo, verifier, cfg.SessionDuration)
	selectionService := service.NewSelectionService(selectionRepo, catalogRepo)
	teamService := service.NewTeamService(userRepo, enrollmentRepo, selectionRepo, catalogRepo, teamRepo)
	rosterService := service.NewRosterService(rosterProvider, userRepo, classRepo, enrollmentRepo, settingsRepo)
	visionService := service.NewVisionService(visionRepo, selectionRepo, catalogRepo, classRepo, userRepo, enrollmentRepo, generator)
	studentService := service.NewStudentService(userRepo, classRepo, enrollmentRepo, catalogRepo, selectionRepo, visionRepo, joinCodeRepo)
	adminService := service.NewAdminService(userRepo, classRepo, enrollmentRepo, catalogRepo, selectionRepo, visionRepo, teamRepo, joinCodeRepo, settingsRepo, sessionRepo, emailService)
	backupService := service.NewBackupService(rowStore, cfg.BackupDir)

	// Initialize handlers and middleware
	rateLimiter := security.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	middleware := handlers.NewMiddleware(authService, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService)
	studentHandler := handlers.NewStudentHandler(authService, studentService, selectionService, visionService)
	teacherHandler := handlers.NewTeacherHandler(teamService, rosterService, visionService, adminService)
	adminHandler := handlers.NewAdminHandler(adminService, backupService)

	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", middleware.RequireAuth(authHandler.Logout))
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))

	// Student routes
	mux.HandleFunc("GET /api/student/bootstrap", middleware.RequireAuth(studentHandler.Bootstrap))
	mux.HandleFunc("GET /api/student/values", middleware.RequireAuth(studentHandler.GetValueSelections))
	mux.HandleFunc("POST /api/student/values", middleware.RequireAuth(studentHandler.SaveValueSelections))
	mux.HandleFunc("POST /api/student/mission", middleware.RequireAuth(studentHandler.SelectMission))
	mux.HandleFunc("POST /api/student/vision", middleware.RequireAuth(studentHandler.SaveVision))
	mux.HandleFunc("POST /api/student/vision/generate", middleware.RequireAuth(studentHandler.GenerateVision))
	mux.HandleFunc("POST /api/student/join", middleware.RequireAuth(studentHandler.JoinWithCode))

	// Teacher routes
	mux.HandleFunc("POST /api/teacher/classes/{classId}/teams/form", middleware.RequireTeacher(teacherHandler.FormTeams))
	mux.HandleFunc("PUT /api/teacher/classes/{classId}/teams", middleware.RequireTeacher(teacherHandler.SaveTeams))
	mux.HandleFunc("GET /api/teacher/classes/{classId}/teams", middleware.RequireTeacher(teacherHandler.GetTeams))
	mux.HandleFunc("GET /api/teacher/classes/{classId}/roster", middleware.RequireTeacher(teacherHandler.ClassRoster))
	mux.HandleFunc("POST /api/teacher/classes/{classId}/vision", middleware.RequireTeacher(teacherHandler.CombinedVision))
	mux.HandleFunc("GET /api/teacher/classes/{classId}/vision/students", middleware.RequireTeacher(teacherHandler.StudentsForVision))
	mux.HandleFunc("POST /api/teacher/classes/{classId}/sync", middleware.RequireTeacher(teacherHandler.SyncClass))
	mux.HandleFunc("GET /api/teacher/classes/{classId}/sync-settings", middleware.RequireTeacher(teacherHandler.GetSyncSettings))
	mux.HandleFunc("PUT /api/teacher/classes/{classId}/sync-settings", middleware.RequireTeacher(teacherHandler.UpdateSyncSettings))
	mux.HandleFunc("GET /api/teacher/courses", middleware.RequireTeacher(teacherHandler.AvailableCourses))
	mux.HandleFunc("GET /api/teacher/courses/{courseId}/roster", middleware.RequireTeacher(teacherHandler.PreviewRoster))
	mux.HandleFunc("POST /api/teacher/courses/{courseId}/import", middleware.RequireTeacher(teacherHandler.ImportCourse))

	// Admin routes
	mux.HandleFunc("GET /api/admin/users", middleware.RequireAdmin(adminHandler.ListUsers))
	mux.HandleFunc("POST /api/admin/users", middleware.RequireAdmin(adminHandler.AddUser))
	mux.HandleFunc("POST /api/admin/users/import", middleware.RequireAdmin(adminHandler.BulkImportUsers))
	mux.HandleFunc("PATCH /api/admin/users/{id}", middleware.RequireAdmin(adminHandler.UpdateUser))
	mux.HandleFunc("DELETE /api/admin/users/{id}", middleware.RequireAdmin(adminHandler.DeleteUser))
	mux.HandleFunc("GET /api/admin/classes", middleware.RequireAdmin(adminHandler.ListClasses))
	mux.HandleFunc("POST /api/admin/classes", middleware.RequireAdmin(adminHandler.AddClass))
	mux.HandleFunc("PATCH /api/admin/classes/{id}", middleware.RequireAdmin(adminHandler.UpdateClass))
	mux.HandleFunc("DELETE /api/admin/classes/{id}", middleware.RequireAdmin(adminHandler.DeleteClass))
	mux.HandleFunc("POST /api/admin/classes/{id}/enrollments", middleware.RequireAdmin(adminHandler.Enroll))
	mux.HandleFunc("DELETE /api/admin/enrollments/{id}", middleware.RequireAdmin(adminHandler.Unenroll))
	mux.HandleFunc("GET /api/admin/values", middleware.RequireAdmin(adminHandler.ListValues))
	mux.HandleFunc("POST /api/admin/values", middleware.RequireAdmin(adminHandler.AddValue))
	mux.HandleFunc("PATCH /api/admin/values/{id}", middleware.RequireAdmin(adminHandler.UpdateValue))
	mux.HandleFunc("GET /api/admin/missions", middleware.RequireAdmin(adminHandler.ListMissions))
	mux.HandleFunc("POST /api/admin/missions", middleware.RequireAdmin(adminHandler.AddMission))
	mux.HandleFunc("PATCH /api/admin/missions/{id}", middleware.RequireAdmin(adminHandler.UpdateMission))
	mux.HandleFunc("PUT /api/admin/classes/{id}/missions", middleware.RequireAdmin(adminHandler.SetClassMissions))
	mux.HandleFunc("POST /api/admin/classes/{id}/join-codes", middleware.RequireAdmin(adminHandler.GenerateJoinCode))
	mux.HandleFunc("GET /api/admin/classes/{id}/join-codes", middleware.RequireAdmin(adminHandler.ListJoinCodes))
	mux.HandleFunc("DELETE /api/admin/join-codes/{id}", middleware.RequireAdmin(adminHandler.CloseJoinCode))
	mux.HandleFunc("POST /api/admin/classes/{id}/invite", middleware.RequireAdmin(adminHandler.InviteByEmail))
	mux.HandleFunc("POST /api/admin/bootstrap", middleware.RateLimit(adminHandler.Bootstrap))
	mux.HandleFunc("POST /api/admin/backup/export", middleware.RequireAdmin(adminHandler.ExportBackup))
	mux.HandleFunc("POST /api/admin/backup/import", middleware.RequireAdmin(adminHandler.ImportBackup))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	stop := make(chan struct{})
	go cleanupExpiredSessions(authService, stop)
	if cfg.NightlyBackup {
		go backupService.RunNightly(stop)
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// cleanupExpiredSessions prunes stale login sessions once an hour
func cleanupExpiredSessions(authService *service.AuthService, stop <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := authService.CleanupExpiredSessions()
			if err != nil {
				log.Printf("Session cleanup failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Session cleanup removed %d expired session(s)", n)
			}
		case <-stop:
			return
		}
	}
}
