package handlers

import (
	"net/http"

	"roboteamup/internal/service"
)

// TeacherHandler serves the teacher surface: team formation, roster
// sync and class vision.
type TeacherHandler struct {
	teamService   *service.TeamService
	rosterService *service.RosterService
	visionService *service.VisionService
	adminService  *service.AdminService
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(teamService *service.TeamService, rosterService *service.RosterService, visionService *service.VisionService, adminService *service.AdminService) *TeacherHandler {
	return &TeacherHandler{
		teamService:   teamService,
		rosterService: rosterService,
		visionService: visionService,
		adminService:  adminService,
	}
}

func classIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	classID := r.PathValue("classId")
	if classID == "" {
		respondWithServiceError(w, service.ErrBadPayload)
		return "", false
	}
	return classID, true
}

// FormTeams suggests a team partition for a class without saving it.
// POST /api/teacher/classes/{classId}/teams/form
func (h *TeacherHandler) FormTeams(w http.ResponseWriter, r *http.Request) {
	classID, ok := classIDParam(w, r)
	if !ok {
		return
	}
	result, err := h.teamService.FormTeams(classID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SaveTeams replaces a class's stored teams.
// PUT /api/teacher/classes/{classId}/teams
func (h *TeacherHandler) SaveTeams(w http.ResponseWriter, r *http.Request) {
	classID, ok := classIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Teams []service.TeamProposal `json:"teams"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	teams, err := h.teamService.SaveTeams(classID, req.Teams)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// GetTeams returns the stored teams with members.
// GET /api/teacher/classes/{classId}/teams
func (h *TeacherHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	classID, ok := classIDParam(w, r)
	if !ok {
		return
	}
	teams, members, err := h.teamService.GetTeams(classID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teams":   teams,
		"members": members,
	})
}

// AvailableCourses lists importable roster courses.
// GET /api/teacher/courses
func (h *TeacherHandler) AvailableCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.rosterService.AvailableCourses(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// PreviewRoster shows a course roster without importing it.
// GET /api/teacher/courses/{courseId}/roster
func (h *TeacherHandler) PreviewRoster(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("courseId")
	if courseID == "" {
		respondWithServiceError(w, service.ErrBadPayload)
		return
	}
	students, teachers, err := h.rosterService.PreviewRoster(r.Context(), courseID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
		"teachers": teachers,
	})
}

// ImportCourse creates a class from a roster course and syncs it.
// POST /api/teacher/courses/{courseId}/import
func (h *TeacherHandler) ImportCourse(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("courseId")
	if courseID == "" {
		respondWithServiceError(w, service.ErrBadPayload)
		return
	}
	var req struct {
		ClassType string `json:"classType"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	class, report, err := h.rosterService.ImportCourse(r.Context(), courseID, req.ClassType)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"class":  class,
		"report": report,
	})
}

// SyncClass reconciles a class against its linked course roster.
// POST /api/teacher/classes/{classId}/sync
func (h *TeacherHandler) SyncClass(w http.ResponseWriter, r *http.Request) {
	classID, ok := classIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		RemoveMissing bool `json:"removeMissing"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	report, err := h.rosterService.SyncClass(r.Context(), classID, req.RemoveMissing)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetSyncSettings returns the class's sync settings.
// GET /api/teacher/classes/{classId}/sync-settings
func (h *TeacherHandler) GetSyncSettings(w http.ResponseWriter, r *http.Request) {
	classID, ok := classIDParam(w, r)
	if !ok {
		return
	}
	st, err := h.rosterService.GetSyncSettings(classID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// UpdateSyncSettings stores the class's sync toggles.
// PUT /api/teacher/classes/{classId}/sync-settings
func (h *TeacherHandler) UpdateSyncSettings(w http.ResponseWriter, r *http.Request) {
	classID, ok := classIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		SyncEnabled           bool `json:"syncEnabled"`
		RemoveMissingStudents bool `json:"removeMissingStudents"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	st, err := h.rosterService.UpdateSyncSettings(classID, req.SyncEnabled, req.RemoveMissingStudents)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// CombinedVision merges the chosen students' values into one shared
// vision statement.
// POST /api/teacher/classes/{classId}/vision
func (h *TeacherHandler) CombinedVision(w http.ResponseWriter, r *http.Request) {
	classID, ok := classIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		StudentIDs []string `json:"studentIds"`
		MissionID  string   `json:"missionId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	text, err := h.visionService.CombinedVision(r.Context(), classID, req.StudentIDs, req.MissionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// StudentsForVision returns each student's value picks and whether
// they have written a vision text.
// GET /api/teacher/classes/{classId}/vision/students
func (h *TeacherHandler) StudentsForVision(w http.ResponseWriter, r *http.Request) {
	classID, ok := classIDParam(w, r)
	if !ok {
		return
	}
	students, err := h.visionService.StudentsForVision(classID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"students": students})
}

// ClassRoster returns the class's enrollments with user details.
// GET /api/teacher/classes/{classId}/roster
func (h *TeacherHandler) ClassRoster(w http.ResponseWriter, r *http.Request) {
	classID, ok := classIDParam(w, r)
	if !ok {
		return
	}
	enrollments, users, err := h.adminService.ClassRoster(classID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"enrollments": enrollments,
		"users":       users,
	})
}
