package handlers

import (
	"net/http"

	"roboteamup/internal/service"
)

// StudentHandler serves the student-facing API: bootstrap, selections,
// visions and join-code redemption.
type StudentHandler struct {
	authService      *service.AuthService
	studentService   *service.StudentService
	selectionService *service.SelectionService
	visionService    *service.VisionService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(authService *service.AuthService, studentService *service.StudentService, selectionService *service.SelectionService, visionService *service.VisionService) *StudentHandler {
	return &StudentHandler{
		authService:      authService,
		studentService:   studentService,
		selectionService: selectionService,
		visionService:    visionService,
	}
}

// requireClassAccess resolves the classId query parameter and checks
// enrollment for students.
func (h *StudentHandler) requireClassAccess(w http.ResponseWriter, r *http.Request) (string, bool) {
	classID := r.URL.Query().Get("classId")
	if classID == "" {
		respondWithServiceError(w, service.ErrBadPayload)
		return "", false
	}
	if err := h.authService.RequireEnrolled(UserFromContext(r), classID); err != nil {
		respondWithServiceError(w, err)
		return "", false
	}
	return classID, true
}

// Bootstrap returns everything the client needs for one class view.
// GET /api/student/bootstrap?classId=...
func (h *StudentHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	classID := r.URL.Query().Get("classId")
	if classID != "" {
		if err := h.authService.RequireEnrolled(user, classID); err != nil {
			respondWithServiceError(w, err)
			return
		}
	}
	payload, err := h.studentService.Bootstrap(user, classID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// GetValueSelections returns the caller's stored picks.
// GET /api/student/values?classId=...
func (h *StudentHandler) GetValueSelections(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.requireClassAccess(w, r)
	if !ok {
		return
	}
	sels, err := h.selectionService.GetValueSelections(UserFromContext(r).ID, classID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sels)
}

// SaveValueSelections replaces the caller's picks for a class.
// POST /api/student/values?classId=...
func (h *StudentHandler) SaveValueSelections(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.requireClassAccess(w, r)
	if !ok {
		return
	}
	var req struct {
		Selections []service.ValuePick `json:"selections"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	saved, err := h.selectionService.SaveValueSelections(UserFromContext(r).ID, classID, req.Selections)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// SelectMission stores the caller's mission choice.
// POST /api/student/mission?classId=...
func (h *StudentHandler) SelectMission(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.requireClassAccess(w, r)
	if !ok {
		return
	}
	var req struct {
		MissionID string `json:"missionId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	ms, err := h.selectionService.SelectMission(UserFromContext(r).ID, classID, req.MissionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

// SaveVision stores a student-authored vision text.
// POST /api/student/vision?classId=...
func (h *StudentHandler) SaveVision(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.requireClassAccess(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	v, err := h.visionService.SaveVision(UserFromContext(r).ID, classID, req.Text)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// GenerateVision builds and stores a vision text from the caller's picks.
// POST /api/student/vision/generate?classId=...
func (h *StudentHandler) GenerateVision(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.requireClassAccess(w, r)
	if !ok {
		return
	}
	v, err := h.visionService.GenerateVision(r.Context(), UserFromContext(r), classID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// JoinWithCode redeems a join code.
// POST /api/student/join
func (h *StudentHandler) JoinWithCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	class, err := h.studentService.EnrollWithCode(UserFromContext(r), req.Code)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, class)
}
