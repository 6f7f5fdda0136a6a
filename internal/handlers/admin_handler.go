package handlers

import (
	"net/http"
	"time"

	"roboteamup/internal/models"
	"roboteamup/internal/service"
	"roboteamup/internal/store"
)

// AdminHandler serves the admin management surface: users, classes,
// catalogs, enrollment, join codes and backup.
type AdminHandler struct {
	adminService  *service.AdminService
	backupService *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService, backupService *service.BackupService) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		backupService: backupService,
	}
}

// ListUsers returns every registered user.
// GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// AddUser registers one user.
// POST /api/admin/users
func (h *AdminHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Role        string `json:"role"`
		GradeLevel  string `json:"gradeLevel"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	user, err := h.adminService.AddUser(req.Email, req.DisplayName, models.Role(req.Role), req.GradeLevel)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// BulkImportUsers accepts a CSV body of users.
// POST /api/admin/users/import
func (h *AdminHandler) BulkImportUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.adminService.BulkImportUsers(r.Body)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UpdateUser patches a user.
// PATCH /api/admin/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch store.Record
	if err := decodeJSON(r, &patch); err != nil {
		respondWithServiceError(w, err)
		return
	}
	user, err := h.adminService.UpdateUser(r.PathValue("id"), patch)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user and all rows referencing them.
// DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteUser(r.PathValue("id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListClasses returns every class.
// GET /api/admin/classes
func (h *AdminHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.adminService.ListClasses()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

// AddClass creates a class.
// POST /api/admin/classes
func (h *AdminHandler) AddClass(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	class, err := h.adminService.AddClass(req.Name, req.Type)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, class)
}

// UpdateClass patches a class.
// PATCH /api/admin/classes/{id}
func (h *AdminHandler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	var patch store.Record
	if err := decodeJSON(r, &patch); err != nil {
		respondWithServiceError(w, err)
		return
	}
	class, err := h.adminService.UpdateClass(r.PathValue("id"), patch)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, class)
}

// DeleteClass removes a class and everything scoped to it.
// DELETE /api/admin/classes/{id}
func (h *AdminHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteClass(r.PathValue("id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Enroll adds a registered user to a class by email.
// POST /api/admin/classes/{id}/enrollments
func (h *AdminHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	e, err := h.adminService.EnrollByEmail(req.Email, r.PathValue("id"), models.ClassRole(req.Role))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Unenroll removes one enrollment.
// DELETE /api/admin/enrollments/{id}
func (h *AdminHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.Unenroll(r.PathValue("id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// ListValues returns the full value catalog.
// GET /api/admin/values
func (h *AdminHandler) ListValues(w http.ResponseWriter, r *http.Request) {
	values, err := h.adminService.ListValues()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

// AddValue creates a catalog value.
// POST /api/admin/values
func (h *AdminHandler) AddValue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug  string `json:"slug"`
		Label string `json:"label"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	v, err := h.adminService.AddValue(req.Slug, req.Label)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// UpdateValue patches a catalog value.
// PATCH /api/admin/values/{id}
func (h *AdminHandler) UpdateValue(w http.ResponseWriter, r *http.Request) {
	var patch store.Record
	if err := decodeJSON(r, &patch); err != nil {
		respondWithServiceError(w, err)
		return
	}
	if err := h.adminService.UpdateValue(r.PathValue("id"), patch); err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ListMissions returns the full mission catalog.
// GET /api/admin/missions
func (h *AdminHandler) ListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := h.adminService.ListMissions()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, missions)
}

// AddMission creates a mission.
// POST /api/admin/missions
func (h *AdminHandler) AddMission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug  string `json:"slug"`
		Label string `json:"label"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	m, err := h.adminService.AddMission(req.Slug, req.Label)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// UpdateMission patches a mission.
// PATCH /api/admin/missions/{id}
func (h *AdminHandler) UpdateMission(w http.ResponseWriter, r *http.Request) {
	var patch store.Record
	if err := decodeJSON(r, &patch); err != nil {
		respondWithServiceError(w, err)
		return
	}
	if err := h.adminService.UpdateMission(r.PathValue("id"), patch); err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// SetClassMissions replaces a class's mission allow-list.
// PUT /api/admin/classes/{id}/missions
func (h *AdminHandler) SetClassMissions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MissionIDs []string `json:"missionIds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	if err := h.adminService.SetClassMissions(r.PathValue("id"), req.MissionIDs); err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GenerateJoinCode issues a join code for a class.
// POST /api/admin/classes/{id}/join-codes
func (h *AdminHandler) GenerateJoinCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TTLHours int `json:"ttlHours"`
		MaxUses  int `json:"maxUses"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	jc, err := h.adminService.GenerateJoinCode(r.PathValue("id"), time.Duration(req.TTLHours)*time.Hour, req.MaxUses)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, jc)
}

// ListJoinCodes returns a class's join codes.
// GET /api/admin/classes/{id}/join-codes
func (h *AdminHandler) ListJoinCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.adminService.ListJoinCodes(r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

// CloseJoinCode deactivates a join code.
// DELETE /api/admin/join-codes/{id}
func (h *AdminHandler) CloseJoinCode(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.CloseJoinCode(r.PathValue("id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// InviteByEmail issues a single-use join code and emails it.
// POST /api/admin/classes/{id}/invite
func (h *AdminHandler) InviteByEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		TTLHours int    `json:"ttlHours"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	ttl := time.Duration(req.TTLHours) * time.Hour
	if req.TTLHours <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	jc, err := h.adminService.InviteByEmail(r.Context(), r.PathValue("id"), req.Email, req.Name, ttl)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, jc)
}

// Bootstrap seeds the first admin account.
// POST /api/admin/bootstrap
func (h *AdminHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	user, err := h.adminService.Bootstrap(req.Email, req.DisplayName)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// ExportBackup writes a snapshot and reports its path.
// POST /api/admin/backup/export
func (h *AdminHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	path, err := h.backupService.Export()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// ImportBackup restores from a snapshot path on the server.
// POST /api/admin/backup/import
func (h *AdminHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	if req.Path == "" {
		respondWithServiceError(w, service.ErrBadPayload)
		return
	}
	if err := h.backupService.Import(req.Path); err != nil {
		respondWithServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}
