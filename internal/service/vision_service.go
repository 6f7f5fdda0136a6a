package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"roboteamup/internal/models"
	"roboteamup/internal/repository"
	"roboteamup/internal/vision"
)

const visionTokenBudget = 256

// VisionService writes and generates vision statements for students and
// classes. Generation failures fall back to a deterministic local
// sentence so saving never blocks on the model.
type VisionService struct {
	visions     *repository.VisionRepository
	selections  *repository.SelectionRepository
	catalog     *repository.CatalogRepository
	classes     *repository.ClassRepository
	users       *repository.UserRepository
	enrollments *repository.EnrollmentRepository
	generator   vision.Generator
}

// NewVisionService creates a new vision service. generator may be nil
// when no model is configured; the fallback text is used instead.
func NewVisionService(visions *repository.VisionRepository, selections *repository.SelectionRepository, catalog *repository.CatalogRepository, classes *repository.ClassRepository, users *repository.UserRepository, enrollments *repository.EnrollmentRepository, generator vision.Generator) *VisionService {
	return &VisionService{
		visions:     visions,
		selections:  selections,
		catalog:     catalog,
		classes:     classes,
		users:       users,
		enrollments: enrollments,
		generator:   generator,
	}
}

// GetVision returns a student's stored vision text, nil when unset
func (s *VisionService) GetVision(userID, classID string) (*models.VisionText, error) {
	return s.visions.GetVision(userID, classID)
}

// SaveVision stores a student-authored vision text
func (s *VisionService) SaveVision(userID, classID, text string) (*models.VisionText, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrBadPayload
	}
	return s.upsertVision(userID, classID, text)
}

// GenerateVision builds a vision statement from the student's picks and
// stores it. The model is asked first; on any failure the deterministic
// fallback is stored instead.
func (s *VisionService) GenerateVision(ctx context.Context, user *models.User, classID string) (*models.VisionText, error) {
	missionName, valueNames, err := s.studentChoices(user.ID, classID)
	if err != nil {
		return nil, err
	}

	text := ""
	if s.generator != nil {
		prompt := vision.PersonalPrompt(user.DisplayName, missionName, valueNames)
		text, err = s.generator.Generate(ctx, prompt, visionTokenBudget)
		if err != nil {
			log.Printf("Vision generation failed for user %s, using fallback: %v", user.ID, err)
			text = ""
		}
	}
	if text == "" {
		text = vision.FallbackPersonal(missionName, valueNames)
	}
	return s.upsertVision(user.ID, classID, text)
}

// CombinedVision merges the chosen students' strongest values into one
// shared statement. At least two students are required; on any model
// failure it degrades to a sentence built from those same values.
func (s *VisionService) CombinedVision(ctx context.Context, classID string, studentIDs []string, missionID string) (string, error) {
	if len(studentIDs) < 2 {
		return "", fmt.Errorf("%w: a combined vision needs at least two students", ErrBadPayload)
	}
	class, err := s.classes.GetClassByID(classID)
	if err != nil {
		return "", err
	}
	if class == nil {
		return "", ErrNotFound
	}

	cat, err := s.catalog.ActiveCatalog()
	if err != nil {
		return "", err
	}
	top, err := s.topValuesForStudents(cat, classID, studentIDs, 3)
	if err != nil {
		return "", err
	}
	missionName := ""
	for _, m := range cat.Missions {
		if m.ID == missionID {
			missionName = m.Label
			break
		}
	}

	if s.generator != nil {
		prompt := vision.CombinedPrompt(class.Name, top, missionName)
		text, err := s.generator.Generate(ctx, prompt, visionTokenBudget)
		if err == nil && text != "" {
			return text, nil
		}
		log.Printf("Combined vision generation failed for class %s, using fallback: %v", classID, err)
	}
	return vision.FallbackCombined(class.Name, top), nil
}

// StudentValueSummary lists one student's strongest value picks, used
// by teachers when reviewing a class before a combined vision.
type StudentValueSummary struct {
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName"`
	Values      []string `json:"values"`
	HasVision   bool     `json:"hasVision"`
}

// StudentsForVision returns every enrolled student with their value
// picks ordered by coin weight, strongest first.
func (s *VisionService) StudentsForVision(classID string) ([]StudentValueSummary, error) {
	class, err := s.classes.GetClassByID(classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrNotFound
	}

	cat, err := s.catalog.ActiveCatalog()
	if err != nil {
		return nil, err
	}
	enrolled, err := s.enrollments.GetEnrollmentsByClass(classID)
	if err != nil {
		return nil, err
	}
	stored, err := s.visions.GetVisionsByClass(classID)
	if err != nil {
		return nil, err
	}
	hasVision := make(map[string]bool, len(stored))
	for _, v := range stored {
		if strings.TrimSpace(v.Text) != "" {
			hasVision[v.UserID] = true
		}
	}

	summaries := []StudentValueSummary{}
	for _, e := range enrolled {
		if e.RoleInClass != models.ClassRoleStudent {
			continue
		}
		user, err := s.users.GetUserByID(e.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}

		picks, err := s.selections.GetValueSelections(e.UserID, classID)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(picks, func(i, j int) bool { return picks[i].CoinWeight > picks[j].CoinWeight })
		names := []string{}
		for _, p := range picks {
			if v, ok := cat.ValueByID(p.ValueID); ok {
				names = append(names, v.Label)
			}
		}

		summaries = append(summaries, StudentValueSummary{
			UserID:      user.ID,
			DisplayName: user.DisplayName,
			Values:      names,
			HasVision:   hasVision[e.UserID],
		})
	}
	return summaries, nil
}

func (s *VisionService) upsertVision(userID, classID, text string) (*models.VisionText, error) {
	existing, err := s.visions.GetVision(userID, classID)
	if err != nil {
		return nil, err
	}
	id := newID()
	if existing != nil {
		id = existing.ID
	}
	v := models.VisionText{
		ID:        id,
		UserID:    userID,
		ClassID:   classID,
		Text:      text,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.visions.UpsertVision(v); err != nil {
		return nil, err
	}
	return &v, nil
}

// studentChoices resolves the names behind a student's stored picks
func (s *VisionService) studentChoices(userID, classID string) (string, []string, error) {
	cat, err := s.catalog.ActiveCatalog()
	if err != nil {
		return "", nil, err
	}

	picks, err := s.selections.GetValueSelections(userID, classID)
	if err != nil {
		return "", nil, err
	}
	var valueNames []string
	for _, p := range picks {
		if v, ok := cat.ValueByID(p.ValueID); ok {
			valueNames = append(valueNames, v.Label)
		}
	}

	missionName := ""
	ms, err := s.selections.GetMissionSelection(userID, classID)
	if err != nil {
		return "", nil, err
	}
	if ms != nil {
		for _, m := range cat.Missions {
			if m.ID == ms.MissionID {
				missionName = m.Label
				break
			}
		}
	}
	return missionName, valueNames, nil
}

// topValuesForStudents returns the names of the n values the given
// students spent the most coins on in total.
func (s *VisionService) topValuesForStudents(cat models.Catalog, classID string, studentIDs []string, n int) ([]string, error) {
	selections, err := s.selections.GetValueSelectionsByClass(classID)
	if err != nil {
		return nil, err
	}
	chosen := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		chosen[id] = true
	}

	totals := make(map[string]int)
	for _, vs := range selections {
		if chosen[vs.UserID] {
			totals[vs.ValueID] += vs.CoinWeight
		}
	}

	type scored struct {
		name  string
		total int
	}
	var ranked []scored
	for _, v := range cat.Values {
		if t, ok := totals[v.ID]; ok && t > 0 {
			ranked = append(ranked, scored{name: v.Label, total: t})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].total > ranked[j].total })

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.name
	}
	return names, nil
}
