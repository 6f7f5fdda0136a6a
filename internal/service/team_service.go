package service

import (
	"fmt"
	"math"
	"sort"

	"roboteamup/internal/models"
	"roboteamup/internal/repository"
)

// TeamSize is the target number of students per formed team. Teams of
// three are acceptable; only the last team may run smaller.
const TeamSize = 4

// ProposedMember is one student on a suggested team
type ProposedMember struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// TeamProposal is one suggested team before it is saved
type TeamProposal struct {
	Name      string           `json:"name"`
	MissionID string           `json:"missionId"`
	Members   []ProposedMember `json:"members"`
}

// FormationResult is the outcome of a team formation run
type FormationResult struct {
	Teams []TeamProposal `json:"teams"`
	Note  string         `json:"note,omitempty"`
}

// TeamService forms teams from student value profiles and persists them
type TeamService struct {
	users       *repository.UserRepository
	enrollments *repository.EnrollmentRepository
	selections  *repository.SelectionRepository
	catalog     *repository.CatalogRepository
	teams       *repository.TeamRepository
}

// NewTeamService creates a new team service
func NewTeamService(users *repository.UserRepository, enrollments *repository.EnrollmentRepository, selections *repository.SelectionRepository, catalog *repository.CatalogRepository, teams *repository.TeamRepository) *TeamService {
	return &TeamService{
		users:       users,
		enrollments: enrollments,
		selections:  selections,
		catalog:     catalog,
		teams:       teams,
	}
}

// FormTeams groups the students of a class by similarity of their value
// profiles. Each student becomes a vector over the active value catalog,
// weighted by their coin spend, and greedy seeding pulls the most similar
// remaining students together into teams of up to four. The last team may
// run short; it is never rebalanced.
func (s *TeamService) FormTeams(classID string) (*FormationResult, error) {
	cat, err := s.catalog.ActiveCatalog()
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.GetEnrollmentsByClass(classID)
	if err != nil {
		return nil, err
	}

	var studentIDs []string
	for _, e := range enrollments {
		if e.RoleInClass == models.ClassRoleStudent {
			studentIDs = append(studentIDs, e.UserID)
		}
	}
	if len(studentIDs) == 0 || len(cat.Values) == 0 {
		return &FormationResult{Note: "nothing to group: no students or no active values"}, nil
	}

	selections, err := s.selections.GetValueSelectionsByClass(classID)
	if err != nil {
		return nil, err
	}
	missions, err := s.selections.GetMissionSelectionsByClass(classID)
	if err != nil {
		return nil, err
	}
	missionByUser := make(map[string]string, len(missions))
	for _, ms := range missions {
		missionByUser[ms.UserID] = ms.MissionID
	}

	allUsers, err := s.users.GetAllUsers()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(allUsers))
	for _, u := range allUsers {
		names[u.ID] = u.DisplayName
	}

	// Index each active value to a vector dimension, in catalog order.
	dim := make(map[string]int, len(cat.Values))
	for i, v := range cat.Values {
		dim[v.ID] = i
	}
	vectors := make(map[string][]float64, len(studentIDs))
	for _, id := range studentIDs {
		vectors[id] = make([]float64, len(cat.Values))
	}
	for _, vs := range selections {
		vec, ok := vectors[vs.UserID]
		if !ok {
			continue
		}
		if d, ok := dim[vs.ValueID]; ok {
			vec[d] = float64(vs.CoinWeight)
		}
	}

	pool := append([]string(nil), studentIDs...)
	var proposals []TeamProposal
	for len(pool) > 0 {
		seed := pool[0]
		pool = pool[1:]

		// Rank the rest of the pool by similarity to the seed; stable
		// sort keeps roster order among ties.
		sort.SliceStable(pool, func(i, j int) bool {
			return cosineSimilarity(vectors[seed], vectors[pool[i]]) > cosineSimilarity(vectors[seed], vectors[pool[j]])
		})

		take := TeamSize - 1
		if take > len(pool) {
			take = len(pool)
		}
		memberIDs := append([]string{seed}, pool[:take]...)
		pool = pool[take:]

		members := make([]ProposedMember, len(memberIDs))
		for i, uid := range memberIDs {
			members[i] = ProposedMember{UserID: uid, DisplayName: names[uid]}
		}
		proposals = append(proposals, TeamProposal{
			Name:      fmt.Sprintf("Team %d", len(proposals)+1),
			MissionID: dominantMission(memberIDs, missionByUser),
			Members:   members,
		})
	}

	result := &FormationResult{Teams: proposals}
	if len(proposals) > 0 {
		last := proposals[len(proposals)-1]
		if len(last.Members) < TeamSize-1 {
			result.Note = fmt.Sprintf("last team has %d member(s)", len(last.Members))
		}
	}
	return result, nil
}

// SaveTeams replaces a class's stored teams with the given proposals
func (s *TeamService) SaveTeams(classID string, proposals []TeamProposal) ([]models.Team, error) {
	var teams []models.Team
	var members []models.TeamMember
	for _, p := range proposals {
		if p.Name == "" || len(p.Members) == 0 {
			return nil, ErrBadPayload
		}
		team := models.Team{
			ID:        newID(),
			ClassID:   classID,
			Name:      p.Name,
			MissionID: p.MissionID,
		}
		teams = append(teams, team)
		for _, m := range p.Members {
			members = append(members, models.TeamMember{
				ID:     newID(),
				TeamID: team.ID,
				UserID: m.UserID,
			})
		}
	}
	if err := s.teams.ReplaceTeams(classID, teams, members); err != nil {
		return nil, err
	}
	return teams, nil
}

// GetTeams returns the stored teams of a class with their member lists
func (s *TeamService) GetTeams(classID string) ([]models.Team, map[string][]models.TeamMember, error) {
	teams, err := s.teams.GetTeamsByClass(classID)
	if err != nil {
		return nil, nil, err
	}
	membersByTeam := make(map[string][]models.TeamMember, len(teams))
	for _, t := range teams {
		ms, err := s.teams.GetMembersByTeam(t.ID)
		if err != nil {
			return nil, nil, err
		}
		membersByTeam[t.ID] = ms
	}
	return teams, membersByTeam, nil
}

// cosineSimilarity returns the cosine of two equal-length vectors, 0
// when either has no magnitude.
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// dominantMission picks the mission most members chose, first seen wins
// ties. Empty when nobody chose one.
func dominantMission(members []string, missionByUser map[string]string) string {
	counts := make(map[string]int)
	best := ""
	bestCount := 0
	for _, uid := range members {
		mid := missionByUser[uid]
		if mid == "" {
			continue
		}
		counts[mid]++
		if counts[mid] > bestCount {
			best = mid
			bestCount = counts[mid]
		}
	}
	return best
}
