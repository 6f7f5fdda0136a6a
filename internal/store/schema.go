package store

// Table names. Each one maps to a sheet in the backing workbook.
const (
	TableUsers             = "Users"
	TableClasses           = "Classes"
	TableEnrollments       = "Enrollments"
	TableValues            = "Values"
	TableMissions          = "Missions"
	TableClassMission      = "ClassMission"
	TableValueSelections   = "ValueSelections"
	TableMissionSelections = "MissionSelections"
	TableVisionTexts       = "VisionTexts"
	TableTeams             = "Teams"
	TableTeamMembers       = "TeamMembers"
	TableSyncSettings      = "SyncSettings"
	TableClassJoinCodes    = "ClassJoinCodes"
	TableSessions          = "Sessions"
)

// TableSchema declares a table's header and the key tuples callers may
// upsert by. Declaring keys up front keeps row matching honest: an upsert
// with an undeclared tuple is a programming error, not a silent no-match.
type TableSchema struct {
	Name   string
	Header []string
	Keys   [][]string
}

// Tables is the full schema of the store.
func Tables() []TableSchema {
	return []TableSchema{
		{
			Name:   TableUsers,
			Header: []string{"id", "email", "displayName", "role", "gradeLevel", "googleId"},
			Keys:   [][]string{{"id"}, {"email"}},
		},
		{
			Name:   TableClasses,
			Header: []string{"id", "name", "type", "classroomCourseId"},
			Keys:   [][]string{{"id"}, {"classroomCourseId"}},
		},
		{
			Name:   TableEnrollments,
			Header: []string{"id", "userId", "classId", "roleInClass"},
			Keys:   [][]string{{"id"}, {"userId", "classId"}},
		},
		{
			Name:   TableValues,
			Header: []string{"id", "slug", "label", "active"},
			Keys:   [][]string{{"id"}, {"slug"}},
		},
		{
			Name:   TableMissions,
			Header: []string{"id", "slug", "label", "active"},
			Keys:   [][]string{{"id"}, {"slug"}},
		},
		{
			Name:   TableClassMission,
			Header: []string{"id", "classId", "missionId"},
			Keys:   [][]string{{"id"}, {"classId", "missionId"}},
		},
		{
			Name:   TableValueSelections,
			Header: []string{"id", "userId", "classId", "valueId", "coinWeight"},
			Keys:   [][]string{{"id"}, {"userId", "classId", "valueId"}},
		},
		{
			Name:   TableMissionSelections,
			Header: []string{"id", "userId", "classId", "missionId"},
			Keys:   [][]string{{"id"}, {"userId", "classId"}},
		},
		{
			Name:   TableVisionTexts,
			Header: []string{"id", "userId", "classId", "text", "updatedAt"},
			Keys:   [][]string{{"id"}, {"userId", "classId"}},
		},
		{
			Name:   TableTeams,
			Header: []string{"id", "classId", "name", "missionId"},
			Keys:   [][]string{{"id"}},
		},
		{
			Name:   TableTeamMembers,
			Header: []string{"id", "teamId", "userId", "role"},
			Keys:   [][]string{{"id"}, {"teamId", "userId"}},
		},
		{
			Name:   TableSyncSettings,
			Header: []string{"id", "classId", "classroomCourseId", "className", "syncEnabled", "removeMissingStudents"},
			Keys:   [][]string{{"id"}, {"classId"}},
		},
		{
			Name:   TableClassJoinCodes,
			Header: []string{"id", "classId", "code", "expiresAt", "maxUses", "uses", "active"},
			Keys:   [][]string{{"id"}, {"code"}},
		},
		{
			Name:   TableSessions,
			Header: []string{"id", "userId", "expiresAt", "createdAt"},
			Keys:   [][]string{{"id"}},
		},
	}
}

// schemaByName indexes a schema slice by table name.
func schemaByName(tables []TableSchema) map[string]TableSchema {
	m := make(map[string]TableSchema, len(tables))
	for _, t := range tables {
		m[t.Name] = t
	}
	return m
}
