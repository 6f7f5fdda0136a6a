package service

import (
	"roboteamup/internal/repository"
	"roboteamup/internal/store"
)

// testEnv bundles a memory-backed store with every repository, so
// service tests can seed state through the same paths production uses.
type testEnv struct {
	store       *store.Store
	users       *repository.UserRepository
	classes     *repository.ClassRepository
	enrollments *repository.EnrollmentRepository
	catalog     *repository.CatalogRepository
	selections  *repository.SelectionRepository
	visions     *repository.VisionRepository
	teams       *repository.TeamRepository
	joinCodes   *repository.JoinCodeRepository
	settings    *repository.SyncSettingsRepository
	sessions    *repository.SessionRepository
}

func newTestEnv() *testEnv {
	s := store.New(store.NewMemoryGridSet(store.Tables()))
	return &testEnv{
		store:       s,
		users:       repository.NewUserRepository(s),
		classes:     repository.NewClassRepository(s),
		enrollments: repository.NewEnrollmentRepository(s),
		catalog:     repository.NewCatalogRepository(s),
		selections:  repository.NewSelectionRepository(s),
		visions:     repository.NewVisionRepository(s),
		teams:       repository.NewTeamRepository(s),
		joinCodes:   repository.NewJoinCodeRepository(s),
		settings:    repository.NewSyncSettingsRepository(s),
		sessions:    repository.NewSessionRepository(s),
	}
}
