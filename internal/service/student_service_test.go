package service

import (
	"errors"
	"testing"
	"time"

	"roboteamup/internal/models"
)

func newStudentService(env *testEnv) *StudentService {
	return NewStudentService(env.users, env.classes, env.enrollments, env.catalog, env.selections, env.visions, env.joinCodes)
}

func seedClassAndCode(t *testing.T, env *testEnv, jc models.JoinCode) {
	t.Helper()
	if err := env.classes.CreateClass(models.Class{ID: "c1", Name: "Robotics", Type: "CLUB"}); err != nil {
		t.Fatalf("CreateClass() error = %v", err)
	}
	if err := env.joinCodes.CreateJoinCode(jc); err != nil {
		t.Fatalf("CreateJoinCode() error = %v", err)
	}
}

func TestEnrollWithCode(t *testing.T) {
	env := newTestEnv()
	seedClassAndCode(t, env, models.JoinCode{
		ID: "jc1", ClassID: "c1", Code: "ABC234", MaxUses: 10, Active: true,
	})
	svc := newStudentService(env)
	user := &models.User{ID: "u1", Role: models.RoleStudent}

	class, err := svc.EnrollWithCode(user, "abc234")
	if err != nil {
		t.Fatalf("EnrollWithCode() error = %v", err)
	}
	if class.ID != "c1" {
		t.Errorf("expected class c1, got %q", class.ID)
	}

	enrolled, err := env.enrollments.IsEnrolled("u1", "c1")
	if err != nil {
		t.Fatalf("IsEnrolled() error = %v", err)
	}
	if !enrolled {
		t.Error("expected u1 enrolled in c1")
	}

	jc, _ := env.joinCodes.GetJoinCodeByCode("ABC234")
	if jc.Uses != 1 {
		t.Errorf("expected uses incremented to 1, got %d", jc.Uses)
	}
}

func TestEnrollWithCodeAlreadyEnrolledIsNoop(t *testing.T) {
	env := newTestEnv()
	seedClassAndCode(t, env, models.JoinCode{
		ID: "jc1", ClassID: "c1", Code: "ABC234", MaxUses: 10, Active: true,
	})
	if err := env.enrollments.CreateEnrollment(models.Enrollment{
		ID: "e1", UserID: "u1", ClassID: "c1", RoleInClass: models.ClassRoleStudent,
	}); err != nil {
		t.Fatalf("CreateEnrollment() error = %v", err)
	}
	svc := newStudentService(env)

	class, err := svc.EnrollWithCode(&models.User{ID: "u1"}, "ABC234")
	if err != nil {
		t.Fatalf("EnrollWithCode() error = %v", err)
	}
	if class.ID != "c1" {
		t.Errorf("expected class c1, got %q", class.ID)
	}

	jc, _ := env.joinCodes.GetJoinCodeByCode("ABC234")
	if jc.Uses != 0 {
		t.Errorf("expected uses untouched for an already enrolled student, got %d", jc.Uses)
	}
}

func TestEnrollWithCodeRejections(t *testing.T) {
	tests := []struct {
		name string
		code models.JoinCode
	}{
		{
			name: "inactive code",
			code: models.JoinCode{ID: "jc1", ClassID: "c1", Code: "ABC234", Active: false},
		},
		{
			name: "expired code",
			code: models.JoinCode{
				ID: "jc1", ClassID: "c1", Code: "ABC234", Active: true,
				ExpiresAt: time.Now().Add(-time.Hour),
			},
		},
		{
			name: "exhausted code",
			code: models.JoinCode{
				ID: "jc1", ClassID: "c1", Code: "ABC234", Active: true,
				MaxUses: 2, Uses: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			seedClassAndCode(t, env, tt.code)
			svc := newStudentService(env)

			_, err := svc.EnrollWithCode(&models.User{ID: "u1"}, "ABC234")
			if !errors.Is(err, ErrCodeInvalid) {
				t.Errorf("EnrollWithCode() error = %v, want %v", err, ErrCodeInvalid)
			}
		})
	}
}

func TestEnrollWithCodeUnknownCode(t *testing.T) {
	env := newTestEnv()
	svc := newStudentService(env)

	_, err := svc.EnrollWithCode(&models.User{ID: "u1"}, "NOPE")
	if !errors.Is(err, ErrCodeInvalid) {
		t.Errorf("EnrollWithCode() error = %v, want %v", err, ErrCodeInvalid)
	}
}

func TestMyClasses(t *testing.T) {
	env := newTestEnv()
	env.classes.CreateClass(models.Class{ID: "c1", Name: "Robotics"})
	env.classes.CreateClass(models.Class{ID: "c2", Name: "Coding"})
	env.enrollments.CreateEnrollment(models.Enrollment{ID: "e1", UserID: "u1", ClassID: "c2"})
	svc := newStudentService(env)

	classes, err := svc.MyClasses("u1")
	if err != nil {
		t.Fatalf("MyClasses() error = %v", err)
	}
	if len(classes) != 1 || classes[0].ID != "c2" {
		t.Fatalf("expected only c2, got %v", classes)
	}
}

func TestBootstrap(t *testing.T) {
	env := newTestEnv()
	seedCatalog(t, env)
	env.classes.CreateClass(models.Class{ID: "c1", Name: "Robotics"})
	env.enrollments.CreateEnrollment(models.Enrollment{
		ID: "e1", UserID: "u1", ClassID: "c1", RoleInClass: models.ClassRoleStudent,
	})
	env.users.CreateUser(models.User{ID: "u2", Email: "bob@school.org", DisplayName: "Bob", Role: models.RoleStudent})
	env.users.CreateUser(models.User{ID: "t1", Email: "teach@school.org", DisplayName: "Ms. Reyes", Role: models.RoleTeacher})
	env.enrollments.CreateEnrollment(models.Enrollment{
		ID: "e2", UserID: "u2", ClassID: "c1", RoleInClass: models.ClassRoleStudent,
	})
	env.enrollments.CreateEnrollment(models.Enrollment{
		ID: "e3", UserID: "t1", ClassID: "c1", RoleInClass: models.ClassRoleTeacher,
	})
	if err := env.catalog.SetClassMissions("c1", []string{"m1"}); err != nil {
		t.Fatalf("SetClassMissions() error = %v", err)
	}

	selSvc := NewSelectionService(env.selections, env.catalog)
	if _, err := selSvc.SaveValueSelections("u1", "c1", []ValuePick{{ValueID: "v1", CoinWeight: 3}}); err != nil {
		t.Fatalf("SaveValueSelections() error = %v", err)
	}

	svc := newStudentService(env)
	user := &models.User{ID: "u1", Role: models.RoleStudent}

	out, err := svc.Bootstrap(user, "c1")
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if len(out.Classes) != 1 {
		t.Errorf("expected 1 class, got %d", len(out.Classes))
	}
	if len(out.Values) != 4 {
		t.Errorf("expected 4 active values, got %d", len(out.Values))
	}
	if len(out.Missions) != 2 {
		t.Errorf("expected 2 active missions, got %d", len(out.Missions))
	}
	if len(out.AllowedMissions) != 1 || out.AllowedMissions[0] != "m1" {
		t.Errorf("expected allowed missions [m1], got %v", out.AllowedMissions)
	}
	if len(out.ValueSelections) != 1 {
		t.Errorf("expected 1 stored selection, got %d", len(out.ValueSelections))
	}
	if out.Vision != nil {
		t.Errorf("expected no vision yet, got %v", out.Vision)
	}
	if len(out.Peers) != 1 || out.Peers[0] != "Bob" {
		t.Errorf("expected classmate names without self or staff, got %v", out.Peers)
	}
}

func TestBootstrapWithoutClassSkipsClassState(t *testing.T) {
	env := newTestEnv()
	seedCatalog(t, env)
	svc := newStudentService(env)

	out, err := svc.Bootstrap(&models.User{ID: "u1"}, "")
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if out.AllowedMissions != nil {
		t.Errorf("expected no allowed missions without a class, got %v", out.AllowedMissions)
	}
	if out.MissionSelection != nil || out.Vision != nil {
		t.Error("expected no class-scoped state without a class")
	}
}
