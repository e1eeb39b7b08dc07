package guardian_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/guardian"
	"github.com/trezcool/darasa/core/student"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

type testEnv struct {
	svc       *guardian.Service
	guardRepo guardian.Repository
	stdRepo   student.Repository
}

func setup() *testEnv {
	db := inmemdb.Open()
	guardRepo := inmemdb.NewGuardianRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	return &testEnv{
		svc:       guardian.NewService(guardRepo, stdRepo),
		guardRepo: guardRepo,
		stdRepo:   stdRepo,
	}
}

func (env *testEnv) createStudent(t *testing.T, teacherID, nisn, birthDate string) student.Student {
	t.Helper()
	now := time.Now().UTC()
	std := student.Student{
		NISN:      nisn,
		Name:      "Kid " + nisn,
		Grade:     "5",
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if birthDate != "" {
		bd, err := time.Parse(core.BirthDateLayout, birthDate)
		assert.NoError(t, err)
		std.BirthDate = null.TimeFrom(bd.UTC())
	}
	std, err := env.stdRepo.CreateStudent(context.Background(), std)
	assert.NoError(t, err)
	return std
}

func (env *testEnv) createParent(t *testing.T, userID string) guardian.Parent {
	t.Helper()
	par, err := env.svc.CreateProfile(context.Background(), userID, "+243991234567")
	assert.NoError(t, err)
	return par
}

func Test_Service_Link(t *testing.T) {
	ctx := context.Background()
	env := setup()

	env.createStudent(t, "teacher-1", "1234567890", "2010-05-01")

	parent := account.User{ID: "parent-1", Role: account.RoleParent}
	env.createParent(t, parent.ID)
	noProfile := account.User{ID: "parent-2", Role: account.RoleParent}

	tests := []struct {
		name    string
		usr     account.User
		req     guardian.LinkRequest
		wantErr error
	}{
		{
			name: "no parent profile", usr: noProfile,
			req:     guardian.LinkRequest{NISN: "1234567890", BirthDate: "2010-05-01"},
			wantErr: guardian.ErrParentProfileMissing,
		},
		{
			name: "unknown NISN", usr: parent,
			req:     guardian.LinkRequest{NISN: "5555555555", BirthDate: "2010-05-01"},
			wantErr: guardian.ErrStudentNotFound,
		},
		{
			name: "unparseable date", usr: parent,
			req:     guardian.LinkRequest{NISN: "1234567890", BirthDate: "01/05/2010"},
			wantErr: guardian.ErrInvalidDate,
		},
		{
			name: "wrong date", usr: parent,
			req:     guardian.LinkRequest{NISN: "1234567890", BirthDate: "2010-05-02"},
			wantErr: guardian.ErrVerificationFailed,
		},
		{
			name: "matching date links", usr: parent,
			req: guardian.LinkRequest{NISN: "1234567890", BirthDate: "2010-05-01"},
		},
		{
			name: "already linked", usr: parent,
			req:     guardian.LinkRequest{NISN: "1234567890", BirthDate: "2010-05-01"},
			wantErr: guardian.ErrAlreadyLinked,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			std, err := env.svc.Link(ctx, tt.usr, tt.req)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.req.NISN, std.NISN)
		})
	}
}

// The first successful link records the claimed birth date as ground truth;
// every later claim is checked against it.
func Test_Service_Link_firstWriteWins(t *testing.T) {
	ctx := context.Background()
	env := setup()

	std := env.createStudent(t, "teacher-1", "1234567890", "")
	assert.False(t, std.BirthDate.Valid)

	first := account.User{ID: "parent-1", Role: account.RoleParent}
	env.createParent(t, first.ID)
	second := account.User{ID: "parent-2", Role: account.RoleParent}
	env.createParent(t, second.ID)

	got, err := env.svc.Link(ctx, first, guardian.LinkRequest{NISN: "1234567890", BirthDate: "2010-05-01"})
	assert.NoError(t, err)
	assert.True(t, got.BirthDate.Valid)

	stored, err := env.stdRepo.GetStudentByID(ctx, std.ID)
	assert.NoError(t, err)
	assert.True(t, stored.BirthDate.Valid)

	_, err = env.svc.Link(ctx, second, guardian.LinkRequest{NISN: "1234567890", BirthDate: "2010-05-02"})
	assert.Equal(t, guardian.ErrVerificationFailed, err)

	_, err = env.svc.Link(ctx, second, guardian.LinkRequest{NISN: "1234567890", BirthDate: "2010-05-01"})
	assert.NoError(t, err)
}

// A lost race at the store fails closed: the duplicate pair is rejected and a
// losing birth-date write never overwrites the winner's.
func Test_Service_Link_raceFailsClosed(t *testing.T) {
	ctx := context.Background()
	env := setup()

	std := env.createStudent(t, "teacher-1", "1234567890", "")
	par := env.createParent(t, "parent-1")

	bd := time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := env.guardRepo.CreateLink(ctx, par.ID, std.ID, &bd)
	assert.NoError(t, err)

	_, err = env.guardRepo.CreateLink(ctx, par.ID, std.ID, &bd)
	assert.Equal(t, guardian.ErrAlreadyLinked, err)

	// another parent lost the first-write race between check and commit
	other := env.createParent(t, "parent-2")
	otherBD := time.Date(2011, 2, 3, 0, 0, 0, 0, time.UTC)
	_, err = env.guardRepo.CreateLink(ctx, other.ID, std.ID, &otherBD)
	assert.Equal(t, guardian.ErrVerificationFailed, err)

	stored, err := env.stdRepo.GetStudentByID(ctx, std.ID)
	assert.NoError(t, err)
	assert.Equal(t, bd, stored.BirthDate.Time)
}

// Birth dates compare date-only; the recorded value may carry a time-of-day or
// a non-UTC offset without failing a matching claim.
func Test_Service_Link_dateOnlyCompare(t *testing.T) {
	ctx := context.Background()
	env := setup()

	std := env.createStudent(t, "teacher-1", "1234567890", "")
	first := env.createParent(t, "parent-1")

	// 15:30 UTC+1 is still May 1st once normalized
	bd := time.Date(2010, 5, 1, 15, 30, 0, 0, time.FixedZone("CAT", 3600))
	_, err := env.guardRepo.CreateLink(ctx, first.ID, std.ID, &bd)
	assert.NoError(t, err)

	parent := account.User{ID: "parent-2", Role: account.RoleParent}
	env.createParent(t, parent.ID)

	_, err = env.svc.Link(ctx, parent, guardian.LinkRequest{NISN: "1234567890", BirthDate: "2010-05-01"})
	assert.NoError(t, err)
}

func Test_Service_LinkedStudents(t *testing.T) {
	ctx := context.Background()
	env := setup()

	parent := account.User{ID: "parent-1", Role: account.RoleParent}
	par := env.createParent(t, parent.ID)

	_, err := env.svc.LinkedStudents(ctx, account.User{ID: "parent-2"})
	assert.Equal(t, guardian.ErrParentProfileMissing, err)

	students, err := env.svc.LinkedStudents(ctx, parent)
	assert.NoError(t, err)
	assert.Empty(t, students)

	a := env.createStudent(t, "teacher-1", "1234567890", "2010-05-01")
	b := env.createStudent(t, "teacher-2", "0987654321", "2011-02-03")
	for _, std := range []student.Student{a, b} {
		_, err = env.guardRepo.CreateLink(ctx, par.ID, std.ID, nil)
		assert.NoError(t, err)
	}

	students, err = env.svc.LinkedStudents(ctx, parent)
	assert.NoError(t, err)
	assert.Len(t, students, 2)
}
