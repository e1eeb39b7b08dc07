package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/authz"
	"github.com/trezcool/darasa/core/guardian"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

var (
	admin  = account.User{ID: "admin-1", Role: account.RoleAdmin}
	alice  = account.User{ID: "alice", Role: account.RoleTeacher, SchoolID: null.StringFrom("school-1")}
	bob    = account.User{ID: "bob", Role: account.RoleTeacher, SchoolID: null.StringFrom("school-1")}
	parent = account.User{ID: "parent-1", Role: account.RoleParent}
)

func checkDenied(t *testing.T, err error, wantDenied bool) {
	t.Helper()
	if wantDenied {
		assert.Error(t, err)
		assert.True(t, core.IsForbidden(err))
	} else {
		assert.NoError(t, err)
	}
}

func TestAuthorizeOwned(t *testing.T) {
	std := student.Student{ID: "std-1", TeacherID: alice.ID}

	tests := []struct {
		name       string
		usr        account.User
		wantDenied bool
	}{
		{name: "owner", usr: alice},
		{name: "admin", usr: admin},
		{name: "other teacher", usr: bob, wantDenied: true},
		{name: "parent", usr: parent, wantDenied: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkDenied(t, authz.AuthorizeOwned(tt.usr, std), tt.wantDenied)
		})
	}
}

func TestAuthorizeSchool(t *testing.T) {
	sch := school.School{ID: "school-1"}
	other := school.School{ID: "school-2"}

	tests := []struct {
		name       string
		usr        account.User
		sch        school.School
		write      bool
		wantDenied bool
	}{
		{name: "member reads own school", usr: alice, sch: sch},
		{name: "member cannot read another school", usr: alice, sch: other, wantDenied: true},
		{name: "member cannot write own school", usr: alice, sch: sch, write: true, wantDenied: true},
		{name: "unassigned teacher cannot read", usr: account.User{ID: "t", Role: account.RoleTeacher}, sch: sch, wantDenied: true},
		{name: "admin reads any", usr: admin, sch: other},
		{name: "admin writes any", usr: admin, sch: other, write: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkDenied(t, authz.AuthorizeSchool(tt.usr, tt.sch, tt.write), tt.wantDenied)
		})
	}
}

func TestAuthorizeNotificationAccess(t *testing.T) {
	notif := notification.Notification{ID: "n-1", SenderID: alice.ID, RecipientID: parent.ID}

	tests := []struct {
		name       string
		usr        account.User
		wantDenied bool
	}{
		{name: "sender", usr: alice},
		{name: "recipient", usr: parent},
		{name: "admin", usr: admin},
		{name: "bystander", usr: bob, wantDenied: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkDenied(t, authz.AuthorizeNotificationAccess(tt.usr, notif), tt.wantDenied)
		})
	}
}

func TestAuthorizer_AuthorizeNotificationCreate(t *testing.T) {
	ctx := context.Background()

	db := inmemdb.Open()
	guardRepo := inmemdb.NewGuardianRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	a := authz.NewAuthorizer(guardRepo)

	// parent is linked to one of alice's students, none of bob's
	std, err := stdRepo.CreateStudent(ctx, student.Student{NISN: "1234567890", Name: "Kid", TeacherID: alice.ID})
	assert.NoError(t, err)
	par, err := guardRepo.CreateParent(ctx, guardian.Parent{UserID: parent.ID})
	assert.NoError(t, err)
	_, err = guardRepo.CreateLink(ctx, par.ID, std.ID, nil)
	assert.NoError(t, err)

	stranger := account.User{ID: "parent-2", Role: account.RoleParent}

	tests := []struct {
		name       string
		sender     account.User
		recipient  account.User
		wantDenied bool
	}{
		{name: "admin to anyone", sender: admin, recipient: stranger},
		{name: "teacher to teacher", sender: alice, recipient: bob},
		{name: "teacher to linked parent", sender: alice, recipient: parent},
		{name: "teacher to unlinked parent", sender: alice, recipient: stranger, wantDenied: true},
		{name: "link does not transfer between teachers", sender: bob, recipient: parent, wantDenied: true},
		{name: "parent cannot send", sender: parent, recipient: alice, wantDenied: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkDenied(t, a.AuthorizeNotificationCreate(ctx, tt.sender, tt.recipient), tt.wantDenied)
		})
	}
}
