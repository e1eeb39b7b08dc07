package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

const testPassword = "V3ryS3cretPass!"

func setup() (*account.Service, account.Repository) {
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	return account.NewService(repo), repo
}

func createUser(t *testing.T, repo account.Repository, email string, active bool) account.User {
	t.Helper()
	now := time.Now().UTC()
	usr := account.User{
		Name:      "Jane Doe",
		Email:     email,
		Role:      account.RoleTeacher,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(testPassword); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

// Every credential failure reads the same; a caller cannot probe which emails
// exist.
func Test_Service_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup()

	usr := createUser(t, repo, "jane@test.cd", true)
	createUser(t, repo, "inactive@test.cd", false)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown email", email: "nobody@test.cd", pwd: testPassword, wantErr: account.ErrAuthenticationFailed},
		{name: "wrong password", email: "jane@test.cd", pwd: "WrongPass!", wantErr: account.ErrAuthenticationFailed},
		{name: "deactivated account", email: "inactive@test.cd", pwd: testPassword, wantErr: account.ErrAccountDeactivated},
		{name: "ok", email: "jane@test.cd", pwd: testPassword},
		{name: "email is case-insensitive", email: " Jane@Test.CD ", pwd: testPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, usr.ID, got.ID)
			assert.False(t, got.LastLogin.IsZero())
		})
	}
}

func Test_Service_AssignSchool(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup()

	usr := createUser(t, repo, "jane@test.cd", true)
	assert.False(t, usr.HasSchool())

	usr, err := svc.AssignSchool(ctx, usr, "school-1")
	assert.NoError(t, err)
	assert.True(t, usr.HasSchool())
	assert.Equal(t, "school-1", usr.SchoolID.String)

	// write-once, even with a stale copy of the user
	stale := usr
	stale.SchoolID.Valid = false
	for _, u := range []account.User{usr, stale} {
		_, err = svc.AssignSchool(ctx, u, "school-2")
		assert.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
	}

	got, err := svc.GetByID(ctx, usr.ID)
	assert.NoError(t, err)
	assert.Equal(t, "school-1", got.SchoolID.String)
}

func Test_Service_Register(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup()

	usr, err := svc.Register(ctx, account.NewUser{
		Name:     "Jane Doe",
		Email:    "jane@test.cd",
		Role:     account.RoleParent,
		Password: testPassword,
	})
	assert.NoError(t, err)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword(testPassword))

	err = svc.CheckUniqueness(ctx, "jane@test.cd")
	assert.IsType(t, &core.ValidationError{}, err)
}

func Test_Service_CreateAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup()

	usr, err := svc.CreateAdmin(ctx, account.NewAdmin{
		Name:     "Root",
		Email:    "root@test.cd",
		Password: testPassword,
	})
	assert.NoError(t, err)
	assert.True(t, usr.IsAdmin())
	assert.True(t, usr.IsActive)
}
