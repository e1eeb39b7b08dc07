package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/student"
)

func linkBody(t *testing.T, nisn, birthDate string) []byte {
	return marchallObj(t, map[string]string{"nisn": nisn, "birth_date": birthDate})
}

func Test_guardianApi_linkAgainstRecordedBirthDate(t *testing.T) {
	app, env := setup(t)

	schoolID := "22222222-2222-4222-8222-222222222222"
	teacher := createUser(t, env, "Teacher", "teacher@test.cd", account.RoleTeacher, schoolID)
	parent := createUser(t, env, "Parent", "parent@test.cd", account.RoleParent, "")
	createParentProfile(t, env, parent.ID)
	std := createStudent(t, env, teacher.ID, "1234567890", "Kid", "2010-05-01")
	token := getToken(t, env.conf, parent)

	tests := []httpTest{
		{
			name: "unknown NISN", method: http.MethodPost, path: "/api/guardian/links", token: token,
			body: linkBody(t, "5555555555", "2010-05-01"), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errResp{Error: "student not found"}),
		},
		{
			name: "malformed NISN never reaches the store", method: http.MethodPost, path: "/api/guardian/links",
			token: token, body: linkBody(t, "123", "2010-05-01"), wantCode: http.StatusBadRequest,
		},
		{
			name: "unparseable date", method: http.MethodPost, path: "/api/guardian/links", token: token,
			body: linkBody(t, "1234567890", "01/05/2010"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, errResp{Error: "invalid birth date"}),
		},
		{
			name: "wrong birth date", method: http.MethodPost, path: "/api/guardian/links", token: token,
			body: linkBody(t, "1234567890", "2010-05-02"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, errResp{Error: "student verification failed"}),
		},
		{
			name: "matching birth date links", method: http.MethodPost, path: "/api/guardian/links", token: token,
			body: linkBody(t, "1234567890", "2010-05-01"), wantCode: http.StatusCreated,
		},
		{
			name: "relinking the same pair", method: http.MethodPost, path: "/api/guardian/links", token: token,
			body: linkBody(t, "1234567890", "2010-05-01"), wantCode: http.StatusConflict,
			wantData: marchallObj(t, errResp{Error: "student already linked to this account"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the link shows up in the listing
	req, rec := newAuthRequest(http.MethodGet, "/api/guardian/links", token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var students []student.Student
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	if assert.Len(t, students, 1) {
		assert.Equal(t, std.ID, students[0].ID)
	}
}

// First write wins: the first successful link records the claimed birth date
// as ground truth, later claims are verified against it.
func Test_guardianApi_linkFirstWriteWins(t *testing.T) {
	app, env := setup(t)

	schoolID := "22222222-2222-4222-8222-222222222222"
	teacher := createUser(t, env, "Teacher", "teacher@test.cd", account.RoleTeacher, schoolID)
	std := createStudent(t, env, teacher.ID, "1234567890", "Kid", "")
	assert.False(t, std.BirthDate.Valid)

	first := createUser(t, env, "First Parent", "first@test.cd", account.RoleParent, "")
	createParentProfile(t, env, first.ID)
	second := createUser(t, env, "Second Parent", "second@test.cd", account.RoleParent, "")
	createParentProfile(t, env, second.ID)

	// no recorded date: the first claim is accepted and written
	req, rec := newAuthRequest(http.MethodPost, "/api/guardian/links", getToken(t, env.conf, first),
		linkBody(t, "1234567890", "2010-05-01"))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	got, err := env.stdRepo.GetStudentByID(testContext(), std.ID)
	assert.NoError(t, err)
	assert.True(t, got.BirthDate.Valid)

	// a different claim now fails verification instead of overwriting
	req, rec = newAuthRequest(http.MethodPost, "/api/guardian/links", getToken(t, env.conf, second),
		linkBody(t, "1234567890", "2010-05-02"))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, errResp{Error: "student verification failed"}),
	}, rec)

	// a matching claim still links
	req, rec = newAuthRequest(http.MethodPost, "/api/guardian/links", getToken(t, env.conf, second),
		linkBody(t, "1234567890", "2010-05-01"))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func Test_guardianApi_linkNeedsParentProfile(t *testing.T) {
	app, env := setup(t)

	schoolID := "22222222-2222-4222-8222-222222222222"
	teacher := createUser(t, env, "Teacher", "teacher@test.cd", account.RoleTeacher, schoolID)
	createStudent(t, env, teacher.ID, "1234567890", "Kid", "2010-05-01")

	// a PARENT account missing its profile cannot link
	parent := createUser(t, env, "Parent", "parent@test.cd", account.RoleParent, "")
	req, rec := newAuthRequest(http.MethodPost, "/api/guardian/links", getToken(t, env.conf, parent),
		linkBody(t, "1234567890", "2010-05-01"))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, errResp{Error: "parent profile missing"}),
	}, rec)

	// neither can any other role
	req, rec = newAuthRequest(http.MethodPost, "/api/guardian/links", getToken(t, env.conf, teacher),
		linkBody(t, "1234567890", "2010-05-01"))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
