package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/authz"
	"github.com/trezcool/darasa/core/guardian"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

const testPassword = "V3ryS3cretPass!"

var (
	errNoAuth    = errResp{Error: "user not authenticated"}
	errForbidden = errResp{Error: "permission denied"}
	errNotFound  = errResp{Error: "not found"}
)

func testConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Darasa",
		SecretKey: []byte("0123456789abcdef-test-only"),
		Server: core.ServerConfig{
			JWTExpirationDelta: 24 * time.Hour,
			CookieName:         "token",
		},
	}
}

type testEnv struct {
	conf        *core.Config
	db          *inmemdb.DB
	usrRepo     account.Repository
	stdRepo     student.Repository
	guardRepo   guardian.Repository
	accountSvc  account.ServiceInterface
	guardianSvc guardian.ServiceInterface
}

func setup(t *testing.T) (*Server, *testEnv) {
	t.Helper()

	conf := testConfig()
	db := inmemdb.Open()

	usrRepo := inmemdb.NewUserRepository(db)
	schRepo := inmemdb.NewSchoolRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	acaRepo := inmemdb.NewAcademicRepository(db)
	notifRepo := inmemdb.NewNotificationRepository(db)
	guardRepo := inmemdb.NewGuardianRepository(db)

	accountSvc := account.NewService(usrRepo)
	guardianSvc := guardian.NewService(guardRepo, stdRepo)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	core.InitValidators(validate, trans)
	account.InitValidators(validate, trans)

	app := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      testLogger{t},
		AccountSvc:  accountSvc,
		SchoolSvc:   school.NewService(schRepo),
		StudentSvc:  student.NewService(stdRepo),
		AcademicSvc: academic.NewService(acaRepo),
		NotifSvc:    notification.NewService(notifRepo),
		GuardianSvc: guardianSvc,
		Authorizer:  authz.NewAuthorizer(guardRepo),
		Validate:    validate,
		Translator:  trans,
	})

	return app, &testEnv{
		conf:        conf,
		db:          db,
		usrRepo:     usrRepo,
		stdRepo:     stdRepo,
		guardRepo:   guardRepo,
		accountSvc:  accountSvc,
		guardianSvc: guardianSvc,
	}
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Enable(bool) {}
func (l testLogger) Debug(msg string, args ...interface{}) {
	l.t.Logf("DEBUG: %s %v", msg, args)
}
func (l testLogger) Info(msg string, args ...interface{}) {
	l.t.Logf("INFO: %s %v", msg, args)
}
func (l testLogger) Warn(msg string, args ...interface{}) {
	l.t.Logf("WARN: %s %v", msg, args)
}
func (l testLogger) Error(msg string, args ...interface{}) {
	l.t.Logf("ERROR: %s %v", msg, args)
}
func (l testLogger) Fatal(msg string, args ...interface{}) {
	l.t.Fatalf("FATAL: %s %v", msg, args)
}

func testContext() context.Context {
	return context.Background()
}

// seeding helpers

func createUser(t *testing.T, env *testEnv, name, email, role, schoolID string) account.User {
	t.Helper()
	now := time.Now().UTC()
	usr := account.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if schoolID != "" {
		usr.SchoolID = null.StringFrom(schoolID)
	}
	if err := usr.SetPassword(testPassword); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createInactiveUser(t *testing.T, env *testEnv, name, email, role string) account.User {
	t.Helper()
	now := time.Now().UTC()
	usr := account.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(testPassword); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func schoolFixture() school.NewSchool {
	return school.NewSchool{Name: "Mwanga Primary", Address: "12 Lakeside Rd", Type: school.TypePrimary}
}

func sessionCookieFrom(t *testing.T, cookies []*http.Cookie) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func createStudent(t *testing.T, env *testEnv, teacherID, nisn, name, birthDate string) student.Student {
	t.Helper()
	now := time.Now().UTC()
	std := student.Student{
		NISN:      nisn,
		Name:      name,
		Grade:     "5",
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if birthDate != "" {
		bd, err := time.Parse(core.BirthDateLayout, birthDate)
		if err != nil {
			t.Fatalf("parsing birth date: %v", err)
		}
		std.BirthDate = null.TimeFrom(bd.UTC())
	}
	std, err := env.stdRepo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return std
}

func createParentProfile(t *testing.T, env *testEnv, userID string) guardian.Parent {
	t.Helper()
	par, err := env.guardRepo.CreateParent(context.Background(), guardian.Parent{
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateParent(): %v", err)
	}
	return par
}

func linkParent(t *testing.T, env *testEnv, parentID, studentID string) {
	t.Helper()
	if _, err := env.guardRepo.CreateLink(context.Background(), parentID, studentID, nil); err != nil {
		t.Fatalf("CreateLink(): %v", err)
	}
}

// request helpers

type errResp struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr account.User) string {
	t.Helper()
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
