package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/notification"
)

func notifBody(t *testing.T, recipientID string) []byte {
	return marchallObj(t, map[string]string{
		"recipient_id": recipientID,
		"subject":      "Homework",
		"body":         "Please check the attached homework.",
	})
}

func Test_notificationApi_createRule(t *testing.T) {
	app, env := setup(t)

	schoolID := "22222222-2222-4222-8222-222222222222"
	admin := createUser(t, env, "Admin", "admin@test.cd", account.RoleAdmin, "")
	alice := createUser(t, env, "Alice", "alice@test.cd", account.RoleTeacher, schoolID)
	bob := createUser(t, env, "Bob", "bob@test.cd", account.RoleTeacher, schoolID)

	linked := createUser(t, env, "Linked Parent", "linked@test.cd", account.RoleParent, "")
	linkedPar := createParentProfile(t, env, linked.ID)
	stranger := createUser(t, env, "Stranger Parent", "stranger@test.cd", account.RoleParent, "")
	createParentProfile(t, env, stranger.ID)

	std := createStudent(t, env, alice.ID, "1234567890", "Kid", "")
	linkParent(t, env, linkedPar.ID, std.ID)

	tests := []httpTest{
		{
			name: "admin notifies anyone", method: http.MethodPost, path: "/api/notifications",
			token: getToken(t, env.conf, admin), body: notifBody(t, stranger.ID), wantCode: http.StatusCreated,
		},
		{
			name: "teacher notifies a linked parent", method: http.MethodPost, path: "/api/notifications",
			token: getToken(t, env.conf, alice), body: notifBody(t, linked.ID), wantCode: http.StatusCreated,
		},
		{
			name: "teacher cannot cold-call a parent", method: http.MethodPost, path: "/api/notifications",
			token: getToken(t, env.conf, alice), body: notifBody(t, stranger.ID),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "link does not transfer between teachers", method: http.MethodPost, path: "/api/notifications",
			token: getToken(t, env.conf, bob), body: notifBody(t, linked.ID),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "teacher to teacher is fine", method: http.MethodPost, path: "/api/notifications",
			token: getToken(t, env.conf, alice), body: notifBody(t, bob.ID), wantCode: http.StatusCreated,
		},
		{
			name: "parents cannot send", method: http.MethodPost, path: "/api/notifications",
			token: getToken(t, env.conf, linked), body: notifBody(t, alice.ID),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "unknown recipient is a validation error", method: http.MethodPost, path: "/api/notifications",
			token: getToken(t, env.conf, admin), body: notifBody(t, "44444444-4444-4444-8444-444444444444"),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_notificationApi_access(t *testing.T) {
	app, env := setup(t)

	schoolID := "22222222-2222-4222-8222-222222222222"
	alice := createUser(t, env, "Alice", "alice@test.cd", account.RoleTeacher, schoolID)
	bob := createUser(t, env, "Bob", "bob@test.cd", account.RoleTeacher, schoolID)
	carol := createUser(t, env, "Carol", "carol@test.cd", account.RoleTeacher, schoolID)

	// alice sends to bob
	req, rec := newAuthRequest(http.MethodPost, "/api/notifications", getToken(t, env.conf, alice), notifBody(t, bob.ID))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var notif notification.Notification
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notif))

	aliceToken := getToken(t, env.conf, alice)
	bobToken := getToken(t, env.conf, bob)
	carolToken := getToken(t, env.conf, carol)

	tests := []httpTest{
		{name: "sender reads", path: "/api/notifications/" + notif.ID, token: aliceToken, wantCode: http.StatusOK},
		{name: "recipient reads", path: "/api/notifications/" + notif.ID, token: bobToken, wantCode: http.StatusOK},
		{
			name: "bystander denied", path: "/api/notifications/" + notif.ID, token: carolToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "absent is 404", path: "/api/notifications/44444444-4444-4444-8444-444444444444", token: aliceToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "only the recipient marks read", method: http.MethodPost, path: "/api/notifications/" + notif.ID + "/read",
			token: aliceToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "recipient marks read", method: http.MethodPost, path: "/api/notifications/" + notif.ID + "/read", token: bobToken, wantCode: http.StatusOK},
		{
			name: "bystander cannot delete", method: http.MethodDelete, path: "/api/notifications/" + notif.ID,
			token: carolToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "recipient deletes", method: http.MethodDelete, path: "/api/notifications/" + notif.ID, token: bobToken, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_notificationApi_queryListsInvolvedOnly(t *testing.T) {
	app, env := setup(t)

	schoolID := "22222222-2222-4222-8222-222222222222"
	alice := createUser(t, env, "Alice", "alice@test.cd", account.RoleTeacher, schoolID)
	bob := createUser(t, env, "Bob", "bob@test.cd", account.RoleTeacher, schoolID)
	carol := createUser(t, env, "Carol", "carol@test.cd", account.RoleTeacher, schoolID)

	req, rec := newAuthRequest(http.MethodPost, "/api/notifications", getToken(t, env.conf, alice), notifBody(t, bob.ID))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		usr  account.User
		want int
	}{
		{usr: alice, want: 1},
		{usr: bob, want: 1},
		{usr: carol, want: 0},
	}
	for _, tt := range tests {
		req, rec := newAuthRequest(http.MethodGet, "/api/notifications", getToken(t, env.conf, tt.usr))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		var notifs []notification.Notification
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifs))
		assert.Len(t, notifs, tt.want, tt.usr.Email)
	}
}
