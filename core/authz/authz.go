// Package authz holds the per-entity ownership predicates. Every handler
// loads its target first and authorizes second: resource absence is reported
// as not-found by the loading step, never masked as a denial here.
package authz

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/school"
)

const deniedMsg = "permission denied"

// Owned is any entity with a single owning teacher: students, subjects,
// assessments, report cards.
type Owned interface {
	OwnerID() string
}

// LinkChecker is the one store lookup the authorizer needs: whether a PARENT
// account is linked to at least one student owned by a given teacher.
type LinkChecker interface {
	ParentUserLinkedToTeacher(ctx context.Context, parentUserID, teacherID string, exec ...core.DBExecutor) (bool, error)
}

type Authorizer struct {
	links LinkChecker
}

func NewAuthorizer(links LinkChecker) *Authorizer {
	return &Authorizer{links: links}
}

// AuthorizeOwned admits admins and the owning teacher, nobody else.
func AuthorizeOwned(usr account.User, res Owned) error {
	if usr.IsAdmin() || res.OwnerID() == usr.ID {
		return nil
	}
	return core.NewForbiddenError(deniedMsg)
}

// AuthorizeSchool restricts school writes to admins; reads are also open to
// members of that school.
func AuthorizeSchool(usr account.User, sch school.School, write bool) error {
	if usr.IsAdmin() {
		return nil
	}
	if !write && usr.SchoolID.Valid && usr.SchoolID.String == sch.ID {
		return nil
	}
	return core.NewForbiddenError(deniedMsg)
}

// AuthorizeNotificationAccess covers read and delete: admins, the sender and
// the recipient.
func AuthorizeNotificationAccess(usr account.User, notif notification.Notification) error {
	if usr.IsAdmin() || notif.Involves(usr.ID) {
		return nil
	}
	return core.NewForbiddenError(deniedMsg)
}

// AuthorizeNotificationCreate admits admins and teachers. A teacher notifying
// a parent must be linked to them through at least one of their own students;
// a teacher may not cold-call arbitrary parents.
func (a *Authorizer) AuthorizeNotificationCreate(ctx context.Context, sender, recipient account.User) error {
	switch {
	case sender.IsAdmin():
		return nil
	case sender.IsTeacher():
		if !recipient.IsParent() {
			return nil
		}
		linked, err := a.links.ParentUserLinkedToTeacher(ctx, recipient.ID, sender.ID)
		if err != nil {
			return errors.Wrap(err, "checking parent-teacher link")
		}
		if linked {
			return nil
		}
		return core.NewForbiddenError(deniedMsg)
	default:
		return core.NewForbiddenError(deniedMsg)
	}
}
