package guardian

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/student"
)

// Linking failures are distinct, user-reportable kinds; handlers must not
// collapse them into a generic error.
var (
	ErrParentProfileMissing = errors.New("no parent profile for this account")
	ErrStudentNotFound      = errors.New("no student matches this NISN")
	ErrAlreadyLinked        = errors.New("this student is already linked to your account")
	ErrInvalidDate          = errors.New("invalid birth date")
	ErrVerificationFailed   = errors.New("birth date verification failed")
)

type (
	Repository interface {
		CreateParent(ctx context.Context, par Parent, exec ...core.DBExecutor) (Parent, error)
		GetParentByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (Parent, error)
		LinkExists(ctx context.Context, parentID, studentID string, exec ...core.DBExecutor) (bool, error)
		// CreateLink inserts the link row and, when birthDate is non-nil,
		// records the student's birth date, both in a single transaction.
		// The birth-date write only applies while the column is still NULL;
		// a duplicate link row yields ErrAlreadyLinked.
		CreateLink(ctx context.Context, parentID, studentID string, birthDate *time.Time) (Link, error)
		QueryLinkedStudents(ctx context.Context, parentID string, exec ...core.DBExecutor) ([]student.Student, error)
		// ParentUserLinkedToTeacher reports whether the PARENT account has at
		// least one linked student owned by the given teacher.
		ParentUserLinkedToTeacher(ctx context.Context, parentUserID, teacherID string, exec ...core.DBExecutor) (bool, error)
	}

	ServiceInterface interface {
		CreateProfile(ctx context.Context, userID, phone string) (Parent, error)
		GetProfile(ctx context.Context, userID string) (Parent, error)
		Link(ctx context.Context, usr account.User, req LinkRequest) (student.Student, error)
		LinkedStudents(ctx context.Context, usr account.User) ([]student.Student, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, students student.Repository) *Service {
	return &Service{repo: repo, students: students}
}

func (svc *Service) CreateProfile(ctx context.Context, userID, phone string) (Parent, error) {
	par := Parent{
		UserID:    userID,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateParent(ctx, par)
}

func (svc *Service) GetProfile(ctx context.Context, userID string) (Parent, error) {
	return svc.repo.GetParentByUserID(ctx, userID)
}

// Link runs the parent-to-student verification protocol:
//
//  1. the caller must have a Parent profile,
//  2. the NISN must resolve to a Student,
//  3. the pair must not be linked yet,
//  4. the claimed birth date must parse,
//  5. against a recorded birth date the claim must match date-only;
//     against an unrecorded one the claim is written as ground truth
//     (trust-on-first-use: there is no re-verification path if the first
//     writer was wrong),
//  6. the link and the optional birth-date write commit atomically.
//
// Two parents racing for the same unlinked student both pass step 3; the
// unique (parent, student) constraint decides the winner and the loser gets
// ErrAlreadyLinked rather than a second link.
func (svc *Service) Link(ctx context.Context, usr account.User, req LinkRequest) (student.Student, error) {
	par, err := svc.repo.GetParentByUserID(ctx, usr.ID)
	if err != nil {
		if errors.Cause(err) == ErrParentProfileMissing {
			return student.Student{}, ErrParentProfileMissing
		}
		return student.Student{}, errors.Wrap(err, "finding parent profile")
	}

	std, err := svc.students.GetStudentByNISN(ctx, req.NISN)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, ErrStudentNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student by NISN")
	}

	linked, err := svc.repo.LinkExists(ctx, par.ID, std.ID)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "checking existing link")
	}
	if linked {
		return student.Student{}, ErrAlreadyLinked
	}

	claimed, err := time.Parse(core.BirthDateLayout, req.BirthDate)
	if err != nil {
		return student.Student{}, ErrInvalidDate
	}
	claimed = claimed.UTC()

	var birthDateWrite *time.Time
	if std.BirthDate.Valid {
		if !sameDate(std.BirthDate.Time, claimed) {
			return student.Student{}, ErrVerificationFailed
		}
	} else {
		birthDateWrite = &claimed
	}

	if _, err = svc.repo.CreateLink(ctx, par.ID, std.ID, birthDateWrite); err != nil {
		if errors.Cause(err) == ErrAlreadyLinked {
			return student.Student{}, ErrAlreadyLinked
		}
		return student.Student{}, errors.Wrap(err, "creating link")
	}

	if birthDateWrite != nil {
		std.BirthDate.SetValid(*birthDateWrite)
	}
	return std, nil
}

func (svc *Service) LinkedStudents(ctx context.Context, usr account.User) ([]student.Student, error) {
	par, err := svc.repo.GetParentByUserID(ctx, usr.ID)
	if err != nil {
		if errors.Cause(err) == ErrParentProfileMissing {
			return nil, ErrParentProfileMissing
		}
		return nil, errors.Wrap(err, "finding parent profile")
	}
	return svc.repo.QueryLinkedStudents(ctx, par.ID)
}

// sameDate compares the calendar date only; time-of-day and timezone offsets
// recorded with either value never matter.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
