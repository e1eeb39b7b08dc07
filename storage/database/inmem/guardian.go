package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/guardian"
	"github.com/trezcool/darasa/core/student"
)

type guardianRepository struct {
	db *DB
}

var _ guardian.Repository = (*guardianRepository)(nil) // interface compliance check

func NewGuardianRepository(db *DB) *guardianRepository {
	return &guardianRepository{db: db}
}

func (repo *guardianRepository) CreateParent(_ context.Context, par guardian.Parent, _ ...core.DBExecutor) (guardian.Parent, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	par.ID = uuid.New().String()
	repo.db.parents[par.ID] = &par
	return par, nil
}

func (repo *guardianRepository) GetParentByUserID(_ context.Context, userID string, _ ...core.DBExecutor) (guardian.Parent, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, par := range repo.db.parents {
		if par.UserID == userID {
			return *par, nil
		}
	}
	return guardian.Parent{}, guardian.ErrParentProfileMissing
}

func (repo *guardianRepository) LinkExists(_ context.Context, parentID, studentID string, _ ...core.DBExecutor) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.links[linkKey(parentID, studentID)]
	return ok, nil
}

// CreateLink replicates the transactional semantics of the SQL variant under
// one lock: duplicate pair fails closed, the birth-date write only lands
// while still unset, and a lost first-write race rejects rather than
// overwrites.
func (repo *guardianRepository) CreateLink(_ context.Context, parentID, studentID string, birthDate *time.Time) (guardian.Link, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := linkKey(parentID, studentID)
	if _, ok := repo.db.links[key]; ok {
		return guardian.Link{}, guardian.ErrAlreadyLinked
	}

	std, ok := repo.db.students[studentID]
	if !ok {
		return guardian.Link{}, student.ErrNotFound
	}
	if birthDate != nil {
		if std.BirthDate.Valid {
			return guardian.Link{}, guardian.ErrVerificationFailed
		}
		std.BirthDate.SetValid(birthDate.UTC())
		std.UpdatedAt = time.Now().UTC()
	}

	link := guardian.Link{
		ID:        uuid.New().String(),
		ParentID:  parentID,
		StudentID: studentID,
		CreatedAt: time.Now().UTC(),
	}
	repo.db.links[key] = &link
	return link, nil
}

func (repo *guardianRepository) QueryLinkedStudents(_ context.Context, parentID string, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0)
	for _, link := range repo.db.links {
		if link.ParentID != parentID {
			continue
		}
		if std, ok := repo.db.students[link.StudentID]; ok {
			students = append(students, *std)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *guardianRepository) ParentUserLinkedToTeacher(_ context.Context, parentUserID, teacherID string, _ ...core.DBExecutor) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var parentID string
	for _, par := range repo.db.parents {
		if par.UserID == parentUserID {
			parentID = par.ID
			break
		}
	}
	if parentID == "" {
		return false, nil
	}
	for _, link := range repo.db.links {
		if link.ParentID != parentID {
			continue
		}
		if std, ok := repo.db.students[link.StudentID]; ok && std.TeacherID == teacherID {
			return true, nil
		}
	}
	return false, nil
}
