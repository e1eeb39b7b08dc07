package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) *academicRepository {
	return &academicRepository{db: db}
}

// Subjects

func (repo *academicRepository) CreateSubject(_ context.Context, sub academic.Subject, _ ...core.DBExecutor) (academic.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = uuid.New().String()
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *academicRepository) QuerySubjectsByTeacher(_ context.Context, teacherID string, _ ...core.DBExecutor) ([]academic.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]academic.Subject, 0)
	for _, sub := range repo.db.subjects {
		if sub.TeacherID == teacherID {
			subjects = append(subjects, *sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *academicRepository) GetSubjectByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return academic.Subject{}, academic.ErrSubjectNotFound
}

func (repo *academicRepository) UpdateSubject(_ context.Context, sub academic.Subject, _ ...core.DBExecutor) (academic.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[sub.ID]; !ok {
		return academic.Subject{}, academic.ErrSubjectNotFound
	}
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *academicRepository) DeleteSubjectByID(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.subjects, id)
	return nil
}

// Assessments

func (repo *academicRepository) CreateAssessment(_ context.Context, ass academic.Assessment, _ ...core.DBExecutor) (academic.Assessment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ass.ID = uuid.New().String()
	repo.db.assessments[ass.ID] = &ass
	return ass, nil
}

func (repo *academicRepository) QueryAssessmentsByTeacher(_ context.Context, teacherID string, _ ...core.DBExecutor) ([]academic.Assessment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	asses := make([]academic.Assessment, 0)
	for _, ass := range repo.db.assessments {
		if ass.TeacherID == teacherID {
			asses = append(asses, *ass)
		}
	}
	sort.Slice(asses, func(i, j int) bool { return asses[i].CreatedAt.After(asses[j].CreatedAt) })
	return asses, nil
}

func (repo *academicRepository) GetAssessmentByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Assessment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ass, ok := repo.db.assessments[id]; ok {
		return *ass, nil
	}
	return academic.Assessment{}, academic.ErrAssessmentNotFound
}

func (repo *academicRepository) UpdateAssessment(_ context.Context, ass academic.Assessment, _ ...core.DBExecutor) (academic.Assessment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assessments[ass.ID]; !ok {
		return academic.Assessment{}, academic.ErrAssessmentNotFound
	}
	repo.db.assessments[ass.ID] = &ass
	return ass, nil
}

func (repo *academicRepository) DeleteAssessmentByID(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.assessments, id)
	return nil
}

// Report cards

func (repo *academicRepository) CreateReportCard(_ context.Context, rc academic.ReportCard, _ ...core.DBExecutor) (academic.ReportCard, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rc.ID = uuid.New().String()
	repo.db.reportCards[rc.ID] = &rc
	return rc, nil
}

func (repo *academicRepository) QueryReportCardsByTeacher(_ context.Context, teacherID string, _ ...core.DBExecutor) ([]academic.ReportCard, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cards := make([]academic.ReportCard, 0)
	for _, rc := range repo.db.reportCards {
		if rc.TeacherID == teacherID {
			cards = append(cards, *rc)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CreatedAt.After(cards[j].CreatedAt) })
	return cards, nil
}

func (repo *academicRepository) GetReportCardByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.ReportCard, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rc, ok := repo.db.reportCards[id]; ok {
		return *rc, nil
	}
	return academic.ReportCard{}, academic.ErrReportCardNotFound
}

func (repo *academicRepository) UpdateReportCard(_ context.Context, rc academic.ReportCard, _ ...core.DBExecutor) (academic.ReportCard, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.reportCards[rc.ID]; !ok {
		return academic.ReportCard{}, academic.ErrReportCardNotFound
	}
	repo.db.reportCards[rc.ID] = &rc
	return rc, nil
}

func (repo *academicRepository) DeleteReportCardByID(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.reportCards, id)
	return nil
}
