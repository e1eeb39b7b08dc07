// Package inmemdb provides map-backed repositories for tests; the unique
// constraints the Postgres schema enforces are replicated here so linking
// races behave the same.
package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/guardian"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
)

type DB struct {
	mutex sync.RWMutex

	users         map[string]*account.User
	schools       map[string]*school.School
	students      map[string]*student.Student
	subjects      map[string]*academic.Subject
	assessments   map[string]*academic.Assessment
	reportCards   map[string]*academic.ReportCard
	notifications map[string]*notification.Notification
	parents       map[string]*guardian.Parent
	links         map[string]*guardian.Link // keyed by parentID+"/"+studentID
}

func Open() *DB {
	return &DB{
		users:         make(map[string]*account.User),
		schools:       make(map[string]*school.School),
		students:      make(map[string]*student.Student),
		subjects:      make(map[string]*academic.Subject),
		assessments:   make(map[string]*academic.Assessment),
		reportCards:   make(map[string]*academic.ReportCard),
		notifications: make(map[string]*notification.Notification),
		parents:       make(map[string]*guardian.Parent),
		links:         make(map[string]*guardian.Link),
	}
}

// Reset empties every table; tests call it between cases.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.users = make(map[string]*account.User)
	db.schools = make(map[string]*school.School)
	db.students = make(map[string]*student.Student)
	db.subjects = make(map[string]*academic.Subject)
	db.assessments = make(map[string]*academic.Assessment)
	db.reportCards = make(map[string]*academic.ReportCard)
	db.notifications = make(map[string]*notification.Notification)
	db.parents = make(map[string]*guardian.Parent)
	db.links = make(map[string]*guardian.Link)
}

func linkKey(parentID, studentID string) string {
	return parentID + "/" + studentID
}
