package inmemdb

import (
	"sync"

	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
)

type (
	DB struct {
		catalog *catalogTable
		log     *logTable
	}

	catalogTable struct {
		sync.RWMutex
		instructors map[string]*fiche.Instructor
		fiches      map[string]*fiche.Fiche
		schedules   map[string]*fiche.Schedule
	}

	logTable struct {
		sync.RWMutex
		table []fiche.ProcessingLog
	}
)

func Open() *DB {
	return &DB{
		catalog: &catalogTable{
			instructors: make(map[string]*fiche.Instructor),
			fiches:      make(map[string]*fiche.Fiche),
			schedules:   make(map[string]*fiche.Schedule),
		},
		log: new(logTable),
	}
}

func (db *DB) AddInstructor(i fiche.Instructor) {
	db.catalog.Lock()
	defer db.catalog.Unlock()
	db.catalog.instructors[i.ID] = &i
}

func (db *DB) AddFiche(f fiche.Fiche) {
	db.catalog.Lock()
	defer db.catalog.Unlock()
	db.catalog.fiches[f.ID] = &f
}

func (db *DB) AddSchedule(s fiche.Schedule) {
	db.catalog.Lock()
	defer db.catalog.Unlock()
	db.catalog.schedules[s.ID] = &s
}

// Schedule returns a copy of the stored schedule.
func (db *DB) Schedule(id string) (fiche.Schedule, bool) {
	db.catalog.RLock()
	defer db.catalog.RUnlock()
	if s, ok := db.catalog.schedules[id]; ok {
		return *s, true
	}
	return fiche.Schedule{}, false
}

// Logs returns a copy of every stored processing log, in insertion order.
func (db *DB) Logs() []fiche.ProcessingLog {
	db.log.RLock()
	defer db.log.RUnlock()
	return append([]fiche.ProcessingLog(nil), db.log.table...)
}
