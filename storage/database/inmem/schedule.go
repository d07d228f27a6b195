package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
)

type scheduleRepository struct {
	db *catalogTable
}

var (
	_ fiche.ScheduleRepository    = (*scheduleRepository)(nil)
	_ fiche.MaintenanceRepository = (*scheduleRepository)(nil)
)

func NewScheduleRepository(db *DB) *scheduleRepository {
	return &scheduleRepository{db: db.catalog}
}

func isPending(s *fiche.Schedule, cutoff time.Time) bool {
	return s.EndsAt.Before(cutoff) &&
		(!s.Graded.Valid || !s.Graded.Bool) &&
		(!s.Gradable.Valid || s.Gradable.Bool)
}

func (repo *scheduleRepository) PendingGroups(_ context.Context, cutoff time.Time) ([]fiche.ScheduleGroup, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	groups := make(map[string]*fiche.ScheduleGroup)
	for _, s := range repo.db.schedules {
		if !isPending(s, cutoff) {
			continue
		}
		f, ok := repo.db.fiches[s.FicheID]
		if !ok {
			continue
		}
		g, ok := groups[f.ID]
		if !ok {
			g = &fiche.ScheduleGroup{FicheID: f.ID, FicheNumber: f.Number, ProgramName: f.ProgramName}
			if i, ok := repo.db.instructors[f.OwnerID]; ok {
				g.InstructorID = i.ID
				g.InstructorName = i.Name
				g.InstructorEmail = i.Email
				g.InstructorPersonalEmail = i.PersonalEmail
			}
			groups[f.ID] = g
		}
		g.ScheduleIDs = append(g.ScheduleIDs, s.ID)
	}

	result := make([]fiche.ScheduleGroup, 0, len(groups))
	for _, g := range groups {
		sort.Strings(g.ScheduleIDs)
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].FicheNumber != result[j].FicheNumber {
			return result[i].FicheNumber < result[j].FicheNumber
		}
		return result[i].FicheID < result[j].FicheID
	})
	return result, nil
}

func (repo *scheduleRepository) update(ids []string, fn func(s *fiche.Schedule)) {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		if s, ok := repo.db.schedules[id]; ok {
			fn(s)
		}
	}
}

func (repo *scheduleRepository) MarkGraded(_ context.Context, ids []string, upd fiche.GradeUpdate) error {
	repo.update(ids, func(s *fiche.Schedule) {
		s.Graded = null.BoolFrom(true)
		s.Gradable = null.BoolFrom(true)
		s.GradeDate = upd.GradeDate
		s.GradeStatus = upd.StatusLabel
		s.GradedByProcess = upd.Process
		s.QualifiableDate = null.Time{}
	})
	return nil
}

func (repo *scheduleRepository) MarkPending(_ context.Context, ids []string, upd fiche.GradeUpdate, qualifiableFuture bool) error {
	repo.update(ids, func(s *fiche.Schedule) {
		s.Graded = null.BoolFrom(false)
		s.Gradable = null.BoolFrom(!qualifiableFuture)
		s.GradeDate = upd.GradeDate
		s.GradeStatus = upd.StatusLabel
		s.GradedByProcess = upd.Process
		s.QualifiableDate = null.Time{}
	})
	return nil
}

func (repo *scheduleRepository) InitGradedFlags(_ context.Context) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	var n int64
	for _, s := range repo.db.schedules {
		if !s.Graded.Valid {
			s.Graded = null.BoolFrom(false)
			n++
		}
	}
	return n, nil
}

func (repo *scheduleRepository) GradedTotals(_ context.Context) (fiche.GradedTotals, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	totals := fiche.GradedTotals{All: len(repo.db.schedules)}
	for _, s := range repo.db.schedules {
		if !s.Graded.Valid {
			continue
		}
		if s.Graded.Bool {
			totals.Graded++
		} else {
			totals.Pending++
		}
	}
	return totals, nil
}

func (repo *scheduleRepository) UngradedSamples(_ context.Context, limit int) ([]fiche.UngradedSample, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]string, 0, len(repo.db.schedules))
	for id, s := range repo.db.schedules {
		if s.Graded.Valid && !s.Graded.Bool {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	samples := make([]fiche.UngradedSample, 0, len(ids))
	for _, id := range ids {
		sample := fiche.UngradedSample{ScheduleID: id}
		if f, ok := repo.db.fiches[repo.db.schedules[id].FicheID]; ok {
			sample.FicheNumber = f.Number
			sample.ProgramName = f.ProgramName
		}
		samples = append(samples, sample)
	}
	return samples, nil
}
