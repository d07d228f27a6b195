package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
)

type logRepository struct {
	db *logTable
}

var _ fiche.LogRepository = (*logRepository)(nil)

func NewLogRepository(db *DB) *logRepository {
	return &logRepository{db: db.log}
}

func (repo *logRepository) CreateLog(_ context.Context, l fiche.ProcessingLog) (fiche.ProcessingLog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	l.ID = uuid.New().String()
	l.ScheduleIDs = append([]string(nil), l.ScheduleIDs...)
	repo.db.table = append(repo.db.table, l)
	return l, nil
}

func (repo *logRepository) QueryNotificationLogs(_ context.Context, filter fiche.NotificationFilter) ([]fiche.ProcessingLog, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	prefix := strings.ToLower(filter.FicheNumber)
	logs := make([]fiche.ProcessingLog, 0)
	for _, l := range repo.db.table {
		if !l.IsNotification() {
			continue
		}
		if prefix != "" && !strings.HasPrefix(strings.ToLower(l.FicheNumber), prefix) {
			continue
		}
		logs = append(logs, l)
	}

	// notified first, latest notification first, then latest processing first
	sort.SliceStable(logs, func(i, j int) bool {
		a, b := logs[i], logs[j]
		if a.NotificationSentAt.Valid != b.NotificationSentAt.Valid {
			return a.NotificationSentAt.Valid
		}
		if a.NotificationSentAt.Valid && !a.NotificationSentAt.Time.Equal(b.NotificationSentAt.Time) {
			return a.NotificationSentAt.Time.After(b.NotificationSentAt.Time)
		}
		return a.ProcessedAt.After(b.ProcessedAt)
	})
	return logs, nil
}
