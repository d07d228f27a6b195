package fiche

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

const maxUngradedSamples = 5

type (
	GradedTotals struct {
		All     int `db:"total" json:"all"`
		Pending int `db:"pending" json:"pending"`
		Graded  int `db:"graded" json:"graded"`
	}

	UngradedSample struct {
		ScheduleID  string `db:"schedule_id"`
		FicheNumber string `db:"fiche_number"`
		ProgramName string `db:"program_name"`
	}

	MaintenanceRepository interface {
		// InitGradedFlags sets graded=false on schedules where it is unset and returns how many changed.
		InitGradedFlags(ctx context.Context) (int64, error)
		GradedTotals(ctx context.Context) (GradedTotals, error)
		UngradedSamples(ctx context.Context, limit int) ([]UngradedSample, error)
	}

	BootstrapReport struct {
		Updated int64
		Totals  GradedTotals
		Samples []string
	}
)

func (s UngradedSample) String() string {
	program := s.ProgramName
	if program == "" {
		program = "Programa sin nombre"
	}
	if s.FicheNumber != "" {
		return fmt.Sprintf("%s ficha: %s", program, s.FicheNumber)
	}
	id := s.ScheduleID
	if id == "" {
		id = "desconocido"
	}
	return fmt.Sprintf("%s (horario: %s)", program, id)
}

// BootstrapGradedFlags initializes the graded flag of legacy schedules so the
// pending query sees them, and reports the resulting totals.
func BootstrapGradedFlags(ctx context.Context, repo MaintenanceRepository) (BootstrapReport, error) {
	var rep BootstrapReport
	var err error

	if rep.Updated, err = repo.InitGradedFlags(ctx); err != nil {
		return rep, errors.Wrap(err, "initializing graded flags")
	}
	if rep.Totals, err = repo.GradedTotals(ctx); err != nil {
		return rep, errors.Wrap(err, "counting schedules")
	}
	samples, err := repo.UngradedSamples(ctx, maxUngradedSamples)
	if err != nil {
		return rep, errors.Wrap(err, "sampling ungraded schedules")
	}
	rep.Samples = make([]string, 0, len(samples))
	for _, s := range samples {
		rep.Samples = append(rep.Samples, s.String())
	}
	return rep, nil
}
