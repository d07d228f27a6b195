package main

import (
	"context"
	"fmt"

	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
)

// initGraded prepares legacy schedules for the grading job.
func (cli *commandLine) initGraded() error {
	rep, err := fiche.BootstrapGradedFlags(context.Background(), cli.maint)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Horarios actualizados con calificado=false: %d\n", rep.Updated)
	fmt.Fprintf(cli.out, "Total de horarios: %d\n", rep.Totals.All)
	fmt.Fprintf(cli.out, "Horarios pendientes por calificar: %d\n", rep.Totals.Pending)
	fmt.Fprintf(cli.out, "Horarios calificados: %d\n", rep.Totals.Graded)
	if len(rep.Samples) > 0 {
		fmt.Fprintln(cli.out, "Ejemplos de horarios pendientes:")
		for _, s := range rep.Samples {
			fmt.Fprintf(cli.out, "  - %s\n", s)
		}
	}
	return nil
}
