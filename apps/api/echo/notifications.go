package echoapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
	"github.com/MarcosBaez42/automatizacion-sofia/core/report"
)

var (
	errInvalidStartDate = core.NewValidationError(errors.New("Parámetro startDate inválido."))
	errInvalidEndDate   = core.NewValidationError(errors.New("Parámetro endDate inválido."))

	msgNotificationsFailed = "No se pudieron recuperar las notificaciones."
)

type (
	NotificationService interface {
		QueryNotifications(ctx context.Context, filter fiche.NotificationFilter) ([]fiche.NotificationRecord, error)
	}

	notificationQuery struct {
		StartDate   string `query:"startDate"`
		EndDate     string `query:"endDate"`
		FicheNumber string `query:"ficheNumber" validate:"omitempty,max=20,fiche_number"`
	}

	notificationApi struct {
		svc      NotificationService
		validate *validator.Validate
		dates    report.TemporalParser
	}
)

func registerNotificationAPI(g *echo.Group, svc NotificationService, validate *validator.Validate, conf *core.Config) {
	api := notificationApi{
		svc:      svc,
		validate: validate,
		dates:    report.NewTemporalParser(conf.Location()),
	}
	g.GET("/emails", api.queryEmails)
}

func (api *notificationApi) parseDate(value string, errInvalid error) (null.Time, error) {
	if value == "" {
		return null.Time{}, nil
	}
	t, ok := api.dates.Parse(value)
	if !ok {
		return null.Time{}, errInvalid
	}
	return null.TimeFrom(t), nil
}

// Handlers

func (api *notificationApi) queryEmails(ctx echo.Context) error {
	q := notificationQuery{
		StartDate:   strings.TrimSpace(ctx.QueryParam("startDate")),
		EndDate:     strings.TrimSpace(ctx.QueryParam("endDate")),
		FicheNumber: strings.TrimSpace(ctx.QueryParam("ficheNumber")),
	}

	var filter fiche.NotificationFilter
	var err error
	if filter.StartDate, err = api.parseDate(q.StartDate, errInvalidStartDate); err != nil {
		return err
	}
	if filter.EndDate, err = api.parseDate(q.EndDate, errInvalidEndDate); err != nil {
		return err
	}
	if err = api.validate.Struct(q); err != nil {
		return err
	}
	filter.FicheNumber = q.FicheNumber

	records, err := api.svc.QueryNotifications(ctx.Request().Context(), filter)
	if err != nil {
		return &echo.HTTPError{Code: http.StatusInternalServerError, Message: msgNotificationsFailed, Internal: err}
	}
	return ctx.JSON(http.StatusOK, records)
}
