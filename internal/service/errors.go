package service

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/policy"
)

const (
	BadRequest          = 400
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	UnprocessableEntity = 422
	InternalServerError = 500
	ServiceUnavailable  = 503
)

// ErrorMap is checked in order; ErrVersionConflict wraps ErrBusy so both land
// on the same status.
var ErrorMap = []struct {
	Err    error
	Status int
}{
	{models.ErrNotFound, NotFound},
	{models.ErrUnauthorized, Forbidden},
	{models.ErrInvalidTransition, Conflict},
	{models.ErrSchedulingHorizonExceeded, UnprocessableEntity},
	{models.ErrBusy, ServiceUnavailable},
	{models.ErrValidation, BadRequest},
}

func StatusOf(err error) int {
	for _, e := range ErrorMap {
		if errors.Is(err, e.Err) {
			return e.Status
		}
	}
	return InternalServerError
}

func authorize(actor *models.User, action policy.Action, res policy.Resource) error {
	if !policy.CanPerform(actor, action, res) {
		role := "anonymous"
		if actor != nil {
			role = string(actor.Role)
		}
		return fmt.Errorf("%w: %s may not %s %s", models.ErrUnauthorized, role, action, res.Type)
	}
	return nil
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, models.ErrNotFound)
}

func postTypeValues() []interface{} {
	values := make([]interface{}, len(models.PostTypes))
	for i, t := range models.PostTypes {
		values[i] = t
	}
	return values
}

func roleValues() []interface{} {
	values := make([]interface{}, len(models.Roles))
	for i, r := range models.Roles {
		values[i] = r
	}
	return values
}

var uniquePillars = validation.By(func(value interface{}) error {
	pillars, _ := value.([]string)
	seen := make(map[string]struct{}, len(pillars))
	for _, p := range pillars {
		if p == "" {
			return errors.New("must not contain empty labels")
		}
		if _, ok := seen[p]; ok {
			return fmt.Errorf("duplicate pillar %q", p)
		}
		seen[p] = struct{}{}
	}
	return nil
})
