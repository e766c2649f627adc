package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academia/backend/core/enrollment"
)

type enrollmentApi struct {
	svc      *enrollment.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *enrollment.Service, validate *validator.Validate) {
	api := enrollmentApi{svc: svc, validate: validate}

	eg := g.Group("/enrollments", jwt, studentMiddleware())
	eg.GET("", api.mySections)
	eg.POST("", api.enroll)
	eg.DELETE("/:sectionId", api.drop)
}

func (api *enrollmentApi) mySections(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	secs, err := api.svc.MySections(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying enrolled sections")
	}
	return ctx.JSON(http.StatusOK, secs)
}

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data enrollment.NewEnrollment
	if err = ctx.Bind(&data); err != nil {
		return errBadRequest
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	e, err := api.svc.Enroll(ctx.Request().Context(), claims.Subject, data.SectionID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *enrollmentApi) drop(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.svc.Drop(ctx.Request().Context(), claims.Subject, ctx.Param("sectionId")); err != nil {
		if errors.Cause(err) == enrollment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "dropping section")
	}
	return ctx.NoContent(http.StatusNoContent)
}
