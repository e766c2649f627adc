package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
)

var errSectionNotFoundInCtx = errors.New("section object not found in echo.Context")

const meParam = "me"

type sectionApi struct {
	svc      *section.Service
	validate *validator.Validate
}

func registerSectionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *section.Service, validate *validator.Validate) {
	api := sectionApi{svc: svc, validate: validate}

	sg := g.Group("/sections", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, adminMiddleware())
	sg.DELETE("", api.destroyMultiple, adminMiddleware())
	sg.POST("/timeslots/validate", api.validateTimeSlot, facultyOrAdminMiddleware())

	// schedule drafts
	dg := sg.Group("/drafts", facultyOrAdminMiddleware())
	dg.POST("", api.startDraft)
	dg.GET("/:id", api.retrieveDraft)
	dg.DELETE("/:id", api.discardDraft)
	dg.POST("/:id/slots", api.stageSlot)
	dg.PUT("/:id/slots/:slotId", api.updateStagedSlot)
	dg.DELETE("/:id/slots/:slotId", api.unstageSlot)

	// detail endpoints
	ig := sg.Group("/:id", api.sectionMiddleware)
	ig.GET("", api.retrieve)
	ig.PUT("", api.update, adminMiddleware())
	ig.DELETE("", api.destroy, adminMiddleware())
}

func (api *sectionApi) sectionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == section.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding section")
		}
		ctx.Set("object", sec)
		return next(ctx)
	}
}

// Handlers

func (api *sectionApi) create(ctx echo.Context) error {
	var data section.SectionInput
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, ""); err != nil {
		return err
	}

	sec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating section")
	}
	return ctx.JSON(http.StatusCreated, sec)
}

// query lists sections. faculty_id=me lists the sections taught by the context user.
func (api *sectionApi) query(ctx echo.Context) error {
	filter := new(section.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []section.Section{})
	}
	filter.Clean()
	if filter.FacultyID == meParam {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		filter.FacultyID = claims.Subject
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	secs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	return ctx.JSON(http.StatusOK, secs)
}

func (api *sectionApi) retrieve(ctx echo.Context) error {
	sec, ok := ctx.Get("object").(section.Section)
	if !ok {
		return errors.Wrap(errSectionNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *sectionApi) update(ctx echo.Context) error {
	sec, ok := ctx.Get("object").(section.Section)
	if !ok {
		return errors.Wrap(errSectionNotFoundInCtx, "retrieving object from context")
	}

	var data section.SectionInput
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, sec.ID); err != nil {
		return err
	}

	sec, err := api.svc.Update(ctx.Request().Context(), sec, data)
	if err != nil {
		return errors.Wrap(err, "updating section")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *sectionApi) destroy(ctx echo.Context) error {
	sec, ok := ctx.Get("object").(section.Section)
	if !ok {
		return errors.Wrap(errSectionNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), sec.ID); err != nil {
		return errors.Wrap(err, "deleting section")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sectionApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errBadRequest
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting sections")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// validateTimeSlot answers 200 with the validation result; rejections are not errors here.
// Only an unknown day is a 400.
func (api *sectionApi) validateTimeSlot(ctx echo.Context) error {
	var data section.TimeSlotRequest
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest
	}

	res, err := api.svc.ValidateTimeSlot(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "validating time slot")
	}
	return ctx.JSON(http.StatusOK, res)
}

// Drafts

func (api *sectionApi) startDraft(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data section.NewDraft
	if err = ctx.Bind(&data); err != nil {
		return errBadRequest
	}
	data.Clean()
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	d, err := api.svc.StartDraft(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "starting draft")
	}
	return ctx.JSON(http.StatusCreated, d)
}

// getDraft loads the draft of the context user named by the "id" path param.
func (api *sectionApi) getDraft(ctx echo.Context) (section.Draft, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return section.Draft{}, errors.Wrap(err, "getting context claims")
	}
	d, err := api.svc.GetDraft(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	return d, api.trapDraftErr(err, "finding draft")
}

func (api *sectionApi) trapDraftErr(err error, msg string) error {
	switch errors.Cause(err) {
	case nil:
		return nil
	case section.ErrDraftNotFound, section.ErrSlotNotFound:
		return errHttpNotFound
	}
	return errors.Wrap(err, msg)
}

func (api *sectionApi) retrieveDraft(ctx echo.Context) error {
	d, err := api.getDraft(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *sectionApi) discardDraft(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	err = api.svc.DiscardDraft(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err = api.trapDraftErr(err, "discarding draft"); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func slotRejected(res schedule.Result) error {
	return core.NewValidationError(res.Err(), core.FieldError{Field: "schedule", Error: res.Error})
}

func (api *sectionApi) stageSlot(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data section.ScheduleInput
	if err = ctx.Bind(&data); err != nil {
		return errBadRequest
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	_, slot, res, err := api.svc.StageSlot(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data.Slot())
	if err = api.trapDraftErr(err, "staging slot"); err != nil {
		return err
	}
	if !res.OK {
		return slotRejected(res)
	}
	return ctx.JSON(http.StatusCreated, slot)
}

func (api *sectionApi) updateStagedSlot(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data section.ScheduleInput
	if err = ctx.Bind(&data); err != nil {
		return errBadRequest
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	d, res, err := api.svc.UpdateStagedSlot(ctx.Request().Context(), claims.Subject, ctx.Param("id"), ctx.Param("slotId"), data.Slot())
	if err = api.trapDraftErr(err, "updating staged slot"); err != nil {
		return err
	}
	if !res.OK {
		return slotRejected(res)
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *sectionApi) unstageSlot(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	d, err := api.svc.UnstageSlot(ctx.Request().Context(), claims.Subject, ctx.Param("id"), ctx.Param("slotId"))
	if err = api.trapDraftErr(err, "unstaging slot"); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, d)
}
