package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academia/backend/core/catalog"
)

var (
	errCourseNotFoundInCtx = errors.New("course object not found in echo.Context")
	errRoomNotFoundInCtx   = errors.New("room object not found in echo.Context")
)

type catalogApi struct {
	svc      *catalog.Service
	validate *validator.Validate
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *catalog.Service, validate *validator.Validate) {
	api := catalogApi{svc: svc, validate: validate}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.queryCourses)
	cg.POST("", api.createCourse, adminMiddleware())
	cg.DELETE("", api.destroyCourses, adminMiddleware())
	cdg := cg.Group("/:id", api.courseMiddleware)
	cdg.GET("", api.retrieveCourse)
	cdg.PUT("", api.updateCourse, adminMiddleware())
	cdg.DELETE("", api.destroyCourse, adminMiddleware())

	rg := g.Group("/rooms", jwt)
	rg.GET("", api.queryRooms)
	rg.POST("", api.createRoom, adminMiddleware())
	rg.DELETE("", api.destroyRooms, adminMiddleware())
	rdg := rg.Group("/:id", api.roomMiddleware)
	rdg.GET("", api.retrieveRoom)
	rdg.PUT("", api.updateRoom, adminMiddleware())
	rdg.DELETE("", api.destroyRoom, adminMiddleware())
}

// Courses

func (api *catalogApi) courseMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		c, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == catalog.ErrCourseNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding course")
		}
		ctx.Set("object", c)
		return next(ctx)
	}
}

func (api *catalogApi) createCourse(ctx echo.Context) error {
	var data catalog.CourseInput
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, ""); err != nil {
		return err
	}

	c, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *catalogApi) queryCourses(ctx echo.Context) error {
	filter := new(catalog.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []catalog.Course{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.QueryCourses(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) retrieveCourse(ctx echo.Context) error {
	c, ok := ctx.Get("object").(catalog.Course)
	if !ok {
		return errors.Wrap(errCourseNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *catalogApi) updateCourse(ctx echo.Context) error {
	c, ok := ctx.Get("object").(catalog.Course)
	if !ok {
		return errors.Wrap(errCourseNotFoundInCtx, "retrieving object from context")
	}

	var data catalog.CourseInput
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, c.ID); err != nil {
		return err
	}

	c, err := api.svc.UpdateCourse(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *catalogApi) destroyCourse(ctx echo.Context) error {
	c, ok := ctx.Get("object").(catalog.Course)
	if !ok {
		return errors.Wrap(errCourseNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.DeleteCourses(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) destroyCourses(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errBadRequest
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteCourses(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Rooms

func (api *catalogApi) roomMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		r, err := api.svc.GetRoom(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == catalog.ErrRoomNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding room")
		}
		ctx.Set("object", r)
		return next(ctx)
	}
}

func (api *catalogApi) createRoom(ctx echo.Context) error {
	var data catalog.RoomInput
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, ""); err != nil {
		return err
	}

	r, err := api.svc.CreateRoom(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *catalogApi) queryRooms(ctx echo.Context) error {
	filter := new(catalog.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []catalog.Room{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	rooms, err := api.svc.QueryRooms(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *catalogApi) retrieveRoom(ctx echo.Context) error {
	r, ok := ctx.Get("object").(catalog.Room)
	if !ok {
		return errors.Wrap(errRoomNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *catalogApi) updateRoom(ctx echo.Context) error {
	r, ok := ctx.Get("object").(catalog.Room)
	if !ok {
		return errors.Wrap(errRoomNotFoundInCtx, "retrieving object from context")
	}

	var data catalog.RoomInput
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, r.ID); err != nil {
		return err
	}

	r, err := api.svc.UpdateRoom(ctx.Request().Context(), r, data)
	if err != nil {
		return errors.Wrap(err, "updating room")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *catalogApi) destroyRoom(ctx echo.Context) error {
	r, ok := ctx.Get("object").(catalog.Room)
	if !ok {
		return errors.Wrap(errRoomNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.DeleteRooms(ctx.Request().Context(), r.ID); err != nil {
		return errors.Wrap(err, "deleting room")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) destroyRooms(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errBadRequest
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteRooms(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting rooms")
	}
	return ctx.NoContent(http.StatusNoContent)
}
