package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tourin/pkg/datastructure"
	"tourin/pkg/server"
	"tourin/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type TourPlanService interface {
	PlanRoute(ctx context.Context, start datastructure.Coordinate,
		destinations []datastructure.Coordinate, maxSnapDistM float64) (service.RouteResult, error)
}

type TourPlanHandler struct {
	svc TourPlanService
}

func TourPlanRouter(r *chi.Mux, svc TourPlanService) {
	handler := &TourPlanHandler{svc}

	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Post("/route", handler.PlanRoute)
		})
	})
}

// Coord fields carry range tags only: 0 is a valid latitude/longitude
// (equator, prime meridian), so presence is checked on the parent pointer
// and slice, never on the numeric values.
type Coord struct {
	Lat float64 `json:"lat" validate:"lt=90,gt=-90"`
	Lon float64 `json:"lon" validate:"lt=180,gt=-180"`
}

// RouteRequest model info
//
//	@Description	request body for tour route planning
type RouteRequest struct {
	Start        *Coord  `json:"start" validate:"required"`
	Destinations []Coord `json:"destinations" validate:"required,min=1,dive"`
	MaxSnapDistM float64 `json:"max_snap_distance_m" validate:"gte=0"`
}

func (s *RouteRequest) Bind(r *http.Request) error {
	if s.Start == nil {
		return errors.New("start coordinate is required")
	}
	if len(s.Destinations) == 0 {
		return errors.New("destinations must be a non-empty array of coordinates")
	}
	return nil
}

// RouteResponse model info
//
//	@Description	response body for tour route planning
type RouteResponse struct {
	Route      [][]float64 `json:"route"` // [lon, lat] pairs
	Polyline   string      `json:"polyline"`
	DistanceM  float64     `json:"distance_m"`
	VisitOrder []int32     `json:"visit_order"`
	Strategy   string      `json:"strategy"`
}

func RenderRouteResponse(result service.RouteResult) *RouteResponse {
	route := make([][]float64, 0, len(result.Route))
	for _, c := range result.Route {
		route = append(route, []float64{c.Lon, c.Lat})
	}
	return &RouteResponse{
		Route:      route,
		Polyline:   result.Polyline,
		DistanceM:  result.DistanceM,
		VisitOrder: result.VisitOrder,
		Strategy:   result.Strategy,
	}
}

// PlanRoute
//
//	@Summary		plan a drivable tour route from a start coordinate through every destination
//	@Description	snaps the coordinates onto the road network, visits destinations nearest-remaining-first and returns the stitched route geometry
//	@Tags			navigations
//	@Param			body	body	RouteRequest	true	"route planning request body"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/route [post]
//	@Success		200	{object}	RouteResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		422	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *TourPlanHandler) PlanRoute(w http.ResponseWriter, r *http.Request) {
	data := &RouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	start := datastructure.NewCoordinate(data.Start.Lat, data.Start.Lon) // Bind guarantees Start != nil
	destinations := make([]datastructure.Coordinate, 0, len(data.Destinations))
	for _, c := range data.Destinations {
		destinations = append(destinations, datastructure.NewCoordinate(c.Lat, c.Lon))
	}

	result, err := h.svc.PlanRoute(r.Context(), start, destinations, data.MaxSnapDistM)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderRouteResponse(result))
}

func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *server.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Code() {
		case server.ErrNotFound:
			render.Render(w, r, ErrRouteNotFound(err))
			return
		case server.ErrBadParamInput:
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}
	}
	render.Render(w, r, ErrInternalServerErrorRend(errors.New("internal server error")))
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrRouteNotFound(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 422,
		StatusText:     "No route found for the given inputs.",
		ErrorText:      err.Error(),
	}
}

// ErrResponse model info
//
//	@Description	model for error responses
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}
