package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"eventsapi/internal/auth"
	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/model"
	"eventsapi/internal/repository"
	"eventsapi/internal/service"
)

// EventHandler handles event endpoints.
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new event handler.
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// CreateEventRequest represents an event creation request.
type CreateEventRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"required,min=10,max=1000"`
	Date        string   `json:"date" validate:"required"`
	Time        string   `json:"time" validate:"required,hhmm"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	ImageURL    *string  `json:"imageUrl" validate:"omitnil,max=512"`
}

func (r *CreateEventRequest) normalize() {
	trim(&r.Name, &r.Description, &r.Date, &r.Time, &r.Category, &r.Location)
	trimOptional(r.ImageURL)
}

// UpdateEventRequest carries the fields to change. An explicit null
// imageUrl clears the image.
type UpdateEventRequest struct {
	Name        *string              `json:"name" validate:"omitnil,min=3,max=100"`
	Description *string              `json:"description" validate:"omitnil,min=10,max=1000"`
	Date        *string              `json:"date" validate:"omitnil,min=1"`
	Time        *string              `json:"time" validate:"omitnil,hhmm"`
	Price       *float64             `json:"price" validate:"omitnil,gte=0"`
	Category    *string              `json:"category" validate:"omitnil,min=1"`
	Location    *string              `json:"location" validate:"omitnil,min=1"`
	ImageURL    model.OptionalString `json:"imageUrl" swaggertype:"string"`
}

func (r *UpdateEventRequest) normalize() {
	trimOptional(r.Name, r.Description, r.Date, r.Time, r.Category, r.Location, r.ImageURL.Value)
}

// EventResponse wraps a single expanded event.
type EventResponse struct {
	Event *model.EventDetails `json:"event"`
}

// EventsResponse wraps a list of expanded events.
type EventsResponse struct {
	Events []model.EventDetails `json:"events"`
}

// List godoc
// @Summary List events
// @Description Filters are combined with AND. Results are sorted by date ascending.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on name or description"
// @Param category query string false "Category ID"
// @Param location query string false "Location ID"
// @Param minPrice query number false "Minimum price (inclusive)"
// @Param maxPrice query number false "Maximum price (inclusive)"
// @Param startDate query string false "Earliest date (YYYY-MM-DD or RFC 3339)"
// @Param endDate query string false "Latest date, inclusive of the whole day"
// @Success 200 {object} Response{data=EventsResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	filter, err := parseEventFilter(c)
	if err != nil {
		return err
	}

	events, err := h.eventService.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respondList(c, EventsResponse{Events: events}, len(events))
}

// Get godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} Response{data=EventResponse}
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	event, err := h.eventService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", EventResponse{Event: event})
}

// Create godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEventRequest true "Event"
// @Success 201 {object} Response{data=EventResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	date, err := parseDateField("date", req.Date)
	if err != nil {
		return err
	}

	event := &model.Event{
		Name:        req.Name,
		Description: req.Description,
		Date:        date,
		Time:        req.Time,
		Price:       *req.Price,
		CategoryID:  req.Category,
		LocationID:  req.Location,
		ImageURL:    req.ImageURL,
	}
	details, err := h.eventService.Create(c.Request().Context(), event, auth.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "event created successfully", EventResponse{Event: details})
}

// Update godoc
// @Summary Update an event
// @Description Only the creator may update an event. Omitted fields are kept.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body UpdateEventRequest true "Fields to change"
// @Success 200 {object} Response{data=EventResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	var req UpdateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patch := model.EventPatch{
		Name:        req.Name,
		Description: req.Description,
		Time:        req.Time,
		Price:       req.Price,
		CategoryID:  req.Category,
		LocationID:  req.Location,
		ImageURL:    req.ImageURL,
	}
	if req.Date != nil {
		date, err := parseDateField("date", *req.Date)
		if err != nil {
			return err
		}
		patch.Date = &date
	}

	details, err := h.eventService.Update(c.Request().Context(), c.Param("id"), patch, auth.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "event updated successfully", EventResponse{Event: details})
}

// Delete godoc
// @Summary Delete an event
// @Description Only the creator may delete an event.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.eventService.Delete(c.Request().Context(), c.Param("id"), auth.CurrentUser(c).ID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "event deleted successfully", nil)
}

func parseEventFilter(c echo.Context) (repository.EventFilter, error) {
	filter := repository.EventFilter{
		Search:     strings.TrimSpace(c.QueryParam("search")),
		CategoryID: strings.TrimSpace(c.QueryParam("category")),
		LocationID: strings.TrimSpace(c.QueryParam("location")),
	}

	var err error
	if filter.MinPrice, err = parsePriceParam(c, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePriceParam(c, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.StartDate, err = parseDateParam(c, "startDate"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseDateParam(c, "endDate"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parsePriceParam(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperrors.NewValidationError(name+" must be a number", name)
	}
	return &v, nil
}

func parseDateParam(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	t, err := parseDateField(name, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDateField(name, raw string) (time.Time, error) {
	t, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(name+" must be a valid date", name)
	}
	return t, nil
}
