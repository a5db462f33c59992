package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventsapi/internal/model"
	"eventsapi/internal/service"
)

// LocationHandler handles location endpoints.
type LocationHandler struct {
	locationService service.LocationService
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(locationService service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// CreateLocationRequest represents a location creation request.
type CreateLocationRequest struct {
	Name      string   `json:"name" validate:"required,min=2,max=100"`
	Address   string   `json:"address" validate:"max=200"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	City      string   `json:"city" validate:"max=50"`
	State     string   `json:"state" validate:"max=50"`
	Country   string   `json:"country" validate:"max=50"`
	ZipCode   string   `json:"zipCode" validate:"max=20"`
}

func (r *CreateLocationRequest) normalize() {
	trim(&r.Name, &r.Address, &r.City, &r.State, &r.Country, &r.ZipCode)
}

// UpdateLocationRequest carries the fields to change.
type UpdateLocationRequest struct {
	Name      *string  `json:"name" validate:"omitnil,min=2,max=100"`
	Address   *string  `json:"address" validate:"omitnil,max=200"`
	Latitude  *float64 `json:"latitude" validate:"omitnil,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitnil,gte=-180,lte=180"`
	City      *string  `json:"city" validate:"omitnil,max=50"`
	State     *string  `json:"state" validate:"omitnil,max=50"`
	Country   *string  `json:"country" validate:"omitnil,max=50"`
	ZipCode   *string  `json:"zipCode" validate:"omitnil,max=20"`
}

func (r *UpdateLocationRequest) normalize() {
	trimOptional(r.Name, r.Address, r.City, r.State, r.Country, r.ZipCode)
}

// LocationResponse wraps a single location.
type LocationResponse struct {
	Location *model.Location `json:"location"`
}

// LocationsResponse wraps a list of locations.
type LocationsResponse struct {
	Locations []model.Location `json:"locations"`
}

// List godoc
// @Summary List locations
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=LocationsResponse}
// @Router /locations [get]
func (h *LocationHandler) List(c echo.Context) error {
	locations, err := h.locationService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, LocationsResponse{Locations: locations}, len(locations))
}

// Get godoc
// @Summary Get a location
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Success 200 {object} Response{data=LocationResponse}
// @Failure 404 {object} errors.ErrorResponse
// @Router /locations/{id} [get]
func (h *LocationHandler) Get(c echo.Context) error {
	location, err := h.locationService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", LocationResponse{Location: location})
}

// Create godoc
// @Summary Create a location
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLocationRequest true "Location"
// @Success 201 {object} Response{data=LocationResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Router /locations [post]
func (h *LocationHandler) Create(c echo.Context) error {
	var req CreateLocationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	location := &model.Location{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		ZipCode:   req.ZipCode,
	}
	if err := h.locationService.Create(c.Request().Context(), location); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "location created successfully", LocationResponse{Location: location})
}

// Update godoc
// @Summary Update a location
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Param request body UpdateLocationRequest true "Fields to change"
// @Success 200 {object} Response{data=LocationResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /locations/{id} [put]
func (h *LocationHandler) Update(c echo.Context) error {
	var req UpdateLocationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	location, err := h.locationService.Update(c.Request().Context(), c.Param("id"), model.LocationPatch{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		ZipCode:   req.ZipCode,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "location updated successfully", LocationResponse{Location: location})
}

// Delete godoc
// @Summary Delete a location
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /locations/{id} [delete]
func (h *LocationHandler) Delete(c echo.Context) error {
	if err := h.locationService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "location deleted successfully", nil)
}
