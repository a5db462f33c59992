package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventsapi/internal/model"
	"eventsapi/internal/service"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents a category creation request.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"max=200"`
	Color       string `json:"color" validate:"omitempty,hexcolor6"`
	Icon        string `json:"icon" validate:"max=50"`
}

func (r *CreateCategoryRequest) normalize() {
	trim(&r.Name, &r.Description, &r.Color, &r.Icon)
}

// UpdateCategoryRequest carries the fields to change; omitted fields are kept.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=2,max=50"`
	Description *string `json:"description" validate:"omitnil,max=200"`
	Color       *string `json:"color" validate:"omitnil,hexcolor6"`
	Icon        *string `json:"icon" validate:"omitnil,min=1,max=50"`
}

func (r *UpdateCategoryRequest) normalize() {
	trimOptional(r.Name, r.Description, r.Color, r.Icon)
}

// CategoryResponse wraps a single category.
type CategoryResponse struct {
	Category *model.Category `json:"category"`
}

// CategoriesResponse wraps a list of categories.
type CategoriesResponse struct {
	Categories []model.Category `json:"categories"`
}

// List godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=CategoriesResponse}
// @Failure 401 {object} errors.ErrorResponse
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.categoryService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, CategoriesResponse{Categories: categories}, len(categories))
}

// Get godoc
// @Summary Get a category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} Response{data=CategoryResponse}
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	category, err := h.categoryService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", CategoryResponse{Category: category})
}

// Create godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} Response{data=CategoryResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	}
	if err := h.categoryService.Create(c.Request().Context(), category); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "category created successfully", CategoryResponse{Category: category})
}

// Update godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} Response{data=CategoryResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	var req UpdateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categoryService.Update(c.Request().Context(), c.Param("id"), model.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "category updated successfully", CategoryResponse{Category: category})
}

// Delete godoc
// @Summary Delete a category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := h.categoryService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "category deleted successfully", nil)
}
