package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

// AddCategoryRequest is the form body for POST /categories.
type AddCategoryRequest struct {
	Name string `form:"name" validate:"notblank,max=100"`
}

// CategoriesSuccessResponse is the success response envelope for GET /categories (200).
type CategoriesSuccessResponse struct {
	Data  []*domain.Category `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CategorySuccessResponse is the success response envelope for POST /categories (201).
type CategorySuccessResponse struct {
	Data  *domain.Category  `json:"data"`
	Error *helpers.APIError `json:"error"`
	Flash *helpers.Flash    `json:"flash"`
}

type CategoryController struct {
	Logger  *slog.Logger
	Service domain.CatalogService
}

func NewCategoryController(logger *slog.Logger, svc domain.CatalogService) *CategoryController {
	return &CategoryController{
		Logger:  logger,
		Service: svc,
	}
}

// List godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} controllers.CategoriesSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories [get]
func (c *CategoryController) List(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Service.ListCategories(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, categories)
}

// Add godoc
// @Summary Add a category
// @Description Adds a category. Names are trimmed and must be unique.
// @Tags categories
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name formData string true "Category name"
// @Success 201 {object} controllers.CategorySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories [post]
func (c *CategoryController) Add(w http.ResponseWriter, r *http.Request) {
	if err := helpers.ParseForm(w, r); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	req := AddCategoryRequest{Name: helpers.FormValue(r, "name")}
	if !helpers.WriteValidation(w, &req) {
		return
	}
	category, err := c.Service.AddCategory(r.Context(), req.Name)
	if errors.Is(err, domain.ErrDuplicate) {
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, fmt.Sprintf("Category %q already exists.", req.Name))
		return
	}
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONFlash(w, http.StatusCreated, category, helpers.FlashSuccess,
		fmt.Sprintf("Category %q added successfully!", category.Name))
}
