package services

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"

	"github.com/groupfund/backend/internal/models"
	"github.com/groupfund/backend/internal/store"
)

type CategoryService struct {
	db        *sql.DB
	store     *store.Store
	validator *ValidationHelper
}

func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{
		db:        db,
		store:     store.New(db),
		validator: NewValidationHelper(),
	}
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=50"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Type        string `json:"type" validate:"required,oneof=income expense"`
}

// ListCategories returns all categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
// @Security BearerAuth
func (cs *CategoryService) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := cs.store.ListCategories()
	if err != nil {
		SendErrorResponse(w, "Failed to fetch categories", http.StatusInternalServerError, nil)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	WriteJSON(w, http.StatusOK, categories)
}

// CreateCategory adds a category
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body CategoryRequest true "Category data"
// @Success 201 {object} models.Category
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /categories [post]
// @Security BearerAuth
func (cs *CategoryService) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := cs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Type:        req.Type,
	}
	if err := cs.store.CreateCategory(category); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			SendErrorResponse(w, "Category already exists", http.StatusConflict, nil)
			return
		}
		SendErrorResponse(w, "Failed to create category", http.StatusInternalServerError, nil)
		return
	}
	WriteJSON(w, http.StatusCreated, category)
}

// DeleteCategory removes a category
// @Summary Delete category
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /categories/{id} [delete]
// @Security BearerAuth
func (cs *CategoryService) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid category id", http.StatusBadRequest, nil)
		return
	}

	ok, err := cs.store.DeleteCategory(id)
	if err != nil {
		SendErrorResponse(w, "Failed to delete category", http.StatusInternalServerError, nil)
		return
	}
	if !ok {
		SendErrorResponse(w, "Category not found", http.StatusNotFound, nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}
