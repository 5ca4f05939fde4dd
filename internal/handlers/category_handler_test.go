package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "finny/internal/errors"
	"finny/internal/models"
	"finny/internal/pagination"
	"finny/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	createFn func(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	listFn   func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	getFn    func(userID, categoryID string) (*models.Category, error)
}

func (m *mockCategoryService) CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error) {
	if m.createFn != nil {
		return m.createFn(userID, name, categoryType, icon, color)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.listFn != nil {
		return m.listFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getFn != nil {
		return m.getFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.GetUserCategories)
	auth.GET("/categories/:id", handler.GetCategoryByID)
	return r
}

func TestCategoryHandler_Create(t *testing.T) {
	var gotType models.CategoryType
	svc := &mockCategoryService{
		createFn: func(userID, name string, categoryType models.CategoryType, _, _ string) (*models.Category, error) {
			gotType = categoryType
			return &models.Category{Base: models.Base{ID: testID}, UserID: userID, Name: name, Type: categoryType}, nil
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(svc))

	rec := doRequest(r, http.MethodPost, "/categories", `{"name": "Food", "type": "expense"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, models.CategoryTypeExpense, gotType)

	rec = doRequest(r, http.MethodPost, "/categories", `{"name": "Food", "type": "transfer"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
}

func TestCategoryHandler_ListAndGet(t *testing.T) {
	svc := &mockCategoryService{
		listFn: func(_ string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
			resp := pagination.NewPageResponse([]models.Category{{Name: "Food"}}, page.Page, page.PageSize, 1)
			return &resp, nil
		},
		getFn: func(_, categoryID string) (*models.Category, error) {
			return nil, apperrors.ErrCategoryNotFound
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(svc))

	rec := doRequest(r, http.MethodGet, "/categories?page=1&page_size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, parseJSON(t, rec)["data"], 1)

	rec = doRequest(r, http.MethodGet, "/categories/"+testID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
}
