package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finny/internal/models"
	"finny/internal/pagination"
	"finny/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, "Groceries", models.CategoryTypeExpense, "cart", "#FF0000")
		testutil.AssertNoError(t, err)
		assert.NotEmpty(t, cat.ID)
		assert.Equal(t, "Groceries", cat.Name)
		assert.Equal(t, models.CategoryTypeExpense, cat.Type)
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Salary", models.CategoryTypeIncome, "", "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(user.ID, "Salary", models.CategoryTypeIncome, "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Moves", "transfer", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	for _, name := range []string{"Rent", "Food", "Bonus"} {
		_, err := svc.CreateCategory(user.ID, name, models.CategoryTypeExpense, "", "")
		require.NoError(t, err)
	}
	testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

	result, err := svc.GetUserCategories(user.ID, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	assert.Equal(t, int64(3), result.TotalItems)
	assert.Equal(t, 2, result.TotalPages)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "Bonus", result.Data[0].Name)
	assert.Equal(t, "Food", result.Data[1].Name)
}

func TestGetCategoryByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	owner := testutil.CreateTestUser(t, db)
	intruder := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, owner.ID, models.CategoryTypeIncome)

	found, err := svc.GetCategoryByID(owner.ID, cat.ID)
	testutil.AssertNoError(t, err)
	assert.Equal(t, cat.Name, found.Name)

	_, err = svc.GetCategoryByID(intruder.ID, cat.ID)
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}
