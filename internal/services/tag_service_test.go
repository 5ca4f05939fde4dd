package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finny/internal/models"
	"finny/internal/testutil"
)

func TestCreateTag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTagService(db)
	user := testutil.CreateTestUser(t, db)

	t.Run("default_color", func(t *testing.T) {
		tag, err := svc.CreateTag(user.ID, " travel ", "")
		testutil.AssertNoError(t, err)
		assert.Equal(t, "travel", tag.Name)
		assert.Equal(t, models.DefaultTagColor, tag.Color)
		assert.Zero(t, tag.UsageCount)
	})

	t.Run("empty_name", func(t *testing.T) {
		_, err := svc.CreateTag(user.ID, "", "#000000")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTagService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	rare := testutil.CreateTestTag(t, db, user.ID, 1)
	popular := testutil.CreateTestTag(t, db, user.ID, 9)
	testutil.CreateTestTag(t, db, other.ID, 50)

	tags, err := svc.GetUserTags(user.ID)
	testutil.AssertNoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, popular.ID, tags[0].ID)
	assert.Equal(t, rare.ID, tags[1].ID)
}

func TestSearchTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTagService(db)
	user := testutil.CreateTestUser(t, db)

	_, err := svc.CreateTag(user.ID, "Holiday", "")
	require.NoError(t, err)
	_, err = svc.CreateTag(user.ID, "Groceries", "")
	require.NoError(t, err)

	tags, err := svc.SearchTags(user.ID, "HOLI")
	testutil.AssertNoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Holiday", tags[0].Name)
}

func TestGetTagByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTagService(db)
	owner := testutil.CreateTestUser(t, db)
	intruder := testutil.CreateTestUser(t, db)
	tag := testutil.CreateTestTag(t, db, owner.ID, 0)

	_, err := svc.GetTagByID(owner.ID, tag.ID)
	testutil.AssertNoError(t, err)

	_, err = svc.GetTagByID(intruder.ID, tag.ID)
	testutil.AssertAppError(t, err, "TAG_NOT_FOUND")
}

func TestTagUsage(t *testing.T) {
	t.Run("increment_owned_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		mine := testutil.CreateTestTag(t, db, user.ID, 0)
		theirs := testutil.CreateTestTag(t, db, other.ID, 4)

		err := svc.IncrementUsage(db, user.ID, []string{mine.ID, theirs.ID, "unknown", mine.ID})
		testutil.AssertNoError(t, err)

		assert.Equal(t, 1, testutil.ReloadTag(t, db, mine.ID).UsageCount)
		assert.Equal(t, 4, testutil.ReloadTag(t, db, theirs.ID).UsageCount)
	})

	t.Run("decrement_floors_at_zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)
		user := testutil.CreateTestUser(t, db)
		zero := testutil.CreateTestTag(t, db, user.ID, 0)
		two := testutil.CreateTestTag(t, db, user.ID, 2)

		testutil.AssertNoError(t, svc.DecrementUsage(db, user.ID, []string{zero.ID, two.ID}))
		testutil.AssertNoError(t, svc.DecrementUsage(db, user.ID, []string{zero.ID}))

		assert.Equal(t, 0, testutil.ReloadTag(t, db, zero.ID).UsageCount)
		assert.Equal(t, 1, testutil.ReloadTag(t, db, two.ID).UsageCount)
	})

	// The floor hides a counter that was already out of step: after a
	// decrement at zero, increment+decrement no longer round-trips to the
	// value the associations imply.
	t.Run("floor_masks_prior_drift", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)
		user := testutil.CreateTestUser(t, db)
		tag := testutil.CreateTestTag(t, db, user.ID, 0)

		testutil.AssertNoError(t, svc.DecrementUsage(db, user.ID, []string{tag.ID}))
		testutil.AssertNoError(t, svc.IncrementUsage(db, user.ID, []string{tag.ID}))
		assert.Equal(t, 1, testutil.ReloadTag(t, db, tag.ID).UsageCount)
	})

	t.Run("empty_input_is_noop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.AssertNoError(t, svc.IncrementUsage(db, user.ID, nil))
		testutil.AssertNoError(t, svc.DecrementUsage(db, user.ID, []string{}))
	})
}

func TestRequireOwnedTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTagService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	mine := testutil.CreateTestTag(t, db, user.ID, 0)
	theirs := testutil.CreateTestTag(t, db, other.ID, 0)

	testutil.AssertNoError(t, svc.RequireOwnedTags(db, user.ID, []string{mine.ID, mine.ID}))
	testutil.AssertNoError(t, svc.RequireOwnedTags(db, user.ID, nil))
	testutil.AssertAppError(t, svc.RequireOwnedTags(db, user.ID, []string{mine.ID, theirs.ID}), "TAG_NOT_FOUND")
}
