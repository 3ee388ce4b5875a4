package sessions

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigo-records/care-records/backend/internal/bulk"
	"github.com/kaigo-records/care-records/backend/internal/config"
	"github.com/kaigo-records/care-records/backend/internal/domain"
)

func setupTestRegistry(t *testing.T) (*miniredis.Miniredis, *Registry) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{}
	cfg.Redis.OperationExpiration = 5
	cfg.BulkSession.Expiration = 60
	cfg.BulkSession.KeyPrefix = "bulk_session_"

	return mr, NewRegistry(cfg, rdb)
}

func TestRegistry_SaveLoad(t *testing.T) {
	mr, registry := setupTestRegistry(t)

	ts := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	session, err := bulk.NewSession(bulk.WorkflowResidentsFirst, domain.CategoryMeal, []int64{3, 1, 2}, 9, ts)
	require.NoError(t, err)

	_, err = session.UpdateDraft(2, []byte(`{"midday":{"main":"8"},"comment":"完食"}`))
	require.NoError(t, err)
	require.NoError(t, session.SetMealDefault(bulk.MealDefault{
		Slots: []domain.MealSlot{domain.MealSlotMorning},
		Main:  6,
		Side:  4,
	}))

	require.NoError(t, registry.Save(session))
	assert.True(t, mr.Exists("bulk_session_"+session.ID))
	assert.Equal(t, 60*time.Second, mr.TTL("bulk_session_"+session.ID))

	loaded, err := registry.Load(session.ID)
	require.NoError(t, err)

	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, bulk.WorkflowResidentsFirst, loaded.Workflow)
	assert.Equal(t, domain.CategoryMeal, loaded.Category)
	assert.Equal(t, []int64{1, 2, 3}, loaded.ResidentIDs)
	assert.Equal(t, int64(9), loaded.StaffID)
	assert.True(t, ts.Equal(loaded.Timestamp))
	require.NotNil(t, loaded.MealDefault)
	assert.Equal(t, int32(6), loaded.MealDefault.Main)

	drafts := loaded.Drafts.Snapshot()
	require.Len(t, drafts, 3)
	meal, ok := drafts[2].(bulk.MealDraft)
	require.True(t, ok)
	assert.Equal(t, "6", meal.Morning.Main)
	assert.Equal(t, "4", meal.Morning.Side)
	assert.Equal(t, "8", meal.Midday.Main)
	assert.Equal(t, "完食", meal.Comment)
}

func TestRegistry_LoadMissing(t *testing.T) {
	_, registry := setupTestRegistry(t)

	_, err := registry.Load("not-exist")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_Expired(t *testing.T) {
	mr, registry := setupTestRegistry(t)

	session, err := bulk.NewSession(bulk.WorkflowCategoryFirst, domain.CategoryVital, []int64{1}, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, registry.Save(session))

	mr.FastForward(61 * time.Second)

	_, err = registry.Load(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_Delete(t *testing.T) {
	_, registry := setupTestRegistry(t)

	session, err := bulk.NewSession(bulk.WorkflowResidentsFirst, domain.CategoryComment, []int64{1}, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, registry.Save(session))

	require.NoError(t, registry.Delete(session.ID))

	_, err = registry.Load(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
