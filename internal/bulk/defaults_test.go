package bulk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

func newMealSession(t *testing.T, residentIDs ...int64) *Session {
	t.Helper()
	session, err := NewSession(WorkflowResidentsFirst, domain.CategoryMeal, residentIDs, 1, time.Now())
	require.NoError(t, err)
	return session
}

func TestPropagate(t *testing.T) {
	session := newMealSession(t, 1, 2, 3)
	session.MealDefault = &MealDefault{
		Slots: []domain.MealSlot{domain.MealSlotMorning, domain.MealSlotEvening},
		Main:  7,
		Side:  5,
	}

	drafts := map[int64]Draft{
		1: MealDraft{},
		2: MealDraft{Midday: MealEntry{Main: "3", Side: "2"}, Comment: "少食"},
		3: MealDraft{Morning: MealEntry{Main: "10", Side: "10"}},
		// 不在本次会话中的入住者保持不变
		9: MealDraft{},
	}

	out := Propagate(session, drafts)

	want := MealEntry{Main: "7", Side: "5"}
	for _, id := range []int64{1, 2, 3} {
		meal := out[id].(MealDraft)
		assert.Equal(t, want, meal.Morning, "resident %d", id)
		assert.Equal(t, want, meal.Evening, "resident %d", id)
	}

	second := out[2].(MealDraft)
	assert.Equal(t, MealEntry{Main: "3", Side: "2"}, second.Midday)
	assert.Equal(t, "少食", second.Comment)
	assert.Equal(t, MealDraft{}, out[9])

	// 传入的 map 不被修改
	assert.Equal(t, MealDraft{}, drafts[1])
	assert.Equal(t, MealDraft{Morning: MealEntry{Main: "10", Side: "10"}}, drafts[3])
}

func TestPropagate_Idempotent(t *testing.T) {
	session := newMealSession(t, 1, 2)
	session.MealDefault = &MealDefault{Slots: []domain.MealSlot{domain.MealSlotMidday}, Main: 8, Side: 6}

	drafts := map[int64]Draft{1: MealDraft{}, 2: MealDraft{Comment: "x"}}

	once := Propagate(session, drafts)
	twice := Propagate(session, once)

	assert.Equal(t, once, twice)
}

func TestPropagate_NoDefault(t *testing.T) {
	session := newMealSession(t, 1)
	drafts := map[int64]Draft{1: MealDraft{Comment: "x"}}

	assert.Equal(t, drafts, Propagate(session, drafts))
	assert.Empty(t, Propagate(nil, nil))
}

func TestSetMealDefault(t *testing.T) {
	session := newMealSession(t, 1, 2)
	_, err := session.UpdateDraft(2, []byte(`{"evening":{"main":"1"}}`))
	require.NoError(t, err)

	err = session.SetMealDefault(MealDefault{Slots: []domain.MealSlot{domain.MealSlotMorning}, Main: 10, Side: 9})
	require.NoError(t, err)

	rows, err := session.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, MealDraft{Morning: MealEntry{Main: "10", Side: "9"}}, rows[0].Draft)
	assert.Equal(t, MealDraft{
		Morning: MealEntry{Main: "10", Side: "9"},
		Evening: MealEntry{Main: "1"},
	}, rows[1].Draft)
}

func TestSetMealDefault_NotMeal(t *testing.T) {
	session, err := NewSession(WorkflowCategoryFirst, domain.CategoryVital, []int64{1}, 1, time.Now())
	require.NoError(t, err)

	err = session.SetMealDefault(MealDefault{Slots: []domain.MealSlot{domain.MealSlotMorning}})
	assert.ErrorIs(t, err, ErrNotMealSession)
	assert.Nil(t, session.MealDefault)
}
