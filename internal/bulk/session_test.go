package bulk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

func TestNewSession(t *testing.T) {
	session, err := NewSession(WorkflowResidentsFirst, domain.CategoryComment, []int64{3, 1, 3, 2}, 9, recordedAt)

	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, []int64{1, 2, 3}, session.ResidentIDs)
	assert.Equal(t, []int64{1, 2, 3}, session.Drafts.ResidentIDs())
	assert.True(t, session.Contains(2))
	assert.False(t, session.Contains(4))
}

func TestNewSession_Errors(t *testing.T) {
	_, err := NewSession(Workflow("random"), domain.CategoryVital, []int64{1}, 1, recordedAt)
	assert.ErrorIs(t, err, ErrInvalidWorkflow)

	_, err = NewSession(WorkflowResidentsFirst, domain.Category("bath"), []int64{1}, 1, recordedAt)
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	_, err = NewSession(WorkflowCategoryFirst, domain.CategoryVital, nil, 1, recordedAt)
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestSession_UpdateDraftOutsideSelection(t *testing.T) {
	session, err := NewSession(WorkflowResidentsFirst, domain.CategoryVital, []int64{1}, 1, recordedAt)
	require.NoError(t, err)

	_, err = session.UpdateDraft(2, json.RawMessage(`{"pulse":"70"}`))
	assert.ErrorIs(t, err, ErrResidentNotInSession)
}

func TestSession_Commit(t *testing.T) {
	session, err := NewSession(WorkflowResidentsFirst, domain.CategoryNightPatrol, []int64{1, 2}, 4, recordedAt)
	require.NoError(t, err)
	_, err = session.UpdateDraft(2, json.RawMessage(`{"status":"awake","comment":"如厕"}`))
	require.NoError(t, err)

	writer := &fakeWriter{}
	tally := session.Commit(NewSequentialCommitter(writer))

	assert.Equal(t, Tally{Succeeded: 2}, tally)
	require.Len(t, writer.calls, 2)
	rec := writer.calls[1][0].(*domain.NightPatrolRecord)
	assert.Equal(t, domain.PatrolStatusAwake, rec.Status)
	assert.Equal(t, int64(4), rec.StaffID)
	assert.Equal(t, recordedAt, rec.PatrolTime())
}

func TestSession_CommitRow(t *testing.T) {
	session, err := NewSession(WorkflowCategoryFirst, domain.CategoryVital, []int64{1, 2}, 4, recordedAt)
	require.NoError(t, err)
	_, err = session.UpdateDraft(1, json.RawMessage(`{"pulse":"70"}`))
	require.NoError(t, err)
	_, err = session.UpdateDraft(2, json.RawMessage(`{"pulse":"80"}`))
	require.NoError(t, err)

	writer := &fakeWriter{}
	tally, err := session.CommitRow(NewSequentialCommitter(writer), 1)

	require.NoError(t, err)
	assert.Equal(t, Tally{Succeeded: 1}, tally)
	require.Len(t, writer.calls, 1)

	rows, err := session.Rows()
	require.NoError(t, err)
	assert.Equal(t, VitalDraft{}, rows[0].Draft)
	assert.Equal(t, VitalDraft{Pulse: "80"}, rows[1].Draft)

	// 空行提交记为跳过
	tally, err = session.CommitRow(NewSequentialCommitter(writer), 1)
	require.NoError(t, err)
	assert.Equal(t, Tally{Skipped: 1}, tally)

	_, err = session.CommitRow(NewSequentialCommitter(writer), 3)
	assert.ErrorIs(t, err, ErrResidentNotInSession)
}

func TestSession_JSON(t *testing.T) {
	session, err := NewSession(WorkflowResidentsFirst, domain.CategoryMeal, []int64{1, 2}, 4, recordedAt)
	require.NoError(t, err)
	_, err = session.UpdateDraft(1, json.RawMessage(`{"midday":{"main":"6","side":"6"}}`))
	require.NoError(t, err)

	data, err := json.Marshal(session)
	require.NoError(t, err)

	var decoded Session
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, session.ID, decoded.ID)
	assert.Equal(t, session.ResidentIDs, decoded.ResidentIDs)
	assert.True(t, session.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, session.Drafts.Snapshot(), decoded.Drafts.Snapshot())
}
