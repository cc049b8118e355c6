package datastore

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowprobe/flowprobe/pkg/mocks"
	"github.com/flowprobe/flowprobe/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreate_ScopesRecordToOrg(t *testing.T) {
	invoker := &mocks.ScriptedInvoker{
		Responses: map[string]map[string]any{
			"datastore-create-record": {"record_id": "rec_1"},
		},
	}
	handler := NewHandler(invoker, testLogger())

	data := map[string]any{
		"collection": "leads",
		"record":     map[string]any{"name": "Jane"},
	}

	response, err := handler.Create(context.Background(), models.ResourceTypeRecord,
		data, &models.StepContext{RunID: "run-1", OrgID: "org-1"})

	require.NoError(t, err)
	assert.Equal(t, "rec_1", response.ExternalID)
	assert.Equal(t, "leads record", response.DisplayName)

	require.Len(t, invoker.Calls, 1)
	payload := invoker.Calls[0].Payload
	assert.Equal(t, "org-1", payload["org_id"])
	assert.Equal(t, "leads", payload["collection"])
	assert.Equal(t, map[string]any{"name": "Jane"}, payload["record"])
}

func TestCreate_DefaultsCollectionAndRecord(t *testing.T) {
	invoker := &mocks.ScriptedInvoker{}
	handler := NewHandler(invoker, testLogger())

	data := map[string]any{"name": "Jane"}

	_, err := handler.Create(context.Background(), models.ResourceTypeRecord,
		data, &models.StepContext{RunID: "run-1", OrgID: "org-1"})

	require.NoError(t, err)
	payload := invoker.Calls[0].Payload
	assert.Equal(t, "test_records", payload["collection"])
	assert.Equal(t, data, payload["record"])
}

func TestReadUpdateDelete_CarryOrgAndRecordID(t *testing.T) {
	invoker := &mocks.ScriptedInvoker{}
	handler := NewHandler(invoker, testLogger())
	stepCtx := &models.StepContext{RunID: "run-1", OrgID: "org-1"}

	_, err := handler.Read(context.Background(), models.ResourceTypeRecord,
		map[string]any{"record_id": "rec_1"}, stepCtx)
	require.NoError(t, err)

	_, err = handler.Update(context.Background(), models.ResourceTypeRecord,
		map[string]any{"record_id": "rec_1", "status": "qualified"}, stepCtx)
	require.NoError(t, err)

	err = handler.Delete(context.Background(),
		&models.TrackedResource{ExternalID: "rec_1"}, stepCtx)
	require.NoError(t, err)

	require.Len(t, invoker.Calls, 3)
	assert.Equal(t, "datastore-get-record", invoker.Calls[0].Callable)
	assert.Equal(t, "datastore-update-record", invoker.Calls[1].Callable)
	assert.Equal(t, "datastore-delete-record", invoker.Calls[2].Callable)

	for _, call := range invoker.Calls {
		assert.Equal(t, "org-1", call.Payload["org_id"])
		assert.Equal(t, "rec_1", call.Payload["record_id"])
	}
}
