package sharehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/share-engine/api"
	"github.com/ruteri/share-engine/engine"
	"github.com/ruteri/share-engine/interfaces"
	"github.com/ruteri/share-engine/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	mux   *chi.Mux
	store *storage.MemoryBackend
}

func newTestEnv(t *testing.T, withStore bool) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	eng, err := engine.New(engine.Config{
		PartyViews: storage.NewMemoryPartyViewStore(),
		Log:        logger,
	})
	require.NoError(t, err)

	env := &testEnv{mux: chi.NewRouter()}
	var store interfaces.ShareStore
	if withStore {
		env.store = storage.NewMemoryBackend(logger)
		store = env.store
	}

	NewHandler(eng, store, logger).RegisterRoutes(env.mux)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = bytes.NewBufferString(raw)
		} else {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w.Result()
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func (e *testEnv) encode(t *testing.T, value string, store bool) *interfaces.ShareRecord {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/shares/encode", api.EncodeRequest{
		Value:     json.RawMessage(value),
		FieldName: "field",
		Store:     store,
	})
	if store {
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	} else {
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	out := decodeJSON[api.RecordResponse](t, resp)
	require.NotNil(t, out.Record)
	assert.Equal(t, store, out.Stored)
	return out.Record
}

func (e *testEnv) decode(t *testing.T, ref api.RecordRef) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/shares/decode", ref)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeJSON[api.DecodeResponse](t, resp).Value
}

func TestHandleEncodeDecode(t *testing.T) {
	env := newTestEnv(t, false)

	record := env.encode(t, `42`, false)
	assert.Equal(t, 2, record.PartyCount())
	assert.Equal(t, "42", env.decode(t, api.RecordRef{Record: record}))

	// Large integers keep their precision
	big := env.encode(t, `123456789012345678901234567890`, false)
	assert.Equal(t, "123456789012345678901234567890", env.decode(t, api.RecordRef{Record: big}))

	// Text maps to its SHA-256 digest reduced modulo P
	text := env.encode(t, `"AB12CD34"`, false)
	assert.Equal(t, engine.TextElement("AB12CD34").String(), env.decode(t, api.RecordRef{Record: text}))
}

func TestHandleEncode_InvalidValues(t *testing.T) {
	env := newTestEnv(t, false)

	for _, value := range []string{`true`, `null`, `{"a":1}`, `[1]`} {
		resp := env.do(t, http.MethodPost, "/api/shares/encode", api.EncodeRequest{Value: json.RawMessage(value)})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "value %s", value)
	}

	resp := env.do(t, http.MethodPost, "/api/shares/encode", `{"value":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/shares/encode", `{"fieldName":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing value")
}

func TestHandleDecode_MalformedRecord(t *testing.T) {
	env := newTestEnv(t, false)

	body := `{"record":{"id":"x","type":"mpc_share","shares":{"party1":"zz","party2":"00"},"metadata":{"partyCount":2,"threshold":2}}}`
	resp := env.do(t, http.MethodPost, "/api/shares/decode", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/shares/decode", api.RecordRef{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "neither record nor id")
}

func TestStoredRecordLifecycle(t *testing.T) {
	env := newTestEnv(t, true)
	record := env.encode(t, `"AB12CD34"`, true)
	id := record.ID()

	resp := env.do(t, http.MethodGet, "/api/shares/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeJSON[api.RecordResponse](t, resp)
	assert.Equal(t, id, got.Record.ID())

	assert.Equal(t, engine.TextElement("AB12CD34").String(), env.decode(t, api.RecordRef{ID: id}))

	resp = env.do(t, http.MethodGet, "/api/shares/"+id+"/audit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	audit := decodeJSON[interfaces.AuditEntry](t, resp)
	assert.Equal(t, id, audit.ID)
	assert.Equal(t, interfaces.ShareRecordType, audit.Type)
	assert.Equal(t, "field", audit.FieldName)
	assert.Equal(t, 2, audit.PartyCount)
	assert.Equal(t, 2, audit.Threshold)

	for party := 1; party <= 2; party++ {
		resp = env.do(t, http.MethodGet, "/api/shares/"+id+"/party/"+strconv.Itoa(party), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		view := decodeJSON[api.PartyViewResponse](t, resp)
		want, err := record.PartyShare(party)
		require.NoError(t, err)
		assert.Equal(t, interfaces.EncodeShareHex(want), view.Share, "party %d", party)
	}

	resp = env.do(t, http.MethodGet, "/api/shares/"+id+"/party/3", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "party outside 1..partyCount")
	resp = env.do(t, http.MethodGet, "/api/shares/"+id+"/party/first", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/shares/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/shares/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/shares/"+id+"/party/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "party views are forgotten on delete")
	resp = env.do(t, http.MethodDelete, "/api/shares/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleEqualityAndAnd(t *testing.T) {
	env := newTestEnv(t, true)

	a := env.encode(t, `"AB12CD34"`, true)
	b := env.encode(t, `"AB12CD34"`, false)
	c := env.encode(t, `"XY98ZW76"`, false)

	resp := env.do(t, http.MethodPost, "/api/shares/equality", api.EqualityRequest{
		A: api.RecordRef{ID: a.ID()},
		B: api.RecordRef{Record: b},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	same := decodeJSON[api.RecordResponse](t, resp).Record
	assert.Equal(t, "1", env.decode(t, api.RecordRef{Record: same}))
	assert.Equal(t, "equality(field,field)", same.FieldName())

	resp = env.do(t, http.MethodPost, "/api/shares/equality", api.EqualityRequest{
		A:     api.RecordRef{Record: a},
		B:     api.RecordRef{Record: c},
		Store: true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	differ := decodeJSON[api.RecordResponse](t, resp).Record
	assert.Equal(t, "0", env.decode(t, api.RecordRef{ID: differ.ID()}))

	resp = env.do(t, http.MethodPost, "/api/shares/and", api.CombineRequest{
		Records: []*interfaces.ShareRecord{same, same},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", env.decode(t, api.RecordRef{Record: decodeJSON[api.RecordResponse](t, resp).Record}))

	resp = env.do(t, http.MethodPost, "/api/shares/and", api.CombineRequest{
		Records: []*interfaces.ShareRecord{same},
		IDs:     []string{differ.ID()},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", env.decode(t, api.RecordRef{Record: decodeJSON[api.RecordResponse](t, resp).Record}))

	resp = env.do(t, http.MethodPost, "/api/shares/and", api.CombineRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "AND of nothing")

	resp = env.do(t, http.MethodPost, "/api/shares/and", api.CombineRequest{Records: []*interfaces.ShareRecord{a}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "AND of a non-boolean record")

	resp = env.do(t, http.MethodPost, "/api/shares/and", `{"records":[null]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleAggregate(t *testing.T) {
	env := newTestEnv(t, true)

	three := env.encode(t, `3`, true)
	four := env.encode(t, `4`, false)

	resp := env.do(t, http.MethodPost, "/api/shares/aggregate", api.CombineRequest{
		Records: []*interfaces.ShareRecord{four},
		IDs:     []string{three.ID()},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sum := decodeJSON[api.RecordResponse](t, resp).Record
	assert.Equal(t, "7", env.decode(t, api.RecordRef{Record: sum}))

	resp = env.do(t, http.MethodPost, "/api/shares/aggregate", api.CombineRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/shares/aggregate", api.CombineRequest{IDs: []string{"0b5f3c4e-8d1a-4c6e-9f2b-7a3d5e1c9b80"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_WithoutStore(t *testing.T) {
	env := newTestEnv(t, false)
	id := "0b5f3c4e-8d1a-4c6e-9f2b-7a3d5e1c9b80"

	resp := env.do(t, http.MethodGet, "/api/shares/"+id, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/shares/"+id, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/shares/encode", api.EncodeRequest{Value: json.RawMessage(`1`), Store: true})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/shares/decode", api.RecordRef{ID: id})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{interfaces.ErrInvalidArgument, http.StatusBadRequest},
		{interfaces.ErrInvalidThreshold, http.StatusBadRequest},
		{interfaces.ErrInsufficientShares, http.StatusBadRequest},
		{interfaces.ErrShareNotFound, http.StatusNotFound},
		{interfaces.ErrBackendUnavailable, http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestClient(t *testing.T) {
	env := newTestEnv(t, true)
	srv := httptest.NewServer(env.mux)
	defer srv.Close()

	ctx := context.Background()
	client := NewClient(srv.URL + "/")

	three, err := client.Encode(ctx, 3, "a", true)
	require.NoError(t, err)
	four, err := client.Encode(ctx, 4, "b", false)
	require.NoError(t, err)

	sum, err := client.Aggregate(ctx, api.CombineRequest{
		Records: []*interfaces.ShareRecord{four.Record},
		IDs:     []string{three.Record.ID()},
	})
	require.NoError(t, err)

	value, err := client.Decode(ctx, api.RecordRef{Record: sum.Record})
	require.NoError(t, err)
	assert.Equal(t, int64(7), value.Int64())

	eq, err := client.Equality(ctx, api.EqualityRequest{A: api.RecordRef{Record: three.Record}, B: api.RecordRef{Record: four.Record}})
	require.NoError(t, err)
	and, err := client.And(ctx, api.CombineRequest{Records: []*interfaces.ShareRecord{eq.Record}})
	require.NoError(t, err)
	value, err = client.Decode(ctx, api.RecordRef{Record: and.Record})
	require.NoError(t, err)
	assert.Equal(t, int64(0), value.Int64())

	stored, err := client.Get(ctx, three.Record.ID())
	require.NoError(t, err)
	assert.Equal(t, three.Record.ID(), stored.ID())

	audit, err := client.Audit(ctx, three.Record.ID())
	require.NoError(t, err)
	assert.Equal(t, "a", audit.FieldName)

	share, err := client.PartyView(ctx, three.Record.ID(), 1)
	require.NoError(t, err)
	want, err := three.Record.PartyShare(1)
	require.NoError(t, err)
	assert.Zero(t, want.Cmp(share))

	require.NoError(t, client.Delete(ctx, three.Record.ID()))
	_, err = client.Get(ctx, three.Record.ID())
	assert.ErrorIs(t, err, interfaces.ErrShareNotFound)

	var statusErr *StatusError
	_, err = client.And(ctx, api.CombineRequest{})
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)
}
