package sharehandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/share-engine/api"
	"github.com/ruteri/share-engine/interfaces"
)

// Handler exposes a ShareEngine and an optional ShareStore over HTTP.
//
// Records travel in their JSON wire format. Operations that accept records also
// accept ids of records previously stored, which requires a store.
type Handler struct {
	engine interfaces.ShareEngine
	store  interfaces.ShareStore
	log    *slog.Logger
}

// NewHandler creates a new HTTP request handler. store may be nil, in which case
// persistence and lookups by id respond with 503.
func NewHandler(engine interfaces.ShareEngine, store interfaces.ShareStore, log *slog.Logger) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
		log:    log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/shares/encode", h.HandleEncode)
	r.Post("/api/shares/decode", h.HandleDecode)
	r.Post("/api/shares/equality", h.HandleEquality)
	r.Post("/api/shares/and", h.HandleAnd)
	r.Post("/api/shares/aggregate", h.HandleAggregate)
	r.Get("/api/shares/{id}", h.HandleGet)
	r.Delete("/api/shares/{id}", h.HandleDelete)
	r.Get("/api/shares/{id}/audit", h.HandleAudit)
	r.Get("/api/shares/{id}/party/{party}", h.HandlePartyView)
}

// HandleEncode splits a plaintext value into a new share record.
//
// URL format: POST /api/shares/encode
// Request body: api.EncodeRequest
// Response: api.RecordResponse
func (h *Handler) HandleEncode(w http.ResponseWriter, r *http.Request) {
	var req api.EncodeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	value, err := req.PlainValue()
	if err != nil {
		h.writeError(w, "invalid value", err)
		return
	}

	record, err := h.engine.Encode(value, req.FieldName)
	if err != nil {
		h.writeError(w, "could not encode value", err)
		return
	}

	h.respondRecord(r.Context(), w, record, req.Store)
}

// HandleDecode reconstructs the value a record encodes.
//
// URL format: POST /api/shares/decode
// Request body: api.RecordRef
// Response: api.DecodeResponse with the field element in decimal
func (h *Handler) HandleDecode(w http.ResponseWriter, r *http.Request) {
	var req api.RecordRef
	if !h.decodeBody(w, r, &req) {
		return
	}

	record, err := h.resolve(r.Context(), req)
	if err != nil {
		h.writeError(w, "could not load record", err)
		return
	}

	value, err := h.engine.Decode(record)
	if err != nil {
		h.writeError(w, "could not decode record", err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.DecodeResponse{Value: value.String()})
}

// HandleEquality returns a record encoding 1 if both inputs encode the same value.
//
// URL format: POST /api/shares/equality
// Request body: api.EqualityRequest
// Response: api.RecordResponse
func (h *Handler) HandleEquality(w http.ResponseWriter, r *http.Request) {
	var req api.EqualityRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	a, err := h.resolve(r.Context(), req.A)
	if err != nil {
		h.writeError(w, "could not load record a", err)
		return
	}
	b, err := h.resolve(r.Context(), req.B)
	if err != nil {
		h.writeError(w, "could not load record b", err)
		return
	}

	record, err := h.engine.SecureEquality(a, b)
	if err != nil {
		h.writeError(w, "could not compare records", err)
		return
	}

	h.respondRecord(r.Context(), w, record, req.Store)
}

// HandleAnd returns a record encoding the AND of boolean records.
//
// URL format: POST /api/shares/and
// Request body: api.CombineRequest
// Response: api.RecordResponse
func (h *Handler) HandleAnd(w http.ResponseWriter, r *http.Request) {
	h.handleCombine(w, r, "and", h.engine.SecureAnd)
}

// HandleAggregate returns a record combining the inputs' per-party share sums.
//
// URL format: POST /api/shares/aggregate
// Request body: api.CombineRequest
// Response: api.RecordResponse
func (h *Handler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	h.handleCombine(w, r, "aggregate", h.engine.SecureAggregate)
}

func (h *Handler) handleCombine(w http.ResponseWriter, r *http.Request, op string, combine func([]*interfaces.ShareRecord) (*interfaces.ShareRecord, error)) {
	var req api.CombineRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	records := make([]*interfaces.ShareRecord, 0, len(req.Records)+len(req.IDs))
	for i, record := range req.Records {
		if record == nil {
			h.writeError(w, "invalid records", fmt.Errorf("%w: record %d is null", interfaces.ErrInvalidArgument, i))
			return
		}
		records = append(records, record)
	}
	for _, id := range req.IDs {
		record, err := h.fetch(r.Context(), id)
		if err != nil {
			h.writeError(w, "could not load record "+id, err)
			return
		}
		records = append(records, record)
	}

	record, err := combine(records)
	if err != nil {
		h.writeError(w, "could not compute "+op, err)
		return
	}

	h.respondRecord(r.Context(), w, record, req.Store)
}

// HandleGet returns a stored record.
//
// URL format: GET /api/shares/{id}
// Response: api.RecordResponse
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.fetch(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, "could not load record", err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.RecordResponse{Record: record, Stored: true})
}

// HandleDelete removes a stored record and forgets its party views.
//
// URL format: DELETE /api/shares/{id}
// Response: 204 No Content
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if h.store == nil {
		h.writeError(w, "could not delete record", fmt.Errorf("%w: no share store configured", interfaces.ErrBackendUnavailable))
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeError(w, "could not delete record", err)
		return
	}
	h.engine.ForgetPartyViews(id)

	h.log.Info("Deleted share record", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// HandleAudit describes a stored record without secret material.
//
// URL format: GET /api/shares/{id}/audit
// Response: interfaces.AuditEntry
func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	record, err := h.fetch(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, "could not load record", err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.engine.AuditTrail(record))
}

// HandlePartyView returns the share one party holds for a record the engine created.
//
// URL format: GET /api/shares/{id}/party/{party}
// Response: api.PartyViewResponse
func (h *Handler) HandlePartyView(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	party, err := strconv.Atoi(r.PathValue("party"))
	if err != nil {
		h.writeError(w, "invalid party", fmt.Errorf("%w: %v", interfaces.ErrInvalidArgument, err))
		return
	}

	share, err := h.engine.PartyView(id, party)
	if err != nil {
		h.writeError(w, "could not load party view", err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.PartyViewResponse{
		ID:    id,
		Party: party,
		Share: interfaces.EncodeShareHex(share),
	})
}

func (h *Handler) resolve(ctx context.Context, ref api.RecordRef) (*interfaces.ShareRecord, error) {
	if ref.Record != nil {
		return ref.Record, nil
	}
	if ref.ID == "" {
		return nil, fmt.Errorf("%w: neither record nor id given", interfaces.ErrInvalidArgument)
	}
	return h.fetch(ctx, ref.ID)
}

func (h *Handler) fetch(ctx context.Context, id string) (*interfaces.ShareRecord, error) {
	if h.store == nil {
		return nil, fmt.Errorf("%w: no share store configured", interfaces.ErrBackendUnavailable)
	}
	return h.store.Fetch(ctx, id)
}

func (h *Handler) respondRecord(ctx context.Context, w http.ResponseWriter, record *interfaces.ShareRecord, store bool) {
	if store {
		if h.store == nil {
			h.writeError(w, "could not store record", fmt.Errorf("%w: no share store configured", interfaces.ErrBackendUnavailable))
			return
		}
		if err := h.store.Store(ctx, record); err != nil {
			h.writeError(w, "could not store record", err)
			return
		}
	}

	status := http.StatusOK
	if store {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, api.RecordResponse{Record: record, Stored: store})
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, api.DefaultMaxRequestBodySize))
	if err != nil {
		http.Error(w, fmt.Errorf("failed to read request body: %w", err).Error(), http.StatusBadRequest)
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, fmt.Errorf("invalid request body: %w", err).Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(msg, "err", err)
	} else {
		h.log.Debug(msg, "err", err)
	}
	http.Error(w, fmt.Errorf("%s: %w", msg, err).Error(), status)
}

// StatusFor maps engine and storage errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrInvalidArgument),
		errors.Is(err, interfaces.ErrInvalidThreshold),
		errors.Is(err, interfaces.ErrInsufficientShares):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrShareNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
