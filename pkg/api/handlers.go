package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/logging"
	"github.com/AdilzhanB/Spilldataserver/pkg/storage"
	"github.com/AdilzhanB/Spilldataserver/pkg/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type APIHandler struct {
	store storage.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewAPIHandler(store storage.Store, log *zap.Logger) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIHandler{store: store, log: log, now: time.Now}
}

// HandleSaveReading validates the posted reading and persists it.
func (h *APIHandler) HandleSaveReading(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context(), h.log)

	var payload map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil || payload == nil {
		log.Debug("rejecting unparsable payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON payload"})
		return
	}

	reading, err := types.FromPayload(payload, h.now())
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	saved, err := h.store.Save(r.Context(), *reading)
	if err != nil {
		log.Error("failed to save reading", zap.String("device_id", reading.DeviceID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save data"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Data received successfully",
		"timestamp": saved.Timestamp,
		"data":      saved,
	})
}

// HandleLatestReading returns the newest reading of the device in the path.
func (h *APIHandler) HandleLatestReading(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context(), h.log)
	deviceID := deviceIDParam(r)

	reading, err := h.store.Latest(r.Context(), deviceID)
	if err != nil {
		log.Error("failed to read latest reading", zap.String("device_id", deviceID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error retrieving data"})
		return
	}
	if reading == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No data found for device"})
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": h.now().UTC(),
		"backend":   h.store.Backend(),
	})
}

// chi matches on the raw path when the client escaped characters, see chi.Mux.routeHTTP.
func deviceIDParam(r *http.Request) string {
	id := chi.URLParam(r, "deviceID")
	if r.URL.RawPath == "" {
		return id
	}
	if unescaped, err := url.PathUnescape(id); err == nil {
		return unescaped
	}
	return id
}

func writeValidationError(w http.ResponseWriter, verr *types.ValidationError) {
	if len(verr.Missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Missing required fields",
			"missing": verr.Missing,
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "Invalid field values",
		"invalid": verr.Invalid,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
