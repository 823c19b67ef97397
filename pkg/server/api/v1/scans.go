package v1

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sitevitals/sitevitals/pkg/scan"
	"github.com/sitevitals/sitevitals/pkg/server/api"
	"github.com/sitevitals/sitevitals/pkg/server/jobs"
	"github.com/sitevitals/sitevitals/pkg/storage"
)

// DTO Evolution Policy
// The request/response payloads handled in this file are part of the
// public API contract. Changes must be additive-only: new optional fields
// with safe zero values, never removals or renames. Breaking changes
// require a new API version (v2).

// CreateScanRequest is the POST /api/v1/scans body.
type CreateScanRequest struct {
	URL  string `json:"url"`
	TopN int    `json:"top_n,omitempty"`
}

// CreateScanResponse is the 202 response for an accepted scan.
type CreateScanResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateScanHandler handles POST /api/v1/scans.
//
// The scan runs in the background: the handler validates the target,
// pre-creates a pending history record under a fresh scan ID, submits a
// job carrying that ID and answers 202 immediately. A full queue answers
// 503 rather than blocking the request.
func CreateScanHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "INVALID_BODY", "request body must be valid JSON")
			return
		}

		params := scan.Params{TargetURL: req.URL, TopN: req.TopN}
		if err := params.Validate(); err != nil {
			api.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "INVALID_TARGET", err.Error())
			return
		}

		scanID := uuid.New().String()
		params.ScanID = scanID

		record := &storage.ScanRecord{
			ID:        scanID,
			TargetURL: req.URL,
			Status:    storage.StatusPending,
			StartedAt: time.Now(),
		}
		if err := deps.Storage.Scans().Create(r.Context(), record); err != nil {
			api.WriteError(w, r, err)
			return
		}

		if err := deps.Jobs.Submit(jobs.Job{ScanID: scanID, Params: params}); err != nil {
			// Roll the orphaned record back so it doesn't linger as
			// pending forever.
			_ = deps.Storage.Scans().Delete(r.Context(), scanID)
			api.WriteError(w, r, err)
			return
		}

		api.WriteJSON(w, http.StatusAccepted, CreateScanResponse{
			ID:     scanID,
			Status: storage.StatusPending.String(),
		})
	}
}

// ListScansHandler handles GET /api/v1/scans.
//
// Query parameters:
//   - status: filter by status (pending, running, completed, failed)
//   - target: filter by target URL substring
//   - limit:  maximum number of results (default 50, max 100)
//   - offset: number of results to skip
//
// Response format:
//
//	{
//	  "scans": [
//	    {"id": "...", "target_url": "https://example.com", "status": "completed",
//	     "started_at": "2025-01-01T00:00:00Z", "overall_score": 78, "issue_count": 2}
//	  ],
//	  "total": 1
//	}
func ListScansHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			api.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "INVALID_QUERY", err.Error())
			return
		}

		records, err := deps.Storage.Scans().List(r.Context(), filter)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, map[string]any{
			"scans": records,
			"total": len(records),
		})
	}
}

// GetScanHandler handles GET /api/v1/scans/{id}.
//
// Returns the scan record with the full report document embedded once the
// scan has completed. Returns 404 for unknown IDs.
func GetScanHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			api.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "SCAN_ID_REQUIRED", "scan id is required")
			return
		}

		record, err := deps.Storage.Scans().Get(r.Context(), id)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}

		response := map[string]any{
			"scan": record,
		}

		// The report document only exists for completed scans; its
		// absence is not an error for pending/running ones.
		if report, err := deps.Storage.Scans().LoadReport(r.Context(), id); err == nil {
			response["report"] = json.RawMessage(report)
		}

		api.WriteJSON(w, http.StatusOK, response)
	}
}

// DeleteScanHandler handles DELETE /api/v1/scans/{id}.
func DeleteScanHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			api.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "SCAN_ID_REQUIRED", "scan id is required")
			return
		}

		if err := deps.Storage.Scans().Delete(r.Context(), id); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseListFilter(r *http.Request) (storage.Filter, error) {
	filter := storage.Filter{
		Status: r.URL.Query().Get("status"),
		Target: r.URL.Query().Get("target"),
		Limit:  50,
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return storage.Filter{}, storage.NewInvalidInputError("limit", "must be a positive integer")
		}
		if limit > 100 {
			limit = 100
		}
		filter.Limit = limit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return storage.Filter{}, storage.NewInvalidInputError("offset", "must be a non-negative integer")
		}
		filter.Offset = offset
	}

	if filter.Status != "" && !storage.ScanStatus(filter.Status).IsValid() {
		return storage.Filter{}, storage.NewInvalidInputError("status", "unknown scan status")
	}

	return filter, nil
}
