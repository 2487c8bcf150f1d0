package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fieldkit/jobwalk/internal/catalog"
	"github.com/fieldkit/jobwalk/internal/geometry"
	"github.com/fieldkit/jobwalk/internal/handoff"
	"github.com/fieldkit/jobwalk/internal/session"
	"github.com/fieldkit/jobwalk/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

type AppDeps struct {
	Sessions *session.Manager
	Catalog  *catalog.Catalog
	Token    string
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/catalog", handleGetCatalog(deps))
		r.Get("/prompts", handleListPrompts())

		r.Post("/sessions", handleCreateSession(deps))
		r.Get("/sessions", handleListSessions(deps))
		r.Post("/sessions/import", handleImportSession(deps))
		r.Get("/sessions/{id}", handleGetSession(deps))
		r.Delete("/sessions/{id}", handleDeleteSession(deps))

		r.Put("/sessions/{id}/job", handleSetJob(deps))
		r.Post("/sessions/{id}/answers", handleAnswer(deps))
		r.Delete("/sessions/{id}/answers", handleResetAnswers(deps))
		r.Delete("/sessions/{id}/notes", handleResetNotes(deps))
		r.Post("/sessions/{id}/recompute", handleRecompute(deps))

		r.Put("/sessions/{id}/perimeter", handleSetPerimeter(deps))
		r.Get("/sessions/{id}/perimeter", handleGetPerimeter(deps))

		r.Post("/sessions/{id}/autofill", handleAutoFill(deps))
		r.Post("/sessions/{id}/flightplans/{solutionID}/lines", handleAddPlanLine(deps))
		r.Delete("/sessions/{id}/flightplans/{solutionID}/lines", handleRemovePlanLine(deps))
		r.Put("/sessions/{id}/flightplans/{solutionID}/notes", handleSetPlanNotes(deps))
		r.Post("/sessions/{id}/addons", handleToggleAddOn(deps))
		r.Get("/sessions/{id}/products/{solutionID}", handleSuggestedProducts(deps))

		r.Put("/sessions/{id}/prompts/{promptID}", handleSetPrompt(deps))
		r.Put("/sessions/{id}/disposition", handleSetDisposition(deps))

		r.Get("/sessions/{id}/summary", handleSummary(deps))
		r.Get("/sessions/{id}/export", handleExport(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// writeRecord is the common success response: the full session record,
// so clients never need a follow-up read after a mutation.
func writeRecord(w http.ResponseWriter, rec *session.Record) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// writeSessionError maps manager errors onto HTTP statuses. Validation
// failures from state mutation read as bad requests.
func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func handleGetCatalog(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":   deps.Catalog.Model,
			"addOns":  deps.Catalog.Products.AddOns,
			"arcsite": deps.Catalog.ArcSite,
		})
	}
}

func handleListPrompts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(session.FieldPrompts)
	}
}

func handleCreateSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Address   string `json:"address"`
			Homeowner string `json:"homeowner"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		rec, err := deps.Sessions.Create(r.Context(), req.Address, req.Homeowner)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create session: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)
	}
}

func handleListSessions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := deps.Sessions.List(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list sessions: %v", err)
			return
		}
		if recs == nil {
			recs = []*session.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(recs)
	}
}

func handleGetSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := deps.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleDeleteSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := deps.Sessions.Delete(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete session: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}
}

func handleSetJob(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var job session.Job
		if !decodeBody(w, r, &job) {
			return
		}
		rec, err := deps.Sessions.SetJob(r.Context(), chi.URLParam(r, "id"), job)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleAnswer(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID string `json:"questionId"`
			Value      string `json:"value"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		rec, err := deps.Sessions.Answer(r.Context(), chi.URLParam(r, "id"), req.QuestionID, req.Value)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleResetAnswers(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := deps.Sessions.ResetAnswers(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleResetNotes(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := deps.Sessions.ResetNotes(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleRecompute(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := deps.Sessions.Recompute(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

// PerimeterRequest is a rect or walk payload; Mode selects which fields
// are read.
type PerimeterRequest struct {
	Mode     string             `json:"mode"`
	Rect     session.Rect       `json:"rect"`
	Segments []geometry.Segment `json:"segments"`
}

func handleSetPerimeter(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PerimeterRequest
		if !decodeBody(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		var rec *session.Record
		var err error
		switch req.Mode {
		case "rect":
			rec, err = deps.Sessions.SetPerimeterRect(r.Context(), id, req.Rect.L, req.Rect.W, req.Rect.H)
		case "walk":
			rec, err = deps.Sessions.SetPerimeterWalk(r.Context(), id, req.Segments)
		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "mode must be rect or walk")
			return
		}
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleGetPerimeter(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := deps.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		out := rec.State.Perimeter.Recalculate()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"mode":    rec.State.Perimeter.Mode,
			"points":  rec.State.Perimeter.Points,
			"outputs": out,
		})
	}
}

func handleAutoFill(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := deps.Sessions.AutoFill(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleAddPlanLine(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Item string `json:"item"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		rec, err := deps.Sessions.AddPlanLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "solutionID"), req.Item)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleRemovePlanLine(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Item string `json:"item"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		rec, err := deps.Sessions.RemovePlanLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "solutionID"), req.Item)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleSetPlanNotes(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Notes string `json:"notes"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		rec, err := deps.Sessions.SetPlanNotes(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "solutionID"), req.Notes)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleToggleAddOn(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SolutionID string `json:"solutionId"`
			AddOnID    string `json:"addOnId"`
			On         bool   `json:"on"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		rec, err := deps.Sessions.ToggleAddOn(r.Context(), chi.URLParam(r, "id"), req.SolutionID, req.AddOnID, req.On)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleSuggestedProducts(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := deps.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		products := rec.State.SuggestedProducts(deps.Catalog, chi.URLParam(r, "solutionID"))
		if products == nil {
			products = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"products": products})
	}
}

func handleSetPrompt(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Done bool `json:"done"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		rec, err := deps.Sessions.SetPrompt(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "promptID"), req.Done)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleSetDisposition(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status         *string `json:"status"`
			FollowupDate   *string `json:"followupDate"`
			FollowupMethod *string `json:"followupMethod"`
			Notes          *string `json:"notes"`
			Plan           *string `json:"plan"`
			RegenNotes     bool    `json:"regenNotes"`
			RegenPlan      bool    `json:"regenPlan"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		rec, err := deps.Sessions.SetDisposition(r.Context(), chi.URLParam(r, "id"), session.DispoUpdate{
			Status:         req.Status,
			FollowupDate:   req.FollowupDate,
			FollowupMethod: req.FollowupMethod,
			Notes:          req.Notes,
			Plan:           req.Plan,
			RegenNotes:     req.RegenNotes,
			RegenPlan:      req.RegenPlan,
		})
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeRecord(w, rec)
	}
}

func handleSummary(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := deps.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		if r.URL.Query().Get("format") == "html" {
			page, err := handoff.HTML(rec.State, deps.Catalog)
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to render summary: %v", err)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(page)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, handoff.Text(rec.State, deps.Catalog))
	}
}

func handleExport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := deps.Sessions.Export(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="jobwalk-session.json"`)
		w.Write(data)
	}
}

func handleImportSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()
		data, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading body: %v", err)
			return
		}
		rec, err := deps.Sessions.ImportNew(r.Context(), data)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)
	}
}
