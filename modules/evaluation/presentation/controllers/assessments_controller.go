package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/assessment"
	"github.com/evaldesk/evaldesk/modules/evaluation/presentation/mappers"
	"github.com/evaldesk/evaldesk/modules/evaluation/services"
	"github.com/evaldesk/evaldesk/pkg/application"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/httpapi"
	"github.com/evaldesk/evaldesk/pkg/middleware"
	"github.com/evaldesk/evaldesk/pkg/shared"
)

type AssessmentsController struct {
	app               application.Application
	assessmentService *services.AssessmentService
	basePath          string
}

func NewAssessmentsController(app application.Application) application.Controller {
	return &AssessmentsController{
		app:               app,
		assessmentService: app.Service(services.AssessmentService{}).(*services.AssessmentService),
		basePath:          "/evaluation/assessments",
	}
}

func (c *AssessmentsController) Key() string {
	return c.basePath
}

func (c *AssessmentsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.ProvideUser(),
		middleware.WithTransaction(),
	)
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/draft", c.GetOrCreateDraft).Methods(http.MethodPost)
	router.HandleFunc("/bulk-status", c.BulkSetStatus).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}/comment", c.SetOverallComment).Methods(http.MethodPut)
	router.HandleFunc("/{id}/submit", c.Submit).Methods(http.MethodPost)
	router.HandleFunc("/{id}/review", c.Review).Methods(http.MethodPost)
}

func (c *AssessmentsController) List(w http.ResponseWriter, r *http.Request) {
	params := composables.UsePaginated(r)
	periodID, err := parseQueryUUID(r, "periodId")
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed periodId")
		return
	}
	findParams := &assessment.FindParams{
		Limit:    params.Limit,
		Offset:   params.Offset,
		PeriodID: periodID,
	}
	for _, raw := range r.URL.Query()["status"] {
		status, err := assessment.ParseStatus(raw)
		if err != nil {
			httpapi.WriteBadRequest(w, err.Error())
			return
		}
		findParams.Statuses = append(findParams.Statuses, status)
	}

	entities, err := c.assessmentService.GetPaginated(r.Context(), findParams)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AssessmentsToViewModels(entities))
}

func (c *AssessmentsController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	entity, err := c.assessmentService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AssessmentToViewModel(entity))
}

// GetOrCreateDraft resolves the caller's assessment for a period, creating an
// empty draft on first access.
func (c *AssessmentsController) GetOrCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeriodID string `json:"periodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	periodID, err := uuid.Parse(req.PeriodID)
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed periodId")
		return
	}
	actor, err := composables.UseUser(r.Context())
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	entity, err := c.assessmentService.GetOrCreateDraft(r.Context(), periodID, actor.ID)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AssessmentToViewModel(entity))
}

func (c *AssessmentsController) SetOverallComment(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	entity, err := c.assessmentService.SetOverallComment(r.Context(), id, req.Comment)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AssessmentToViewModel(entity))
}

func (c *AssessmentsController) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	entity, err := c.assessmentService.Submit(r.Context(), id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AssessmentToViewModel(entity))
}

func (c *AssessmentsController) Review(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	var req struct {
		Decision string `json:"decision"`
		Comment  string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	entity, err := c.assessmentService.Review(r.Context(), id, services.ReviewDTO{
		Decision: services.ReviewDecision(req.Decision),
		Comment:  req.Comment,
	})
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AssessmentToViewModel(entity))
}

// BulkSetStatus applies one status to many assessments and reports per-item
// outcomes; a failed item never blocks the others.
func (c *AssessmentsController) BulkSetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs    []string `json:"ids"`
		Status string   `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	status, err := assessment.ParseStatus(req.Status)
	if err != nil {
		httpapi.WriteBadRequest(w, err.Error())
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpapi.WriteBadRequest(w, "malformed id "+raw)
			return
		}
		ids = append(ids, id)
	}
	result, err := c.assessmentService.BulkSetStatus(r.Context(), ids, status)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	code := http.StatusOK
	if result.FailureCount > 0 {
		code = http.StatusMultiStatus
	}
	_ = httpapi.WriteJSON(w, code, result)
}
