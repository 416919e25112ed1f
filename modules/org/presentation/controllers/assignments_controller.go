package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/evaldesk/evaldesk/modules/org/presentation/mappers"
	"github.com/evaldesk/evaldesk/modules/org/services"
	"github.com/evaldesk/evaldesk/pkg/application"
	"github.com/evaldesk/evaldesk/pkg/httpapi"
	"github.com/evaldesk/evaldesk/pkg/middleware"
	"github.com/evaldesk/evaldesk/pkg/shared"
)

// AssignmentsController exposes staged stage-reassignment sessions: record
// buffered moves, save them as one batch, or undo everything synchronously.
type AssignmentsController struct {
	app               application.Application
	assignmentService *services.AssignmentService
	basePath          string
}

func NewAssignmentsController(app application.Application) application.Controller {
	return &AssignmentsController{
		app:               app,
		assignmentService: app.Service(services.AssignmentService{}).(*services.AssignmentService),
		basePath:          "/org/assignments/sessions",
	}
}

func (c *AssignmentsController) Key() string {
	return c.basePath
}

func (c *AssignmentsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.ProvideUser(),
		middleware.WithTransaction(),
	)
	router.HandleFunc("", c.Open).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}/changes", c.Record).Methods(http.MethodPost)
	router.HandleFunc("/{id}/save", c.Save).Methods(http.MethodPost)
	router.HandleFunc("/{id}/undo", c.Undo).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Close).Methods(http.MethodDelete)
}

func (c *AssignmentsController) Open(w http.ResponseWriter, r *http.Request) {
	session, err := c.assignmentService.Open(r.Context())
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.AssignmentSessionToViewModel(session))
}

func (c *AssignmentsController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	session, err := c.assignmentService.Get(id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AssignmentSessionToViewModel(session))
}

// Record buffers one reassignment; an empty stageId moves the employee off
// any stage. Recording the same employee twice keeps only the last change.
func (c *AssignmentsController) Record(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	var req struct {
		EmployeeID string `json:"employeeId"`
		StageID    string `json:"stageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed employeeId")
		return
	}
	var stageID *uuid.UUID
	if req.StageID != "" {
		parsed, err := uuid.Parse(req.StageID)
		if err != nil {
			httpapi.WriteBadRequest(w, "malformed stageId")
			return
		}
		stageID = &parsed
	}

	if err := c.assignmentService.Record(r.Context(), id, services.StageChange{
		EmployeeID: employeeID,
		StageID:    stageID,
	}); err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	session, err := c.assignmentService.Get(id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AssignmentSessionToViewModel(session))
}

// Save flushes the buffer as one batch. Failed entries stay buffered and come
// back in the report with their reasons.
func (c *AssignmentsController) Save(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	report, err := c.assignmentService.Save(r.Context(), id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	code := http.StatusOK
	if len(report.Failed) > 0 {
		code = http.StatusMultiStatus
	}
	_ = httpapi.WriteJSON(w, code, mappers.SaveReportToViewModel(report))
}

// Undo discards every buffered change synchronously.
func (c *AssignmentsController) Undo(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	discarded, err := c.assignmentService.Undo(id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]int{"discarded": discarded})
}

func (c *AssignmentsController) Close(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	c.assignmentService.Close(id)
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
