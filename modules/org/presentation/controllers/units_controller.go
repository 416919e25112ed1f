package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/evaldesk/evaldesk/modules/org/domain/aggregates/unit"
	"github.com/evaldesk/evaldesk/modules/org/presentation/mappers"
	"github.com/evaldesk/evaldesk/modules/org/services"
	"github.com/evaldesk/evaldesk/pkg/application"
	"github.com/evaldesk/evaldesk/pkg/httpapi"
	"github.com/evaldesk/evaldesk/pkg/middleware"
	"github.com/evaldesk/evaldesk/pkg/shared"
)

// UnitsController exposes the org hierarchy plus staged editing sessions:
// renames, moves and creates buffer in a session until saved as a batch or
// undone.
type UnitsController struct {
	app              application.Application
	hierarchyService *services.HierarchyService
	basePath         string
}

func NewUnitsController(app application.Application) application.Controller {
	return &UnitsController{
		app:              app,
		hierarchyService: app.Service(services.HierarchyService{}).(*services.HierarchyService),
		basePath:         "/org/units",
	}
}

func (c *UnitsController) Key() string {
	return c.basePath
}

func (c *UnitsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.ProvideUser(),
		middleware.WithTransaction(),
	)
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/tree", c.Tree).Methods(http.MethodGet)
	router.HandleFunc("/sessions", c.OpenSession).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}", c.GetSession).Methods(http.MethodGet)
	router.HandleFunc("/sessions/{id}/changes", c.RecordChange).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}/preview", c.Preview).Methods(http.MethodGet)
	router.HandleFunc("/sessions/{id}/save", c.SaveSession).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}/undo", c.UndoSession).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}", c.CloseSession).Methods(http.MethodDelete)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *UnitsController) List(w http.ResponseWriter, r *http.Request) {
	entities, err := c.hierarchyService.GetAll(r.Context())
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.UnitsToViewModels(entities))
}

// Tree renders the confirmed hierarchy as nested nodes.
func (c *UnitsController) Tree(w http.ResponseWriter, r *http.Request) {
	entities, err := c.hierarchyService.GetAll(r.Context())
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.UnitsToTree(entities))
}

func (c *UnitsController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	entity, err := c.hierarchyService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.UnitToViewModel(entity))
}

func (c *UnitsController) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		ParentID string `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	parentID, ok := optionalUUID(req.ParentID, "parentId", w)
	if !ok {
		return
	}
	created, err := c.hierarchyService.CreateUnit(r.Context(), &unit.CreateDTO{
		Name:     req.Name,
		ParentID: parentID,
	})
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.UnitToViewModel(created))
}

func (c *UnitsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	if _, err := c.hierarchyService.DeleteUnit(r.Context(), id); err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func (c *UnitsController) OpenSession(w http.ResponseWriter, r *http.Request) {
	session, err := c.hierarchyService.Open(r.Context())
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.HierarchySessionToViewModel(session))
}

func (c *UnitsController) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	session, err := c.hierarchyService.Get(id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.HierarchySessionToViewModel(session))
}

// RecordChange buffers one edit. kind is "rename", "move" or "create"; edits
// for the same unit coalesce into a single staged change.
func (c *UnitsController) RecordChange(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	var req struct {
		Kind     string `json:"kind"`
		UnitID   string `json:"unitId"`
		Name     string `json:"name"`
		ParentID string `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	parentID, ok := optionalUUID(req.ParentID, "parentId", w)
	if !ok {
		return
	}

	switch req.Kind {
	case "rename":
		unitID, err := uuid.Parse(req.UnitID)
		if err != nil {
			httpapi.WriteBadRequest(w, "malformed unitId")
			return
		}
		if err := c.hierarchyService.RecordRename(r.Context(), id, unitID, req.Name); err != nil {
			httpapi.WriteDomainError(w, err)
			return
		}
	case "move":
		unitID, err := uuid.Parse(req.UnitID)
		if err != nil {
			httpapi.WriteBadRequest(w, "malformed unitId")
			return
		}
		if err := c.hierarchyService.RecordMove(r.Context(), id, unitID, parentID); err != nil {
			httpapi.WriteDomainError(w, err)
			return
		}
	case "create":
		if _, err := c.hierarchyService.RecordCreate(r.Context(), id, req.Name, parentID); err != nil {
			httpapi.WriteDomainError(w, err)
			return
		}
	default:
		httpapi.WriteBadRequest(w, "kind must be rename, move or create")
		return
	}

	session, err := c.hierarchyService.Get(id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.HierarchySessionToViewModel(session))
}

// Preview renders the tree as it would look after saving, without persisting.
func (c *UnitsController) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	entities, err := c.hierarchyService.Preview(r.Context(), id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.UnitsToTree(entities))
}

func (c *UnitsController) SaveSession(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	report, err := c.hierarchyService.Save(r.Context(), id)
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

func (c *UnitsController) UndoSession(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	discarded, err := c.hierarchyService.Undo(id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]int{"discarded": discarded})
}

func (c *UnitsController) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	c.hierarchyService.Close(id)
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
