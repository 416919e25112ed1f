package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/evaldesk/evaldesk/modules/org/domain/entities/employee"
	"github.com/evaldesk/evaldesk/modules/org/presentation/mappers"
	"github.com/evaldesk/evaldesk/modules/org/services"
	"github.com/evaldesk/evaldesk/pkg/application"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/httpapi"
	"github.com/evaldesk/evaldesk/pkg/middleware"
	"github.com/evaldesk/evaldesk/pkg/shared"
)

type EmployeesController struct {
	app             application.Application
	employeeService *services.EmployeeService
	basePath        string
}

func NewEmployeesController(app application.Application) application.Controller {
	return &EmployeesController{
		app:             app,
		employeeService: app.Service(services.EmployeeService{}).(*services.EmployeeService),
		basePath:        "/org/employees",
	}
}

func (c *EmployeesController) Key() string {
	return c.basePath
}

func (c *EmployeesController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.ProvideUser(),
		middleware.WithTransaction(),
	)
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

type employeeRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	SupervisorID string `json:"supervisorId"`
	UnitID       string `json:"unitId"`
}

func optionalUUID(raw, field string, w http.ResponseWriter) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed "+field)
		return nil, false
	}
	return &id, true
}

func parseQueryUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

func (c *EmployeesController) List(w http.ResponseWriter, r *http.Request) {
	params := composables.UsePaginated(r)
	stageID, err := parseQueryUUID(r, "stageId")
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed stageId")
		return
	}
	unitID, err := parseQueryUUID(r, "unitId")
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed unitId")
		return
	}
	supervisorID, err := parseQueryUUID(r, "supervisorId")
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed supervisorId")
		return
	}

	entities, err := c.employeeService.GetPaginated(r.Context(), &employee.FindParams{
		Limit:        params.Limit,
		Offset:       params.Offset,
		StageID:      stageID,
		UnitID:       unitID,
		SupervisorID: supervisorID,
	})
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.EmployeesToViewModels(entities))
}

func (c *EmployeesController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	entity, err := c.employeeService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.EmployeeToViewModel(entity))
}

func (c *EmployeesController) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	supervisorID, ok := optionalUUID(req.SupervisorID, "supervisorId", w)
	if !ok {
		return
	}
	unitID, ok := optionalUUID(req.UnitID, "unitId", w)
	if !ok {
		return
	}
	created, err := c.employeeService.Create(r.Context(), &employee.CreateDTO{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		SupervisorID: supervisorID,
		UnitID:       unitID,
	})
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.EmployeeToViewModel(created))
}

func (c *EmployeesController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	supervisorID, ok := optionalUUID(req.SupervisorID, "supervisorId", w)
	if !ok {
		return
	}
	unitID, ok := optionalUUID(req.UnitID, "unitId", w)
	if !ok {
		return
	}
	updated, err := c.employeeService.Update(r.Context(), id, &employee.UpdateDTO{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		SupervisorID: supervisorID,
		UnitID:       unitID,
	})
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.EmployeeToViewModel(updated))
}

func (c *EmployeesController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	if _, err := c.employeeService.Delete(r.Context(), id); err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
