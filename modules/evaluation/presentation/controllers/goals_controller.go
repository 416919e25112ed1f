package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/goal"
	"github.com/evaldesk/evaldesk/modules/evaluation/presentation/mappers"
	"github.com/evaldesk/evaldesk/modules/evaluation/presentation/viewmodels"
	"github.com/evaldesk/evaldesk/modules/evaluation/services"
	"github.com/evaldesk/evaldesk/pkg/application"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/httpapi"
	"github.com/evaldesk/evaldesk/pkg/middleware"
	"github.com/evaldesk/evaldesk/pkg/shared"
)

type GoalsController struct {
	app         application.Application
	goalService *services.GoalService
	basePath    string
}

func NewGoalsController(app application.Application) application.Controller {
	return &GoalsController{
		app:         app,
		goalService: app.Service(services.GoalService{}).(*services.GoalService),
		basePath:    "/evaluation/goals",
	}
}

func (c *GoalsController) Key() string {
	return c.basePath
}

func (c *GoalsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.ProvideUser(),
		middleware.WithTransaction(),
	)
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/grouped", c.Grouped).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

type goalRequest struct {
	PeriodID    string `json:"periodId"`
	EmployeeID  string `json:"employeeId"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Weight      string `json:"weight"`
}

func parseQueryUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

func (c *GoalsController) List(w http.ResponseWriter, r *http.Request) {
	params := composables.UsePaginated(r)
	periodID, err := parseQueryUUID(r, "periodId")
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed periodId")
		return
	}
	employeeID, err := parseQueryUUID(r, "employeeId")
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed employeeId")
		return
	}

	entities, err := c.goalService.GetPaginated(r.Context(), &goal.FindParams{
		Limit:      params.Limit,
		Offset:     params.Offset,
		PeriodID:   periodID,
		EmployeeID: employeeID,
		Category:   r.URL.Query().Get("category"),
	})
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.GoalsToViewModels(entities))
}

// Grouped returns an employee's goals for a period bucketed by category,
// heaviest first within each bucket.
func (c *GoalsController) Grouped(w http.ResponseWriter, r *http.Request) {
	periodID, err := parseQueryUUID(r, "periodId")
	if err != nil || periodID == uuid.Nil {
		httpapi.WriteBadRequest(w, "periodId is required")
		return
	}
	employeeID, err := parseQueryUUID(r, "employeeId")
	if err != nil || employeeID == uuid.Nil {
		httpapi.WriteBadRequest(w, "employeeId is required")
		return
	}
	groups, err := c.goalService.GroupedByCategory(r.Context(), periodID, employeeID)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	out := make([]*viewmodels.GoalGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, &viewmodels.GoalGroup{
			Category: g.Key,
			Goals:    mappers.GoalsToViewModels(g.Items),
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *GoalsController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	entity, err := c.goalService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.GoalToViewModel(entity))
}

func (c *GoalsController) Create(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	periodID, err := uuid.Parse(req.PeriodID)
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed periodId")
		return
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed employeeId")
		return
	}
	weight, err := decimal.NewFromString(req.Weight)
	if err != nil {
		httpapi.WriteBadRequest(w, "weight must be a decimal number")
		return
	}
	created, err := c.goalService.Create(r.Context(), &goal.CreateDTO{
		PeriodID:    periodID,
		EmployeeID:  employeeID,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Weight:      weight,
	})
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.GoalToViewModel(created))
}

func (c *GoalsController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	weight, err := decimal.NewFromString(req.Weight)
	if err != nil {
		httpapi.WriteBadRequest(w, "weight must be a decimal number")
		return
	}
	updated, err := c.goalService.Update(r.Context(), id, &goal.UpdateDTO{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Weight:      weight,
	})
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.GoalToViewModel(updated))
}

func (c *GoalsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	if _, err := c.goalService.Delete(r.Context(), id); err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
