package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/entities/period"
	"github.com/evaldesk/evaldesk/modules/evaluation/presentation/mappers"
	"github.com/evaldesk/evaldesk/modules/evaluation/presentation/viewmodels"
	"github.com/evaldesk/evaldesk/modules/evaluation/services"
	"github.com/evaldesk/evaldesk/pkg/application"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/httpapi"
	"github.com/evaldesk/evaldesk/pkg/middleware"
	"github.com/evaldesk/evaldesk/pkg/shared"
)

type PeriodsController struct {
	app           application.Application
	periodService *services.PeriodService
	basePath      string
}

func NewPeriodsController(app application.Application) application.Controller {
	return &PeriodsController{
		app:           app,
		periodService: app.Service(services.PeriodService{}).(*services.PeriodService),
		basePath:      "/evaluation/periods",
	}
}

func (c *PeriodsController) Key() string {
	return c.basePath
}

func (c *PeriodsController) Register(r *mux.Router) {
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
	router.HandleFunc("/{id}/transition", c.Transition).Methods(http.MethodPost)
}

type periodRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (req *periodRequest) dates() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return start, end, err
	}
	end, err = time.Parse("2006-01-02", req.EndDate)
	return start, end, err
}

func (c *PeriodsController) List(w http.ResponseWriter, r *http.Request) {
	params := composables.UsePaginated(r)
	findParams := &period.FindParams{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	for _, raw := range r.URL.Query()["status"] {
		status, err := period.ParseStatus(raw)
		if err != nil {
			httpapi.WriteBadRequest(w, err.Error())
			return
		}
		findParams.Statuses = append(findParams.Statuses, status)
	}

	entities, err := c.periodService.GetPaginated(r.Context(), findParams)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.PeriodsToViewModels(entities))
}

// Grouped returns all periods bucketed by status, active bucket first.
func (c *PeriodsController) Grouped(w http.ResponseWriter, r *http.Request) {
	groups, err := c.periodService.GroupedByStatus(r.Context())
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	out := make([]*viewmodels.PeriodGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, &viewmodels.PeriodGroup{
			Status:  string(g.Key),
			Periods: mappers.PeriodsToViewModels(g.Items),
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *PeriodsController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	entity, err := c.periodService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.PeriodToViewModel(entity))
}

func (c *PeriodsController) Create(w http.ResponseWriter, r *http.Request) {
	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	start, end, err := req.dates()
	if err != nil {
		httpapi.WriteBadRequest(w, "dates must use the 2006-01-02 format")
		return
	}
	created, err := c.periodService.Create(r.Context(), &period.CreateDTO{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.PeriodToViewModel(created))
}

func (c *PeriodsController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	start, end, err := req.dates()
	if err != nil {
		httpapi.WriteBadRequest(w, "dates must use the 2006-01-02 format")
		return
	}
	if err := c.periodService.Update(r.Context(), id, &period.UpdateDTO{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
	}); err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	entity, err := c.periodService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.PeriodToViewModel(entity))
}

func (c *PeriodsController) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	next, err := period.ParseStatus(req.Status)
	if err != nil {
		httpapi.WriteBadRequest(w, err.Error())
		return
	}
	updated, err := c.periodService.Transition(r.Context(), id, next)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.PeriodToViewModel(updated))
}

func (c *PeriodsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	if _, err := c.periodService.Delete(r.Context(), id); err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
