package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/assessment"
	"github.com/evaldesk/evaldesk/modules/evaluation/presentation/mappers"
	"github.com/evaldesk/evaldesk/modules/evaluation/presentation/viewmodels"
	"github.com/evaldesk/evaldesk/modules/evaluation/services"
	"github.com/evaldesk/evaldesk/pkg/application"
	"github.com/evaldesk/evaldesk/pkg/httpapi"
	"github.com/evaldesk/evaldesk/pkg/middleware"
	"github.com/evaldesk/evaldesk/pkg/optimistic"
	"github.com/evaldesk/evaldesk/pkg/shared"
)

// SessionsController exposes assessment edit sessions. A session holds an
// optimistic snapshot server-side: rating writes answer immediately with the
// provisional state and the confirmed state replaces it once the save lands.
type SessionsController struct {
	app            application.Application
	sessionService *services.AssessmentSessionService
	basePath       string
}

func NewSessionsController(app application.Application) application.Controller {
	return &SessionsController{
		app:            app,
		sessionService: app.Service(services.AssessmentSessionService{}).(*services.AssessmentSessionService),
		basePath:       "/evaluation/sessions",
	}
}

func (c *SessionsController) Key() string {
	return c.basePath
}

func (c *SessionsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.ProvideUser(),
		middleware.WithTransaction(),
	)
	router.HandleFunc("", c.Open).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}/rating", c.SetRating).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Close).Methods(http.MethodDelete)
}

func (c *SessionsController) sessionView(session *services.AssessmentEditSession) *viewmodels.EditSession {
	snapshot := session.Snapshot()
	return &viewmodels.EditSession{
		ID:            session.ID.String(),
		AssessmentID:  session.AssessmentID.String(),
		Snapshot:      mappers.AssessmentToViewModel(&snapshot),
		Notifications: session.Notifications(),
	}
}

func (c *SessionsController) Open(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssessmentID string `json:"assessmentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	assessmentID, err := uuid.Parse(req.AssessmentID)
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed assessmentId")
		return
	}
	session, err := c.sessionService.Open(r.Context(), assessmentID)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, c.sessionView(session))
}

func (c *SessionsController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	session, err := c.sessionService.Get(id)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, c.sessionView(session))
}

// SetRating saves one rating through the session. On failure the response
// still carries a session view: the snapshot is rolled back to the last
// confirmed state and the error toast rides along in Notifications.
func (c *SessionsController) SetRating(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	var req struct {
		GoalID  string `json:"goalId"`
		Score   int    `json:"score"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "malformed JSON body")
		return
	}
	goalID, err := uuid.Parse(req.GoalID)
	if err != nil {
		httpapi.WriteBadRequest(w, "malformed goalId")
		return
	}

	snapshot, err := c.sessionService.SetRating(r.Context(), id, goalID, req.Score, req.Comment)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) || errors.Is(err, optimistic.ErrClosed) {
			httpapi.WriteDomainError(w, services.ErrSessionNotFound)
			return
		}
		session, getErr := c.sessionService.Get(id)
		if getErr != nil {
			httpapi.WriteDomainError(w, err)
			return
		}
		_ = httpapi.WriteJSON(w, statusForSaveError(err), c.sessionView(session))
		return
	}
	_ = c.commitView(w, id, snapshot)
}

func (c *SessionsController) commitView(w http.ResponseWriter, sessionID uuid.UUID, snapshot assessment.Assessment) error {
	session, err := c.sessionService.Get(sessionID)
	if err != nil {
		vm := mappers.AssessmentToViewModel(&snapshot)
		return httpapi.WriteJSON(w, http.StatusOK, &viewmodels.EditSession{Snapshot: vm})
	}
	return httpapi.WriteJSON(w, http.StatusOK, c.sessionView(session))
}

func statusForSaveError(err error) int {
	if errors.Is(err, assessment.ErrScoreOutOfRange) {
		return http.StatusBadRequest
	}
	return http.StatusConflict
}

// Close discards the session and any provisional state it still holds.
func (c *SessionsController) Close(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUUID(r, "id")
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	c.sessionService.Close(id)
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
