// Package handlers implements the HTTP API over the session store.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"uirecorder/internal/api/middleware"
	"uirecorder/internal/models"
	"uirecorder/internal/session"
	"uirecorder/internal/users"
	"uirecorder/pkg/auth"
	"uirecorder/pkg/response"
)

// SessionService is the session store as seen by the API.
type SessionService interface {
	Start(ctx context.Context, userID uint, req session.StartRequest) (*models.Session, error)
	Stop(ctx context.Context, userID uint, id string) (*models.Session, error)
	List(ctx context.Context, userID uint) ([]models.Session, error)
	Get(ctx context.Context, userID uint, id string) (*models.SessionDetail, error)
	Delete(ctx context.Context, userID uint, id string) error
	Rename(ctx context.Context, userID uint, id, name string) (*models.Session, error)
	UpdateDescription(ctx context.Context, userID uint, id, description string) (*models.Session, error)
	UpdatePrecondition(ctx context.Context, userID uint, id, precondition string) (*models.Session, error)
	UpdateStep(ctx context.Context, userID uint, id string, step int, field session.StepField, value string) (*models.Session, error)
	DeleteStep(ctx context.Context, userID uint, id string, step int) (*models.Session, error)
	InsertStep(ctx context.Context, userID uint, id string, afterStep int, rec models.ActionRecord) (*models.Session, error)
	State(userID uint) session.State
	Language() string
	SetLanguage(ctx context.Context, code string) (string, error)
	Highlight(ctx context.Context, userID uint, id, locator string) (bool, error)
}

// Streamer serves the live event stream of a session.
type Streamer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) error
}

type Handler struct {
	sessions SessionService
	users    users.Store
	jwt      *auth.JWT
	stream   Streamer
	log      logrus.FieldLogger
}

func New(sessions SessionService, store users.Store, j *auth.JWT, stream Streamer, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{sessions: sessions, users: store, jwt: j, stream: stream, log: log}
}

// fail writes the response for err, mapping store errors to codes.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrStepNotFound),
		errors.Is(err, users.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, session.ErrAlreadyRecording),
		errors.Is(err, session.ErrNotRecording),
		errors.Is(err, users.ErrExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, session.ErrInvalidField),
		errors.Is(err, session.ErrInvalidURL),
		errors.Is(err, session.ErrEmptyName):
		response.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		response.InternalServerError(c, err.Error())
	}
}

func currentUser(c *gin.Context) (uint, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "not logged in")
	}
	return id, ok
}

func stepParam(c *gin.Context) (int, bool) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil || step < 1 {
		response.BadRequest(c, "step must be a positive number")
		return 0, false
	}
	return step, true
}
