package web

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ThatCatDev/modelinspect/internal/session"
	"github.com/ThatCatDev/modelinspect/pkg/api"
)

type pageData struct {
	Models        []string
	Selected      string
	State         session.State
	Notifications []session.Notification
}

// health handles GET /health.
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// index handles GET /.
func (s *Server) index(c *gin.Context) {
	bs := s.resolve(c)
	c.HTML(http.StatusOK, "page", pageData{
		Models:        bs.ctrl.Models(),
		Selected:      bs.lastSelected(),
		State:         bs.ctrl.State(),
		Notifications: bs.drain(),
	})
}

// submit handles POST /submit.
func (s *Server) submit(c *gin.Context) {
	bs := s.resolve(c)

	model := strings.TrimSpace(c.PostForm("model"))
	if model == "" || !slices.Contains(bs.ctrl.Models(), model) {
		bs.Notify(session.Notification{Level: session.LevelError, Message: "Select a model first"})
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	bs.setSelected(model)
	bs.ctrl.Submit(c.Request.Context(), model)
	c.Redirect(http.StatusSeeOther, "/")
}

// state handles GET /api/state.
func (s *Server) state(c *gin.Context) {
	bs, ok := s.lookup(c)
	if !ok {
		return
	}
	st := bs.ctrl.State()
	c.JSON(http.StatusOK, api.SessionState{
		SubmittedModel: st.SubmittedModel,
		SystemPrompt:   st.SystemPrompt,
		Config:         st.Config,
		Phase:          bs.ctrl.Phase().String(),
	})
}

// models handles GET /api/models.
func (s *Server) models(c *gin.Context) {
	bs, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, api.ModelListResponse{Models: bs.ctrl.Models()})
}

// lookup returns the caller's existing session. Without one it answers 404
// and reports false.
func (s *Server) lookup(c *gin.Context) (*browserSession, bool) {
	if id, err := c.Cookie(sessionCookie); err == nil {
		if bs, ok := s.sessions.get(id); ok {
			return bs, true
		}
	}
	c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "no session; load the page first"})
	return nil, false
}

// resolve returns the caller's session, creating one (and setting the cookie)
// when the request carries no known session id.
func (s *Server) resolve(c *gin.Context) *browserSession {
	if id, err := c.Cookie(sessionCookie); err == nil {
		if bs, ok := s.sessions.get(id); ok {
			return bs
		}
	}

	id, bs := s.sessions.create(c.Request.Context())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	s.log.Debug().Str("session", id).Int("sessions", s.sessions.len()).Msg("session created")
	return bs
}
