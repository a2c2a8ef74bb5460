package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reelfinder/reelfinder/internal/catalog"
	"github.com/reelfinder/reelfinder/internal/config"
	"github.com/reelfinder/reelfinder/internal/session"
)

const sessionCookie = "reelfinder_session"

// pageData is what the page template renders.
type pageData struct {
	Version     string
	Session     session.Session
	Matches     []catalog.Detail
	Diagnostics []string
}

// Failed reports whether the page should show the error view.
func (p pageData) Failed() bool {
	return p.Session.Failed()
}

// ShowResults reports whether the page should show the results view.
func (p pageData) ShowResults() bool {
	return p.Session.Step == session.Processing
}

// index renders the page for the caller's session, running its pending search
// first. The search is detached from the request so a closed tab does not
// leave the session with a half-finished result.
// GET /
func (s *Server) index(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())

	sess := s.sessions.Update(s.sessionID(c), func(cur session.Session) session.Session {
		return s.controller.Process(ctx, cur, nil)
	})
	s.setSessionCookie(c, sess.ID)

	data := pageData{Version: config.Version, Session: sess}
	if sess.Outcome != nil {
		data.Matches = sess.Outcome.Matches
		data.Diagnostics = sess.Outcome.Diagnostics
	}
	return c.Render(http.StatusOK, "layout", data)
}

// submitDescription stores the description and moves to the results step.
// POST /search
func (s *Server) submitDescription(c echo.Context) error {
	description := c.FormValue("description")
	sess := s.sessions.Update(s.sessionID(c), func(cur session.Session) session.Session {
		next, ok := session.Submit(cur, description)
		if !ok {
			s.logger.Debug().Str("session", cur.ID).Str("step", string(cur.Step)).Msg("description ignored")
		}
		return next
	})
	return s.redirectHome(c, sess.ID)
}

// reset clears the session.
// POST /reset
func (s *Server) reset(c echo.Context) error {
	sess := s.sessions.Update(s.sessionID(c), session.Reset)
	return s.redirectHome(c, sess.ID)
}

// retry clears the session after a failed search.
// POST /retry
func (s *Server) retry(c echo.Context) error {
	sess := s.sessions.Update(s.sessionID(c), session.Retry)
	return s.redirectHome(c, sess.ID)
}

func (s *Server) sessionID(c echo.Context) string {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) setSessionCookie(c echo.Context, id string) {
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl := s.cfg.Server.SessionTTL; ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
	}
	c.SetCookie(cookie)
}

func (s *Server) redirectHome(c echo.Context, id string) error {
	s.setSessionCookie(c, id)
	return c.Redirect(http.StatusSeeOther, "/")
}
