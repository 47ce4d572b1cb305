// internal/api/auth.go
//
// Session endpoints.  The real identity provider is an external
// collaborator; the login endpoint exists for development boxes and manual
// testing, and only answers when dev_login is enabled.
package api

import (
	"errors"
	"net/http"

	"github.com/sitewright/sitewright/internal/user"
)

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.HTTP.DevLogin {
		http.NotFound(w, r)
		return
	}

	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if _, err := s.users.ByEmail(r.Context(), req.Email); err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.fail(w, r, err)
			return
		}
		// First sign-in creates the account with the default credit grant.
		if _, err := s.users.Create(r.Context(), req.Email, req.Name); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	s.sessions.Login(w, r, req.Email)
	s.respond(w, http.StatusOK, map[string]string{"message": "logged in"})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(w, r)
	s.respond(w, http.StatusOK, map[string]string{"message": "logged out"})
}
