// internal/api/feedback.go
//
// Contact and review relays.  These are called from the provisioned static
// sites on their own bucket domains, so both endpoints are CORS-open and
// answer OPTIONS preflights with 204.  The id in the body is the owner's
// user id, embedded in the site's bucket name at render time.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sitewright/sitewright/internal/fault"
	"github.com/sitewright/sitewright/internal/user"
)

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func (s *Server) corsPreflight(w http.ResponseWriter, _ *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusNoContent)
}

type contactRequest struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email"`
	Message string `json:"message" validate:"required"`
}

func (s *Server) contact(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	var req contactRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	owner, err := s.users.ByID(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.respond(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   fmt.Sprintf("user not found for id %s", req.ID),
			})
			return
		}
		s.fail(w, r, err)
		return
	}

	body := req.Message
	if req.Email != "" {
		body += "\n\nReply to: " + req.Email
	}
	if err := s.mail.Send(owner.Email, "Contact Form Message from "+req.Name, body); err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", fault.ErrDownstream, err))
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Email sent successfully",
	})
}

type reviewRequest struct {
	ID       string `json:"id" validate:"required"`
	Reviewer string `json:"reviewer" validate:"required"`
	Review   string `json:"review" validate:"required"`
}

func (s *Server) review(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	var req reviewRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	owner, err := s.users.ByID(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.respond(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   fmt.Sprintf("user not found for id %s", req.ID),
			})
			return
		}
		s.fail(w, r, err)
		return
	}

	if err := s.mail.Send(owner.Email, "Review received from "+req.Reviewer, req.Review); err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", fault.ErrDownstream, err))
		return
	}

	s.respond(w, http.StatusOK, map[string]any{"success": true})
}
