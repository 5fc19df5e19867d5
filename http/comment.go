package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nasahack25/airq/auth"
	"github.com/nasahack25/airq/domain"
	"github.com/nasahack25/airq/errs"
)

// registerCommentRoutes is a helper for registering all Comment routes.
func (s *Server) registerCommentRoutes(r *mux.Router) {
	r.HandleFunc("/posts/{id:[0-9]+}/comments", s.requireAuth(s.handleCreateComment)).Methods("POST")
}

// handleCreateComment handles the route "POST /posts/:id/comments".
// It reads the post ID from the url and creates a new Comment record,
// incrementing the post's comment counter in the same unit of work.
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	// Only the content field is caller-controlled; the post ID comes from
	// the url and the author from the session.
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	comment := domain.Comment{PostID: id, Content: body.Content}

	principal := auth.GetPrincipal(r.Context())
	if err := s.cs.CreateComment(principal, &comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&comment); err != nil {
		errs.LogError(r, err)
	}
}
