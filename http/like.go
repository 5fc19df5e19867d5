package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nasahack25/airq/auth"
	"github.com/nasahack25/airq/errs"
)

// registerLikeRoutes is a helper for registering all Like routes.
func (s *Server) registerLikeRoutes(r *mux.Router) {
	// Like or unlike a post.
	r.HandleFunc("/posts/{id:[0-9]+}/like", s.requireAuth(s.handleToggleLike)).Methods("POST")
}

// likeResponse reports the state a toggle resolved to. The toggle is
// self-describing: the response confirms the direction that was applied.
type likeResponse struct {
	Liked   bool   `json:"liked"`
	Message string `json:"message"`
}

// handleToggleLike handles the route "POST /posts/:id/like".
// It reads the post ID from the url and flips the like relation between the
// authed user and that post.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	principal := auth.GetPrincipal(r.Context())
	liked, err := s.ls.ToggleLike(principal, id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := likeResponse{Liked: liked, Message: "Post unliked."}
	if liked {
		response.Message = "Post liked."
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}
