package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nasahack25/airq/auth"
	"github.com/nasahack25/airq/domain"
	"github.com/nasahack25/airq/errs"
)

// registerPostRoutes is a helper for registering all Post routes.
func (s *Server) registerPostRoutes(r *mux.Router) {
	// The community feed, publicly accessible.
	r.HandleFunc("/posts", s.handleFeed).Methods("GET")

	// Create a new post, with an optional image attachment.
	r.HandleFunc("/posts", s.requireAuth(s.handleCreatePost)).Methods("POST")

	// A single post with its comments, publicly accessible.
	r.HandleFunc("/posts/{id:[0-9]+}", s.handleGetPost).Methods("GET")
}

// handleFeed handles the route "GET /posts".
// It returns all posts with author summaries and counters, newest first.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.fs.Posts()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(posts); err != nil {
		errs.LogError(r, err)
	}
}

// handleCreatePost handles the route "POST /posts".
// Text-only posts arrive as json. Posts with an image attachment arrive as
// multipart form data with a "content" field and an "image" file; the image
// goes to the storage collaborator first, and only its opaque URL is stored
// on the post.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var post domain.Post

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid multipart body."))
			return
		}
		post.Content = r.FormValue("content")
		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			url, err := s.images.Upload(&domain.Image{
				File:     file,
				Filename: header.Filename,
			})
			if err != nil {
				errs.ReturnError(w, r, err)
				return
			}
			post.ImageURL = url
		} else if err != http.ErrMissingFile {
			errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid image upload."))
			return
		}
	} else {
		// Only the content field is caller-controlled. Decoding into the
		// domain object directly would let a caller preset the record ID.
		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
			return
		}
		post.Content = body.Content
	}

	principal := auth.GetPrincipal(r.Context())
	if err := s.ps.CreatePost(principal, &post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&post); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetPost handles the route "GET /posts/:id".
// It returns the post with its author, counters and ordered comments.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	post, err := s.fs.PostByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(post); err != nil {
		errs.LogError(r, err)
	}
}
