package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/nasahack25/airq/auth"
	"github.com/nasahack25/airq/crud"
	"github.com/nasahack25/airq/domain"
	"github.com/nasahack25/airq/errs"
	"github.com/nasahack25/airq/logger"
)

// Server provides the http functionality of the app, namely routing, request
// handling, and middleware. It resolves the session cookie into a typed
// Principal before handing things over to one of the crud services.
type Server struct {
	router *mux.Router
	us     domain.UserService
	ps     domain.PostService
	cs     domain.CommentService
	ls     domain.LikeService
	fs     domain.FeedService
	images domain.ImageStorage

	clientURL string
	isProd    bool
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(isProd bool, clientURL, uploadDir string, services *crud.Services, images domain.ImageStorage) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		us:        services.User,
		ps:        services.Post,
		cs:        services.Comment,
		ls:        services.Like,
		fs:        services.Feed,
		images:    images,
		clientURL: clientURL,
		isProd:    isProd,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the feed system.
	s.registerPostRoutes(s.router)
	s.registerCommentRoutes(s.router)
	s.registerLikeRoutes(s.router)

	// Serve locally stored post images.
	if uploadDir != "" {
		s.router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
	}

	// Route preflight requests into the middleware chain. The routes above
	// only match their own methods, and unmatched requests bypass the
	// middleware, so without this the cors middleware would never see an
	// OPTIONS request. The handler itself never runs; cors answers first.
	s.router.PathPrefix("/").Methods("OPTIONS").HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {})

	// Set up middleware that needs to run on every request.
	s.router.Use(s.cors, setContentTypeJSON, s.authUser)
	return s
}

// The setContentTypeJSON middleware sets the content type to "application/json".
// Uploaded images are exempt; the file server detects their content type,
// but only if none has been set yet.
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/uploads/") {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// The cors middleware allows the configured browser client to call the API
// with its session cookie.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.clientURL)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// The authUser middleware identifies the requesting user by their session
// cookie and stores a typed Principal in the request context. Requests
// without a valid session pass through anonymously; it's requireAuth that
// decides whether that's acceptable for a given route.
func (s *Server) authUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("remember_token")
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByRemember(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := auth.SetPrincipal(r.Context(), domain.Principal{ID: user.ID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth guards routes that mutate state. It assumes the authUser
// middleware has already run.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth.GetPrincipal(r.Context()).Valid() {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You must be logged in."))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Router exposes the route handler, mainly so tests can drive the server
// through httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	addr := ":" + strconv.Itoa(port)
	logger.Log.Info("listening", zap.String("addr", addr))
	logger.Log.Fatal("server stopped", zap.Error(http.ListenAndServe(addr, s.router)))
}
