package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"eventdesk/internal/api"
	"eventdesk/internal/billing"
	"eventdesk/internal/storage"
	"eventdesk/internal/utils"
	"eventdesk/internal/wizard"
	"eventdesk/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	api       *api.Client
	cookies   *storage.CookieJar
	assets    *storage.AssetStore
	rates     billing.Rates
	wizards   *wizardRegistry
	templates *template.Template

	tokenCheck TokenCheck
	jwksCache  *jwk.Cache
	jwksURL    string

	server *http.Server
}

// New wires the HTTP surface. drafts may be nil, as may assets when no bucket
// is configured and jwkCache unless the guard runs in jwks mode.
func New(
	config *types.Config,
	logger *logrus.Logger,
	client *api.Client,
	cookies *storage.CookieJar,
	drafts wizard.DraftStore,
	assets *storage.AssetStore,
	jwkCache *jwk.Cache,
) (*Service, error) {
	mux := flow.New()

	variant, err := wizard.ParseVariant(config.WizardVariant)
	if err != nil {
		return nil, err
	}

	tokenCheck, err := ParseTokenCheck(config.AuthTokenCheck)
	if err != nil {
		return nil, err
	}
	if tokenCheck == TokenCheckJWKS && (jwkCache == nil || config.JWKSURL == "") {
		return nil, fmt.Errorf("AUTH_TOKEN_CHECK=jwks requires JWKS_URL")
	}

	s := &Service{
		logger:  logger,
		config:  config,
		api:     client,
		cookies: cookies,
		assets:  assets,
		rates:   billing.RatesFromConfig(config),

		tokenCheck: tokenCheck,
		jwksCache:  jwkCache,
		jwksURL:    config.JWKSURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
	s.wizards = newWizardRegistry(variant, client, drafts, logger)

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)
	// unmatched paths never reach mux middleware, so slashes are handled first
	s.server.Handler = s.StripTrailingSlash(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/signup", s.handleGetSignup, http.MethodGet)
	r.HandleFunc("/signup", s.handlePostSignup, http.MethodPost)
	r.HandleFunc("/forgot-password", s.handleGetForgotPassword, http.MethodGet)
	r.HandleFunc("/forgot-password", s.handlePostForgotPassword, http.MethodPost)
	r.HandleFunc("/reset-password", s.handlePostResetPassword, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout, http.MethodGet, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/dashboard", s.handleGetDashboard, http.MethodGet)

		r.HandleFunc("/create-event", s.handleGetWizard, http.MethodGet)
		r.HandleFunc("/create-event", s.handlePostWizard, http.MethodPost)
		r.HandleFunc("/create-event/branding", s.handlePostBrandingAsset, http.MethodPost)

		r.HandleFunc("/events", s.handleGetEvents, http.MethodGet)
		r.HandleFunc("/forms", s.handleGetForms, http.MethodGet)
		r.HandleFunc("/forms/:formID/fields", s.handlePostFormFields, http.MethodPost)
		r.HandleFunc("/volunteers", s.handleGetVolunteers, http.MethodGet)
		r.HandleFunc("/volunteers", s.handlePostVolunteer, http.MethodPost)
		r.HandleFunc("/volunteers/remove", s.handlePostRemoveVolunteer, http.MethodPost)
		r.HandleFunc("/support", s.handleGetSupport, http.MethodGet)
		r.HandleFunc("/support", s.handlePostSupport, http.MethodPost)
		r.HandleFunc("/tokens", s.handleGetTokens, http.MethodGet)
		r.HandleFunc("/tokens", s.handlePostTokens, http.MethodPost)
		r.HandleFunc("/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/profile", s.handlePostProfile, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"inr":        billing.FormatINR,
		"derefFloat": utils.PtrFloat64,
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil {
				return defaultVal
			}
			return *s
		},
		"add": func(a, b int) int {
			return a + b
		},
		"fieldErr": func(errs map[string]string, key string) string {
			return errs[key]
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) sessionFromContext(ctx context.Context) (*types.Session, error) {
	session, ok := ctx.Value(contextKeySession).(*types.Session)
	if !ok || session == nil {
		return nil, fmt.Errorf("session not found in context")
	}
	return session, nil
}

// userFromContext returns the signed in profile. A session without a signed
// profile cannot call any user scoped endpoint.
func (s *Service) userFromContext(ctx context.Context) (*types.User, error) {
	session, err := s.sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if session.Mirrored || session.User == nil || session.User.UserID == 0 {
		return nil, types.ErrUserNotFound
	}
	return session.User, nil
}
