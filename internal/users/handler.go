package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/middleware"
	"github.com/2beens/liftlog/internal/records"
	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=users_test

type usersRepo interface {
	Create(ctx context.Context, email, username, passwordHash string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
	Delete(ctx context.Context, id int, at time.Time) error
	GetProfile(ctx context.Context, userID int) (*Profile, error)
	UpdateProfile(ctx context.Context, profile Profile) error
}

type authService interface {
	Login(ctx context.Context, userID int, now time.Time) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, now time.Time) (*auth.TokenPair, error)
	Logout(ctx context.Context, jti string) error
}

type tokenVerifier interface {
	VerifyAccessToken(token string) (*auth.TokenClaims, error)
}

type LoginResponse struct {
	auth.TokenPair
	User *User `json:"user"`
}

type DeleteAccountResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo        usersRepo
	authService authService
	tokens      tokenVerifier
}

func NewHandler(repo usersRepo, authService authService, tokens tokenVerifier) *Handler {
	return &Handler{
		repo:        repo,
		authService: authService,
		tokens:      tokens,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	loginAllowedPerMin int,
) {
	// credential endpoints get a tighter rate limit to slow down brute force
	loginRouter := mainRouter.PathPrefix("/a").Subrouter()
	loginRouter.HandleFunc("/register", handler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	loginRouter.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	loginRouter.HandleFunc("/refresh", handler.HandleRefresh).Methods("POST", "OPTIONS").Name("refresh")
	loginRouter.Use(middleware.RateLimit(rateLimiter, "login", loginAllowedPerMin, metricsManager))
	loginRouter.Use(middleware.Cors())

	accountRouter := mainRouter.PathPrefix("/a").Subrouter()
	accountRouter.HandleFunc("/logout", handler.HandleLogout).Methods("GET", "OPTIONS").Name("logout")
	accountRouter.HandleFunc("/me", handler.HandleMe).Methods("GET", "OPTIONS").Name("me")
	accountRouter.HandleFunc("/me", handler.HandleDeleteMe).Methods("DELETE").Name("me-delete")
	accountRouter.HandleFunc("/me/profile", handler.HandleGetProfile).Methods("GET", "OPTIONS").Name("profile")
	accountRouter.HandleFunc("/me/profile", handler.HandleUpdateProfile).Methods("PUT").Name("profile-update")
	accountRouter.Use(middleware.Cors())
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	type registerRequest struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("register, unmarshal json params: %s", err)
		http.Error(w, "register failed", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		http.Error(w, "error, invalid email", http.StatusBadRequest)
		return
	}
	if len(req.Username) < 3 {
		http.Error(w, "error, username too short", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, "error, password too short", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	user, err := handler.repo.Create(ctx, req.Email, req.Username, passwordHash)
	switch {
	case errors.Is(err, ErrEmailTaken):
		http.Error(w, "error, email already registered", http.StatusBadRequest)
		return
	case errors.Is(err, ErrUsernameTaken):
		http.Error(w, "error, username already taken", http.StatusBadRequest)
		return
	case err != nil:
		log.Errorf("register, create user [%s]: %s", req.Username, err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	log.Infof("new user registered: %s [id: %d]", user.Username, user.ID)

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("register, marshal user: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var loginReq loginRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusInternalServerError)
			return
		}
		loginReq = loginRequest{
			Email:    r.Form.Get("email"),
			Password: r.Form.Get("password"),
		}
	}

	if loginReq.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	if loginReq.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.GetByEmail(ctx, loginReq.Email)
	if errors.Is(err, ErrUserNotFound) {
		log.Tracef("[email] failed login attempt for: %s", loginReq.Email)
		http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Errorf("login, get user [%s]: %s", loginReq.Email, err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(loginReq.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", user.Username)
		http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
		return
	}

	if !user.IsActive {
		http.Error(w, "error, account inactive", http.StatusForbidden)
		return
	}

	now := time.Now()
	if err := handler.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// not worth failing the login over
		log.Errorf("login, update last login for user %d: %s", user.ID, err)
	} else {
		user.LastLoginAt = &now
	}

	tokenPair, err := handler.authService.Login(ctx, user.ID, now)
	if err != nil {
		log.Errorf("login failed, generate tokens error: %s", err)
		http.Error(w, "generate tokens error", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	log.Tracef("new login success: user %d", user.ID)

	respJson, err := json.Marshal(LoginResponse{
		TokenPair: *tokenPair,
		User:      user,
	})
	if err != nil {
		log.Errorf("login, marshal response: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.refresh")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	type refreshRequest struct {
		RefreshToken string `json:"refreshToken"`
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("refresh, unmarshal json params: %s", err)
		http.Error(w, "refresh failed", http.StatusBadRequest)
		return
	}
	if req.RefreshToken == "" {
		http.Error(w, "error, refresh token empty", http.StatusBadRequest)
		return
	}

	tokenPair, err := handler.authService.Refresh(ctx, req.RefreshToken, time.Now())
	if errors.Is(err, auth.ErrInvalidRefreshToken) {
		http.Error(w, "error, invalid refresh token", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Errorf("refresh failed: %s", err)
		http.Error(w, "refresh failed", http.StatusInternalServerError)
		return
	}

	// a soft deleted account keeps its redis state until it expires,
	// so check the user is still around before handing out new tokens
	claims, err := handler.tokens.VerifyAccessToken(tokenPair.AccessToken)
	if err != nil {
		log.Errorf("refresh, verify issued token: %s", err)
		http.Error(w, "refresh failed", http.StatusInternalServerError)
		return
	}
	user, err := handler.repo.Get(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) || (err == nil && !user.IsActive) {
		if logoutErr := handler.authService.Logout(ctx, claims.ID); logoutErr != nil {
			log.Errorf("refresh, logout gone user %d: %s", claims.UserID, logoutErr)
		}
		http.Error(w, "error, invalid refresh token", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Errorf("refresh, get user %d: %s", claims.UserID, err)
		http.Error(w, "refresh failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))

	respJson, err := json.Marshal(tokenPair)
	if err != nil {
		log.Errorf("refresh, marshal response: %s", err)
		http.Error(w, "refresh failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	claims, err := handler.tokens.VerifyAccessToken(authToken)
	if err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.authService.Logout(ctx, claims.ID); err != nil {
		log.Tracef("[failed logout] user %d: %s", claims.UserID, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	log.Tracef("user %d logged out", claims.UserID)
	pkg.WriteTextResponseOK(w, "logged out")
}

func (handler *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.me")
	defer span.End()

	user, ok := handler.currentUser(ctx, w)
	if !ok {
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("me, marshal user: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, userJson)
}

func (handler *Handler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.deleteMe")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.repo.Delete(ctx, userID, time.Now()); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete account %d: %s", userID, err)
		http.Error(w, "delete account failed", http.StatusInternalServerError)
		return
	}

	// kill the current session too; other sessions die on token expiry
	if authToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "); authToken != "" {
		if claims, err := handler.tokens.VerifyAccessToken(authToken); err == nil {
			if err := handler.authService.Logout(ctx, claims.ID); err != nil {
				log.Errorf("delete account %d, logout: %s", userID, err)
			}
		}
	}

	log.Infof("account %d deleted", userID)

	respJson, err := json.Marshal(DeleteAccountResponse{DeletedID: userID})
	if err != nil {
		log.Errorf("delete account, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.getProfile")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	profile, err := handler.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get profile %d: %s", userID, err)
		http.Error(w, "get profile failed", http.StatusInternalServerError)
		return
	}

	profileJson, err := json.Marshal(profile)
	if err != nil {
		log.Errorf("get profile, marshal: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, profileJson)
}

func (handler *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.updateProfile")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var profile Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		log.Tracef("update profile, unmarshal json params: %s", err)
		http.Error(w, "update profile failed", http.StatusBadRequest)
		return
	}
	profile.UserID = userID

	if profile.PreferredWeightUnit == "" {
		profile.PreferredWeightUnit = string(records.Kilograms)
	}
	if !records.ValidUnit(records.Unit(profile.PreferredWeightUnit)) {
		http.Error(w, "error, invalid weight unit", http.StatusBadRequest)
		return
	}
	if profile.HeightCm != nil && (*profile.HeightCm < 0 || *profile.HeightCm > 300) {
		http.Error(w, "error, invalid height", http.StatusBadRequest)
		return
	}
	if profile.WeightKg != nil && (*profile.WeightKg < 0 || *profile.WeightKg > 999) {
		http.Error(w, "error, invalid weight", http.StatusBadRequest)
		return
	}

	if err := handler.repo.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		log.Errorf("update profile %d: %s", userID, err)
		http.Error(w, "update profile failed", http.StatusInternalServerError)
		return
	}

	updated, err := handler.repo.GetProfile(ctx, userID)
	if err != nil {
		log.Errorf("update profile %d, reload: %s", userID, err)
		http.Error(w, "update profile failed", http.StatusInternalServerError)
		return
	}

	profileJson, err := json.Marshal(updated)
	if err != nil {
		log.Errorf("update profile, marshal: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, profileJson)
}

func (handler *Handler) currentUser(ctx context.Context, w http.ResponseWriter) (*User, bool) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}

	user, err := handler.repo.Get(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		log.Errorf("get user %d: %s", userID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return user, true
}
