// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package gateway exposes the authentication flows over HTTP.

# Endpoints

  - POST /login: browser form submit, answers with redirects.
  - POST /register: JSON account creation.
  - POST /activate: JSON activation code redemption.
  - POST /send-activation: JSON activation email (re)send.
  - POST /oauth2/token: server-to-server code exchange, OAuth error shape.
  - GET  /profile: bearer-token protected account view.

The login endpoint speaks in redirects because its caller is a browser in
the middle of a hop between the relying application and Keygate. Everything
else answers the caller directly.
*/
package gateway

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/keygate/keygate/internal/idp/activation"
	"github.com/keygate/keygate/internal/idp/client"
	"github.com/keygate/keygate/internal/idp/oauth"
	"github.com/keygate/keygate/internal/idp/token"
	"github.com/keygate/keygate/internal/idp/user"
	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/config"
	"github.com/keygate/keygate/internal/platform/constants"
	"github.com/keygate/keygate/internal/platform/ctxutil"
	requestutil "github.com/keygate/keygate/internal/platform/request"
	"github.com/keygate/keygate/internal/platform/respond"
)

// # HTTP Layer

// Handler carries the wired services for the authentication endpoints.
type Handler struct {
	cfg         *config.Config
	users       *user.Service
	clients     *client.Service
	tokens      *token.Service
	activations *activation.Service
	exchanges   *oauth.Service
}

// NewHandler creates the gateway handler.
func NewHandler(
	cfg *config.Config,
	users *user.Service,
	clients *client.Service,
	tokens *token.Service,
	activations *activation.Service,
	exchanges *oauth.Service,
) *Handler {
	return &Handler{
		cfg:         cfg,
		users:       users,
		clients:     clients,
		tokens:      tokens,
		activations: activations,
		exchanges:   exchanges,
	}
}

// RegisterRoutes mounts the authentication endpoints on the router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/login", handler.Login)
	router.Post("/register", handler.Register)
	router.Post("/activate", handler.Activate)
	router.Post("/send-activation", handler.SendActivation)
	router.Post("/oauth2/token", handler.Token)
	router.Get("/profile", handler.Profile)
}

/*
Login handles the browser login form.

Description: The relying client and its redirect URI are validated before
anything else; a defect there is a hard 400 with a generic body, because
redirecting to an unvalidated URI is exactly the open-redirect this check
exists to prevent. After that point every outcome is a 303: failed
credentials bounce back to the login form with a stable error code, success
lands on the registered redirect URI carrying either an authorization code
or an access token, depending on the configured response mode.
*/
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		respond.PlainError(writer, request, apperr.ValidationError("malformed form body"))
		return
	}

	clientID := request.PostFormValue("client_id")
	redirectURI := request.PostFormValue("redirect_uri")

	registration, err := handler.clients.Lookup(request.Context(), clientID)
	if err != nil {
		respond.PlainError(writer, request, err)
		return
	}

	if err := handler.clients.ValidateRedirect(request.Context(), registration, redirectURI); err != nil {
		respond.PlainError(writer, request, err)
		return
	}

	account, err := handler.users.VerifyCredentials(
		request.Context(),
		request.PostFormValue("username"),
		request.PostFormValue("password"),
	)
	if err != nil {
		handler.redirectLoginFailure(writer, request, clientID, redirectURI, err)
		return
	}

	handler.redirectLoginSuccess(writer, request, registration, account)
}

// redirectLoginFailure bounces the browser back to the login form with a
// stable error code. Defects that are not a login outcome (storage down,
// hashing failure) stay hard errors instead of redirect loops.
func (handler *Handler) redirectLoginFailure(writer http.ResponseWriter, request *http.Request, clientID, redirectURI string, err error) {
	code := apperr.As(err)
	if code == nil || (code.Code != apperr.CodeInvalidCredentials && code.Code != apperr.CodeNotActivated && code.Code != apperr.CodeValidation) {
		respond.PlainError(writer, request, err)
		return
	}

	query := url.Values{}
	query.Set("error", code.Code)
	query.Set("client_id", clientID)
	query.Set("redirect_uri", redirectURI)

	http.Redirect(writer, request, "/login?"+query.Encode(), http.StatusSeeOther)
}

// redirectLoginSuccess issues the configured credential and sends the
// browser to the registered redirect URI.
func (handler *Handler) redirectLoginSuccess(writer http.ResponseWriter, request *http.Request, registration *client.Client, account *user.User) {
	var param, value string

	switch handler.cfg.AuthResponseMode {
	case config.ResponseModeToken:
		accessToken, err := handler.tokens.Issue(
			token.KindAccessToken, registration.ClientID, account.ID, constants.AccessTokenTTL,
		)
		if err != nil {
			respond.PlainError(writer, request, apperr.Internal(err))
			return
		}
		param, value = "access_token", accessToken
	default:
		authCode, err := handler.tokens.Issue(
			token.KindAuthorizationCode, registration.ClientID, account.ID, constants.AuthorizationCodeTTL,
		)
		if err != nil {
			respond.PlainError(writer, request, apperr.Internal(err))
			return
		}
		param, value = "code", authCode
	}

	query := url.Values{}
	query.Set(param, value)

	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "login_succeeded",
		slog.String("user_id", account.ID),
		slog.String("client_id", registration.ClientID),
	)

	http.Redirect(writer, request, registration.RedirectURI+"?"+query.Encode(), http.StatusSeeOther)
}

/*
Register handles JSON account creation.

Description: Success is an empty 200. The activation email is dispatched
best-effort after the row is committed: a delivery failure is logged and the
response stays 200, since the account exists and the owner can ask for a
resend.
*/
func (handler *Handler) Register(writer http.ResponseWriter, request *http.Request) {
	var input user.RegisterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.PlainError(writer, request, err)
		return
	}

	account, err := handler.users.Register(request.Context(), input)
	if err != nil {
		respond.PlainError(writer, request, err)
		return
	}

	if err := handler.activations.SendInitial(request.Context(), account); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "activation_email_failed",
			slog.String("user_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	respond.Empty(writer)
}

// activateRequest is the /activate payload.
type activateRequest struct {
	Code string `json:"code"`
}

// Activate redeems an activation code. Success is an empty 200.
func (handler *Handler) Activate(writer http.ResponseWriter, request *http.Request) {
	var input activateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.PlainError(writer, request, err)
		return
	}

	if err := handler.activations.Activate(request.Context(), input.Code); err != nil {
		respond.PlainError(writer, request, err)
		return
	}

	respond.Empty(writer)
}

// sendActivationRequest is the /send-activation payload.
type sendActivationRequest struct {
	Email string `json:"email"`
}

// SendActivation issues and mails a fresh activation code. The response is
// an empty 200 whether or not the address maps to a sendable account; only
// the per-address rate limit surfaces, as a 429 with body "too_often".
func (handler *Handler) SendActivation(writer http.ResponseWriter, request *http.Request) {
	var input sendActivationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.PlainError(writer, request, err)
		return
	}

	if err := handler.activations.SendEmail(request.Context(), input.Email); err != nil {
		respond.PlainError(writer, request, err)
		return
	}

	respond.Empty(writer)
}

/*
Token handles the authorization-code exchange.

Description: The request and error bodies follow the OAuth token endpoint
shape, JSON with an "error" member, because the caller here is the relying
application's backend, not our own form flow.
*/
func (handler *Handler) Token(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		respond.OAuthError(writer, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	input := oauth.ExchangeInput{
		GrantType:    request.PostFormValue("grant_type"),
		Code:         request.PostFormValue("code"),
		ClientID:     request.PostFormValue("client_id"),
		ClientSecret: request.PostFormValue("client_secret"),
		RedirectURI:  request.PostFormValue("redirect_uri"),
	}

	grant, err := handler.exchanges.Exchange(request.Context(), input)
	if err != nil {
		writeOAuthError(writer, request, err)
		return
	}

	respond.OK(writer, grant)
}

// writeOAuthError translates the internal error taxonomy into the OAuth
// token endpoint's error vocabulary.
func writeOAuthError(writer http.ResponseWriter, request *http.Request, err error) {
	appError := apperr.As(err)
	if appError == nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "exchange_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		respond.OAuthError(writer, http.StatusInternalServerError, "server_error", "")
		return
	}

	switch appError.Code {
	case apperr.CodeInvalidClient:
		respond.OAuthError(writer, http.StatusUnauthorized, "invalid_client", appError.Message)
	case apperr.CodeValidation:
		respond.OAuthError(writer, http.StatusBadRequest, "unsupported_grant_type", appError.Message)
	case apperr.CodeInvalidCode, apperr.CodeTokenInvalid, apperr.CodeTokenExpired:
		respond.OAuthError(writer, http.StatusBadRequest, "invalid_grant", appError.Message)
	default:
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "exchange_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
		respond.OAuthError(writer, appError.HTTPStatus, "server_error", "")
	}
}

// profileResponse is the /profile body.
type profileResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile returns the account behind a bearer access token.
func (handler *Handler) Profile(writer http.ResponseWriter, request *http.Request) {
	bearer, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := handler.tokens.Verify(bearer, token.KindAccessToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.users.GetByID(request.Context(), claims.Subject)
	if err != nil {
		respond.Error(writer, request, apperr.TokenInvalid())
		return
	}

	respond.OK(writer, profileResponse{
		Username: account.Username,
		Email:    account.Email,
	})
}

