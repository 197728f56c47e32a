package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"influencer-app/internal/auth"
	"influencer-app/internal/util"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Login struct {
	Response      APIResponse
	logger        *util.TrackerLogger
	authenticator *auth.Authenticator
}

func (l *Login) Init(authenticator *auth.Authenticator, logger *util.TrackerLogger) {
	l.authenticator = authenticator
	l.logger = logger
}

func (l *Login) LoginHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		l.logger.LogEvent(util.LOG_LEVEL_ERROR, "Method Not Allowed. Only POST requests are supported", http.StatusMethodNotAllowed)
		l.Response.WriteErrorResponseWithStatusCode(w, errors.New("method Not Allowed. Only POST requests are supported"), http.StatusMethodNotAllowed)
		return
	}

	var reqBody LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		l.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while unmarshalling JSON Body. Err -", err)
		l.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if reqBody.Username == "" || reqBody.Password == "" {
		l.logger.LogEvent(util.LOG_LEVEL_ERROR, "Login attempted with empty username or password")
		l.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return
	}

	identity, err := l.authenticator.Verify(r.Context(), reqBody.Username, reqBody.Password)
	if err != nil {
		l.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while Verify(). Err - ", err)
		l.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusInternalServerError)
		return
	}
	if identity == nil {
		l.logger.LogEvent(util.LOG_LEVEL_WARN, "Rejected credentials for user", reqBody.Username)
		l.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidCredentials, http.StatusUnauthorized)
		return
	}

	l.Response.WriteResultResponse(w, identity)
}
