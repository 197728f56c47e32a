package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"influencer-app/internal/domain"
	"influencer-app/internal/ingest"
	"influencer-app/internal/util"
)

type IngestRequest struct {
	User string `json:"user"`
}

type Snapshots struct {
	Response APIResponse
	logger   *util.TrackerLogger
	store    domain.MetricStore
	ingestor *ingest.Ingestor
}

func (s *Snapshots) Init(store domain.MetricStore, ingestor *ingest.Ingestor, logger *util.TrackerLogger) {
	s.store = store
	s.ingestor = ingestor
	s.logger = logger
}

// IngestHandler runs one snapshot cycle for the handle in the URL.
func (s *Snapshots) IngestHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		s.logger.LogEvent(util.LOG_LEVEL_ERROR, "Method Not Allowed. Only POST requests are supported", http.StatusMethodNotAllowed)
		s.Response.WriteErrorResponseWithStatusCode(w, errors.New("method Not Allowed. Only POST requests are supported"), http.StatusMethodNotAllowed)
		return
	}

	handle := canonicalHandle(mux.Vars(r)["handle"])

	var reqBody IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		s.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while unmarshalling JSON Body. Err -", err)
		s.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if handle == "" || reqBody.User == "" {
		s.logger.LogEvent(util.LOG_LEVEL_ERROR, "Ingest attempted with empty handle or user")
		s.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return
	}

	summary, err := s.ingestor.Ingest(r.Context(), reqBody.User, handle)
	if err != nil {
		s.writeIngestError(w, handle, err)
		return
	}

	s.logger.LogEvent(util.LOG_LEVEL_INFO, "Snapshot stored for", handle, "id", summary.ID.String())
	s.Response.WriteResultResponse(w, summary)
}

func (s *Snapshots) writeIngestError(w http.ResponseWriter, handle string, err error) {
	s.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while Ingest() for", handle, ". Err - ", err)

	var partialErr *domain.PartialWriteError

	switch {
	case errors.Is(err, context.Canceled):
		s.Response.WriteErrorResponseWithStatusCode(w, ErrRequestCancelled, http.StatusRequestTimeout)
	case errors.Is(err, domain.ErrInvalidInput):
		s.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		s.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusNotFound)
	case errors.Is(err, domain.ErrTimeout):
		s.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusGatewayTimeout)
	case errors.Is(err, domain.ErrSourceUnavailable):
		s.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusBadGateway)
	case errors.As(err, &partialErr):
		s.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusInternalServerError)
	default:
		s.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusInternalServerError)
	}
}

// ListInfluencersHandler returns every handle the operator has observed.
func (s *Snapshots) ListInfluencersHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodGet {
		s.logger.LogEvent(util.LOG_LEVEL_ERROR, "Method Not Allowed. Only GET requests are supported", http.StatusMethodNotAllowed)
		s.Response.WriteErrorResponseWithStatusCode(w, errors.New("method Not Allowed. Only GET requests are supported"), http.StatusMethodNotAllowed)
		return
	}

	user := r.URL.Query().Get("user")
	if user == "" {
		s.logger.LogEvent(util.LOG_LEVEL_ERROR, "Influencer listing attempted with empty user")
		s.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return
	}

	handles, err := s.store.ListInfluencers(r.Context(), user)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.LogEvent(util.LOG_LEVEL_WARN, "Context cancelled")
			s.Response.WriteErrorResponseWithStatusCode(w, ErrRequestCancelled, http.StatusRequestTimeout)
			return
		}
		s.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while ListInfluencers(). Err - ", err)
		s.Response.WriteErrorResponse(w, err)
		return
	}

	if len(handles) == 0 {
		s.logger.LogEvent(util.LOG_LEVEL_WARN, "No influencers recorded for user", user)
		s.Response.WriteErrorResponseWithStatusCode(w, ErrNoDataAvailable, http.StatusNotFound)
		return
	}

	s.Response.WriteResultResponse(w, handles)
}
