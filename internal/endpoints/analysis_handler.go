package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"influencer-app/internal/analytics"
	"influencer-app/internal/export"
	"influencer-app/internal/util"
)

type AnalysisRequest struct {
	User    string   `json:"user"`
	Handles []string `json:"handles"`
	Start   int64    `json:"start"`
	End     int64    `json:"end"`
	Scale   string   `json:"scale"`
	Dataset string   `json:"dataset,omitempty"` // export only: growth (default) or series
}

type Analysis struct {
	Response APIResponse
	logger   *util.TrackerLogger
	analyzer *analytics.Analyzer
}

func (a *Analysis) Init(analyzer *analytics.Analyzer, logger *util.TrackerLogger) {
	a.analyzer = analyzer
	a.logger = logger
}

func (a *Analysis) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	result, _, ok := a.runAnalysis(w, r)
	if !ok {
		return
	}
	a.Response.WriteResultResponse(w, result)
}

// ExportHandler runs the same analysis and streams one dataset as CSV.
func (a *Analysis) ExportHandler(w http.ResponseWriter, r *http.Request) {
	result, reqBody, ok := a.runAnalysis(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	var err error
	dataset := reqBody.Dataset
	switch dataset {
	case "series":
		err = export.WriteSeries(&buf, result.Series)
	case "", "growth":
		dataset = "growth"
		err = export.WriteGrowth(&buf, result.Growth)
	default:
		a.logger.LogEvent(util.LOG_LEVEL_ERROR, "Unknown export dataset", dataset)
		a.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return
	}
	if err != nil {
		a.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while serializing export. Err - ", err)
		a.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusInternalServerError)
		return
	}

	WriteCSVAttachment(w, fmt.Sprintf("analysis_%s.csv", dataset), buf.Bytes())
}

func (a *Analysis) runAnalysis(w http.ResponseWriter, r *http.Request) (*analytics.AnalysisResult, AnalysisRequest, bool) {

	var reqBody AnalysisRequest

	if r.Method != http.MethodPost {
		a.logger.LogEvent(util.LOG_LEVEL_ERROR, "Method Not Allowed. Only POST requests are supported", http.StatusMethodNotAllowed)
		a.Response.WriteErrorResponseWithStatusCode(w, errors.New("method Not Allowed. Only POST requests are supported"), http.StatusMethodNotAllowed)
		return nil, reqBody, false
	}

	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		a.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while unmarshalling JSON Body. Err -", err)
		a.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return nil, reqBody, false
	}

	if reqBody.User == "" {
		a.logger.LogEvent(util.LOG_LEVEL_ERROR, "Analysis attempted with empty user")
		a.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return nil, reqBody, false
	}

	scale, err := analytics.ParseScale(reqBody.Scale)
	if err != nil {
		a.logger.LogEvent(util.LOG_LEVEL_ERROR, "Invalid scale", reqBody.Scale)
		a.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return nil, reqBody, false
	}

	from, to, err := timeRange(reqBody.Start, reqBody.End)
	if err != nil {
		a.logger.LogEvent(util.LOG_LEVEL_ERROR, "Given startTime is greater than endTime. startTime - ", reqBody.Start, " endTime - ", reqBody.End)
		a.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusBadRequest)
		return nil, reqBody, false
	}

	result, err := a.analyzer.Analyze(r.Context(), reqBody.User, canonicalHandles(reqBody.Handles), from, to, scale)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.logger.LogEvent(util.LOG_LEVEL_WARN, "Context cancelled")
			a.Response.WriteErrorResponseWithStatusCode(w, ErrRequestCancelled, http.StatusRequestTimeout)
			return nil, reqBody, false
		}
		a.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while Analyze(). Err - ", err)
		a.Response.WriteErrorResponse(w, err)
		return nil, reqBody, false
	}

	// An empty result is a valid answer, not an error.
	return result, reqBody, true
}
