package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"influencer-app/internal/domain"
	"influencer-app/internal/export"
	"influencer-app/internal/util"
)

type AddProductRequest struct {
	Handle         string          `json:"handle"`
	ProductName    string          `json:"product_name"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
}

type ProductQueryRequest struct {
	Handles []string `json:"handles"`
	Start   int64    `json:"start"`
	End     int64    `json:"end"`
	Format  string   `json:"format,omitempty"` // json (default) or csv
}

type Products struct {
	Response APIResponse
	logger   *util.TrackerLogger
	store    domain.MetricStore
}

func (p *Products) Init(store domain.MetricStore, logger *util.TrackerLogger) {
	p.store = store
	p.logger = logger
}

// AddProductHandler records one product awarded during a livestream.
func (p *Products) AddProductHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Method Not Allowed. Only POST requests are supported", http.StatusMethodNotAllowed)
		p.Response.WriteErrorResponseWithStatusCode(w, errors.New("method Not Allowed. Only POST requests are supported"), http.StatusMethodNotAllowed)
		return
	}

	var reqBody AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while unmarshalling JSON Body. Err -", err)
		p.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}

	handle := canonicalHandle(reqBody.Handle)

	// estimated_value > 0 is enforced here at ingestion, not by storage.
	if handle == "" || reqBody.ProductName == "" || !reqBody.EstimatedValue.IsPositive() {
		p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Product rejected: empty fields or non-positive value")
		p.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return
	}

	product := domain.EarnedProduct{
		InfluencerHandle: handle,
		ProductName:      reqBody.ProductName,
		EstimatedValue:   reqBody.EstimatedValue,
		RecordedAt:       time.Now().UTC().Truncate(time.Second),
	}

	if err := p.store.AppendProduct(r.Context(), product); err != nil {
		p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while AppendProduct(). Err - ", err)
		p.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusInternalServerError)
		return
	}

	p.Response.WriteResultResponse(w, product)
}

// QueryProductsHandler lists products over a range, as JSON or CSV.
func (p *Products) QueryProductsHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Method Not Allowed. Only POST requests are supported", http.StatusMethodNotAllowed)
		p.Response.WriteErrorResponseWithStatusCode(w, errors.New("method Not Allowed. Only POST requests are supported"), http.StatusMethodNotAllowed)
		return
	}

	var reqBody ProductQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while unmarshalling JSON Body. Err -", err)
		p.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}

	from, to, err := timeRange(reqBody.Start, reqBody.End)
	if err != nil {
		p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Given startTime is greater than endTime. startTime - ", reqBody.Start, " endTime - ", reqBody.End)
		p.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusBadRequest)
		return
	}

	products, err := p.store.QueryProducts(r.Context(), canonicalHandles(reqBody.Handles), from, to)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			p.logger.LogEvent(util.LOG_LEVEL_WARN, "Context cancelled")
			p.Response.WriteErrorResponseWithStatusCode(w, ErrRequestCancelled, http.StatusRequestTimeout)
			return
		}
		p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while QueryProducts(). Err - ", err)
		p.Response.WriteErrorResponse(w, err)
		return
	}

	if len(products) == 0 {
		p.logger.LogEvent(util.LOG_LEVEL_WARN, "No products found for the given criteria")
		p.Response.WriteErrorResponseWithStatusCode(w, ErrNoDataAvailable, http.StatusNotFound)
		return
	}

	if reqBody.Format == "csv" {
		var buf bytes.Buffer
		if err := export.WriteProducts(&buf, products); err != nil {
			p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while serializing export. Err - ", err)
			p.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusInternalServerError)
			return
		}
		WriteCSVAttachment(w, "earned_products.csv", buf.Bytes())
		return
	}

	p.Response.WriteResultResponse(w, products)
}
