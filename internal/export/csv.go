package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"influencer-app/internal/analytics"
	"influencer-app/internal/domain"
)

// Pure serialization of analysis and product rows to CSV. One header
// row of field names, one record per input row, no computation.

func WriteGrowth(w io.Writer, growth []analytics.GrowthSummary) error {
	cw := csv.NewWriter(w)

	header := []string{"handle"}
	for _, mt := range domain.MetricTypes {
		header = append(header, string(mt)+"_delta", string(mt)+"_percent")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}

	for _, g := range growth {
		record := []string{g.Handle}
		for _, mt := range domain.MetricTypes {
			m := g.Metrics[mt]
			record = append(record, m.Delta.String(), strconv.FormatFloat(m.Percent, 'f', 2, 64))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteSeries(w io.Writer, series []analytics.SeriesPoint) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"handle", "metric_type", "recorded_at", "value"}); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}
	for _, p := range series {
		record := []string{p.Handle, string(p.MetricType), p.RecordedAt.UTC().Format(time.RFC3339), p.Value.String()}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteProducts(w io.Writer, products []domain.EarnedProduct) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"influencer_handle", "product_name", "estimated_value", "recorded_at"}); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}
	for _, p := range products {
		record := []string{p.InfluencerHandle, p.ProductName, p.EstimatedValue.String(), p.RecordedAt.UTC().Format(time.RFC3339)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
