package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"influencer-app/internal/domain"
)

// FetchTimeout mirrors the upstream page-load ceiling.
const FetchTimeout = 120 * time.Second

// count decodes either a raw JSON number or a humanized string such as
// "1.2M", since upstream reports both forms.
type count int64

func (c *count) UnmarshalJSON(data []byte) error {
	var raw int64
	if err := json.Unmarshal(data, &raw); err == nil {
		*c = count(raw)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("count is neither number nor string: %s", data)
	}
	parsed, err := ParseCount(text)
	if err != nil {
		return err
	}
	*c = count(parsed)
	return nil
}

// HTTPSource fetches influencer numbers from a JSON metrics endpoint.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: FetchTimeout},
	}
}

func (s *HTTPSource) FetchProfile(ctx context.Context, handle string) (domain.ProfileSnapshot, error) {
	var payload struct {
		Followers count `json:"followers"`
		Likes     count `json:"likes"`
		Views     count `json:"views"`
	}
	if err := s.get(ctx, s.profileURL(handle), &payload); err != nil {
		return domain.ProfileSnapshot{}, err
	}
	return domain.ProfileSnapshot{
		Followers: int64(payload.Followers),
		Likes:     int64(payload.Likes),
		Views:     int64(payload.Views),
	}, nil
}

func (s *HTTPSource) FetchLive(ctx context.Context, handle string) (domain.LiveSnapshot, error) {
	var payload struct {
		Likes count `json:"likes"`
		Views count `json:"views"`
	}
	if err := s.get(ctx, s.profileURL(handle)+"/live", &payload); err != nil {
		return domain.LiveSnapshot{}, err
	}
	return domain.LiveSnapshot{Likes: int64(payload.Likes), Views: int64(payload.Views)}, nil
}

func (s *HTTPSource) profileURL(handle string) string {
	return s.baseURL + "/profiles/" + url.PathEscape(strings.TrimPrefix(handle, "@"))
}

func (s *HTTPSource) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", domain.ErrSourceUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, endpoint)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: unexpected status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", domain.ErrSourceUnavailable, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
