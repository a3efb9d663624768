package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/unitrack/planner/internal/domain/model"
)

const defaultRemoteTimeout = 5 * time.Second

// Remote calls an inference endpoint that accepts
//
//	{"student_id": "...", "period": "2019-02", "courses": ["CS101"]}
//
// and answers {"predictions": {"CS101": 14.2}}.
type Remote struct {
	url    string
	client *http.Client
}

// RemoteOption configures a Remote predictor.
type RemoteOption func(*Remote)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		if c != nil {
			r.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		if d > 0 {
			r.client.Timeout = d
		}
	}
}

// NewRemote returns a predictor posting to url.
func NewRemote(url string, opts ...RemoteOption) *Remote {
	r := &Remote{url: url, client: &http.Client{Timeout: defaultRemoteTimeout}}
	for _, o := range opts {
		o(r)
	}
	return r
}

type remoteRequest struct {
	StudentID string   `json:"student_id"`
	Period    string   `json:"period"`
	Courses   []string `json:"courses"`
}

type remoteResponse struct {
	Predictions map[string]float64 `json:"predictions"`
}

func (r *Remote) Predict(ctx context.Context, student string, courses []string, period model.Period) (map[string]float64, error) {
	body, err := json.Marshal(remoteRequest{StudentID: student, Period: string(period), Courses: courses})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrRemote, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
	}
	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRemote, err)
	}
	if len(out.Predictions) == 0 {
		return nil, fmt.Errorf("%w: student %s", ErrNoPredictions, student)
	}
	return out.Predictions, nil
}
