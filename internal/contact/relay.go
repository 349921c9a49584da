package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRelayRejected is matched by every *RelayError.
var ErrRelayRejected = errors.New("contact: relay rejected submission")

// RelayError is a non-2xx relay answer.
type RelayError struct {
	Status  int
	Message string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("contact: relay rejected submission (%d): %s", e.Status, e.Message)
}

func (e *RelayError) Is(target error) bool { return target == ErrRelayRejected }

// Relay posts messages to a form endpoint.
type Relay struct {
	endpoint string
	client   *http.Client
}

// NewRelay builds a relay client; timeout bounds each POST.
func NewRelay(endpoint string, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Relay{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the relay URL.
func (r *Relay) Endpoint() string { return r.endpoint }

// relayError covers both Formspree error shapes.
type relayError struct {
	Error  string `json:"error"`
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Send posts m as JSON. A non-2xx answer becomes a *RelayError carrying the
// relay's error text when it sent one.
func (r *Relay) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("contact: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("contact: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("contact: post: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := "Failed to send message"
	var re relayError
	if json.Unmarshal(raw, &re) == nil {
		switch {
		case re.Error != "":
			msg = re.Error
		case len(re.Errors) > 0 && re.Errors[0].Message != "":
			msg = re.Errors[0].Message
		}
	}
	return &RelayError{Status: resp.StatusCode, Message: msg}
}
