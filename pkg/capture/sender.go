package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
)

// Batch is the wire payload shipped to the event ingestion endpoint. The
// scan id lets the server verify the session belongs to the claimed scan.
type Batch struct {
	ScanID    string                        `json:"scanId"`
	SessionID string                        `json:"sessionId"`
	Events    []*analytics.InteractionEvent `json:"events"`
}

// Sender delivers event batches to the ingestion API.
type Sender interface {
	Send(ctx context.Context, batch *Batch) error
	// Beacon is the unload path: fire and forget, no error reporting,
	// mirroring navigator.sendBeacon semantics.
	Beacon(batch *Batch)
}

// StartRequest carries the fields posted when opening a session.
type StartRequest struct {
	Action     string `json:"action"`
	ScanID     string `json:"scanId"`
	VisitorID  string `json:"visitorId"`
	Device     string `json:"deviceType"`
	EntryPoint string `json:"entryPoint"`
}

// SessionTransport drives the session lifecycle endpoint.
type SessionTransport interface {
	Start(ctx context.Context, req *StartRequest) (string, error)
	Heartbeat(ctx context.Context, sessionID string) error
	End(ctx context.Context, sessionID string) error
	// BeaconEnd closes the session on the unload path, best effort.
	BeaconEnd(sessionID string)
}

// RestClient implements Sender and SessionTransport over the HTTP API.
type RestClient struct {
	http *resty.Client
}

// NewRestClient creates a client for the given API base URL and tenant.
func NewRestClient(baseURL, tenantID string) *RestClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Tenant-ID", tenantID)

	return &RestClient{http: client}
}

func (r *RestClient) Send(ctx context.Context, batch *Batch) error {
	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(batch).
		Post("/api/v1/scan-events")
	if err != nil {
		return fmt.Errorf("failed to send event batch: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("event batch rejected with status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (r *RestClient) Beacon(batch *Batch) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r.http.R().
		SetContext(ctx).
		SetBody(batch).
		Post("/api/v1/scan-events")
}

type sessionActionRequest struct {
	Action    string `json:"action"`
	SessionID string `json:"sessionId"`
}

type startSessionResponse struct {
	SessionID string `json:"sessionId"`
}

func (r *RestClient) Start(ctx context.Context, req *StartRequest) (string, error) {
	req.Action = "start"

	var result startSessionResponse
	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/api/v1/scan-sessions")
	if err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("session start rejected with status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.SessionID == "" {
		return "", fmt.Errorf("session start returned no session id")
	}
	return result.SessionID, nil
}

func (r *RestClient) Heartbeat(ctx context.Context, sessionID string) error {
	return r.postSessionAction(ctx, "heartbeat", sessionID)
}

func (r *RestClient) End(ctx context.Context, sessionID string) error {
	return r.postSessionAction(ctx, "end", sessionID)
}

func (r *RestClient) BeaconEnd(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r.http.R().
		SetContext(ctx).
		SetBody(&sessionActionRequest{Action: "end", SessionID: sessionID}).
		Post("/api/v1/scan-sessions")
}

func (r *RestClient) postSessionAction(ctx context.Context, action, sessionID string) error {
	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(&sessionActionRequest{Action: action, SessionID: sessionID}).
		Post("/api/v1/scan-sessions")
	if err != nil {
		return fmt.Errorf("failed to post session %s: %w", action, err)
	}
	if resp.IsError() {
		return fmt.Errorf("session %s rejected with status %d: %s", action, resp.StatusCode(), resp.String())
	}
	return nil
}
