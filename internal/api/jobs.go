package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// ErrMissingID is returned when a required identifier is empty. Nothing is sent.
var ErrMissingID = errors.New("missing identifier")

func requireID(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s", ErrMissingID, name)
	}
	return nil
}

// Execute submits a job for a processo.
func (c *Client) Execute(ctx context.Context, processID string, req ExecuteRequest) (*ExecuteResponse, error) {
	if err := requireID("processo_id", processID); err != nil {
		return nil, err
	}
	if req.Tipo == "" {
		req.Tipo = TipoRPA
	}

	var resp ExecuteResponse
	path := externosPath + "/executar/" + url.PathEscape(processID)
	if err := c.do(ctx, c.httpClient, http.MethodPost, path, nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to execute %s for processo %s: %w", req.Tipo, processID, err)
	}
	return &resp, nil
}

// Wait asks the server to block until the job finishes or MaxWait elapses.
func (c *Client) Wait(ctx context.Context, jobID string, req WaitRequest) (*WaitResponse, error) {
	if err := requireID("job_id", jobID); err != nil {
		return nil, err
	}
	if err := requireID("processo_id", req.ProcessoID); err != nil {
		return nil, err
	}

	// The call legitimately outlives the default timeout.
	if req.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.MaxWait)*time.Second+DefaultTimeout)
		defer cancel()
	}

	var resp WaitResponse
	path := externosPath + "/monitorar/" + url.PathEscape(jobID)
	if err := c.do(ctx, c.streamClient, http.MethodPost, path, nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to wait for job %s: %w", jobID, err)
	}
	return &resp, nil
}

// Cancel requests cancellation of a running job.
func (c *Client) Cancel(ctx context.Context, jobID, processID string) error {
	if err := requireID("job_id", jobID); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("processo_id", processID)

	var resp cancelResponse
	path := externosPath + "/cancelar/" + url.PathEscape(jobID)
	if err := c.do(ctx, c.httpClient, http.MethodDelete, path, params, nil, &resp); err != nil {
		return fmt.Errorf("failed to cancel job %s: %w", jobID, err)
	}
	return nil
}

// Status fetches the current status of a job. processID is optional.
func (c *Client) Status(ctx context.Context, jobID, processID string) (*JobStatus, error) {
	if err := requireID("job_id", jobID); err != nil {
		return nil, err
	}

	var params url.Values
	if processID != "" {
		params = url.Values{}
		params.Set("processo_id", processID)
	}

	var resp StatusResponse
	path := externosPath + "/status/" + url.PathEscape(jobID)
	if err := c.do(ctx, c.httpClient, http.MethodGet, path, params, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status == nil {
		return nil, &ProtocolError{Endpoint: path, Message: "resposta sem status"}
	}
	return resp.Status, nil
}

// Payload returns the payload the server would send for a processo.
func (c *Client) Payload(ctx context.Context, processID string, tipo Tipo) (json.RawMessage, error) {
	if err := requireID("processo_id", processID); err != nil {
		return nil, err
	}
	if tipo == "" {
		tipo = TipoRPA
	}

	params := url.Values{}
	params.Set("tipo", string(tipo))

	var resp PayloadResponse
	path := externosPath + "/payload/" + url.PathEscape(processID)
	if err := c.do(ctx, c.httpClient, http.MethodGet, path, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch payload for processo %s: %w", processID, err)
	}
	return resp.Payload, nil
}

// Logs returns the stored logs of a job.
func (c *Client) Logs(ctx context.Context, jobID string) ([]LogEntry, error) {
	if err := requireID("job_id", jobID); err != nil {
		return nil, err
	}

	var resp LogsResponse
	path := externosPath + "/logs/" + url.PathEscape(jobID)
	if err := c.do(ctx, c.httpClient, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch logs for job %s: %w", jobID, err)
	}
	return resp.Logs, nil
}

// StreamURL returns the event-stream URL of a job.
func (c *Client) StreamURL(jobID string) string {
	return c.baseURL + streamPath + "/" + url.PathEscape(jobID)
}

// OpenStream opens the event stream of a job. The caller must close the body.
// The connection has no timeout; cancel ctx to end it.
func (c *Client) OpenStream(ctx context.Context, jobID string) (*http.Response, error) {
	if err := requireID("job_id", jobID); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	path := streamPath + "/" + url.PathEscape(jobID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	c.logger.WithFields(logrus.Fields{
		"job_id": jobID,
		"url":    c.StreamURL(jobID),
	}).Debug("opening event stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Endpoint: path}
	}
	return resp, nil
}
