package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/voting"
)

// HTTPClient implements PlenumClient using the plenum HTTP/JSON REST API.
type HTTPClient struct {
	baseURL       string
	token         string
	actor         string
	operatorToken string
	httpClient    *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request; actor is sent as X-Actor, and operatorToken
// (for retroactive mutations) as X-Operator-Token.
func NewHTTPClient(baseURL, token, actor, operatorToken string) *HTTPClient {
	return &HTTPClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		actor:         actor,
		operatorToken: operatorToken,
		httpClient:    &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Sessions ---

func (c *HTTPClient) CreateSession(ctx context.Context, req *CreateSessionRequest) (*model.Session, error) {
	var session model.Session
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context) ([]*model.Session, error) {
	var resp struct {
		Sessions []*model.Session `json:"sessions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (c *HTTPClient) TransitionSession(ctx context.Context, id string, to model.SessionState) (*model.Session, error) {
	body := map[string]model.SessionState{"to": to}
	var session model.Session
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(id)+"/transition", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// --- Presence ---

func (c *HTTPClient) MarkPresence(ctx context.Context, req *MarkPresenceRequest) (*model.PresenceRecord, error) {
	path := "/v1/sessions/" + url.PathEscape(req.SessionID) + "/presence/" + url.PathEscape(req.LegislatorID)
	var rec model.PresenceRecord
	if err := c.doJSON(ctx, http.MethodPut, path, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) ListPresence(ctx context.Context, sessionID string) ([]*model.PresenceRecord, error) {
	var resp struct {
		Records []*model.PresenceRecord `json:"records"`
	}
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/presence"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// --- Voting ---

func (c *HTTPClient) RecordBallots(ctx context.Context, req *RecordBallotsRequest) ([]voting.BallotOutcome, error) {
	var resp struct {
		Outcomes []voting.BallotOutcome `json:"outcomes"`
	}
	path := "/v1/sessions/" + url.PathEscape(req.SessionID) + "/ballots"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return resp.Outcomes, nil
}

func (c *HTTPClient) Finalize(ctx context.Context, req *FinalizeRequest) (*voting.FinalizeResult, error) {
	var result voting.FinalizeResult
	path := "/v1/sessions/" + url.PathEscape(req.SessionID) + "/finalize"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetAggregation(ctx context.Context, proposalID, sessionID string, round int) (*model.VoteAggregation, error) {
	path := fmt.Sprintf("/v1/aggregations/%s/%d?session=%s",
		url.PathEscape(proposalID), round, url.QueryEscape(sessionID))
	var agg model.VoteAggregation
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

// --- Rules ---

func (c *HTTPClient) ListRules(ctx context.Context) ([]*model.QuorumRule, error) {
	var resp struct {
		Rules []*model.QuorumRule `json:"rules"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/rules", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

func (c *HTTPClient) PutRule(ctx context.Context, rule *model.QuorumRule) (*model.QuorumRule, error) {
	var stored model.QuorumRule
	if err := c.doJSON(ctx, http.MethodPut, "/v1/rules", rule, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// --- Audit ---

func (c *HTTPClient) ListAudit(ctx context.Context, sessionID string) ([]*model.AuditEntry, error) {
	var resp struct {
		Entries []*model.AuditEntry `json:"entries"`
	}
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/audit"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// doJSON performs an HTTP request with a JSON body and decodes the JSON
// response into result (unless result is nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.actor != "" {
		req.Header.Set("X-Actor", c.actor)
	}
	if c.operatorToken != "" {
		req.Header.Set("X-Operator-Token", c.operatorToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
