package coolify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	config "github.com/maheshrc27/coolify-admin/configs"
	"github.com/maheshrc27/coolify-admin/internal/metrics"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Client talks to the Coolify REST API. Every request carries the API token
// as a bearer credential and waits on a shared rate limiter.
type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg config.Coolify) *Client {
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.APIToken,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = cfg.Timeout
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		burst = cfg.RateLimit
	}

	// Backup downloads can outlive the per-call timeout; they are bounded by
	// the caller's context instead.
	stream := *httpClient
	stream.Timeout = 0

	return &Client{
		baseURL: strings.TrimSuffix(cfg.APIURL, "/"),
		http:    httpClient,
		stream:  &stream,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *Client) send(ctx context.Context, hc *http.Client, method, path string, body any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		metrics.RecordCoolifyRequest(method, 0)
		slog.Info("coolify request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("coolify %s %s: %w", method, path, err)
	}
	metrics.RecordCoolifyRequest(method, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
		slog.Info(apiErr.Error())
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	resp, err := c.send(ctx, c.http, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// listPayload accepts both a bare JSON array and the {"data": [...]} envelope.
func listPayload(raw []byte) gjson.Result {
	res := gjson.ParseBytes(raw)
	if res.IsArray() {
		return res
	}
	return res.Get("data")
}

func parseProject(res gjson.Result) Project {
	p := Project{
		UUID:        res.Get("uuid").String(),
		Name:        res.Get("name").String(),
		Description: res.Get("description").String(),
	}
	for _, env := range res.Get("environments").Array() {
		p.EnvironmentIDs = append(p.EnvironmentIDs, env.Get("id").Int())
	}
	return p
}

func parseResource(res gjson.Result) Resource {
	t := res.Get("type").String()
	return Resource{
		UUID:          res.Get("uuid").String(),
		Name:          res.Get("name").String(),
		Type:          t,
		Status:        res.Get("status").String(),
		EnvironmentID: res.Get("environment_id").Int(),
		Kind:          KindFromType(t),
	}
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil)
	if err != nil {
		return nil, err
	}

	var projects []Project
	listPayload(raw).ForEach(func(_, value gjson.Result) bool {
		projects = append(projects, parseProject(value))
		return true
	})
	return projects, nil
}

func (c *Client) Project(ctx context.Context, uuid string) (*Project, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+url.PathEscape(uuid), nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p := parseProject(gjson.ParseBytes(raw))
	return &p, nil
}

func (c *Client) Resources(ctx context.Context) ([]Resource, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v1/resources", nil)
	if err != nil {
		return nil, err
	}

	var resources []Resource
	listPayload(raw).ForEach(func(_, value gjson.Result) bool {
		resources = append(resources, parseResource(value))
		return true
	})
	return resources, nil
}

// ProjectResources returns the resources deployed in any of the project's
// environments. Coolify's resource listing carries environment ids, not
// project uuids, so the project is fetched first.
func (c *Client) ProjectResources(ctx context.Context, projectUUID string) ([]Resource, error) {
	project, err := c.Project(ctx, projectUUID)
	if err != nil {
		return nil, fmt.Errorf("fetching project %s: %w", projectUUID, err)
	}

	all, err := c.Resources(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching resources: %w", err)
	}

	resources := []Resource{}
	for _, r := range all {
		if slices.Contains(project.EnvironmentIDs, r.EnvironmentID) {
			resources = append(resources, r)
		}
	}
	return resources, nil
}

func (c *Client) StopResource(ctx context.Context, r Resource) error {
	if r.Stopped() {
		slog.Info("resource already stopped", "resource", r.Name, "uuid", r.UUID, "status", r.Status)
		return nil
	}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/%s/%s/stop", r.Kind.PathSegment(), url.PathEscape(r.UUID)), nil)
	return err
}

func (c *Client) StartResource(ctx context.Context, r Resource) error {
	if r.Running() {
		slog.Info("resource already running", "resource", r.Name, "uuid", r.UUID, "status", r.Status)
		return nil
	}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/%s/%s/start", r.Kind.PathSegment(), url.PathEscape(r.UUID)), nil)
	return err
}

func (c *Client) StopProject(ctx context.Context, projectUUID string) error {
	return c.applyToProject(ctx, projectUUID, "stop", c.StopResource)
}

func (c *Client) StartProject(ctx context.Context, projectUUID string) error {
	return c.applyToProject(ctx, projectUUID, "start", c.StartResource)
}

// applyToProject runs fn against every resource of the project concurrently
// and waits for all of them. It fails if any single resource failed.
func (c *Client) applyToProject(ctx context.Context, projectUUID, action string, fn func(context.Context, Resource) error) error {
	resources, err := c.ProjectResources(ctx, projectUUID)
	if err != nil {
		return err
	}
	if len(resources) == 0 {
		return fmt.Errorf("%s project %s: %w", action, projectUUID, ErrNoResources)
	}

	errs := make([]error, len(resources))
	var g errgroup.Group
	for i, r := range resources {
		i, r := i, r
		g.Go(func() error {
			if err := fn(ctx, r); err != nil {
				errs[i] = fmt.Errorf("%s %s %s: %w", action, r.Kind, r.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	slog.Info("project action finished",
		"action", action,
		"project", projectUUID,
		"resources", len(resources),
		"failed", failed,
	)
	return errors.Join(errs...)
}

// ResourceDetails looks the resource up as an application, then a database,
// then a service, returning the first match.
func (c *Client) ResourceDetails(ctx context.Context, resourceUUID string) (json.RawMessage, Kind, error) {
	var lastErr error
	for _, k := range kinds {
		raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/%s/%s", k.PathSegment(), url.PathEscape(resourceUUID)), nil)
		if err == nil {
			return raw, k, nil
		}
		lastErr = err
	}
	slog.Info("resource not found under any kind", "uuid", resourceUUID, "error", lastErr)
	return nil, KindApplication, ErrNotFound
}

// DatabaseBackups returns Coolify's backup listing for a database unchanged.
func (c *Client) DatabaseBackups(ctx context.Context, databaseUUID string) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v1/databases/"+url.PathEscape(databaseUUID)+"/backups", nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || !gjson.ValidBytes(raw) {
		return json.RawMessage("[]"), nil
	}
	return raw, nil
}

type backupRequest struct {
	Frequency       string `json:"frequency"`
	Enabled         bool   `json:"enabled"`
	SaveS3          bool   `json:"save_s3"`
	BackupNow       bool   `json:"backup_now"`
	RetentionAmount int    `json:"database_backup_retention_amount_locally"`
	RetentionDays   int    `json:"database_backup_retention_days_locally"`
}

// CreateDatabaseBackup asks Coolify to take a manual backup right away.
func (c *Client) CreateDatabaseBackup(ctx context.Context, databaseUUID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/databases/"+url.PathEscape(databaseUUID)+"/backups", backupRequest{
		Frequency:       "manual",
		Enabled:         true,
		SaveS3:          false,
		BackupNow:       true,
		RetentionAmount: 5,
		RetentionDays:   7,
	})
	return err
}

// DownloadDatabaseBackup streams a backup file. The caller closes the reader.
func (c *Client) DownloadDatabaseBackup(ctx context.Context, databaseUUID, filename string) (io.ReadCloser, error) {
	path := fmt.Sprintf("/api/v1/databases/%s/backups/%s", url.PathEscape(databaseUUID), url.PathEscape(filename))
	resp, err := c.send(ctx, c.stream, http.MethodGet, path, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return resp.Body, nil
}
