// Package googletasks implements service.Service on the Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todo/internal/config"
	"todo/internal/service"
)

const (
	// DefaultListID addresses the user's default list in API paths.
	DefaultListID = "@default"

	// PageSize is the number of items fetched per request.
	PageSize = 100

	// APITimeout bounds each API call, paging included.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope push needs.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Service.
type Client struct {
	svc *tasks.Service
	log *zap.Logger
}

// New creates a client from the credentials in cfg.Dir.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	ts, err := tokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// The token source refreshes expired access tokens on its own
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, log: cfg.Logger().Named("googletasks")}, nil
}

// NewWithHTTPClient creates a client against endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, log: zap.NewNop()}, nil
}

func tokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", service.ErrAuth, config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %w", service.ErrAuth, config.OAuthClientFile, err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: not logged in (run: todo login)", service.ErrAuth)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %w", service.ErrAuth, config.TokenFile, err)
	}
	return oauthConfig.TokenSource(ctx, &token), nil
}

// DefaultList returns the user's default task list.
func (c *Client) DefaultList(ctx context.Context) (service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	list, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return service.TaskList{}, wrapError(err)
	}
	return service.TaskList{ID: DefaultListID, Title: list.Title, IsDefault: true}, nil
}

// ResolveList finds a list by title, ignoring case and surrounding space.
func (c *Client) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	lists, err := c.ListLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}

	name = strings.TrimSpace(name)
	var matches []service.TaskList
	for _, list := range lists {
		if strings.EqualFold(strings.TrimSpace(list.Title), name) {
			matches = append(matches, list)
		}
	}

	switch len(matches) {
	case 0:
		return service.TaskList{}, fmt.Errorf("%w: list %s", service.ErrNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return service.TaskList{}, fmt.Errorf("%w: %s", service.ErrAmbiguous, name)
	}
}

// ListLists returns all task lists in API order. The default list is
// reported under DefaultListID rather than its real id.
func (c *Client) ListLists(ctx context.Context) ([]service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	def, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	var result []service.TaskList
	err = c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			tl := service.TaskList{ID: list.Id, Title: list.Title}
			if list.Id == def.Id {
				tl.ID = DefaultListID
				tl.IsDefault = true
			}
			result = append(result, tl)
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	c.log.Debug("listed task lists", zap.Int("count", len(result)))
	return result, nil
}

// ListTasks returns every task in a list, completed and hidden ones included.
func (c *Client) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []service.Task
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, fromAPI(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	c.log.Debug("listed tasks", zap.String("list", listID), zap.Int("count", len(result)))
	return result, nil
}

// CreateTask inserts task at the top of the list.
func (c *Client) CreateTask(ctx context.Context, listID string, task service.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(listID, toAPI(task)).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	c.log.Debug("created task", zap.String("list", listID), zap.String("id", created.Id))
	return nil
}

func fromAPI(t *tasks.Task) service.Task {
	task := service.Task{
		ID:        t.Id,
		Title:     t.Title,
		Completed: t.Status == statusCompleted,
	}
	if due, err := time.Parse(time.RFC3339, t.Due); err == nil {
		task.Due = due.UTC()
	}
	return task
}

func toAPI(task service.Task) *tasks.Task {
	t := &tasks.Task{Title: task.Title, Status: statusNeedsAction}
	if task.Completed {
		t.Status = statusCompleted
	}
	// The API keeps only the date part of due
	if !task.Due.IsZero() {
		t.Due = task.Due.UTC().Format(time.RFC3339)
	}
	return t
}

// wrapError maps API failures onto the service sentinels.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: todo login)", service.ErrAuth)
		case http.StatusNotFound:
			return service.ErrNotFound
		}
	}
	return err
}
