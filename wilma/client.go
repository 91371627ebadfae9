// Package wilma talks to the school portal: it performs the login handshake
// and fetches profile listings and per-person schedule pages.
package wilma

import (
	"context"
	customerrors "duty-report/errors"
	"duty-report/metrics"
	"duty-report/models"
	"duty-report/parser"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// SessionCookie is the portal's only session credential.
const SessionCookie = "Wilma2SID"

const (
	defaultTimeout = 30 * time.Second
	defaultWorkers = 6
)

// Client is an authenticated portal session. It is safe for concurrent use
// once Open has returned.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	workers int
}

type options struct {
	timeout   time.Duration
	logger    *slog.Logger
	workers   int
	transport http.RoundTripper
}

// Option configures Open.
type Option func(*options)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithWorkers bounds how many schedules FetchAll requests at once.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// Open logs in to server and discovers the session's identity path.
//
// server is a host name ("school.inschool.fi"), in which case https is
// used, or a full origin URL. Every step must succeed; a failure is
// returned as an AuthError naming the step.
func Open(ctx context.Context, username, password, server string, opts ...Option) (*Client, error) {
	o := options{timeout: defaultTimeout, logger: slog.Default(), workers: defaultWorkers}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}

	origin := server
	if !strings.Contains(origin, "://") {
		origin = "https://" + origin
	}
	origin = strings.TrimRight(origin, "/")
	originURL, err := url.Parse(origin + "/")
	if err != nil {
		return nil, &customerrors.AuthError{Step: "server", Err: err}
	}

	log := o.logger.With("server", originURL.Host)
	anon := newHTTPClient(o, nil)

	log.Debug("fetching session id")
	sessionID, err := fetchSessionID(ctx, anon, origin)
	if err != nil {
		return nil, &customerrors.AuthError{Step: "index", Err: err}
	}

	log.Debug("logging in")
	sid, err := login(ctx, anon, origin, username, password, sessionID)
	if err != nil {
		return nil, &customerrors.AuthError{Step: "login", Err: err}
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, &customerrors.AuthError{Step: "cookie", Err: err}
	}
	jar.SetCookies(originURL, []*http.Cookie{{Name: SessionCookie, Value: sid}})

	c := &Client{
		client:  newHTTPClient(o, jar),
		logger:  o.logger,
		workers: o.workers,
	}

	log.Debug("loading landing page")
	landing, err := c.get(ctx, "landing", origin+"/")
	if err != nil {
		return nil, &customerrors.AuthError{Step: "landing", Err: err}
	}

	identity, err := parser.ParseIdentity(landing)
	if err != nil {
		return nil, &customerrors.AuthError{Step: "identity", Err: err}
	}

	c.baseURL = origin + "/" + identity
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	log.Info("portal session opened")
	return c, nil
}

// BaseURL is the identity-rooted URL every profile request is made under.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListPeople returns the people on one profile listing.
func (c *Client) ListPeople(ctx context.Context, kind models.ScheduleKind) ([]models.Person, error) {
	body, err := c.get(ctx, "list", c.baseURL+"profiles/"+string(kind))
	if err != nil {
		return nil, &customerrors.FetchError{Op: "list", Kind: string(kind), Err: err}
	}

	ids, err := parser.ParsePersonIDs(body)
	if err != nil {
		return nil, &customerrors.FetchError{Op: "list", Kind: string(kind), Err: err}
	}

	people := make([]models.Person, 0, len(ids))
	for _, id := range ids {
		people = append(people, models.Person{Kind: kind, ID: id})
	}
	metrics.PeopleDiscovered.WithLabelValues(string(kind)).Set(float64(len(people)))
	return people, nil
}

// Teachers lists the teacher profiles.
func (c *Client) Teachers(ctx context.Context) ([]models.Person, error) {
	return c.ListPeople(ctx, models.Teachers)
}

// Personnel lists the other staff profiles.
func (c *Client) Personnel(ctx context.Context) ([]models.Person, error) {
	return c.ListPeople(ctx, models.Personnel)
}

// Discover lists teachers followed by personnel.
func (c *Client) Discover(ctx context.Context) ([]models.Person, error) {
	teachers, err := c.Teachers(ctx)
	if err != nil {
		return nil, err
	}
	personnel, err := c.Personnel(ctx)
	if err != nil {
		return nil, err
	}
	return append(teachers, personnel...), nil
}

// Schedule fetches and decodes one person's weekly schedule.
func (c *Client) Schedule(ctx context.Context, p models.Person) ([]models.Event, error) {
	u := fmt.Sprintf("%sprofiles/%s/%d/schedule", c.baseURL, p.Kind, p.ID)

	body, err := c.get(ctx, "schedule", u)
	if err != nil {
		return nil, &customerrors.FetchError{Op: "schedule", Kind: string(p.Kind), ID: p.ID, Err: err}
	}

	events, err := parser.ParseSchedule(body)
	if err != nil {
		return nil, &customerrors.FetchError{Op: "schedule", Kind: string(p.Kind), ID: p.ID, Err: err}
	}
	return events, nil
}

func (c *Client) get(ctx context.Context, op, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	return do(c.client, op, req)
}

func fetchSessionID(ctx context.Context, client *http.Client, origin string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/index_json", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	body, err := do(client, "index", req)
	if err != nil {
		return "", err
	}

	var index struct {
		SessionID string `json:"SessionID"`
	}
	if err := json.Unmarshal([]byte(body), &index); err != nil {
		return "", fmt.Errorf("%w: %v", customerrors.ErrMalformedIndex, err)
	}
	if index.SessionID == "" {
		return "", customerrors.ErrMalformedIndex
	}
	return index.SessionID, nil
}

func login(ctx context.Context, client *http.Client, origin, username, password, sessionID string) (string, error) {
	form := url.Values{
		"Login":        {username},
		"Password":     {password},
		"SESSIONID":    {sessionID},
		"CompleteJson": {""},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, origin+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		observe("login", "error", start)
		return "", fmt.Errorf("failed to post login: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookie && ck.Value != "" {
			observe("login", "ok", start)
			return ck.Value, nil
		}
	}
	observe("login", "no_cookie", start)
	return "", customerrors.ErrNoSessionCookie
}

// do sends req and returns the body of a 2xx response.
func do(client *http.Client, op string, req *http.Request) (string, error) {
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		observe(op, "error", start)
		return "", fmt.Errorf("failed to fetch %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observe(op, "status", start)
		return "", fmt.Errorf("%w: %d", customerrors.ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observe(op, "error", start)
		return "", fmt.Errorf("failed to read %s response: %w", op, err)
	}
	observe(op, "ok", start)
	return string(body), nil
}

func observe(op, outcome string, start time.Time) {
	metrics.FetchRequestsTotal.WithLabelValues(op, outcome).Inc()
	metrics.FetchDurationSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// newHTTPClient never follows redirects: the portal answers an expired or
// missing session with a redirect, which must surface as a status error.
func newHTTPClient(o options, jar http.CookieJar) *http.Client {
	return &http.Client{
		Transport: o.transport,
		Jar:       jar,
		Timeout:   o.timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
