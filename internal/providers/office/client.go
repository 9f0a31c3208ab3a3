package office

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"employee-directory/internal/domain"
	"employee-directory/internal/httpx"
	"employee-directory/internal/providers"
)

const acceptJSON = "application/json"

// Client fetches the employee list published by one office.
type Client struct {
	Location string
	URL      string
	HTTP     *http.Client
	Retry    httpx.RetryConfig

	logger *zap.Logger
}

var _ providers.EmployeeProvider = (*Client)(nil)

func New(location, rawURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tr := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		Location: location,
		URL:      rawURL,
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		Retry:  httpx.DefaultRetryConfig(),
		logger: logger.With(zap.String("location", location)),
	}
}

func (c *Client) Name() string { return c.Location }

// wire shapes; pointers tell a missing key from an empty one
type employeesEnvelope struct {
	Employees *[]wireEmployee `json:"employees"`
}

type wireEmployee struct {
	FirstName *string          `json:"fname"`
	LastName  *string          `json:"lname"`
	Position  *domain.Position `json:"position"`
	Contact   *wireContact     `json:"contact_details"`
	Projects  []string         `json:"projects"`
}

type wireContact struct {
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// ListEmployees performs one GET against the office endpoint.
// Every failure is a *providers.FetchError.
func (c *Client) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	u, err := parseURL(c.URL)
	if err != nil {
		return nil, c.fail(providers.KindInvalidURL, 0, err)
	}

	start := time.Now()
	resp, body, err := httpx.Get(ctx, c.HTTP, u.String(), acceptJSON, c.Retry)
	if err != nil {
		var herr *httpx.HTTPError
		if errors.As(err, &herr) {
			return nil, c.fail(providers.KindHTTPStatus, herr.StatusCode, err)
		}
		return nil, c.fail(providers.KindTransport, 0, err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, c.fail(providers.KindEmptyBody, resp.StatusCode, nil)
	}

	employees, err := decodeEmployees(body, c.Location)
	if err != nil {
		return nil, c.fail(providers.KindDecode, resp.StatusCode, err)
	}

	c.logger.Debug("fetched employees",
		zap.Int("count", len(employees)),
		zap.Duration("took", time.Since(start)),
	)
	return employees, nil
}

func (c *Client) fail(kind providers.Kind, status int, err error) error {
	fe := &providers.FetchError{
		Kind:       kind,
		Provider:   c.Location,
		URL:        c.URL,
		StatusCode: status,
		Err:        err,
	}
	c.logger.Warn("fetch employees failed", zap.Stringer("kind", kind), zap.Error(err))
	return fe
}

func parseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

func decodeEmployees(body []byte, location string) ([]domain.Employee, error) {
	var env employeesEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("json parse error: %w body=%s", err, httpx.Snippet(body, 300))
	}
	if env.Employees == nil {
		return nil, fmt.Errorf("missing \"employees\" key body=%s", httpx.Snippet(body, 300))
	}

	out := make([]domain.Employee, 0, len(*env.Employees))
	for i, w := range *env.Employees {
		e, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("employee %d: %w", i, err)
		}
		e.Location = location
		out = append(out, e)
	}
	return out, nil
}

func (w wireEmployee) toDomain() (domain.Employee, error) {
	switch {
	case w.FirstName == nil:
		return domain.Employee{}, errors.New("missing fname")
	case w.LastName == nil:
		return domain.Employee{}, errors.New("missing lname")
	case w.Position == nil:
		return domain.Employee{}, errors.New("missing position")
	case w.Contact == nil:
		return domain.Employee{}, errors.New("missing contact_details")
	case w.Contact.Email == nil:
		return domain.Employee{}, errors.New("missing contact_details.email")
	}

	e := domain.Employee{
		FirstName: *w.FirstName,
		LastName:  *w.LastName,
		Position:  *w.Position,
		Contact:   domain.ContactDetails{Email: *w.Contact.Email},
		Projects:  w.Projects,
	}
	if w.Contact.Phone != nil {
		e.Contact.Phone = *w.Contact.Phone
	}
	if e.Projects == nil {
		e.Projects = []string{}
	}
	return e, nil
}
