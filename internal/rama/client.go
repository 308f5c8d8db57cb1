// Package rama provides an HTTP client for the Rama Judicial public
// case-consultation API (consulta de procesos).
package rama

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public v2 consultation endpoint.
const DefaultBaseURL = "https://consultaprocesos.ramajudicial.gov.co:448/api/v2"

// The API rejects requests without a browser-looking User-Agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ErrUnavailable indicates the source returned nothing usable: transport
// failure, non-2xx status, or an empty/unintelligible payload.
var ErrUnavailable = errors.New("rama: source unavailable")

// Client talks to the Rama Judicial API. Requests share a bounded timeout;
// there is no retry policy, a single failure is terminal for that call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client against baseURL (DefaultBaseURL when empty) with
// the given per-request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SearchOptions narrows name / registration-number searches.
type SearchOptions struct {
	// PersonType is "jur" (legal entity) or "nat" (natural person).
	PersonType string
	OnlyActive bool
	// CourtCode filters by judicial office codification, e.g. "05001" for Medellín.
	CourtCode string
	Page      int
}

// SearchByName queries processes by company or person name.
func (c *Client) SearchByName(ctx context.Context, name string, opts SearchOptions) ([]ProcessSummary, error) {
	personType := opts.PersonType
	if personType == "" {
		personType = "jur"
	}
	params := url.Values{
		"nombre":      {name},
		"tipoPersona": {personType},
		"SoloActivos": {strconv.FormatBool(opts.OnlyActive)},
		"pagina":      {strconv.Itoa(max(opts.Page, 1))},
	}
	if opts.CourtCode != "" {
		params.Set("codificacionDespacho", opts.CourtCode)
	}

	body, err := c.get(ctx, "/Procesos/Consulta/NombreRazonSocial", params)
	if err != nil {
		return nil, err
	}
	return decodeSearch(body)
}

// SearchByRegistrationNumber queries processes by their full registration
// number (número de radicación).
func (c *Client) SearchByRegistrationNumber(ctx context.Context, numero string, opts SearchOptions) ([]ProcessSummary, error) {
	params := url.Values{
		"numero":      {numero},
		"SoloActivos": {strconv.FormatBool(opts.OnlyActive)},
		"pagina":      {strconv.Itoa(max(opts.Page, 1))},
	}

	body, err := c.get(ctx, "/Procesos/Consulta/NumeroRadicacion", params)
	if err != nil {
		return nil, err
	}
	return decodeSearch(body)
}

// FetchDetail retrieves the detail record for one process.
func (c *Client) FetchDetail(ctx context.Context, externalID string) (*Detail, error) {
	body, err := c.get(ctx, "/Proceso/Detalle/"+url.PathEscape(externalID), nil)
	if err != nil {
		return nil, err
	}
	return DecodeDetail(body)
}

// FetchActions retrieves the action list for one process. The payload shape
// varies upstream; the returned ActionsPayload carries the recognized shape.
func (c *Client) FetchActions(ctx context.Context, externalID string) (ActionsPayload, error) {
	body, err := c.get(ctx, "/Proceso/Actuaciones/"+url.PathEscape(externalID), nil)
	if err != nil {
		return ActionsPayload{Shape: ShapeUnrecognized}, err
	}
	return DecodeActions(body), nil
}

// FetchActionDocuments lists document metadata attached to one action.
// Binary download is deliberately not implemented.
func (c *Client) FetchActionDocuments(ctx context.Context, actionID string) ([]Document, error) {
	body, err := c.get(ctx, "/Proceso/DocumentosActuacion/"+url.PathEscape(actionID), nil)
	if err != nil {
		return nil, err
	}
	return decodeDocuments(body)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("rama request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	c.logger.Debug("rama request",
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}
	return body, nil
}
