// Package pendenciasapi is the REST client the board uses to reach the
// pendências service.
package pendenciasapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	appErrors "github.com/bebel/pendencias/errors"
	"github.com/bebel/pendencias/internal/adapter/dto/common"
	pendenciaDTO "github.com/bebel/pendencias/internal/adapter/dto/pendencia"
	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/filter"
	"github.com/bebel/pendencias/internal/usecase/board"
)

// Client talks to the pendências HTTP API
type Client struct {
	baseURL    string
	httpClient *resty.Client
	logger     *zap.Logger
}

var _ board.Gateway = (*Client)(nil)

// envelope is the success shape shared by every endpoint
type envelope struct {
	OK                 *bool           `json:"ok"`
	Data               json.RawMessage `json:"data"`
	ProfissionalPadrao json.RawMessage `json:"profissional_padrao"`
	Error              string          `json:"error"`
}

// NewClient creates a client for baseURL, e.g. http://localhost:8080/api
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "Bebel-Board/1.0").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &Client{
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}
}

// List fetches the pendências matching the structured criteria of spec
func (c *Client) List(ctx context.Context, spec filter.Spec) ([]*entities.PendenciaWithDetails, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(spec.Structured().Query()).
		Get("/pendencias")
	env, err := c.decode(resp, err)
	if err != nil {
		return nil, err
	}

	var out []*entities.PendenciaWithDetails
	if err := json.Unmarshal(env.Data, &out); err != nil || out == nil {
		return nil, fmt.Errorf("%w: data is not a list", board.ErrMalformed)
	}
	return out, nil
}

// Update sends a partial update and returns the stored record
func (c *Client) Update(ctx context.Context, id int64, patch entities.PendenciaPatch) (*entities.Pendencia, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(pendenciaDTO.NewUpdatePendenciaRequest(id, patch)).
		Post("/pendencias")
	return c.record(resp, err)
}

// Create inserts a pendência and returns it with its assigned id
func (c *Client) Create(ctx context.Context, draft entities.PendenciaDraft) (*entities.Pendencia, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(pendenciaDTO.NewCreatePendenciaRequest(draft)).
		Post("/pendencias/new")
	return c.record(resp, err)
}

// Profissionais lists active professionals and the default assignee, if any
func (c *Client) Profissionais(ctx context.Context) ([]entities.Profissional, *entities.Profissional, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get("/profissionais")
	env, err := c.decode(resp, err)
	if err != nil {
		return nil, nil, err
	}

	var profs []entities.Profissional
	if err := json.Unmarshal(env.Data, &profs); err != nil {
		return nil, nil, fmt.Errorf("%w: data is not a list", board.ErrMalformed)
	}
	var padrao *entities.Profissional
	if len(env.ProfissionalPadrao) > 0 {
		if err := json.Unmarshal(env.ProfissionalPadrao, &padrao); err != nil {
			return nil, nil, fmt.Errorf("%w: profissional_padrao", board.ErrMalformed)
		}
	}
	return profs, padrao, nil
}

func (c *Client) record(resp *resty.Response, err error) (*entities.Pendencia, error) {
	env, err := c.decode(resp, err)
	if err != nil {
		return nil, err
	}
	var p entities.Pendencia
	if err := json.Unmarshal(env.Data, &p); err != nil || p.ID == 0 {
		return nil, fmt.Errorf("%w: data is not a pendencia", board.ErrMalformed)
	}
	return &p, nil
}

// decode classifies transport and status failures and unwraps the envelope
func (c *Client) decode(resp *resty.Response, err error) (*envelope, error) {
	if err != nil {
		c.logger.Warn("pendenciasapi.request.failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", board.ErrUnavailable, err)
	}

	req := resp.Request
	if resp.IsError() {
		c.logger.Warn("pendenciasapi.response.error",
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, statusError(resp)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, fmt.Errorf("%w: %w", board.ErrMalformed, err)
	}
	if env.OK == nil || !*env.OK {
		return nil, fmt.Errorf("%w: ok=false: %s", board.ErrMalformed, env.Error)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: missing data", board.ErrMalformed)
	}
	return &env, nil
}

func statusError(resp *resty.Response) error {
	var body common.ErrorResponse
	msg := http.StatusText(resp.StatusCode())
	if json.Unmarshal(resp.Body(), &body) == nil && body.Error != "" {
		msg = body.Error
	}
	upstream := appErrors.ErrUpstream(resp.StatusCode(), msg).WithHint(body.Hint)

	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", board.ErrNotFound, upstream)
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", board.ErrInvalid, upstream)
	default:
		return fmt.Errorf("%w: %w", board.ErrUnavailable, upstream)
	}
}
