// Package client calls a remote triage engine over gRPC.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Songmu/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/mirador-triage/internal/api"
	"github.com/miradorstack/mirador-triage/internal/grpc/triagev1"
	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/utils"
)

// Config controls the per-call timeout and retry policy.
type Config struct {
	Address string
	Timeout time.Duration
	// Retries is the number of extra attempts after a transient failure.
	Retries uint
	Backoff time.Duration
}

// Client is a remote triage engine.
type Client struct {
	conn   *grpc.ClientConn
	rpc    triagev1.TriageEngineClient
	cfg    Config
	logger *slog.Logger
}

// New connects to cfg.Address. Extra dial options are appended after the defaults.
func New(cfg Config, logger *slog.Logger, opts ...grpc.DialOption) (*Client, error) {
	if cfg.Address == "" {
		return nil, errors.New("remote address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(cfg.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Address, err)
	}
	return &Client{conn: conn, rpc: triagev1.NewTriageEngineClient(conn), cfg: cfg, logger: logger}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Rank scores req on the remote engine.
func (c *Client) Rank(ctx context.Context, req models.FidelityRequest) (models.AlertFidelityRanking, error) {
	var out *triagev1.AlertFidelityRanking
	err := c.call(ctx, "RankAlert", func(callCtx context.Context) error {
		var err error
		out, err = c.rpc.RankAlert(callCtx, api.ToWireRankAlertRequest(req))
		return err
	})
	if err != nil {
		return models.AlertFidelityRanking{}, err
	}
	return api.FromWireRanking(out)
}

// Playbook generates a playbook on the remote engine.
func (c *Client) Playbook(ctx context.Context, req models.PlaybookRequest) (models.Playbook, error) {
	var out *triagev1.Playbook
	err := c.call(ctx, "GeneratePlaybook", func(callCtx context.Context) error {
		var err error
		out, err = c.rpc.GeneratePlaybook(callCtx, api.ToWirePlaybookRequest(req))
		return err
	})
	if err != nil {
		return models.Playbook{}, err
	}
	return api.FromWirePlaybook(out)
}

// Health reports the remote engine status.
func (c *Client) Health(ctx context.Context) (*triagev1.HealthCheckResponse, error) {
	var out *triagev1.HealthCheckResponse
	err := c.call(ctx, "HealthCheck", func(callCtx context.Context) error {
		var err error
		out, err = c.rpc.HealthCheck(callCtx, &triagev1.HealthCheckRequest{})
		return err
	})
	return out, err
}

// call runs fn with a per-attempt timeout, retrying transient failures while the
// caller's context is live.
func (c *Client) call(ctx context.Context, method string, fn func(context.Context) error) error {
	var permanent error
	attempt := 0
	err := retry.Retry(c.cfg.Retries+1, c.cfg.Backoff, func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			permanent = err
			return nil
		}
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !transient(err) {
			permanent = err
			return nil
		}
		c.logger.Warn("transient triage call failure",
			slog.String("method", method),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
		return err
	})
	if permanent != nil {
		return translate(permanent)
	}
	if err != nil {
		return translate(err)
	}
	return nil
}

func transient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}

// translate maps remote validation failures back onto ValidationError.
func translate(err error) error {
	if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
		return utils.NewValidationError(st.Message())
	}
	return err
}
