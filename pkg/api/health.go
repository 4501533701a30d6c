package api

import (
	"context"
	"net/http"

	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/rs/zerolog/log"
)

// HealthCheck queries the service root. It never fails: any error is folded
// into an unhealthy result.
func (c *Client) HealthCheck(ctx context.Context) conversation.Health {
	ret := conversation.Health{}
	if err := c.do(ctx, http.MethodGet, c.endpoint("/health", false), nil, nil, &ret); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		return conversation.Health{Status: conversation.HealthStatusUnhealthy, Error: err.Error()}
	}
	return ret
}
