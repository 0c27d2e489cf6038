package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/colonyops/taskdesk/internal/api"
	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/daterange"
)

var _ activity.Source = (*Client)(nil)

// Activity asks the server to reconstruct the feed for the caller.
func (c *Client) Activity(ctx context.Context, filter daterange.Filter, custom daterange.Custom) ([]activity.Entry, error) {
	q := url.Values{}
	q.Set("filter", string(filter))
	if custom.From != nil {
		q.Set("from", api.FormatTime(*custom.From))
	}
	if custom.To != nil {
		q.Set("to", api.FormatTime(*custom.To))
	}

	var out api.ActivityResponse
	if err := c.do(ctx, http.MethodGet, "/api/activity", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}
