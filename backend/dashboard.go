package backend

import (
	"context"
	"net/url"
	"time"
)

const dashboardDateLayout = "2006-01-02"

// Totals returns the aggregate counts for the home dashboard, scoped to the
// given date range. Zero times leave the corresponding bound open.
func (c *Client) Totals(ctx context.Context, from, to time.Time) (*DashboardTotals, error) {
	query := url.Values{}
	if !from.IsZero() {
		query.Set("fromDate", from.Format(dashboardDateLayout))
	}
	if !to.IsZero() {
		query.Set("toDate", to.Format(dashboardDateLayout))
	}

	var totals DashboardTotals
	if err := c.get(ctx, "/dashboard/count", query, &totals); err != nil {
		return nil, err
	}
	return &totals, nil
}
