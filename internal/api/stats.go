package api

import (
	"context"

	"github.com/credotech/inventory-console/internal/domain"
)

// InitialStats fetches the daily baseline snapshot stored server-side
func (c *Client) InitialStats(ctx context.Context) (domain.DashboardStats, error) {
	var stats domain.DashboardStats
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&stats).
		Get("/stats/initial")
	if err := c.check("get initial stats", resp, err); err != nil {
		return domain.DashboardStats{}, err
	}
	return stats, nil
}

// StoreInitialStats stores a baseline snapshot server-side
func (c *Client) StoreInitialStats(ctx context.Context, stats domain.DashboardStats) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(stats).
		Post("/stats/initial")
	return c.check("store initial stats", resp, err)
}

// LastResetDate fetches the calendar date of the last baseline reset
func (c *Client) LastResetDate(ctx context.Context) (string, error) {
	var payload struct {
		LastResetDate string `json:"lastResetDate"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("/stats/last-reset-date")
	if err := c.check("get last reset date", resp, err); err != nil {
		return "", err
	}
	return payload.LastResetDate, nil
}

// ResetDailyStats resets the server-side baseline to today's opening values
func (c *Client) ResetDailyStats(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post("/stats/reset-daily")
	return c.check("reset daily stats", resp, err)
}
