// Package store persists finalized reports.
package store

import (
	"context"
	"time"

	"github.com/cognicore/chatreport/pkg/chatreport/report"
)

// Store is the main interface for persisting and querying reports
type Store interface {
	Close() error

	// SaveReport inserts r, replacing any report with the same ID.
	SaveReport(ctx context.Context, r Record) error
	// GetReport returns internalerr.ErrNotFound for unknown ids.
	GetReport(ctx context.Context, id string) (Record, error)
	// ListReports returns summaries, newest first.
	ListReports(ctx context.Context, opts ListOptions) (Page, error)
	// DeleteReport returns internalerr.ErrNotFound for unknown ids.
	DeleteReport(ctx context.Context, id string) error
}

// Record is a finalized report: the selected words with their comments
// plus the chat statistics.
type Record struct {
	ID               string                  `json:"id"`
	ChatName         string                  `json:"chatName"`
	MessageCount     int                     `json:"messageCount"`
	Words            []report.Word           `json:"selectedWords"`
	Rankings         report.Rankings         `json:"rankings"`
	HourDistribution report.HourDistribution `json:"hourDistribution"`
	CreatedAt        time.Time               `json:"createdAt"`
}

// Summary is one row of a report listing.
type Summary struct {
	ID           string    `json:"id"`
	ChatName     string    `json:"chatName"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Page is one page of a report listing.
type Page struct {
	Reports  []Summary `json:"reports"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// Listing defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListOptions selects a page of reports, optionally for one chat only.
type ListOptions struct {
	Page     int
	PageSize int
	ChatName string
}

// Normalize clamps the page to >= 1 and the page size to 1..MaxPageSize.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	return o
}

// Offset is the number of rows before the page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}
