// Package mcp exposes stored activity records to MCP clients.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rohankatakam/insightify/internal/rollup"
	"github.com/rohankatakam/insightify/internal/storage"
	"github.com/sirupsen/logrus"
)

// DayInput selects one stored day.
type DayInput struct {
	Date string `json:"date" jsonschema:"day to fetch, formatted YYYY-MM-DD"`
}

// MonthInput selects one calendar month.
type MonthInput struct {
	Month string `json:"month" jsonschema:"month to fetch, formatted YYYY-MM"`
}

// DaysOutput is the result of list_days.
type DaysOutput struct {
	Month string   `json:"month"`
	Days  []string `json:"days"`
}

// Tools serves the record store over MCP tool calls.
type Tools struct {
	store  storage.Store
	logger logrus.FieldLogger
}

func NewTools(store storage.Store, logger logrus.FieldLogger) *Tools {
	return &Tools{store: store, logger: logger.WithField("component", "mcp")}
}

// NewServer registers the record tools on a fresh MCP server.
func NewServer(t *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "insightify", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_daily_record",
		Description: "Return the stored activity record for one day: commits, repositories, languages, hour histogram, estimated hours and insights.",
	}, t.GetDailyRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_monthly_report",
		Description: "Return the monthly rollup for a month. Uses the stored report when present, otherwise aggregates the stored days.",
	}, t.GetMonthlyReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_days",
		Description: "List the days of a month that have a stored activity record.",
	}, t.ListDays)

	return server
}

// Serve runs the server on stdio until the client disconnects or ctx ends.
func Serve(ctx context.Context, t *Tools, version string) error {
	t.logger.WithField("store", t.store.Describe()).Info("serving MCP on stdio")
	return NewServer(t, version).Run(ctx, &mcp.StdioTransport{})
}

func (t *Tools) GetDailyRecord(ctx context.Context, req *mcp.CallToolRequest, in DayInput) (*mcp.CallToolResult, any, error) {
	record, err := t.store.GetDaily(ctx, in.Date)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("no record stored for %s", in.Date)
	}
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(record)
}

func (t *Tools) GetMonthlyReport(ctx context.Context, req *mcp.CallToolRequest, in MonthInput) (*mcp.CallToolResult, any, error) {
	month, err := rollup.ParseMonth(in.Month)
	if err != nil {
		return nil, nil, err
	}

	record, err := t.store.GetMonthly(ctx, month.Key())
	if err == nil {
		return jsonResult(record)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, err
	}

	days, err := storage.LoadMonth(ctx, t.store, month, t.logger)
	if err != nil {
		return nil, nil, err
	}
	if len(days) == 0 {
		return nil, nil, fmt.Errorf("no records stored for %s", month.Key())
	}
	t.logger.WithFields(logrus.Fields{"month": month.Key(), "days": len(days)}).Debug("aggregating month on the fly")
	return jsonResult(rollup.AggregateMonth(month, days))
}

func (t *Tools) ListDays(ctx context.Context, req *mcp.CallToolRequest, in MonthInput) (*mcp.CallToolResult, DaysOutput, error) {
	month, err := rollup.ParseMonth(in.Month)
	if err != nil {
		return nil, DaysOutput{}, err
	}
	days, err := t.store.ListDays(ctx, month.Key())
	if err != nil {
		return nil, DaysOutput{}, err
	}
	if days == nil {
		days = []string{}
	}
	return nil, DaysOutput{Month: month.Key(), Days: days}, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(data)}}}, nil, nil
}
