package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client appends rows to Google Sheets tabs
type Client struct {
	service *sheets.Service
}

// Config selects the service account credentials
type Config struct {
	CredentialsPath string
	CredentialsJSON []byte
}

// NewClient builds a Sheets client from a credentials file or inline JSON
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption

	switch {
	case cfg.CredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	default:
		return nil, fmt.Errorf("sheets: credentials path or JSON is required")
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &Client{service: service}, nil
}

// AppendRows appends rows after the last filled row of tab
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, tab string, rows [][]any) error {
	if c.service == nil {
		return fmt.Errorf("sheets: service is nil")
	}
	if spreadsheetID == "" {
		return fmt.Errorf("sheets: spreadsheet id is required")
	}

	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, tab+"!A1", &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append to %s: %w", tab, err)
	}
	return nil
}
