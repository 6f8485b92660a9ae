package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Mirror row layout: Date, Type, Description, Amount, Category, Account, ID.
const mirrorColumns = "A:G"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.TransactionAppender = (*Client)(nil)
	_ ports.TransactionRemover  = (*Client)(nil)
)

// New creates a Sheets mirror client for the given spreadsheet and sheet.
// Credentials come from the environment, see newSheetsService.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!%s", c.sheetName, mirrorColumns)
	vr := &gsheet.ValueRange{Values: [][]any{mirrorRow(tx)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Mirrored transaction to sheet",
		"transaction_id", tx.ID,
		"sheet", c.sheetName,
		"range", ref)

	return ref, nil
}

// Remove locates the mirrored row by transaction ID and deletes it.
func (c *Client) Remove(ctx context.Context, msg amqp.TransactionDeleteMessage) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(msg.ID) == "" {
		return errors.New("missing transaction ID in delete message")
	}

	// IDs live in column G
	rng := fmt.Sprintf("%s!G:G", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	rowIndex := -1
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == msg.ID {
			rowIndex = i
			break
		}
	}
	if rowIndex < 0 {
		// Already absent, treat as done so the message is not requeued forever
		slog.WarnContext(ctx, "Mirrored row not found, skipping removal",
			"transaction_id", msg.ID,
			"sheet", c.sheetName)
		return nil
	}

	sheetID, err := c.sheetGridID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in sheet %s: %w", rowIndex+1, c.sheetName, err)
	}

	slog.InfoContext(ctx, "Removed mirrored transaction row",
		"transaction_id", msg.ID,
		"sheet", c.sheetName,
		"row", rowIndex+1)

	return nil
}

func (c *Client) sheetGridID(ctx context.Context) (int64, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.sheetId", "sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheetName {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}

func mirrorRow(tx core.Transaction) []any {
	return []any{
		tx.Date.String(),
		string(tx.Type),
		tx.Description,
		tx.Amount.String(),
		tx.Category,
		tx.Account,
		tx.ID,
	}
}
