package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"tempo/internal/core"
	ports "tempo/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	timesheetSheet string
	expensesSheet  string
}

// Ensure interface conformance
var (
	_ ports.TimesheetWriter = (*Client)(nil)
	_ ports.ExpenseWriter   = (*Client)(nil)
)

// New creates a Sheets client for the given spreadsheet. Sheet names are
// base names without year; the current year is prefixed automatically.
func New(ctx context.Context, spreadsheetID, timesheetBase, expensesBase string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(timesheetBase) == "" {
		timesheetBase = "Timesheet"
	}
	if strings.TrimSpace(expensesBase) == "" {
		expensesBase = "Expenses"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	currentYear := time.Now().Year()
	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		timesheetSheet: yearPrefixedName(timesheetBase, currentYear),
		expensesSheet:  yearPrefixedName(expensesBase, currentYear),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

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

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// AppendTimeEntry writes a worked-time row:
// Date, Clock In, Clock Out, Hours, Gross.
func (c *Client) AppendTimeEntry(ctx context.Context, e core.TimeEntry, rateCents int64) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	row := []any{
		e.Date.String(),
		e.ClockIn.String(),
		e.ClockOut.String(),
		float64(core.CentihoursOf(e.Minutes())) / 100.0,
		float64(core.GrossCents(e.Minutes(), rateCents)) / 100.0,
	}

	return c.appendRow(ctx, c.timesheetSheet, "E", row)
}

// AppendExpense writes an expense row: Date, Description, Kind, Amount.
func (c *Client) AppendExpense(ctx context.Context, x core.Expense) (string, error) {
	if err := x.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	row := []any{
		x.Date.String(),
		x.Description,
		string(x.Kind),
		float64(x.Amount.Cents) / 100.0,
	}

	return c.appendRow(ctx, c.expensesSheet, "D", row)
}

func (c *Client) appendRow(ctx context.Context, sheetName, lastCol string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row by getting the sheet dimensions first
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", sheetName, err)
	}

	nextRow := len(resp.Values) + 1
	dataRange := fmt.Sprintf("%s!A%d:%s%d", sheetName, nextRow, lastCol, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
