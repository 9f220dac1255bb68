package sheets

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

var (
	sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	gidPattern     = regexp.MustCompile(`gid=(\d+)`)
)

// ExtractSheetID pulls the document ID out of a Google Sheets share URL.
// Returns "" when the URL is not a sheets URL.
func ExtractSheetID(url string) string {
	m := sheetIDPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractGID pulls the tab ID out of a Google Sheets URL, defaulting to "0".
func ExtractGID(url string) string {
	m := gidPattern.FindStringSubmatch(url)
	if m == nil {
		return "0"
	}
	return m[1]
}

// CSVExportURL converts a share URL into the CSV export URL for its tab.
func CSVExportURL(sheetURL string) (string, error) {
	id := ExtractSheetID(sheetURL)
	if id == "" {
		return "", fmt.Errorf("not a google sheets URL: %s", sheetURL)
	}
	gid := ExtractGID(sheetURL)
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", id, gid), nil
}

// Client fetches the published guild sheet as a raw cell grid. The sheet
// must be link-visible; no credentials are used.
type Client struct {
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a sheet fetch client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("client", "google_sheets").Logger(),
	}
}

// FetchGrid downloads the sheet tab behind the given share URL and returns
// it as rows of cells. Rows keep their ragged widths; the parser's row
// accessor handles short rows.
func (c *Client) FetchGrid(sheetURL string) ([][]string, error) {
	exportURL, err := CSVExportURL(sheetURL)
	if err != nil {
		return nil, err
	}

	c.log.Debug().Str("url", exportURL).Msg("Fetching sheet")

	resp, err := c.httpClient.Get(exportURL)
	if err != nil {
		return nil, fmt.Errorf("sheet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet export returned status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1 // The sheet's rows are ragged
	grid, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheet CSV: %w", err)
	}

	c.log.Debug().Int("rows", len(grid)).Msg("Sheet fetched")
	return grid, nil
}
