package services

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/titguild/guildboard/internal/modules/export"
	"github.com/titguild/guildboard/internal/modules/pricing"
	"github.com/titguild/guildboard/internal/modules/sheets"
)

// GridFetcher retrieves the raw sheet grid. Satisfied by sheets.Client.
type GridFetcher interface {
	FetchGrid(sheetURL string) ([][]string, error)
}

// QuoteFetcher retrieves the live quote table. Satisfied by exchange.Client.
type QuoteFetcher interface {
	FetchQuotes() (pricing.QuoteTable, error)
}

// RefreshService drives the periodic import → reconcile → export pipeline.
// All I/O lives in the injected collaborators; the core transformations it
// calls are pure, so every refresh is idempotent and safe to re-run on any
// cadence.
type RefreshService struct {
	datasets  *DatasetService
	grids     GridFetcher
	parser    *sheets.Parser
	quotes    QuoteFetcher
	exporter  *export.Exporter
	publisher *export.Publisher
	sheetURL  string
	log       zerolog.Logger
}

// NewRefreshService wires the refresh pipeline.
func NewRefreshService(
	datasets *DatasetService,
	grids GridFetcher,
	parser *sheets.Parser,
	quotes QuoteFetcher,
	exporter *export.Exporter,
	publisher *export.Publisher,
	sheetURL string,
	log zerolog.Logger,
) *RefreshService {
	return &RefreshService{
		datasets:  datasets,
		grids:     grids,
		parser:    parser,
		quotes:    quotes,
		exporter:  exporter,
		publisher: publisher,
		sheetURL:  sheetURL,
		log:       log.With().Str("service", "refresh").Logger(),
	}
}

// RefreshFromSheet re-imports the guild sheet, adopts the parsed dataset
// and re-exports. A missing sheet URL disables the import (not an error:
// the board keeps serving the persisted dataset).
func (s *RefreshService) RefreshFromSheet() (*sheets.Report, error) {
	if s.sheetURL == "" {
		s.log.Debug().Msg("No sheet URL configured, skipping import")
		return nil, nil
	}

	grid, err := s.grids.FetchGrid(s.sheetURL)
	if err != nil {
		return nil, fmt.Errorf("sheet fetch failed: %w", err)
	}

	ds, report, err := s.parser.Parse(grid)
	if err != nil {
		return &report, fmt.Errorf("sheet import failed: %w", err)
	}

	// Detect external writes before replacing, so a save from another
	// session is observed rather than blindly overwritten mid-import.
	if changed, err := s.datasets.Sync(); err != nil {
		return &report, err
	} else if changed {
		s.log.Warn().Msg("Dataset had changed externally before import; adopting import result")
	}

	if err := s.datasets.Replace(ds); err != nil {
		return &report, err
	}

	if err := s.RefreshPrices(); err != nil {
		// The import itself held; stale prices are re-fetched next cycle.
		s.log.Warn().Err(err).Msg("Price refresh after import failed")
	}

	return &report, nil
}

// RefreshPrices merges the live quote table into the current dataset,
// reprices every listing, persists and re-exports. Goods without a quote
// keep their stored prices.
func (s *RefreshService) RefreshPrices() error {
	quotes, err := s.quotes.FetchQuotes()
	if err != nil {
		return fmt.Errorf("quote fetch failed: %w", err)
	}

	if changed, err := s.datasets.Sync(); err != nil {
		return err
	} else if changed {
		s.log.Info().Msg("Adopted externally changed dataset before repricing")
	}

	ds := pricing.ReconcileDataset(s.datasets.Current(), quotes)
	if err := s.datasets.Replace(ds); err != nil {
		return err
	}

	if _, err := s.exporter.Write(ds, time.Now()); err != nil {
		return err
	}

	return nil
}

// Export writes the JSON documents for the current dataset without touching
// quotes or the sheet.
func (s *RefreshService) Export() ([]string, error) {
	return s.exporter.Write(s.datasets.Current(), time.Now())
}

// Publish pushes the current export files to GitHub. force bypasses the
// minimum push interval.
func (s *RefreshService) Publish(force bool) (bool, error) {
	paths, err := s.Export()
	if err != nil {
		return false, err
	}
	return s.publisher.Push(paths, force)
}
