package sheets

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/titguild/guildboard/internal/modules/companies"
)

// ErrHeaderNotFound is returned when the header anchor never appears within
// the lookahead window. It is fatal to one import attempt, not to the system.
var ErrHeaderNotFound = errors.New("header row with company-name anchor not found")

// profession placeholders the sheet's dropdowns leave behind, compared
// case-insensitively.
var professionPlaceholders = map[string]bool{
	"select profession(s)": true,
	"select profession":    true,
	"unknown":              true,
}

const planetPlaceholder = "select planet"

// Report summarizes one import run.
type Report struct {
	RunID       string `json:"run_id"`
	RowsScanned int    `json:"rows_scanned"`
	RowsSkipped int    `json:"rows_skipped"`
	Companies   int    `json:"companies"`
	Listings    int    `json:"listings"`
}

// Parser converts the raw spreadsheet grid into the canonical company model.
type Parser struct {
	layout Layout
	log    zerolog.Logger
}

// NewParser creates a parser for the given column layout.
func NewParser(layout Layout, log zerolog.Logger) *Parser {
	return &Parser{
		layout: layout,
		log:    log.With().Str("component", "sheet_parser").Logger(),
	}
}

// carryForward is the parser context that persists across rows until it is
// explicitly reset (repeated header anchor) or replaced (new company row).
// Keeping it in a struct keeps the state machine's transitions testable.
type carryForward struct {
	company     string
	industry    string
	professions []string
	timezone    string
}

func (s *carryForward) reset() {
	*s = carryForward{}
}

// Parse walks the grid and accumulates companies with their listings.
//
// A company record is created lazily on that company's first listing, so
// companies without any goods never reach the output. Duplicate good names
// are NOT collapsed here; that is a validation concern surfaced before
// persisting, not a parse concern. Individual bad rows are logged and
// skipped, never aborting the import.
func (p *Parser) Parse(grid [][]string) (companies.Dataset, Report, error) {
	report := Report{RunID: uuid.New().String()}

	headerIdx := p.findHeader(grid)
	if headerIdx < 0 {
		return nil, report, ErrHeaderNotFound
	}

	var (
		state carryForward
		order []string
		byKey = make(map[string]*companies.Company)
	)

	for idx := headerIdx + 1; idx < len(grid); idx++ {
		report.RowsScanned++
		row := NewRow(grid[idx])

		if ok := p.processRow(row, &state, byKey, &order, &report); !ok {
			report.RowsSkipped++
		}
	}

	out := make(companies.Dataset, 0, len(order))
	for _, name := range order {
		out = append(out, *byKey[name])
	}
	report.Companies = len(out)

	p.log.Info().
		Str("run_id", report.RunID).
		Int("rows", report.RowsScanned).
		Int("skipped", report.RowsSkipped).
		Int("companies", report.Companies).
		Int("listings", report.Listings).
		Msg("Sheet import parsed")

	return out, report, nil
}

// findHeader scans the first rows for the anchor literal in the company
// column.
func (p *Parser) findHeader(grid [][]string) int {
	limit := p.layout.HeaderLookahead
	if limit <= 0 || limit > len(grid) {
		limit = len(grid)
	}

	for idx := 0; idx < limit; idx++ {
		if NewRow(grid[idx]).Text(p.layout.CompanyCol) == p.layout.HeaderAnchor {
			return idx
		}
	}
	return -1
}

// processRow handles one data row. Returns false when the row was skipped
// because of a row-level failure.
func (p *Parser) processRow(
	row Row,
	state *carryForward,
	byKey map[string]*companies.Company,
	order *[]string,
	report *Report,
) (ok bool) {
	// One malformed row must never abort the import.
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn().Interface("panic", r).Msg("Skipping unparseable sheet row")
			ok = false
		}
	}()

	companyCell := row.Text(p.layout.CompanyCol)

	// A repeated header anchor marks a new embedded table section.
	if companyCell == p.layout.HeaderAnchor {
		state.reset()
		return true
	}

	if companyCell != "" {
		state.company = companyCell
		state.industry = row.Text(p.layout.ProfessionCol)
		if state.industry == "" {
			state.industry = "Unknown"
		}
		state.professions = splitProfessions(state.industry)
		state.timezone = row.Text(p.layout.TimezoneCol)
		if state.timezone == "" {
			state.timezone = "UTC +00:00"
		}
	}

	// No active company yet: nothing this row could attach to.
	if state.company == "" {
		return true
	}

	// A blank-identity row with a profession cell continues a wrapped
	// multi-row profession list.
	if companyCell == "" {
		if prof := row.Text(p.layout.ProfessionCol); prof != "" {
			p.appendProfession(state, byKey, prof)
		}
	}

	goodName := row.Text(p.layout.GoodCol)
	if goodName == "" {
		return true
	}

	planet := row.Text(p.layout.PlanetCol)
	if strings.EqualFold(planet, planetPlaceholder) {
		planet = ""
	}

	company, exists := byKey[state.company]
	if !exists {
		company = &companies.Company{
			Name:        state.company,
			Industry:    state.industry,
			Professions: fallbackProfessions(state.professions, state.industry),
			Timezone:    state.timezone,
		}
		byKey[state.company] = company
		*order = append(*order, state.company)
	}

	company.Goods = append(company.Goods, companies.Good{
		ProducedGood:   goodName,
		PlanetProduced: planet,
		GuildeesPay:    float64(row.Int(p.layout.PayCol)),
		// Live prices come from the exchange, never from the sheet.
		LiveExchangePrice: 0,
		LiveAveragePrice:  0,
		GuildMax:          row.Int(p.layout.MaxCol),
		GuildMin:          row.Int(p.layout.MinCol),
		DiscountPercent:   row.Int(p.layout.DiscountCol),
		DiscountFixed:     row.Int(p.layout.FixedCol),
	})
	report.Listings++

	return true
}

// appendProfession adds a wrapped-row profession to the carry-forward state
// and to the already-materialized company record, skipping duplicates and
// dropdown placeholders.
func (p *Parser) appendProfession(state *carryForward, byKey map[string]*companies.Company, prof string) {
	if professionPlaceholders[strings.ToLower(prof)] {
		return
	}
	for _, existing := range state.professions {
		if existing == prof {
			return
		}
	}

	state.professions = append(state.professions, prof)

	if company, ok := byKey[state.company]; ok {
		company.Professions = append(company.Professions, prof)
	}
}

// splitProfessions breaks an industry/profession cell on commas, ampersands,
// newlines and the word "and", dropping placeholder tokens.
func splitProfessions(cell string) []string {
	if cell == "" || strings.EqualFold(cell, "unknown") {
		return nil
	}

	normalized := strings.NewReplacer("\n", ",", "&", ",", " and ", ",").Replace(cell)

	var out []string
	for _, part := range strings.Split(normalized, ",") {
		part = strings.TrimSpace(part)
		if part == "" || professionPlaceholders[strings.ToLower(part)] {
			continue
		}
		out = append(out, part)
	}
	return out
}

// fallbackProfessions substitutes the industry label when profession
// splitting yielded nothing usable.
func fallbackProfessions(professions []string, industry string) []string {
	if len(professions) > 0 {
		out := make([]string, len(professions))
		copy(out, professions)
		return out
	}
	if industry != "" {
		return []string{industry}
	}
	return nil
}
