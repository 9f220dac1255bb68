// Package sheets reconstructs the company/goods domain model from the
// guild's shared spreadsheet, a loosely formatted human-edited table.
package sheets

// Layout declares the positional column contract with the sheet. The sheet
// has no reliable named header row beyond the anchor literal, so columns are
// addressed by index. Keeping the offsets in one struct (instead of
// scattered literals) lets a sheet reshuffle be absorbed by configuration.
type Layout struct {
	CompanyCol    int // Company name, also where the header anchor lives
	ProfessionCol int // Industry / profession list, wraps across rows
	TimezoneCol   int // "UTC +01:00" style label
	GoodCol       int // Produced good name; blank means "no listing this row"
	PlanetCol     int // Planet produced ("Select Planet" placeholder allowed)
	PayCol        int // Guildees pay as last written to the sheet
	MaxCol        int // Guild max bound (0 = unbounded)
	MinCol        int // Guild min bound (0 = unbounded)
	DiscountCol   int // Guild percent discount
	FixedCol      int // Guild fixed discount (advisory)

	// HeaderAnchor is the literal that marks a header row in the company
	// column. Finding it starts parsing; meeting it again mid-table resets
	// all carry-forward state.
	HeaderAnchor string

	// HeaderLookahead bounds the scan for the first anchor row.
	HeaderLookahead int
}

// DefaultLayout matches the guild sheet as currently laid out.
func DefaultLayout() Layout {
	return Layout{
		CompanyCol:      0,
		ProfessionCol:   1,
		TimezoneCol:     2,
		GoodCol:         12,
		PlanetCol:       13,
		PayCol:          14,
		MaxCol:          17,
		MinCol:          18,
		DiscountCol:     19,
		FixedCol:        20,
		HeaderAnchor:    "Company Name",
		HeaderLookahead: 50,
	}
}
