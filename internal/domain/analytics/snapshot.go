package analytics

// Row types for the dashboard snapshot. JSON keys match what the analytics
// dashboard page reads, so they stay snake_case where the page does.

// DayCount is one day of page views.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// DateCount is one requested forecast date with its search count.
type DateCount struct {
	TargetDate string `json:"target_date"`
	Count      int    `json:"count"`
}

// LinkCount is one outbound link with its click count.
type LinkCount struct {
	LinkURL string `json:"link_url"`
	Count   int    `json:"count"`
}

// CodeCount is one error code with its occurrence count.
type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// RecentError is one recent error event; TS is truncated to seconds.
type RecentError struct {
	TS      string `json:"ts"`
	Message string `json:"message"`
}

// CityCount is one user-entered city with its search count.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// CountryCount is one resolved country with its search count.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// Retention holds the distinct-visitor return metrics.
type Retention struct {
	TotalUsers      int     `json:"totalUsers"`
	ReturningUsers  int     `json:"returningUsers"`
	ReturningRate   float64 `json:"returningRate"`
	D1RetentionRate float64 `json:"d1RetentionRate"`
}

// LinkClicks holds click totals and the top clicked links.
type LinkClicks struct {
	Total    int         `json:"total"`
	TopLinks []LinkCount `json:"topLinks"`
}

// Errors holds error totals, the per-code breakdown and the recent tail.
type Errors struct {
	Total  int           `json:"total"`
	ByCode []CodeCount   `json:"byCode"`
	Recent []RecentError `json:"recent"`
}

// PageLoad holds page load timing statistics in milliseconds.
type PageLoad struct {
	Samples int     `json:"samples"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	P95Ms   float64 `json:"p95Ms"`
}

// SearchGeo holds the geography breakdowns of weather searches.
type SearchGeo struct {
	EnteredCities []CityCount    `json:"enteredCities"`
	Countries     []CountryCount `json:"countries"`
}

// Snapshot is the full dashboard payload, a pure function of the current
// event log contents.
type Snapshot struct {
	ViewsByDay   []DayCount  `json:"viewsByDay"`
	DatesClicked []DateCount `json:"datesClicked"`
	Retention    Retention   `json:"retention"`
	LinkClicks   LinkClicks  `json:"linkClicks"`
	Errors       Errors      `json:"errors"`
	PageLoad     PageLoad    `json:"pageLoad"`
	SearchGeo    SearchGeo   `json:"searchGeo"`
}
