package entity

// StatusCounts breaks the collection down by outreach status.
type StatusCounts struct {
	NotContacted int `json:"not_contacted"`
	Contacted    int `json:"contacted"`
	Responded    int `json:"responded"`
}

// CompanyCount pairs a company name with how many leads reference it.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Stats summarises the lead collection.
type Stats struct {
	Total        int            `json:"total"`
	ByStatus     StatusCounts   `json:"by_status"`
	TopCompanies []CompanyCount `json:"top_companies"`
}

// TagCount pairs a tag with its usage count across all leads.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
