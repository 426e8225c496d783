package domain

// MSPRate is one row of the government minimum support price table.
type MSPRate struct {
	Crop   string `json:"crop" yaml:"crop"`
	Price  string `json:"msp" yaml:"price"`
	Season string `json:"season" yaml:"season"`
}

// Article is a news item shown on the portal feed.
type Article struct {
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary" yaml:"summary"`
	Source  string `json:"source" yaml:"source"`
	Date    string `json:"date" yaml:"date"`
}
