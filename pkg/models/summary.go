package models

// HourCount is the number of visits that fell within one hour of the day.
type HourCount struct {
	Hour  int `db:"hour" json:"hour"`
	Count int `db:"count" json:"count"`
}

// DomainCount is the number of visits to one domain.
type DomainCount struct {
	Domain string `db:"domain" json:"domain"`
	Visits int    `db:"visits" json:"visits"`
}

// CategoryCount is the number of visits assigned to one category.
type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Visits   int    `db:"visits" json:"visits"`
}
