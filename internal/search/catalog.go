package search

import "github.com/shopspring/decimal"

type RentalItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Model       string          `json:"model"`
	Location    string          `json:"location"`
	PricePerDay decimal.Decimal `json:"pricePerDay"`
	Seats       int             `json:"seats"`
}

type SightseeingPackage struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	PlacesCovered []string        `json:"placesCovered"`
	Price         decimal.Decimal `json:"price"`
	DurationHours int             `json:"durationHours"`
}

type TourPackage struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Category     string          `json:"category"`
	Location     string          `json:"location"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"durationDays"`
}

// Catalog is the set of collections a search runs over. Search never
// mutates it, so one snapshot can be shared by concurrent callers.
type Catalog struct {
	Rentals     []RentalItem         `json:"rentals"`
	Sightseeing []SightseeingPackage `json:"sightseeing"`
	Tours       []TourPackage        `json:"tours"`
}

type Results struct {
	Rentals     []RentalItem         `json:"rentals"`
	Sightseeing []SightseeingPackage `json:"sightseeing"`
	Tours       []TourPackage        `json:"tours"`
}

func emptyResults() Results {
	return Results{
		Rentals:     []RentalItem{},
		Sightseeing: []SightseeingPackage{},
		Tours:       []TourPackage{},
	}
}

// Total is the number of matches across all kinds.
func (r Results) Total() int {
	return len(r.Rentals) + len(r.Sightseeing) + len(r.Tours)
}
