package search

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() Catalog {
	return Catalog{
		Rentals: []RentalItem{
			{ID: "r1", Name: "Activa Scooter", Type: "scooter", Model: "Honda Activa", Location: "Goa, India", PricePerDay: decimal.NewFromInt(450)},
			{ID: "r2", Name: "Goa Cruiser", Type: "bike", Model: "Classic 350", Location: "Manali", PricePerDay: decimal.NewFromInt(1200)},
			{ID: "r3", Name: "City Hatchback", Type: "car", Model: "Swift", Location: "Jaipur", PricePerDay: decimal.NewFromInt(2000)},
		},
		Sightseeing: []SightseeingPackage{
			{ID: "s1", Title: "Pink City Forts", City: "Jaipur", State: "Rajasthan", PlacesCovered: []string{"Amber Fort", "Hawa Mahal"}},
			{ID: "s2", Title: "North Beaches", City: "Panaji", State: "Goa", PlacesCovered: []string{"Baga Beach", "Fort Aguada"}},
		},
		Tours: []TourPackage{
			{ID: "t1", Title: "Backwaters Houseboat", Category: "relaxation", Location: "Alleppey, Kerala"},
			{ID: "t2", Title: "Old Goa Heritage Walk", Category: "heritage", Location: "Goa, India"},
		},
	}
}

func rentalIDs(items []RentalItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func sightseeingIDs(items []SightseeingPackage) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func tourIDs(items []TourPackage) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestSearch_EmptyInputReturnsEmptySlices(t *testing.T) {
	for _, tc := range []struct{ query, location string }{
		{"", ""},
		{"   ", ""},
		{"", "\t "},
	} {
		res := Search(testCatalog(), tc.query, tc.location)

		require.NotNil(t, res.Rentals)
		require.NotNil(t, res.Sightseeing)
		require.NotNil(t, res.Tours)
		assert.Empty(t, res.Rentals)
		assert.Empty(t, res.Sightseeing)
		assert.Empty(t, res.Tours)
		assert.Zero(t, res.Total())
	}
}

func TestSearch_LocationOnly(t *testing.T) {
	res := Search(testCatalog(), "", "goa")

	assert.Equal(t, []string{"r1"}, rentalIDs(res.Rentals))
	assert.Equal(t, []string{"s2"}, sightseeingIDs(res.Sightseeing))
	assert.Equal(t, []string{"t2"}, tourIDs(res.Tours))
}

func TestSearch_QueryFallsBackToLocation(t *testing.T) {
	res := Search(testCatalog(), "goa", "")

	// r2 matches by name in the first pass, r1 by location in the fallback.
	assert.Equal(t, []string{"r2", "r1"}, rentalIDs(res.Rentals))
	assert.Equal(t, []string{"s2"}, sightseeingIDs(res.Sightseeing))
	assert.Equal(t, []string{"t2"}, tourIDs(res.Tours))
}

func TestSearch_FallbackDoesNotDuplicate(t *testing.T) {
	res := Search(testCatalog(), "goa", "")

	// t2 matches both by title and by location.
	assert.Len(t, res.Tours, 1)
}

func TestSearch_QueryAndLocationMustBothMatch(t *testing.T) {
	res := Search(testCatalog(), "fort", "jaipur")

	assert.Equal(t, []string{"s1"}, sightseeingIDs(res.Sightseeing))
	assert.Empty(t, res.Rentals)
	assert.Empty(t, res.Tours)

	// No fallback pass when a location is given.
	res = Search(testCatalog(), "goa", "manali")
	assert.Equal(t, []string{"r2"}, rentalIDs(res.Rentals))
	assert.Empty(t, res.Tours)
}

func TestSearch_MatchesNestedPlacesAndIgnoresCase(t *testing.T) {
	res := Search(testCatalog(), "  HAWA  ", "")
	assert.Equal(t, []string{"s1"}, sightseeingIDs(res.Sightseeing))

	res = Search(testCatalog(), "SCOOTER", "")
	assert.Equal(t, []string{"r1"}, rentalIDs(res.Rentals))
}

func TestSearch_QueryIsSupersetOfSameValueAsLocation(t *testing.T) {
	cat := testCatalog()
	for _, term := range []string{"goa", "jaipur", "kerala", "india", "fort", "a", "zzz"} {
		asQuery := Search(cat, term, "")
		asLocation := Search(cat, "", term)

		assert.Subset(t, rentalIDs(asQuery.Rentals), rentalIDs(asLocation.Rentals), term)
		assert.Subset(t, sightseeingIDs(asQuery.Sightseeing), sightseeingIDs(asLocation.Sightseeing), term)
		assert.Subset(t, tourIDs(asQuery.Tours), tourIDs(asLocation.Tours), term)
	}
}

func TestSearch_DoesNotMutateCatalog(t *testing.T) {
	cat := testCatalog()
	before := testCatalog()

	Search(cat, "goa", "")
	Search(cat, "", "jaipur")

	assert.Equal(t, before, cat)
}

func TestSearch_NilCatalog(t *testing.T) {
	res := Search(Catalog{}, "goa", "")

	assert.NotNil(t, res.Rentals)
	assert.Zero(t, res.Total())
}
