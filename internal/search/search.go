// Package search implements the universal search over rentals, sightseeing
// packages and tours.
//
// Matching is case-insensitive substring containment. When only a query is
// given, a second pass also treats the query as a location, and its hits are
// appended after the first-pass hits without duplicates.
package search

import "strings"

// Search filters the catalog. Both inputs empty yields three empty slices.
func Search(catalog Catalog, query, location string) Results {
	q := normalize(query)
	loc := normalize(location)

	results := emptyResults()
	if q == "" && loc == "" {
		return results
	}

	fallback := q != "" && loc == ""

	results.Rentals = filter(catalog.Rentals, q, loc, fallback,
		func(r RentalItem) string { return r.ID },
		rentalText, rentalLocation)
	results.Sightseeing = filter(catalog.Sightseeing, q, loc, fallback,
		func(s SightseeingPackage) string { return s.ID },
		sightseeingText, sightseeingLocation)
	results.Tours = filter(catalog.Tours, q, loc, fallback,
		func(t TourPackage) string { return t.ID },
		tourText, tourLocation)

	return results
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// contains reports whether any field holds needle, ignoring case.
func contains(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func filter[T any](
	items []T,
	q, loc string,
	fallback bool,
	id func(T) string,
	textMatch, locMatch func(T, string) bool,
) []T {
	out := make([]T, 0)
	seen := make(map[string]struct{})

	for _, item := range items {
		if (loc == "" || locMatch(item, loc)) && (q == "" || textMatch(item, q)) {
			out = append(out, item)
			seen[id(item)] = struct{}{}
		}
	}

	if !fallback {
		return out
	}

	for _, item := range items {
		if _, dup := seen[id(item)]; dup {
			continue
		}
		if locMatch(item, q) {
			out = append(out, item)
			seen[id(item)] = struct{}{}
		}
	}
	return out
}

func rentalText(r RentalItem, q string) bool {
	return contains(q, r.Name, r.Type, r.Model)
}

func rentalLocation(r RentalItem, loc string) bool {
	return contains(loc, r.Location)
}

func sightseeingText(s SightseeingPackage, q string) bool {
	return contains(q, s.Title) || contains(q, s.PlacesCovered...)
}

func sightseeingLocation(s SightseeingPackage, loc string) bool {
	return contains(loc, s.City, s.State)
}

func tourText(t TourPackage, q string) bool {
	return contains(q, t.Title, t.Category)
}

func tourLocation(t TourPackage, loc string) bool {
	return contains(loc, t.Location)
}
