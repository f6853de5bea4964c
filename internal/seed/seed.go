// internal/seed/seed.go
package seed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Marga-Ghale/backpackers-backend/internal/logger"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
	"github.com/Marga-Ghale/backpackers-backend/internal/search"
	"github.com/Marga-Ghale/backpackers-backend/internal/types"
)

var log = logger.Component("seed")

// SeedData creates development users, groups and listings and reports
// whether it did. It does nothing when users already exist.
func SeedData(ctx context.Context, repos *repository.Repositories) bool {
	users, err := repos.UserRepo.FindAll(ctx)
	if err != nil {
		log.WithError(err).Warn("could not check existing data, skipping seed")
		return false
	}
	if len(users) > 0 {
		log.Info("data already exists, skipping")
		return false
	}

	log.Info("creating development data")

	// ============================================
	// USERS
	// ============================================

	aarav := createUser(ctx, repos, "aarav.sharma@backpackers.app", "Aarav Sharma", "google-oauth2|1001")
	meera := createUser(ctx, repos, "meera.nair@backpackers.app", "Meera Nair", "")
	kabir := createUser(ctx, repos, "kabir.singh@backpackers.app", "Kabir Singh", "google-oauth2|1003")
	tara := createUser(ctx, repos, "tara.gurung@backpackers.app", "Tara Gurung", "")

	// ============================================
	// GROUPS
	// ============================================

	start := time.Now().AddDate(0, 1, 0).Truncate(24 * time.Hour)

	// Host keyed by internal id, almost full
	goa := &repository.Group{
		ID:             uuid.New().String(),
		Name:           "Goa Monsoon Escape",
		Description:    "Beaches, forts and a spice plantation day trip.",
		Destination:    "Goa, India",
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 5),
		MaxMembers:     3,
		CurrentMembers: 2,
		CreatorID:      aarav.ID,
		Members: []repository.Member{
			hostMember(aarav.ID, aarav.Name),
			{
				ID:          uuid.New().String(),
				UserID:      meera.Email,
				Name:        meera.Name,
				AvatarColor: types.DefaultAvatarColor,
				Role:        types.RoleCoHost,
				Expertise:   "Local Guide",
			},
		},
	}
	createGroup(ctx, repos, goa)
	appendRequest(ctx, repos, goa.ID, kabir.Email, "Been to Goa twice, happy to drive.")

	// Host keyed by email
	spiti := &repository.Group{
		ID:             uuid.New().String(),
		Name:           "Spiti Valley Road Trip",
		Description:    "High passes, monasteries and cold desert camping.",
		Destination:    "Spiti, Himachal Pradesh",
		StartDate:      start.AddDate(0, 1, 0),
		EndDate:        start.AddDate(0, 1, 9),
		MaxMembers:     6,
		CurrentMembers: 1,
		CreatorID:      tara.Email,
		Members:        []repository.Member{hostMember(tara.Email, tara.Name)},
	}
	createGroup(ctx, repos, spiti)
	appendRequest(ctx, repos, spiti.ID, aarav.ID, "")
	appendRequest(ctx, repos, spiti.ID, meera.ID, "Can bring a tent for two.")

	// ============================================
	// CATALOG
	// ============================================

	if err := repos.CatalogRepo.Upsert(ctx, Catalog()); err != nil {
		log.WithError(err).Warn("failed to seed catalog")
	}

	log.Info("development data created")
	return true
}

// Catalog is the listing set used for development.
func Catalog() search.Catalog {
	return search.Catalog{
		Rentals: []search.RentalItem{
			{ID: "rental-goa-scooter", Name: "Activa Scooter", Type: "scooter", Model: "Honda Activa 6G", Location: "Goa, India", PricePerDay: decimal.RequireFromString("450.00"), Seats: 2},
			{ID: "rental-manali-bike", Name: "Royal Enfield Himalayan", Type: "bike", Model: "Himalayan 411", Location: "Manali, Himachal Pradesh", PricePerDay: decimal.RequireFromString("1500.00"), Seats: 2},
			{ID: "rental-jaipur-suv", Name: "Family SUV", Type: "car", Model: "Mahindra XUV700", Location: "Jaipur, Rajasthan", PricePerDay: decimal.RequireFromString("3800.00"), Seats: 7},
		},
		Sightseeing: []search.SightseeingPackage{
			{ID: "sight-jaipur-forts", Title: "Pink City Forts", City: "Jaipur", State: "Rajasthan", PlacesCovered: []string{"Amber Fort", "Hawa Mahal", "Nahargarh Fort"}, Price: decimal.RequireFromString("1200.00"), DurationHours: 8},
			{ID: "sight-goa-north", Title: "North Goa Beaches", City: "Panaji", State: "Goa", PlacesCovered: []string{"Baga Beach", "Fort Aguada", "Anjuna Flea Market"}, Price: decimal.RequireFromString("900.00"), DurationHours: 6},
		},
		Tours: []search.TourPackage{
			{ID: "tour-kerala-backwaters", Title: "Kerala Backwaters Houseboat", Category: "relaxation", Location: "Alleppey, Kerala", Price: decimal.RequireFromString("14500.00"), DurationDays: 3},
			{ID: "tour-ladakh-adventure", Title: "Leh Ladakh Adventure", Category: "adventure", Location: "Leh, Ladakh", Price: decimal.RequireFromString("32000.00"), DurationDays: 8},
			{ID: "tour-goa-heritage", Title: "Old Goa Heritage Walk", Category: "heritage", Location: "Goa, India", Price: decimal.RequireFromString("2500.00"), DurationDays: 1},
		},
	}
}

func createUser(ctx context.Context, repos *repository.Repositories, email, name, externalID string) *repository.User {
	user := &repository.User{Email: email, Name: name}
	if externalID != "" {
		user.ExternalID = &externalID
	}
	if err := repos.UserRepo.Create(ctx, user); err != nil {
		log.WithError(err).WithField("email", email).Warn("failed to create user")
	}
	return user
}

func hostMember(userID, name string) repository.Member {
	return repository.Member{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		AvatarColor: types.HostAvatarColor,
		Role:        types.RoleHost,
		Expertise:   types.HostExpertise,
	}
}

func createGroup(ctx context.Context, repos *repository.Repositories, group *repository.Group) {
	if err := repos.GroupRepo.Create(ctx, group); err != nil {
		log.WithError(err).WithField("group", group.Name).Warn("failed to create group")
	}
}

func appendRequest(ctx context.Context, repos *repository.Repositories, groupID, userID, note string) {
	req := &repository.JoinRequest{ID: uuid.New().String(), UserID: userID, Note: note}
	if err := repos.GroupRepo.AppendRequest(ctx, groupID, req); err != nil {
		log.WithError(err).WithField("group", groupID).Warn("failed to create join request")
	}
}
