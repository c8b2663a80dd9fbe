// Package seed populates the database with demo data for local development.
package seed

import (
	"fmt"
	"log/slog"
	"time"

	"traveldesk/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed password for every generated account.
const demoPassword = "Password1!"

// Run fills the database with a demo admin, regular users and travel
// requests in every status. It is idempotent per run but does not
// deduplicate against existing rows; use on a fresh database.
func Run(db *gorm.DB, userCount, requestsPerUser int) error {
	gofakeit.Seed(0)

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	admin := models.User{
		Name:     "Admin User",
		Email:    "admin@traveldesk.local",
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	users := make([]models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		users = append(users, models.User{
			Name:     gofakeit.Name(),
			Email:    fmt.Sprintf("user%d@traveldesk.local", i+1),
			Password: string(hash),
			Role:     models.RoleUser,
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("creating users: %w", err)
	}

	statuses := []models.TravelRequestStatus{
		models.StatusRequested,
		models.StatusApproved,
		models.StatusCancelled,
	}

	total := 0
	for _, u := range users {
		for i := 0; i < requestsPerUser; i++ {
			departure := time.Now().AddDate(0, 0, gofakeit.Number(3, 120))
			tr := models.TravelRequest{
				UserID:        u.ID,
				RequesterName: u.Name,
				Destination:   gofakeit.City() + ", " + gofakeit.Country(),
				DepartureDate: departure,
				ReturnDate:    departure.AddDate(0, 0, gofakeit.Number(1, 14)),
				Notes:         gofakeit.Sentence(8),
				Status:        statuses[total%len(statuses)],
			}
			if err := db.Create(&tr).Error; err != nil {
				return fmt.Errorf("creating travel request: %w", err)
			}
			total++
		}
	}

	slog.Info("seed complete",
		"admins", 1,
		"users", len(users),
		"travel_requests", total,
	)
	return nil
}
