package store

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

// SeedSampleCouriers inserts a few available couriers for development
// environments. Existing emails are left untouched.
func SeedSampleCouriers(ctx context.Context, users *Users) error {
	sampleCouriers := []models.User{
		{FirstName: "John", LastName: "Doe", Email: "john.doe@example.com"},
		{FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com"},
		{FirstName: "Alice", LastName: "Johnson", Email: "alice.johnson@example.com"},
	}

	for _, courier := range sampleCouriers {
		courier.Role = models.RoleCourier
		courier.AvailabilityStatus = models.AvailabilityAvailable
		courier.CreatedAt = time.Now()
		courier.UpdatedAt = time.Now()

		err := users.Insert(ctx, &courier)
		if errors.Is(err, ErrEmailTaken) {
			log.Printf("Sample courier already exists: %s", courier.Email)
			continue
		}
		if err != nil {
			return err
		}
		log.Printf("Sample courier created: %s", courier.Email)
	}
	return nil
}
