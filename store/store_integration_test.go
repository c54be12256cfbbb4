//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nimbusmart/nimbusmart-backend-go/database"
	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+endpoint))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})

	db := client.Database("nimbusmart_test")
	require.NoError(t, database.EnsureIndexes(ctx, db))
	return db
}

func TestEventRecordDuplicateIsNotAFailure(t *testing.T) {
	db := setupMongo(t)
	events := NewEvents(db)
	ctx := context.Background()

	already, err := events.Record(ctx, "evt_1", time.Now())
	require.NoError(t, err)
	assert.False(t, already)

	already, err = events.Record(ctx, "evt_1", time.Now())
	require.NoError(t, err)
	assert.True(t, already)

	processed, err := events.HasProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestEventRecordConcurrentDeliveries(t *testing.T) {
	db := setupMongo(t)
	events := NewEvents(db)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	firsts := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			already, err := events.Record(ctx, "evt_race", time.Now())
			assert.NoError(t, err)
			if !already {
				firsts <- true
			}
		}()
	}
	wg.Wait()
	close(firsts)

	// Exactly one delivery wins the insert.
	assert.Len(t, firsts, 1)
}

func TestLatestTimestampWatermark(t *testing.T) {
	db := setupMongo(t)
	events := NewEvents(db)
	ctx := context.Background()

	latest, err := events.LatestTimestamp(ctx)
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	older := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	_, err = events.Record(ctx, "evt_old", older)
	require.NoError(t, err)
	_, err = events.Record(ctx, "evt_new", newer)
	require.NoError(t, err)

	latest, err = events.LatestTimestamp(ctx)
	require.NoError(t, err)
	assert.True(t, newer.Equal(latest))
}

func TestClaimAvailableCourierIsAtomic(t *testing.T) {
	db := setupMongo(t)
	users := NewUsers(db)
	ctx := context.Background()

	for _, name := range []string{"First", "Second"} {
		require.NoError(t, users.Insert(ctx, &models.User{
			FirstName:          name,
			LastName:           "Courier",
			Email:              name + "@couriers.example.com",
			Role:               models.RoleCourier,
			AvailabilityStatus: models.AvailabilityAvailable,
		}))
	}

	const claimers = 5
	var wg sync.WaitGroup
	claims := make(chan *models.User, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			courier, err := users.ClaimAvailableCourier(ctx)
			if err != nil {
				assert.ErrorIs(t, err, ErrNoCourierAvailable)
				return
			}
			claims <- courier
		}()
	}
	wg.Wait()
	close(claims)

	seen := map[string]*models.User{}
	for courier := range claims {
		_, dup := seen[courier.ID.Hex()]
		assert.False(t, dup, "courier %s claimed twice", courier.ID.Hex())
		seen[courier.ID.Hex()] = courier
		assert.Equal(t, models.AvailabilityUnavailable, courier.AvailabilityStatus)
	}
	assert.Len(t, seen, 2)

	// Releasing a courier makes it claimable again.
	var released *models.User
	for _, courier := range seen {
		require.NoError(t, users.SetCourierAvailability(ctx, courier.ID, models.AvailabilityAvailable))
		released = courier
		break
	}

	again, err := users.ClaimAvailableCourier(ctx)
	require.NoError(t, err)
	assert.Equal(t, released.ID, again.ID)
}

func TestUserInsertDuplicateEmail(t *testing.T) {
	db := setupMongo(t)
	users := NewUsers(db)
	ctx := context.Background()

	user := &models.User{FirstName: "Jane", Email: "jane@example.com", Role: models.RoleCustomer}
	require.NoError(t, users.Insert(ctx, user))

	dup := &models.User{FirstName: "Janet", Email: "jane@example.com", Role: models.RoleCustomer}
	assert.ErrorIs(t, users.Insert(ctx, dup), ErrEmailTaken)
}

func TestSeedSampleCouriersIsIdempotent(t *testing.T) {
	db := setupMongo(t)
	users := NewUsers(db)
	ctx := context.Background()

	require.NoError(t, SeedSampleCouriers(ctx, users))
	require.NoError(t, SeedSampleCouriers(ctx, users))

	count, err := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleCourier})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
