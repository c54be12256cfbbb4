package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleCustomer   UserRole = "customer"
	RoleAdmin      UserRole = "admin"
	RoleVendor     UserRole = "vendor"
	RoleCourier    UserRole = "courier"
	RoleStoreStaff UserRole = "store_staff"
)

type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"` // "-" means don't include in JSON
	Role      UserRole           `bson:"role" json:"role"`
	// AvailabilityStatus only applies to couriers. A courier flips to
	// unavailable when claimed for a shipment and back to available when
	// that shipment is delivered.
	AvailabilityStatus AvailabilityStatus `bson:"availabilityStatus,omitempty" json:"availabilityStatus,omitempty"`
	PhoneNumber        string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}
