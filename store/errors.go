package store

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrShipmentNotFound   = errors.New("shipment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrAddressNotFound    = errors.New("shipping address not found")
	ErrNoCourierAvailable = errors.New("no available couriers found")
	ErrEmailTaken         = errors.New("email already registered")
)
