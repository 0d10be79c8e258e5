package handlers

import (
	bookingRepo "clubvoice/database/repository/booking"
	clubRepo "clubvoice/database/repository/club"
	customerRepo "clubvoice/database/repository/customer"
	"clubvoice/services/booking"
	"clubvoice/services/callsession"
	"clubvoice/services/notification"
)

// HandlerBundle aggregates the services the HTTP layer fronts. Wired
// once in main and handed to route registration.
type HandlerBundle struct {
	Sessions callsession.Service
	Bookings booking.BookingService
	Notifier notification.Service

	ClubRepo     clubRepo.ClubRepository
	CustomerRepo customerRepo.CustomerRepository
	BookingRepo  bookingRepo.BookingRepository
}
