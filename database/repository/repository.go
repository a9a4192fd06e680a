package repository

import (
	bookingRepo "quotewizard/database/repository/booking"
)

// Re-export the BookingRepository interface and constructor.
type BookingRepository = bookingRepo.BookingRepository

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

var ErrBookingNotFound = bookingRepo.ErrBookingNotFound
