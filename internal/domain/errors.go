package domain

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrEditConflict      = errors.New("edit conflict")
	ErrMovieNotFound     = errors.New("movie not found")
	ErrTheaterNotFound   = errors.New("one or more theaters not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrTicketUnavailable = errors.New("ticket(s) not found or no longer available")
	ErrInvalidInterval   = errors.New("showtime must end after it starts")
)
