package domain

// Default business hours
const (
	DefaultOpeningTime        = "09:00"
	DefaultClosingTime        = "17:00"
	DefaultGranularityMinutes = 15
)

// Allocation constants
const (
	// DefaultMaxWriteAttempts bounds the optimistic write loop per (staff, date) record
	DefaultMaxWriteAttempts = 3

	// MaxDurationHours is the longest job the allocator accepts (a whole day)
	MaxDurationHours = 24
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
