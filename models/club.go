package models

import (
	"fmt"
	"sort"
	"time"
)

// HourRange is a single open/close window within one weekday,
// expressed as local wall-clock times ("08:00", "22:00").
type HourRange struct {
	Open  string `bson:"open" json:"open"`
	Close string `bson:"close" json:"close"`
}

// OpeningHours maps a lowercase weekday name ("monday") to the
// open/close ranges for that day. A missing day means closed.
type OpeningHours map[string][]HourRange

// Resource is a bookable unit within a club (court, lane, room).
// Capacity 0 is treated as 1 (exclusive use).
type Resource struct {
	Name     string `bson:"name" json:"name"`
	Type     string `bson:"type" json:"type"`
	Capacity int    `bson:"capacity" json:"capacity"`
}

// MembershipTier describes one membership offering read back to callers
// by the assistant.
type MembershipTier struct {
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Currency string  `bson:"currency" json:"currency"`
	Period   string  `bson:"period" json:"period"` // "month", "year"
}

// Club represents a sport club served by the voice receptionist.
type Club struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Slug  string `bson:"slug" json:"slug"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`

	Address    string `bson:"address,omitempty" json:"address,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode string `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
	Timezone   string `bson:"timezone" json:"timezone"` // IANA name, e.g. "Europe/Stockholm"

	Resources       []Resource       `bson:"resources" json:"resources"`
	OpeningHours    OpeningHours     `bson:"opening_hours" json:"opening_hours"`
	MembershipTiers []MembershipTier `bson:"membership_tiers,omitempty" json:"membership_tiers,omitempty"`
	Facilities      []string         `bson:"facilities,omitempty" json:"facilities,omitempty"`

	// Marketplace integration (external booking platform).
	MarketplaceClubID     string `bson:"marketplace_club_id,omitempty" json:"marketplace_club_id,omitempty"`
	MarketplaceBookingURL string `bson:"marketplace_booking_url,omitempty" json:"marketplace_booking_url,omitempty"`

	// Voice provider wiring.
	AssistantID    string `bson:"assistant_id,omitempty" json:"assistant_id,omitempty"`
	AssignedNumber string `bson:"assigned_number,omitempty" json:"assigned_number,omitempty"`
	CustomGreeting string `bson:"custom_greeting,omitempty" json:"custom_greeting,omitempty"`

	// Manager contact for escalations and lead alerts.
	ManagerName  string `bson:"manager_name,omitempty" json:"manager_name,omitempty"`
	ManagerPhone string `bson:"manager_phone,omitempty" json:"manager_phone,omitempty"`

	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ResourceByName returns the resource with the given name, or nil.
func (c *Club) ResourceByName(name string) *Resource {
	for i := range c.Resources {
		if c.Resources[i].Name == name {
			return &c.Resources[i]
		}
	}
	return nil
}

// Location resolves the club's timezone, falling back to UTC.
func (c *Club) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate enforces the structural club invariants: resource names are
// unique and opening-hour ranges within a day never overlap.
func (c *Club) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("club name is required")
	}
	seen := make(map[string]bool, len(c.Resources))
	for _, r := range c.Resources {
		if r.Name == "" {
			return fmt.Errorf("resource name is required")
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate resource name %q", r.Name)
		}
		seen[r.Name] = true
		if r.Capacity < 0 {
			return fmt.Errorf("resource %q has negative capacity", r.Name)
		}
	}
	for day, ranges := range c.OpeningHours {
		mins := make([][2]int, 0, len(ranges))
		for _, hr := range ranges {
			open, err := ParseClockMinutes(hr.Open)
			if err != nil {
				return fmt.Errorf("%s: invalid open time %q", day, hr.Open)
			}
			close, err := ParseClockMinutes(hr.Close)
			if err != nil {
				return fmt.Errorf("%s: invalid close time %q", day, hr.Close)
			}
			if open >= close {
				return fmt.Errorf("%s: open %q is not before close %q", day, hr.Open, hr.Close)
			}
			mins = append(mins, [2]int{open, close})
		}
		sort.Slice(mins, func(i, j int) bool { return mins[i][0] < mins[j][0] })
		for i := 1; i < len(mins); i++ {
			if mins[i][0] < mins[i-1][1] {
				return fmt.Errorf("%s: opening-hour ranges overlap", day)
			}
		}
	}
	return nil
}

// ParseClockMinutes converts an "HH:MM" wall-clock string to minutes
// from midnight.
func ParseClockMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
