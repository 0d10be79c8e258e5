package models

import "time"

// CustomerStatus places a customer in the acquisition funnel. The
// funnel only moves forward; AdvanceStatus refuses regressions.
type CustomerStatus string

const (
	CustomerLead     CustomerStatus = "lead"
	CustomerProspect CustomerStatus = "prospect"
	CustomerMember   CustomerStatus = "member"
	CustomerInactive CustomerStatus = "inactive"
)

var customerStatusRank = map[CustomerStatus]int{
	CustomerLead:     0,
	CustomerProspect: 1,
	CustomerMember:   2,
	CustomerInactive: 3,
}

// Customer is a person who has contacted a club, from first call
// onwards.
type Customer struct {
	ID     string `bson:"id" json:"id"`
	ClubID string `bson:"club_id" json:"club_id"`

	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`

	Status       CustomerStatus `bson:"status" json:"status"`
	Source       string         `bson:"source,omitempty" json:"source,omitempty"` // "phone_call", "api", ...
	InterestedIn string         `bson:"interested_in,omitempty" json:"interested_in,omitempty"`
	Notes        string         `bson:"notes,omitempty" json:"notes,omitempty"`

	FirstContactAt time.Time `bson:"first_contact_at" json:"first_contact_at"`
	LastContactAt  time.Time `bson:"last_contact_at" json:"last_contact_at"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// AdvanceStatus moves the customer forward in the funnel. Attempts to
// move backwards are ignored and report false.
func (c *Customer) AdvanceStatus(to CustomerStatus) bool {
	if customerStatusRank[to] <= customerStatusRank[c.Status] {
		return false
	}
	c.Status = to
	return true
}
