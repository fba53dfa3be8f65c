package domain

import (
	"errors"
	"time"
)

// RiderStatus is the lifecycle state of a rider application.
type RiderStatus string

const (
	RiderPending     RiderStatus = "pending"
	RiderApproved    RiderStatus = "approved"
	RiderRejected    RiderStatus = "rejected"
	RiderDeactivated RiderStatus = "deactivated"
)

var validRiderTransitions = map[RiderStatus][]RiderStatus{
	RiderPending:  {RiderApproved, RiderRejected},
	RiderApproved: {RiderDeactivated},
}

var ErrRiderNotFound = errors.New("rider not found")
var ErrRiderExists = errors.New("rider application already exists")
var ErrRiderNotApproved = errors.New("rider is not approved")

// CanTransitionTo reports whether a rider status transition is valid.
// Transitions happen through admin action only.
func (s RiderStatus) CanTransitionTo(next RiderStatus) bool {
	for _, allowed := range validRiderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Rider is a courier application/record, created by self-service application.
type Rider struct {
	ID               string      `json:"id" bson:"_id,omitempty"`
	Name             string      `json:"name" bson:"name"`
	Email            string      `json:"email" bson:"email"`
	Phone            string      `json:"phone" bson:"phone"`
	Age              int         `json:"age" bson:"age"`
	NationalID       string      `json:"national_id" bson:"national_id"`
	Region           string      `json:"region" bson:"region"`
	District         string      `json:"district" bson:"district"`
	BikeBrand        string      `json:"bike_brand" bson:"bike_brand"`
	BikeRegistration string      `json:"bike_registration" bson:"bike_registration"`
	Status           RiderStatus `json:"status" bson:"status"`
	AppliedAt        time.Time   `json:"applied_at" bson:"applied_at"`
	DecidedAt        *time.Time  `json:"decided_at,omitempty" bson:"decided_at,omitempty"`
}
