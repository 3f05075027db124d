package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyType string

const (
	PropertyMeetingRoom   PropertyType = "Meeting Room"
	PropertyPrivateOffice PropertyType = "Private Office Room"
	PropertyDesk          PropertyType = "Desk"
)

type LeaseTerm string

const (
	LeaseHourly  LeaseTerm = "Hourly"
	LeaseDaily   LeaseTerm = "Daily"
	LeaseWeekly  LeaseTerm = "Weekly"
	LeaseMonthly LeaseTerm = "Monthly"
	LeaseYearly  LeaseTerm = "Yearly"
)

// Property is a listed workspace. Only Owner may change or remove it.
type Property struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Owner        primitive.ObjectID `json:"owner" bson:"owner"`
	Title        string             `json:"title" bson:"title"`
	Address      string             `json:"address" bson:"address"`
	PropertyType PropertyType       `json:"propertyType" bson:"propertyType"`
	Area         float64            `json:"area" bson:"area"`
	Tags         []string           `json:"tags" bson:"tags"`
	Images       []string           `json:"images" bson:"images"`
	HasParking   bool               `json:"hasParking" bson:"hasParking"`
	IsAccessible bool               `json:"isAccessible" bson:"isAccessible"`
	IsAvailable  bool               `json:"isAvailable" bson:"isAvailable"`
	Price        float64            `json:"price" bson:"price"`
	Capacity     int                `json:"capacity" bson:"capacity"`
	LeaseTerm    LeaseTerm          `json:"leaseTerm" bson:"leaseTerm"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PropertyPatch carries the fields of an edit. Nil means "leave unchanged".
type PropertyPatch struct {
	Title        *string
	Address      *string
	PropertyType *PropertyType
	Area         *float64
	Tags         []string
	HasParking   *bool
	IsAccessible *bool
	IsAvailable  *bool
	Price        *float64
	Capacity     *int
	LeaseTerm    *LeaseTerm
	NewImages    []string
}
