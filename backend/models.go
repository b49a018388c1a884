package backend

import "time"

// RoleType is a backend user role.
type RoleType string

const (
	RoleAdmin    RoleType = "ADMIN"
	RoleConsumer RoleType = "CONSUMER"
)

// User is the backend's user record.
type User struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Role      RoleType   `json:"role"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// UserForm is the create/update payload for a user.
type UserForm struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      RoleType   `json:"role,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Password  string     `json:"password,omitempty"`
}

// UnitType is a product's unit of sale.
type UnitType string

const (
	UnitGram     UnitType = "G"
	UnitKilogram UnitType = "KG"
	UnitEach     UnitType = "EA"
	UnitBox      UnitType = "BOX"
	UnitDozen    UnitType = "DZ"
)

// Product is a catalog entry, optionally annotated with the lowest price
// found across establishments.
type Product struct {
	ID                       string     `json:"id,omitempty"`
	Name                     string     `json:"name"`
	Unit                     UnitType   `json:"unit"`
	LowestPrice              *float64   `json:"lowestPrice,omitempty"`
	LowestPriceEstablishment *string    `json:"lowestPriceEstablishment,omitempty"`
	CreatedAt                time.Time  `json:"createdAt,omitempty"`
	UpdatedAt                *time.Time `json:"updatedAt,omitempty"`
}

// ProductForm is the create/update payload for a product.
type ProductForm struct {
	Name string   `json:"name"`
	Unit UnitType `json:"unit"`
}

// DayOfWeekType keys an establishment's business hours.
type DayOfWeekType string

const (
	DaySunday    DayOfWeekType = "SUN"
	DayMonday    DayOfWeekType = "MON"
	DayTuesday   DayOfWeekType = "TUES"
	DayWednesday DayOfWeekType = "WED"
	DayThursday  DayOfWeekType = "THURS"
	DayFriday    DayOfWeekType = "FRI"
	DaySaturday  DayOfWeekType = "SAT"
	DayHolidays  DayOfWeekType = "HOLIDAYS"
)

// BusinessHours is one opening window of an establishment.
type BusinessHours struct {
	ID        string        `json:"id,omitempty"`
	Day       DayOfWeekType `json:"day"`
	OpeningAt *time.Time    `json:"openingAt,omitempty"`
	ClosureAt *time.Time    `json:"closureAt,omitempty"`
}

// Establishment is a store with a geolocation and opening hours.
type Establishment struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name"`
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	BusinessHours []BusinessHours `json:"businessesHours,omitempty"`
	CreatedAt     time.Time       `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}

// EstablishmentForm is the create/update payload for an establishment.
type EstablishmentForm struct {
	Name          string          `json:"name"`
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	BusinessHours []BusinessHours `json:"businessesHours,omitempty"`
}

// PriceKind discriminates regular prices from deals.
type PriceKind string

const (
	PriceCommon PriceKind = "COMMON"
	PriceDeal   PriceKind = "DEAL"
)

// Price is a reported product price at an establishment. The related
// records are populated on detail fetches and on listings requested with
// details.
type Price struct {
	ID                              string     `json:"id,omitempty"`
	Value                           float64    `json:"value"`
	Type                            PriceKind  `json:"type"`
	IsProductWithNearExpirationDate bool       `json:"isProductWithNearExpirationDate"`
	UserID                          string     `json:"userId,omitempty"`
	ProductID                       string     `json:"productId,omitempty"`
	EstablishmentID                 string     `json:"establishmentId,omitempty"`
	ExpiresAt                       *time.Time `json:"expiresAt,omitempty"`
	CreatedAt                       time.Time  `json:"createdAt,omitempty"`
	UpdatedAt                       *time.Time `json:"updatedAt,omitempty"`

	User          *User          `json:"user,omitempty"`
	Product       *Product       `json:"product,omitempty"`
	Establishment *Establishment `json:"establishment,omitempty"`
}

// PriceForm is the create/update payload for a reported price. Either
// ProductID references an existing product or ProductName creates one
// inline, not both. ExpiresAt only applies to DEAL prices.
type PriceForm struct {
	UserID                          string     `json:"userId"`
	ProductID                       string     `json:"productId,omitempty"`
	ProductName                     string     `json:"productName,omitempty"`
	EstablishmentID                 string     `json:"establishmentId"`
	Value                           float64    `json:"value"`
	Type                            PriceKind  `json:"type"`
	IsProductWithNearExpirationDate bool       `json:"isProductWithNearExpirationDate"`
	ExpiresAt                       *time.Time `json:"expiresAt,omitempty"`
}

// DashboardTotals are the aggregate counts shown on the home dashboard.
type DashboardTotals struct {
	Users          int `json:"users"`
	Products       int `json:"products"`
	Establishments int `json:"establishments"`
	Prices         int `json:"prices"`
}
