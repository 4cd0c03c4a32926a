package models

import (
	"time"
)

type User struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Username      string         `json:"username" gorm:"size:150;unique;not null"`
	Email         string         `json:"email" gorm:"size:254"`
	PasswordHash  string         `json:"-" gorm:"not null"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	Groups        []Group        `json:"groups,omitempty" gorm:"many2many:user_groups;"`
	FarmerProfile *FarmerProfile `json:"farmer_profile,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Group is a named role membership. Rows are only created for the Role values below.
type Group struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:150;unique;not null"`
	CreatedAt time.Time `json:"created_at"`
}

type Role string

const (
	RoleFarmerSeller  Role = "Farmer_Seller"
	RoleConsumerBuyer Role = "Consumer_Buyer"
)

// Roles lists every role a user can be assigned.
var Roles = []Role{RoleFarmerSeller, RoleConsumerBuyer}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type FarmerProfile struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	FarmName     string    `json:"farm_name" gorm:"size:200;not null"`
	FarmLocation string    `json:"farm_location" gorm:"size:200"`
	PhoneNumber  string    `json:"phone_number" gorm:"size:30"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Address struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	User      User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Locality  string    `json:"locality" gorm:"size:150;not null"` // nearest location / area
	City      string    `json:"city" gorm:"size:150;not null"`
	State     string    `json:"state" gorm:"size:150;not null"` // county
	CreatedAt time.Time `json:"created_at"`
}
