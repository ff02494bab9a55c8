package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Equipment availability on a gym link
const (
	AvailabilityPresent = "present"
	AvailabilityAbsent  = "absent"
	AvailabilityUnknown = "unknown"
)

// Verification status of a gym equipment link
const (
	VerificationVerified   = "verified"
	VerificationUnverified = "unverified"
)

// Gym represents a physical facility
// DB: gyms
type Gym struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	CanonicalID string  `gorm:"column:canonical_id;size:36;not null;uniqueIndex:gyms_canonical_id_key" json:"canonical_id"`
	Slug        string  `gorm:"column:slug;size:255;not null;uniqueIndex:gyms_slug_key" json:"slug"`
	Name        string  `gorm:"column:name;size:255;not null" json:"name"`
	Pref        string  `gorm:"column:pref;size:100;not null;index:idx_gyms_pref" json:"pref"`
	City        string  `gorm:"column:city;size:100;not null;index:idx_gyms_city" json:"city"`
	Address     *string `gorm:"column:address;type:text" json:"address,omitempty"`
	Lat         *float64 `gorm:"column:lat;type:double precision" json:"lat,omitempty"`
	Lng         *float64 `gorm:"column:lng;type:double precision" json:"lng,omitempty"`

	// Maintained by the write side (internal refresh endpoint / DB trigger).
	// The search path only reads it.
	LastVerifiedAtCached *time.Time `gorm:"column:last_verified_at_cached;index:idx_gyms_last_verified" json:"last_verified_at_cached,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;not null;index:idx_gyms_created,sort:desc" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index:idx_gyms_deleted" json:"deleted_at,omitempty"`

	// Relations
	Equipments []GymEquipment `gorm:"foreignKey:GymID" json:"equipments,omitempty"`
}

func (Gym) TableName() string {
	return "gyms"
}

// BeforeCreate assigns a canonical UUID when the caller did not provide one
func (g *Gym) BeforeCreate(tx *gorm.DB) error {
	if g.CanonicalID == "" {
		g.CanonicalID = uuid.NewString()
	}
	return nil
}

// Equipment represents an equipment master definition
// DB: equipments
type Equipment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"column:slug;size:100;not null;uniqueIndex:equipments_slug_key" json:"slug"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Category  *string   `gorm:"column:category;size:100;index:idx_equipments_category" json:"category,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Equipment) TableName() string {
	return "equipments"
}

// GymEquipment links a gym to an equipment definition.
// At most one link per (gym, equipment) pair.
// DB: gym_equipments
type GymEquipment struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	GymID              uint       `gorm:"column:gym_id;not null;uniqueIndex:gym_equipments_gym_equipment_key,priority:1" json:"gym_id"`
	EquipmentID        uint       `gorm:"column:equipment_id;not null;uniqueIndex:gym_equipments_gym_equipment_key,priority:2" json:"equipment_id"`
	Availability       string     `gorm:"column:availability;size:20;not null;default:unknown" json:"availability"`
	Count              *int       `gorm:"column:count" json:"count,omitempty"`
	MaxWeightKg        *int       `gorm:"column:max_weight_kg" json:"max_weight_kg,omitempty"`
	VerificationStatus string     `gorm:"column:verification_status;size:20;not null;default:unverified" json:"verification_status"`
	LastVerifiedAt     *time.Time `gorm:"column:last_verified_at" json:"last_verified_at,omitempty"`
	CreatedAt          time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`

	// Relations
	Equipment *Equipment `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
}

func (GymEquipment) TableName() string {
	return "gym_equipments"
}
