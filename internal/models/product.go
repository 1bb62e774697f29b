package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var Categories = []string{"dslr", "mirrorless", "compact", "action", "drone"}

var Brands = []string{"sony", "canon", "nikon", "fujifilm", "panasonic", "olympus", "leica", "other"}

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type Specifications struct {
	Sensor       string   `json:"sensor,omitempty"`
	Resolution   string   `json:"resolution,omitempty"`
	ISO          string   `json:"iso,omitempty"`
	Video        string   `json:"video,omitempty"`
	Display      string   `json:"display,omitempty"`
	Connectivity []string `json:"connectivity,omitempty"`
	Battery      string   `json:"battery,omitempty"`
	Dimensions   string   `json:"dimensions,omitempty"`
	Weight       string   `json:"weight,omitempty"`
}

type Product struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"                 json:"id"`
	UserID         *uuid.UUID     `gorm:"type:uuid;index"                      json:"user,omitempty"`
	Name           string         `gorm:"not null"                             json:"name"`
	Slug           string         `gorm:"not null;uniqueIndex"                 json:"slug"`
	Price          float64        `gorm:"not null"                             json:"price"`
	Description    string         `gorm:"type:text;not null"                   json:"description"`
	Features       []string       `gorm:"type:text;serializer:json"            json:"features"`
	Specifications Specifications `gorm:"type:text;serializer:json"            json:"specifications"`
	Images         []Image        `gorm:"type:text;serializer:json"            json:"images"`
	Category       string         `gorm:"not null;index"                       json:"category"`
	Brand          string         `gorm:"not null;index"                       json:"brand"`
	Stock          int            `gorm:"not null;default:0"                   json:"stock"`
	Rating         float64        `gorm:"not null;default:0;index"             json:"rating"`
	NumReviews     int            `gorm:"not null;default:0"                   json:"numReviews"`
	IsFeatured     bool           `gorm:"not null;default:false"               json:"isFeatured"`
	ReleaseDate    time.Time      `                                            json:"releaseDate"`
	Reviews        []Review       `json:"reviews"`
	CreatedAt      time.Time      `                                            json:"createdAt"`
	UpdatedAt      time.Time      `                                            json:"updatedAt"`
}

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                            json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_user"  json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_user"  json:"user"`
	Name      string    `gorm:"not null"                                        json:"name"`
	Rating    int       `gorm:"not null"                                        json:"rating"`
	Comment   string    `gorm:"type:text;not null"                              json:"comment"`
	CreatedAt time.Time `                                                       json:"createdAt"`
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases name, collapses every run of characters outside [a-z0-9]
// into a single '-' and trims dashes from both ends.
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ReleaseDate.IsZero() {
		p.ReleaseDate = time.Now().UTC()
	}
	return nil
}

// BeforeSave keeps the slug derived from the name on every write that goes through the model.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.Slug = Slugify(p.Name)
	return nil
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
