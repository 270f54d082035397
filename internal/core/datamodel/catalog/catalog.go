// Package catalog holds the gorm data models for the three catalog element
// kinds. All three share one join table per kind pair, so both sides of a
// relationship always read and write the same rows.
package catalog

import "time"

type Organization struct {
	ID        int64      `gorm:"primaryKey"`
	Name      string     `gorm:"column:name;size:80;uniqueIndex;not null"`
	BirthDate *time.Time `gorm:"column:birthdate"`
	DeathDate *time.Time `gorm:"column:deathdate"`
	ImageURL  *string    `gorm:"column:image_url;size:2047"`
	WikiURL   *string    `gorm:"column:wiki_url;size:2047"`
	Persons   []*Person  `gorm:"many2many:organization_person"`
	Products  []*Product `gorm:"many2many:organization_product"`
}

func (Organization) TableName() string {
	return "organizations"
}

type Person struct {
	ID            int64           `gorm:"primaryKey"`
	Name          string          `gorm:"column:name;size:80;uniqueIndex;not null"`
	BirthDate     *time.Time      `gorm:"column:birthdate"`
	DeathDate     *time.Time      `gorm:"column:deathdate"`
	ImageURL      *string         `gorm:"column:image_url;size:2047"`
	WikiURL       *string         `gorm:"column:wiki_url;size:2047"`
	Organizations []*Organization `gorm:"many2many:organization_person"`
	Products      []*Product      `gorm:"many2many:person_product"`
}

func (Person) TableName() string {
	return "persons"
}

type Product struct {
	ID            int64           `gorm:"primaryKey"`
	Name          string          `gorm:"column:name;size:80;uniqueIndex;not null"`
	BirthDate     *time.Time      `gorm:"column:birthdate"`
	DeathDate     *time.Time      `gorm:"column:deathdate"`
	ImageURL      *string         `gorm:"column:image_url;size:2047"`
	WikiURL       *string         `gorm:"column:wiki_url;size:2047"`
	Organizations []*Organization `gorm:"many2many:organization_product"`
	Persons       []*Person       `gorm:"many2many:person_product"`
}

func (Product) TableName() string {
	return "products"
}
