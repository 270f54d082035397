// Package postgres implements the element storage contract on gorm. The
// three repositories share one join table per kind pair, which is what makes
// relationship edges symmetric by construction.
package postgres

import (
	"time"

	"github.com/sciadvances/catalog-api/internal"
	catalogDatamodel "github.com/sciadvances/catalog-api/internal/core/datamodel/catalog"
	"github.com/sciadvances/catalog-api/internal/element"
)

func newElement(id int64, name string, birth, death *time.Time, imageURL, wikiURL *string) *element.Element {
	return &element.Element{
		ID:        id,
		Name:      name,
		BirthDate: dateOrNil(birth),
		DeathDate: dateOrNil(death),
		ImageURL:  imageURL,
		WikiURL:   wikiURL,
		Related:   map[element.Kind][]int64{},
	}
}

func dateOrNil(t *time.Time) *internal.Date {
	if t == nil {
		return nil
	}
	d := internal.Date{Time: t.UTC()}
	return &d
}

func timeOrNil(d *internal.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func organizationIDs(rows []*catalogDatamodel.Organization) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

func personIDs(rows []*catalogDatamodel.Person) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

func productIDs(rows []*catalogDatamodel.Product) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

// orderClause builds the validated ORDER BY expression. Callers only pass
// "id" or "name".
func orderClause(orderBy string, descending bool) string {
	if orderBy != "name" {
		orderBy = "id"
	}
	if descending {
		return orderBy + " DESC"
	}
	return orderBy + " ASC"
}
