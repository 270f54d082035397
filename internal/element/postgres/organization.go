package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogDatamodel "github.com/sciadvances/catalog-api/internal/core/datamodel/catalog"
	"github.com/sciadvances/catalog-api/internal/element"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) element.RepositoryAPI {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Kind() element.Kind {
	return element.KindOrganization
}

func organizationToElement(dm *catalogDatamodel.Organization) *element.Element {
	el := newElement(dm.ID, dm.Name, dm.BirthDate, dm.DeathDate, dm.ImageURL, dm.WikiURL)
	el.Related[element.KindPerson] = personIDs(dm.Persons)
	el.Related[element.KindProduct] = productIDs(dm.Products)
	return el
}

// elementToOrganization leaves the association slices nil so writes never
// touch the join tables.
func elementToOrganization(el *element.Element) *catalogDatamodel.Organization {
	return &catalogDatamodel.Organization{
		ID:        el.ID,
		Name:      el.Name,
		BirthDate: timeOrNil(el.BirthDate),
		DeathDate: timeOrNil(el.DeathDate),
		ImageURL:  el.ImageURL,
		WikiURL:   el.WikiURL,
	}
}

func (r *OrganizationRepository) All(orderBy string, descending bool) ([]*element.Element, error) {
	var rows []*catalogDatamodel.Organization
	err := r.db.Preload("Persons").Preload("Products").
		Order(orderClause(orderBy, descending)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	elements := make([]*element.Element, 0, len(rows))
	for _, row := range rows {
		elements = append(elements, organizationToElement(row))
	}
	return elements, nil
}

func (r *OrganizationRepository) ByID(id int64) (*element.Element, error) {
	var row catalogDatamodel.Organization
	err := r.db.Preload("Persons").Preload("Products").First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return organizationToElement(&row), nil
}

func (r *OrganizationRepository) IDByName(name string) (int64, error) {
	var row catalogDatamodel.Organization
	err := r.db.Select("id").Where("name = ?", name).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.ID, nil
}

func (r *OrganizationRepository) Create(el *element.Element) error {
	dm := elementToOrganization(el)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	el.ID = dm.ID
	return nil
}

func (r *OrganizationRepository) Update(el *element.Element) error {
	return r.db.Save(elementToOrganization(el)).Error
}

func (r *OrganizationRepository) Delete(id int64) error {
	return r.db.Select(clause.Associations).
		Delete(&catalogDatamodel.Organization{ID: id}).Error
}

func (r *OrganizationRepository) Related(ownerID int64, other element.Kind) ([]*element.Element, error) {
	switch other {
	case element.KindPerson:
		var rows []*catalogDatamodel.Person
		err := r.db.Preload("Organizations").Preload("Products").
			Joins("JOIN organization_person rel ON rel.person_id = persons.id").
			Where("rel.organization_id = ?", ownerID).
			Order("persons.id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		elements := make([]*element.Element, 0, len(rows))
		for _, row := range rows {
			elements = append(elements, personToElement(row))
		}
		return elements, nil
	case element.KindProduct:
		var rows []*catalogDatamodel.Product
		err := r.db.Preload("Organizations").Preload("Persons").
			Joins("JOIN organization_product rel ON rel.product_id = products.id").
			Where("rel.organization_id = ?", ownerID).
			Order("products.id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		elements := make([]*element.Element, 0, len(rows))
		for _, row := range rows {
			elements = append(elements, productToElement(row))
		}
		return elements, nil
	}
	return nil, fmt.Errorf("organization has no relationship to %q", other)
}

func (r *OrganizationRepository) AddRelation(ownerID int64, other element.Kind, otherID int64) error {
	owner := &catalogDatamodel.Organization{ID: ownerID}
	switch other {
	case element.KindPerson:
		return r.db.Model(owner).Association("Persons").
			Append(&catalogDatamodel.Person{ID: otherID})
	case element.KindProduct:
		return r.db.Model(owner).Association("Products").
			Append(&catalogDatamodel.Product{ID: otherID})
	}
	return fmt.Errorf("organization has no relationship to %q", other)
}

func (r *OrganizationRepository) RemoveRelation(ownerID int64, other element.Kind, otherID int64) error {
	owner := &catalogDatamodel.Organization{ID: ownerID}
	switch other {
	case element.KindPerson:
		return r.db.Model(owner).Association("Persons").
			Delete(&catalogDatamodel.Person{ID: otherID})
	case element.KindProduct:
		return r.db.Model(owner).Association("Products").
			Delete(&catalogDatamodel.Product{ID: otherID})
	}
	return fmt.Errorf("organization has no relationship to %q", other)
}
