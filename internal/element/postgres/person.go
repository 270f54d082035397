package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogDatamodel "github.com/sciadvances/catalog-api/internal/core/datamodel/catalog"
	"github.com/sciadvances/catalog-api/internal/element"
)

type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) element.RepositoryAPI {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) Kind() element.Kind {
	return element.KindPerson
}

func personToElement(dm *catalogDatamodel.Person) *element.Element {
	el := newElement(dm.ID, dm.Name, dm.BirthDate, dm.DeathDate, dm.ImageURL, dm.WikiURL)
	el.Related[element.KindOrganization] = organizationIDs(dm.Organizations)
	el.Related[element.KindProduct] = productIDs(dm.Products)
	return el
}

func elementToPerson(el *element.Element) *catalogDatamodel.Person {
	return &catalogDatamodel.Person{
		ID:        el.ID,
		Name:      el.Name,
		BirthDate: timeOrNil(el.BirthDate),
		DeathDate: timeOrNil(el.DeathDate),
		ImageURL:  el.ImageURL,
		WikiURL:   el.WikiURL,
	}
}

func (r *PersonRepository) All(orderBy string, descending bool) ([]*element.Element, error) {
	var rows []*catalogDatamodel.Person
	err := r.db.Preload("Organizations").Preload("Products").
		Order(orderClause(orderBy, descending)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	elements := make([]*element.Element, 0, len(rows))
	for _, row := range rows {
		elements = append(elements, personToElement(row))
	}
	return elements, nil
}

func (r *PersonRepository) ByID(id int64) (*element.Element, error) {
	var row catalogDatamodel.Person
	err := r.db.Preload("Organizations").Preload("Products").First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return personToElement(&row), nil
}

func (r *PersonRepository) IDByName(name string) (int64, error) {
	var row catalogDatamodel.Person
	err := r.db.Select("id").Where("name = ?", name).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.ID, nil
}

func (r *PersonRepository) Create(el *element.Element) error {
	dm := elementToPerson(el)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	el.ID = dm.ID
	return nil
}

func (r *PersonRepository) Update(el *element.Element) error {
	return r.db.Save(elementToPerson(el)).Error
}

func (r *PersonRepository) Delete(id int64) error {
	return r.db.Select(clause.Associations).
		Delete(&catalogDatamodel.Person{ID: id}).Error
}

func (r *PersonRepository) Related(ownerID int64, other element.Kind) ([]*element.Element, error) {
	switch other {
	case element.KindOrganization:
		var rows []*catalogDatamodel.Organization
		err := r.db.Preload("Persons").Preload("Products").
			Joins("JOIN organization_person rel ON rel.organization_id = organizations.id").
			Where("rel.person_id = ?", ownerID).
			Order("organizations.id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		elements := make([]*element.Element, 0, len(rows))
		for _, row := range rows {
			elements = append(elements, organizationToElement(row))
		}
		return elements, nil
	case element.KindProduct:
		var rows []*catalogDatamodel.Product
		err := r.db.Preload("Organizations").Preload("Persons").
			Joins("JOIN person_product rel ON rel.product_id = products.id").
			Where("rel.person_id = ?", ownerID).
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
	return nil, fmt.Errorf("person has no relationship to %q", other)
}

func (r *PersonRepository) AddRelation(ownerID int64, other element.Kind, otherID int64) error {
	owner := &catalogDatamodel.Person{ID: ownerID}
	switch other {
	case element.KindOrganization:
		return r.db.Model(owner).Association("Organizations").
			Append(&catalogDatamodel.Organization{ID: otherID})
	case element.KindProduct:
		return r.db.Model(owner).Association("Products").
			Append(&catalogDatamodel.Product{ID: otherID})
	}
	return fmt.Errorf("person has no relationship to %q", other)
}

func (r *PersonRepository) RemoveRelation(ownerID int64, other element.Kind, otherID int64) error {
	owner := &catalogDatamodel.Person{ID: ownerID}
	switch other {
	case element.KindOrganization:
		return r.db.Model(owner).Association("Organizations").
			Delete(&catalogDatamodel.Organization{ID: otherID})
	case element.KindProduct:
		return r.db.Model(owner).Association("Products").
			Delete(&catalogDatamodel.Product{ID: otherID})
	}
	return fmt.Errorf("person has no relationship to %q", other)
}
