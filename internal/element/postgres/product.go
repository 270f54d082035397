package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogDatamodel "github.com/sciadvances/catalog-api/internal/core/datamodel/catalog"
	"github.com/sciadvances/catalog-api/internal/element"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) element.RepositoryAPI {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Kind() element.Kind {
	return element.KindProduct
}

func productToElement(dm *catalogDatamodel.Product) *element.Element {
	el := newElement(dm.ID, dm.Name, dm.BirthDate, dm.DeathDate, dm.ImageURL, dm.WikiURL)
	el.Related[element.KindOrganization] = organizationIDs(dm.Organizations)
	el.Related[element.KindPerson] = personIDs(dm.Persons)
	return el
}

func elementToProduct(el *element.Element) *catalogDatamodel.Product {
	return &catalogDatamodel.Product{
		ID:        el.ID,
		Name:      el.Name,
		BirthDate: timeOrNil(el.BirthDate),
		DeathDate: timeOrNil(el.DeathDate),
		ImageURL:  el.ImageURL,
		WikiURL:   el.WikiURL,
	}
}

func (r *ProductRepository) All(orderBy string, descending bool) ([]*element.Element, error) {
	var rows []*catalogDatamodel.Product
	err := r.db.Preload("Organizations").Preload("Persons").
		Order(orderClause(orderBy, descending)).
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

func (r *ProductRepository) ByID(id int64) (*element.Element, error) {
	var row catalogDatamodel.Product
	err := r.db.Preload("Organizations").Preload("Persons").First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return productToElement(&row), nil
}

func (r *ProductRepository) IDByName(name string) (int64, error) {
	var row catalogDatamodel.Product
	err := r.db.Select("id").Where("name = ?", name).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.ID, nil
}

func (r *ProductRepository) Create(el *element.Element) error {
	dm := elementToProduct(el)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	el.ID = dm.ID
	return nil
}

func (r *ProductRepository) Update(el *element.Element) error {
	return r.db.Save(elementToProduct(el)).Error
}

func (r *ProductRepository) Delete(id int64) error {
	return r.db.Select(clause.Associations).
		Delete(&catalogDatamodel.Product{ID: id}).Error
}

func (r *ProductRepository) Related(ownerID int64, other element.Kind) ([]*element.Element, error) {
	switch other {
	case element.KindOrganization:
		var rows []*catalogDatamodel.Organization
		err := r.db.Preload("Persons").Preload("Products").
			Joins("JOIN organization_product rel ON rel.organization_id = organizations.id").
			Where("rel.product_id = ?", ownerID).
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
	case element.KindPerson:
		var rows []*catalogDatamodel.Person
		err := r.db.Preload("Organizations").Preload("Products").
			Joins("JOIN person_product rel ON rel.person_id = persons.id").
			Where("rel.product_id = ?", ownerID).
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
	}
	return nil, fmt.Errorf("product has no relationship to %q", other)
}

func (r *ProductRepository) AddRelation(ownerID int64, other element.Kind, otherID int64) error {
	owner := &catalogDatamodel.Product{ID: ownerID}
	switch other {
	case element.KindOrganization:
		return r.db.Model(owner).Association("Organizations").
			Append(&catalogDatamodel.Organization{ID: otherID})
	case element.KindPerson:
		return r.db.Model(owner).Association("Persons").
			Append(&catalogDatamodel.Person{ID: otherID})
	}
	return fmt.Errorf("product has no relationship to %q", other)
}

func (r *ProductRepository) RemoveRelation(ownerID int64, other element.Kind, otherID int64) error {
	owner := &catalogDatamodel.Product{ID: ownerID}
	switch other {
	case element.KindOrganization:
		return r.db.Model(owner).Association("Organizations").
			Delete(&catalogDatamodel.Organization{ID: otherID})
	case element.KindPerson:
		return r.db.Model(owner).Association("Persons").
			Delete(&catalogDatamodel.Person{ID: otherID})
	}
	return fmt.Errorf("product has no relationship to %q", other)
}
