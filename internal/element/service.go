package element

import (
	"log/slog"

	"github.com/sciadvances/catalog-api/internal"
)

// RepositoryAPI is the storage contract one catalog kind needs: lookups by
// id and unique name, persistence, and the association operations of its two
// relationship sets.
type RepositoryAPI interface {
	Kind() Kind
	All(orderBy string, descending bool) ([]*Element, error)
	ByID(id int64) (*Element, error)
	IDByName(name string) (int64, error)
	Create(e *Element) error
	Update(e *Element) error
	Delete(id int64) error
	Related(ownerID int64, other Kind) ([]*Element, error)
	AddRelation(ownerID int64, other Kind, otherID int64) error
	RemoveRelation(ownerID int64, other Kind, otherID int64) error
}

// Service runs the generic mutation pipeline for one catalog kind.
type Service struct {
	kind   Kind
	repo   RepositoryAPI
	graph  *Graph
	logger *slog.Logger
}

func NewService(kind Kind, graph *Graph, logger *slog.Logger) *Service {
	return &Service{
		kind:   kind,
		repo:   graph.Repo(kind),
		graph:  graph,
		logger: logger,
	}
}

func (s *Service) Kind() Kind {
	return s.kind
}

// List returns all elements of the kind. order may be "id" or "name",
// anything else falls back to id; ordering is descending only for the exact
// value "DESC". An empty collection is a 404, not an empty list.
func (s *Service) List(order, ordering string) ([]*Element, error) {
	if order != "id" && order != "name" {
		order = "id"
	}
	descending := ordering == "DESC"

	elements, err := s.repo.All(order, descending)
	if err != nil {
		s.logger.Error("failed to list elements", "kind", s.kind, "error", err)
		return nil, internal.NewInternalError(err)
	}
	if len(elements) == 0 {
		return nil, internal.NewNotFoundError()
	}
	return elements, nil
}

func (s *Service) Get(id int64) (*Element, error) {
	el, err := s.repo.ByID(id)
	if err != nil {
		s.logger.Error("failed to load element", "kind", s.kind, "id", id, "error", err)
		return nil, internal.NewInternalError(err)
	}
	if el == nil {
		return nil, internal.NewNotFoundError()
	}
	return el, nil
}

// ExistsByName is the existence probe behind GET /{kind}/name/{name}.
func (s *Service) ExistsByName(name string) error {
	id, err := s.repo.IDByName(name)
	if err != nil {
		s.logger.Error("failed to probe element name", "kind", s.kind, "name", name, "error", err)
		return internal.NewInternalError(err)
	}
	if id == 0 {
		return internal.NewNotFoundError()
	}
	return nil
}

// Create validates required fields and the name uniqueness constraint, then
// persists a new element. The storage layer's unique index is the tie-breaker
// for concurrent creates racing past the lookup; its violation surfaces as
// the same 400.
func (s *Service) Create(dto ElementDTO) (*Element, error) {
	if dto.Name == nil || *dto.Name == "" {
		return nil, internal.NewUnprocessableEntityError()
	}

	existing, err := s.repo.IDByName(*dto.Name)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	if existing != 0 {
		return nil, internal.NewBadRequestError()
	}

	el := &Element{Name: *dto.Name, Related: map[Kind][]int64{}}
	s.apply(el, dto)

	if err := s.repo.Create(el); err != nil {
		s.logger.Error("failed to create element", "kind", s.kind, "name", *dto.Name, "error", err)
		return nil, internal.NewBadRequestError().WithCause(err)
	}
	s.logger.Info("element created", "kind", s.kind, "id", el.ID, "name", el.Name)
	return el, nil
}

// Update applies the partial field set of dto to an already-loaded element.
// The precondition check against the caller's If-Match fingerprint happens
// at the handler, between load and this call. Renaming onto a name held by a
// different id is a 400.
func (s *Service) Update(el *Element, dto ElementDTO) (*Element, error) {
	if dto.Name != nil {
		holder, err := s.repo.IDByName(*dto.Name)
		if err != nil {
			return nil, internal.NewInternalError(err)
		}
		if holder != 0 && holder != el.ID {
			return nil, internal.NewBadRequestError()
		}
		el.Name = *dto.Name
	}

	s.apply(el, dto)

	if err := s.repo.Update(el); err != nil {
		s.logger.Error("failed to update element", "kind", s.kind, "id", el.ID, "error", err)
		return nil, internal.NewInternalError(err)
	}
	s.logger.Info("element updated", "kind", s.kind, "id", el.ID)
	return el, nil
}

func (s *Service) Delete(id int64) error {
	el, err := s.repo.ByID(id)
	if err != nil {
		return internal.NewInternalError(err)
	}
	if el == nil {
		return internal.NewNotFoundError()
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete element", "kind", s.kind, "id", id, "error", err)
		return internal.NewInternalError(err)
	}
	s.logger.Info("element deleted", "kind", s.kind, "id", id)
	return nil
}

func (s *Service) Related(ownerID int64, other Kind) ([]*Element, error) {
	return s.graph.Related(s.kind, ownerID, other)
}

func (s *Service) AddEdge(ownerID int64, other Kind, otherID int64) (*Element, error) {
	return s.graph.AddEdge(s.kind, ownerID, other, otherID)
}

func (s *Service) RemoveEdge(ownerID int64, other Kind, otherID int64) (*Element, error) {
	return s.graph.RemoveEdge(s.kind, ownerID, other, otherID)
}

// apply copies the optional fields of dto onto el. Date values that do not
// parse are skipped, matching the permissive update contract; name is
// handled by the callers because of the uniqueness check.
func (s *Service) apply(el *Element, dto ElementDTO) {
	if dto.BirthDate != nil {
		if d, err := internal.ParseDate(*dto.BirthDate); err == nil {
			el.BirthDate = &d
		} else {
			s.logger.Debug("ignoring unparsable birthDate", "kind", s.kind, "value", *dto.BirthDate)
		}
	}
	if dto.DeathDate != nil {
		if d, err := internal.ParseDate(*dto.DeathDate); err == nil {
			el.DeathDate = &d
		} else {
			s.logger.Debug("ignoring unparsable deathDate", "kind", s.kind, "value", *dto.DeathDate)
		}
	}
	if dto.ImageURL != nil {
		el.ImageURL = dto.ImageURL
	}
	if dto.WikiURL != nil {
		el.WikiURL = dto.WikiURL
	}
}
