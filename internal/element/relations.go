package element

import (
	"log/slog"

	"github.com/sciadvances/catalog-api/internal"
)

// Graph maintains the bidirectional associations between catalog kinds in
// one place. Both sides of an edge are backed by the same join rows, so an
// add or remove is symmetric regardless of which side initiates; an entity
// never mutates its counterpart's collection on its own.
type Graph struct {
	repos  map[Kind]RepositoryAPI
	logger *slog.Logger
}

func NewGraph(logger *slog.Logger, repos ...RepositoryAPI) *Graph {
	byKind := make(map[Kind]RepositoryAPI, len(repos))
	for _, r := range repos {
		byKind[r.Kind()] = r
	}
	return &Graph{repos: byKind, logger: logger}
}

// Repo returns the repository handling a kind.
func (g *Graph) Repo(k Kind) RepositoryAPI {
	return g.repos[k]
}

// Related lists the elements of kind other associated with an owner, ordered
// by id ascending. Missing owner yields 404.
func (g *Graph) Related(owner Kind, ownerID int64, other Kind) ([]*Element, error) {
	ownerRepo := g.repos[owner]
	el, err := ownerRepo.ByID(ownerID)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	if el == nil {
		return nil, internal.NewNotFoundError()
	}

	related, err := ownerRepo.Related(ownerID, other)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	return related, nil
}

// AddEdge inserts the association between owner and counterpart. Adding an
// existing edge is a no-op. A missing owner yields 404, a missing
// counterpart 406: the request shape is valid but the referenced second
// resource does not exist.
func (g *Graph) AddEdge(owner Kind, ownerID int64, other Kind, otherID int64) (*Element, error) {
	el, err := g.loadEndpoints(owner, ownerID, other, otherID)
	if err != nil {
		return nil, err
	}

	if !containsID(el.Related[other], otherID) {
		if err := g.repos[owner].AddRelation(ownerID, other, otherID); err != nil {
			g.logger.Error("failed to add relation", "owner", owner, "id", ownerID,
				"other", other, "otherId", otherID, "error", err)
			return nil, internal.NewInternalError(err)
		}
	}
	return g.reload(owner, ownerID)
}

// RemoveEdge removes the association symmetrically. Removing a non-existent
// edge is a no-op.
func (g *Graph) RemoveEdge(owner Kind, ownerID int64, other Kind, otherID int64) (*Element, error) {
	el, err := g.loadEndpoints(owner, ownerID, other, otherID)
	if err != nil {
		return nil, err
	}

	if containsID(el.Related[other], otherID) {
		if err := g.repos[owner].RemoveRelation(ownerID, other, otherID); err != nil {
			g.logger.Error("failed to remove relation", "owner", owner, "id", ownerID,
				"other", other, "otherId", otherID, "error", err)
			return nil, internal.NewInternalError(err)
		}
	}
	return g.reload(owner, ownerID)
}

func (g *Graph) loadEndpoints(owner Kind, ownerID int64, other Kind, otherID int64) (*Element, error) {
	el, err := g.repos[owner].ByID(ownerID)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	if el == nil {
		return nil, internal.NewNotFoundError()
	}

	counterpart, err := g.repos[other].ByID(otherID)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	if counterpart == nil {
		return nil, internal.NewNotAcceptableError()
	}
	return el, nil
}

func (g *Graph) reload(owner Kind, ownerID int64) (*Element, error) {
	el, err := g.repos[owner].ByID(ownerID)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	if el == nil {
		return nil, internal.NewNotFoundError()
	}
	return el, nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
