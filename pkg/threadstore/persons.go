package threadstore

import (
	"github.com/annolab/margin/pkg/models"
)

// CreatePerson registers a new person and returns its id.
func (s *Store) CreatePerson(name, image string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.NewPerson(name, image)
	s.doc.Persons[p.ID] = p

	s.persistLocked()
	return p.ID, nil
}

// EnsurePerson returns the existing person with the given name, creating
// one when none is registered yet.
func (s *Store) EnsurePerson(name, image string) (models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.doc.Persons {
		if p.Name == name {
			return p, nil
		}
	}

	p := models.NewPerson(name, image)
	s.doc.Persons[p.ID] = p

	s.persistLocked()
	return p, nil
}

// AllPersons returns a copy of the person registry keyed by id.
func (s *Store) AllPersons() map[string]models.Person {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.Person, len(s.doc.Persons))
	for id, p := range s.doc.Persons {
		out[id] = p
	}
	return out
}
