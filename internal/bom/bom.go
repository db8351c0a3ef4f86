// Package bom loads a self-contained bill of materials from YAML and serves it as the
// component store and failure-mode catalog of an offline calculation.
package bom

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-fmeda/internal/catalog"
	"github.com/miradorstack/mirador-fmeda/internal/models"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

// File is the on-disk BOM document. Components refer to variants and profiles by name.
type File struct {
	Project      string                    `yaml:"project"`
	ProjectID    uuid.UUID                 `yaml:"project_id"`
	Profiles     []models.MissionProfile   `yaml:"profiles"`
	Variants     []models.ComponentVariant `yaml:"variants"`
	Components   []Line                    `yaml:"components"`
	FailureModes []models.FailureMode      `yaml:"failure_modes"`
}

// Line is one BOM component with optional variant and profile references. An omitted
// quantity means one installed part.
type Line struct {
	models.Component `yaml:",inline"`
	Quantity         *int   `yaml:"quantity"`
	Variant          string `yaml:"variant"`
	Profile          string `yaml:"profile"`
}

// Store holds a parsed BOM.
type Store struct {
	*catalog.MemoryStore

	projectID   uuid.UUID
	projectName string
	modes       []models.FailureMode

	mu         sync.RWMutex
	order      []uuid.UUID
	components map[uuid.UUID]models.Component
	variants   map[uuid.UUID]models.ComponentVariant
	profiles   map[uuid.UUID]models.MissionProfile
}

// Load reads and parses the BOM at path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bom: %w", err)
	}
	return Parse(data)
}

// Parse builds a Store from a YAML document. Records without ids get ids derived from
// their names, so repeated loads of the same file agree.
func Parse(data []byte) (*Store, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse bom: %w", err)
	}

	projectID := f.ProjectID
	if projectID == uuid.Nil {
		projectID = stableID("project", f.Project)
	}
	s := &Store{
		MemoryStore: catalog.NewMemoryStore(),
		projectID:   projectID,
		projectName: f.Project,
		components:  make(map[uuid.UUID]models.Component, len(f.Components)),
		variants:    make(map[uuid.UUID]models.ComponentVariant, len(f.Variants)),
		profiles:    make(map[uuid.UUID]models.MissionProfile, len(f.Profiles)),
	}

	profileByName := make(map[string]uuid.UUID, len(f.Profiles))
	for _, p := range f.Profiles {
		if p.ID == uuid.Nil {
			p.ID = stableID("profile", p.Name)
		}
		s.profiles[p.ID] = p
		profileByName[p.Name] = p.ID
	}
	variantByName := make(map[string]uuid.UUID, len(f.Variants))
	for _, v := range f.Variants {
		if v.ID == uuid.Nil {
			v.ID = stableID("variant", v.Name)
		}
		s.variants[v.ID] = v
		variantByName[v.Name] = v.ID
	}

	for i, line := range f.Components {
		c := line.Component
		if c.ManufacturerPartNumber == "" {
			return nil, fmt.Errorf("component %d: mpn is required", i)
		}
		c.Quantity = 1
		if line.Quantity != nil {
			if *line.Quantity < 1 {
				return nil, fmt.Errorf("component %s: quantity must be at least 1, got %d", c.ManufacturerPartNumber, *line.Quantity)
			}
			c.Quantity = *line.Quantity
		}
		if c.ID == uuid.Nil {
			c.ID = stableID("component", fmt.Sprintf("%s/%d/%s", c.ReferenceDesignator, i, c.ManufacturerPartNumber))
		}
		c.ProjectID = projectID
		if line.Variant != "" {
			id, ok := variantByName[line.Variant]
			if !ok {
				return nil, fmt.Errorf("component %s: unknown variant %q", c.ManufacturerPartNumber, line.Variant)
			}
			c.VariantID = &id
		}
		if line.Profile != "" {
			id, ok := profileByName[line.Profile]
			if !ok {
				return nil, fmt.Errorf("component %s: unknown profile %q", c.ManufacturerPartNumber, line.Profile)
			}
			c.MissionProfileID = &id
		}
		s.components[c.ID] = c
		s.order = append(s.order, c.ID)
	}

	for _, m := range f.FailureModes {
		if m.ID == uuid.Nil {
			m.ID = stableID("mode", m.MPN+"/"+m.Family+"/"+m.Mode)
		}
		s.Add(m)
		s.modes = append(s.modes, m)
	}
	return s, nil
}

func stableID(kind, name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("mirador-fmeda:"+kind+":"+strings.TrimSpace(name)))
}

// ProjectID is the project every component of the BOM belongs to.
func (s *Store) ProjectID() uuid.UUID {
	return s.projectID
}

// ProjectName is the BOM's project label.
func (s *Store) ProjectName() string {
	return s.projectName
}

// Profiles returns the mission profiles of the BOM.
func (s *Store) Profiles() []models.MissionProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MissionProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out
}

// Variants returns the component variants of the BOM.
func (s *Store) Variants() []models.ComponentVariant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ComponentVariant, 0, len(s.variants))
	for _, v := range s.variants {
		out = append(out, v)
	}
	return out
}

// FailureModes returns the catalog entries declared in the file, in file order.
func (s *Store) FailureModes() []models.FailureMode {
	return append([]models.FailureMode(nil), s.modes...)
}

// Components returns the BOM lines in file order.
func (s *Store) Components() []models.Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Component, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.components[id])
	}
	return out
}

// ListProjectComponents returns the BOM lines when projectID is the BOM's project.
func (s *Store) ListProjectComponents(ctx context.Context, projectID uuid.UUID) ([]models.Component, error) {
	if projectID != s.projectID {
		return []models.Component{}, nil
	}
	return s.Components(), nil
}

// GetComponent looks up a BOM line.
func (s *Store) GetComponent(ctx context.Context, id uuid.UUID) (models.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.components[id]
	if !ok {
		return models.Component{}, utils.NotFound("bom.GetComponent", "component", id)
	}
	return c, nil
}

// GetVariant looks up a variant.
func (s *Store) GetVariant(ctx context.Context, id uuid.UUID) (models.ComponentVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.variants[id]
	if !ok {
		return models.ComponentVariant{}, utils.NotFound("bom.GetVariant", "variant", id)
	}
	return v, nil
}

// GetMissionProfile looks up a mission profile.
func (s *Store) GetMissionProfile(ctx context.Context, id uuid.UUID) (models.MissionProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return models.MissionProfile{}, utils.NotFound("bom.GetMissionProfile", "mission profile", id)
	}
	return p, nil
}

// CreateFailureMode adds a catalog entry to the in-memory catalog.
func (s *Store) CreateFailureMode(ctx context.Context, m models.FailureMode) (models.FailureMode, error) {
	if m.MPN == "" && m.Family == "" {
		return models.FailureMode{}, utils.InvalidRequest("bom.CreateFailureMode", "failure mode needs an mpn or a family")
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()
	s.Add(m)
	return m, nil
}
