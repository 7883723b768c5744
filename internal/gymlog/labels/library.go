package labels

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed library.yaml
var defaultLibraryYaml []byte

var ErrDuplicateExercise = errors.New("duplicate library exercise")

type Exercise struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	VideoURL      string   `yaml:"video_url" json:"videoUrl"`
	PrimaryMuscle string   `yaml:"primary_muscle" json:"primaryMuscle"`
	Tags          []string `yaml:"tags" json:"tags"`
}

// Library is the static exercise -> muscle group lookup. Read-only once built.
type Library struct {
	exercises []Exercise
	byName    map[string]Exercise
}

// LoadDefault parses the library embedded in the binary.
func LoadDefault() (*Library, error) {
	return Load(defaultLibraryYaml)
}

func Load(data []byte) (*Library, error) {
	var exercises []Exercise
	if err := yaml.Unmarshal(data, &exercises); err != nil {
		return nil, fmt.Errorf("unmarshal exercise library: %w", err)
	}
	return NewLibrary(exercises)
}

func NewLibrary(exercises []Exercise) (*Library, error) {
	lib := &Library{
		exercises: make([]Exercise, 0, len(exercises)),
		byName:    make(map[string]Exercise, len(exercises)),
	}
	for _, e := range exercises {
		key := nameKey(e.Name)
		if key == "" {
			continue
		}
		if _, ok := lib.byName[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateExercise, e.Name)
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		lib.byName[key] = e
		lib.exercises = append(lib.exercises, e)
	}
	sort.Slice(lib.exercises, func(i, j int) bool {
		return lib.exercises[i].Name < lib.exercises[j].Name
	})
	return lib, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (l *Library) Lookup(name string) (Exercise, bool) {
	e, ok := l.byName[nameKey(name)]
	return e, ok
}

func (l *Library) PrimaryMuscle(name string) (string, bool) {
	e, ok := l.Lookup(name)
	if !ok || e.PrimaryMuscle == "" {
		return "", false
	}
	return e.PrimaryMuscle, true
}

func (l *Library) All() []Exercise {
	all := make([]Exercise, len(l.exercises))
	copy(all, l.exercises)
	return all
}

// Muscles lists the distinct primary muscle groups, sorted.
func (l *Library) Muscles() []string {
	seen := make(map[string]bool)
	muscles := make([]string, 0)
	for _, e := range l.exercises {
		if e.PrimaryMuscle == "" || seen[e.PrimaryMuscle] {
			continue
		}
		seen[e.PrimaryMuscle] = true
		muscles = append(muscles, e.PrimaryMuscle)
	}
	sort.Strings(muscles)
	return muscles
}

// Search matches the query against name, primary muscle and tags.
// An empty query returns everything; muscle, when set, must match exactly
// (case-insensitive).
func (l *Library) Search(query, muscle string) []Exercise {
	q := nameKey(query)
	m := nameKey(muscle)

	found := make([]Exercise, 0)
	for _, e := range l.exercises {
		if m != "" && nameKey(e.PrimaryMuscle) != m {
			continue
		}
		if q == "" || matches(e, q) {
			found = append(found, e)
		}
	}
	return found
}

func matches(e Exercise, q string) bool {
	if strings.Contains(strings.ToLower(e.Name), q) ||
		strings.Contains(strings.ToLower(e.PrimaryMuscle), q) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
