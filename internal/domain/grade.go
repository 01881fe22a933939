package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidGrade indicates a grade outside 1-12 or an unparseable value.
var ErrInvalidGrade = errors.New("invalid grade level")

const (
	MinGrade Grade = 1
	MaxGrade Grade = 12
)

// Grade is a school grade level between 1 and 12.
type Grade int

type GradeBand string

const (
	BandPrimary         GradeBand = "Primary"
	BandMiddleSchool    GradeBand = "Middle School"
	BandSecondary       GradeBand = "Secondary"
	BandHigherSecondary GradeBand = "Higher Secondary"
)

// GradeBands lists the bands in display order.
var GradeBands = []GradeBand{BandPrimary, BandMiddleSchool, BandSecondary, BandHigherSecondary}

func (g Grade) Valid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// Band returns the category band a grade belongs to.
func (g Grade) Band() GradeBand {
	switch {
	case g <= 5:
		return BandPrimary
	case g <= 8:
		return BandMiddleSchool
	case g <= 10:
		return BandSecondary
	default:
		return BandHigherSecondary
	}
}

func (g Grade) Label() string {
	return fmt.Sprintf("Grade %d", int(g))
}

func (g Grade) String() string {
	return strconv.Itoa(int(g))
}

// GradeInfo is one entry of the grade registry.
type GradeInfo struct {
	Grade Grade
	Label string
	Band  GradeBand
}

// AllGrades returns the selectable grades in display order: band, then
// numeric value.
func AllGrades() []GradeInfo {
	out := make([]GradeInfo, 0, int(MaxGrade))
	for g := MinGrade; g <= MaxGrade; g++ {
		out = append(out, GradeInfo{Grade: g, Label: g.Label(), Band: g.Band()})
	}
	return out
}

// ParseGrade parses a single grade such as "8" or "grade8".
func ParseGrade(s string) (Grade, error) {
	raw := strings.TrimSpace(strings.ToLower(s))
	raw = strings.TrimPrefix(raw, "grade")
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	g := Grade(n)
	if !g.Valid() {
		return 0, fmt.Errorf("%w: %d is outside %d-%d", ErrInvalidGrade, n, MinGrade, MaxGrade)
	}
	return g, nil
}

// GradeSet is an unordered selection of grades without duplicates.
type GradeSet map[Grade]struct{}

func NewGradeSet(grades ...Grade) GradeSet {
	s := make(GradeSet, len(grades))
	for _, g := range grades {
		s[g] = struct{}{}
	}
	return s
}

// ParseGradeSet parses a comma separated list like "3, 8,12". Duplicates
// collapse; an empty string yields an empty set.
func ParseGradeSet(s string) (GradeSet, error) {
	set := GradeSet{}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		g, err := ParseGrade(part)
		if err != nil {
			return nil, err
		}
		set[g] = struct{}{}
	}
	return set, nil
}

func (s GradeSet) Contains(g Grade) bool {
	_, ok := s[g]
	return ok
}

func (s GradeSet) Len() int { return len(s) }

// Sorted returns the grades in display order.
func (s GradeSet) Sorted() []Grade {
	out := make([]Grade, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the set as "3,8".
func (s GradeSet) String() string {
	sorted := s.Sorted()
	parts := make([]string, len(sorted))
	for i, g := range sorted {
		parts[i] = g.String()
	}
	return strings.Join(parts, ",")
}

// Clone returns an independent copy.
func (s GradeSet) Clone() GradeSet {
	out := make(GradeSet, len(s))
	for g := range s {
		out[g] = struct{}{}
	}
	return out
}
