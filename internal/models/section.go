package models

import (
	"encoding/json"
	"fmt"
)

// UnknownCourseName stands in for sections whose course code has no catalog entry.
const UnknownCourseName = "Không rõ"

// SectionRecord is one registrable section group annotated with its course name.
type SectionRecord struct {
	SectionID   string                 `json:"section_id"`
	CourseCode  string                 `json:"course_code"`
	CourseName  string                 `json:"course_name"`
	GroupNumber string                 `json:"group_number"`
	Fields      map[string]interface{} `json:"fields,omitempty"`
	// RawID is id_to_hoc exactly as the upstream encoded it.
	RawID json.RawMessage `json:"-"`
}

// DisplayCourseName falls back to UnknownCourseName.
func (s SectionRecord) DisplayCourseName() string {
	if s.CourseName == "" {
		return UnknownCourseName
	}
	return s.CourseName
}

// Label is the human-readable cart label for the section.
func (s SectionRecord) Label() string {
	return fmt.Sprintf("%s - %s (Nhóm %s)", s.CourseCode, s.DisplayCourseName(), s.GroupNumber)
}

// CartEntry builds the pending selection for this section.
func (s SectionRecord) CartEntry() CartEntry {
	return CartEntry{SectionID: s.SectionID, Label: s.Label(), RawID: s.RawID}
}

// SectionHit is one search match.
type SectionHit struct {
	SectionRecord
	Label  string `json:"label"`
	InCart bool   `json:"in_cart"`
}

// SectionCodeGroup gathers hits sharing a course code.
type SectionCodeGroup struct {
	CourseCode string       `json:"course_code"`
	Sections   []SectionHit `json:"sections"`
}

// SectionNameGroup gathers code groups sharing a course name.
type SectionNameGroup struct {
	CourseName string             `json:"course_name"`
	Courses    []SectionCodeGroup `json:"courses"`
}

// SectionSearchResult is the grouped answer to a section search.
type SectionSearchResult struct {
	Query     string             `json:"query"`
	Groups    []SectionNameGroup `json:"groups"`
	TotalHits int                `json:"total_hits"`
	Truncated bool               `json:"truncated"`
}
