package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

// BuildSectionCatalog left-joins the section groups ("ds_nhom_to") of a
// sections response with its course list ("ds_mon_hoc") by trimmed course
// code. Unmatched codes get an empty course name; input order is kept.
func BuildSectionCatalog(raw []byte) ([]models.SectionRecord, error) {
	payload, _, _, ok := unwrapTextPayload(raw)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrMalformedPayload, "section list is not valid JSON")
	}

	root, _ := object(payload)
	data, _ := objectField(root, "data")

	names := courseNames(listField(data, "ds_mon_hoc"))

	groups := listField(data, "ds_nhom_to")
	sections := make([]models.SectionRecord, 0, len(groups))
	for _, item := range groups {
		group, isObject := object(item)
		if !isObject {
			continue
		}
		code := strings.TrimSpace(stringField(group, "ma_mon"))
		name := names[code]
		// Passthrough fields carry the joined course name as ten_mon too.
		group["ten_mon"] = name

		sections = append(sections, models.SectionRecord{
			SectionID:   stringField(group, "id_to_hoc"),
			CourseCode:  code,
			CourseName:  name,
			GroupNumber: stringField(group, "nhom_to"),
			Fields:      group,
			RawID:       rawScalar(group["id_to_hoc"]),
		})
	}
	return sections, nil
}

// courseNames maps trimmed course codes to names. Later entries win.
func courseNames(list []interface{}) map[string]string {
	names := make(map[string]string, len(list))
	for _, item := range list {
		course, isObject := object(item)
		if !isObject {
			continue
		}
		code := strings.TrimSpace(stringField(course, "ma"))
		name := stringField(course, "ten")
		if code == "" || name == "" {
			continue
		}
		names[code] = name
	}
	return names
}

func rawScalar(v interface{}) json.RawMessage {
	switch v.(type) {
	case string, json.Number:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return encoded
	default:
		return nil
	}
}

// SearchOptions bounds a section search.
type SearchOptions struct {
	MinQueryLength int
	MaxGroups      int
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = 3
	}
	if o.MaxGroups <= 0 {
		o.MaxGroups = 5
	}
	return o
}

// SearchSections matches query case-insensitively against each section's
// "code name group" text and groups hits by course name, then course code,
// in order of first appearance. Only the first MaxGroups name groups are
// returned. inCart may be nil.
func SearchSections(catalog []models.SectionRecord, query string, inCart func(sectionID string) bool, opts SearchOptions) (*models.SectionSearchResult, error) {
	opts = opts.withDefaults()
	query = strings.TrimSpace(norm.NFC.String(query))
	if utf8.RuneCountInString(query) < opts.MinQueryLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("search query must have at least %d characters", opts.MinQueryLength))
	}
	needle := strings.ToLower(query)

	result := &models.SectionSearchResult{Query: query, Groups: []models.SectionNameGroup{}}
	nameIndex := map[string]int{}
	codeIndex := map[string]map[string]int{}

	for _, section := range catalog {
		haystack := strings.ToLower(norm.NFC.String(section.CourseCode + " " + section.CourseName + " " + section.GroupNumber))
		if !strings.Contains(haystack, needle) {
			continue
		}
		result.TotalHits++

		name := section.DisplayCourseName()
		gi, seen := nameIndex[name]
		if !seen {
			gi = len(result.Groups)
			nameIndex[name] = gi
			codeIndex[name] = map[string]int{}
			result.Groups = append(result.Groups, models.SectionNameGroup{CourseName: name})
		}
		group := &result.Groups[gi]

		ci, seen := codeIndex[name][section.CourseCode]
		if !seen {
			ci = len(group.Courses)
			codeIndex[name][section.CourseCode] = ci
			group.Courses = append(group.Courses, models.SectionCodeGroup{CourseCode: section.CourseCode})
		}

		hit := models.SectionHit{SectionRecord: section, Label: section.Label()}
		if inCart != nil {
			hit.InCart = inCart(section.SectionID)
		}
		group.Courses[ci].Sections = append(group.Courses[ci].Sections, hit)
	}

	if len(result.Groups) > opts.MaxGroups {
		result.Groups = result.Groups[:opts.MaxGroups]
		result.Truncated = true
	}
	return result, nil
}

// FindSection returns the catalog entry for sectionID.
func FindSection(catalog []models.SectionRecord, sectionID string) (models.SectionRecord, bool) {
	for _, section := range catalog {
		if section.SectionID == sectionID {
			return section, true
		}
	}
	return models.SectionRecord{}, false
}
