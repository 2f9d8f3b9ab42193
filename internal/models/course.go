package models

import (
	"encoding/json"
	"strconv"
)

// CourseRecord is one registered course flattened from the upstream payload.
type CourseRecord struct {
	CourseID         string `json:"course_id"`
	CourseName       string `json:"course_name"`
	Credits          int    `json:"credits"`
	Lecturer         string `json:"lecturer"`
	Schedule         string `json:"schedule"`
	Status           string `json:"status"`
	GroupID          string `json:"group_id"`
	ClassName        string `json:"class_name"`
	WeekSchedule     string `json:"week_schedule"`
	GroupNumber      string `json:"group_number"`
	RegistrationDate string `json:"registration_date"`
	EnglishName      string `json:"english_name"`
}

// CourseRecordColumns lists the export columns in record order.
var CourseRecordColumns = []string{
	"course_id",
	"course_name",
	"credits",
	"lecturer",
	"schedule",
	"status",
	"group_id",
	"class_name",
	"week_schedule",
	"group_number",
	"registration_date",
	"english_name",
}

// Columns returns the record keyed by its export column names.
func (r CourseRecord) Columns() map[string]string {
	return map[string]string{
		"course_id":         r.CourseID,
		"course_name":       r.CourseName,
		"credits":           strconv.Itoa(r.Credits),
		"lecturer":          r.Lecturer,
		"schedule":          r.Schedule,
		"status":            r.Status,
		"group_id":          r.GroupID,
		"class_name":        r.ClassName,
		"week_schedule":     r.WeekSchedule,
		"group_number":      r.GroupNumber,
		"registration_date": r.RegistrationDate,
		"english_name":      r.EnglishName,
	}
}

// CourseResult is the normalized registered-courses response.
type CourseResult struct {
	Courses      []CourseRecord  `json:"courses"`
	TotalCredits int             `json:"total_credits"`
	TotalCourses int             `json:"total_courses"`
	TotalItems   int             `json:"total_items"`
	MinCredits   int             `json:"min_credits"`
	RawData      json.RawMessage `json:"raw_data,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// WithoutRaw returns a shallow copy stripped of the raw payload.
func (r *CourseResult) WithoutRaw() *CourseResult {
	if r == nil {
		return nil
	}
	clone := *r
	clone.RawData = nil
	return &clone
}
