package service

import (
	"encoding/json"
	"strings"

	"github.com/noah-isme/qldt-dashboard/internal/models"
)

// MalformedPayloadMessage is reported when the registered-courses body is not JSON.
const MalformedPayloadMessage = "Dữ liệu trả về không đúng định dạng JSON"

// NormalizeRegisteredCourses flattens a registered-courses response into
// typed records. It never fails: a body that is not JSON yields an empty
// result carrying Error and the raw text, and missing nested fields become
// empty or zero values. Records without a "to_hoc" object are skipped.
func NormalizeRegisteredCourses(raw []byte) *models.CourseResult {
	payload, encoded, text, ok := unwrapTextPayload(raw)
	if !ok {
		rawData, _ := json.Marshal(map[string]string{"raw_response": text})
		return &models.CourseResult{
			Courses: []models.CourseRecord{},
			RawData: rawData,
			Error:   MalformedPayloadMessage,
		}
	}

	root, _ := object(payload)
	data, _ := objectField(root, "data")

	courses := make([]models.CourseRecord, 0)
	for _, item := range listField(data, "ds_kqdkmh") {
		record, isObject := object(item)
		if !isObject {
			continue
		}
		section, hasSection := objectField(record, "to_hoc")
		if !hasSection {
			continue
		}
		courses = append(courses, courseRecord(record, section))
	}

	totalCredits := 0
	for _, course := range courses {
		totalCredits += course.Credits
	}

	return &models.CourseResult{
		Courses:      courses,
		TotalCredits: totalCredits,
		TotalCourses: len(courses),
		TotalItems:   intField(data, "total_items", len(courses)),
		MinCredits:   intField(data, "so_tin_chi_min", 0),
		RawData:      json.RawMessage(encoded),
	}
}

func courseRecord(record, section map[string]interface{}) models.CourseRecord {
	tkb := stringField(section, "tkb")
	return models.CourseRecord{
		CourseID:         stringField(section, "ma_mon"),
		CourseName:       stringField(section, "ten_mon"),
		Credits:          ParseCredits(section["so_tc"]),
		Lecturer:         ExtractLecturer(tkb),
		Schedule:         ExtractSchedule(tkb),
		Status:           stringField(record, "trang_thai_mon"),
		GroupID:          stringField(section, "id_to_hoc"),
		ClassName:        stringField(section, "lop"),
		WeekSchedule:     tkb,
		GroupNumber:      stringField(section, "nhom_to"),
		RegistrationDate: stringField(record, "ngay_dang_ky"),
		EnglishName:      strings.TrimSpace(stringField(section, "ten_mon_eg")),
	}
}
