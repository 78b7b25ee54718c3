package model

import (
	json "github.com/goccy/go-json"
)

// RecurringSchedule — еженедельный шаблон доступности преподавателя,
// из которого генерируются датированные слоты.
//
// DayOfWeek использует внутреннюю нумерацию: 0 = понедельник … 6 = воскресенье.
type RecurringSchedule struct {
	ID        string `json:"id"`
	TeacherID string `json:"teacherId"`
	Subject   string `json:"subject"`
	CourseIDs []int  `json:"courseIds"`
	DayOfWeek int    `json:"dayOfWeek"`
	TimeFrom  string `json:"timeFrom"` // HH:MM
	TimeTo    string `json:"timeTo"`   // HH:MM
	Capacity  int    `json:"capacity"`
}

type scheduleAlias RecurringSchedule

// legacy persisted rows carry a singular courseId instead of courseIds
type scheduleJSON struct {
	scheduleAlias
	LegacyCourseID *int `json:"courseId,omitempty"`
}

func (s RecurringSchedule) MarshalJSON() ([]byte, error) {
	doc := scheduleJSON{scheduleAlias: scheduleAlias(s)}
	if len(s.CourseIDs) > 0 {
		first := s.CourseIDs[0]
		doc.LegacyCourseID = &first
	}
	return json.Marshal(doc)
}

func (s *RecurringSchedule) UnmarshalJSON(data []byte) error {
	var doc scheduleJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*s = RecurringSchedule(doc.scheduleAlias)
	if len(s.CourseIDs) == 0 && doc.LegacyCourseID != nil {
		s.CourseIDs = []int{*doc.LegacyCourseID}
	}
	s.CourseIDs = NormalizeCourseIDs(s.CourseIDs)
	return nil
}
