package model

import (
	json "github.com/goccy/go-json"
)

// MaxCapacity — верхняя граница вместимости слота
const MaxCapacity = 100

// Slot — конкретная датированная отработка, на которую записываются студенты.
//
// CourseIDs всегда непустой упорядоченный набор; одиночный courseId из
// старого формата хранения принимается при чтении и отдаётся как производное
// поле (первый элемент) при записи, второй источник истины не возникает.
type Slot struct {
	ID         string   `json:"id"`
	ScheduleID string   `json:"scheduleId,omitempty"`
	TeacherID  string   `json:"teacherId"`
	Subject    string   `json:"subject"`
	CourseIDs  []int    `json:"courseIds"`
	Date       string   `json:"date"`     // YYYY-MM-DD, local calendar date
	TimeFrom   string   `json:"timeFrom"` // HH:MM
	TimeTo     string   `json:"timeTo"`   // HH:MM
	Capacity   int      `json:"capacity"`
	Students   []string `json:"students"` // roster, insertion order = booking order
}

type slotAlias Slot

type slotJSON struct {
	slotAlias
	LegacyCourseID *int `json:"courseId,omitempty"`
}

func (s Slot) MarshalJSON() ([]byte, error) {
	doc := slotJSON{slotAlias: slotAlias(s)}
	if doc.Students == nil {
		doc.Students = []string{}
	}
	if len(s.CourseIDs) > 0 {
		first := s.CourseIDs[0]
		doc.LegacyCourseID = &first
	}
	return json.Marshal(doc)
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	var doc slotJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*s = Slot(doc.slotAlias)
	if len(s.CourseIDs) == 0 && doc.LegacyCourseID != nil {
		s.CourseIDs = []int{*doc.LegacyCourseID}
	}
	s.CourseIDs = NormalizeCourseIDs(s.CourseIDs)
	if s.Students == nil {
		s.Students = []string{}
	}
	return nil
}

// HasStudent reports whether the student is on the roster
func (s *Slot) HasStudent(studentID string) bool {
	for _, id := range s.Students {
		if id == studentID {
			return true
		}
	}
	return false
}

// HasCourse reports whether the slot is open to the given course
func (s *Slot) HasCourse(courseID int) bool {
	for _, id := range s.CourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

// IsFull reports whether the roster reached capacity
func (s *Slot) IsFull() bool {
	return len(s.Students) >= s.Capacity
}

// FreeSpots returns the number of remaining places
func (s *Slot) FreeSpots() int {
	n := s.Capacity - len(s.Students)
	if n < 0 {
		return 0
	}
	return n
}

// RemoveStudent deletes the student from the roster preserving the
// relative order of the remaining entries.
func (s *Slot) RemoveStudent(studentID string) bool {
	for i, id := range s.Students {
		if id == studentID {
			s.Students = append(s.Students[:i], s.Students[i+1:]...)
			return true
		}
	}
	return false
}
