package model

// AttendanceRecord tracks whether a booked student showed up and completed the work
type AttendanceRecord struct {
	SlotID    string `json:"slotId"`
	StudentID string `json:"studentId"`
	Attended  bool   `json:"attended"`
	Completed bool   `json:"completed"`
}
