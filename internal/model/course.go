package model

// Course represents a student cohort (course year)
type Course struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	SubjectIDs []int  `json:"subjectIds"`
}

// HasSubject reports whether the subject belongs to the course curriculum
func (c *Course) HasSubject(subjectID int) bool {
	for _, id := range c.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}

type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
