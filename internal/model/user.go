package model

// User roles
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleTeacher  = "teacher"
	RoleStudent  = "student"
)

type User struct {
	ID          string   `json:"id"`
	Login       string   `json:"login"`
	Password    string   `json:"password,omitempty"` // bcrypt hash
	Role        string   `json:"role"`
	FIO         string   `json:"fio"`
	Group       string   `json:"group,omitempty"`             // only for students
	Course      int      `json:"course,omitempty"`            // only for students
	StudentCard string   `json:"studentCardNumber,omitempty"` // only for self-registered students
	Subjects    []string `json:"subjects,omitempty"`          // only for teachers
}

// IsTeacher checks if the user has the teacher role
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// Teaches reports whether the subject is in the teacher's subject list
func (u *User) Teaches(subject string) bool {
	for _, s := range u.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// Public returns a copy safe to render (password hash stripped)
func (u User) Public() User {
	u.Password = ""
	return u
}
