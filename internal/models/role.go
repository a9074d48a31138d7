package models

// Role is a lookup record naming one of ADMIN, TEACHER or STUDENT.
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
