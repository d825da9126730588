package models

import "gorm.io/gorm"

const (
	JobStatusOpen   = "OPEN"
	JobStatusClosed = "CLOSED"
)

type Job struct {
	gorm.Model
	Title          string `json:"title" gorm:"not null"`
	Description    string `json:"description" gorm:"type:text"`
	Location       string `json:"location"`
	EmploymentType string `json:"employmentType"` // full_time, part_time, contract
	Status         string `json:"status" gorm:"type:varchar(10);default:OPEN;index"` // OPEN, CLOSED
	PostedByID     uint   `json:"postedByID" gorm:"not null"`

	Applications []JobApplication `json:"applications,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

type JobApplication struct {
	gorm.Model
	JobID       uint   `json:"jobID" gorm:"not null;index;uniqueIndex:idx_application_user_job"`
	ApplicantID uint   `json:"applicantID" gorm:"not null;index;uniqueIndex:idx_application_user_job"`
	Applicant   User   `json:"applicant" gorm:"foreignKey:ApplicantID"`
	CoverLetter string `json:"coverLetter" gorm:"type:text"`
	CVURL       string `json:"cvURL" gorm:"not null"`
}
