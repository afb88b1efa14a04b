package models

import (
	"time"
)

// Member mirrors an AlmaShines user record. The JSON tags match the raw field
// names the AlmaShines API returns (yes, "current-city" really has a hyphen),
// so the same struct decodes the snapshot file and serves API responses.
type Member struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	ProfileID   string `gorm:"uniqueIndex;not null" json:"unique_profile_id"`
	Name        string `json:"name"`
	Email       string `json:"primary_email"`
	Role        int    `json:"role"`
	City        string `json:"current-city"`
	State       string `json:"current-state"`
	Country     string `json:"current-country"`
	LinkedIn    string `json:"profile_url_linkedin,omitempty"`
	Phone       string `json:"primary_phone_number,omitempty"`
	Designation string `json:"designation,omitempty"`
	Company     string `json:"company,omitempty"`
	ProfilePic  string `json:"profile_pic,omitempty"`

	// Number of work experience entries on the profile. The raw snapshot
	// carries the full list, we only need the count for stats.
	WorkExperienceCount int `json:"-"`
}

// JobPosting is a community job opportunity.
type JobPosting struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Designation string `gorm:"not null" json:"designation"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	JobType     string `json:"job_type"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// SyncState records one extraction run so we know when the data was last
// refreshed and how much came back.
type SyncState struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
	JobCount    int       `json:"job_count"`
	Source      string    `json:"source"`
}
