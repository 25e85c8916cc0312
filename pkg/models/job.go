package models

import "time"

// Contract types as stored on the jobs table
const (
	ContractTypeFullTime   = "full_time"
	ContractTypePartTime   = "part_time"
	ContractTypeApprentice = "apprenticeship"
)

// Job represents a hiring requisition owned by a company.
// It is treated as immutable for the duration of a matching run.
type Job struct {
	ID                  string    `json:"id"`
	CompanyID           string    `json:"company_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Track               string    `json:"track"`
	ContractType        string    `json:"contract_type"`
	IsRemote            bool      `json:"is_remote"`
	SalaryMin           *int      `json:"salary_min,omitempty"`
	SalaryMax           *int      `json:"salary_max,omitempty"`
	MinExperienceMonths int       `json:"min_experience_months"`
	Benefits            []string  `json:"benefits,omitempty"`
	Embedding           []float32 `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
}
