package employee

import (
	"encoding/json"
	"time"
)

type Employee struct {
	ID                   int64           `gorm:"primaryKey"`
	UserID               int64           `gorm:"column:user_id;uniqueIndex;not null"`
	FirstName            string          `gorm:"column:first_name;not null"`
	LastName             string          `gorm:"column:last_name;not null"`
	Photo                string          `gorm:"column:photo"`
	Role                 string          `gorm:"column:role;not null"`
	ManagerID            *int64          `gorm:"column:manager_id"`
	Gender               string          `gorm:"column:gender"`
	EmploymentDate       *time.Time      `gorm:"column:employment_date"`
	TerminationDate      *time.Time      `gorm:"column:termination_date"`
	IdentificationNumber string          `gorm:"column:identification_number"`
	ContractType         string          `gorm:"column:contract_type"`
	ContractEndDate      *time.Time      `gorm:"column:contract_end_date"`
	PhoneNumber          string          `gorm:"column:phone_number"`
	BusinessPhoneNumber  string          `gorm:"column:business_phone_number"`
	IsActive             bool            `gorm:"column:is_active;not null"`
	Attributes           json.RawMessage `gorm:"column:attributes;type:jsonb"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}

type PersonalDetail struct {
	ID                    int64      `gorm:"primaryKey"`
	EmployeeID            int64      `gorm:"column:employee_id;uniqueIndex;not null"`
	BirthDate             *time.Time `gorm:"column:birth_date"`
	Nationality           string     `gorm:"column:nationality"`
	MaritalStatus         string     `gorm:"column:marital_status"`
	Address               string     `gorm:"column:address"`
	City                  string     `gorm:"column:city"`
	Country               string     `gorm:"column:country"`
	PersonalEmail         string     `gorm:"column:personal_email"`
	EmergencyContactName  string     `gorm:"column:emergency_contact_name"`
	EmergencyContactPhone string     `gorm:"column:emergency_contact_phone"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (PersonalDetail) TableName() string {
	return "personal_details"
}
