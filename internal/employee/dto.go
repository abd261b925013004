package employee

import (
	"encoding/json"

	"github.com/frahmantamala/hrm/internal/core/role"
)

// CreateEmployeeDTO either links an existing user or, when User is nil,
// registers a new one under Email. Owners are only created with their company.
type CreateEmployeeDTO struct {
	User                 *int64          `json:"user" validate:"omitempty,gt=0"`
	Email                string          `json:"email" validate:"omitempty,email,max=254"`
	FirstName            *string         `json:"first_name" validate:"omitempty,max=100"`
	LastName             *string         `json:"last_name" validate:"omitempty,max=100"`
	Photo                string          `json:"photo" validate:"max=255"`
	Role                 string          `json:"role" validate:"omitempty,oneof=manager employee"`
	Manager              *int64          `json:"manager" validate:"omitempty,gt=0"`
	Gender               string          `json:"gender" validate:"omitempty,oneof=male female other"`
	EmploymentDate       *Date           `json:"employment_date"`
	TerminationDate      *Date           `json:"termination_date"`
	IdentificationNumber string          `json:"identification_number" validate:"max=50"`
	ContractType         string          `json:"contract_type" validate:"omitempty,oneof=indefinite limited"`
	ContractEndDate      *Date           `json:"contract_end_date"`
	PhoneNumber          string          `json:"phone_number" validate:"max=30"`
	BusinessPhoneNumber  string          `json:"business_phone_number" validate:"max=30"`
	Attributes           json.RawMessage `json:"attributes"`
}

func (d CreateEmployeeDTO) employee() *Employee {
	first, last := DefaultFirstName, DefaultLastName
	if d.FirstName != nil || d.LastName != nil {
		first, last = "", ""
		if d.FirstName != nil {
			first = *d.FirstName
		}
		if d.LastName != nil {
			last = *d.LastName
		}
	}

	r := role.Employee
	if d.Role != "" {
		r = role.Role(d.Role)
	}
	contract := d.ContractType
	if contract == "" {
		contract = ContractIndefinite
	}

	return &Employee{
		FirstName:            first,
		LastName:             last,
		Photo:                d.Photo,
		Role:                 r,
		ManagerID:            d.Manager,
		Gender:               d.Gender,
		EmploymentDate:       d.EmploymentDate,
		TerminationDate:      d.TerminationDate,
		IdentificationNumber: d.IdentificationNumber,
		ContractType:         contract,
		ContractEndDate:      d.ContractEndDate,
		PhoneNumber:          d.PhoneNumber,
		BusinessPhoneNumber:  d.BusinessPhoneNumber,
		IsActive:             true,
		Attributes:           attributesOrEmpty(d.Attributes),
	}
}

// UpdateEmployeeDTO is a partial update. is_active is accepted but ignored.
type UpdateEmployeeDTO struct {
	FirstName            *string         `json:"first_name" validate:"omitempty,max=100"`
	LastName             *string         `json:"last_name" validate:"omitempty,max=100"`
	Photo                *string         `json:"photo" validate:"omitempty,max=255"`
	Role                 *string         `json:"role" validate:"omitempty,oneof=manager employee"`
	Manager              *int64          `json:"manager" validate:"omitempty,gt=0"`
	Gender               *string         `json:"gender" validate:"omitempty,oneof=male female other"`
	EmploymentDate       *Date           `json:"employment_date"`
	TerminationDate      *Date           `json:"termination_date"`
	IdentificationNumber *string         `json:"identification_number" validate:"omitempty,max=50"`
	ContractType         *string         `json:"contract_type" validate:"omitempty,oneof=indefinite limited"`
	ContractEndDate      *Date           `json:"contract_end_date"`
	PhoneNumber          *string         `json:"phone_number" validate:"omitempty,max=30"`
	BusinessPhoneNumber  *string         `json:"business_phone_number" validate:"omitempty,max=30"`
	IsActive             *bool           `json:"is_active"`
	Attributes           json.RawMessage `json:"attributes"`
}

func (d UpdateEmployeeDTO) apply(e *Employee) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&e.FirstName, d.FirstName)
	setString(&e.LastName, d.LastName)
	setString(&e.Photo, d.Photo)
	setString(&e.Gender, d.Gender)
	setString(&e.IdentificationNumber, d.IdentificationNumber)
	setString(&e.ContractType, d.ContractType)
	setString(&e.PhoneNumber, d.PhoneNumber)
	setString(&e.BusinessPhoneNumber, d.BusinessPhoneNumber)

	if d.Role != nil {
		e.Role = role.Role(*d.Role)
	}
	if d.Manager != nil {
		manager := *d.Manager
		e.ManagerID = &manager
	}
	if d.EmploymentDate != nil {
		e.EmploymentDate = d.EmploymentDate
	}
	if d.TerminationDate != nil {
		e.TerminationDate = d.TerminationDate
	}
	if d.ContractEndDate != nil {
		e.ContractEndDate = d.ContractEndDate
	}
	if len(d.Attributes) > 0 {
		e.Attributes = attributesOrEmpty(d.Attributes)
	}
}

type PersonalDetailDTO struct {
	BirthDate             *Date   `json:"birth_date"`
	Nationality           *string `json:"nationality" validate:"omitempty,max=100"`
	MaritalStatus         *string `json:"marital_status" validate:"omitempty,oneof=single married divorced widowed"`
	Address               *string `json:"address"`
	City                  *string `json:"city" validate:"omitempty,max=100"`
	Country               *string `json:"country" validate:"omitempty,max=100"`
	PersonalEmail         *string `json:"personal_email" validate:"omitempty,email,max=254"`
	EmergencyContactName  *string `json:"emergency_contact_name" validate:"omitempty,max=150"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" validate:"omitempty,max=30"`
}

func (d PersonalDetailDTO) apply(pd *PersonalDetail) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	if d.BirthDate != nil {
		pd.BirthDate = d.BirthDate
	}
	setString(&pd.Nationality, d.Nationality)
	setString(&pd.MaritalStatus, d.MaritalStatus)
	setString(&pd.Address, d.Address)
	setString(&pd.City, d.City)
	setString(&pd.Country, d.Country)
	setString(&pd.PersonalEmail, d.PersonalEmail)
	setString(&pd.EmergencyContactName, d.EmergencyContactName)
	setString(&pd.EmergencyContactPhone, d.EmergencyContactPhone)
}
