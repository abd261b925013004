package employee

import (
	"encoding/json"
	"errors"
	"time"

	employeeDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/employee"
	"github.com/frahmantamala/hrm/internal/core/role"
)

const (
	DefaultFirstName = "John"
	DefaultLastName  = "Doe"

	ContractIndefinite = "indefinite"
	ContractLimited    = "limited"
)

var (
	// ErrEmailTaken is returned when a new user would reuse a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAlreadyEmployed is returned when the user already has an employee
	// record in the tenant.
	ErrAlreadyEmployed = errors.New("user already has an employee record")
)

type Employee struct {
	ID                   int64           `json:"id"`
	UserID               int64           `json:"user"`
	FirstName            string          `json:"first_name"`
	LastName             string          `json:"last_name"`
	Photo                string          `json:"photo"`
	Role                 role.Role       `json:"role"`
	ManagerID            *int64          `json:"manager"`
	Gender               string          `json:"gender"`
	EmploymentDate       *Date           `json:"employment_date"`
	TerminationDate      *Date           `json:"termination_date"`
	IdentificationNumber string          `json:"identification_number"`
	ContractType         string          `json:"contract_type"`
	ContractEndDate      *Date           `json:"contract_end_date"`
	PhoneNumber          string          `json:"phone_number"`
	BusinessPhoneNumber  string          `json:"business_phone_number"`
	IsActive             bool            `json:"is_active"`
	Attributes           json.RawMessage `json:"attributes"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (e *Employee) IsOwner() bool {
	return e.Role == role.Owner
}

type PersonalDetail struct {
	ID                    int64     `json:"id"`
	EmployeeID            int64     `json:"employee"`
	BirthDate             *Date     `json:"birth_date"`
	Nationality           string    `json:"nationality"`
	MaritalStatus         string    `json:"marital_status"`
	Address               string    `json:"address"`
	City                  string    `json:"city"`
	Country               string    `json:"country"`
	PersonalEmail         string    `json:"personal_email"`
	EmergencyContactName  string    `json:"emergency_contact_name"`
	EmergencyContactPhone string    `json:"emergency_contact_phone"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func attributesOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(`{}`)
	}
	return raw
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:                   e.ID,
		UserID:               e.UserID,
		FirstName:            e.FirstName,
		LastName:             e.LastName,
		Photo:                e.Photo,
		Role:                 e.Role.String(),
		ManagerID:            e.ManagerID,
		Gender:               e.Gender,
		EmploymentDate:       dateToTime(e.EmploymentDate),
		TerminationDate:      dateToTime(e.TerminationDate),
		IdentificationNumber: e.IdentificationNumber,
		ContractType:         e.ContractType,
		ContractEndDate:      dateToTime(e.ContractEndDate),
		PhoneNumber:          e.PhoneNumber,
		BusinessPhoneNumber:  e.BusinessPhoneNumber,
		IsActive:             e.IsActive,
		Attributes:           attributesOrEmpty(e.Attributes),
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	r, ok := role.Parse(e.Role)
	if !ok {
		r = role.Employee
	}
	return &Employee{
		ID:                   e.ID,
		UserID:               e.UserID,
		FirstName:            e.FirstName,
		LastName:             e.LastName,
		Photo:                e.Photo,
		Role:                 r,
		ManagerID:            e.ManagerID,
		Gender:               e.Gender,
		EmploymentDate:       timeToDate(e.EmploymentDate),
		TerminationDate:      timeToDate(e.TerminationDate),
		IdentificationNumber: e.IdentificationNumber,
		ContractType:         e.ContractType,
		ContractEndDate:      timeToDate(e.ContractEndDate),
		PhoneNumber:          e.PhoneNumber,
		BusinessPhoneNumber:  e.BusinessPhoneNumber,
		IsActive:             e.IsActive,
		Attributes:           attributesOrEmpty(e.Attributes),
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func PersonalDetailToDataModel(pd *PersonalDetail) *employeeDatamodel.PersonalDetail {
	return &employeeDatamodel.PersonalDetail{
		ID:                    pd.ID,
		EmployeeID:            pd.EmployeeID,
		BirthDate:             dateToTime(pd.BirthDate),
		Nationality:           pd.Nationality,
		MaritalStatus:         pd.MaritalStatus,
		Address:               pd.Address,
		City:                  pd.City,
		Country:               pd.Country,
		PersonalEmail:         pd.PersonalEmail,
		EmergencyContactName:  pd.EmergencyContactName,
		EmergencyContactPhone: pd.EmergencyContactPhone,
		CreatedAt:             pd.CreatedAt,
		UpdatedAt:             pd.UpdatedAt,
	}
}

func PersonalDetailFromDataModel(pd *employeeDatamodel.PersonalDetail) *PersonalDetail {
	return &PersonalDetail{
		ID:                    pd.ID,
		EmployeeID:            pd.EmployeeID,
		BirthDate:             timeToDate(pd.BirthDate),
		Nationality:           pd.Nationality,
		MaritalStatus:         pd.MaritalStatus,
		Address:               pd.Address,
		City:                  pd.City,
		Country:               pd.Country,
		PersonalEmail:         pd.PersonalEmail,
		EmergencyContactName:  pd.EmergencyContactName,
		EmergencyContactPhone: pd.EmergencyContactPhone,
		CreatedAt:             pd.CreatedAt,
		UpdatedAt:             pd.UpdatedAt,
	}
}
