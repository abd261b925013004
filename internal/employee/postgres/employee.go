package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/hrm/internal"
	employeeDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/employee"
	userDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/user"
	"github.com/frahmantamala/hrm/internal/core/tenancy"
	"github.com/frahmantamala/hrm/internal/employee"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmployeeRepository works inside the tenant schema bound to the context.
// users and user_tenants resolve through the public fallback on the
// search_path.
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

var updatableColumns = []string{
	"first_name", "last_name", "photo", "role", "manager_id", "gender",
	"employment_date", "termination_date", "identification_number", "contract_type",
	"contract_end_date", "phone_number", "business_phone_number", "attributes", "updated_at",
}

func (r *EmployeeRepository) List(ctx context.Context, page transport.PageRequest) ([]*employee.Employee, int64, error) {
	var (
		rows  []employeeDatamodel.Employee
		total int64
	)
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Model(&employeeDatamodel.Employee{}).Count(&total).Error; err != nil {
			return err
		}
		return tx.Order("created_at DESC, id DESC").
			Offset(page.Offset()).
			Limit(page.PageSize).
			Find(&rows).Error
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]*employee.Employee, 0, len(rows))
	for i := range rows {
		out = append(out, employee.FromDataModel(&rows[i]))
	}
	return out, total, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID int64) (*employee.Employee, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *EmployeeRepository) first(ctx context.Context, query string, arg interface{}) (*employee.Employee, error) {
	var row employeeDatamodel.Employee
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Where(query, arg).First(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return employee.FromDataModel(&row), nil
}

// Create inserts the employee for an existing user and makes the user a
// member of the tenant.
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	ref, ok := internal.TenantFromContext(ctx)
	if !ok {
		return tenancy.ErrNoTenant
	}
	return tenancy.RunIn(ctx, r.db, ref.Schema, func(tx *gorm.DB) error {
		if err := insertEmployee(tx, e); err != nil {
			return err
		}
		return joinTenant(tx, e.UserID, ref.ID)
	})
}

// CreateWithUser registers u in the public users table, then adds the
// employee and the membership, atomically.
func (r *EmployeeRepository) CreateWithUser(ctx context.Context, e *employee.Employee, u *user.User) error {
	ref, ok := internal.TenantFromContext(ctx)
	if !ok {
		return tenancy.ErrNoTenant
	}
	return tenancy.RunIn(ctx, r.db, ref.Schema, func(tx *gorm.DB) error {
		row := user.ToDataModel(u)
		if err := tx.Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return employee.ErrEmailTaken
			}
			return err
		}
		u.ID = row.ID
		e.UserID = row.ID

		if err := insertEmployee(tx, e); err != nil {
			return err
		}
		return joinTenant(tx, row.ID, ref.ID)
	})
}

func (r *EmployeeRepository) CreateOwner(ctx context.Context, schema string, e *employee.Employee) error {
	return tenancy.RunIn(ctx, r.db, schema, func(tx *gorm.DB) error {
		return insertEmployee(tx, e)
	})
}

func insertEmployee(tx *gorm.DB, e *employee.Employee) error {
	row := employee.ToDataModel(e)
	if err := tx.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return employee.ErrAlreadyEmployed
		}
		return err
	}
	e.ID = row.ID
	e.CreatedAt = row.CreatedAt
	e.UpdatedAt = row.UpdatedAt
	return nil
}

func joinTenant(tx *gorm.DB, userID, clientID int64) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userDatamodel.Membership{UserID: userID, ClientID: clientID}).Error
}

func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	return tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Model(&employeeDatamodel.Employee{ID: e.ID}).
			Select(updatableColumns).
			Updates(employee.ToDataModel(e)).Error
	})
}

// Deactivate flips the employee and their user inactive together.
func (r *EmployeeRepository) Deactivate(ctx context.Context, id, userID int64) error {
	return tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Model(&employeeDatamodel.Employee{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&userDatamodel.User{}).Where("id = ?", userID).Update("is_active", false).Error
	})
}

// ForceDelete removes the user. Employee rows in every tenant go with it
// through the foreign key; the local rows are deleted explicitly as well.
func (r *EmployeeRepository) ForceDelete(ctx context.Context, id, userID int64) error {
	return tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", id).Delete(&employeeDatamodel.PersonalDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&employeeDatamodel.Employee{}, id).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&userDatamodel.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&userDatamodel.User{}, userID).Error
	})
}

func (r *EmployeeRepository) GetPersonalDetail(ctx context.Context, employeeID int64) (*employee.PersonalDetail, error) {
	var row employeeDatamodel.PersonalDetail
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Where("employee_id = ?", employeeID).First(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return employee.PersonalDetailFromDataModel(&row), nil
}

var personalDetailColumns = []string{
	"birth_date", "nationality", "marital_status", "address", "city", "country",
	"personal_email", "emergency_contact_name", "emergency_contact_phone", "updated_at",
}

// SavePersonalDetail inserts a new record or updates the existing one.
func (r *EmployeeRepository) SavePersonalDetail(ctx context.Context, pd *employee.PersonalDetail) error {
	row := employee.PersonalDetailToDataModel(pd)
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		if pd.ID == 0 {
			return tx.Create(row).Error
		}
		return tx.Model(&employeeDatamodel.PersonalDetail{ID: pd.ID}).
			Select(personalDetailColumns).
			Updates(row).Error
	})
	if err != nil {
		return err
	}
	if pd.ID == 0 {
		pd.ID = row.ID
		pd.CreatedAt = row.CreatedAt
		pd.UpdatedAt = row.UpdatedAt
	}
	return nil
}
