package employee

type CreateEmployeeRequest struct {
	FullName   string  `json:"full_name" binding:"required,min=2,max=150"`
	Email      string  `json:"email" binding:"required,email"`
	Phone      string  `json:"phone" binding:"omitempty,max=30"`
	ManagerID  *string `json:"manager_id" binding:"omitempty,uuid"`
	Dependents int     `json:"dependents" binding:"omitempty,min=0,max=20"`
	HireDate   string  `json:"hire_date" binding:"required"`
}

// UpdateEmployeeRequest uses pointers so absent fields stay untouched.
type UpdateEmployeeRequest struct {
	FullName   *string `json:"full_name" binding:"omitempty,min=2,max=150"`
	Phone      *string `json:"phone" binding:"omitempty,max=30"`
	ManagerID  *string `json:"manager_id" binding:"omitempty,uuid"`
	Dependents *int    `json:"dependents" binding:"omitempty,min=0,max=20"`
}

type EmployeeResponse struct {
	ID               string  `json:"id"`
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	ManagerID        *string `json:"manager_id"`
	Dependents       int     `json:"dependents"`
	EmploymentStatus string  `json:"employment_status"`
	HireDate         string  `json:"hire_date"`
}

type OptionResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}
