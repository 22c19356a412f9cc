package contract

type CreateContractRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required,uuid"`
	GrossSalary int64  `json:"gross_salary" binding:"required,gt=0"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"omitempty"`
}

type ContractResponse struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	GrossSalary int64   `json:"gross_salary"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Status      string  `json:"status"`
}
