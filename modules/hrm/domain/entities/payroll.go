package entities

import (
	"github.com/shopspring/decimal"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
)

type Payslip struct {
	record.Meta
	EmployeeID   int64           `json:"employee_id" validate:"required,gt=0"`
	EmployeeName string          `json:"employee_name" validate:"required"`
	Month        string          `json:"month" validate:"required,datetime=2006-01"`
	BasicSalary  decimal.Decimal `json:"basic_salary" validate:"money"`
	Allowances   decimal.Decimal `json:"allowances" validate:"money"`
	Deductions   decimal.Decimal `json:"deductions" validate:"money"`
	NetSalary    decimal.Decimal `json:"net_salary" validate:"money"`
	Status       string          `json:"status" validate:"required,oneof=paid unpaid"`
}

// ExpectedNet is basic salary plus allowances minus deductions.
func (p Payslip) ExpectedNet() decimal.Decimal {
	return p.BasicSalary.Add(p.Allowances).Sub(p.Deductions)
}

func (p Payslip) Check() map[string]string {
	if !p.NetSalary.Equal(p.ExpectedNet()) {
		return map[string]string{"net_salary": msgNetSalaryMismatch}
	}
	return nil
}

type Reimbursement struct {
	record.Meta
	EmployeeID   int64           `json:"employee_id" validate:"required,gt=0"`
	EmployeeName string          `json:"employee_name" validate:"required"`
	Title        string          `json:"title" validate:"required,max=200"`
	Amount       decimal.Decimal `json:"amount" validate:"money"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	Status       string          `json:"status" validate:"required,oneof=pending approved rejected"`
}

type Reward struct {
	record.Meta
	EmployeeID   int64           `json:"employee_id" validate:"required,gt=0"`
	EmployeeName string          `json:"employee_name" validate:"required"`
	RewardType   string          `json:"reward_type" validate:"required,max=100"`
	Gift         string          `json:"gift" validate:"omitempty,max=200"`
	Amount       decimal.Decimal `json:"amount" validate:"money"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
}

type Asset struct {
	record.Meta
	Name         string          `json:"name" validate:"required,max=200"`
	Category     string          `json:"category" validate:"required,max=100"`
	SerialNumber string          `json:"serial_number" validate:"omitempty,max=100"`
	AssignedTo   string          `json:"assigned_to" validate:"omitempty,max=200"`
	PurchaseDate string          `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	Cost         decimal.Decimal `json:"cost" validate:"money"`
	Status       string          `json:"status" validate:"required,oneof=available assigned retired"`
}
