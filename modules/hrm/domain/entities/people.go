package entities

import (
	"github.com/shopspring/decimal"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
)

type Employee struct {
	record.Meta
	FirstName   string          `json:"first_name" validate:"required,max=100"`
	LastName    string          `json:"last_name" validate:"required,max=100"`
	Email       string          `json:"email" validate:"required,email"`
	Phone       string          `json:"phone" validate:"omitempty,max=32"`
	Department  string          `json:"department" validate:"required,max=100"`
	Designation string          `json:"designation" validate:"required,max=100"`
	BranchID    int64           `json:"branch_id" validate:"gte=0"`
	JoiningDate string          `json:"joining_date" validate:"required,datetime=2006-01-02"`
	Salary      decimal.Decimal `json:"salary" validate:"money"`
	Status      string          `json:"status" validate:"required,oneof=active inactive"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type Branch struct {
	record.Meta
	Name    string `json:"name" validate:"required,max=100"`
	City    string `json:"city" validate:"required,max=100"`
	Address string `json:"address" validate:"omitempty,max=255"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
}
