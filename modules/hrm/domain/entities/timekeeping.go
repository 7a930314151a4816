package entities

import (
	"github.com/shopspring/decimal"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
)

type Leave struct {
	record.Meta
	EmployeeID   int64  `json:"employee_id" validate:"required,gt=0"`
	EmployeeName string `json:"employee_name" validate:"required"`
	LeaveType    string `json:"leave_type" validate:"required,oneof=sick casual annual unpaid"`
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason       string `json:"reason" validate:"omitempty,max=500"`
	Status       string `json:"status" validate:"required,oneof=pending approved rejected"`
}

func (l Leave) Check() map[string]string {
	if before(l.EndDate, l.StartDate) {
		return map[string]string{"end_date": msgEndBeforeStart}
	}
	return nil
}

type Attendance struct {
	record.Meta
	EmployeeID   int64  `json:"employee_id" validate:"required,gt=0"`
	EmployeeName string `json:"employee_name" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	ClockIn      string `json:"clock_in" validate:"omitempty,datetime=15:04"`
	ClockOut     string `json:"clock_out" validate:"omitempty,datetime=15:04"`
	Status       string `json:"status" validate:"required,oneof=present absent late half_day"`
}

func (a Attendance) Check() map[string]string {
	if a.ClockIn != "" && a.ClockOut != "" && clockBefore(a.ClockOut, a.ClockIn) {
		return map[string]string{"clock_out": msgClockOutBeforeIn}
	}
	return nil
}

type Overtime struct {
	record.Meta
	EmployeeID   int64           `json:"employee_id" validate:"required,gt=0"`
	EmployeeName string          `json:"employee_name" validate:"required"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	Hours        decimal.Decimal `json:"hours" validate:"money"`
	Rate         decimal.Decimal `json:"rate" validate:"money"`
	Status       string          `json:"status" validate:"required,oneof=pending approved rejected"`
}

// Amount is hours times rate.
func (o Overtime) Amount() decimal.Decimal {
	return o.Hours.Mul(o.Rate)
}
