package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hrdesk/pkg/constants"
)

func TestEmployeeValidation(t *testing.T) {
	e := Employee{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Department:  "Engineering",
		Designation: "Engineer",
		JoiningDate: "2024-01-15",
		Salary:      decimal.RequireFromString("1200.50"),
		Status:      "active",
	}
	require.NoError(t, constants.Validate.Struct(e))
	assert.Equal(t, "Ada Lovelace", e.FullName())

	e.Email = "not-an-email"
	e.Salary = decimal.NewFromInt(-1)
	e.JoiningDate = "15/01/2024"
	err := constants.Validate.Struct(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'email'")
	assert.Contains(t, err.Error(), "'salary'")
	assert.Contains(t, err.Error(), "'joining_date'")
}

func TestLeaveCheck(t *testing.T) {
	l := Leave{StartDate: "2024-03-10", EndDate: "2024-03-09"}
	assert.Equal(t, map[string]string{"end_date": msgEndBeforeStart}, l.Check())

	l.EndDate = "2024-03-10"
	assert.Nil(t, l.Check())

	l.EndDate = "garbage"
	assert.Nil(t, l.Check(), "format errors are reported by field validation")
}

func TestAttendanceCheck(t *testing.T) {
	a := Attendance{ClockIn: "09:00", ClockOut: "08:30"}
	assert.Contains(t, a.Check(), "clock_out")
	a.ClockOut = ""
	assert.Nil(t, a.Check())
}

func TestPayslipCheck(t *testing.T) {
	p := Payslip{
		BasicSalary: decimal.NewFromInt(1000),
		Allowances:  decimal.NewFromInt(200),
		Deductions:  decimal.RequireFromString("50.25"),
		NetSalary:   decimal.RequireFromString("1149.75"),
	}
	assert.Nil(t, p.Check())
	p.NetSalary = decimal.NewFromInt(1150)
	assert.Contains(t, p.Check(), "net_salary")
}

func TestOvertimeAmount(t *testing.T) {
	o := Overtime{Hours: decimal.RequireFromString("2.5"), Rate: decimal.NewFromInt(20)}
	assert.True(t, o.Amount().Equal(decimal.NewFromInt(50)))
}
