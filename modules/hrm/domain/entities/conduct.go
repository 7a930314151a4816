package entities

import "github.com/iota-uz/hrdesk/modules/hrm/domain/record"

type Warning struct {
	record.Meta
	EmployeeID   int64  `json:"employee_id" validate:"required,gt=0"`
	EmployeeName string `json:"employee_name" validate:"required"`
	Subject      string `json:"subject" validate:"required,max=200"`
	Description  string `json:"description" validate:"omitempty,max=1000"`
	WarningDate  string `json:"warning_date" validate:"required,datetime=2006-01-02"`
}

type Termination struct {
	record.Meta
	EmployeeID      int64  `json:"employee_id" validate:"required,gt=0"`
	EmployeeName    string `json:"employee_name" validate:"required"`
	TerminationType string `json:"termination_type" validate:"required,max=100"`
	NoticeDate      string `json:"notice_date" validate:"required,datetime=2006-01-02"`
	TerminationDate string `json:"termination_date" validate:"required,datetime=2006-01-02"`
	Reason          string `json:"reason" validate:"omitempty,max=1000"`
}

func (t Termination) Check() map[string]string {
	if before(t.TerminationDate, t.NoticeDate) {
		return map[string]string{"termination_date": msgEndBeforeStart}
	}
	return nil
}

type Complaint struct {
	record.Meta
	ComplainantName string `json:"complainant_name" validate:"required,max=200"`
	AgainstName     string `json:"against_name" validate:"required,max=200"`
	Title           string `json:"title" validate:"required,max=200"`
	ComplaintDate   string `json:"complaint_date" validate:"required,datetime=2006-01-02"`
	Description     string `json:"description" validate:"omitempty,max=1000"`
	Status          string `json:"status" validate:"required,oneof=open resolved"`
}

type Resignation struct {
	record.Meta
	EmployeeID      int64  `json:"employee_id" validate:"required,gt=0"`
	EmployeeName    string `json:"employee_name" validate:"required"`
	NoticeDate      string `json:"notice_date" validate:"required,datetime=2006-01-02"`
	ResignationDate string `json:"resignation_date" validate:"required,datetime=2006-01-02"`
	Reason          string `json:"reason" validate:"omitempty,max=1000"`
	Status          string `json:"status" validate:"required,oneof=pending approved rejected"`
}

func (r Resignation) Check() map[string]string {
	if before(r.ResignationDate, r.NoticeDate) {
		return map[string]string{"resignation_date": msgEndBeforeStart}
	}
	return nil
}
