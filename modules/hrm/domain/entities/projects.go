package entities

import (
	"github.com/shopspring/decimal"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
)

type Project struct {
	record.Meta
	Name      string          `json:"name" validate:"required,max=200"`
	Client    string          `json:"client" validate:"omitempty,max=200"`
	StartDate string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string          `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Budget    decimal.Decimal `json:"budget" validate:"money"`
	Priority  string          `json:"priority" validate:"required,oneof=low medium high"`
	Status    string          `json:"status" validate:"required,oneof=not_started in_progress completed on_hold"`
}

func (p Project) Check() map[string]string {
	if p.EndDate != "" && before(p.EndDate, p.StartDate) {
		return map[string]string{"end_date": msgEndBeforeStart}
	}
	return nil
}

type Task struct {
	record.Meta
	ProjectID    int64  `json:"project_id" validate:"required,gt=0"`
	ProjectName  string `json:"project_name" validate:"required"`
	Title        string `json:"title" validate:"required,max=200"`
	AssigneeName string `json:"assignee_name" validate:"omitempty,max=200"`
	Priority     string `json:"priority" validate:"required,oneof=low medium high"`
	DueDate      string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Status       string `json:"status" validate:"required,oneof=todo in_progress done"`
}
