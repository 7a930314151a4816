package resources

import (
	"github.com/shopspring/decimal"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/entities"
	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/pkg/listview"
)

func text[T any](id, header string, get func(T) string) listview.Column[T] {
	return listview.Column[T]{
		ID:         id,
		Header:     "Columns." + header,
		Accessor:   func(row T) any { return get(row) },
		Sortable:   true,
		Filterable: true,
	}
}

// date columns hold YYYY-MM-DD strings, which sort chronologically as text.
func date[T any](id, header string, get func(T) string) listview.Column[T] {
	c := text(id, header, get)
	c.Filterable = false
	return c
}

func money[T any](id, header string, get func(T) decimal.Decimal) listview.Column[T] {
	return listview.Column[T]{
		ID:       id,
		Header:   "Columns." + header,
		Accessor: func(row T) any { return get(row).InexactFloat64() },
		Cell:     func(row T) string { return get(row).StringFixed(2) },
		Sortable: true,
	}
}

func idColumn[T record.Entity]() listview.Column[T] {
	return listview.Column[T]{
		ID:       "id",
		Header:   "Columns.RecordID",
		Accessor: func(row T) any { return row.RecordMeta().ID },
		Sortable: true,
	}
}

func options(values ...string) []listview.Option {
	out := make([]listview.Option, len(values))
	for i, v := range values {
		out[i] = listview.Option{Value: v, Label: v}
	}
	return out
}

func statusFilter[T any](get func(T) string, values ...string) listview.FilterDef[T] {
	return listview.FilterDef[T]{
		Name:     "status",
		Label:    "Columns.Status",
		Accessor: func(row T) any { return get(row) },
		Options:  options(values...),
	}
}

func filter[T any](name, label string, get func(T) any) listview.FilterDef[T] {
	return listview.FilterDef[T]{Name: name, Label: "Columns." + label, Accessor: get}
}

var (
	approval = []string{"pending", "approved", "rejected"}
	priority = []string{"low", "medium", "high"}
)

var EmployeesTable = Definition[entities.Employee]{
	Name:      "employees",
	NestedKey: "employees",
	Columns: []listview.Column[entities.Employee]{
		idColumn[entities.Employee](),
		text("name", "Name", entities.Employee.FullName),
		text("email", "Email", func(e entities.Employee) string { return e.Email }),
		text("phone", "Phone", func(e entities.Employee) string { return e.Phone }),
		text("department", "Department", func(e entities.Employee) string { return e.Department }),
		text("designation", "Designation", func(e entities.Employee) string { return e.Designation }),
		date("joining_date", "JoiningDate", func(e entities.Employee) string { return e.JoiningDate }),
		money("salary", "Salary", func(e entities.Employee) decimal.Decimal { return e.Salary }),
		text("status", "Status", func(e entities.Employee) string { return e.Status }),
	},
	Filters: []listview.FilterDef[entities.Employee]{
		filter("department", "Department", func(e entities.Employee) any { return e.Department }),
		filter("designation", "Designation", func(e entities.Employee) any { return e.Designation }),
		statusFilter(func(e entities.Employee) string { return e.Status }, "active", "inactive"),
	},
	Describe: entities.Employee.FullName,
}

var BranchesTable = Definition[entities.Branch]{
	Name: "branches",
	Columns: []listview.Column[entities.Branch]{
		idColumn[entities.Branch](),
		text("name", "Name", func(b entities.Branch) string { return b.Name }),
		text("city", "City", func(b entities.Branch) string { return b.City }),
		text("address", "Address", func(b entities.Branch) string { return b.Address }),
		text("phone", "Phone", func(b entities.Branch) string { return b.Phone }),
	},
	Filters: []listview.FilterDef[entities.Branch]{
		filter("city", "City", func(b entities.Branch) any { return b.City }),
	},
	Describe: func(b entities.Branch) string { return b.Name },
}

var LeavesTable = Definition[entities.Leave]{
	Name: "leaves",
	Columns: []listview.Column[entities.Leave]{
		idColumn[entities.Leave](),
		text("employee", "Employee", func(l entities.Leave) string { return l.EmployeeName }),
		text("leave_type", "LeaveType", func(l entities.Leave) string { return l.LeaveType }),
		date("start_date", "StartDate", func(l entities.Leave) string { return l.StartDate }),
		date("end_date", "EndDate", func(l entities.Leave) string { return l.EndDate }),
		text("reason", "Reason", func(l entities.Leave) string { return l.Reason }),
		text("status", "Status", func(l entities.Leave) string { return l.Status }),
	},
	Filters: []listview.FilterDef[entities.Leave]{
		{Name: "leave_type", Label: "Columns.LeaveType", Accessor: func(l entities.Leave) any { return l.LeaveType }, Options: options("sick", "casual", "annual", "unpaid")},
		statusFilter(func(l entities.Leave) string { return l.Status }, approval...),
	},
	Describe: func(l entities.Leave) string { return l.EmployeeName + " " + l.StartDate },
}

var AttendanceTable = Definition[entities.Attendance]{
	Name: "attendance",
	Columns: []listview.Column[entities.Attendance]{
		idColumn[entities.Attendance](),
		text("employee", "Employee", func(a entities.Attendance) string { return a.EmployeeName }),
		date("date", "Date", func(a entities.Attendance) string { return a.Date }),
		text("clock_in", "ClockIn", func(a entities.Attendance) string { return a.ClockIn }),
		text("clock_out", "ClockOut", func(a entities.Attendance) string { return a.ClockOut }),
		text("status", "Status", func(a entities.Attendance) string { return a.Status }),
	},
	Filters: []listview.FilterDef[entities.Attendance]{
		filter("date", "Date", func(a entities.Attendance) any { return a.Date }),
		statusFilter(func(a entities.Attendance) string { return a.Status }, "present", "absent", "late", "half_day"),
	},
	Describe: func(a entities.Attendance) string { return a.EmployeeName + " " + a.Date },
}

var OvertimeTable = Definition[entities.Overtime]{
	Name: "overtime",
	Columns: []listview.Column[entities.Overtime]{
		idColumn[entities.Overtime](),
		text("employee", "Employee", func(o entities.Overtime) string { return o.EmployeeName }),
		date("date", "Date", func(o entities.Overtime) string { return o.Date }),
		money("hours", "Hours", func(o entities.Overtime) decimal.Decimal { return o.Hours }),
		money("rate", "Rate", func(o entities.Overtime) decimal.Decimal { return o.Rate }),
		money("amount", "Amount", entities.Overtime.Amount),
		text("status", "Status", func(o entities.Overtime) string { return o.Status }),
	},
	Filters: []listview.FilterDef[entities.Overtime]{
		statusFilter(func(o entities.Overtime) string { return o.Status }, approval...),
	},
	Describe: func(o entities.Overtime) string { return o.EmployeeName + " " + o.Date },
}

var PayslipsTable = Definition[entities.Payslip]{
	Name: "payslips",
	Columns: []listview.Column[entities.Payslip]{
		idColumn[entities.Payslip](),
		text("employee", "Employee", func(p entities.Payslip) string { return p.EmployeeName }),
		text("month", "Month", func(p entities.Payslip) string { return p.Month }),
		money("basic_salary", "BasicSalary", func(p entities.Payslip) decimal.Decimal { return p.BasicSalary }),
		money("allowances", "Allowances", func(p entities.Payslip) decimal.Decimal { return p.Allowances }),
		money("deductions", "Deductions", func(p entities.Payslip) decimal.Decimal { return p.Deductions }),
		money("net_salary", "NetSalary", func(p entities.Payslip) decimal.Decimal { return p.NetSalary }),
		text("status", "Status", func(p entities.Payslip) string { return p.Status }),
	},
	Filters: []listview.FilterDef[entities.Payslip]{
		filter("month", "Month", func(p entities.Payslip) any { return p.Month }),
		statusFilter(func(p entities.Payslip) string { return p.Status }, "paid", "unpaid"),
	},
	Describe: func(p entities.Payslip) string { return p.EmployeeName + " " + p.Month },
}

var AssetsTable = Definition[entities.Asset]{
	Name: "assets",
	Columns: []listview.Column[entities.Asset]{
		idColumn[entities.Asset](),
		text("name", "Name", func(a entities.Asset) string { return a.Name }),
		text("category", "Category", func(a entities.Asset) string { return a.Category }),
		text("serial_number", "SerialNumber", func(a entities.Asset) string { return a.SerialNumber }),
		text("assigned_to", "AssignedTo", func(a entities.Asset) string { return a.AssignedTo }),
		date("purchase_date", "PurchaseDate", func(a entities.Asset) string { return a.PurchaseDate }),
		money("cost", "Cost", func(a entities.Asset) decimal.Decimal { return a.Cost }),
		text("status", "Status", func(a entities.Asset) string { return a.Status }),
	},
	Filters: []listview.FilterDef[entities.Asset]{
		filter("category", "Category", func(a entities.Asset) any { return a.Category }),
		statusFilter(func(a entities.Asset) string { return a.Status }, "available", "assigned", "retired"),
	},
	Describe: func(a entities.Asset) string { return a.Name },
}

var ReimbursementsTable = Definition[entities.Reimbursement]{
	Name: "reimbursements",
	Columns: []listview.Column[entities.Reimbursement]{
		idColumn[entities.Reimbursement](),
		text("employee", "Employee", func(r entities.Reimbursement) string { return r.EmployeeName }),
		text("title", "Title", func(r entities.Reimbursement) string { return r.Title }),
		money("amount", "Amount", func(r entities.Reimbursement) decimal.Decimal { return r.Amount }),
		date("date", "Date", func(r entities.Reimbursement) string { return r.Date }),
		text("status", "Status", func(r entities.Reimbursement) string { return r.Status }),
	},
	Filters: []listview.FilterDef[entities.Reimbursement]{
		statusFilter(func(r entities.Reimbursement) string { return r.Status }, approval...),
	},
	Describe: func(r entities.Reimbursement) string { return r.Title },
}

var WarningsTable = Definition[entities.Warning]{
	Name: "warnings",
	Columns: []listview.Column[entities.Warning]{
		idColumn[entities.Warning](),
		text("employee", "Employee", func(w entities.Warning) string { return w.EmployeeName }),
		text("subject", "Subject", func(w entities.Warning) string { return w.Subject }),
		date("warning_date", "WarningDate", func(w entities.Warning) string { return w.WarningDate }),
		text("description", "DescriptionText", func(w entities.Warning) string { return w.Description }),
	},
	Filters: []listview.FilterDef[entities.Warning]{
		filter("employee", "Employee", func(w entities.Warning) any { return w.EmployeeName }),
	},
	Describe: func(w entities.Warning) string { return w.Subject },
}

var TerminationsTable = Definition[entities.Termination]{
	Name: "terminations",
	Columns: []listview.Column[entities.Termination]{
		idColumn[entities.Termination](),
		text("employee", "Employee", func(t entities.Termination) string { return t.EmployeeName }),
		text("termination_type", "TerminationType", func(t entities.Termination) string { return t.TerminationType }),
		date("notice_date", "NoticeDate", func(t entities.Termination) string { return t.NoticeDate }),
		date("termination_date", "TerminationDate", func(t entities.Termination) string { return t.TerminationDate }),
		text("reason", "Reason", func(t entities.Termination) string { return t.Reason }),
	},
	Filters: []listview.FilterDef[entities.Termination]{
		filter("termination_type", "TerminationType", func(t entities.Termination) any { return t.TerminationType }),
	},
	Describe: func(t entities.Termination) string { return t.EmployeeName },
}

var ComplaintsTable = Definition[entities.Complaint]{
	Name: "complaints",
	Columns: []listview.Column[entities.Complaint]{
		idColumn[entities.Complaint](),
		text("complainant", "Complainant", func(c entities.Complaint) string { return c.ComplainantName }),
		text("against", "Against", func(c entities.Complaint) string { return c.AgainstName }),
		text("title", "Title", func(c entities.Complaint) string { return c.Title }),
		date("complaint_date", "ComplaintDate", func(c entities.Complaint) string { return c.ComplaintDate }),
		text("status", "Status", func(c entities.Complaint) string { return c.Status }),
	},
	Filters: []listview.FilterDef[entities.Complaint]{
		statusFilter(func(c entities.Complaint) string { return c.Status }, "open", "resolved"),
	},
	Describe: func(c entities.Complaint) string { return c.Title },
}

var ResignationsTable = Definition[entities.Resignation]{
	Name: "resignations",
	Columns: []listview.Column[entities.Resignation]{
		idColumn[entities.Resignation](),
		text("employee", "Employee", func(r entities.Resignation) string { return r.EmployeeName }),
		date("notice_date", "NoticeDate", func(r entities.Resignation) string { return r.NoticeDate }),
		date("resignation_date", "ResignationDate", func(r entities.Resignation) string { return r.ResignationDate }),
		text("reason", "Reason", func(r entities.Resignation) string { return r.Reason }),
		text("status", "Status", func(r entities.Resignation) string { return r.Status }),
	},
	Filters: []listview.FilterDef[entities.Resignation]{
		statusFilter(func(r entities.Resignation) string { return r.Status }, approval...),
	},
	Describe: func(r entities.Resignation) string { return r.EmployeeName },
}

var RewardsTable = Definition[entities.Reward]{
	Name: "rewards",
	Columns: []listview.Column[entities.Reward]{
		idColumn[entities.Reward](),
		text("employee", "Employee", func(r entities.Reward) string { return r.EmployeeName }),
		text("reward_type", "RewardType", func(r entities.Reward) string { return r.RewardType }),
		text("gift", "Gift", func(r entities.Reward) string { return r.Gift }),
		money("amount", "Amount", func(r entities.Reward) decimal.Decimal { return r.Amount }),
		date("date", "Date", func(r entities.Reward) string { return r.Date }),
	},
	Filters: []listview.FilterDef[entities.Reward]{
		filter("reward_type", "RewardType", func(r entities.Reward) any { return r.RewardType }),
	},
	Describe: func(r entities.Reward) string { return r.EmployeeName + " " + r.RewardType },
}

var ProjectsTable = Definition[entities.Project]{
	Name: "projects",
	Columns: []listview.Column[entities.Project]{
		idColumn[entities.Project](),
		text("name", "Name", func(p entities.Project) string { return p.Name }),
		text("client", "Client", func(p entities.Project) string { return p.Client }),
		date("start_date", "StartDate", func(p entities.Project) string { return p.StartDate }),
		date("end_date", "EndDate", func(p entities.Project) string { return p.EndDate }),
		money("budget", "Budget", func(p entities.Project) decimal.Decimal { return p.Budget }),
		text("priority", "Priority", func(p entities.Project) string { return p.Priority }),
		text("status", "Status", func(p entities.Project) string { return p.Status }),
	},
	Filters: []listview.FilterDef[entities.Project]{
		{Name: "priority", Label: "Columns.Priority", Accessor: func(p entities.Project) any { return p.Priority }, Options: options(priority...)},
		statusFilter(func(p entities.Project) string { return p.Status }, "not_started", "in_progress", "completed", "on_hold"),
	},
	Describe: func(p entities.Project) string { return p.Name },
}

var TasksTable = Definition[entities.Task]{
	Name: "tasks",
	Columns: []listview.Column[entities.Task]{
		idColumn[entities.Task](),
		text("title", "Title", func(t entities.Task) string { return t.Title }),
		text("project", "Project", func(t entities.Task) string { return t.ProjectName }),
		text("assignee", "Assignee", func(t entities.Task) string { return t.AssigneeName }),
		text("priority", "Priority", func(t entities.Task) string { return t.Priority }),
		date("due_date", "DueDate", func(t entities.Task) string { return t.DueDate }),
		text("status", "Status", func(t entities.Task) string { return t.Status }),
	},
	Filters: []listview.FilterDef[entities.Task]{
		filter("project", "Project", func(t entities.Task) any { return t.ProjectName }),
		{Name: "priority", Label: "Columns.Priority", Accessor: func(t entities.Task) any { return t.Priority }, Options: options(priority...)},
		statusFilter(func(t entities.Task) string { return t.Status }, "todo", "in_progress", "done"),
	},
	Describe: func(t entities.Task) string { return t.Title },
}
