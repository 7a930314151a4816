// Package seed fills a tenant with demo HR records.
package seed

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/entities"
	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/modules/hrm/presentation/resources"
	"github.com/iota-uz/hrdesk/pkg/application"
	"github.com/iota-uz/hrdesk/pkg/composables"
)

func insert[T record.Entity](ctx context.Context, reg *resources.Registry, name string, rows ...T) ([]T, error) {
	h, ok := reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}
	res, ok := h.(*resources.Resource[T])
	if !ok {
		return nil, fmt.Errorf("resource %q has another row type", name)
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		created, err := res.Service().Create(ctx, row)
		if err != nil {
			return nil, errors.Wrapf(err, "seed %s", name)
		}
		out = append(out, created)
	}
	return out, h.Invalidate(ctx)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Demo returns a seed function writing demo records for the tenant of the
// AuthState in ctx.
func Demo(reg *resources.Registry) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		if _, err := composables.UseAuthState(ctx); err != nil {
			return err
		}
		logger := app.Logger()

		branches, err := insert(ctx, reg, "branches",
			entities.Branch{Name: "Head Office", City: "Tashkent", Address: "1 Amir Temur Ave", Phone: "+998 71 200 0000"},
			entities.Branch{Name: "Shanghai Office", City: "Shanghai", Address: "88 Century Ave"},
		)
		if err != nil {
			return err
		}

		hq, sh := branches[0].ID, branches[1].ID
		employees, err := insert(ctx, reg, "employees",
			entities.Employee{FirstName: "Alice", LastName: "Smith", Email: "alice@example.com", Department: "Engineering", Designation: "Engineer", BranchID: hq, JoiningDate: "2021-03-01", Salary: money("4200"), Status: "active"},
			entities.Employee{FirstName: "Alicia", LastName: "Keys", Email: "alicia@example.com", Department: "Finance", Designation: "Accountant", BranchID: hq, JoiningDate: "2022-07-15", Salary: money("3800"), Status: "active"},
			entities.Employee{FirstName: "Bob", LastName: "Jones", Email: "bob@example.com", Department: "Engineering", Designation: "Lead", BranchID: sh, JoiningDate: "2019-11-04", Salary: money("5600"), Status: "active"},
			entities.Employee{FirstName: "Wei", LastName: "Zhang", Email: "wei@example.com", Department: "Sales", Designation: "Manager", BranchID: sh, JoiningDate: "2020-01-20", Salary: money("5100"), Status: "inactive"},
		)
		if err != nil {
			return err
		}
		alice, bob := employees[0], employees[2]

		if _, err := insert(ctx, reg, "leaves",
			entities.Leave{EmployeeID: alice.ID, EmployeeName: alice.FullName(), LeaveType: "annual", StartDate: "2024-07-01", EndDate: "2024-07-10", Status: "approved"},
			entities.Leave{EmployeeID: bob.ID, EmployeeName: bob.FullName(), LeaveType: "sick", StartDate: "2024-08-05", EndDate: "2024-08-06", Reason: "Flu", Status: "pending"},
		); err != nil {
			return err
		}
		if _, err := insert(ctx, reg, "attendance",
			entities.Attendance{EmployeeID: alice.ID, EmployeeName: alice.FullName(), Date: "2024-09-02", ClockIn: "09:00", ClockOut: "18:00", Status: "present"},
			entities.Attendance{EmployeeID: bob.ID, EmployeeName: bob.FullName(), Date: "2024-09-02", ClockIn: "10:15", ClockOut: "19:00", Status: "late"},
		); err != nil {
			return err
		}
		if _, err := insert(ctx, reg, "overtime",
			entities.Overtime{EmployeeID: bob.ID, EmployeeName: bob.FullName(), Date: "2024-09-03", Hours: money("3"), Rate: money("25"), Status: "approved"},
		); err != nil {
			return err
		}
		if _, err := insert(ctx, reg, "payslips",
			entities.Payslip{EmployeeID: alice.ID, EmployeeName: alice.FullName(), Month: "2024-08", BasicSalary: money("4200"), Allowances: money("300"), Deductions: money("450"), NetSalary: money("4050"), Status: "paid"},
		); err != nil {
			return err
		}
		if _, err := insert(ctx, reg, "assets",
			entities.Asset{Name: "MacBook Pro", Category: "Laptop", SerialNumber: "C02XK1", AssignedTo: alice.FullName(), PurchaseDate: "2023-02-11", Cost: money("2499"), Status: "assigned"},
		); err != nil {
			return err
		}
		if _, err := insert(ctx, reg, "reimbursements",
			entities.Reimbursement{EmployeeID: bob.ID, EmployeeName: bob.FullName(), Title: "Conference travel", Amount: money("640.50"), Date: "2024-06-18", Status: "pending"},
		); err != nil {
			return err
		}
		if _, err := insert(ctx, reg, "rewards",
			entities.Reward{EmployeeID: alice.ID, EmployeeName: alice.FullName(), RewardType: "Employee of the month", Gift: "Gift card", Amount: money("100"), Date: "2024-05-31"},
		); err != nil {
			return err
		}
		if _, err := insert(ctx, reg, "warnings",
			entities.Warning{EmployeeID: bob.ID, EmployeeName: bob.FullName(), Subject: "Late arrivals", WarningDate: "2024-09-10"},
		); err != nil {
			return err
		}
		if _, err := insert(ctx, reg, "complaints",
			entities.Complaint{ComplainantName: alice.FullName(), AgainstName: "Facilities", Title: "Broken AC", ComplaintDate: "2024-07-22", Status: "resolved"},
		); err != nil {
			return err
		}
		projects, err := insert(ctx, reg, "projects",
			entities.Project{Name: "Payroll revamp", Client: "Internal", StartDate: "2024-01-08", EndDate: "2024-12-20", Budget: money("120000"), Priority: "high", Status: "in_progress"},
		)
		if err != nil {
			return err
		}
		if _, err := insert(ctx, reg, "tasks",
			entities.Task{ProjectID: projects[0].ID, ProjectName: projects[0].Name, Title: "Tax tables", AssigneeName: alice.FullName(), Priority: "high", DueDate: "2024-10-01", Status: "in_progress"},
			entities.Task{ProjectID: projects[0].ID, ProjectName: projects[0].Name, Title: "Payslip export", AssigneeName: bob.FullName(), Priority: "medium", Status: "todo"},
		); err != nil {
			return err
		}
		logger.Info("seeded demo HR records")
		return nil
	}
}
