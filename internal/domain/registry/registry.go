// Package registry wires the propagation graph: which child rows follow a
// parent aggregate's soft delete.
package registry

import (
	"pms/internal/domain/designs"
	"pms/internal/domain/leaves"
	"pms/internal/domain/meetings"
	"pms/internal/domain/projects"
	"pms/internal/domain/sales"
	"pms/internal/domain/tasks"
	"pms/internal/domain/users"
	"pms/internal/outbox"
)

// Build constructs the full relation registry. Every one-to-many relation
// whose child rows must follow a parent's soft delete is listed here;
// relations absent from this registry are never cascaded (companies, for
// one, keep their projects).
func Build() *outbox.Registry {
	r := outbox.NewRegistry()

	r.MustRegister(outbox.Aggregate{
		Type:  projects.AggregateType,
		Table: "projects",
		Relations: []outbox.Relation{
			{Name: "methods", ChildType: projects.MethodType, Table: "project_methods", FKColumn: "project_id"},
			{Name: "tasks", ChildType: tasks.AggregateType, Table: "tasks", FKColumn: "project_id"},
			{Name: "sales", ChildType: sales.AggregateType, Table: "project_sales", FKColumn: "project_id"},
			{Name: "designs", ChildType: designs.AggregateType, Table: "project_designs", FKColumn: "project_id"},
			{Name: "meetings", ChildType: meetings.AggregateType, Table: "meetings", FKColumn: "project_id"},
		},
	})

	r.MustRegister(outbox.Aggregate{
		Type:  tasks.AggregateType,
		Table: "tasks",
		Relations: []outbox.Relation{
			{Name: "assignees", ChildType: tasks.AssigneeType, Table: "task_assignees", FKColumn: "task_id"},
		},
	})

	r.MustRegister(outbox.Aggregate{
		Type:  sales.AggregateType,
		Table: "project_sales",
		Relations: []outbox.Relation{
			{Name: "assignees", ChildType: sales.AssigneeType, Table: "sales_assignees", FKColumn: "sales_id"},
			{Name: "histories", ChildType: sales.HistoryType, Table: "sales_histories", FKColumn: "sales_id"},
		},
	})

	r.MustRegister(outbox.Aggregate{
		Type:  designs.AggregateType,
		Table: "project_designs",
		Relations: []outbox.Relation{
			{Name: "versions", ChildType: designs.VersionType, Table: "design_versions", FKColumn: "design_id"},
			{Name: "assignees", ChildType: designs.AssigneeType, Table: "design_assignees", FKColumn: "design_id"},
			{Name: "histories", ChildType: designs.HistoryType, Table: "design_histories", FKColumn: "design_id"},
		},
	})

	r.MustRegister(outbox.Aggregate{
		Type:  meetings.AggregateType,
		Table: "meetings",
		Relations: []outbox.Relation{
			{Name: "assignees", ChildType: meetings.AssigneeType, Table: "meeting_assignees", FKColumn: "meeting_id"},
		},
	})

	r.MustRegister(outbox.Aggregate{
		Type:  users.AggregateType,
		Table: "users",
		Relations: []outbox.Relation{
			{Name: "leave_grants", ChildType: leaves.GrantType, Table: "leave_grants", FKColumn: "user_id"},
			{Name: "leave_requests", ChildType: leaves.RequestType, Table: "leave_requests", FKColumn: "user_id"},
		},
	})

	return r
}
