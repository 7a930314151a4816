// Package listview implements the generic tabular list used by every HR list
// screen: fuzzy global search, named exact-match filters, column sorting,
// pagination, row selection and the add/edit/delete dialog state machine.
//
// A Table owns its filter, sort, pagination and selection state. Rows are
// supplied by the caller and replaced wholesale; the package never patches
// individual rows.
package listview
