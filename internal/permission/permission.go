// Package permission is the closed catalog of capabilities an organization role can grant.
// Every lookup is an exhaustive switch so an identifier outside the catalog is a validation error,
// never a silent zero value.
package permission

import (
	"fmt"
	"sort"
)

// Permission is an atomic capability identifier from the catalog.
type Permission string

const (
	ViewDashboard       Permission = "VIEW_DASHBOARD"
	CreateTransactions  Permission = "CREATE_TRANSACTIONS"
	EditTransactions    Permission = "EDIT_TRANSACTIONS"
	DeleteTransaction   Permission = "DELETE_TRANSACTION"
	ApproveTransactions Permission = "APPROVE_TRANSACTIONS"
	ViewReport          Permission = "VIEW_REPORT"
	ViewMembers         Permission = "VIEW_MEMBERS"
	ManageMembers       Permission = "MANAGE_MEMBERS"
	ManageRoles         Permission = "MANAGE_ROLES"
	ManageCategory      Permission = "MANAGE_CATEGORY"
	ManageBudget        Permission = "MANAGE_BUDGET"
	// All grants every permission, including ones added to the catalog later.
	// It is stored as-is and checked at evaluation time; it is never expanded on write.
	All Permission = "ALL"
)

// Category groups permissions for bulk grant/revoke and display.
type Category string

const (
	CategoryDashboard      Category = "dashboard"
	CategoryTransactions   Category = "transactions"
	CategoryReports        Category = "reports"
	CategoryMembers        Category = "members"
	CategoryRoles          Category = "roles"
	CategoryBudgeting      Category = "budgeting"
	CategoryAdministration Category = "administration"
)

// Entry pairs a permission with its category.
type Entry struct {
	Permission Permission
	Category   Category
}

// catalog is the display order of the permission list.
var catalog = []Permission{
	ViewDashboard,
	CreateTransactions,
	EditTransactions,
	DeleteTransaction,
	ApproveTransactions,
	ViewReport,
	ViewMembers,
	ManageMembers,
	ManageRoles,
	ManageCategory,
	ManageBudget,
	All,
}

var categories = []Category{
	CategoryDashboard,
	CategoryTransactions,
	CategoryReports,
	CategoryMembers,
	CategoryRoles,
	CategoryBudgeting,
	CategoryAdministration,
}

// UnknownPermissionError is returned by Parse for identifiers outside the catalog.
type UnknownPermissionError struct {
	Value string
}

func (e *UnknownPermissionError) Error() string {
	return fmt.Sprintf("unknown permission %q", e.Value)
}

// UnknownCategoryError is returned by ParseCategory for names outside the catalog.
type UnknownCategoryError struct {
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown permission category %q", e.Value)
}

// Parse converts a wire identifier to a Permission.
func Parse(s string) (Permission, error) {
	p := Permission(s)
	if !p.Valid() {
		return "", &UnknownPermissionError{Value: s}
	}
	return p, nil
}

// ParseAll converts a list of wire identifiers, failing on the first unknown one.
func ParseAll(values []string) ([]Permission, error) {
	out := make([]Permission, 0, len(values))
	for _, v := range values {
		p, err := Parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Valid reports whether p is in the catalog.
func (p Permission) Valid() bool {
	_, ok := p.category()
	return ok
}

// Category returns the category p belongs to. It panics for identifiers outside the catalog;
// validate with Parse or Valid first.
func (p Permission) Category() Category {
	c, ok := p.category()
	if !ok {
		panic(fmt.Sprintf("permission: %q is not in the catalog", string(p)))
	}
	return c
}

func (p Permission) category() (Category, bool) {
	switch p {
	case ViewDashboard:
		return CategoryDashboard, true
	case CreateTransactions, EditTransactions, DeleteTransaction, ApproveTransactions:
		return CategoryTransactions, true
	case ViewReport:
		return CategoryReports, true
	case ViewMembers, ManageMembers:
		return CategoryMembers, true
	case ManageRoles:
		return CategoryRoles, true
	case ManageCategory, ManageBudget:
		return CategoryBudgeting, true
	case All:
		return CategoryAdministration, true
	default:
		return "", false
	}
}

// ParseCategory converts a wire category name to a Category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryDashboard, CategoryTransactions, CategoryReports, CategoryMembers,
		CategoryRoles, CategoryBudgeting, CategoryAdministration:
		return c, nil
	default:
		return "", &UnknownCategoryError{Value: s}
	}
}

// List returns the catalog in display order.
func List() []Entry {
	out := make([]Entry, len(catalog))
	for i, p := range catalog {
		out[i] = Entry{Permission: p, Category: p.Category()}
	}
	return out
}

// Categories returns every category in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// InCategory returns the permissions of c in display order.
func InCategory(c Category) []Permission {
	var out []Permission
	for _, p := range catalog {
		if p.Category() == c {
			out = append(out, p)
		}
	}
	return out
}

// Concrete returns every catalog permission except All. Used to expand All for display.
func Concrete() []Permission {
	out := make([]Permission, 0, len(catalog)-1)
	for _, p := range catalog {
		if p != All {
			out = append(out, p)
		}
	}
	return out
}

// CategoryCount is the badge shown next to a category checkbox.
type CategoryCount struct {
	Granted int
	Total   int
}

// CategoriesOf returns granted/total counts per category for the given set.
// A set holding All reports every category as fully granted.
func CategoriesOf(s Set) map[Category]CategoryCount {
	out := make(map[Category]CategoryCount, len(categories))
	for _, c := range categories {
		out[c] = CategoryCount{}
	}
	for _, p := range catalog {
		c := p.Category()
		cc := out[c]
		cc.Total++
		if s.Covers(p) {
			cc.Granted++
		}
		out[c] = cc
	}
	return out
}

// Set is a set of granted permissions. A nil Set reads as empty; build writable sets with NewSet.
type Set map[Permission]struct{}

// NewSet returns a set holding ps. Duplicates collapse.
func NewSet(ps ...Permission) Set {
	s := make(Set, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts p; adding an existing member is a no-op.
func (s Set) Add(p Permission) { s[p] = struct{}{} }

// Remove deletes p; removing an absent member is a no-op.
func (s Set) Remove(p Permission) { delete(s, p) }

// Has reports whether p is literally in the set.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Covers reports whether the set grants p, either directly or through All.
func (s Set) Covers(p Permission) bool {
	return s.Has(p) || s.Has(All)
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same members.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for p := range s {
		if !o.Has(p) {
			return false
		}
	}
	return true
}

// Sorted returns the members in catalog order; identifiers outside the catalog sort last by value.
func (s Set) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

// Strings returns the sorted members as wire identifiers.
func (s Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = string(p)
	}
	return out
}

// Validate returns an error for the first member outside the catalog.
func (s Set) Validate() error {
	for _, p := range s.Sorted() {
		if !p.Valid() {
			return &UnknownPermissionError{Value: string(p)}
		}
	}
	return nil
}

func rank(p Permission) int {
	for i, c := range catalog {
		if c == p {
			return i
		}
	}
	return len(catalog)
}
