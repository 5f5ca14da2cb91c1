package types

// Category identifies one class of bundle artifacts.
type Category string

// Artifact categories a bundle can carry.
const (
	CategoryCommands Category = "commands"
	CategoryAgents   Category = "agents"
	CategoryHooks    Category = "hooks"
	CategoryMCP      Category = "mcp"
	CategorySkills   Category = "skills"
)

// AllSentinel is the inclusion-list value meaning "everything available
// in this category at packaging time".
const AllSentinel = "all"

// Categories lists every valid category in manifest order.
func Categories() []Category {
	return []Category{
		CategoryCommands,
		CategoryAgents,
		CategoryHooks,
		CategoryMCP,
		CategorySkills,
	}
}

// ValidCategory reports whether c names a known artifact category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryCommands, CategoryAgents, CategoryHooks, CategoryMCP, CategorySkills:
		return true
	}
	return false
}
