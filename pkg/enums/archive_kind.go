package enums

// ArchiveKind labels what a cleanup archive row contains.
type ArchiveKind string

const (
	ArchiveKindActivityLogs ArchiveKind = "activity_logs"
	ArchiveKindOrders       ArchiveKind = "orders"
)

// IsValid reports whether the value is a known ArchiveKind.
func (a ArchiveKind) IsValid() bool {
	return a == ArchiveKindActivityLogs || a == ArchiveKindOrders
}
