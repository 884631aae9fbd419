package entity

// RemoteClient is the patient record as stored by the practice-management
// system. ID is opaque to us.
type RemoteClient struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Notes     string
	Tags      []string
}

// NoteSeparator sits between an existing note and newly appended record text.
const NoteSeparator = "\n\n"

// AppendNotes appends record after the existing notes. Existing text is never
// replaced.
func AppendNotes(existing, record string) string {
	if existing == "" {
		return record
	}
	return existing + NoteSeparator + record
}
