package models

// Country is shared reference data addressed by contact records.
type Country struct {
	ID   int64
	Code string
	Name string
}

// DocumentType is shared reference data addressed by user documents.
type DocumentType struct {
	ID   int64
	Name string
}
