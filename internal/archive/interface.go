package archive

// Archiver stores raw sync-run snapshots for later audit.
type Archiver interface {
	Store(name string, data []byte) error
}
