package ingest

// Pair is a PO file and the Invoice file it should be compared with. Files
// pair up by name: "<name>.po.<ext>" with "<name>.invoice.<ext>".
type Pair struct {
	Name        string
	POPath      string
	InvoicePath string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Paired  uint32
	Orphans uint32
	Failed  uint32
}
