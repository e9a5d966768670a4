package ingestion

// Transport kinds recorded in chunk meta as the "source" provenance field.
const (
	SourceJSON       = "json"
	SourceMultipart  = "multipart"
	SourceText       = "text"
	SourceStoragePDF = "storage_pdf"
)

// Source is the resolved input of an ingestion request. The HTTP layer
// maps whatever transport it received (JSON body, multipart form, raw
// body) onto exactly one of the three variants; the pipeline never sees
// the raw request again.
type Source interface {
	isSource()
}

// InlineText carries text supplied directly in the request. Origin names
// the transport it arrived on (json, multipart, or text).
type InlineText struct {
	Text   string
	Origin string
}

// UploadedFile carries raw file bytes from a multipart upload. The
// pipeline stages these in object storage and defers extraction to a
// follow-up call; it does not extract freshly uploaded bytes inline.
type UploadedFile struct {
	Data     []byte
	Filename string
	Mime     string
}

// StoredDocumentRef asks the pipeline to fetch the document's recorded
// storage object and extract text from it.
type StoredDocumentRef struct{}

func (InlineText) isSource()        {}
func (UploadedFile) isSource()      {}
func (StoredDocumentRef) isSource() {}

// Result reports what an ingestion run did. Staged means the request
// only uploaded bytes and must be re-submitted (or re-run with a
// StoredDocumentRef) to produce chunks.
type Result struct {
	DocumentID  string
	Chunks      int
	Staged      bool
	StoragePath string
}
