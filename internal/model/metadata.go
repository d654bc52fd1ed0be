package model

// Metadata is the document served by a SecureDrop instance's /metadata
// endpoint. It is decoded once by the prober on a successful probe and
// never mutated.
//
// The JSON field names follow the SecureDrop server API, which is why they
// differ from the Go names.
type Metadata struct {
	// Version is the SecureDrop server version (e.g., "2.8.0").
	Version string `json:"sd_version"`

	// ServerOS is the operating system release the server runs on
	// (e.g., "24.04").
	ServerOS string `json:"server_os"`

	// Fingerprint is the GPG key fingerprint used for submissions.
	Fingerprint string `json:"gpg_fpr"`

	// V2SourceURL is the deprecated v2 onion source interface URL.
	// Optional; v2 onion services stopped working in 2021, so this is
	// empty for all modern instances.
	V2SourceURL string `json:"v2_source_url,omitempty"`

	// V3SourceURL is the v3 onion source interface URL.
	V3SourceURL string `json:"v3_source_url"`

	// SupportedLanguages lists the locale codes the instance's source
	// interface is translated into (e.g., "en_US", "fr"). Duplicates may
	// appear in server responses; downstream aggregation treats the list
	// as a set.
	SupportedLanguages []string `json:"supported_languages"`
}
