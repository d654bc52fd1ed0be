package model

// Instance describes a single SecureDrop instance as listed in the
// SecureDrop directory. It is created by the directory fetcher (or
// synthesized from a command line argument) and read-only afterwards.
type Instance struct {
	// Title is the human-readable name of the organization running the
	// instance (e.g., "The Guardian"). It is the identity key used when
	// aggregating locale coverage.
	Title string `json:"title"`

	// OnionAddress is the v3 onion address of the instance, including the
	// ".onion" suffix and without a URL scheme. This is the address probed
	// for metadata.
	OnionAddress string `json:"onion_address"`

	// OnionName is the optional human-memorable onion name (e.g.,
	// "guardian.securedrop.tor.onion"). Empty when the instance has none.
	OnionName string `json:"onion_name,omitempty"`

	// LandingPageURL is the clearnet landing page describing the instance.
	// Display metadata only; never fetched by sdstatus.
	LandingPageURL string `json:"landing_page_url,omitempty"`
}

// NewInstanceFromAddress creates an Instance for a bare onion address given
// on the command line. The address doubles as the title so that ad-hoc scans
// still produce meaningful report entries.
func NewInstanceFromAddress(address string) Instance {
	return Instance{
		Title:        address,
		OnionAddress: address,
	}
}
