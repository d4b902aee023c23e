package types

// DomainRule describes one life-domain's matching rules. Rules are
// evaluated in table order; the first domain with any match wins.
type DomainRule struct {
	// Name is the domain label applied to matching events.
	Name string `json:"name" yaml:"name"`

	// People are known-person substrings matched against the event blob.
	People []string `json:"people,omitempty" yaml:"people,omitempty"`

	// EmailDomains are matched against the sender identifier.
	EmailDomains []string `json:"email_domains,omitempty" yaml:"email_domains,omitempty"`

	// Channels are matched against the channel name.
	Channels []string `json:"channels,omitempty" yaml:"channels,omitempty"`

	// Keywords are matched against the event blob.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// OrgFile is the organizations/ memory file backing this domain,
	// if one exists.
	OrgFile string `json:"org_file,omitempty" yaml:"org_file,omitempty"`
}
