package tenant

// Source records how the organization of a request was resolved.
type Source string

const (
	SourceNone             Source = "none"
	SourceSessionOwned     Source = "session-owned"
	SourceSessionBelongsTo Source = "session-belongs-to"
	SourceExplicitParam    Source = "explicit-org-param"
	SourceCustomDomain     Source = "custom-domain-lookup"
	SourceSubdomain        Source = "subdomain-lookup"
)

// FromSession reports whether the organization came from the principal itself.
func (s Source) FromSession() bool {
	return s == SourceSessionOwned || s == SourceSessionBelongsTo
}
