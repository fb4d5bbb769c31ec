package github

import "strings"

// tagPlaceholder is the token replaced with the release tag in templated selectors.
const tagPlaceholder = "<tag>"

// AssetSelector picks one asset out of a release by name.
// The two implementations form a closed set: exact names and tag-templated names.
type AssetSelector interface {
	// Matches reports whether the asset name is the one the selector wants,
	// given the tag of the release under inspection.
	Matches(tag, assetName string) bool
	// String renders the selector for diagnostics.
	String() string
}

// exactName matches a literal asset name regardless of the release tag.
type exactName string

// ExactName returns a selector matching the given asset name verbatim.
func ExactName(name string) AssetSelector {
	return exactName(name)
}

func (s exactName) Matches(_, assetName string) bool {
	return assetName == string(s)
}

func (s exactName) String() string {
	return string(s)
}

// tagTemplate matches an asset whose name is the template
// with the <tag> placeholder substituted by the release tag.
type tagTemplate string

// TagTemplate returns a selector built from a template like
// "wine-devel-<tag>-osx64.tar.xz".
func TagTemplate(template string) AssetSelector {
	return tagTemplate(template)
}

func (s tagTemplate) Matches(tag, assetName string) bool {
	return assetName == s.render(tag)
}

func (s tagTemplate) String() string {
	return string(s)
}

// render substitutes the release tag into the template.
func (s tagTemplate) render(tag string) string {
	return strings.ReplaceAll(string(s), tagPlaceholder, tag)
}
