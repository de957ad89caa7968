package workspace

// DefaultTheme is the theme of a fresh workspace.
const DefaultTheme = "light"

// SampleTemplate is the template a reset workspace starts with.
const SampleTemplate = "<div>\n  <h1>{{title}}</h1>\n  <p>{{content}}</p>\n  <span>Author: {{author}}</span>\n</div>"

// Reset returns the workspace to the sample template with an empty registry,
// no code blocks and no sync groups. Tag templates survive a reset.
func (s *State) Reset() {
	tags := s.TagTemplates
	*s = *New(SampleTemplate)
	if tags != nil {
		s.TagTemplates = tags
	}
}
