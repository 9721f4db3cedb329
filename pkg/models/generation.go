package models

// GenerationType identifies the kind of asset a generation request produces
type GenerationType string

const (
	TypeEbook  GenerationType = "ebook"
	TypeCover  GenerationType = "cover"
	TypeMockup GenerationType = "mockup"
	TypeAd     GenerationType = "ad"
	TypeVideo  GenerationType = "video"
)

// ValidGenerationTypes lists every accepted generation type
var ValidGenerationTypes = []GenerationType{TypeEbook, TypeCover, TypeMockup, TypeAd, TypeVideo}

// IsValid reports whether the type is one of the accepted generation types
func (t GenerationType) IsValid() bool {
	for _, v := range ValidGenerationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Metered reports whether the type counts against the user's plan quota.
// Only ebook generation is metered.
func (t GenerationType) Metered() bool {
	return t == TypeEbook
}

// GenerateRequest is a validated generation request. Fields holds the full
// decoded body (including "type") so the payload can be relayed upstream
// without re-shaping.
type GenerateRequest struct {
	Type   GenerationType
	Fields map[string]any
}

// GenerationResult is the raw upstream response relayed to the caller
type GenerationResult struct {
	ContentType string
	Body        []byte
}
