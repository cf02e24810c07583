// internal/app/system/limits/limits.go
package limits

// Request body size limits.
const (
	// MaxJSONBody bounds every JSON request body.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxLogoFile is the largest company logo accepted.
	MaxLogoFile = 2 << 20 // 2 MB

	// MaxLogoForm bounds the whole multipart logo request, leaving room
	// for part headers around a MaxLogoFile upload.
	MaxLogoForm = MaxLogoFile + 64<<10
)
