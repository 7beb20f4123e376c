package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ExtractVideoID(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}

func TestExtractVideoID_Invalid(t *testing.T) {
	for _, raw := range []string{
		"https://example.com/watch?v=short",
		"https://vimeo.com/123456789",
		"not-an-id",
		"",
	} {
		_, err := ExtractVideoID(raw)
		var vErr *models.ValidationError
		require.ErrorAs(t, err, &vErr, raw)
	}
}

func TestParseISO8601Duration(t *testing.T) {
	cases := map[string]float64{
		"PT4M13S":  253,
		"PT1H2M3S": 3723,
		"PT45S":    45,
		"PT2H":     7200,
		"PT0S":     0,
		"P1DT2H":   0, // day component unsupported, treated as unknown
		"4m13s":    0,
		"":         0,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseISO8601Duration(in), in)
	}
}
