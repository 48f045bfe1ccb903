package lead

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewValidates covers the constructor's identity checks.
func TestNewValidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      Lead
		wantErr error
	}{
		{name: "ok", in: Lead{Title: "Deck build", URL: "https://example.test/v-1", Source: SourceKijiji}},
		{name: "blank title", in: Lead{Title: "  ", URL: "https://example.test/v-1", Source: SourceKijiji}, wantErr: ErrMissingTitle},
		{name: "missing url", in: Lead{Title: "Deck build", Source: SourceRSS}, wantErr: ErrMissingURL},
		{name: "relative url", in: Lead{Title: "Deck build", URL: "/v-1", Source: SourceRSS}, wantErr: ErrMissingURL},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := New(tc.in)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.in.URL, got.URL)
		})
	}
}

// TestNewTrims ensures surrounding whitespace never becomes part of the identity key.
func TestNewTrims(t *testing.T) {
	t.Parallel()

	got, err := New(Lead{Title: "  Garage  ", URL: " https://example.test/a ", Source: SourceGoogleAlerts})
	require.NoError(t, err)
	assert.Equal(t, "Garage", got.Title)
	assert.Equal(t, "https://example.test/a", got.URL)
}

// TestNewRejectsUnknownSource guards the closed source set.
func TestNewRejectsUnknownSource(t *testing.T) {
	t.Parallel()

	_, err := New(Lead{Title: "Garage", URL: "https://example.test/a", Source: "craigslist"})
	require.Error(t, err)
}

func TestParseSource(t *testing.T) {
	t.Parallel()

	s, err := ParseSource(" Google_Alerts ")
	require.NoError(t, err)
	assert.Equal(t, SourceGoogleAlerts, s)

	_, err = ParseSource("myspace")
	require.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	l := Lead{Title: "t", URL: "u", Location: "l"}
	assert.Equal(t, "t|u|l", string(l.Fingerprint()))
}
