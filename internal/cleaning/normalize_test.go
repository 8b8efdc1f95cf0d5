package cleaning

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMissing(t *testing.T) {
	missing := []string{"", "  ", "N/A", "n/a", "NA", "NaN", "nan", "null", "None", "-"}
	for _, cell := range missing {
		assert.True(t, IsMissing(cell), "expected %q to be missing", cell)
	}

	present := []string{"0", "0.0", "Organic Search", "€4,500", "2026-01-05"}
	for _, cell := range present {
		assert.False(t, IsMissing(cell), "expected %q to be present", cell)
	}
}

func TestNormalizeRate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{
			name:  "fraction passes through",
			input: "0.38",
			want:  0.38,
			ok:    true,
		},
		{
			name:  "whole percentage divided by 100",
			input: "38",
			want:  0.38,
			ok:    true,
		},
		{
			name:  "percent sign stripped",
			input: "38%",
			want:  0.38,
			ok:    true,
		},
		{
			name:  "exactly one kept as is",
			input: "1",
			want:  1.0,
			ok:    true,
		},
		{
			name:  "just above one treated as percentage",
			input: "1.47",
			want:  0.0147,
			ok:    true,
		},
		{
			name:  "extra precision preserved",
			input: "3.4112",
			want:  0.034112,
			ok:    true,
		},
		{
			name:  "zero rate",
			input: "0",
			want:  0,
			ok:    true,
		},
		{
			name:  "empty cell missing",
			input: "",
			ok:    false,
		},
		{
			name:  "sentinel missing",
			input: "N/A",
			ok:    false,
		},
		{
			name:  "unparseable missing",
			input: "forty",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeRate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

// Rates that already went through normalization must come out unchanged
// when normalized again.
func TestNormalizeRate_Idempotent(t *testing.T) {
	inputs := []string{"0.38", "38", "38%", "0.905", "4.8", "85", "100", "0.036", "1"}
	for _, input := range inputs {
		first, ok := NormalizeRate(input)
		require.True(t, ok, "input %q", input)

		second, ok := NormalizeRate(strconv.FormatFloat(first, 'f', -1, 64))
		require.True(t, ok, "re-normalizing %q", input)
		assert.InDelta(t, first, second, 1e-9, "normalizing %q twice changed the value", input)
	}
}

func TestNormalizeRate_NeverExceedsOne(t *testing.T) {
	inputs := []string{"0.1", "0.99", "1", "1.01", "38", "85%", "99.9", "100", "150"}
	for _, input := range inputs {
		got, ok := NormalizeRate(input)
		require.True(t, ok, "input %q", input)
		assert.LessOrEqual(t, got, 1.0, "input %q", input)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{
			name:  "euro sign and separators stripped",
			input: "€24,000",
			want:  24000,
			ok:    true,
		},
		{
			name:  "cents preserved",
			input: "€2,850.50",
			want:  2850.50,
			ok:    true,
		},
		{
			name:  "plain number",
			input: "12000",
			want:  12000,
			ok:    true,
		},
		{
			name:  "surrounding whitespace",
			input: " €1,200.75 ",
			want:  1200.75,
			ok:    true,
		},
		{
			name:  "missing sentinel",
			input: "N/A",
			ok:    false,
		},
		{
			name:  "empty cell",
			input: "",
			ok:    false,
		},
		{
			name:  "unparseable",
			input: "call finance",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeCurrency(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	got, ok := ParseNumber("1,200")
	require.True(t, ok)
	assert.InDelta(t, 1200.0, got, 1e-9)

	got, ok = ParseNumber("3400")
	require.True(t, ok)
	assert.InDelta(t, 3400.0, got, 1e-9)

	_, ok = ParseNumber("-")
	assert.False(t, ok, "dash is a missing sentinel, not a negative number")

	got, ok = ParseNumber("-5")
	require.True(t, ok)
	assert.InDelta(t, -5.0, got, 1e-9)

	_, ok = ParseNumber("")
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{
			name:  "iso date",
			input: "2026-01-05",
			want:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "iso datetime",
			input: "2026-01-05 00:00:00",
			want:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "us slash format",
			input: "01/12/2026",
			want:  time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "short slash format",
			input: "1/5/26",
			want:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "written month",
			input: "Jan 5, 2026",
			want:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "day first written month",
			input: "5 January 2026",
			want:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			// 44927 is 2023-01-01 in the 1900 date system; three more
			// years of days lands on 46023.
			name:  "excel serial",
			input: "46023",
			want:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "missing sentinel",
			input: "N/A",
			ok:    false,
		},
		{
			name:  "unparseable",
			input: "next tuesday",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			} else {
				assert.True(t, got.IsZero())
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	got, ok := ParseMonth("January 2026")
	require.True(t, ok)
	assert.True(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got))

	_, ok = ParseMonth("2026-01")
	assert.False(t, ok)

	_, ok = ParseMonth("")
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "organic_search", Slugify("Organic Search"))
	assert.Equal(t, "carousel_post", Slugify("Carousel Post"))
	assert.Equal(t, "video", Slugify(" Video "))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Early Bird Announcement", TitleCase("early bird announcement"))
	assert.Equal(t, "Vip Delegate", TitleCase("VIP delegate"))
	assert.Equal(t, "Sponsor - Gold", TitleCase("sponsor - gold"))
	assert.Equal(t, "Referral", TitleCase("  referral "))
	assert.Equal(t, "", TitleCase(""))
}

func TestSanitizeASCII(t *testing.T) {
	assert.Equal(t, "Cte d'Azur Ventures", SanitizeASCII("Côte d'Azur Ventures"))
	assert.Equal(t, "plain text stays", SanitizeASCII("plain text stays"))
	assert.Equal(t, "4,500", SanitizeASCII("€4,500"))
}
